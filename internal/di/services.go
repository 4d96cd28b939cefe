package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/anadkat/bondtrading/internal/clients/moment"
	"github.com/anadkat/bondtrading/internal/config"
	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/anadkat/bondtrading/internal/modules/bonds"
	"github.com/anadkat/bondtrading/internal/modules/catalog"
	"github.com/anadkat/bondtrading/internal/modules/trading"
)

// InitializeClients creates the upstream client and the catalog
func InitializeClients(container *Container, cfg *config.Config, log zerolog.Logger) {
	container.MomentClient = moment.NewClient(cfg.MomentBaseURL, cfg.MomentAPIKey, cfg.MomentHTTPTimeout, log)
	if !container.MomentClient.HasCredentials() {
		log.Warn().Msg("Moment API key not configured - upstream calls will be rejected")
	}

	container.Catalog = catalog.New(log)
}

// InitializeServices creates the order executor and the services on top of it
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	executor, err := newExecutor(container, cfg, log)
	if err != nil {
		return err
	}
	container.Executor = executor

	container.OrderService = trading.NewOrderService(container.Catalog, executor, cfg.DefaultUserID, log)
	container.SyncService = bonds.NewSyncService(
		container.MomentClient,
		container.Catalog,
		cfg.InstrumentStatus,
		cfg.InstrumentLimit,
		log,
	)

	log.Info().Str("execution_mode", executor.Mode()).Msg("Services initialized")
	return nil
}

func newExecutor(container *Container, cfg *config.Config, log zerolog.Logger) (domain.OrderExecutor, error) {
	switch cfg.ExecutionMode {
	case config.ExecutionModeSimulated:
		return trading.NewSimulatedExecutor(cfg.SimulatedDelayMin, cfg.SimulatedDelayMax, log), nil
	case config.ExecutionModeBroker:
		return trading.NewBrokerExecutor(container.MomentClient, log), nil
	default:
		return nil, fmt.Errorf("unknown execution mode %q", cfg.ExecutionMode)
	}
}
