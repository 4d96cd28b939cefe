// Package bonds provides bond catalog ingestion from the upstream instrument feed.
package bonds

import (
	"context"
	"sync"
	"time"

	"github.com/anadkat/bondtrading/internal/clients/moment"
	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/anadkat/bondtrading/internal/modules/catalog"
	"github.com/rs/zerolog"
)

// SyncResult is returned by POST /api/sync-bonds
type SyncResult struct {
	SyncedCount int `json:"synced_count"`
	TotalBonds  int `json:"total_bonds"`
}

// SyncStatus describes the most recent ingestion run.
// LastError separates "upstream failed" from "upstream returned nothing".
type SyncStatus struct {
	LastRunAt     *time.Time `json:"last_run_at"`
	LastSuccessAt *time.Time `json:"last_success_at"`
	LastError     *string    `json:"last_error"`
	Fetched       int        `json:"fetched"`
	Synced        int        `json:"synced"`
	Skipped       int        `json:"skipped"`
	Runs          int        `json:"runs"`
	TotalBonds    int        `json:"total_bonds"`
}

// SyncService pulls instruments from upstream and loads them into the catalog
type SyncService struct {
	client  domain.MarketDataClient
	catalog *catalog.Catalog
	status  string
	limit   int
	now     func() time.Time
	log     zerolog.Logger

	mu   sync.Mutex
	last SyncStatus
}

// NewSyncService creates a new sync service. status and limit are passed to the
// instrument listing endpoint.
func NewSyncService(client domain.MarketDataClient, cat *catalog.Catalog, status string, limit int, log zerolog.Logger) *SyncService {
	return &SyncService{
		client:  client,
		catalog: cat,
		status:  status,
		limit:   limit,
		now:     time.Now,
		log:     log.With().Str("service", "bond_sync").Logger(),
	}
}

// SyncNew inserts instruments whose ids are not yet in the catalog.
// Upstream failures are logged and recorded in Status, never returned.
func (s *SyncService) SyncNew(ctx context.Context) SyncResult {
	result, _ := s.run(ctx, false)
	return result
}

// Refresh upserts every fetched instrument, replacing stored records
func (s *SyncService) Refresh(ctx context.Context) SyncResult {
	result, _ := s.run(ctx, true)
	return result
}

// Lookup fetches a single instrument straight from upstream and upserts it into
// the catalog. Records without a usable identifier yield domain.ErrNotFound.
func (s *SyncService) Lookup(ctx context.Context, instrumentID string) (*domain.Bond, error) {
	raw, err := s.client.GetInstrument(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.ErrNotFound
	}

	bond, err := moment.NormalizeInstrument(raw, s.now())
	if err != nil {
		return nil, err
	}
	if bond.ID == "" {
		return nil, domain.ErrNotFound
	}
	if err := s.catalog.AddBond(*bond); err != nil {
		return nil, err
	}

	s.log.Debug().Str("bond_id", bond.ID).Str("requested", instrumentID).Msg("Instrument loaded on demand")
	return bond, nil
}

// Status returns a snapshot of the last run
func (s *SyncService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.last
	out.TotalBonds = s.catalog.BondCount()
	return out
}

// run returns the upstream listing error alongside the result so callers get the
// outcome of this run rather than whatever Status holds afterwards.
func (s *SyncService) run(ctx context.Context, upsert bool) (SyncResult, error) {
	started := s.now()

	records, err := s.client.ListInstruments(ctx, s.status, s.limit)
	if err != nil {
		s.log.Warn().Err(err).Msg("Instrument listing failed, treating as empty")
		s.record(started, 0, 0, 0, err)
		return SyncResult{SyncedCount: 0, TotalBonds: s.catalog.BondCount()}, err
	}
	if len(records) == 0 {
		s.log.Info().Msg("Upstream returned no instruments")
	}

	synced, skipped := 0, 0
	for _, raw := range records {
		bond, err := moment.NormalizeInstrument(raw, s.now())
		if err != nil {
			skipped++
			s.log.Warn().Err(err).Msg("Skipping malformed instrument")
			continue
		}
		if bond.ID == "" {
			skipped++
			s.log.Warn().Msg("Skipping instrument without identifier")
			continue
		}

		if upsert {
			if err := s.catalog.AddBond(*bond); err != nil {
				skipped++
				continue
			}
			synced++
			continue
		}

		inserted, err := s.catalog.AddBondIfAbsent(*bond)
		if err != nil {
			skipped++
			continue
		}
		if inserted {
			synced++
		}
	}

	s.record(started, len(records), synced, skipped, nil)

	result := SyncResult{SyncedCount: synced, TotalBonds: s.catalog.BondCount()}
	s.log.Info().
		Int("fetched", len(records)).
		Int("synced", synced).
		Int("skipped", skipped).
		Int("total", result.TotalBonds).
		Bool("upsert", upsert).
		Msg("Instrument sync completed")
	return result, nil
}

func (s *SyncService) record(at time.Time, fetched, synced, skipped int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last.Runs++
	s.last.LastRunAt = &at
	s.last.Fetched = fetched
	s.last.Synced = synced
	s.last.Skipped = skipped
	if err != nil {
		msg := err.Error()
		s.last.LastError = &msg
		return
	}
	s.last.LastError = nil
	s.last.LastSuccessAt = &at
}
