package bonds

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/anadkat/bondtrading/internal/modules/catalog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarketData struct {
	records    []map[string]interface{}
	instrument map[string]interface{}
	listErr    error
	quote      *domain.Quote
	quoteErr   error
	prices     *domain.HistoricalPrices
	book       *domain.OrderBook
	readErr    error
	listCalls  int
	lastQty    *int64
	lastFreq   domain.PriceFrequency
}

func (f *fakeMarketData) ListInstruments(ctx context.Context, status string, limit int) ([]map[string]interface{}, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeMarketData) GetInstrument(ctx context.Context, id string) (map[string]interface{}, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.instrument, nil
}

func (f *fakeMarketData) GetQuote(ctx context.Context, id string, quantity *int64) (*domain.Quote, error) {
	f.lastQty = quantity
	return f.quote, f.quoteErr
}

func (f *fakeMarketData) GetHistoricalPrices(ctx context.Context, id string, start, end time.Time, frequency domain.PriceFrequency) (*domain.HistoricalPrices, error) {
	f.lastFreq = frequency
	return f.prices, f.readErr
}

func (f *fakeMarketData) GetOrderBook(ctx context.Context, id string) (*domain.OrderBook, error) {
	return f.book, f.readErr
}

func sampleRecords() []map[string]interface{} {
	return []map[string]interface{}{
		{"isin": "US649296AB61", "issuer": "NYC", "coupon": 5.0, "sector": "Government"},
		{"isin": "US0000000002", "issuer": "Acme", "coupon": "3.5"},
		{"issuer": "No identifier"},
		{"isin": "US0000000003", "issuer": 17},
	}
}

func newTestSync(client *fakeMarketData) (*SyncService, *catalog.Catalog) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	cat := catalog.New(log)
	return NewSyncService(client, cat, "outstanding", 100, log), cat
}

func TestSyncNew_SecondRunSyncsNothing(t *testing.T) {
	client := &fakeMarketData{records: sampleRecords()}
	service, cat := newTestSync(client)

	first := service.SyncNew(context.Background())
	second := service.SyncNew(context.Background())

	assert.Equal(t, SyncResult{SyncedCount: 2, TotalBonds: 2}, first)
	assert.Equal(t, SyncResult{SyncedCount: 0, TotalBonds: 2}, second)
	assert.Equal(t, 2, cat.BondCount())

	status := service.Status()
	assert.Equal(t, 2, status.Runs)
	assert.Equal(t, 4, status.Fetched)
	assert.Equal(t, 2, status.Skipped)
	assert.Nil(t, status.LastError)
	assert.NotNil(t, status.LastSuccessAt)
}

func TestSyncNew_DoesNotOverwrite(t *testing.T) {
	client := &fakeMarketData{records: sampleRecords()}
	service, cat := newTestSync(client)
	service.SyncNew(context.Background())

	client.records = []map[string]interface{}{{"isin": "US649296AB61", "issuer": "Renamed"}}
	service.SyncNew(context.Background())

	bond, ok := cat.GetBond("US649296AB61")
	require.True(t, ok)
	assert.Equal(t, "NYC", bond.Issuer)
}

func TestRefresh_Upserts(t *testing.T) {
	client := &fakeMarketData{records: sampleRecords()}
	service, cat := newTestSync(client)
	service.SyncNew(context.Background())

	client.records = []map[string]interface{}{{"isin": "US649296AB61", "issuer": "Renamed"}}
	result := service.Refresh(context.Background())

	assert.Equal(t, 1, result.SyncedCount)
	bond, _ := cat.GetBond("US649296AB61")
	assert.Equal(t, "Renamed", bond.Issuer)
	assert.Nil(t, bond.Sector)
}

func TestSync_UpstreamFailureIsRecorded(t *testing.T) {
	client := &fakeMarketData{listErr: &domain.UpstreamError{StatusCode: 503, Body: "maintenance"}}
	service, _ := newTestSync(client)

	result := service.SyncNew(context.Background())

	assert.Equal(t, SyncResult{}, result)
	status := service.Status()
	require.NotNil(t, status.LastError)
	assert.Contains(t, *status.LastError, "maintenance")
	assert.Nil(t, status.LastSuccessAt)
}

func TestSync_EmptyIsNotAnError(t *testing.T) {
	client := &fakeMarketData{records: []map[string]interface{}{}}
	service, _ := newTestSync(client)

	service.SyncNew(context.Background())

	status := service.Status()
	assert.Nil(t, status.LastError)
	assert.NotNil(t, status.LastSuccessAt)
}

func TestRefreshJob(t *testing.T) {
	client := &fakeMarketData{records: sampleRecords()}
	service, cat := newTestSync(client)
	job := NewRefreshJob(service, time.Second)

	assert.Equal(t, "bond_catalog_refresh", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 2, cat.BondCount())

	listErr := &domain.UpstreamError{Err: errors.New("connection refused")}
	client.listErr = listErr
	assert.ErrorIs(t, job.Run(), listErr)
}

func TestRefreshJob_ReportsItsOwnRun(t *testing.T) {
	client := &fakeMarketData{listErr: errors.New("connection refused")}
	service, _ := newTestSync(client)
	job := NewRefreshJob(service, time.Second)

	require.Error(t, job.Run())

	client.listErr = nil
	client.records = sampleRecords()
	assert.NoError(t, job.Run())
	assert.Nil(t, service.Status().LastError)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name       string
		instrument map[string]interface{}
		readErr    error
		expectedID string
		expectErr  error
	}{
		{"isin becomes id", map[string]interface{}{"instrument_id": "inst-7", "isin": "US7777777777", "issuer": "Metro Transit"}, nil, "US7777777777", nil},
		{"instrument id fallback", map[string]interface{}{"instrument_id": "inst-8", "issuer": "County"}, nil, "inst-8", nil},
		{"empty record", map[string]interface{}{}, nil, "", domain.ErrNotFound},
		{"no identifier", map[string]interface{}{"issuer": "Nobody"}, nil, "", domain.ErrNotFound},
		{"upstream failure", nil, &domain.UpstreamError{StatusCode: 404, Body: "missing"}, "", domain.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, cat := newTestSync(&fakeMarketData{instrument: tt.instrument, readErr: tt.readErr})

			bond, err := service.Lookup(context.Background(), "inst")

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Equal(t, 0, cat.BondCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, bond.ID)
			_, ok := cat.GetBond(tt.expectedID)
			assert.True(t, ok)
		})
	}
}
