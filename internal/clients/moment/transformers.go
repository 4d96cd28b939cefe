package moment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anadkat/bondtrading/internal/domain"
)

const (
	defaultIssuer   = "Unknown Issuer"
	defaultBondType = "corporate"
	defaultCurrency = "USD"
	defaultStatus   = "outstanding"
)

// NormalizeInstrument converts one upstream instrument record into a Bond.
//
// Bond.ID is the ISIN. Records without an ISIN fall back to instrument_id, then id.
// Missing keys never fault; a present key of the wrong JSON type does (ErrValidation).
func NormalizeInstrument(raw map[string]interface{}, now time.Time) (*domain.Bond, error) {
	isin, err := optionalString(raw, "isin")
	if err != nil {
		return nil, err
	}

	id := deref(isin)
	if id == "" {
		for _, key := range []string{"instrument_id", "id"} {
			v, err := optionalText(raw, key)
			if err != nil {
				return nil, err
			}
			if v != nil {
				id = *v
				break
			}
		}
	}

	bond := &domain.Bond{
		ID:        id,
		ISIN:      deref(isin),
		UpdatedAt: now,
	}

	strFields := []struct {
		dst  **string
		keys []string
	}{
		{&bond.CUSIP, []string{"cusip"}},
		{&bond.Sector, []string{"sector"}},
		{&bond.Rating, []string{"sp_rating", "moodys_rating", "rating"}},
	}
	for _, f := range strFields {
		v, err := firstString(raw, f.keys...)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	issuer, err := firstString(raw, "issuer")
	if err != nil {
		return nil, err
	}
	bond.Issuer = orDefault(issuer, defaultIssuer)

	description, err := firstString(raw, "description", "description_short")
	if err != nil {
		return nil, err
	}
	bond.Description = deref(description)

	bondType, err := firstString(raw, "asset_class", "type", "bond_type")
	if err != nil {
		return nil, err
	}
	bond.BondType = strings.ToLower(orDefault(bondType, defaultBondType))

	currency, err := firstString(raw, "currency")
	if err != nil {
		return nil, err
	}
	bond.Currency = orDefault(currency, defaultCurrency)

	status, err := firstString(raw, "status")
	if err != nil {
		return nil, err
	}
	bond.Status = orDefault(status, defaultStatus)

	numFields := []struct {
		dst **string
		key string
	}{
		{&bond.Coupon, "coupon"},
		{&bond.ParValue, "par_value"},
		{&bond.LastPrice, "last_price"},
		{&bond.YTM, "yield_to_maturity"},
		{&bond.YTW, "yield_to_worst"},
		{&bond.Duration, "duration"},
		{&bond.Convexity, "convexity"},
		{&bond.LiquidityScore, "liquidity_score"},
	}
	for _, f := range numFields {
		v, err := optionalText(raw, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	maturity, err := optionalString(raw, "maturity_date")
	if err != nil {
		return nil, err
	}
	if maturity != nil {
		t, err := parseMaturity(*maturity)
		if err != nil {
			return nil, domain.NewValidationError("maturity_date %q: %v", *maturity, err)
		}
		bond.MaturityDate = &t
	}

	return bond, nil
}

// parseMaturity accepts RFC 3339 timestamps (a trailing Z becomes +00:00),
// zone-less timestamps (read as UTC) and bare dates.
func parseMaturity(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// extractInstrumentRecords accepts a bare array or an object with a "data" array.
// Any other shape yields an empty slice.
func extractInstrumentRecords(body json.RawMessage) ([]map[string]interface{}, error) {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse instrument list: %w", err)
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		if data, ok := v["data"].([]interface{}); ok {
			items = data
		}
	}

	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, m)
		}
	}
	return records, nil
}

// transformQuote maps a quote object, tolerating numbers sent as strings
func transformQuote(body json.RawMessage) (*domain.Quote, error) {
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	return &domain.Quote{
		Timestamp:          getString(m, "timestamp"),
		BidPrice:           getOptionalFloat64(m, "bid_price"),
		BidYieldToMaturity: getOptionalFloat64(m, "bid_yield_to_maturity"),
		BidYieldToWorst:    getOptionalFloat64(m, "bid_yield_to_worst"),
		BidSize:            getOptionalFloat64(m, "bid_size"),
		BidMinSize:         getOptionalFloat64(m, "bid_min_size"),
		AskPrice:           getOptionalFloat64(m, "ask_price"),
		AskYieldToMaturity: getOptionalFloat64(m, "ask_yield_to_maturity"),
		AskYieldToWorst:    getOptionalFloat64(m, "ask_yield_to_worst"),
		AskSize:            getOptionalFloat64(m, "ask_size"),
		AskMinSize:         getOptionalFloat64(m, "ask_min_size"),
	}, nil
}

func transformHistoricalPrices(body json.RawMessage) (*domain.HistoricalPrices, error) {
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	result := &domain.HistoricalPrices{Data: []domain.PricePoint{}}
	if next := getString(m, "next"); next != "" {
		result.Next = &next
	}
	if prev := getString(m, "prev"); prev != "" {
		result.Prev = &prev
	}

	points, _ := m["data"].([]interface{})
	for _, p := range points {
		pm, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		result.Data = append(result.Data, domain.PricePoint{
			Timestamp:       getString(pm, "timestamp"),
			Price:           getOptionalFloat64(pm, "price"),
			YieldToWorst:    getOptionalFloat64(pm, "yield_to_worst"),
			YieldToMaturity: getOptionalFloat64(pm, "yield_to_maturity"),
		})
	}

	result.Count = len(result.Data)
	if count := getOptionalFloat64(m, "count"); count != nil {
		result.Count = int(*count)
	}
	return result, nil
}

func transformOrderBook(body json.RawMessage) (*domain.OrderBook, error) {
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	return &domain.OrderBook{
		Timestamp: getString(m, "timestamp"),
		Bids:      transformBookSide(m["bids"]),
		Asks:      transformBookSide(m["asks"]),
	}, nil
}

func transformBookSide(v interface{}) []domain.OrderBookEntry {
	levels, _ := v.([]interface{})
	entries := make([]domain.OrderBookEntry, 0, len(levels))
	for _, level := range levels {
		lm, ok := level.(map[string]interface{})
		if !ok {
			continue
		}
		entries = append(entries, domain.OrderBookEntry{
			Price:           getFloat64(lm, "price"),
			Size:            getFloat64(lm, "size"),
			YieldToMaturity: getOptionalFloat64(lm, "yield_to_maturity"),
			YieldToWorst:    getOptionalFloat64(lm, "yield_to_worst"),
		})
	}
	return entries
}

func decodeObject(body json.RawMessage) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("unexpected response format: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("unexpected response format: empty body")
	}
	return m, nil
}

// Helper functions

// optionalString returns nil for a missing, null or empty value and faults on non-strings
func optionalString(m map[string]interface{}, key string) (*string, error) {
	val, exists := m[key]
	if !exists || val == nil {
		return nil, nil
	}
	s, ok := val.(string)
	if !ok {
		return nil, domain.NewValidationError("field %q: expected string, got %T", key, val)
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

// firstString returns the first non-empty string among keys
func firstString(m map[string]interface{}, keys ...string) (*string, error) {
	for _, key := range keys {
		v, err := optionalString(m, key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

// optionalText stringifies a JSON scalar (number or string); objects, arrays and
// booleans fault
func optionalText(m map[string]interface{}, key string) (*string, error) {
	val, exists := m[key]
	if !exists || val == nil {
		return nil, nil
	}
	var s string
	switch v := val.(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		s = v.String()
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		return nil, domain.NewValidationError("field %q: expected number or string, got %T", key, val)
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

// getString safely extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if val, exists := m[key]; exists && val != nil {
		if str, ok := val.(string); ok {
			return str
		}
		return fmt.Sprintf("%v", val)
	}
	return ""
}

func getFloat64(m map[string]interface{}, key string) float64 {
	if v := getOptionalFloat64(m, key); v != nil {
		return *v
	}
	return 0.0
}

// getOptionalFloat64 returns nil when the key is missing or not numeric
func getOptionalFloat64(m map[string]interface{}, key string) *float64 {
	val, exists := m[key]
	if !exists || val == nil {
		return nil
	}
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
