package telemetry

import (
	"encoding/json"
	"math"
	"strconv"
)

// GeoPing is one coarse location sample from the recency log.
// Latitude/Longitude are nil when the client's platform supplied none.
type GeoPing struct {
	Country   string   `json:"country"`
	Region    string   `json:"region"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
}

// ParsePing decodes a stored log record. Records written by older revisions
// or corrupted in transit are reported as not-ok rather than failing the
// whole summary: country and region must be strings, timestamp must be
// numeric, and coordinates are coerced from strings where possible.
func ParsePing(raw string) (GeoPing, bool) {
	var loose struct {
		Country   any `json:"country"`
		Region    any `json:"region"`
		Latitude  any `json:"latitude"`
		Longitude any `json:"longitude"`
		Timestamp any `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return GeoPing{}, false
	}

	country, ok := loose.Country.(string)
	if !ok {
		return GeoPing{}, false
	}
	region, ok := loose.Region.(string)
	if !ok {
		return GeoPing{}, false
	}
	ts, ok := loose.Timestamp.(float64)
	if !ok {
		return GeoPing{}, false
	}

	return GeoPing{
		Country:   country,
		Region:    region,
		Latitude:  coerceNullableNumber(loose.Latitude),
		Longitude: coerceNullableNumber(loose.Longitude),
		Timestamp: int64(ts),
	}, true
}

func coerceNullableNumber(value any) *float64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}
