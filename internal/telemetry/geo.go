package telemetry

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	unknownCountry = "UN"
	unknownRegion  = "Unknown"
	maxRegionLen   = 80
)

// Geo is the coarse location resolved for one heartbeat.
type Geo struct {
	Country   string
	Region    string
	Latitude  *float64
	Longitude *float64
}

// resolveGeo reads platform geolocation hints from trusted proxy headers.
// These are edge-provided and best-effort; anything absent or out of range
// falls back to the unknown sentinels / nil coordinates.
func resolveGeo(h http.Header) Geo {
	country := strings.TrimSpace(firstHeader(h, "X-Vercel-IP-Country", "CF-IPCountry"))
	if country == "" {
		country = unknownCountry
	}
	country = strings.ToUpper(country)
	if len(country) > 2 {
		country = country[:2]
	}

	region := strings.TrimSpace(firstHeader(h, "X-Vercel-IP-Country-Region", "X-Vercel-IP-City"))
	if region == "" {
		region = country
	}
	if len(region) > maxRegionLen {
		region = region[:maxRegionLen]
	}
	if region == "" {
		region = unknownRegion
	}

	return Geo{
		Country:   country,
		Region:    region,
		Latitude:  parseCoordinate(h.Get("X-Vercel-IP-Latitude"), -90, 90),
		Longitude: parseCoordinate(h.Get("X-Vercel-IP-Longitude"), -180, 180),
	}
}

func firstHeader(h http.Header, names ...string) string {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v
		}
	}
	return ""
}

func parseCoordinate(raw string, min, max float64) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < min || v > max {
		return nil
	}
	return &v
}
