package telemetry

import "regexp"

// Best-effort crawler heuristic, not a security control. Bot heartbeats are
// acknowledged but never counted.
var botUAPattern = regexp.MustCompile(`(?i)(bot|crawler|spider|slurp|bingpreview|facebookexternalhit|linkedinbot|whatsapp|discordbot|headless|curl|wget|python-requests)`)

// IsBotUserAgent reports whether the user-agent looks like crawler traffic.
func IsBotUserAgent(ua string) bool {
	return botUAPattern.MatchString(ua)
}
