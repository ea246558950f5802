package feeds

import "strings"

// ConfigString returns the trimmed string value for key from feed.Config or a fallback.
func ConfigString(f Feed, key, fallback string) string {
	if f.Config != nil {
		if raw, ok := f.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptLanguageKey = "accept_language"
)

// Headers builds the request headers used when visiting station homepages for a feed.
func Headers(f Feed) map[string]string {
	headers := make(map[string]string, 2)

	if v := ConfigString(f, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(f, ConfigAcceptLanguageKey, ""); v != "" {
		headers["Accept-Language"] = v
	}
	return headers
}
