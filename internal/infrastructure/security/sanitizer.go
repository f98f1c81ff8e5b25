package security

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Sensitive header names that should be redacted before logging or auditing.
// Cookies carry the SRI session and the Authorization header carries the
// captcha-derived bearer token.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
}

// Sensitive field names in JSON bodies that should be redacted.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"api_key",
	"apikey",
	"access_token",
	"mensaje_token",
	"credential",
	"auth",
}

const redactedValue = "[REDACTED]"

// SanitizeHeaders returns a copy of the headers with sensitive values redacted.
func SanitizeHeaders(headers http.Header) map[string]string {
	sanitized := make(map[string]string)

	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			sanitized[key] = redactedValue
		} else {
			sanitized[key] = strings.Join(values, ", ")
		}
	}

	return sanitized
}

// SanitizeBody redacts sensitive fields from a JSON body and truncates large
// payloads. Non-JSON bodies (captcha payloads, SOAP XML) are wrapped as text.
func SanitizeBody(body []byte, maxSize int) json.RawMessage {
	if len(body) == 0 {
		return nil
	}

	if !utf8.Valid(body) {
		wrapped, _ := json.Marshal(map[string]any{
			"_binary": true,
			"_size":   len(body),
		})
		return wrapped
	}

	if maxSize > 0 && len(body) > maxSize {
		truncated, _ := json.Marshal(map[string]any{
			"_truncated": true,
			"_size":      len(body),
			"_preview":   string(body[:maxSize]),
		})
		return truncated
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		wrapped, _ := json.Marshal(map[string]any{
			"_raw":    string(body),
			"_format": "text",
		})
		return wrapped
	}

	result, err := json.Marshal(sanitizeValue(data))
	if err != nil {
		wrapped, _ := json.Marshal(map[string]any{
			"_raw":    string(body),
			"_format": "text",
		})
		return wrapped
	}

	return result
}

// sanitizeValue recursively sanitizes a JSON value.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return sanitizeMap(val)
	case []any:
		sanitized := make([]any, len(val))
		for i, item := range val {
			sanitized[i] = sanitizeValue(item)
		}
		return sanitized
	default:
		return val
	}
}

// sanitizeMap redacts sensitive fields from a JSON object.
func sanitizeMap(m map[string]any) map[string]any {
	sanitized := make(map[string]any)

	for key, value := range m {
		lowerKey := strings.ToLower(key)

		isSensitive := false
		for _, field := range sensitiveFields {
			if strings.Contains(lowerKey, field) {
				isSensitive = true
				break
			}
		}

		if isSensitive {
			sanitized[key] = redactedValue
		} else {
			sanitized[key] = sanitizeValue(value)
		}
	}

	return sanitized
}

// SanitizeURL redacts the values of sensitive query parameters.
func SanitizeURL(url string) string {
	lowerURL := strings.ToLower(url)

	for _, field := range sensitiveFields {
		if strings.Contains(lowerURL, field+"=") {
			url = redactQueryParam(url, field)
		}
	}

	return url
}

// redactQueryParam redacts the value of a single query parameter, matching
// the parameter name case-insensitively.
func redactQueryParam(url, param string) string {
	lower := strings.ToLower(url)
	search := param + "="

	idx := strings.Index(lower, search)
	if idx < 0 {
		return url
	}

	valueStart := idx + len(search)
	valueEnd := valueStart
	for valueEnd < len(url) && url[valueEnd] != '&' && url[valueEnd] != '#' {
		valueEnd++
	}

	return url[:valueStart] + redactedValue + url[valueEnd:]
}
