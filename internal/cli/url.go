package cli

import (
	"fmt"
	"strings"
)

// normalizeURL adds http:// to URLs given without a scheme
func normalizeURL(rawURL string) string {
	if strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "http://" + rawURL
}

// parseHeaders turns "Key: value" strings into a map. The key keeps its case.
func parseHeaders(headers []string) (map[string]string, error) {
	result := make(map[string]string, len(headers))
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid header %q, want \"Key: value\"", header)
		}
		result[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return result, nil
}

// parsePairs turns "key=value" strings into a map. Only the first '=' splits.
func parsePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid pair %q, want key=value", pair)
		}
		result[key] = value
	}
	return result, nil
}
