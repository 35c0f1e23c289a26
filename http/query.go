package http

import (
	"net/url"
	"sort"
	"strings"
)

// formEscaper adjusts url.QueryEscape output to the classic form encoding,
// where '*' is left alone and '~' is escaped.
var formEscaper = strings.NewReplacer("%2A", "*", "~", "%7E")

// FormEscape percent-encodes s as UTF-8 using form rules: letters, digits and
// ".-*_" pass through, a space becomes '+', and every other byte becomes %XX.
func FormEscape(s string) string {
	return formEscaper.Replace(url.QueryEscape(s))
}

// EncodeQuery encodes params as a query string with escaped keys and values.
// Pairs are emitted in ascending key order.
func EncodeQuery(params map[string]string) string {
	var buf strings.Builder
	for i, key := range sortedKeys(params) {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(FormEscape(key))
		buf.WriteByte('=')
		buf.WriteString(FormEscape(params[key]))
	}
	return buf.String()
}

// encodeParams joins params as key=value pairs in ascending key order without
// escaping anything. POST bodies have always been sent this way and servers in
// the field depend on it, so values containing '&' or '=' are the caller's problem.
func encodeParams(params map[string]string) []byte {
	var buf strings.Builder
	for i, key := range sortedKeys(params) {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(key)
		buf.WriteByte('=')
		buf.WriteString(params[key])
	}
	return []byte(buf.String())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
