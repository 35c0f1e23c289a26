package expect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// indexPattern matches bracketed array indexes such as [0] or [12].
var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// Extract returns the value at a JSONPath-style expression ($.users[0].name)
// in body. Strings come back unquoted; other values in their JSON form.
func Extract(body, path string) (string, error) {
	if body == "" {
		return "", fmt.Errorf("empty JSON body")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.Valid(body) {
		return "", fmt.Errorf("body is not valid JSON")
	}

	result := gjson.Get(body, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// toGjsonPath converts $.users[0]['first name'] to users.0.first name.
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	path = strings.NewReplacer("['", ".", "']", "", `["`, ".", `"]`, "").Replace(path)
	path = indexPattern.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(path, ".")
}
