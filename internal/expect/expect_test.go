package expect

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	requester "github.com/wesleyorama2/requester/http"
	"github.com/wesleyorama2/requester/internal/config"
)

const usersJSON = `{"users":[{"name":"Minsuk","first name":"M","age":30}],"total":1,"next":null}`

func TestExtract(t *testing.T) {
	tests := []struct {
		path     string
		expected string
		wantErr  bool
	}{
		{"$.total", "1", false},
		{"$.users[0].name", "Minsuk", false},
		{"$.users[0]['first name']", "M", false},
		{`$.users[0]["age"]`, "30", false},
		{"$.next", "null", false},
		{"$.missing", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := Extract(usersJSON, tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.expected, got, tt.path)
	}

	_, err := Extract("not json", "$.a")
	assert.Error(t, err)
	_, err = Extract("", "$.a")
	assert.Error(t, err)
}

func TestToGjsonPath(t *testing.T) {
	assert.Equal(t, "@this", toGjsonPath("$"))
	assert.Equal(t, "a.b", toGjsonPath("$.a.b"))
	assert.Equal(t, "0.name", toGjsonPath("$[0].name"))
	assert.Equal(t, "a.10.b.2", toGjsonPath("$.a[10].b[2]"))
}

func TestEvaluate(t *testing.T) {
	resp := requester.NewResponse(200, "OK", http.Header{
		"Content-Type": {"application/json; charset=utf-8"},
	}, []byte(usersJSON))

	exp := &config.Expect{
		Status:   200,
		Contains: "Minsuk",
		Charset:  "utf-8",
		JSONPath: map[string]string{"$.total": "1", "$.users[0].name": "Minsuk"},
		Schema:   `{"type":"object","required":["users","total"]}`,
	}

	results := Evaluate(resp, resp.Text(), exp)
	require.Len(t, results, 6)
	assert.True(t, Passed(results), "%+v", results)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"status", "contains", "charset", "jsonPath $.total", "jsonPath $.users[0].name", "schema"}, names)
}

func TestEvaluate_Failures(t *testing.T) {
	resp := requester.NewResponse(404, "Not Found", nil, []byte(`{"error":"missing"}`))

	exp := &config.Expect{
		Status:   200,
		Contains: "Minsuk",
		Charset:  "EUC-KR",
		JSONPath: map[string]string{"$.error": "gone"},
		Schema:   `{"type":"object","required":["users"]}`,
	}

	results := Evaluate(resp, resp.Text(), exp)
	require.Len(t, results, 5)
	assert.False(t, Passed(results))
	for _, r := range results {
		assert.False(t, r.Passed, r.Name)
	}
	assert.Equal(t, "expected charset EUC-KR, got none", results[2].Message)
	assert.Contains(t, results[4].Message, "users")
}

func TestEvaluate_Nil(t *testing.T) {
	resp := requester.NewResponse(200, "OK", nil, nil)
	assert.Empty(t, Evaluate(resp, "", nil))
	assert.True(t, Passed(nil))
}

func TestValidateSchema_Errors(t *testing.T) {
	_, err := validateSchema(`{}`, `{"type": 12}`)
	assert.Error(t, err)

	_, err = validateSchema(`{broken`, `{"type":"object"}`)
	assert.Error(t, err)
}
