package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponseVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want interface{}
	}{
		{"flat text", `{"output_text":"hello"}`, FlatText{}},
		{"structured", `{"output":[{"content":[{"type":"output_text","text":"a"}]}]}`, StructuredOutput{}},
		{"empty flat text with output", `{"output_text":"","output":[{"content":["a"]}]}`, StructuredOutput{}},
		{"no known field", `{"id":"resp_1","status":"failed"}`, Opaque{}},
		{"not json", `upstream timeout`, Opaque{}},
		{"empty body", ``, Opaque{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.IsType(t, tt.want, DecodeResponse([]byte(tt.body)))
		})
	}
}

func TestExtractTextFlat(t *testing.T) {
	assert.Equal(t, "the report", ExtractResponseText([]byte(`{"output_text":"the report","output":[{"content":[{"text":"ignored"}]}]}`)))
}

func TestExtractTextStructured(t *testing.T) {
	body := `{
		"id": "resp_123",
		"output": [
			{"type": "reasoning", "content": []},
			{"type": "message", "content": [
				{"type": "output_text", "text": "first"},
				{"type": "refusal"},
				"second",
				{"type": "output_text", "text": ""},
				42
			]},
			"not an item",
			{"type": "message", "content": [{"type": "output_text", "text": "third"}]}
		]
	}`

	assert.Equal(t, "first\nsecond\nthird", ExtractResponseText([]byte(body)))
}

func TestExtractTextFallsBackToRaw(t *testing.T) {
	body := `{"output":[{"content":[{"type":"refusal"}]}]}`
	assert.Equal(t, body, ExtractResponseText([]byte(body)))

	body = `{"error":{"message":"quota exceeded"}}`
	assert.Equal(t, body, ExtractResponseText([]byte(body)))

	assert.Equal(t, "bad gateway", ExtractResponseText([]byte("  bad gateway \n")))
}

func TestExtractTextNeverEmpty(t *testing.T) {
	for _, body := range []string{"", "   ", "{}", "null", `{"output_text":""}`, `{"output":[]}`} {
		assert.NotEmpty(t, ExtractResponseText([]byte(body)), "body %q", body)
	}
	assert.Equal(t, emptyResponse, ExtractText(nil))
	assert.Equal(t, emptyResponse, ExtractText(FlatText{Text: "  "}))
	assert.Equal(t, "raw", ExtractText(StructuredOutput{Raw: []byte("raw")}))
}

func TestWrapReport(t *testing.T) {
	report := WrapReport("body")
	require.True(t, strings.HasPrefix(report, ReportHeader+"\n"))
	require.True(t, strings.HasSuffix(report, "\n"+ReportFooter))
	assert.Equal(t, ReportHeader+"\nbody\n"+ReportFooter, report)
}
