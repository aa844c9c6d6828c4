package analysis

import (
	"encoding/json"
	"strings"
)

const (
	ReportHeader = "=== AI cost analysis report ==="
	ReportFooter = "=== end of report ==="

	emptyResponse = "<empty response>"
)

// Response is a decoded generation service response. The concrete type is one
// of FlatText, StructuredOutput or Opaque.
type Response interface {
	raw() []byte
}

// FlatText is a response exposing an already flattened text field.
type FlatText struct {
	Text string
	Raw  []byte
}

// StructuredOutput is a response carrying a list of output items, each made of
// content fragments.
type StructuredOutput struct {
	Items []OutputItem
	Raw   []byte
}

// OutputItem holds the text fragments of one output entry.
type OutputItem struct {
	Fragments []string
}

// Opaque is any response no text could be located in.
type Opaque struct {
	Raw []byte
}

func (r FlatText) raw() []byte         { return r.Raw }
func (r StructuredOutput) raw() []byte { return r.Raw }
func (r Opaque) raw() []byte           { return r.Raw }

type responseEnvelope struct {
	OutputText *string           `json:"output_text"`
	Output     []json.RawMessage `json:"output"`
}

type outputItemEnvelope struct {
	Content []json.RawMessage `json:"content"`
}

type fragmentEnvelope struct {
	Text *string `json:"text"`
}

// DecodeResponse classifies a raw response body. It never fails: bodies that
// are not JSON or carry no recognisable text field become Opaque.
func DecodeResponse(body []byte) Response {
	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Opaque{Raw: body}
	}

	if env.OutputText != nil && strings.TrimSpace(*env.OutputText) != "" {
		return FlatText{Text: *env.OutputText, Raw: body}
	}

	if len(env.Output) > 0 {
		return StructuredOutput{Items: decodeItems(env.Output), Raw: body}
	}

	return Opaque{Raw: body}
}

func decodeItems(output []json.RawMessage) []OutputItem {
	items := make([]OutputItem, 0, len(output))
	for _, rawItem := range output {
		var item outputItemEnvelope
		if err := json.Unmarshal(rawItem, &item); err != nil {
			items = append(items, OutputItem{})
			continue
		}

		var fragments []string
		for _, rawFragment := range item.Content {
			if text, ok := fragmentText(rawFragment); ok {
				fragments = append(fragments, text)
			}
		}
		items = append(items, OutputItem{Fragments: fragments})
	}
	return items
}

// fragmentText accepts either a bare string or an object with a text field.
func fragmentText(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	var f fragmentEnvelope
	if err := json.Unmarshal(raw, &f); err != nil || f.Text == nil {
		return "", false
	}
	return *f.Text, *f.Text != ""
}

// ExtractText returns the text of a decoded response, falling back to the raw
// body when no text is found. The result is never empty.
func ExtractText(resp Response) string {
	switch r := resp.(type) {
	case FlatText:
		if strings.TrimSpace(r.Text) != "" {
			return r.Text
		}
	case StructuredOutput:
		var parts []string
		for _, item := range r.Items {
			parts = append(parts, item.Fragments...)
		}
		if text := strings.TrimSpace(strings.Join(parts, "\n")); text != "" {
			return text
		}
	case nil:
		return emptyResponse
	}

	return stringify(resp.raw())
}

func stringify(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return emptyResponse
	}
	return s
}

// ExtractResponseText decodes and extracts in one step.
func ExtractResponseText(body []byte) string {
	return ExtractText(DecodeResponse(body))
}

// WrapReport frames the analysis text so the report boundaries can be found
// in mixed console output.
func WrapReport(text string) string {
	return ReportHeader + "\n" + text + "\n" + ReportFooter
}
