// Package answer turns raw model output into a tagged result: structured
// data when the reply parses as a JSON object, plain text otherwise.
package answer

import (
	"encoding/json"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

type Kind int

const (
	KindText Kind = iota
	KindStructured
)

// Answer is either free text or a parsed JSON object, never both. Raw
// keeps the untouched model reply for caching.
type Answer struct {
	Kind Kind
	Text string
	Data map[string]any
	Raw  string
}

// Parse classifies a model reply. Strict unmarshal first, then one repair
// attempt for the usual model damage (markdown fences, trailing commas,
// single quotes). Anything still unparseable is returned as text verbatim.
func Parse(raw string) Answer {
	trimmed := strings.TrimSpace(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(trimmed), &data); err == nil && data != nil {
		return Answer{Kind: KindStructured, Data: data, Raw: raw}
	}

	if repaired, err := jsonrepair.RepairJSON(trimmed); err == nil {
		if err := json.Unmarshal([]byte(repaired), &data); err == nil && len(data) > 0 {
			return Answer{Kind: KindStructured, Data: data, Raw: raw}
		}
	}

	return Answer{Kind: KindText, Text: raw, Raw: raw}
}

// Payload is what goes over the wire: the object for structured answers,
// the string for text ones.
func (a Answer) Payload() any {
	if a.Kind == KindStructured {
		return a.Data
	}
	return a.Text
}
