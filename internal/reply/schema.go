package reply

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema describes the JSON object backends are instructed to return.
func Schema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "The character's in-character reply.",
			},
			"emotion": {
				Type:        "string",
				Description: "Single-word emotional state, e.g. happy, sad, angry.",
			},
			"action": {
				Type:        "string",
				Description: "Single-word action the character takes, e.g. rest, play.",
			},
			"effects": {
				Type:        "object",
				Description: "Optional vital deltas keyed by health, energy, happiness, hunger, fatigue, stress.",
				AdditionalProperties: &jsonschema.Schema{
					Type: "integer",
				},
			},
		},
		Required: []string{"text"},
	}
}

// SchemaJSON renders the reply schema for embedding into prompt instructions.
func SchemaJSON() string {
	raw, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return `{"type":"object","required":["text"]}`
	}
	return string(raw)
}
