// Package reply turns raw generated text into a structured GeneratedReply.
package reply

import (
	"encoding/json"
	"strings"

	"github.com/unboundedlabs/unbounded/internal/types"
)

// rawReply tolerates both the instructed "text" key and the "content" key some
// models substitute for it.
type rawReply struct {
	Text    string         `json:"text"`
	Content string         `json:"content"`
	Emotion string         `json:"emotion"`
	Action  string         `json:"action"`
	Effects map[string]int `json:"effects"`
}

// Parse extracts a structured reply from raw model output. It never fails:
// when no usable JSON is found, the entire raw text becomes the reply body and
// the tags stay nil.
func Parse(raw string) types.GeneratedReply {
	fallback := types.GeneratedReply{Text: strings.TrimSpace(raw)}

	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return fallback
	}

	var parsed rawReply
	if err := json.Unmarshal([]byte(clean[start:end+1]), &parsed); err != nil {
		return fallback
	}

	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		text = strings.TrimSpace(parsed.Content)
	}
	if text == "" {
		return fallback
	}

	out := types.GeneratedReply{Text: text, Effects: parsed.Effects}
	if emotion := normalizeTag(parsed.Emotion); emotion != "" {
		out.Emotion = &emotion
	}
	if action := normalizeTag(parsed.Action); action != "" {
		out.Action = &action
	}
	return out
}

func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch tag {
	case "none", "null", "n/a", "-":
		return ""
	}
	return tag
}
