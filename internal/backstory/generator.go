// Package backstory generates a character's backstory once, after creation,
// through the same generation backend the interaction pipeline uses.
package backstory

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/unboundedlabs/unbounded/internal/llm"
	"github.com/unboundedlabs/unbounded/internal/types"
)

// CharacterStore is the character access the generator needs.
type CharacterStore interface {
	GetByID(ctx context.Context, id string) (*types.Character, error)
	UpdateBackstory(ctx context.Context, id, backstory string) error
}

// MemoryAppender ingests the finished backstory as retrievable memory.
type MemoryAppender interface {
	Append(ctx context.Context, mem *types.MemoryFragment) error
}

// Request tunes one backstory generation.
type Request struct {
	Tone   string
	Length string
	Themes []string
}

var lengthGuidelines = map[string]string{
	"short":  "Keep the backstory concise, focusing on key events (around 200-300 words).",
	"medium": "Provide a balanced backstory with moderate detail (around 500-700 words).",
	"long":   "Create a detailed backstory with rich character development (around 1000-1200 words).",
}

const systemInstruction = "You are a creative writing assistant specializing in character backstories. Your responses should be well-structured, engaging, and maintain internal consistency."

const promptTemplateText = `Create a compelling backstory for a character with the following details:

Name: {{.Name}}
Description: {{.Description}}
{{- if .Personality}}
Personality: {{.Personality}}
{{- end}}

The backstory should have a {{.Tone}} tone.
{{- if .Themes}}
Incorporate the following themes: {{.Themes}}
{{- end}}

{{.LengthGuideline}}

Include:
- Key life events that shaped the character
- Relationships and connections
- Motivations and goals
- Personal struggles and growth

The backstory should feel natural and believable, avoiding cliches while maintaining internal consistency. Format the response as a well-structured narrative with clear paragraphs.`

var promptTemplate = template.Must(template.New("backstory").Parse(promptTemplateText))

// Generator produces and stores backstories.
type Generator struct {
	client     llm.Client
	characters CharacterStore
	memories   MemoryAppender
	timeout    time.Duration
}

// NewGenerator returns a Generator.
func NewGenerator(client llm.Client, characters CharacterStore, memories MemoryAppender, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Generator{
		client:     client,
		characters: characters,
		memories:   memories,
		timeout:    timeout,
	}
}

// Generate fills in the character's backstory and ingests it into memory. A
// backstory is generated once: an existing one is returned unchanged.
func (g *Generator) Generate(ctx context.Context, characterID string, req Request) (string, error) {
	character, err := g.characters.GetByID(ctx, characterID)
	if err != nil {
		return "", err
	}
	if character.Backstory != "" {
		return character.Backstory, nil
	}

	prompt, err := buildPrompt(character, req)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	content, err := g.client.Generate(callCtx, llm.Request{
		System:      systemInstruction,
		Prompt:      prompt,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)

	if err := g.characters.UpdateBackstory(ctx, characterID, content); err != nil {
		return "", err
	}
	if err := g.memories.Append(ctx, &types.MemoryFragment{
		CharacterID: characterID,
		Content:     "Backstory: " + content,
	}); err != nil {
		// The backstory itself is stored; retrieval just loses one source.
		slog.Warn("failed to ingest backstory into memory", "character_id", characterID, "error", err.Error())
	}
	return content, nil
}

func buildPrompt(character *types.Character, req Request) (string, error) {
	tone := req.Tone
	if tone == "" {
		tone = "balanced"
	}
	guideline, ok := lengthGuidelines[req.Length]
	if !ok {
		guideline = lengthGuidelines["medium"]
	}

	data := struct {
		Name            string
		Description     string
		Personality     string
		Tone            string
		Themes          string
		LengthGuideline string
	}{
		Name:            character.Name,
		Description:     character.Description,
		Personality:     character.Personality,
		Tone:            tone,
		Themes:          strings.Join(req.Themes, ", "),
		LengthGuideline: guideline,
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build backstory prompt: %w", err)
	}
	return buf.String(), nil
}
