package memory

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"text/template"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/extract.md
var extractPromptRaw string

var extractPromptTmpl = template.Must(template.New("extract").Parse(extractPromptRaw))

// Extract turns a completed conversation exchange into zero or more typed
// memory candidates using the LLM as a labeling function. The provider output
// is never trusted: candidates with an unknown memory_type or empty content
// are dropped silently, and the count is capped per turn. Extraction is
// best-effort: any provider failure yields an empty slice so the surrounding
// conversation turn is never aborted.
func (u *UseCase) Extract(ctx context.Context, exchange *model.Exchange) []model.MemoryCandidate {
	logger := logging.From(ctx)

	var buf bytes.Buffer
	if err := extractPromptTmpl.Execute(&buf, map[string]any{
		"UserMessage":       exchange.UserMessage,
		"AssistantResponse": exchange.AssistantResponse,
		"MaxCandidates":     maxCandidatesPerTurn,
	}); err != nil {
		logger.Warn("failed to build extraction prompt", "error", err)
		return nil
	}

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"content": {
						Type:        genai.TypeString,
						Description: "Concise memory summary, 1-2 sentences",
					},
					"memory_type": {
						Type:        genai.TypeString,
						Description: "Memory classification",
						Enum: []string{
							string(model.MemoryTypePersonalIdentity),
							string(model.MemoryTypePreference),
							string(model.MemoryTypeFactual),
							string(model.MemoryTypeEmotionalState),
						},
					},
					"tags": {
						Type:        genai.TypeArray,
						Description: "Short labels for filtering and debugging",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"content", "memory_type"},
			},
		},
	}

	contents := []*genai.Content{genai.NewContentFromText(buf.String(), genai.RoleUser)}

	resp, err := u.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		logger.Warn("memory extraction failed, skipping turn", "error", err)
		return nil
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		logger.Warn("empty extraction response, skipping turn")
		return nil
	}

	rawJSON := resp.Candidates[0].Content.Parts[0].Text

	var proposed []model.MemoryCandidate
	if err := json.Unmarshal([]byte(rawJSON), &proposed); err != nil {
		logger.Warn("malformed extraction response, skipping turn",
			"error", err, "json", rawJSON)
		return nil
	}

	validated := make([]model.MemoryCandidate, 0, maxCandidatesPerTurn)
	for _, c := range proposed {
		if len(validated) >= maxCandidatesPerTurn {
			break
		}
		if c.Content == "" {
			continue
		}
		if err := c.Type.Validate(); err != nil {
			logger.Debug("dropping candidate with invalid memory type",
				"type", c.Type)
			continue
		}
		validated = append(validated, c)
	}

	return validated
}
