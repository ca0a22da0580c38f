package chat

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/intent.md
var intentPromptRaw string

var intentPromptTmpl = template.Must(template.New("intent").Parse(intentPromptRaw))

// detectIntent asks the model for a short label describing the user's intent.
// Best-effort: any failure returns an empty intent and the turn continues
// without it.
func (s *Session) detectIntent(ctx context.Context, message string) string {
	logger := logging.From(ctx)

	var buf bytes.Buffer
	if err := intentPromptTmpl.Execute(&buf, map[string]any{"Message": message}); err != nil {
		logger.Warn("failed to build intent prompt", "error", err)
		return ""
	}

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	resp, err := s.gemini.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(buf.String(), genai.RoleUser)}, config)
	if err != nil {
		logger.Warn("intent detection failed, continuing without intent", "error", err)
		return ""
	}

	return strings.TrimSpace(responseToText(resp))
}
