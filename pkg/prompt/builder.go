package prompt

import (
	"bytes"
	_ "embed"
	"text/template"
	"time"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed templates/system.md
var systemPromptRaw string

var systemPromptTmpl = template.Must(template.New("system").Parse(systemPromptRaw))

const memoryTimeFormat = "Jan 2, 2006, 3:04 PM"

// Builder renders the dynamic system prompt for a conversation turn from the
// persona, the user's identity and the retrieved memory sets.
type Builder struct {
	persona Persona
}

// NewBuilder creates a prompt builder for the given persona
func NewBuilder(persona Persona) *Builder {
	return &Builder{persona: persona}
}

// memoryView is a render-ready memory entry
type memoryView struct {
	Index     int
	Timestamp string
	OwnerID   string
	Content   string
}

// BuildSystemPrompt assembles the full system prompt: persona, user identity,
// personal memories and hive mind memories, in that order. Memory sets are
// rendered in the order the retriever produced them.
func (b *Builder) BuildSystemPrompt(identity *model.UserIdentity, personal, hive []*model.MemoryNode, query string) (string, error) {
	data := map[string]any{
		"Persona":  b.persona,
		"Identity": identity,
		"Personal": memoryViews(personal, false),
		"HiveMind": memoryViews(hive, true),
		"Query":    truncate(query, 50),
		"Limit":    len(personal),
	}

	var buf bytes.Buffer
	if err := systemPromptTmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt")
	}
	return buf.String(), nil
}

func memoryViews(nodes []*model.MemoryNode, withOwner bool) []memoryView {
	views := make([]memoryView, 0, len(nodes))
	for i, n := range nodes {
		v := memoryView{
			Index:     i + 1,
			Timestamp: n.CreatedAt.In(time.UTC).Format(memoryTimeFormat),
			Content:   n.Content,
		}
		if withOwner {
			v.OwnerID = n.OwnerID
		}
		views = append(views, v)
	}
	return views
}

// truncate shortens s to maxLen runes, never splitting a multi-byte
// character
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
