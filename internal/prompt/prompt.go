// Package prompt holds the system prompt templates and renders them into
// model-ready messages. Templates are compiled into the binary so a broken
// deployment cannot lose them.
package prompt

import (
	_ "embed"
	"strings"
)

//go:embed templates/system_prompt.txt
var systemPrompt string

//go:embed templates/system_prompt_with_context.txt
var systemPromptWithContext string

const contextPlaceholder = "{context}"

// Template selects between the plain and the context-carrying system
// prompt. Selection happens on actual retrieved context, not on what the
// caller asked for.
type Template struct {
	system      string
	withContext bool
}

// Prompt is a fully rendered message pair.
type Prompt struct {
	System   string
	Question string
}

func Build(hasContext bool) Template {
	if hasContext {
		return Template{system: systemPromptWithContext, withContext: true}
	}
	return Template{system: systemPrompt}
}

// Render substitutes the retrieved context into the system prompt and
// frames the user question. contextText is ignored by the plain template.
func (t Template) Render(contextText, question string) Prompt {
	system := t.system
	if t.withContext {
		system = strings.ReplaceAll(system, contextPlaceholder, contextText)
	}
	return Prompt{
		System:   system,
		Question: "Question:" + question,
	}
}
