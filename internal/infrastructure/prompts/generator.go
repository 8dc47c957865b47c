package prompts

import (
	"bytes"
	"sort"
	"text/template"

	"ui-operator/internal/domain/entity"
)

type SystemPromptData struct {
	AllowedOrigins []string
	Actions        []string
	AnswerSelector string
}

// GenerateSystemPrompt renders baseTemplate with the allowed origins and the
// action vocabulary.
func GenerateSystemPrompt(baseTemplate string, allowedOrigins []string, answerSelector string) (string, error) {
	origins := append([]string(nil), allowedOrigins...)
	sort.Strings(origins)

	actions := make([]string, 0, len(entity.ActionKinds))
	for _, k := range entity.ActionKinds {
		actions = append(actions, string(k))
	}

	data := SystemPromptData{
		AllowedOrigins: origins,
		Actions:        actions,
		AnswerSelector: answerSelector,
	}

	tmpl, err := template.New("system").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
