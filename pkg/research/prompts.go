package research

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"
)

//go:embed prompts/*
var promptsFS embed.FS

// SystemPrompt fixes the markdown layout of every research summary.
var SystemPrompt = mustReadPrompt("prompts/system.md")

var userPromptTemplate = template.Must(
	template.New("user.tmpl").
		Funcs(sprig.TxtFuncMap()).
		ParseFS(promptsFS, "prompts/user.tmpl"),
)

func mustReadPrompt(name string) string {
	b, err := promptsFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func RenderUserPrompt(req *Request) (string, error) {
	var buf bytes.Buffer
	if err := userPromptTemplate.Execute(&buf, req); err != nil {
		return "", errors.Wrap(err, "could not render user prompt")
	}
	return buf.String(), nil
}
