package research

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const keyPointsSection = "Key Points"

// Summary is the structure recovered from a research answer.
type Summary struct {
	Title     string
	Overview  string
	Sections  []string
	KeyPoints []string
}

// ParseSummary walks the markdown of a research answer. Missing parts stay
// empty; the model is not guaranteed to follow the requested layout.
func ParseSummary(markdown string) (*Summary, error) {
	source := []byte(markdown)
	document := goldmark.DefaultParser().Parse(text.NewReader(source))

	ret := &Summary{}
	section := ""

	err := ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(string(v.Text(source)))
			if v.Level == 1 && ret.Title == "" {
				ret.Title = title
				return ast.WalkSkipChildren, nil
			}
			section = title
			ret.Sections = append(ret.Sections, title)
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			if strings.EqualFold(section, "Summary") && ret.Overview == "" {
				ret.Overview = strings.TrimSpace(string(v.Text(source)))
			}
			return ast.WalkSkipChildren, nil

		case *ast.List:
			if !strings.EqualFold(section, keyPointsSection) {
				return ast.WalkSkipChildren, nil
			}
			for item := v.FirstChild(); item != nil; item = item.NextSibling() {
				ret.KeyPoints = append(ret.KeyPoints, strings.TrimSpace(string(item.Text(source))))
			}
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not walk markdown")
	}

	return ret, nil
}
