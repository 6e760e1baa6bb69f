package research

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const generatedLayout = "2006-01-02 15:04:05"

type Metadata struct {
	Topic     string
	Generated time.Time
	Model     string
}

type frontMatter struct {
	Topic     string `yaml:"topic"`
	Generated string `yaml:"generated"`
	Model     string `yaml:"model"`
}

// RenderMarkdown prefixes content with a YAML front matter block.
func RenderMarkdown(content string, meta Metadata) ([]byte, error) {
	header, err := yaml.Marshal(frontMatter{
		Topic:     meta.Topic,
		Generated: meta.Generated.Format(generatedLayout),
		Model:     meta.Model,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not encode front matter")
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(content)
	return buf.Bytes(), nil
}

// SaveMarkdown writes content to <dir>/<sanitized topic>.md, creating dir if
// needed, and returns the path of the written file.
func SaveMarkdown(content string, meta Metadata, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "could not create output directory %s", dir)
	}

	b, err := RenderMarkdown(content, meta)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, SanitizeFilename(meta.Topic)+".md")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errors.Wrapf(err, "could not write %s", path)
	}

	return path, nil
}
