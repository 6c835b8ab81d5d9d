package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadInputs reads article definitions from a JSON or YAML file. The format
// is chosen by extension (.json, .yaml, .yml). The file holds a list of
// articles.
func LoadInputs(path string) ([]ArticleInput, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseInputs(data, filepath.Ext(path))
}

// ParseInputs decodes article definitions in the format named by ext.
func ParseInputs(data []byte, ext string) ([]ArticleInput, error) {
	var inputs []ArticleInput

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("failed to parse JSON articles: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("failed to parse YAML articles: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported article file extension %q (want .json, .yaml or .yml)", ext)
	}

	for i, in := range inputs {
		if strings.TrimSpace(in.Content) == "" {
			return nil, fmt.Errorf("article %d (%q): %w", i+1, in.Title, ErrContentRequired)
		}
	}
	return inputs, nil
}

// Import creates every input for tenantID and returns the created articles.
// It stops at the first failure.
func Import(ctx context.Context, store Store, tenantID string, inputs []ArticleInput) ([]Article, error) {
	created := make([]Article, 0, len(inputs))
	for i, in := range inputs {
		a, err := store.CreateArticle(ctx, tenantID, in)
		if err != nil {
			return created, fmt.Errorf("failed to import article %d (%q): %w", i+1, in.Title, err)
		}
		created = append(created, *a)
	}
	return created, nil
}
