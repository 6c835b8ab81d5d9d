package kb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseInputs_JSON(t *testing.T) {
	data := []byte(`[
		{"title": "Returns", "content": "Return within 30 days.", "tags": ["returns"], "isActive": false},
		{"title": "Shipping", "content": "Ships in 5 days.", "category": "shipping"}
	]`)

	inputs, err := ParseInputs(data, ".json")
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, "Returns", inputs[0].Title)
	assert.Equal(t, []string{"returns"}, inputs[0].Tags)
	require.NotNil(t, inputs[0].IsActive)
	assert.False(t, *inputs[0].IsActive)
	assert.Equal(t, "shipping", inputs[1].Category)
	assert.Nil(t, inputs[1].IsActive)
}

func TestParseInputs_YAML(t *testing.T) {
	data := []byte(`
- title: Warranty
  content: One year warranty on all devices.
  category: policy
  tags: [warranty, devices]
  sourceType: url
  sourceUrl: https://example.com/warranty
`)

	inputs, err := ParseInputs(data, ".YML")
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "policy", inputs[0].Category)
	assert.Equal(t, []string{"warranty", "devices"}, inputs[0].Tags)
	assert.Equal(t, "url", inputs[0].SourceType)
	assert.Equal(t, "https://example.com/warranty", inputs[0].SourceURL)
}

func TestParseInputs_Errors(t *testing.T) {
	_, err := ParseInputs([]byte(`[]`), ".txt")
	assert.ErrorContains(t, err, "unsupported")

	_, err = ParseInputs([]byte(`{not json`), ".json")
	assert.Error(t, err)

	_, err = ParseInputs([]byte(`[{"title": "Empty", "content": ""}]`), ".json")
	assert.ErrorIs(t, err, ErrContentRequired)
}

func TestLoadInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title": "A", "content": "alpha"}]`), 0644))

	inputs, err := LoadInputs(path)
	require.NoError(t, err)
	assert.Len(t, inputs, 1)

	_, err = LoadInputs(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := Import(ctx, store, "t1", []ArticleInput{
		{Title: "A", Content: "alpha"},
		{Title: "B", Content: "beta"},
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	all, err := store.FindArticles(ctx, "t1", Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImport_StopsOnError(t *testing.T) {
	store := new(MockStore)
	store.On("CreateArticle", mock.Anything, "t1", ArticleInput{Title: "A", Content: "alpha"}).
		Return(&Article{ID: "1", Title: "A"}, nil)
	store.On("CreateArticle", mock.Anything, "t1", ArticleInput{Title: "B", Content: "beta"}).
		Return(nil, errors.New("disk full"))

	created, err := Import(context.Background(), store, "t1", []ArticleInput{
		{Title: "A", Content: "alpha"},
		{Title: "B", Content: "beta"},
		{Title: "C", Content: "gamma"},
	})
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, created, 1)
	store.AssertNumberOfCalls(t, "CreateArticle", 2)
}
