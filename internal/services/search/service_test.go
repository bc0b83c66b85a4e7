package search

import (
	"context"
	"testing"

	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/internal/services/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMatcher struct {
	result chat.SearchResult
	calls  int
}

func (m *stubMatcher) MatchSearch(context.Context, string, *catalog.Catalog, string) chat.SearchResult {
	m.calls++
	return m.result
}

func newCatalog(t *testing.T, names ...string) *catalog.Catalog {
	t.Helper()
	products := make([]catalog.Product, len(names))
	for i, n := range names {
		products[i] = catalog.Product{ID: "id-of-" + n, Name: n, Category: "Home", Description: n + " for the home"}
	}
	c, err := catalog.New(products)
	require.NoError(t, err)
	return c
}

func TestVaseMirrorMugWithoutBackend(t *testing.T) {
	cat := newCatalog(t, "Vase", "Mirror", "Mug")

	got := NewService(nil).Search(context.Background(), "vase", cat, "en")
	assert.Equal(t, chat.SearchResult{IDs: []string{"id-of-Vase"}, Reason: "Text search"}, got)
}

func TestBackendResultIsAuthoritative(t *testing.T) {
	cat := newCatalog(t, "Vase", "Mirror", "Mug")
	m := &stubMatcher{result: chat.SearchResult{IDs: []string{"id-of-Mug", "id-of-Vase"}, Reason: "Kitchen and decor"}}

	got := NewService(m).Search(context.Background(), "something", cat, "en")
	assert.Equal(t, []string{"id-of-Mug", "id-of-Vase"}, got.IDs)
	assert.Equal(t, "Kitchen and decor", got.Reason)
	assert.Equal(t, 1, m.calls)
}

func TestEmptyBackendResultFallsBack(t *testing.T) {
	cat := newCatalog(t, "Vase", "Mirror", "Mug")
	m := &stubMatcher{result: chat.SearchResult{IDs: []string{}}}

	got := NewService(m).Search(context.Background(), "MIRR", cat, "en")
	assert.Equal(t, chat.SearchResult{IDs: []string{"id-of-Mirror"}, Reason: "Text search"}, got)
}

func TestFallbackMatchesAnyField(t *testing.T) {
	cat, err := catalog.New([]catalog.Product{
		{ID: "1", Name: "Lamp", Category: "Lighting", Description: "Warm light"},
		{ID: "2", Name: "Rug", Category: "Textiles", Description: "Wool rug with a lighting-bolt motif"},
		{ID: "3", Name: "Bowl", Category: "Kitchen", Description: "Salad bowl"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, TextMatch("LIGHTING", cat))
	assert.Equal(t, []string{"3"}, TextMatch("kitchen", cat))
}

func TestSearchTotality(t *testing.T) {
	cat := newCatalog(t, "Vase", "Mirror", "Mug", "Lamp", "Rug", "Bowl")

	queries := []string{"", "zzz-no-match", "日本語", "🙂", "  "}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			got := NewService(&stubMatcher{}).Search(context.Background(), q, cat, "en")
			require.NotNil(t, got.IDs)
			assert.Equal(t, "Text search", got.Reason)
			if q == "" {
				assert.Len(t, got.IDs, 6, "empty query matches everything")
			} else {
				assert.Equal(t, []string{"id-of-Vase", "id-of-Mirror", "id-of-Mug", "id-of-Lamp"}, got.IDs)
			}
		})
	}
}

func TestEmptyCatalog(t *testing.T) {
	empty, err := catalog.New(nil)
	require.NoError(t, err)

	got := NewService(nil).Search(context.Background(), "vase", empty, "en")
	assert.NotNil(t, got.IDs)
	assert.Empty(t, got.IDs)
}
