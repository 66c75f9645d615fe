package payload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogPage = `<html><head>
<script src="/static/app.js"></script>
<script>
  window.analytics = {page: "catalog"};
</script>
<script>
  BACKEND.components.catalog = {
    categoryInfo: {
      code: "root",
      subNodes: [
        {code: "electronics", title: "Electronics", link: "c/electronics/"},
        {code: "books", title: "Books", link: "c/books/", promo: null,},
      ],
    },
    misc: null,
  };
</script>
</head><body></body></html>`

type catalogPayload struct {
	CategoryInfo struct {
		Code     string `json:"code"`
		SubNodes []struct {
			Code  string `json:"code"`
			Title string `json:"title"`
			Link  string `json:"link"`
		} `json:"subNodes"`
	} `json:"categoryInfo"`
}

func TestExtractCatalogPayload(t *testing.T) {
	t.Parallel()

	var got catalogPayload
	err := Extract([]byte(catalogPage), CatalogMarker, &got)
	require.NoError(t, err)

	require.Len(t, got.CategoryInfo.SubNodes, 2)
	assert.Equal(t, "electronics", got.CategoryInfo.SubNodes[0].Code)
	assert.Equal(t, "books", got.CategoryInfo.SubNodes[1].Code)
	assert.Equal(t, "c/electronics/", got.CategoryInfo.SubNodes[0].Link)
}

func TestExtractPreservesSubNodeOrder(t *testing.T) {
	t.Parallel()

	page := `<script>BACKEND.components.catalog = {categoryInfo: {subNodes: [
		{code: "c"}, {code: "a"}, {code: "b"},
	]}};</script>`

	var got catalogPayload
	require.NoError(t, Extract([]byte(page), CatalogMarker, &got))

	codes := make([]string, 0, len(got.CategoryInfo.SubNodes))
	for _, n := range got.CategoryInfo.SubNodes {
		codes = append(codes, n.Code)
	}
	assert.Equal(t, []string{"c", "a", "b"}, codes)
}

func TestExtractToleratesLooseLiteral(t *testing.T) {
	t.Parallel()

	page := `<script>
		BACKEND.components.item = {card: {id: "P100", rating: 4.5, stock: null,},};
	</script>`

	var got map[string]any
	require.NoError(t, Extract([]byte(page), ItemMarker, &got))

	card, ok := got["card"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "P100", card["id"])
	assert.Nil(t, card["stock"])
}

func TestExtractMarkerNotFound(t *testing.T) {
	t.Parallel()

	page := `<script>window.other = {a: 1};</script>`
	var got map[string]any
	err := Extract([]byte(page), CatalogMarker, &got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMarkerNotFound))
}

func TestExtractRejectsNonAssignment(t *testing.T) {
	t.Parallel()

	page := `<script>if (BACKEND.components.catalog) { doThing(); }</script>`
	var got map[string]any
	err := Extract([]byte(page), CatalogMarker, &got)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMarkerNotFound))
}
