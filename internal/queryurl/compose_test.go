package queryurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shelf/internal/query"
)

const selectParam = "select=title%2Cprice%2Cthumbnail%2Ccategory%2Cdescription%2Cid"

func TestCompose_AllCategories(t *testing.T) {
	c := NewComposer(DefaultBaseURL)
	d := query.Descriptor{Category: "all", Limit: 20, Skip: 0, SortBy: query.SortByTitle, Order: query.OrderAsc}

	target, err := c.Compose(d)
	require.NoError(t, err)

	assert.Equal(t, d, target.Descriptor)
	assert.Equal(t,
		"https://dummyjson.com/products?limit=20&order=asc&"+selectParam+"&skip=0&sortBy=title",
		target.URL)
}

func TestCompose_CategoryScoped(t *testing.T) {
	c := NewComposer(DefaultBaseURL)
	d := query.Descriptor{Category: "smartphones", Limit: 20, Skip: 0, SortBy: query.SortByTitle, Order: query.OrderAsc}

	target, err := c.Compose(d)
	require.NoError(t, err)

	assert.Equal(t,
		"https://dummyjson.com/products/category/smartphones?limit=20&order=asc&"+selectParam+"&skip=0&sortBy=title",
		target.URL)
}

func TestCompose_EscapesCategory(t *testing.T) {
	c := NewComposer("http://catalog.test/products/")
	d := query.Default()
	d.Category = "home & garden/outdoor"

	target, err := c.Compose(d)
	require.NoError(t, err)

	assert.Contains(t, target.URL, "http://catalog.test/products/category/home%20&%20garden%2Foutdoor?")
}

func TestCompose_CarriesNumericParams(t *testing.T) {
	c := NewComposer(DefaultBaseURL)
	d := query.Descriptor{Category: "laptops", Limit: 50, Skip: 40, SortBy: query.SortByRating, Order: query.OrderDesc}

	target, err := c.Compose(d)
	require.NoError(t, err)

	assert.Contains(t, target.URL, "limit=50")
	assert.Contains(t, target.URL, "skip=40")
	assert.Contains(t, target.URL, "sortBy=rating")
	assert.Contains(t, target.URL, "order=desc")
}

func TestCompose_Deterministic(t *testing.T) {
	c := NewComposer(DefaultBaseURL)
	d := query.Default()

	first, err := c.Compose(d)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := c.Compose(d)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompose_RejectsInvalidDescriptor(t *testing.T) {
	c := NewComposer(DefaultBaseURL)
	d := query.Default()
	d.Order = "sideways"

	_, err := c.Compose(d)
	require.Error(t, err)
	assert.True(t, query.IsValidationError(err))
}

func TestCategoryListURL(t *testing.T) {
	c := NewComposer(DefaultBaseURL)
	assert.Equal(t, "https://dummyjson.com/products/category-list", c.CategoryListURL())
}

func TestProductURL(t *testing.T) {
	c := NewComposer(DefaultBaseURL)
	assert.Equal(t, "https://dummyjson.com/products/12?"+selectParam, c.ProductURL(12))
}
