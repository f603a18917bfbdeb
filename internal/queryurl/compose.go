// Package queryurl compiles query descriptors into outbound catalog requests.
package queryurl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/roach88/shelf/internal/query"
)

// DefaultBaseURL is the public catalog the client talks to by default.
const DefaultBaseURL = "https://dummyjson.com/products"

// SelectFields is the fixed projection requested from the catalog: the
// product attributes needed downstream, in request order.
var SelectFields = []string{"title", "price", "thumbnail", "category", "description", "id"}

// Target is a compiled request: the descriptor it came from and the URL
// that fetches it.
type Target struct {
	Descriptor query.Descriptor
	URL        string
}

// Composer compiles descriptors against a catalog base URL.
//
// Composer is stateless apart from BaseURL; Compose is a pure function and
// identical descriptors always yield identical URLs.
type Composer struct {
	BaseURL string
}

// NewComposer creates a Composer for the given base URL.
// A trailing slash is dropped so paths join cleanly.
func NewComposer(baseURL string) *Composer {
	return &Composer{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Compose converts a descriptor into a request target.
//
// The "all" category maps to the base endpoint; any other category maps to
// <base>/category/<escaped name>. Query parameters are encoded in sorted
// key order.
func (c *Composer) Compose(d query.Descriptor) (Target, error) {
	if err := d.Validate(); err != nil {
		return Target{}, fmt.Errorf("compose query: %w", err)
	}

	path := c.BaseURL
	if !d.IsAll() {
		path = c.BaseURL + "/category/" + url.PathEscape(d.Category)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(d.Limit))
	params.Set("skip", strconv.Itoa(d.Skip))
	params.Set("sortBy", string(d.SortBy))
	params.Set("order", string(d.Order))
	params.Set("select", strings.Join(SelectFields, ","))

	return Target{
		Descriptor: d,
		URL:        path + "?" + params.Encode(),
	}, nil
}

// CategoryListURL returns the endpoint listing category names.
func (c *Composer) CategoryListURL() string {
	return c.BaseURL + "/category-list"
}

// ProductURL returns the endpoint for a single product, with the same
// projection as list queries.
func (c *Composer) ProductURL(id int64) string {
	params := url.Values{}
	params.Set("select", strings.Join(SelectFields, ","))
	return c.BaseURL + "/" + strconv.FormatInt(id, 10) + "?" + params.Encode()
}
