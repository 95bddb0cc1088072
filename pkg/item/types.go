package item

import "github.com/Sternrassler/wp-reader/pkg/wpdate"

var (
	postFields     = []string{"id", "link", "slug", "date_gmt", "modified_gmt", "title", "content", "excerpt", "categories", "tags"}
	pageFields     = []string{"id", "link", "slug", "date_gmt", "modified_gmt", "title", "content", "excerpt"}
	taxonomyFields = []string{"id", "link", "slug", "count", "name", "description"}
)

// Post is a subset of https://developer.wordpress.org/rest-api/reference/posts/
type Post struct {
	ID          int             `json:"id"`
	Link        string          `json:"link"`
	Slug        string          `json:"slug"`
	DateGMT     wpdate.Time     `json:"date_gmt"`
	ModifiedGMT wpdate.Time     `json:"modified_gmt"`
	Title       RenderedContent `json:"title"`
	Content     RenderedContent `json:"content"`
	Excerpt     RenderedContent `json:"excerpt"`
	Categories  []int           `json:"categories"`
	Tags        []int           `json:"tags"`
}

func (Post) PathSegment() string      { return "posts" }
func (Post) FieldNames() []string     { return postFields }
func (p Post) ContentTitle() string   { return p.Title.Cleaned() }
func (p Post) ContentHTML() string    { return p.Content.Cleaned() }
func (p Post) ExcerptCleaned() string { return p.Excerpt.Cleaned() }
func (p Post) SlugCleaned() string    { return unescape(p.Slug) }

// Page is a subset of https://developer.wordpress.org/rest-api/reference/pages/
type Page struct {
	ID          int             `json:"id"`
	Link        string          `json:"link"`
	Slug        string          `json:"slug"`
	DateGMT     wpdate.Time     `json:"date_gmt"`
	ModifiedGMT wpdate.Time     `json:"modified_gmt"`
	Title       RenderedContent `json:"title"`
	Content     RenderedContent `json:"content"`
	Excerpt     RenderedContent `json:"excerpt"`
}

func (Page) PathSegment() string      { return "pages" }
func (Page) FieldNames() []string     { return pageFields }
func (p Page) ContentTitle() string   { return p.Title.Cleaned() }
func (p Page) ContentHTML() string    { return p.Content.Cleaned() }
func (p Page) ExcerptCleaned() string { return p.Excerpt.Cleaned() }
func (p Page) SlugCleaned() string    { return unescape(p.Slug) }

// Category is a subset of https://developer.wordpress.org/rest-api/reference/categories/
type Category struct {
	ID          int    `json:"id"`
	Link        string `json:"link"`
	Slug        string `json:"slug"`
	Count       int    `json:"count"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (Category) PathSegment() string    { return "categories" }
func (Category) FieldNames() []string   { return taxonomyFields }
func (c Category) TaxonomyName() string { return c.Name }
func (c Category) SlugCleaned() string  { return unescape(c.Slug) }

// Tag is a subset of https://developer.wordpress.org/rest-api/reference/tags/
type Tag struct {
	ID          int    `json:"id"`
	Link        string `json:"link"`
	Slug        string `json:"slug"`
	Count       int    `json:"count"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (Tag) PathSegment() string    { return "tags" }
func (Tag) FieldNames() []string   { return taxonomyFields }
func (t Tag) TaxonomyName() string { return t.Name }
func (t Tag) SlugCleaned() string  { return unescape(t.Slug) }

// Settings is the site description served by the REST API v1.1 site endpoint.
type Settings struct {
	ID          int    `json:"ID"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"URL"`
	Icon        Icon   `json:"icon"`
	Logo        Logo   `json:"logo"`
}

// Icon is the site icon.
type Icon struct {
	Img string `json:"img"`
	Ico string `json:"ico"`
}

// Logo is the site logo.
type Logo struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}
