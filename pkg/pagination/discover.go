package pagination

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/wp-reader/pkg/client"
	"github.com/Sternrassler/wp-reader/pkg/logging"
	"github.com/Sternrassler/wp-reader/pkg/query"
	"github.com/Sternrassler/wp-reader/pkg/request"
	"github.com/rs/zerolog"
)

// TotalPagesHeader is the header WordPress reports the page count in.
const TotalPagesHeader = "X-WP-TotalPages"

// Plan is the part of a collection request the discoverer needs.
// *request.Collection[T] implements it for every item type.
type Plan interface {
	Validate() error
	Segment() string
	PinnedPage() (int, bool)
	QuerySet() query.Set
	PageQuery(n int) query.Set
	PageWindow(total int) (request.Window, bool)
}

// DiscoverConfig holds discoverer configuration.
type DiscoverConfig struct {
	// TotalPagesHeader names the response header carrying the page count.
	TotalPagesHeader string

	// ProbeMethod is the method of the page count probe (GET or HEAD).
	ProbeMethod string

	// MaxTotalPages bounds the page count accepted from the header.
	MaxTotalPages int
}

// DefaultMaxTotalPages accepts a million items at the largest page size.
const DefaultMaxTotalPages = 10_000

// DefaultDiscoverConfig returns the configuration for WordPress servers.
func DefaultDiscoverConfig() DiscoverConfig {
	return DiscoverConfig{
		TotalPagesHeader: TotalPagesHeader,
		ProbeMethod:      http.MethodGet,
		MaxTotalPages:    DefaultMaxTotalPages,
	}
}

// Discoverer resolves a collection request into the URLs of its pages.
type Discoverer struct {
	transport client.Transport
	root      string
	config    DiscoverConfig
	logger    zerolog.Logger
}

// NewDiscoverer creates a discoverer for collections below root.
func NewDiscoverer(transport client.Transport, root string, config DiscoverConfig) *Discoverer {
	if config.TotalPagesHeader == "" {
		config.TotalPagesHeader = TotalPagesHeader
	}
	if config.ProbeMethod == "" {
		config.ProbeMethod = http.MethodGet
	}
	if config.MaxTotalPages <= 0 {
		config.MaxTotalPages = DefaultMaxTotalPages
	}

	return &Discoverer{
		transport: transport,
		root:      root,
		config:    config,
		logger:    logging.NewLogger("wp-discovery"),
	}
}

// PageURLs returns the URLs of every page in the plan's window, in page
// order. A pinned page yields exactly one URL without a network call.
// An empty result with a nil error means no page matched.
func (d *Discoverer) PageURLs(ctx context.Context, plan Plan) ([]string, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	base, err := request.JoinURL(d.root, plan.Segment())
	if err != nil {
		return nil, err
	}

	if page, ok := plan.PinnedPage(); ok {
		u, err := pageURL(base, plan.QuerySet())
		if err != nil {
			return nil, err
		}
		d.logger.Debug().
			Str("segment", plan.Segment()).
			Int("page", page).
			Msg("Page pinned, skipping discovery")
		return []string{u}, nil
	}

	total, err := d.probe(ctx, base, plan)
	if err != nil {
		return nil, err
	}
	discoveredPages.Observe(float64(total))

	window, ok := plan.PageWindow(total)
	if !ok {
		d.logger.Info().
			Str("segment", plan.Segment()).
			Int("total_pages", total).
			Msg("No pages in window")
		return nil, nil
	}

	urls := make([]string, 0, window.Len())
	for _, page := range window.Pages() {
		u, err := pageURL(base, plan.PageQuery(page))
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	d.logger.Debug().
		Str("segment", plan.Segment()).
		Int("total_pages", total).
		Int("first_page", window.Start).
		Int("last_page", window.End).
		Msg("Discovered page URLs")

	return urls, nil
}

// probe requests the first page and reads the page count header.
func (d *Discoverer) probe(ctx context.Context, base *url.URL, plan Plan) (int, error) {
	probeURL, err := pageURL(base, plan.QuerySet())
	if err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := d.transport.Do(ctx, d.config.ProbeMethod, probeURL)
	if err != nil {
		d.logger.Warn().
			Err(err).
			Str("url", probeURL).
			Msg("Page count probe failed")
		return 0, err
	}

	raw := resp.Header.Get(d.config.TotalPagesHeader)
	if raw == "" {
		// Without a count, a WordPress error document explains more than a
		// missing header does.
		if err := client.CheckStatus(resp, probeURL); err != nil {
			return 0, err
		}
	}

	total, err := strconv.Atoi(raw)
	if err == nil && total > d.config.MaxTotalPages {
		err = fmt.Errorf("total pages %d exceed the limit of %d", total, d.config.MaxTotalPages)
	}
	if err != nil || total < 0 {
		return 0, &client.Error{
			Class:      client.ClassAPI,
			StatusCode: resp.StatusCode,
			URL:        probeURL,
			Message:    fmt.Sprintf("%s: %q", d.config.TotalPagesHeader, raw),
			Err:        client.ErrBadHeader,
			Cause:      err,
		}
	}

	d.logger.Debug().
		Str("url", probeURL).
		Int("status_code", resp.StatusCode).
		Int("total_pages", total).
		Dur("duration", time.Since(start)).
		Msg("Page count probed")

	return total, nil
}

// pageURL builds a URL from a copy of base and the query. The result is
// parsed again so a URL that cannot round trip fails before any fetch.
func pageURL(base *url.URL, q query.Set) (string, error) {
	u := *base
	u.RawQuery = q.Values().Encode()

	s := u.String()
	if _, err := url.Parse(s); err != nil {
		return "", client.NewError(client.ErrBadURLComponents, s, err)
	}
	return s, nil
}
