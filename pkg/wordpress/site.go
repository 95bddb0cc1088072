// Package wordpress reads the public content of a WordPress site: its
// settings, single items and paginated collections of posts, pages,
// categories and tags.
package wordpress

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Sternrassler/wp-reader/pkg/client"
	"github.com/Sternrassler/wp-reader/pkg/item"
	"github.com/Sternrassler/wp-reader/pkg/logging"
	"github.com/Sternrassler/wp-reader/pkg/pagination"
	"github.com/Sternrassler/wp-reader/pkg/query"
	"github.com/Sternrassler/wp-reader/pkg/request"
	"github.com/rs/zerolog"
	"github.com/zoobzio/clockz"
)

const (
	// PublicAPI hosts the REST API of sites on WordPress.com and sites
	// connected through Jetpack.
	PublicAPI = "https://public-api.wordpress.com"

	// DefaultUserAgent is sent when no transport is configured.
	DefaultUserAgent = "wp-reader/1.0"
)

// DefaultRESTRoot returns the wp/v2 root of domain on the public API.
func DefaultRESTRoot(domain string) string {
	return PublicAPI + "/wp/v2/sites/" + domain
}

// DefaultSettingsRoot returns the REST v1.1 site endpoint of domain.
func DefaultSettingsRoot(domain string) string {
	return PublicAPI + "/rest/v1.1/sites/" + domain
}

// Site is a WordPress site and the means to read from it. It is safe for
// concurrent use.
type Site struct {
	Domain string
	Name   string

	restRoot     string
	settingsRoot string
	transport    client.Transport
	decoder      client.Decoder
	discover     pagination.DiscoverConfig
	clock        clockz.Clock
	logger       zerolog.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithName sets a display name.
func WithName(name string) Option {
	return func(s *Site) { s.Name = name }
}

// WithRESTRoots replaces the public API roots, e.g. with the
// https://example.com/wp-json/wp/v2 root of a self-hosted site. An empty
// settings root disables FetchSettings.
func WithRESTRoots(restRoot, settingsRoot string) Option {
	return func(s *Site) {
		s.restRoot = restRoot
		s.settingsRoot = settingsRoot
	}
}

// WithTransport sets the transport used for every request.
func WithTransport(t client.Transport) Option {
	return func(s *Site) { s.transport = t }
}

// WithDecoder sets the response decoder.
func WithDecoder(d client.Decoder) Option {
	return func(s *Site) { s.decoder = d }
}

// WithDiscoverConfig overrides how page counts are discovered.
func WithDiscoverConfig(cfg pagination.DiscoverConfig) Option {
	return func(s *Site) { s.discover = cfg }
}

// WithClock sets the clock used to time page fetches.
func WithClock(c clockz.Clock) Option {
	return func(s *Site) { s.clock = c }
}

// New creates a site. Without WithRESTRoots the site is read through the
// WordPress.com public API, which requires a domain.
func New(domain string, opts ...Option) (*Site, error) {
	s := &Site{
		Domain:   domain,
		Name:     domain,
		decoder:  client.JSONDecoder{},
		discover: pagination.DefaultDiscoverConfig(),
		clock:    clockz.RealClock,
		logger:   logging.NewLogger("wordpress"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.restRoot == "" {
		if domain == "" {
			return nil, fmt.Errorf("domain is required without custom REST roots")
		}
		s.restRoot = DefaultRESTRoot(domain)
		s.settingsRoot = DefaultSettingsRoot(domain)
	}

	if _, err := client.ParseHTTPURL(s.restRoot); err != nil {
		return nil, fmt.Errorf("rest root: %w", err)
	}

	if s.transport == nil {
		t, err := client.NewHTTPTransport(client.DefaultConfig(DefaultUserAgent))
		if err != nil {
			return nil, fmt.Errorf("create transport: %w", err)
		}
		s.transport = t
	}

	s.logger = s.logger.With().Str("site", s.Domain).Logger()
	return s, nil
}

// RESTRoot returns the wp/v2 root collections are read from.
func (s *Site) RESTRoot() string {
	return s.restRoot
}

// SettingsRoot returns the site endpoint settings are read from.
func (s *Site) SettingsRoot() string {
	return s.settingsRoot
}

func (s *Site) transportFor(override client.Transport) client.Transport {
	if override != nil {
		return override
	}
	return s.transport
}

// FetchSettings reads the site settings.
func (s *Site) FetchSettings(ctx context.Context) (item.Settings, error) {
	if s.settingsRoot == "" {
		return item.Settings{}, &client.Error{
			Class:   client.ClassAPI,
			Err:     client.ErrBadArgument,
			Message: "site has no settings root",
		}
	}

	u, err := request.JoinURL(s.settingsRoot)
	if err != nil {
		return item.Settings{}, err
	}

	settings, err := client.FetchJSON[item.Settings](ctx, s.transport, s.decoder, u.String())
	if err != nil {
		s.logger.Warn().Err(err).Str("url", u.String()).Msg("Settings fetch failed")
		return item.Settings{}, err
	}
	return settings, nil
}

// FetchByID reads the single item of type T with the given id.
func FetchByID[T item.Item](ctx context.Context, site *Site, id int) (T, error) {
	var zero T

	if id < 1 {
		return zero, &client.Error{
			Class:   client.ClassAPI,
			Err:     client.ErrBadArgument,
			Message: fmt.Sprintf("id must be >= 1 (got %d)", id),
		}
	}

	u, err := request.JoinURL(site.restRoot, item.Segment[T](), strconv.Itoa(id))
	if err != nil {
		return zero, err
	}
	if fields := item.Fields[T](); len(fields) > 0 {
		u.RawQuery = query.NewSet(query.Fields(fields)).Values().Encode()
	}

	v, err := client.FetchJSON[T](ctx, site.transport, site.decoder, u.String())
	if err != nil {
		site.logger.Warn().
			Err(err).
			Str("segment", item.Segment[T]()).
			Int("id", id).
			Msg("Item fetch failed")
		return zero, err
	}
	return v, nil
}
