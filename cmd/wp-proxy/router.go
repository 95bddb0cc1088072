package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/wp-reader/internal/config"
	"github.com/Sternrassler/wp-reader/pkg/client"
	"github.com/Sternrassler/wp-reader/pkg/item"
	"github.com/Sternrassler/wp-reader/pkg/logging"
	"github.com/Sternrassler/wp-reader/pkg/metrics"
	"github.com/Sternrassler/wp-reader/pkg/query"
	"github.com/Sternrassler/wp-reader/pkg/request"
	"github.com/Sternrassler/wp-reader/pkg/wordpress"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

var logger = logging.NewLogger("wp-proxy")

func newRouter(site *wordpress.Site, cfg config.SiteCfg) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/settings", settingsHandler(site))

	mountCollection[item.Post](r, site, cfg)
	mountCollection[item.Page](r, site, cfg)
	mountCollection[item.Category](r, site, cfg)
	mountCollection[item.Tag](r, site, cfg)

	return r
}

func mountCollection[T item.Item](r chi.Router, site *wordpress.Site, cfg config.SiteCfg) {
	segment := item.Segment[T]()
	r.Get("/"+segment, collectionHandler[T](site, cfg))
	r.Get("/"+segment+"/{id}", itemHandler[T](site))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func settingsHandler(site *wordpress.Site) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := site.FetchSettings(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

type collectionResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

func collectionHandler[T item.Item](site *wordpress.Site, cfg config.SiteCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseCollection[T](r.URL.Query(), cfg)
		if err != nil {
			writeError(w, err)
			return
		}

		items, err := wordpress.FetchItems(r.Context(), site, req)
		if err != nil {
			writeError(w, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, collectionResponse[T]{Count: len(items), Items: items})
	}
}

func itemHandler[T item.Item](site *wordpress.Site) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, badRequest("id must be an integer"))
			return
		}

		v, err := wordpress.FetchByID[T](r.Context(), site, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// parseCollection maps proxy query parameters onto a collection request.
// Unknown parameters are ignored.
func parseCollection[T item.Item](values url.Values, cfg config.SiteCfg) (*request.Collection[T], error) {
	req := request.New[T]().
		WithPerPage(cfg.PerPage).
		WithMaxConcurrency(cfg.MaxConcurrency)

	dates := []struct {
		name string
		make func(time.Time) query.Parameter
	}{
		{query.NamePostedAfter, query.PostedAfter},
		{query.NamePostedBefore, query.PostedBefore},
		{query.NameModifiedAfter, query.ModifiedAfter},
		{query.NameModifiedBefore, query.ModifiedBefore},
	}
	for _, d := range dates {
		raw := values.Get(d.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, badRequest(fmt.Sprintf("%s must be an RFC 3339 timestamp", d.name))
		}
		req.Update(d.make(t))
	}

	switch by := query.OrderBy(values.Get("orderby")); by {
	case "":
	case query.OrderByDate, query.OrderByModified:
		req.Update(query.SortBy(by))
	default:
		return nil, badRequest("orderby must be date or modified")
	}

	switch order := query.Order(values.Get(query.NameOrder)); order {
	case "":
	case query.OrderAsc, query.OrderDesc:
		req.Update(query.Sort(order))
	default:
		return nil, badRequest("order must be asc or desc")
	}

	ints := []struct {
		name  string
		apply func(int)
	}{
		{query.NamePerPage, func(n int) { req.WithPerPage(n) }},
		{query.NamePage, func(n int) { req.Update(query.Page(n)) }},
		{"start_page", func(n int) { req.WithStartPage(n) }},
		{"max_pages", func(n int) { req.WithMaxPages(n) }},
	}
	for _, p := range ints {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, badRequest(fmt.Sprintf("%s must be an integer", p.name))
		}
		p.apply(n)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func badRequest(msg string) error {
	e := client.NewError(client.ErrBadArgument, "", nil)
	e.Message = msg
	return e
}

// statusFor maps a WordPress error to the proxy response status.
func statusFor(err error) int {
	switch {
	case client.IsBadArgument(err), client.ClassOf(err) == client.ClassURL:
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusBadGateway
	}
}

// statusClientClosedRequest is the nginx convention for a request the
// client abandoned.
const statusClientClosedRequest = 499

type errorResponse struct {
	Error string       `json:"error"`
	Class client.Class `json:"class"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("class", string(client.ClassOf(err))).Msg("Upstream request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Class: client.ClassOf(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("Failed to write response")
	}
}
