package pagination

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Sternrassler/wp-reader/pkg/client"
	"github.com/Sternrassler/wp-reader/pkg/logging"
	"github.com/Sternrassler/wp-reader/pkg/query"
	"github.com/rs/zerolog"
	"github.com/zoobzio/clockz"
	"golang.org/x/sync/errgroup"
)

// errConsumerStopped cancels outstanding fetches once the consumer stops
// iterating.
var errConsumerStopped = errors.New("page stream stopped by consumer")

// MinConcurrency is the lowest explicit concurrency ceiling. Smaller
// explicit values are raised to it.
const MinConcurrency = 2

// Config holds streamer configuration.
type Config struct {
	// MaxConcurrency caps parallel page fetches. Zero or less means one
	// fetch per URL.
	MaxConcurrency int

	// Clock measures page fetch durations.
	Clock clockz.Clock
}

// DefaultConfig returns an unbounded configuration using the real clock.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 0,
		Clock:          clockz.RealClock,
	}
}

// EffectiveConcurrency returns the number of parallel fetches used for n URLs.
func EffectiveConcurrency(maxConcurrency, n int) int {
	if n <= 0 {
		return 0
	}
	c := maxConcurrency
	switch {
	case c <= 0:
		c = n
	case c < MinConcurrency:
		c = MinConcurrency
	}
	return min(c, n)
}

// Batch holds the decoded items of one page, in server order.
type Batch[T any] struct {
	Page  int
	URL   string
	Items []T
}

// Streamer fetches page URLs concurrently and streams decoded batches as
// they complete.
type Streamer[T any] struct {
	transport client.Transport
	decoder   client.Decoder
	config    Config
	logger    zerolog.Logger
}

// NewStreamer creates a streamer. A nil decoder defaults to client.JSONDecoder.
func NewStreamer[T any](transport client.Transport, decoder client.Decoder, config Config) *Streamer[T] {
	if decoder == nil {
		decoder = client.JSONDecoder{}
	}
	if config.Clock == nil {
		config.Clock = clockz.RealClock
	}

	return &Streamer[T]{
		transport: transport,
		decoder:   decoder,
		config:    config,
		logger:    logging.NewLogger("wp-streamer"),
	}
}

// Batches fetches every URL with at most EffectiveConcurrency requests in
// flight and yields batches in completion order. A fetch slot is released
// only once its batch has been pulled, so a slow consumer holds back new
// requests.
//
// The first failing page ends the stream: no new fetches start, outstanding
// ones are cancelled and the error is yielded once as the final element.
// Breaking out of the loop or cancelling ctx cancels outstanding fetches.
func (s *Streamer[T]) Batches(ctx context.Context, urls []string) iter.Seq2[Batch[T], error] {
	return func(yield func(Batch[T], error) bool) {
		if len(urls) == 0 {
			return
		}

		limit := EffectiveConcurrency(s.config.MaxConcurrency, len(urls))
		start := s.config.Clock.Now()

		sctx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		var g errgroup.Group
		g.SetLimit(limit)

		// The first failing page is recorded once and cancels the rest.
		var (
			failOnce sync.Once
			failed   atomic.Bool
			failErr  error
		)
		fail := func(err error) {
			failOnce.Do(func() {
				failErr = err
				failed.Store(true)
				cancel(err)
			})
		}

		s.logger.Info().
			Int("pages", len(urls)).
			Int("concurrency", limit).
			Msg("Starting page stream")

		results := make(chan Batch[T])

		go func() {
			defer close(results)
			for _, u := range urls {
				if sctx.Err() != nil {
					break
				}
				g.Go(func() error {
					batch, err := s.fetchPage(sctx, u)
					if err != nil {
						fail(err)
						return err
					}
					select {
					case results <- batch:
						return nil
					case <-sctx.Done():
						return context.Cause(sctx)
					}
				})
			}
			_ = g.Wait()
		}()

		delivered := 0
		for batch := range results {
			// A page failed or ctx was cancelled; drain without yielding.
			if failed.Load() || ctx.Err() != nil {
				continue
			}
			if !yield(batch, nil) {
				cancel(errConsumerStopped)
				for range results {
				}
				s.logger.Debug().
					Int("delivered", delivered+1).
					Int("pages", len(urls)).
					Msg("Page stream stopped by consumer")
				return
			}
			delivered++
		}

		// results is closed after g.Wait, so failErr is settled here.
		streamErr := failErr
		if streamErr == nil && delivered < len(urls) {
			streamErr = ctx.Err()
			if streamErr == nil {
				streamErr = context.Canceled
			}
		}

		duration := s.config.Clock.Now().Sub(start)
		if streamErr != nil {
			s.logger.Error().
				Err(streamErr).
				Str("error_class", string(client.ClassOf(streamErr))).
				Int("delivered", delivered).
				Int("pages", len(urls)).
				Dur("duration", duration).
				Msg("Page stream aborted")
			yield(Batch[T]{}, streamErr)
			return
		}

		s.logger.Info().
			Int("pages", delivered).
			Dur("duration", duration).
			Msg("Page stream complete")
	}
}

// Items flattens Batches into single items.
func (s *Streamer[T]) Items(ctx context.Context, urls []string) iter.Seq2[T, error] {
	return Flatten(s.Batches(ctx, urls))
}

// fetchPage fetches and decodes one page. Cancellation is checked before the
// request is issued.
func (s *Streamer[T]) fetchPage(ctx context.Context, rawURL string) (Batch[T], error) {
	page := pageNumber(rawURL)

	if err := ctx.Err(); err != nil {
		pagesFetchedTotal.WithLabelValues(outcomeCancelled).Inc()
		return Batch[T]{}, err
	}

	pageFetchesInFlight.Inc()
	start := s.config.Clock.Now()
	items, err := client.FetchJSON[[]T](ctx, s.transport, s.decoder, rawURL)
	pageFetchDuration.Observe(s.config.Clock.Now().Sub(start).Seconds())
	pageFetchesInFlight.Dec()

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			pagesFetchedTotal.WithLabelValues(outcomeCancelled).Inc()
			return Batch[T]{}, err
		}
		pagesFetchedTotal.WithLabelValues(outcomeError).Inc()
		s.logger.Warn().
			Err(err).
			Str("url", rawURL).
			Int("page", page).
			Str("error_class", string(client.ClassOf(err))).
			Msg("Page fetch failed")
		return Batch[T]{}, fmt.Errorf("fetch page %d: %w", page, err)
	}

	pagesFetchedTotal.WithLabelValues(outcomeSuccess).Inc()
	s.logger.Debug().
		Str("url", rawURL).
		Int("page", page).
		Int("items", len(items)).
		Msg("Page fetched")

	return Batch[T]{Page: page, URL: rawURL, Items: items}, nil
}

// pageNumber extracts the page parameter of a page URL, or 0.
func pageNumber(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get(query.NamePage))
	if err != nil {
		return 0
	}
	return n
}
