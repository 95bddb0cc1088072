package wordpress

import (
	"context"

	"github.com/Sternrassler/wp-reader/pkg/item"
	"github.com/Sternrassler/wp-reader/pkg/request"
)

// Callback adapters run an operation in a new goroutine and report through
// callbacks. They follow the stream semantics: on the first error, onBatch
// receives it once and the adapter completes. Cancel ctx to stop early.

// FetchBatches calls onBatch for every batch of req, then onComplete.
// A failure is passed to onBatch with nil items, exactly once.
func FetchBatches[T item.Item](ctx context.Context, site *Site, req *request.Collection[T], onBatch func([]T, error), onComplete func()) {
	go func() {
		defer func() {
			if onComplete != nil {
				onComplete()
			}
		}()

		for batch, err := range StreamBatches(ctx, site, req) {
			if err != nil {
				onBatch(nil, err)
				return
			}
			onBatch(batch.Items, nil)
		}
	}()
}

// FetchAllAsync collects every item of req and passes the result to onComplete.
func FetchAllAsync[T item.Item](ctx context.Context, site *Site, req *request.Collection[T], onComplete func([]T, error)) {
	go func() {
		onComplete(FetchItems(ctx, site, req))
	}()
}

// FetchSettingsAsync reads the site settings and passes them to onComplete.
func (s *Site) FetchSettingsAsync(ctx context.Context, onComplete func(item.Settings, error)) {
	go func() {
		onComplete(s.FetchSettings(ctx))
	}()
}

// FetchByIDAsync reads a single item and passes it to onComplete.
func FetchByIDAsync[T item.Item](ctx context.Context, site *Site, id int, onComplete func(T, error)) {
	go func() {
		onComplete(FetchByID[T](ctx, site, id))
	}()
}
