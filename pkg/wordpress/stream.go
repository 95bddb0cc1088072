package wordpress

import (
	"context"
	"iter"

	"github.com/Sternrassler/wp-reader/pkg/item"
	"github.com/Sternrassler/wp-reader/pkg/pagination"
	"github.com/Sternrassler/wp-reader/pkg/request"
)

// PageURLs discovers the page URLs of req.
func PageURLs[T item.Item](ctx context.Context, site *Site, req *request.Collection[T]) ([]string, error) {
	if req == nil {
		req = request.New[T]()
	}
	d := pagination.NewDiscoverer(site.transportFor(req.Transport), site.restRoot, site.discover)
	return d.PageURLs(ctx, req)
}

// StreamBatches discovers the pages of req and streams their batches in
// completion order. Discovery runs when iteration starts; a discovery error
// is yielded as the only element. A nil req fetches every page.
func StreamBatches[T item.Item](ctx context.Context, site *Site, req *request.Collection[T]) iter.Seq2[pagination.Batch[T], error] {
	if req == nil {
		req = request.New[T]()
	}

	return func(yield func(pagination.Batch[T], error) bool) {
		urls, err := PageURLs(ctx, site, req)
		if err != nil {
			yield(pagination.Batch[T]{}, err)
			return
		}

		streamer := pagination.NewStreamer[T](site.transportFor(req.Transport), site.decoder, pagination.Config{
			MaxConcurrency: req.MaxConcurrency,
			Clock:          site.clock,
		})
		for batch, err := range streamer.Batches(ctx, urls) {
			if !yield(batch, err) {
				return
			}
		}
	}
}

// StreamItems is StreamBatches flattened into single items.
func StreamItems[T item.Item](ctx context.Context, site *Site, req *request.Collection[T]) iter.Seq2[T, error] {
	return pagination.Flatten(StreamBatches(ctx, site, req))
}

// FetchItems collects every item of req in batch completion order.
func FetchItems[T item.Item](ctx context.Context, site *Site, req *request.Collection[T]) ([]T, error) {
	return pagination.Collect(StreamBatches(ctx, site, req))
}

// PostStream streams batches of posts.
func (s *Site) PostStream(ctx context.Context, req *request.Collection[item.Post]) iter.Seq2[pagination.Batch[item.Post], error] {
	return StreamBatches(ctx, s, req)
}

// PageStream streams batches of pages.
func (s *Site) PageStream(ctx context.Context, req *request.Collection[item.Page]) iter.Seq2[pagination.Batch[item.Page], error] {
	return StreamBatches(ctx, s, req)
}

// CategoryStream streams batches of categories.
func (s *Site) CategoryStream(ctx context.Context, req *request.Collection[item.Category]) iter.Seq2[pagination.Batch[item.Category], error] {
	return StreamBatches(ctx, s, req)
}

// TagStream streams batches of tags.
func (s *Site) TagStream(ctx context.Context, req *request.Collection[item.Tag]) iter.Seq2[pagination.Batch[item.Tag], error] {
	return StreamBatches(ctx, s, req)
}

// FetchPosts collects posts.
func (s *Site) FetchPosts(ctx context.Context, req *request.Collection[item.Post]) ([]item.Post, error) {
	return FetchItems(ctx, s, req)
}

// FetchPages collects pages.
func (s *Site) FetchPages(ctx context.Context, req *request.Collection[item.Page]) ([]item.Page, error) {
	return FetchItems(ctx, s, req)
}

// FetchCategories collects categories.
func (s *Site) FetchCategories(ctx context.Context, req *request.Collection[item.Category]) ([]item.Category, error) {
	return FetchItems(ctx, s, req)
}

// FetchTags collects tags.
func (s *Site) FetchTags(ctx context.Context, req *request.Collection[item.Tag]) ([]item.Tag, error) {
	return FetchItems(ctx, s, req)
}
