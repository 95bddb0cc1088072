// Package pagination fetches paginated WordPress collections.
//
// WordPress reports the number of pages of a collection in the
// X-WP-TotalPages response header. A Discoverer probes the first page,
// reads the header and builds the URL of every page in the request's
// window. A Streamer then fetches those URLs with bounded concurrency and
// yields decoded batches as they arrive.
//
// Example usage:
//
//	req := request.New[item.Post](query.Sort(query.OrderDesc)).WithMaxPages(5)
//	urls, err := pagination.NewDiscoverer(transport, root, pagination.DefaultDiscoverConfig()).PageURLs(ctx, req)
//	if err != nil {
//		return err
//	}
//	streamer := pagination.NewStreamer[item.Post](transport, client.JSONDecoder{}, pagination.DefaultConfig())
//	for batch, err := range streamer.Batches(ctx, urls) {
//		if err != nil {
//			return err
//		}
//		handle(batch.Items)
//	}
//
// The streamer:
//   - Keeps at most MaxConcurrency fetches in flight (unbounded when zero)
//   - Yields batches in completion order, not page order
//   - Starts the next fetch only after a finished batch has been pulled
//   - Aborts on the first page error and yields that error last
//   - Cancels outstanding fetches when the consumer stops early
//
// Nothing is retried.
package pagination
