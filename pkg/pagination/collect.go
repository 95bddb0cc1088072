package pagination

import "iter"

// Flatten turns a batch stream into an item stream. Items keep their order
// within a batch; batches appear in the order seq yields them.
func Flatten[T any](seq iter.Seq2[Batch[T], error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for batch, err := range seq {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, it := range batch.Items {
				if !yield(it, nil) {
					return
				}
			}
		}
	}
}

// Collect drains seq into one slice in batch completion order. Items
// collected before an error are returned along with it.
func Collect[T any](seq iter.Seq2[Batch[T], error]) ([]T, error) {
	var items []T
	for batch, err := range seq {
		if err != nil {
			return items, err
		}
		items = append(items, batch.Items...)
	}
	return items, nil
}
