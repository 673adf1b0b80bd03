package phantom

import (
	"context"
	"errors"
	"iter"
)

// ErrEmptyIterator is returned by First when the iterator yields no items.
var ErrEmptyIterator = errors.New("phantom: iterator is empty")

// defaultListPageSize is used by list iterators when the query sets none;
// Phantom treats page_size=0 as "everything in one page".
const defaultListPageSize = 100

// paginate walks a list endpoint page by page, fetching lazily.
func paginate(ctx context.Context, s *session, path string, q *Query, opts ...RequestOption) iter.Seq2[Payload, error] {
	return func(yield func(Payload, error) bool) {
		start := 0
		if q != nil {
			start = q.Page
		}
		cur := q.withPage(start)
		if cur.PageSize <= 0 {
			cur.PageSize = defaultListPageSize
		}

		for {
			page, err := s.listPage(ctx, path, cur, opts...)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, item := range page.Data {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				if !yield(item, nil) {
					return
				}
			}

			if !page.HasMore() || len(page.Data) == 0 {
				return
			}
			cur = cur.withPage(cur.Page + 1)
		}
	}
}

// Collect gathers all items from an iterator into a slice.
// It stops on the first error and returns all items collected so far along with the error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	result := make([]T, 0)
	for item, err := range seq {
		if err != nil {
			return result, err
		}
		result = append(result, item)
	}
	return result, nil
}

// CollectN gathers up to n items from an iterator.
// It stops on the first error and returns all items collected so far along with the error.
func CollectN[T any](seq iter.Seq2[T, error], n int) ([]T, error) {
	result := make([]T, 0, n)
	for item, err := range seq {
		if err != nil {
			return result, err
		}
		result = append(result, item)
		if len(result) >= n {
			break
		}
	}
	return result, nil
}

// First returns the first item from an iterator, or an error if the iterator is empty or fails.
func First[T any](seq iter.Seq2[T, error]) (T, error) {
	for item, err := range seq {
		return item, err
	}
	var zero T
	return zero, ErrEmptyIterator
}
