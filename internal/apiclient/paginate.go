package apiclient

import "context"

// DefaultMaxPages bounds every paginated fetch.
const DefaultMaxPages = 100

// PageInfo is the pagination state a service reports alongside a page.
// Page is zero when the service does not echo the current page.
type PageInfo struct {
	Page       int
	TotalPages int
}

// Pages collects every item fetched. Truncated is set when MaxPages was
// reached while the service still reported more pages.
type Pages[T any] struct {
	Items     []T
	Fetched   int
	Truncated bool
}

// PageFunc fetches one page.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, PageInfo, error)

// Paginate calls fetch from page 1 while page <= total pages, advancing to
// the page after the one the service reports.
func Paginate[T any](ctx context.Context, maxPages int, fetch PageFunc[T]) (Pages[T], error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var result Pages[T]
	page, total := 1, maxPages
	for page <= total {
		if result.Fetched >= maxPages {
			result.Truncated = true
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		items, info, err := fetch(ctx, page)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, items...)
		result.Fetched++

		total = info.TotalPages
		next := page + 1
		if info.Page >= page {
			next = info.Page + 1
		}
		page = next
	}
	return result, nil
}
