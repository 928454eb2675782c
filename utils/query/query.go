package query

import (
	"strings"

	"gorm.io/gorm"
)

// Options configures a listing over one collection. One Options value per
// handler instantiation, mirroring how each dashboard table binds to a single
// remote collection.
type Options struct {
	// OwnerColumn is the qualified column holding the owning teacher's ID,
	// e.g. "courses.teacher_id". Empty means the collection is shared and no
	// owner filter is applied.
	OwnerColumn string

	// Joins are raw JOIN clauses applied before filtering, for collections
	// whose owner or search columns live on a related table (videos join
	// courses).
	Joins []string

	// SearchColumns are the qualified columns eligible for text search. A row
	// matches when ANY column contains the query, case-insensitively.
	SearchColumns []string

	// OrderColumn defaults to "created_at"; listings are always descending,
	// newest first.
	OrderColumn string

	// Preloads lists gorm associations loaded with each row.
	Preloads []string

	// DefaultLimit is used when the caller does not pass a page size.
	DefaultLimit int
}

// Params carries the per-request listing inputs.
type Params struct {
	OwnerID uint
	Page    int
	Limit   int
	Search  string
}

// Page is one page of a filtered, ordered collection.
type Page[T any] struct {
	Items []T
	Total int64
}

// List fetches one page of a collection: owner filter, OR-of-substrings
// search, newest-first order, and offset/limit, all executed server-side.
// An empty owner on an owner-filtered collection yields an empty page rather
// than an error, matching the "no identity means no data" contract.
func List[T any](db *gorm.DB, opts Options, p Params) (Page[T], error) {
	var page Page[T]
	page.Items = []T{}

	if opts.OwnerColumn != "" && p.OwnerID == 0 {
		return page, nil
	}

	var zero T
	q := db.Model(&zero)

	for _, join := range opts.Joins {
		q = q.Joins(join)
	}

	if opts.OwnerColumn != "" {
		q = q.Where(opts.OwnerColumn+" = ?", p.OwnerID)
	}

	if p.Search != "" && len(opts.SearchColumns) > 0 {
		pattern := "%" + strings.ToLower(p.Search) + "%"
		conds := make([]string, 0, len(opts.SearchColumns))
		args := make([]interface{}, 0, len(opts.SearchColumns))
		for _, col := range opts.SearchColumns {
			// LOWER(...) LIKE keeps the match case-insensitive on both
			// Postgres and the sqlite test driver.
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, pattern)
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}

	if err := q.Count(&page.Total).Error; err != nil {
		return page, err
	}

	limit := p.Limit
	if limit < 1 {
		limit = opts.DefaultLimit
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	pageNum := p.Page
	if pageNum < 1 {
		pageNum = 1
	}
	offset := (pageNum - 1) * limit

	order := opts.OrderColumn
	if order == "" {
		order = "created_at"
	}

	for _, preload := range opts.Preloads {
		q = q.Preload(preload)
	}

	if err := q.Order(order + " DESC").Limit(limit).Offset(offset).Find(&page.Items).Error; err != nil {
		return page, err
	}

	return page, nil
}
