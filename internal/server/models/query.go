package models

import "time"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// QueryParams filters and pages the upload history of a device.
type QueryParams struct {
	Page     int
	PageSize int
	// BeginTime/EndTime bound CreatedAt; zero means unbounded.
	BeginTime time.Time
	EndTime   time.Time
	// Status matches requests having at least one file in this state.
	Status FileStatus
	// Keyword is a case-insensitive substring of Description.
	Keyword string
	// Ascending sorts oldest first; the default is newest first.
	Ascending bool
}

// Normalize clamps paging to sane bounds.
func (q QueryParams) Normalize() QueryParams {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// Offset is the number of rows skipped before the current page.
func (q QueryParams) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is one page of results.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Total    int
}
