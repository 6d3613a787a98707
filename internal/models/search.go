package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SortField is a column the search endpoint can order by
type SortField string

const (
	SortByTitle    SortField = "title"
	SortByPlatform SortField = "platform"
)

// Valid reports whether f is a supported sort column
func (f SortField) Valid() bool {
	return f == SortByTitle || f == SortByPlatform
}

// SortOrder is the direction of a search ordering
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Valid reports whether o is a supported direction
func (o SortOrder) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// SearchFilter is the parameter set of GET /games/search. Zero values impose
// no constraint; Completed is nil when completion does not matter.
type SearchFilter struct {
	Title     string
	Genre     Genre
	Platform  Platform
	Completed *bool
	SortBy    SortField
	Order     SortOrder
}

// Values encodes the filter as query parameters. Only constraining fields are
// included; sortBy and order are always present.
func (f SearchFilter) Values() url.Values {
	q := url.Values{}
	if title := strings.TrimSpace(f.Title); title != "" {
		q.Set("title", title)
	}
	if f.Genre != "" {
		q.Set("genre", string(f.Genre))
	}
	if f.Platform != "" {
		q.Set("platform", string(f.Platform))
	}
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}

	sortBy, order := f.SortBy, f.Order
	if sortBy == "" {
		sortBy = SortByTitle
	}
	if order == "" {
		order = OrderAsc
	}
	q.Set("sortBy", string(sortBy))
	q.Set("order", string(order))
	return q
}

// ParseSearchFilter decodes query parameters produced by Values
func ParseSearchFilter(q url.Values) (SearchFilter, error) {
	f := SearchFilter{
		Title:    strings.TrimSpace(q.Get("title")),
		Genre:    Genre(q.Get("genre")),
		Platform: Platform(q.Get("platform")),
		SortBy:   SortField(q.Get("sortBy")),
		Order:    SortOrder(q.Get("order")),
	}

	if f.Genre != "" && !f.Genre.Valid() {
		return f, fmt.Errorf("%w: unknown genre %q", ErrValidation, f.Genre)
	}
	if f.Platform != "" && !f.Platform.Valid() {
		return f, fmt.Errorf("%w: unknown platform %q", ErrValidation, f.Platform)
	}

	if raw := q.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("%w: completed must be true or false", ErrValidation)
		}
		f.Completed = &completed
	}

	if f.SortBy == "" {
		f.SortBy = SortByTitle
	}
	if !f.SortBy.Valid() {
		return f, fmt.Errorf("%w: sortBy must be title or platform", ErrValidation)
	}
	if f.Order == "" {
		f.Order = OrderAsc
	}
	if !f.Order.Valid() {
		return f, fmt.Errorf("%w: order must be asc or desc", ErrValidation)
	}

	return f, nil
}
