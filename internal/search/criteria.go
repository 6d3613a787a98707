package search

import (
	"fmt"
	"strings"

	"gametracker/internal/models"
)

// Completion filters by the completed flag
type Completion string

const (
	CompletionAll       Completion = "all"
	CompletionCompleted Completion = "true"
	CompletionPending   Completion = "false"
)

// Valid reports whether c is a known completion filter
func (c Completion) Valid() bool {
	return c == CompletionAll || c == CompletionCompleted || c == CompletionPending
}

// Field names accepted by Controller.UpdateCriterion
const (
	FieldTitle     = "title"
	FieldGenre     = "genre"
	FieldPlatform  = "platform"
	FieldCompleted = "completed"
	FieldSortBy    = "sortBy"
	FieldOrder     = "order"
)

// Criteria is the filter state edited by the user. Empty Genre and Platform
// mean "any".
type Criteria struct {
	Title      string
	Genre      models.Genre
	Platform   models.Platform
	Completion Completion
	SortBy     models.SortField
	Order      models.SortOrder
}

// DefaultCriteria returns the unfiltered state sorted by title ascending
func DefaultCriteria() Criteria {
	return Criteria{
		Completion: CompletionAll,
		SortBy:     models.SortByTitle,
		Order:      models.OrderAsc,
	}
}

// Active reports whether any criterion actually narrows the result set.
// Sorting never counts.
func (c Criteria) Active() bool {
	return strings.TrimSpace(c.Title) != "" ||
		c.Genre != "" ||
		c.Platform != "" ||
		(c.Completion != "" && c.Completion != CompletionAll)
}

// Filter converts the criteria into the remote query parameters
func (c Criteria) Filter() models.SearchFilter {
	f := models.SearchFilter{
		Title:    strings.TrimSpace(c.Title),
		Genre:    c.Genre,
		Platform: c.Platform,
		SortBy:   c.SortBy,
		Order:    c.Order,
	}
	switch c.Completion {
	case CompletionCompleted:
		completed := true
		f.Completed = &completed
	case CompletionPending:
		completed := false
		f.Completed = &completed
	}
	return f
}

// with returns a copy of c with field set to value
func (c Criteria) with(field, value string) (Criteria, error) {
	switch field {
	case FieldTitle:
		c.Title = value
	case FieldGenre:
		g := models.Genre(value)
		if g != "" && !g.Valid() {
			return c, fmt.Errorf("%w: unknown genre %q", models.ErrValidation, value)
		}
		c.Genre = g
	case FieldPlatform:
		p := models.Platform(value)
		if p != "" && !p.Valid() {
			return c, fmt.Errorf("%w: unknown platform %q", models.ErrValidation, value)
		}
		c.Platform = p
	case FieldCompleted:
		comp := Completion(value)
		if !comp.Valid() {
			return c, fmt.Errorf("%w: completed must be all, true or false", models.ErrValidation)
		}
		c.Completion = comp
	case FieldSortBy:
		s := models.SortField(value)
		if !s.Valid() {
			return c, fmt.Errorf("%w: sortBy must be title or platform", models.ErrValidation)
		}
		c.SortBy = s
	case FieldOrder:
		o := models.SortOrder(value)
		if !o.Valid() {
			return c, fmt.Errorf("%w: order must be asc or desc", models.ErrValidation)
		}
		c.Order = o
	default:
		return c, fmt.Errorf("%w: unknown filter %q", models.ErrValidation, field)
	}
	return c, nil
}
