package dto

import "time"

// Pagination holds page-based list parameters
type Pagination struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

// SetDefaults sets default values for pagination
func (p *Pagination) SetDefaults() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 || p.PerPage > 100 {
		p.PerPage = 20
	}
}

// Limit returns the page size
func (p *Pagination) Limit() int {
	return p.PerPage
}

// Offset returns the number of rows to skip
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
