package query

// Filter is the structured task filter. Every field is independently
// optional; the zero value matches all tasks.
type Filter struct {
	StatusSlug    string
	AssigneeID    *int64
	LabelID       *int64
	TitleContains string
}

// Build compiles the filter into a conjunction of predicates. Each present
// field contributes exactly one predicate; absent fields contribute nothing.
// Visibility scoping is not applied here: the caller narrows the conjunction
// with VisibleTo once it has decided the listing scope.
func Build(f Filter) Conjunction {
	var c Conjunction
	if f.StatusSlug != "" {
		c = c.With(WithStatusSlug(f.StatusSlug))
	}
	if f.AssigneeID != nil {
		c = c.With(WithAssignee(*f.AssigneeID))
	}
	if f.LabelID != nil {
		c = c.With(WithLabel(*f.LabelID))
	}
	if f.TitleContains != "" {
		c = c.With(WithTitleContains(f.TitleContains))
	}
	return c
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Page is a 1-based pagination request.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Size
}
