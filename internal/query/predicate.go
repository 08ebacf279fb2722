package query

import (
	"fmt"
	"strings"
)

// Predicate is one conjunctive condition over task rows. Constructors below
// are independent units; adding a filter dimension means adding a constructor,
// never touching the existing ones. The SQL fragments use `?` placeholders
// that are renumbered to positional arguments when the conjunction is
// rendered.
type Predicate struct {
	expr string
	args []any
}

// WithStatusSlug matches tasks whose status carries the given slug.
func WithStatusSlug(slug string) Predicate {
	return Predicate{
		expr: "EXISTS (SELECT 1 FROM task_statuses s WHERE s.id = t.status_id AND s.slug = ?)",
		args: []any{slug},
	}
}

// WithAssignee matches tasks assigned to the given user.
func WithAssignee(assigneeID int64) Predicate {
	return Predicate{
		expr: "t.assignee_id = ?",
		args: []any{assigneeID},
	}
}

// WithLabel matches tasks carrying the given label.
func WithLabel(labelID int64) Predicate {
	return Predicate{
		expr: "EXISTS (SELECT 1 FROM task_labels tl WHERE tl.task_id = t.id AND tl.label_id = ?)",
		args: []any{labelID},
	}
}

// WithTitleContains matches tasks whose title contains the substring,
// case-insensitively.
func WithTitleContains(substring string) Predicate {
	return Predicate{
		expr: "POSITION(LOWER(?) IN LOWER(t.title)) > 0",
		args: []any{substring},
	}
}

// VisibleTo narrows to tasks the given user created or is assigned to.
func VisibleTo(userID int64) Predicate {
	return Predicate{
		expr: "(t.creator_id = ? OR t.assignee_id = ?)",
		args: []any{userID, userID},
	}
}

// Conjunction is a logical AND over predicates. The zero value matches all
// rows.
type Conjunction struct {
	preds []Predicate
}

func And(preds ...Predicate) Conjunction {
	return Conjunction{preds: preds}
}

func (c Conjunction) With(p Predicate) Conjunction {
	return Conjunction{preds: append(append([]Predicate(nil), c.preds...), p)}
}

func (c Conjunction) Empty() bool {
	return len(c.preds) == 0
}

// SQL renders the conjunction as a WHERE-clause body with positional
// placeholders starting at startIdx, plus the argument list in matching order.
// An empty conjunction renders as TRUE.
func (c Conjunction) SQL(startIdx int) (string, []any) {
	if len(c.preds) == 0 {
		return "TRUE", nil
	}

	var exprs []string
	var args []any
	n := startIdx
	for _, p := range c.preds {
		expr := p.expr
		for range p.args {
			expr = strings.Replace(expr, "?", fmt.Sprintf("$%d", n), 1)
			n++
		}
		exprs = append(exprs, expr)
		args = append(args, p.args...)
	}

	return strings.Join(exprs, " AND "), args
}
