package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderByClause renders orderings whose field is in allowed, falling back to def when none is usable.
// Unknown fields are dropped so that query params never reach SQL verbatim.
func OrderByClause(orderings []DBOrdering, allowed map[string]bool, def ...DBOrdering) string {
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if allowed[ord.Field] {
			parts = append(parts, ord.String())
		}
	}
	if len(parts) == 0 {
		for _, ord := range def {
			parts = append(parts, ord.String())
		}
	}
	return strings.Join(parts, ", ")
}

// ValidOrderings keeps the orderings whose field is in allowed, or def when none remains.
func ValidOrderings(orderings []DBOrdering, allowed map[string]bool, def ...DBOrdering) []DBOrdering {
	valid := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if allowed[ord.Field] {
			valid = append(valid, ord)
		}
	}
	if len(valid) == 0 {
		return def
	}
	return valid
}
