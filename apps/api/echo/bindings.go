package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Shubham414kumar/vidyasphere/core"
)

var (
	orderingParam = "ordering"
	limitParam    = "limit"
	maxLimit      = 500
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindLimit reads ?limit=. Missing, invalid or non-positive values mean no limit; large values are capped.
func bindLimit(ctx echo.Context) int {
	n, err := strconv.Atoi(ctx.QueryParam(limitParam))
	if err != nil || n <= 0 {
		return 0
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
