// internal/app/system/paging/paging.go
package paging

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by paged lists.
const PageSize = 50

// MaxPageSize caps ?limit= so a single request cannot pull a whole
// collection.
const MaxPageSize = 500

// Page is an offset window over a sorted list.
type Page struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// Parse reads ?limit= and ?offset=. Missing values take the defaults; a
// limit above MaxPageSize is clamped. Non-numeric or negative values are
// a validation error.
func Parse(r *http.Request) (Page, error) {
	p := Page{Limit: PageSize}

	limit, err := parseInt(r, "limit")
	if err != nil {
		return Page{}, err
	}
	if limit > 0 {
		p.Limit = min(limit, MaxPageSize)
	}

	if p.Offset, err = parseInt(r, "offset"); err != nil {
		return Page{}, err
	}
	return p, nil
}

func parseInt(r *http.Request, key string) (int64, error) {
	raw := query.Get(r, key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s %q: %w", key, raw, apperr.ErrInvalidField)
	}
	return n, nil
}
