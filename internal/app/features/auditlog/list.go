// internal/app/features/auditlog/list.go
package auditlog

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/store/audit"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/app/system/paging"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

// ServeList handles GET /audit, newest first.
//
// Filters: category, eventType, clubId, actor, startDate and endDate
// (YYYY-MM-DD, endDate inclusive). Paging: limit and offset.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter := audit.QueryFilter{
		Category:   query.Get(r, "category"),
		EventType:  query.Get(r, "eventType"),
		ClubID:     query.Get(r, "clubId"),
		ActorEmail: normalize.Email(query.Get(r, "actor")),
	}

	page, err := paging.Parse(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	filter.Limit, filter.Offset = page.Limit, page.Offset
	if filter.StartTime, err = dateParam(r, "startDate", 0); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if filter.EndTime, err = dateParam(r, "endDate", 24*time.Hour-time.Nanosecond); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// dateParam parses a UTC calendar day and shifts it by add.
func dateParam(r *http.Request, key string, add time.Duration) (*time.Time, error) {
	raw := query.Get(r, key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", key, raw, apperr.ErrInvalidField)
	}
	t = t.Add(add)
	return &t, nil
}
