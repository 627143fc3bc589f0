// internal/app/features/events/types.go
package events

import (
	"fmt"
	"strings"
	"time"

	eventstore "github.com/dalemusser/clubsphere/internal/app/store/events"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
)

// eventRequest is the JSON body for create and update. ClubID is only
// read on create.
type eventRequest struct {
	ClubID       string  `json:"clubId"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Location     string  `json:"location"`
	Date         string  `json:"date"`
	IsPaid       bool    `json:"isPaid"`
	EventFee     float64 `json:"eventFee"`
	MaxAttendees int     `json:"maxAttendees"`
}

// dateLayouts are tried in order; clients send either a full timestamp
// or a calendar date from a date picker.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: %w", s, apperr.ErrInvalidField)
}

func (req eventRequest) input() (eventstore.Input, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return eventstore.Input{}, err
	}
	return eventstore.Input{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Date:         date,
		IsPaid:       req.IsPaid,
		EventFee:     req.EventFee,
		MaxAttendees: req.MaxAttendees,
	}, nil
}

// deleteResponse reports how much a delete removed.
type deleteResponse struct {
	Deleted              bool  `json:"deleted"`
	RegistrationsRemoved int64 `json:"registrationsRemoved"`
}
