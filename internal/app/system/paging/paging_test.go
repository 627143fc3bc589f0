package paging

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Page
		wantErr bool
	}{
		{"defaults", "", Page{Limit: PageSize}, false},
		{"explicit", "?limit=10&offset=20", Page{Limit: 10, Offset: 20}, false},
		{"zero limit uses default", "?limit=0", Page{Limit: PageSize}, false},
		{"clamped", "?limit=100000", Page{Limit: MaxPageSize}, false},
		{"non-numeric", "?limit=ten", Page{}, true},
		{"negative offset", "?offset=-5", Page{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(httptest.NewRequest("GET", "/"+tt.query, nil))
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrInvalidField) {
					t.Errorf("err = %v, want ErrInvalidField", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
