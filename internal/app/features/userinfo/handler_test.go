package userinfo_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/clubsphere/internal/app/features/userinfo"
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/testutil"
	"github.com/go-chi/chi/v5"
)

type response struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Role            string `json:"role"`
}

func newRouter() chi.Router {
	r := chi.NewRouter()
	userinfo.MountRoutes(r, userinfo.NewHandler())
	return r
}

func TestServeUserInfo_Unauthenticated(t *testing.T) {
	rec := testutil.NewRecorder()
	newRouter().ServeHTTP(rec, testutil.NewRequest("GET", "/userinfo"))
	rec.AssertStatus(t, http.StatusOK)

	var got response
	rec.DecodeJSON(t, &got)
	if got != (response{}) {
		t.Errorf("anonymous: got %+v, want zero value", got)
	}
}

func TestServeUserInfo_Authenticated(t *testing.T) {
	id := auth.Identity{Email: "ada@example.com", Name: "Ada", Role: "clubManager"}
	rec := testutil.NewRecorder()
	newRouter().ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/userinfo", id))
	rec.AssertStatus(t, http.StatusOK)

	var got response
	rec.DecodeJSON(t, &got)
	want := response{IsAuthenticated: true, Email: "ada@example.com", Name: "Ada", Role: "clubManager"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestServeUserInfo_NoRoleYet(t *testing.T) {
	rec := testutil.NewRecorder()
	newRouter().ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/userinfo", auth.Identity{Email: "new@example.com"}))
	rec.AssertContains(t, `"role":""`)
}
