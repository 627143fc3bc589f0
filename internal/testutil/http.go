package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/domain/models"
)

// AdminUser returns an identity with the admin role.
func AdminUser() auth.Identity {
	return auth.Identity{Email: "admin@test.com", Name: "Test Admin", Role: models.RoleAdmin}
}

// ManagerUser returns an identity with the clubManager role.
func ManagerUser(email string) auth.Identity {
	return auth.Identity{Email: email, Name: "Test Manager", Role: models.RoleClubManager}
}

// MemberUser returns an identity with the member role.
func MemberUser(email string) auth.Identity {
	return auth.Identity{Email: email, Name: "Test Member", Role: models.RoleMember}
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(method, target string, v any) *http.Request {
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user auth.Identity) *http.Request {
	return auth.WithTestUser(httptest.NewRequest(method, target, nil), user)
}

// NewAuthenticatedJSONRequest is NewJSONRequest with a user in context.
func NewAuthenticatedJSONRequest(method, target string, v any, user auth.Identity) *http.Request {
	return auth.WithTestUser(NewJSONRequest(method, target, v), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q: %s", expected, r.Body.String())
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t interface{ Fatalf(string, ...any) }, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
}
