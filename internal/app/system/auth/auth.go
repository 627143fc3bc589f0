package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Identity & context                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// Identity is the verified requester injected into r.Context().
// Role is resolved from the users collection, not from the token; it is
// empty until the user has been created via POST /users.
type Identity struct {
	Email string
	Name  string
	Role  string
}

// Verifier checks a bearer token and returns the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// RoleResolver returns the stored role for an email, or "" with
// apperr.ErrNotFound when no user exists yet.
type RoleResolver interface {
	RoleForEmail(ctx context.Context, email string) (string, error)
}

// ErrInvalidToken is returned by verifiers for any token they reject.
var ErrInvalidToken = errors.New("invalid bearer token")

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the identity & “found?” flag.
func CurrentUser(r *http.Request) (Identity, bool) {
	return FromContext(r.Context())
}

// FromContext is CurrentUser for code that only has a context.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(currentUserKey).(Identity)
	return id, ok
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, currentUserKey, id)
}

// WithTestUser injects id into r the way Authenticate would. Tests use it
// to exercise handlers without minting tokens.
func WithTestUser(r *http.Request, id Identity) *http.Request {
	return r.WithContext(WithIdentity(r.Context(), id))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Middleware bundles the collaborators the auth chain needs.
type Middleware struct {
	Verifier Verifier
	Roles    RoleResolver
	Log      *zap.Logger
}

// Authenticate verifies "Authorization: Bearer <token>" when present and
// injects the identity (with its stored role) into the request context.
// Requests without the header pass through anonymously; a header that is
// present but does not verify is rejected with 401 here.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(raw)
		if !ok {
			respond.Error(w, m.Log, apperr.ErrUnauthenticated)
			return
		}

		id, err := m.Verifier.Verify(r.Context(), token)
		if err != nil {
			m.Log.Debug("bearer token rejected", zap.Error(err))
			respond.Error(w, m.Log, apperr.ErrUnauthenticated)
			return
		}
		id.Email = normalize.Email(id.Email)
		if id.Email == "" {
			respond.Error(w, m.Log, apperr.ErrUnauthenticated)
			return
		}

		if m.Roles != nil {
			role, err := m.Roles.RoleForEmail(r.Context(), id.Email)
			switch {
			case err == nil:
				id.Role = role
			case errors.Is(err, apperr.ErrNotFound):
				id.Role = ""
			default:
				respond.Error(w, m.Log, err)
				return
			}
		}

		next.ServeHTTP(w, WithTestUser(r, id))
	})
}

// RequireSignedIn rejects anonymous requests with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			respond.Error(w, nil, apperr.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures there is a user whose stored role is one of allowed.
// Anonymous → 401, wrong role → 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.TrimSpace(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				respond.Error(w, nil, apperr.ErrUnauthenticated)
				return
			}
			if _, has := set[u.Role]; !has {
				respond.Error(w, nil, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
