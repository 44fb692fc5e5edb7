package storefront

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Storage keys of the login session.
const (
	TokenKey = "token"
	RoleKey  = "userRole"
)

// KV is the local storage the session lives in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Session tracks whether the local user is signed in. The token is kept in
// local storage so a restart keeps the user signed in until it expires.
type Session struct {
	kv  KV
	now func() time.Time
}

// NewSession returns a Session backed by kv.
func NewSession(kv KV) *Session {
	return &Session{kv: kv, now: time.Now}
}

// LoggedIn reports whether a stored, unexpired token exists. The signature
// is not verified here; the API server does that on every request.
func (s *Session) LoggedIn(ctx context.Context) bool {
	token, err := s.kv.Get(ctx, TokenKey)
	if err != nil || len(token) == 0 {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(string(token), claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	return exp == nil || s.now().Before(exp.Time)
}

// Role returns the stored user role, or "" when signed out.
func (s *Session) Role(ctx context.Context) string {
	role, err := s.kv.Get(ctx, RoleKey)
	if err != nil {
		return ""
	}
	return string(role)
}

// Start stores the token and role returned by a successful login.
func (s *Session) Start(ctx context.Context, token, role string) error {
	if err := s.kv.Set(ctx, TokenKey, []byte(token)); err != nil {
		return errors.Wrap(err, "store token")
	}
	if err := s.kv.Set(ctx, RoleKey, []byte(role)); err != nil {
		return errors.Wrap(err, "store role")
	}
	return nil
}

// End signs the user out. The cart is left untouched.
func (s *Session) End(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey); err != nil {
		return errors.Wrap(err, "delete token")
	}
	if err := s.kv.Delete(ctx, RoleKey); err != nil {
		return errors.Wrap(err, "delete role")
	}
	return nil
}
