package user

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byEmail   map[string]*User
	findErr   error
	createErr error
	created   []*User
}

func newUserRepo(users ...*User) *mockUserRepo {
	m := &mockUserRepo{byEmail: map[string]*User{}}
	for _, u := range users {
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.byEmail[u.Email] = u
	m.created = append(m.created, u)
	return nil
}

type mockCaptcha struct {
	ok     bool
	err    error
	tokens []string
}

func (m *mockCaptcha) Verify(_ context.Context, token string) (bool, error) {
	m.tokens = append(m.tokens, token)
	return m.ok, m.err
}

// --- Helpers ---

const testSecret = "test-secret"

func newTestService(repo Repository, captcha CaptchaVerifier, attempts *AttemptLimiter) *Service {
	if attempts == nil {
		attempts = NewAttemptLimiter(time.Minute, 0)
	}
	return NewService(
		ServiceConfig{BcryptCost: bcrypt.MinCost},
		repo,
		captcha,
		NewTokenIssuer([]byte(testSecret), 24*time.Hour),
		attempts,
		noop.NewTracerProvider(),
	)
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Role:            "customer",
		Username:        "asha",
		Email:           "Asha@Example.com ",
		Password:        "s3cret",
		ConfirmPassword: "s3cret",
		Contact:         "9876543210",
		CaptchaToken:    "captcha-token",
	}
}

func registeredUser(t *testing.T, role Role, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:           "u-1",
		Role:         role,
		Username:     "asha",
		Email:        "asha@example.com",
		PasswordHash: string(hash),
	}
}

// --- Tests ---

func TestRegister_Success(t *testing.T) {
	repo := newUserRepo()
	captcha := &mockCaptcha{ok: true}
	svc := newTestService(repo, captcha, nil)

	u, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, []string{"captcha-token"}, captcha.tokens)
	require.Len(t, repo.created, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
	assert.NotContains(t, u.PasswordHash, "s3cret")
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*RegisterRequest)
		repo    *mockUserRepo
		captcha *mockCaptcha
		wantErr error
	}{
		{
			name:    "captcha rejected",
			captcha: &mockCaptcha{ok: false},
			wantErr: ErrCaptchaFailed,
		},
		{
			name:    "email already in use",
			repo:    newUserRepo(&User{Email: "asha@example.com"}),
			wantErr: ErrEmailTaken,
		},
		{
			name:    "passwords differ",
			modify:  func(r *RegisterRequest) { r.ConfirmPassword = "other" },
			wantErr: ErrPasswordMismatch,
		},
		{
			name:    "unknown role",
			modify:  func(r *RegisterRequest) { r.Role = "admin" },
			wantErr: ErrInvalidRole,
		},
		{
			name:    "create races on email",
			repo:    &mockUserRepo{byEmail: map[string]*User{}, createErr: ErrEmailTaken},
			wantErr: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			if tt.modify != nil {
				tt.modify(&req)
			}
			repo := tt.repo
			if repo == nil {
				repo = newUserRepo()
			}
			captcha := tt.captcha
			if captcha == nil {
				captcha = &mockCaptcha{ok: true}
			}

			_, err := newTestService(repo, captcha, nil).Register(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.created)
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	req := validRegistration()
	req.Username = "  "

	_, err := newTestService(newUserRepo(), &mockCaptcha{ok: true}, nil).Register(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "username", vErr.Field)
}

func TestRegister_CaptchaUnavailable(t *testing.T) {
	captcha := &mockCaptcha{err: errors.New("connection refused")}

	_, err := newTestService(newUserRepo(), captcha, nil).Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCaptchaFailed)
}

func TestLogin_Success(t *testing.T) {
	u := registeredUser(t, RoleOperator, "s3cret")
	svc := newTestService(newUserRepo(u), &mockCaptcha{}, nil)

	res, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ASHA@example.com",
		Password: "s3cret",
		Role:     "operator",
	})
	require.NoError(t, err)
	assert.Equal(t, u, res.User)

	claims, err := parseToken(res.Token, []byte(testSecret), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.ID)
	assert.Equal(t, RoleOperator, claims.Role)
}

func TestLogin_Errors(t *testing.T) {
	u := registeredUser(t, RoleCustomer, "s3cret")

	tests := []struct {
		name    string
		req     LoginRequest
		wantErr error
	}{
		{
			name:    "unknown email",
			req:     LoginRequest{Email: "nobody@example.com", Password: "s3cret", Role: "customer"},
			wantErr: ErrNotFound,
		},
		{
			name:    "wrong role",
			req:     LoginRequest{Email: "asha@example.com", Password: "s3cret", Role: "operator"},
			wantErr: ErrInvalidRole,
		},
		{
			name:    "wrong password",
			req:     LoginRequest{Email: "asha@example.com", Password: "nope", Role: "customer"},
			wantErr: ErrIncorrectPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newUserRepo(u), &mockCaptcha{}, nil)

			_, err := svc.Login(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin_Throttled(t *testing.T) {
	u := registeredUser(t, RoleCustomer, "s3cret")
	svc := newTestService(newUserRepo(u), &mockCaptcha{}, NewAttemptLimiter(time.Hour, 2))
	req := LoginRequest{Email: "asha@example.com", Password: "nope", Role: "customer"}

	for range 2 {
		_, err := svc.Login(context.Background(), req)
		require.ErrorIs(t, err, ErrIncorrectPassword)
	}

	_, err := svc.Login(context.Background(), req)
	require.ErrorIs(t, err, ErrTooManyAttempts)
}
