// Package user implements storefront accounts: registration behind a CAPTCHA
// check and password login that issues a signed token.
package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

// CaptchaVerifier checks a CAPTCHA response token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// ServiceConfig holds non-dependency configuration for the Service.
type ServiceConfig struct {
	// BcryptCost is the password hashing cost; zero selects bcrypt.DefaultCost.
	BcryptCost int
}

// RegisterRequest holds the input of a registration.
type RegisterRequest struct {
	Role            string
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Contact         string
	CaptchaToken    string
}

// LoginRequest holds the input of a login.
type LoginRequest struct {
	Email    string
	Password string
	Role     string
}

// LoginResult holds the output of a successful login.
type LoginResult struct {
	Token string
	User  *User
}

// Service encapsulates account business logic.
type Service struct {
	users    Repository
	captcha  CaptchaVerifier
	tokens   *TokenIssuer
	attempts *AttemptLimiter
	tracer   trace.Tracer
	cost     int
	now      func() time.Time
}

// NewService creates an account Service.
func NewService(
	cfg ServiceConfig,
	users Repository,
	captcha CaptchaVerifier,
	tokens *TokenIssuer,
	attempts *AttemptLimiter,
	tp trace.TracerProvider,
) *Service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:    users,
		captcha:  captcha,
		tokens:   tokens,
		attempts: attempts,
		tracer:   tp.Tracer("ecart/user"),
		cost:     cost,
		now:      time.Now,
	}
}

// Register validates req, verifies the CAPTCHA and stores a new account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (_ *User, rerr error) {
	ctx, span := s.tracer.Start(ctx, "user.Register")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	u := &User{
		Role:     role,
		Username: strings.TrimSpace(req.Username),
		Email:    NormalizeEmail(req.Email),
		Contact:  strings.TrimSpace(req.Contact),
	}
	if err := validate(u, req.Password); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	span.SetAttributes(attribute.String("user.role", string(role)))

	ok, err := s.captcha.Verify(ctx, req.CaptchaToken)
	if err != nil {
		return nil, errors.Wrap(err, "verify captcha")
	}
	if !ok {
		return nil, ErrCaptchaFailed
	}

	switch _, err := s.users.FindByEmail(ctx, u.Email); {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, ErrNotFound):
		return nil, errors.Wrap(err, "find user")
	}

	hash, err := s.hash(ctx, req.Password)
	if err != nil {
		return nil, err
	}
	u.ID = uuid.New().String()
	u.PasswordHash = hash
	u.CreatedAt = s.now()

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Login checks the credentials and role of an account and issues a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (_ *LoginResult, rerr error) {
	ctx, span := s.tracer.Start(ctx, "user.Login")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	email := NormalizeEmail(req.Email)
	if !s.attempts.Allow(email) {
		return nil, ErrTooManyAttempts
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	if string(u.Role) != strings.ToLower(strings.TrimSpace(req.Role)) {
		return nil, ErrInvalidRole
	}
	if err := s.compare(ctx, u.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

func (s *Service) hash(ctx context.Context, password string) (string, error) {
	_, span := s.tracer.Start(ctx, "bcrypt.Hash")
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func (s *Service) compare(ctx context.Context, hash, password string) error {
	_, span := s.tracer.Start(ctx, "bcrypt.Compare")
	defer span.End()

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrIncorrectPassword
	default:
		return errors.Wrap(err, "compare password")
	}
}

func validate(u *User, password string) error {
	switch {
	case u.Username == "":
		return &ValidationError{Field: "username", Reason: "is required"}
	case u.Email == "":
		return &ValidationError{Field: "email", Reason: "is required"}
	case !strings.Contains(u.Email, "@"):
		return &ValidationError{Field: "email", Reason: "is invalid"}
	case password == "":
		return &ValidationError{Field: "password", Reason: "is required"}
	case len(password) > 72:
		return &ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
	}
	return nil
}
