package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/drypanda-ecart/internal/domain/user"
)

// Register handles POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req, err := decodeRegister(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err = h.accounts.Register(r.Context(), req)
	h.registrations.Add(r.Context(), 1, metric.WithAttributes(attribute.String("result", resultLabel(err))))
	if err != nil {
		status, message, ok := registerErrorStatus(err)
		if !ok {
			writeInternalError(w, r, err)
			return
		}
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("success")
		e.Bool(true)
		e.FieldStart("message")
		e.Str("User registered")
		e.ObjEnd()
	})
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req, err := decodeLogin(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.accounts.Login(r.Context(), req)
	h.logins.Add(r.Context(), 1, metric.WithAttributes(attribute.String("result", resultLabel(err))))
	if err != nil {
		status, ok := loginErrorStatus(err)
		if !ok {
			writeInternalError(w, r, err)
			return
		}
		if status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", h.retryAfter)
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("success")
		e.Bool(true)
		e.FieldStart("token")
		e.Str(res.Token)
		e.FieldStart("user")
		e.ObjStart()
		e.FieldStart("id")
		e.Str(res.User.ID)
		e.FieldStart("username")
		e.Str(res.User.Username)
		e.FieldStart("role")
		e.Str(string(res.User.Role))
		e.ObjEnd()
		e.ObjEnd()
	})
}

// registerErrorStatus maps account errors of a registration to a status and
// a user-visible message.
func registerErrorStatus(err error) (int, string, bool) {
	var vErr *user.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Error(), true
	case errors.Is(err, user.ErrCaptchaFailed),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrPasswordMismatch),
		errors.Is(err, user.ErrInvalidRole):
		return http.StatusBadRequest, err.Error(), true
	default:
		return 0, "", false
	}
}

func loginErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, user.ErrInvalidRole), errors.Is(err, user.ErrIncorrectPassword):
		return http.StatusUnauthorized, true
	case errors.Is(err, user.ErrTooManyAttempts):
		return http.StatusTooManyRequests, true
	default:
		return 0, false
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func decodeRegister(body []byte) (user.RegisterRequest, error) {
	var req user.RegisterRequest
	err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "regType":
			req.Role, err = d.Str()
		case "username":
			req.Username, err = d.Str()
		case "email":
			req.Email, err = d.Str()
		case "password":
			req.Password, err = d.Str()
		case "confirmPassword":
			req.ConfirmPassword, err = d.Str()
		case "contact":
			req.Contact, err = d.Str()
		case "recaptchaToken":
			req.CaptchaToken, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return user.RegisterRequest{}, errors.Wrap(err, "decode register request")
	}
	return req, nil
}

func decodeLogin(body []byte) (user.LoginRequest, error) {
	var req user.LoginRequest
	err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "email":
			req.Email, err = d.Str()
		case "password":
			req.Password, err = d.Str()
		case "role":
			req.Role, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return user.LoginRequest{}, errors.Wrap(err, "decode login request")
	}
	return req, nil
}
