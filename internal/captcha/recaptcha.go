// Package captcha verifies reCAPTCHA response tokens against Google's
// siteverify endpoint.
package captcha

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"github.com/xenking/drypanda-ecart/internal/domain/user"
)

// DefaultVerifyURL is the public reCAPTCHA verification endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var _ user.CaptchaVerifier = (*Verifier)(nil)

// Config configures a Verifier.
type Config struct {
	Secret    string
	VerifyURL string
}

// Verifier checks tokens with the reCAPTCHA API.
type Verifier struct {
	client    *http.Client
	secret    string
	verifyURL string
	lg        *zap.Logger
}

// New creates a Verifier. A nil client uses http.DefaultClient.
func New(cfg Config, client *http.Client, lg *zap.Logger) *Verifier {
	if client == nil {
		client = http.DefaultClient
	}
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &Verifier{
		client:    client,
		secret:    cfg.Secret,
		verifyURL: verifyURL,
		lg:        lg,
	}
}

// Verify reports whether token is a valid CAPTCHA solution. An empty token is
// rejected without a round trip.
func (v *Verifier) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, errors.Errorf("siteverify: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return false, errors.Wrap(err, "read response")
	}

	result, err := decodeResult(body)
	if err != nil {
		return false, err
	}
	if !result.success {
		v.lg.Debug("Captcha rejected", zap.Strings("error_codes", result.errorCodes))
	}
	return result.success, nil
}

type verifyResult struct {
	success    bool
	errorCodes []string
}

func decodeResult(body []byte) (verifyResult, error) {
	var r verifyResult
	err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "success":
			v, err := d.Bool()
			r.success = v
			return err
		case "error-codes":
			return d.Arr(func(d *jx.Decoder) error {
				code, err := d.Str()
				r.errorCodes = append(r.errorCodes, code)
				return err
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return verifyResult{}, errors.Wrap(err, "decode response")
	}
	return r, nil
}
