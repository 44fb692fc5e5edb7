// Package client talks to the storefront API server.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/drypanda-ecart/internal/catalog"
	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

var _ product.Repository = (*Client)(nil)

// APIError is a non-2xx reply of the API server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return e.Message
}

// Client is an HTTP client of the storefront API.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a Client for the server at baseURL. A nil httpClient uses an
// instrumented default.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid base url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{base: u, http: httpClient}, nil
}

// LoginResult is the reply of a successful login.
type LoginResult struct {
	Token    string
	UserID   string
	Username string
	Role     string
}

// Login signs in with the given credentials.
func (c *Client) Login(ctx context.Context, email, password, role string) (*LoginResult, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("email")
	e.Str(email)
	e.FieldStart("password")
	e.Str(password)
	e.FieldStart("role")
	e.Str(role)
	e.ObjEnd()

	body, err := c.do(ctx, http.MethodPost, "/api/login", e.Bytes())
	if err != nil {
		return nil, err
	}

	var res LoginResult
	err = jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "token":
			v, err := d.Str()
			res.Token = v
			return err
		case "user":
			return d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "id":
					res.UserID, err = d.Str()
				case "username":
					res.Username, err = d.Str()
				case "role":
					res.Role, err = d.Str()
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode login response")
	}
	if res.Token == "" {
		return nil, errors.New("login response without token")
	}
	return &res, nil
}

// List returns the catalog. Products the server sends with unusable prices
// are dropped.
func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/products", nil)
	if err != nil {
		return nil, err
	}
	res, err := catalog.DecodeBytes(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return res.Products, nil
}

// GetByName returns product.ErrNotFound for an unknown name.
func (c *Client) GetByName(ctx context.Context, name string) (*product.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(name), nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	res, err := catalog.DecodeBytes(append(append([]byte{'['}, body...), ']'))
	if err != nil {
		return nil, errors.Wrap(err, "decode product")
	}
	if len(res.Products) != 1 {
		return nil, errors.Errorf("product %q has malformed prices", name)
	}
	return &res.Products[0], nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage extracts the message field of an error reply.
func errorMessage(data []byte) string {
	var msg string
	_ = jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "message" {
			return d.Skip()
		}
		v, err := d.Str()
		msg = v
		return err
	})
	return msg
}
