package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", srv.Client())
	require.NoError(t, err)
	return c
}

func TestClient_Login(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"asha@example.com","password":"pw","role":"customer"}`, string(body))

		_, _ = w.Write([]byte(`{"success":true,"token":"jwt","user":{"id":"u-1","username":"asha","role":"customer"}}`))
	})
	c := newTestClient(t, mux)

	res, err := c.Login(context.Background(), "asha@example.com", "pw", "customer")
	require.NoError(t, err)
	assert.Equal(t, &LoginResult{Token: "jwt", UserID: "u-1", Username: "asha", Role: "customer"}, res)
}

func TestClient_LoginRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"code":401,"message":"Incorrect password"}`))
	}))

	_, err := c.Login(context.Background(), "asha@example.com", "nope", "customer")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect password", apiErr.Error())
}

func TestClient_Products(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name":"Cashew","category":"Nuts","price50":"60","price100":"110","stock":true,"image":"c.jpg"},
			{"name":"Broken","category":"Nuts","price50":"n/a","stock":true,"image":""}
		]`))
	})
	mux.HandleFunc("GET /api/products/{name}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") != "Dried Figs" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"code":404,"message":"product not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"name":"Dried Figs","category":"Dried Fruit","price50":"95","price100":null,"stock":true,"image":""}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	products, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cashew", products[0].Name)

	p, err := c.GetByName(ctx, "Dried Figs")
	require.NoError(t, err)
	assert.Equal(t, "95", p.Prices.Per50.String())
	assert.False(t, p.Prices.Per100.Valid)

	_, err = c.GetByName(ctx, "Saffron")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("localhost", nil)
	require.Error(t, err)
}
