package storefront

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.writes++
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeGate struct {
	loggedIn bool
}

func (g *fakeGate) LoggedIn(context.Context) bool { return g.loggedIn }

type recordingNavigator struct {
	redirects int
}

func (n *recordingNavigator) RedirectToLogin(context.Context) { n.redirects++ }

type recordingMessenger struct {
	links []string
}

func (m *recordingMessenger) Send(_ context.Context, link string) error {
	m.links = append(m.links, link)
	return nil
}

func testProduct(name string, per50, per100 int64, stock bool) product.Product {
	prices := product.Prices{Per50: decimal.NewFromInt(per50)}
	if per100 > 0 {
		prices.Per100 = decimal.NewNullDecimal(decimal.NewFromInt(per100))
	}
	return product.Product{Name: name, Category: "Nuts", Prices: prices, Stock: stock}
}
