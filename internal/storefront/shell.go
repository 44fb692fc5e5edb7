package storefront

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/drypanda-ecart/internal/checkout"
	"github.com/xenking/drypanda-ecart/internal/domain/cart"
	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

const (
	prompt      = "ecart> "
	defaultRole = "customer"
)

const usage = `Commands:
  products                      list products matching the current filter
  categories                    list categories
  category <name|All>           select a category
  instock on|off                show only products in stock
  search [term]                 filter by name, empty clears
  show <name>                   product details
  add <name> [50g|100g]         add one unit to the cart
  remove <name> [50g|100g]      take one unit off a cart line
  delete <name> [50g|100g]      drop a cart line
  cart                          show the cart
  checkout                      send the order on WhatsApp
  login <email> <password> [customer|operator]
  logout
  help
  quit`

// Account is the result of a successful login.
type Account struct {
	Token    string
	Username string
	Role     string
}

// Authenticator signs a user in against the account service.
type Authenticator interface {
	Login(ctx context.Context, email, password, role string) (Account, error)
}

// Catalog lists the products offered by the store.
type Catalog interface {
	List(ctx context.Context) ([]product.Product, error)
}

// Shell is a line-oriented front end for the storefront.
type Shell struct {
	in      io.Reader
	out     io.Writer
	ctrl    *Controller
	session *Session
	auth    Authenticator
	catalog Catalog
	lg      *zap.Logger

	products []product.Product
	filter   product.Filter
}

// NewShell constructs a Shell. auth may be nil when no account service is
// configured.
func NewShell(
	in io.Reader,
	out io.Writer,
	ctrl *Controller,
	session *Session,
	auth Authenticator,
	catalog Catalog,
	lg *zap.Logger,
) *Shell {
	return &Shell{
		in:      in,
		out:     out,
		ctrl:    ctrl,
		session: session,
		auth:    auth,
		catalog: catalog,
		lg:      lg,
		filter:  product.Filter{Category: product.AllCategories},
	}
}

// Run loads the catalog and executes commands until quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		s.lg.Warn("Catalog not loaded", zap.Error(err))
		s.printf("Catalog unavailable: %v\n", err)
	}
	s.printf("Welcome to Drypanda. Type help for commands.\n")

	scanner := bufio.NewScanner(s.in)
	for {
		s.printf(prompt)
		if !scanner.Scan() {
			break
		}
		if quit := s.Exec(ctx, scanner.Text()); quit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	return nil
}

// Reload fetches the catalog.
func (s *Shell) Reload(ctx context.Context) error {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	s.products = products
	return nil
}

// Exec runs a single command line and reports whether the shell should
// exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "products", "ls":
		s.listProducts()
	case "categories":
		s.listCategories()
	case "category":
		s.selectCategory(strings.Join(args, " "))
	case "instock":
		s.toggleInStock(args)
	case "search":
		s.filter.Search = strings.Join(args, " ")
		s.listProducts()
	case "show":
		s.show(strings.Join(args, " "))
	case "add":
		s.add(ctx, args)
	case "remove":
		s.remove(ctx, args)
	case "delete":
		s.delete(ctx, args)
	case "cart":
		s.openCart(ctx)
	case "checkout":
		s.checkout(ctx)
	case "login":
		s.login(ctx, args)
	case "logout":
		s.logout(ctx)
	case "help":
		s.printf("%s\n", usage)
	case "quit", "exit":
		return true
	default:
		s.printf("Unknown command %q. Type help for commands.\n", cmd)
	}
	return false
}

func (s *Shell) listProducts() {
	products := s.filter.Apply(s.products)
	if len(products) == 0 {
		s.printf("No products found.\n")
		return
	}
	for _, p := range products {
		s.printf("%s\n", formatProduct(p))
	}
}

func (s *Shell) listCategories() {
	for _, c := range product.Categories(s.products) {
		marker := " "
		if c == s.filter.Category {
			marker = "*"
		}
		s.printf("%s %s\n", marker, c)
	}
}

func (s *Shell) selectCategory(name string) {
	for _, c := range product.Categories(s.products) {
		if strings.EqualFold(c, name) {
			s.filter.Category = c
			s.listProducts()
			return
		}
	}
	s.printf("Unknown category %q.\n", name)
}

func (s *Shell) toggleInStock(args []string) {
	if len(args) != 1 {
		s.printf("Usage: instock on|off\n")
		return
	}
	switch strings.ToLower(args[0]) {
	case "on":
		s.filter.InStockOnly = true
	case "off":
		s.filter.InStockOnly = false
	default:
		s.printf("Usage: instock on|off\n")
		return
	}
	s.listProducts()
}

func (s *Shell) show(name string) {
	p, ok := product.Lookup(s.products, name)
	if !ok {
		s.printf("No product named %q.\n", name)
		return
	}
	s.printf("%s\n  Category: %s\n  50g: %s\n  100g: %s\n  %s\n",
		p.Name, p.Category, checkout.Amount(p.Prices.Per50), checkout.Amount(p.Prices.Bulk()), stockLabel(p))
	if p.Image != "" {
		s.printf("  Image: %s\n", p.Image)
	}
}

func (s *Shell) add(ctx context.Context, args []string) {
	name, unit, _ := splitUnit(args)
	if name == "" {
		s.printf("Usage: add <name> [50g|100g]\n")
		return
	}
	p, ok := product.Lookup(s.products, name)
	if !ok {
		s.printf("No product named %q.\n", name)
		return
	}
	c, err := s.ctrl.AddToCart(ctx, p, unit)
	s.afterMutation(c, err)
}

func (s *Shell) remove(ctx context.Context, args []string) {
	key, ok := s.resolve(ctx, args, "remove")
	if !ok {
		return
	}
	c, err := s.ctrl.RemoveFromCart(ctx, key)
	s.afterMutation(c, err)
}

func (s *Shell) delete(ctx context.Context, args []string) {
	key, ok := s.resolve(ctx, args, "delete")
	if !ok {
		return
	}
	c, err := s.ctrl.DeleteFromCart(ctx, key)
	s.afterMutation(c, err)
}

// resolve maps a typed name and optional unit to the key of a cart line.
// Without a unit the name must match a single line.
func (s *Shell) resolve(ctx context.Context, args []string, cmd string) (cart.Key, bool) {
	name, unit, explicit := splitUnit(args)
	if name == "" {
		s.printf("Usage: %s <name> [50g|100g]\n", cmd)
		return cart.Key{}, false
	}
	c, err := s.ctrl.OpenCart(ctx)
	if err != nil {
		s.report(err)
		return cart.Key{}, false
	}

	var matches []cart.Key
	for _, e := range c.Entries() {
		if !product.SameName(e.Name, name) {
			continue
		}
		if explicit && e.Unit != unit {
			continue
		}
		matches = append(matches, e.Key())
	}
	switch len(matches) {
	case 1:
		return matches[0], true
	case 0:
		if p, ok := product.Lookup(s.products, name); ok {
			name = p.Name
		}
		return cart.Key{Name: name, Unit: unit}, true
	default:
		s.printf("%s is in the cart in several sizes, add 50g or 100g.\n", matches[0].Name)
		return cart.Key{}, false
	}
}

func (s *Shell) openCart(ctx context.Context) {
	c, err := s.ctrl.OpenCart(ctx)
	if err != nil {
		s.report(err)
		return
	}
	s.printCart(c)
}

func (s *Shell) checkout(ctx context.Context) {
	if _, err := s.ctrl.Checkout(ctx); err != nil {
		s.report(err)
	}
}

func (s *Shell) login(ctx context.Context, args []string) {
	if s.auth == nil {
		s.printf("Login is unavailable: no account service configured.\n")
		return
	}
	if len(args) < 2 || len(args) > 3 {
		s.printf("Usage: login <email> <password> [customer|operator]\n")
		return
	}
	role := defaultRole
	if len(args) == 3 {
		role = strings.ToLower(args[2])
	}

	account, err := s.auth.Login(ctx, args[0], args[1], role)
	if err != nil {
		s.printf("Login failed: %v\n", err)
		return
	}
	if err := s.session.Start(ctx, account.Token, account.Role); err != nil {
		s.report(err)
		return
	}
	s.printf("Welcome, %s!\n", account.Username)
}

func (s *Shell) logout(ctx context.Context) {
	if err := s.session.End(ctx); err != nil {
		s.report(err)
		return
	}
	s.printf("Logged out.\n")
}

// afterMutation shows the cart returned by a mutation. A failed save still
// returns the updated cart, which is shown before the warning.
func (s *Shell) afterMutation(c cart.Cart, err error) {
	var persistErr *cart.PersistenceError
	if err != nil && !errors.As(err, &persistErr) {
		s.report(err)
		return
	}
	s.printCart(c)
	if err != nil {
		s.report(err)
	}
}

func (s *Shell) printCart(c cart.Cart) {
	if c.IsEmpty() {
		s.printf("Your cart is empty.\n")
		return
	}
	for i, e := range c.Entries() {
		s.printf("%d. %s %s x%d = %s (Total weight: %dg)\n",
			i+1, e.Name, e.Unit, e.Count, checkout.Amount(e.Price), e.TotalWeight())
	}
	s.printf("Total: %s\n", checkout.Amount(c.Total()))
}

func (s *Shell) report(err error) {
	var (
		notFound  *cart.EntryNotFoundError
		persist   *cart.PersistenceError
		malformed *product.MalformedPriceError
	)
	switch {
	case errors.Is(err, ErrLoginRequired):
		// The navigator has already prompted for login.
	case errors.Is(err, product.ErrOutOfStock):
		s.printf("Sorry, this product is out of stock.\n")
	case errors.Is(err, checkout.ErrEmptyCart):
		s.printf("Oops! No items in cart.\n")
	case errors.As(err, &notFound):
		s.printf("%s (%s) is not in your cart.\n", notFound.Key.Name, notFound.Key.Unit)
	case errors.As(err, &persist):
		s.lg.Warn("Cart persistence failed", zap.Error(err))
		s.printf("Warning: your cart could not be saved. Changes are kept until you quit.\n")
	case errors.As(err, &malformed):
		s.printf("This product cannot be priced right now.\n")
	default:
		s.printf("Error: %v\n", err)
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// splitUnit splits "cashew nuts 100g" into the product name and unit. The
// unit defaults to 50g when omitted.
func splitUnit(args []string) (name string, unit cart.UnitSize, explicit bool) {
	if n := len(args); n > 1 {
		if u, err := cart.ParseUnitSize(args[n-1]); err == nil {
			return strings.Join(args[:n-1], " "), u, true
		}
	}
	return strings.Join(args, " "), cart.Unit50, false
}

func formatProduct(p product.Product) string {
	return fmt.Sprintf("%-24s %-14s %s/50g  %s/100g  %s",
		p.Name, p.Category, checkout.Amount(p.Prices.Per50), checkout.Amount(p.Prices.Bulk()), stockLabel(p))
}

func stockLabel(p product.Product) string {
	if p.Stock {
		return "In Stock"
	}
	return "Out of Stock"
}
