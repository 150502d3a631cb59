// Package cli implements the interactive menu surface over the engine.
// It is glue: every state change goes through the core packages, and
// persistence happens through the Store after admin edits and checkout.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/ledger"
	"storefront/internal/models"
	"storefront/internal/promo"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"
)

// Menu drives the interactive session. Reads come from in, writes go to
// out, so tests can run a whole session against buffers.
type Menu struct {
	catalog    *catalog.Catalog
	promotions *promo.Set
	ledger     *ledger.OrderLedger
	checkout   *service.CheckoutService
	verifier   auth.Verifier
	store      store.Store
	in         *bufio.Scanner
	out        io.Writer
	logger     *zap.Logger
}

// NewMenu creates the menu over the given collaborators.
func NewMenu(
	cat *catalog.Catalog,
	promotions *promo.Set,
	orderLedger *ledger.OrderLedger,
	checkout *service.CheckoutService,
	verifier auth.Verifier,
	st store.Store,
	in io.Reader,
	out io.Writer,
) *Menu {
	return &Menu{
		catalog:    cat,
		promotions: promotions,
		ledger:     orderLedger,
		checkout:   checkout,
		verifier:   verifier,
		store:      st,
		in:         bufio.NewScanner(in),
		out:        out,
		logger:     util.GetLogger(),
	}
}

// Run loops over the main menu until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) {
	for {
		fmt.Fprint(m.out, "\n--- Main Menu ---\n1. Manager\n2. Customer\n3. Exit\nEnter your choice: ")
		choice, ok := m.readLine()
		if !ok {
			return
		}
		switch choice {
		case "1":
			m.managerMenu(ctx)
		case "2":
			m.customerMenu(ctx)
		case "3":
			return
		default:
			fmt.Fprintln(m.out, "Invalid choice.")
		}
	}
}

func (m *Menu) managerMenu(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- Admin Login ---")
	username, ok := m.prompt("Username: ")
	if !ok {
		return
	}
	password, ok := m.prompt("Password: ")
	if !ok {
		return
	}
	if !m.verifier.Verify(username, password) {
		fmt.Fprintln(m.out, "Invalid credentials!")
		m.logger.Warn("Admin login rejected", zap.String("username", username))
		return
	}

	for {
		fmt.Fprint(m.out, "\n--- Admin Menu ---\n1. Add Product\n2. Edit Product\n3. Delete Product\n4. View Products\n5. Exit\nEnter your choice: ")
		choice, ok := m.readLine()
		if !ok {
			return
		}
		switch choice {
		case "1":
			m.addProduct(ctx)
		case "2":
			m.editProduct(ctx)
		case "3":
			m.deleteProduct(ctx)
		case "4":
			m.listProducts()
		case "5":
			return
		default:
			fmt.Fprintln(m.out, "Invalid choice.")
		}
	}
}

func (m *Menu) addProduct(ctx context.Context) {
	id, ok := m.promptInt("Enter Product ID: ")
	if !ok {
		return
	}
	name, ok := m.prompt("Enter Product Name: ")
	if !ok {
		return
	}
	price, ok := m.promptFloat("Enter Product Price: ")
	if !ok {
		return
	}
	stock, ok := m.promptInt("Enter Stock Quantity: ")
	if !ok {
		return
	}
	if err := m.catalog.Add(models.Product{ID: id, Name: name, Price: price, Stock: stock}); err != nil {
		fmt.Fprintf(m.out, "Could not add product: %v\n", err)
		return
	}
	m.saveCatalog(ctx)
	fmt.Fprintln(m.out, "Product added.")
}

func (m *Menu) editProduct(ctx context.Context) {
	id, ok := m.promptInt("Enter Product ID to Edit: ")
	if !ok {
		return
	}
	name, ok := m.prompt("Enter New Product Name: ")
	if !ok {
		return
	}
	price, ok := m.promptFloat("Enter New Product Price: ")
	if !ok {
		return
	}
	stock, ok := m.promptInt("Enter New Stock Quantity: ")
	if !ok {
		return
	}
	if err := m.catalog.Edit(id, name, price, stock); err != nil {
		fmt.Fprintf(m.out, "Could not edit product: %v\n", err)
		return
	}
	m.saveCatalog(ctx)
	fmt.Fprintln(m.out, "Product updated.")
}

func (m *Menu) deleteProduct(ctx context.Context) {
	id, ok := m.promptInt("Enter Product ID to Delete: ")
	if !ok {
		return
	}
	if err := m.catalog.Remove(id); err != nil {
		fmt.Fprintf(m.out, "Could not delete product: %v\n", err)
		return
	}
	m.saveCatalog(ctx)
	fmt.Fprintln(m.out, "Product deleted.")
}

func (m *Menu) listProducts() {
	for _, p := range m.catalog.Products() {
		fmt.Fprintf(m.out, "ID: %d | Name: %s | Price: %g | Stock: %d", p.ID, p.Name, p.Price, p.Stock)
		if desc := m.promotions.Describe(p.ID); desc != "" {
			fmt.Fprintf(m.out, " | Promotion: %s (-%g%%)", desc, m.promotions.ResolveDiscount(p.ID))
		}
		fmt.Fprintln(m.out)
	}
}

func (m *Menu) customerMenu(ctx context.Context) {
	username, ok := m.prompt("Enter Username: ")
	if !ok {
		return
	}
	sessionCart := cart.New(username)
	m.logger.Info("Customer session started",
		zap.String("username", username),
		zap.String("cart_id", sessionCart.ID()))

	for {
		fmt.Fprint(m.out, "\n--- Customer Menu ---\n1. View Products\n2. Add to Cart\n3. Remove from Cart\n4. View Cart\n5. Checkout\n6. View Order History\n7. Leave a Review\n8. Exit\nEnter your choice: ")
		choice, ok := m.readLine()
		if !ok {
			return
		}
		switch choice {
		case "1":
			m.listProducts()
		case "2":
			m.addToCart(sessionCart)
		case "3":
			m.removeFromCart(sessionCart)
		case "4":
			m.viewCart(sessionCart)
		case "5":
			m.runCheckout(ctx, sessionCart)
		case "6":
			m.orderHistory(username)
		case "7":
			m.leaveReview(username)
		case "8":
			return
		default:
			fmt.Fprintln(m.out, "Invalid choice.")
		}
	}
}

func (m *Menu) addToCart(c *cart.Cart) {
	id, ok := m.promptInt("Enter Product ID: ")
	if !ok {
		return
	}
	quantity, ok := m.promptInt("Enter Quantity: ")
	if !ok {
		return
	}
	product, err := m.catalog.FindByID(id)
	if err != nil {
		fmt.Fprintf(m.out, "Could not add to cart: %v\n", err)
		return
	}
	if err := c.AddLine(product, quantity); err != nil {
		fmt.Fprintf(m.out, "Could not add to cart: %v\n", err)
		return
	}
	fmt.Fprintln(m.out, "Added to cart.")
}

func (m *Menu) removeFromCart(c *cart.Cart) {
	id, ok := m.promptInt("Enter Product ID to remove: ")
	if !ok {
		return
	}
	c.RemoveLine(id)
	fmt.Fprintln(m.out, "Removed from cart.")
}

func (m *Menu) viewCart(c *cart.Cart) {
	fmt.Fprintln(m.out, "\n--- Cart ---")
	for _, line := range c.Lines() {
		fmt.Fprintf(m.out, "Product: %s | Quantity: %d | Price: %g\n",
			line.Product.Name, line.Quantity, line.Product.Price)
	}
	fmt.Fprintf(m.out, "Total: %g\n", c.Total(m.promotions))
}

func (m *Menu) runCheckout(ctx context.Context, c *cart.Cart) {
	if c.Len() == 0 {
		fmt.Fprintln(m.out, "Cart is empty.")
		return
	}
	fmt.Fprintf(m.out, "\nTotal Amount: %g\nConfirm Checkout? (y/n): ", c.Total(m.promotions))
	answer, ok := m.readLine()
	if !ok {
		return
	}
	confirm := strings.EqualFold(answer, "y")

	order, err := m.checkout.Checkout(ctx, c, confirm)
	if err != nil {
		if errors.Is(err, service.ErrNotConfirmed) {
			fmt.Fprintln(m.out, "Checkout cancelled.")
			return
		}
		fmt.Fprintf(m.out, "Checkout failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Checkout successful! Order ID: %d\n", order.ID)
}

func (m *Menu) orderHistory(username string) {
	orders := m.ledger.OrdersFor(username)
	if len(orders) == 0 {
		fmt.Fprintln(m.out, "No orders yet.")
		return
	}
	for _, order := range orders {
		fmt.Fprintf(m.out, "\n--- Order Summary ---\nOrder ID: %d\nCustomer: %s\n", order.ID, order.CustomerUsername)
		for _, item := range order.Items {
			fmt.Fprintf(m.out, "Product: %s | Quantity: %d | Price: %g\n", item.Name, item.Quantity, item.UnitPrice)
		}
		fmt.Fprintf(m.out, "Total Amount: %g\n", order.TotalAmount)
	}
}

func (m *Menu) leaveReview(username string) {
	id, ok := m.promptInt("Enter Product ID to review: ")
	if !ok {
		return
	}
	rating, ok := m.promptInt("Enter Rating (1-5): ")
	if !ok {
		return
	}
	if err := m.catalog.AttachReview(id, username, rating); err != nil {
		fmt.Fprintf(m.out, "Could not leave review: %v\n", err)
		return
	}
	util.ReviewsAttachedTotal.Inc()
	fmt.Fprintln(m.out, "Review added.")
}

// saveCatalog persists after an admin mutation, best-effort.
func (m *Menu) saveCatalog(ctx context.Context) {
	if err := m.store.SaveCatalog(ctx, m.catalog.Products()); err != nil {
		util.CatalogSaveFailuresTotal.WithLabelValues("catalog").Inc()
		m.logger.Error("Failed to persist catalog", zap.Error(err))
		fmt.Fprintln(m.out, "Warning: could not save catalog.")
	}
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	return m.readLine()
}

func (m *Menu) promptInt(label string) (int, bool) {
	raw, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintln(m.out, "Please enter a number.")
		return 0, false
	}
	return n, true
}

func (m *Menu) promptFloat(label string) (float64, bool) {
	raw, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Fprintln(m.out, "Please enter a number.")
		return 0, false
	}
	return f, true
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}
