// Package ledger keeps the append-only record of completed orders.
package ledger

import (
	"sync"
	"time"

	"storefront/internal/models"
)

// OrderLedger owns every order created during the process lifetime and
// the counter that assigns order ids. Ids are monotonic, start at 1 and
// are never reused. Appended orders are deep-copied; nothing outside
// the ledger can mutate them afterwards.
type OrderLedger struct {
	mu     sync.Mutex
	nextID int64
	orders []models.Order
}

// NewOrderLedger creates an empty ledger.
func NewOrderLedger() *OrderLedger {
	return &OrderLedger{nextID: 1}
}

// Append creates an order from the given snapshot data, assigns it the
// next id and adds it to the ledger. The stored order is returned.
func (l *OrderLedger) Append(username string, items []models.OrderItem, total float64) models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	order := models.Order{
		ID:               l.nextID,
		CustomerUsername: username,
		Items:            copyItems(items),
		TotalAmount:      total,
		CreatedAt:        time.Now(),
	}
	l.nextID++
	l.orders = append(l.orders, order)
	return cloneOrder(order)
}

// OrdersFor returns the orders whose customer username matches exactly,
// in ledger insertion order.
func (l *OrderLedger) OrdersFor(username string) []models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.Order
	for _, o := range l.orders {
		if o.CustomerUsername == username {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}

// Len returns the number of orders in the ledger.
func (l *OrderLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.orders)
}

func copyItems(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	return out
}

func cloneOrder(o models.Order) models.Order {
	o.Items = copyItems(o.Items)
	return o
}
