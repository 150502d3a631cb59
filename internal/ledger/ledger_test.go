package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

func TestAppendAssignsMonotonicIDsFromOne(t *testing.T) {
	l := NewOrderLedger()

	first := l.Append("alice", []models.OrderItem{{ProductID: 1, Quantity: 1}}, 10)
	second := l.Append("bob", nil, 0)
	third := l.Append("alice", nil, 5)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, int64(3), third.ID)
	assert.Equal(t, 3, l.Len())
}

func TestOrdersForExactMatch(t *testing.T) {
	l := NewOrderLedger()
	l.Append("alice", nil, 1)
	l.Append("bob", nil, 2)
	l.Append("alice", nil, 3)

	orders := l.OrdersFor("alice")
	require.Len(t, orders, 2)
	assert.Equal(t, int64(1), orders[0].ID)
	assert.Equal(t, int64(3), orders[1].ID)

	// Case-sensitive: "Alice" is a different customer.
	assert.Empty(t, l.OrdersFor("Alice"))
	assert.Empty(t, l.OrdersFor("carol"))
}

func TestAppendedOrderIsImmutable(t *testing.T) {
	l := NewOrderLedger()
	items := []models.OrderItem{{ProductID: 1, Name: "Pen", UnitPrice: 10, Quantity: 3}}

	returned := l.Append("alice", items, 30)

	// Mutating the caller's slice or the returned copy must not reach
	// the ledger's record.
	items[0].UnitPrice = 0
	returned.Items[0].Name = "Tampered"

	stored := l.OrdersFor("alice")
	require.Len(t, stored, 1)
	require.Len(t, stored[0].Items, 1)
	assert.Equal(t, "Pen", stored[0].Items[0].Name)
	assert.Equal(t, 10.0, stored[0].Items[0].UnitPrice)
}
