package billing

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInvoice(t *testing.T) *Invoice {
	due := time.Now().AddDate(0, 0, 14)
	inv, err := NewInvoice("INV-1700000000000-abcd1234", time.Now(), &due, uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return inv
}

// ============================================
// InvoiceStatus Tests
// ============================================

func TestInvoiceStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  InvoiceStatus
		isValid bool
	}{
		{StatusUnpaid, true},
		{StatusPaid, true},
		{StatusDueSoon, true},
		{StatusOverdue, true},
		{InvoiceStatus("INVALID"), false},
		{InvoiceStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestInvoiceStatus_DefaultChangeReason(t *testing.T) {
	tests := []struct {
		status InvoiceStatus
		reason string
	}{
		{StatusPaid, "Payment received"},
		{StatusUnpaid, "Status reset to unpaid"},
		{StatusDueSoon, "Automatically marked as due soon based on due date"},
		{StatusOverdue, "Automatically marked as overdue - past due date"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.reason, tt.status.DefaultChangeReason())
		})
	}
}

// ============================================
// Totals Calculator Tests
// ============================================

func TestCalculateTotals_Example(t *testing.T) {
	// items=[{qty:2, price:100}], 15% tax -> 200 / 30 / 230
	lines := []LineInput{
		{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
	}
	totals := CalculateTotals(lines, decimal.NewFromInt(15))

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(decimal.NewFromInt(30)), "tax = %s", totals.TaxAmount)
	assert.True(t, totals.TotalAmount.Equal(decimal.NewFromInt(230)), "total = %s", totals.TotalAmount)
}

func TestCalculateTotals_Empty(t *testing.T) {
	totals := CalculateTotals(nil, decimal.NewFromInt(13))

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.TotalAmount.IsZero())
}

func TestCalculateTotals_Identities(t *testing.T) {
	// For random non-negative quantities/prices:
	// total == subtotal + tax, subtotal == sum(qty*price)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := rng.Intn(8)
		lines := make([]LineInput, n)
		expected := decimal.Zero
		for j := range lines {
			qty := decimal.NewFromFloat(rng.Float64() * 100).Round(4)
			price := decimal.NewFromFloat(rng.Float64() * 1000).Round(4)
			lines[j] = LineInput{Quantity: qty, UnitPrice: price}
			expected = expected.Add(qty.Mul(price))
		}
		pct := decimal.NewFromFloat(rng.Float64() * 100).Round(2)

		totals := CalculateTotals(lines, pct)

		assert.True(t, totals.Subtotal.Equal(expected))
		assert.True(t, totals.TotalAmount.Equal(totals.Subtotal.Add(totals.TaxAmount)))
	}
}

// ============================================
// Invoice Tests
// ============================================

func TestNewInvoice(t *testing.T) {
	inv := createTestInvoice(t)

	assert.Equal(t, StatusUnpaid, inv.Status)
	assert.True(t, inv.Subtotal.IsZero())
	assert.True(t, inv.TotalAmount.IsZero())
	assert.Empty(t, inv.Items)
	assert.Equal(t, 1, inv.Version)
}

func TestNewInvoice_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewInvoice("", now, nil, uuid.New(), uuid.New(), uuid.New())
	assert.Error(t, err)

	_, err = NewInvoice("INV-1", now, nil, uuid.Nil, uuid.New(), uuid.New())
	assert.Error(t, err)

	_, err = NewInvoice("INV-1", now, nil, uuid.New(), uuid.Nil, uuid.New())
	assert.Error(t, err)
}

func TestInvoice_SetItems(t *testing.T) {
	inv := createTestInvoice(t)

	lines := []LineInput{
		{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
		{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(49.99)},
	}
	err := inv.SetItems(lines, []string{"Consulting", "License"}, decimal.NewFromInt(15))
	require.NoError(t, err)

	assert.Len(t, inv.Items, 2)
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromFloat(249.99)))
	assert.True(t, inv.TotalAmount.Equal(inv.Subtotal.Add(inv.TaxAmount)))
	for _, item := range inv.Items {
		assert.Equal(t, inv.ID, item.InvoiceID)
		assert.True(t, item.Total.Equal(item.Quantity.Mul(item.UnitPrice)))
	}
}

func TestInvoice_SetItems_ReplacesWholesale(t *testing.T) {
	inv := createTestInvoice(t)

	err := inv.SetItems(
		[]LineInput{{Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(10)}},
		[]string{"First"},
		decimal.NewFromInt(10),
	)
	require.NoError(t, err)

	err = inv.SetItems(
		[]LineInput{{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}},
		[]string{"Second"},
		decimal.NewFromInt(10),
	)
	require.NoError(t, err)

	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Second", inv.Items[0].Description)
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(5)))
}

func TestInvoice_SetItems_InvalidItem(t *testing.T) {
	inv := createTestInvoice(t)

	err := inv.SetItems(
		[]LineInput{{Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(10)}},
		[]string{"Zero quantity"},
		decimal.NewFromInt(10),
	)
	assert.Error(t, err)

	err = inv.SetItems(
		[]LineInput{{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-1)}},
		[]string{"Negative price"},
		decimal.NewFromInt(10),
	)
	assert.Error(t, err)
}

func TestInvoice_ChangeStatus(t *testing.T) {
	inv := createTestInvoice(t)

	err := inv.ChangeStatus(StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, inv.Status)
	assert.True(t, inv.IsPaid())

	err = inv.ChangeStatus(InvoiceStatus("BOGUS"))
	assert.Error(t, err)
	assert.Equal(t, StatusPaid, inv.Status)
}

func TestInvoice_IsUrgent(t *testing.T) {
	inv := createTestInvoice(t)
	assert.False(t, inv.IsUrgent())

	require.NoError(t, inv.ChangeStatus(StatusDueSoon))
	assert.True(t, inv.IsUrgent())

	require.NoError(t, inv.ChangeStatus(StatusOverdue))
	assert.True(t, inv.IsUrgent())
}

// ============================================
// Status History Tests
// ============================================

func TestNewStatusHistoryEntry_DefaultReason(t *testing.T) {
	entry := NewStatusHistoryEntry(uuid.New(), StatusPaid, nil, "")

	assert.Equal(t, "Payment received", entry.Reason)
	assert.True(t, entry.IsSystemInitiated())
}

func TestNewStatusHistoryEntry_ExplicitReason(t *testing.T) {
	userID := uuid.New()
	entry := NewStatusHistoryEntry(uuid.New(), StatusPaid, &userID, "Wire transfer cleared")

	assert.Equal(t, "Wire transfer cleared", entry.Reason)
	assert.False(t, entry.IsSystemInitiated())
}

// ============================================
// Invoice Number Tests
// ============================================

func TestGenerateInvoiceNumber(t *testing.T) {
	now := time.Now()
	number := GenerateInvoiceNumber(now)

	assert.True(t, strings.HasPrefix(number, "INV-"))
	assert.LessOrEqual(t, len(number), 50)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := GenerateInvoiceNumber(now)
		assert.False(t, seen[n], "duplicate invoice number %s", n)
		seen[n] = true
	}
}
