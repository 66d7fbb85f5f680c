package order

import (
	"fmt"
	"strings"

	"github.com/MikeMC777/joyeria-ecom/internal/notify"
)

// orderEvent is the payload published on the order-event stream.
type orderEvent struct {
	OrderID       string  `json:"order_id"`
	OrderNumber   string  `json:"order_number"`
	Status        Status  `json:"status"`
	PreviousState Status  `json:"previous_status,omitempty"`
	Paid          bool    `json:"paid"`
	Total         string  `json:"total_price"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

func eventFor(o Order) orderEvent {
	return orderEvent{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		Status:        o.Status,
		Paid:          o.Paid,
		Total:         o.Total.StringFixed(2),
		TransactionID: o.TransactionID,
	}
}

func confirmedMessage(o Order, items []Item, phone string) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nThank you for your purchase. Your order %s has been confirmed.\n\n", o.FullName(), o.Number)
	for _, it := range items {
		fmt.Fprintf(&b, "  %d x %s  $%s\n", it.Quantity, it.ProductName, it.Subtotal().StringFixed(2))
	}
	if o.Discount.IsPositive() {
		fmt.Fprintf(&b, "  Discount (%s)  -$%s\n", o.CouponCode, o.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal paid: $%s\n\nShipping to:\n  %s\n  %s, %s %s\n  %s\n",
		o.Total.StringFixed(2), o.Address, o.City, o.State, o.PostalCode, o.Country)

	m := notify.Message{
		Kind:    notify.KindOrderConfirmed,
		To:      o.Email,
		Subject: fmt.Sprintf("Order confirmed - #%s", o.Number),
		Body:    b.String(),
		Key:     o.Number,
		Event:   eventFor(o),
	}
	if phone != "" {
		m.Phone = phone
		m.SMS = fmt.Sprintf("Your order %s has been confirmed. Total: $%s. Thank you for shopping with us!",
			o.Number, o.Total.StringFixed(2))
	}
	return m
}

func lowStockMessage(lvl StockLevel, adminEmail string, threshold int) notify.Message {
	return notify.Message{
		Kind:    notify.KindLowStock,
		To:      adminEmail,
		Subject: fmt.Sprintf("Low stock alert: %s", lvl.Name),
		Body: fmt.Sprintf("Product %q (%s) is running low: %d left (threshold %d).\n",
			lvl.Name, lvl.ProductID, lvl.Stock, threshold),
		Key:   lvl.ProductID,
		Event: lvl,
	}
}

func cancelledMessage(o Order) notify.Message {
	return notify.Message{
		Kind:    notify.KindOrderCancelled,
		To:      o.Email,
		Subject: fmt.Sprintf("Order cancelled - #%s", o.Number),
		Body: fmt.Sprintf("Hello %s,\n\nYour order %s has been cancelled. If you were charged, a refund will follow.\n",
			o.FullName(), o.Number),
		Key:   o.Number,
		Event: eventFor(o),
	}
}

// statusMessage only feeds the event stream; fulfillment steps are not emailed.
func statusMessage(o Order, from Status) notify.Message {
	ev := eventFor(o)
	ev.PreviousState = from
	return notify.Message{Kind: notify.KindOrderStatus, Key: o.Number, Event: ev}
}

func paymentAnomalyMessage(o Order, adminEmail string) notify.Message {
	ref := ""
	if o.TransactionID != nil {
		ref = *o.TransactionID
	}
	return notify.Message{
		Kind:    notify.KindPaymentAnomaly,
		To:      adminEmail,
		Subject: fmt.Sprintf("Payment received for cancelled order #%s", o.Number),
		Body:    fmt.Sprintf("Order %s was cancelled before payment %s was captured. Review and refund.\n", o.Number, ref),
		Key:     o.Number,
		Event:   eventFor(o),
	}
}
