// Package payments wraps the Razorpay gateway: order creation against
// the REST API and HMAC verification of its payment callbacks.
package payments

import (
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order is the slice of the gateway's order object the booking flow
// needs to persist.
type Order struct {
	ID       string
	Amount   int64 // minor units (paise)
	Currency string
}

// Gateway creates orders at the payment provider. Amounts are in minor
// currency units.
type Gateway interface {
	CreateOrder(amountPaise int64, currency, receipt string, notes map[string]any) (*Order, error)
}

type razorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) Gateway {
	return &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]any) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, err
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("gateway returned order without id")
	}
	order := &Order{ID: id, Amount: amountPaise, Currency: currency}
	if amt, ok := body["amount"].(float64); ok {
		order.Amount = int64(amt)
	}
	if cur, ok := body["currency"].(string); ok {
		order.Currency = cur
	}
	return order, nil
}

// ToPaise converts a rupee amount to paise for the gateway.
func ToPaise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}
