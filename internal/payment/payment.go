// Package payment captures charges for bookings. The booking workflow only
// sees the Processor interface; which implementation runs is configuration
// (PAYMENT_MODE).
package payment

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// ErrDeclined is returned when the card issuer refused the charge.
var ErrDeclined = errors.New("payment declined")

// Card is the payment method entered on the payment screen.
type Card struct {
	Number string `json:"cardNumber" form:"cardNumber" validate:"required,min=12,max=23"`
	Expiry string `json:"expiry" form:"expiry" validate:"required"`
	CVC    string `json:"cvc" form:"cvc" validate:"required,min=3,max=4"`
	Name   string `json:"name" form:"name"`
}

// Normalized returns the card number without spaces or dashes.
func (c Card) Normalized() string {
	return strings.NewReplacer(" ", "", "-", "").Replace(c.Number)
}

// ChargeRequest describes one charge. IdempotencyKey is the booking draft's
// key, so the processor can refuse to charge the same draft twice.
type ChargeRequest struct {
	Amount         model.Money
	Currency       string
	Description    string
	IdempotencyKey string
	Card           Card
}

// Receipt identifies a captured charge.
type Receipt struct {
	PaymentID string
	Amount    model.Money
}

// Processor captures a charge. It returns ErrDeclined (possibly wrapped)
// for a refused card and another error for a processor failure.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (Receipt, error)
}

const (
	// TestCardSuccess always succeeds with the test processor.
	TestCardSuccess = "4242424242424242"
	// TestCardDecline always declines with the test processor.
	TestCardDecline = "4000000000000002"
)

// TestCardProcessor simulates a card processor in test mode: the success
// test card is captured, every other number is declined.
type TestCardProcessor struct{}

func (TestCardProcessor) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if req.Card.Normalized() != TestCardSuccess {
		return Receipt{}, ErrDeclined
	}
	id, err := newPaymentID()
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{PaymentID: id, Amount: req.Amount}, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// newPaymentID returns "pi_" followed by nine base36 characters.
func newPaymentID() (string, error) {
	var b strings.Builder
	b.WriteString("pi_")
	limit := big.NewInt(int64(len(base36)))
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(base36[n.Int64()])
	}
	return b.String(), nil
}
