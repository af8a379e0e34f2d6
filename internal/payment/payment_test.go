package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tourism-portal/internal/model"
)

var paymentIDPattern = regexp.MustCompile(`^pi_[0-9a-z]{9}$`)

func TestTestCardProcessor(t *testing.T) {
	ctx := context.Background()
	p := TestCardProcessor{}

	r, err := p.Charge(ctx, ChargeRequest{Amount: model.FromAmount(80), Card: Card{Number: "4242 4242 4242 4242"}})
	require.NoError(t, err)
	assert.Regexp(t, paymentIDPattern, r.PaymentID)
	assert.Equal(t, model.FromAmount(80), r.Amount)

	for _, n := range []string{TestCardDecline, "5555555555554444", ""} {
		_, err := p.Charge(ctx, ChargeRequest{Card: Card{Number: n}})
		assert.ErrorIs(t, err, ErrDeclined, n)
	}
}

func TestPaymentIDsDiffer(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := newPaymentID()
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestRemoteProcessor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charges", r.URL.Path)
		assert.Equal(t, "draft-key", r.Header.Get("Idempotency-Key"))
		var body chargeBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Card.Number == TestCardDecline {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"message":"Your card was declined."}`))
			return
		}
		assert.Equal(t, 80.0, body.Amount)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pi_remote001"}`))
	}))
	defer srv.Close()

	p := NewRemoteProcessor(srv.URL, time.Second)
	req := ChargeRequest{Amount: model.FromAmount(80), Currency: "usd", IdempotencyKey: "draft-key", Card: Card{Number: TestCardSuccess}}

	r, err := p.Charge(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "pi_remote001", r.PaymentID)

	req.Card.Number = TestCardDecline
	_, err = p.Charge(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeclined))
	assert.Contains(t, err.Error(), "Your card was declined.")
}
