package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemoteProcessor posts charges to an external capture service:
//
//	POST {baseURL}/charges  {amount, currency, description, card}
//	201 {"id": "pi_..."}           captured
//	402 {"message": "..."}         declined
type RemoteProcessor struct {
	baseURL string
	client  *http.Client
}

func NewRemoteProcessor(baseURL string, timeout time.Duration) *RemoteProcessor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteProcessor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type chargeBody struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description,omitempty"`
	Card        Card    `json:"card"`
}

func (p *RemoteProcessor) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	buf, err := json.Marshal(chargeBody{
		Amount:      req.Amount.Amount(),
		Currency:    req.Currency,
		Description: req.Description,
		Card:        req.Card,
	})
	if err != nil {
		return Receipt{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/charges", bytes.NewReader(buf))
	if err != nil {
		return Receipt{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Receipt{}, fmt.Errorf("payment service: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)

	switch {
	case resp.StatusCode == http.StatusPaymentRequired:
		if out.Message != "" {
			return Receipt{}, fmt.Errorf("%w: %s", ErrDeclined, out.Message)
		}
		return Receipt{}, ErrDeclined
	case resp.StatusCode >= 300:
		return Receipt{}, fmt.Errorf("payment service: status %d %s", resp.StatusCode, out.Message)
	case out.ID == "":
		return Receipt{}, fmt.Errorf("payment service: response without id")
	}
	return Receipt{PaymentID: out.ID, Amount: req.Amount}, nil
}
