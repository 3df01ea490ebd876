package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/calemaley/airbnb/internal/app/policies"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

var ErrReferenceRequired = errors.New("payments: reference is required")

// PaystackClient verifies charges against the Paystack transaction API.
// Amounts on the wire are in currency subunits.
type PaystackClient struct {
	Client    *http.Client
	BaseURL   string
	SecretKey string
	Logger    *slog.Logger
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Channel   string `json:"channel"`
	} `json:"data"`
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (policies.Verification, error) {
	var zero policies.Verification
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return zero, ErrReferenceRequired
	}
	if err := c.ensureConfigured(); err != nil {
		return zero, err
	}

	endpoint := fmt.Sprintf("%s/transaction/verify/%s", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(reference))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return zero, err
	}
	request.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.Client.Do(request)
	if err != nil {
		c.logError("payment verification request failed", reference, err)
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("payments: provider returned status %d: %s", resp.StatusCode, string(snippet))
		c.logError("payment verification rejected", reference, err)
		return zero, err
	}

	var payload paystackVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logError("payment verification decode failed", reference, err)
		return zero, err
	}

	verification := policies.Verification{
		Reference: payload.Data.Reference,
		Captured:  payload.Status && payload.Data.Status == "success",
		Amount: money.Money{
			Amount:   payload.Data.Amount / 100,
			Currency: strings.ToUpper(payload.Data.Currency),
		},
		Channel: payload.Data.Channel,
	}
	if verification.Reference == "" {
		verification.Reference = reference
	}
	return verification, nil
}

func (c *PaystackClient) Refund(ctx context.Context, reference string, amount money.Money) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return ErrReferenceRequired
	}
	if err := c.ensureConfigured(); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"transaction": reference,
		"amount":      amount.Amount * 100,
	})
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(c.BaseURL, "/") + "/refund"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+c.SecretKey)
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(request)
	if err != nil {
		c.logError("refund request failed", reference, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("payments: refund returned status %d: %s", resp.StatusCode, string(snippet))
		c.logError("refund rejected", reference, err)
		return err
	}
	return nil
}

func (c *PaystackClient) ensureConfigured() error {
	switch {
	case c == nil || c.Client == nil:
		return errors.New("payments: http client not configured")
	case c.BaseURL == "":
		return errors.New("payments: base url not configured")
	case c.SecretKey == "":
		return errors.New("payments: secret key not configured")
	default:
		return nil
	}
}

func (c *PaystackClient) logError(msg, reference string, err error) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "reference", reference, "error", err)
}

var _ policies.PaymentsPort = (*PaystackClient)(nil)
