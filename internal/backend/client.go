// Package backend is the HTTP client for the store-of-record collaborator.
// It owns the request/response contracts for proofs, verification sessions,
// volume snapshots, and payment dispatch; nothing here reimplements storage.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"paygate/pkg/domain"
	"paygate/pkg/platform/sentinel"
)

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks Client

// Proof is the wire form of a proof record held by the backend.
type Proof struct {
	ID        string    `json:"id"`
	ProofType string    `json:"proofType"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionHandle is returned when a verification session is opened.
type SessionHandle struct {
	SessionID       string `json:"sessionId"`
	VerificationURL string `json:"verificationUrl"`
}

// SessionStatus reports the backend's view of a proof verification.
type SessionStatus struct {
	Verified  bool   `json:"verified"`
	ProofID   string `json:"id"`
	ProofType string `json:"proofType"`
}

// DispatchResult is the outcome of an on-chain payment submission.
type DispatchResult struct {
	Success bool   `json:"success"`
	Hash    string `json:"hash"`
}

// Client is the narrow set of backend contracts the actors consume. The
// interface is kept small so tests can stub quickly.
type Client interface {
	Proofs(ctx context.Context, address domain.Address) ([]Proof, error)
	CreateVerificationSession(ctx context.Context, address domain.Address, proofType domain.ProofType, requiredValue any) (SessionHandle, error)
	SessionStatus(ctx context.Context, proofID string) (SessionStatus, error)
	DailyVolume(ctx context.Context, address domain.Address) (decimal.Decimal, error)
	SendPayment(ctx context.Context, from, to domain.Address, amount, currency string) (DispatchResult, error)
	UpdatePaymentStatus(ctx context.Context, requestID domain.RequestID, hash, status string) error
}

// HTTPClient talks to the backend over HTTP with a bounded timeout per call.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a backend client. The timeout applies per call; a
// collaborator that exceeds it surfaces as sentinel.ErrUnavailable, never as
// a rule failure.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Proofs(ctx context.Context, address domain.Address) ([]Proof, error) {
	var out struct {
		Proofs []Proof `json:"proofs"`
	}
	err := c.get(ctx, "/api/identity/proofs/"+address.String(), &out)
	if err != nil {
		return nil, err
	}
	return out.Proofs, nil
}

func (c *HTTPClient) CreateVerificationSession(ctx context.Context, address domain.Address, proofType domain.ProofType, requiredValue any) (SessionHandle, error) {
	body := map[string]any{
		"userAddress":   address.String(),
		"proofType":     proofType.String(),
		"requiredValue": requiredValue,
	}
	var out SessionHandle
	if err := c.post(ctx, "/api/identity/verify", body, &out); err != nil {
		return SessionHandle{}, err
	}
	return out, nil
}

func (c *HTTPClient) SessionStatus(ctx context.Context, proofID string) (SessionStatus, error) {
	var out SessionStatus
	if err := c.get(ctx, "/api/identity/status/"+proofID, &out); err != nil {
		return SessionStatus{}, err
	}
	return out, nil
}

func (c *HTTPClient) DailyVolume(ctx context.Context, address domain.Address) (decimal.Decimal, error) {
	var out struct {
		TotalVolume json.Number `json:"totalVolume"`
	}
	if err := c.get(ctx, "/api/payments/analytics/"+address.String(), &out); err != nil {
		return decimal.Zero, err
	}
	if out.TotalVolume == "" {
		return decimal.Zero, nil
	}
	vol, err := decimal.NewFromString(out.TotalVolume.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed volume %q", sentinel.ErrUnavailable, out.TotalVolume)
	}
	return vol, nil
}

func (c *HTTPClient) SendPayment(ctx context.Context, from, to domain.Address, amount, currency string) (DispatchResult, error) {
	body := map[string]any{
		"from":     from.String(),
		"to":       to.String(),
		"amount":   amount,
		"currency": currency,
	}
	var out DispatchResult
	if err := c.post(ctx, "/api/payments/send", body, &out); err != nil {
		return DispatchResult{}, err
	}
	return out, nil
}

func (c *HTTPClient) UpdatePaymentStatus(ctx context.Context, requestID domain.RequestID, hash, status string) error {
	body := map[string]any{
		"hash":   hash,
		"status": status,
	}
	return c.put(ctx, "/api/payments/status/"+requestID.String(), body)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) put(ctx context.Context, path string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// do executes the request and translates transport failures and non-2xx
// statuses into sentinel.ErrUnavailable so callers never confuse collaborator
// trouble with a policy rejection.
func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: backend %s %s: %v", sentinel.ErrUnavailable, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: backend %s %s returned %d: %s", sentinel.ErrUnavailable, req.Method, req.URL.Path, resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode backend response: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
