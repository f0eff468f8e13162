package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

// Client talks to the BridgeIT platform backend. Authentication is owned by
// that backend: the caller's bearer token is forwarded verbatim on every
// request and never verified locally.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the platform backend.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListFaculties fetches the full faculty list.
func (c *Client) ListFaculties(ctx context.Context, token string) ([]domain.Faculty, error) {
	var faculties []domain.Faculty
	if err := c.getJSON(ctx, token, "/faculties", &faculties); err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	return faculties, nil
}

// ListFacultyProjects fetches one faculty's project list.
func (c *Client) ListFacultyProjects(ctx context.Context, token, facultyID string) ([]domain.ProjectRecord, error) {
	var projects []domain.ProjectRecord
	if err := c.getJSON(ctx, token, "/fyp-by-faculty-id/"+facultyID, &projects); err != nil {
		return nil, fmt.Errorf("list projects for faculty %s: %w", facultyID, err)
	}
	return projects, nil
}

// ListMarketplace fetches one of the two marketplace-specific collections.
func (c *Client) ListMarketplace(ctx context.Context, token, track string) ([]domain.ProjectRecord, error) {
	var projects []domain.ProjectRecord
	if err := c.getJSON(ctx, token, "/fyp/for-marketplace/"+track, &projects); err != nil {
		return nil, fmt.Errorf("list marketplace %s: %w", track, err)
	}
	return projects, nil
}

// RequestFYP submits the simple "request this FYP" flow: no document, no
// price, body is just the submitter's identity.
func (c *Client) RequestFYP(ctx context.Context, token, fypID, expertID string) error {
	resp, err := c.postJSON(ctx, token, "/ind-expert-request-fyp/add/"+fypID, expertID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return submissionError(resp)
	}
	return nil
}

// CreateCheckoutSession starts the purchase flow and returns the hosted
// checkout URL the buyer must be redirected to. The counter-signed agreement
// travels with the price; settlement itself is entirely external to this
// service.
func (c *Client) CreateCheckoutSession(ctx context.Context, token, fypID, expertID string, price int, agreementBase64 string) (string, error) {
	body := map[string]any{
		"indExpertId": expertID,
		"price":       price,
	}
	if agreementBase64 != "" {
		body["agreementBase64"] = agreementBase64
	}
	resp, err := c.postJSON(ctx, token, "/payments/create-checkout-session/fyp/"+fypID, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", submissionError(resp)
	}
	var out struct {
		CheckoutURL string `json:"checkoutUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	return out.CheckoutURL, nil
}

// SponsorFYP submits a sponsorship request with the counter-signed agreement.
func (c *Client) SponsorFYP(ctx context.Context, token, fypID, expertID, agreementBase64 string) error {
	body := map[string]any{
		"expertId":        expertID,
		"agreementBase64": agreementBase64,
	}
	resp, err := c.postJSON(ctx, token, "/fyp-meeting/sponsor-fyp/"+fypID, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return submissionError(resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	setAuth(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, token, path string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setAuth(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	return resp, nil
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// submissionError extracts the backend's own message from a rejected
// submission so it can be shown to the user. Falls back to a generic message
// when the body carries nothing usable.
func submissionError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			msg = parsed.Message
		} else if parsed.Error != "" {
			msg = parsed.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
		if len(msg) > 200 || strings.HasPrefix(msg, "<") {
			msg = ""
		}
	}
	return &domain.SubmissionError{StatusCode: resp.StatusCode, Message: msg}
}
