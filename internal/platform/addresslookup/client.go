package addresslookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/platform/config"
	"github.com/vitrinezap/api/internal/platform/textutil"
)

const defaultTimeout = 3 * time.Second

var (
	// ErrInvalidPostalCode indicates the CEP is not eight digits.
	ErrInvalidPostalCode = errors.New("addresslookup: invalid postal code")
	// ErrNotFound indicates the CEP is well formed but unknown.
	ErrNotFound = errors.New("addresslookup: postal code not found")
)

// Client resolves Brazilian postal codes against a ViaCEP-compatible endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption customises Client behaviour.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, primarily for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient constructs a lookup client from configuration.
func NewClient(cfg config.AddressLookupConfig, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("addresslookup: base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type lookupResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	Erro       bool   `json:"erro"`
}

// Resolve fetches the address registered for the postal code. The returned
// address carries street, district, and city; number and complement always
// come from the customer.
func (c *Client) Resolve(ctx context.Context, postalCode string) (*domain.Address, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("addresslookup: client not initialised")
	}

	cep := digitsOnly(postalCode)
	if len(cep) != 8 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPostalCode, postalCode)
	}

	endpoint := fmt.Sprintf("%s/%s/json/", c.baseURL, url.PathEscape(cep))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("addresslookup: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("addresslookup: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPostalCode, postalCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("addresslookup: unexpected status %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("addresslookup: decode response: %w", err)
	}
	if payload.Erro {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, cep)
	}

	return &domain.Address{
		PostalCode: formatCEP(cep),
		Street:     strings.TrimSpace(payload.Logradouro),
		District:   strings.TrimSpace(payload.Bairro),
		City:       strings.TrimSpace(payload.Localidade),
	}, nil
}

func digitsOnly(value string) string {
	return textutil.Digits(value)
}

func formatCEP(digits string) string {
	if len(digits) != 8 {
		return digits
	}
	return digits[:5] + "-" + digits[5:]
}
