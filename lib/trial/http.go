package trial

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrVerifierStatus is returned when the verifier answers with a non-2xx status.
	ErrVerifierStatus = errors.New("verifier returned an error status")
	// ErrInvalidVerifierURL is returned when the verifier URL is missing or malformed.
	ErrInvalidVerifierURL = errors.New("invalid verifier URL")
)

type verifyRequest struct {
	Target    string `json:"target"`
	Candidate string `json:"candidate"`
}

type verifyResponse struct {
	Match bool `json:"match"`
}

// HTTPVerifier asks a lab verification service whether a candidate matches.
type HTTPVerifier struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPVerifier returns a verifier posting to endpoint with its own HTTP client.
func NewHTTPVerifier(endpoint string, timeout time.Duration) *HTTPVerifier {
	return &HTTPVerifier{
		URL:     endpoint,
		Client:  &http.Client{},
		Timeout: timeout,
	}
}

// Available checks that the endpoint is an absolute http(s) URL.
func (v *HTTPVerifier) Available(context.Context) error {
	u, err := url.Parse(v.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVerifierURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidVerifierURL, v.URL)
	}

	return nil
}

// Try posts the candidate and decodes the verdict.
func (v *HTTPVerifier) Try(ctx context.Context, target, candidate string) (bool, error) {
	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(verifyRequest{Target: target, Candidate: candidate})
	if err != nil {
		return false, fmt.Errorf("encoding verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidVerifierURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("calling verifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("%w: %s", ErrVerifierStatus, resp.Status)
	}

	var verdict verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return false, fmt.Errorf("decoding verifier response: %w", err)
	}

	return verdict.Match, nil
}
