package testhelpers

import (
	"encoding/json"
	"net/http"

	"github.com/jarcoal/httpmock"
)

type verifierRequest struct {
	Target    string `json:"target"`
	Candidate string `json:"candidate"`
}

// SetupHTTPMock initializes httpmock, activates it, and returns a cleanup function.
func SetupHTTPMock() func() {
	httpmock.Activate()
	return func() {
		httpmock.DeactivateAndReset()
	}
}

// SetupHTTPMockForClient initializes httpmock for a custom http.Client and returns a cleanup function.
func SetupHTTPMockForClient(client *http.Client) func() {
	httpmock.ActivateNonDefault(client)
	return func() {
		httpmock.DeactivateAndReset()
	}
}

// MockVerifier registers a verifier endpoint at url that matches only secret.
func MockVerifier(url, secret string) {
	httpmock.RegisterResponder(http.MethodPost, url, func(req *http.Request) (*http.Response, error) {
		var body verifierRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, "bad request"), nil
		}
		return httpmock.NewJsonResponse(http.StatusOK, map[string]bool{"match": body.Candidate == secret})
	})
}

// MockVerifierFailure registers a verifier endpoint at url that always answers with status.
func MockVerifierFailure(url string, status int) {
	httpmock.RegisterResponder(http.MethodPost, url,
		httpmock.NewStringResponder(status, http.StatusText(status)))
}

// MockFileDownload registers a GET responder at url that serves body.
func MockFileDownload(url, body string) {
	httpmock.RegisterResponder(http.MethodGet, url, httpmock.NewStringResponder(http.StatusOK, body))
}
