package recaptcha

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/novocode/novocode-api/pkg/httpclient"
)

// DefaultVerifyURL is Google's verification endpoint
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// ErrVerificationFailed is returned when Google rejects the token
var ErrVerificationFailed = errors.New("recaptcha verification failed")

// Response represents the response from Google's reCAPTCHA verification API
type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier handles reCAPTCHA verification
type Verifier struct {
	secretKey  string
	verifyURL  string
	httpClient httpclient.Client
}

// NewVerifier creates a new reCAPTCHA verifier
func NewVerifier(secretKey string, httpClient httpclient.Client) *Verifier {
	return &Verifier{
		secretKey:  secretKey,
		verifyURL:  DefaultVerifyURL,
		httpClient: httpClient,
	}
}

// Verify verifies a reCAPTCHA token with Google's API
func (v *Verifier) Verify(token string) error {
	data := url.Values{}
	data.Set("secret", v.secretKey)
	data.Set("response", token)

	resp, err := v.httpClient.Post(
		v.verifyURL,
		"application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to verify recaptcha: %w", err)
	}
	defer resp.Body.Close()

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode recaptcha response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, strings.Join(result.ErrorCodes, ","))
	}

	return nil
}

// NoopVerifier accepts every token. Used when reCAPTCHA is disabled.
type NoopVerifier struct{}

func (NoopVerifier) Verify(string) error { return nil }
