package turnstile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZinoM21/any-cv-api/config"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"
	"github.com/ZinoM21/any-cv-api/pkg/security"
)

// Verifier checks Cloudflare Turnstile tokens against the siteverify
// endpoint. An empty secret disables verification, for local development.
type Verifier struct {
	httpClient *http.Client
	url        string
	secret     string
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        cfg.TurnstileURL,
		secret:     cfg.TurnstileSecret,
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if v.secret == "" {
		return nil
	}
	if token == "" {
		return apperror.BadRequest("Bot protection token is required")
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, strings.NewReader(form.Encode()))
	if err != nil {
		return apperror.Internal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		// Fail closed: an unreachable verifier must not open the door to bots.
		return apperror.ServiceUnavailable("Bot protection service unavailable")
	}
	defer resp.Body.Close()

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return apperror.ServiceUnavailable("Bot protection service unavailable")
	}

	if !result.Success {
		security.DefaultLogger().LogTurnstileRejected(ctx, remoteIP, result.ErrorCodes)
		return apperror.Forbidden("Bot protection check failed")
	}
	return nil
}
