package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ZinoM21/any-cv-api/config"
	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"
)

const profileURLPrefix = "https://www.linkedin.com/in/"

type client struct {
	httpClient *http.Client
	url        string
	host       string
	key        string
}

// NewClient returns the RapidAPI-backed profile source. Each Fetch is a
// single attempt bounded by the configured timeout; callers decide whether
// to retry.
func NewClient(cfg *config.Config) domain.ProfileSource {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
		},
		url:  cfg.RapidAPIURL,
		host: cfg.RapidAPIHost,
		key:  cfg.RapidAPIKey,
	}
}

type fetchRequest struct {
	Link string `json:"link"`
}

func (c *client) Fetch(ctx context.Context, identifier string) (domain.RawProfilePayload, error) {
	body, err := json.Marshal(fetchRequest{Link: profileURLPrefix + identifier})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apperror.GatewayTimeout("Profile provider timed out", err)
		}
		return nil, apperror.BadGateway("Profile provider unreachable", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.BadGateway("Failed to read profile provider response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperror.NotFound(fmt.Sprintf("Profile %s not found", identifier))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperror.TooManyRequests("Profile provider rate limit exceeded")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		slog.Error("Profile provider returned an error",
			"identifier", identifier,
			"status", resp.StatusCode)
		return nil, apperror.BadGateway(
			fmt.Sprintf("Profile provider returned status %d", resp.StatusCode), nil)
	}

	// The provider reports soft failures with a 200 and success=false.
	var probe struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &probe); err == nil && probe.Success != nil && !*probe.Success {
		slog.Error("Profile provider reported failure",
			"identifier", identifier,
			"message", probe.Message)
		return nil, apperror.BadGateway("Profile provider reported failure", nil)
	}

	return domain.RawProfilePayload(payload), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
