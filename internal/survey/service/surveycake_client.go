package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/allisson/surveyhook/internal/retry"
	"github.com/allisson/surveyhook/internal/survey/domain"
)

// maxPayloadSize bounds the body read from the SurveyCake API.
const maxPayloadSize = 10 << 20

// errRemoteNotReady marks a "not exist" answer, which SurveyCake returns while
// the response is still being prepared.
var errRemoteNotReady = errors.New("surveycake response not ready")

// errPayloadTooLarge marks a body over maxPayloadSize. Retrying cannot shrink it.
var errPayloadTooLarge = errors.New("surveycake payload too large")

// SurveyCakeClient fetches encrypted response payloads from the SurveyCake
// webhook API, retrying transient failures according to its retry.Policy.
type SurveyCakeClient struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	policy     retry.Policy
	logger     *slog.Logger
}

// NewSurveyCakeClient creates a SurveyCakeClient. domain is a bare host name
// (https is assumed) or a full base URL.
func NewSurveyCakeClient(
	httpClient *http.Client,
	domain string,
	apiVersion string,
	policy retry.Policy,
	logger *slog.Logger,
) *SurveyCakeClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := strings.TrimRight(domain, "/")
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}

	return &SurveyCakeClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		policy:     policy,
		logger:     logger,
	}
}

// Fetch returns the Base64 ciphertext of the response identified by surveyID
// and responseHash.
func (c *SurveyCakeClient) Fetch(ctx context.Context, surveyID, responseHash string) (string, error) {
	endpoint := fmt.Sprintf("%s/webhook/%s/%s/%s",
		c.baseURL,
		url.PathEscape(c.apiVersion),
		url.PathEscape(surveyID),
		url.PathEscape(responseHash),
	)

	maxAttempts := c.policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var ciphertext string
	attempts, err := c.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		c.logger.Info("fetching surveycake payload",
			slog.String("svid", surveyID),
			slog.String("hash", responseHash),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
		)

		payload, err := c.fetchOnce(ctx, endpoint)
		if err != nil {
			return err
		}

		ciphertext = payload
		return nil
	}, func(err error, attempt int, wait time.Duration) {
		c.logger.Warn("surveycake fetch attempt failed",
			slog.String("svid", surveyID),
			slog.String("hash", responseHash),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("retry_in", wait),
			slog.Any("error", err),
		)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRemoteRejected) {
			c.logger.Error("surveycake rejected request",
				slog.String("svid", surveyID),
				slog.String("hash", responseHash),
				slog.Any("error", err),
			)
			return "", err
		}

		c.logger.Error("surveycake fetch exhausted",
			slog.String("svid", surveyID),
			slog.String("hash", responseHash),
			slog.Int("attempts", attempts),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("%w: after %d attempts: %v", domain.ErrFetchExhausted, attempts, err)
	}

	return ciphertext, nil
}

func (c *SurveyCakeClient) fetchOnce(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("build request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxPayloadSize {
		return "", retry.Permanent(fmt.Errorf("%w: more than %d bytes", errPayloadTooLarge, maxPayloadSize))
	}

	c.logger.Debug("surveycake response received",
		slog.Int("status_code", resp.StatusCode),
		slog.Int("body_length", len(body)),
	)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if message, rejected := remoteError(body); rejected {
		if strings.Contains(message, "not exist") {
			return "", fmt.Errorf("%w: %s", errRemoteNotReady, message)
		}
		return "", retry.Permanent(fmt.Errorf("%w: %s", domain.ErrRemoteRejected, message))
	}

	payload := strings.TrimSpace(string(body))
	if err := ValidateCiphertext(payload); err != nil {
		return "", err
	}

	return payload, nil
}

// remoteError reports whether body is a JSON object whose status is false
// (or 0) and returns its message.
func remoteError(body []byte) (string, bool) {
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return "", false
	}
	// Anything after the object makes the body invalid JSON, not a remote error.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", false
	}

	switch status := obj["status"].(type) {
	case bool:
		if status {
			return "", false
		}
	case json.Number:
		if f, err := status.Float64(); err != nil || f != 0 {
			return "", false
		}
	default:
		return "", false
	}

	switch message := obj["message"].(type) {
	case nil:
		return "unknown error", true
	case string:
		return message, true
	default:
		return fmt.Sprint(message), true
	}
}

// ValidateCiphertext checks that payload is Base64 decoding to a positive
// multiple of the AES block size.
func ValidateCiphertext(payload string) error {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("payload is not valid base64: %w", err)
	}
	if len(raw) == 0 || len(raw)%domain.BlockSize != 0 {
		return fmt.Errorf("payload length %d is not a positive multiple of %d", len(raw), domain.BlockSize)
	}
	return nil
}
