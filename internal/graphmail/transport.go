package graphmail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"graphmailer/internal/common/logger"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint root.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// maxErrorBody caps how much of a failed response body is kept on the error.
const maxErrorBody = 8 << 10

// Transport sends outgoing messages through the Graph sendMail endpoint.
// Each Send performs at most two sequential HTTP calls: a token fetch
// (cache-dependent) and the sendMail POST. There are no retries.
type Transport struct {
	tokens     TokenSource
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// TransportOption customises a Transport.
type TransportOption func(*Transport)

// WithBaseURL overrides the Graph API base URL (useful for tests).
func WithBaseURL(u string) TransportOption {
	return func(t *Transport) { t.baseURL = u }
}

// WithHTTPClient overrides the HTTP client used for sendMail requests.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *Transport) { t.httpClient = c }
}

// WithLogger attaches a structured logger for debug output.
func WithLogger(l *slog.Logger) TransportOption {
	return func(t *Transport) { t.logger = l }
}

// NewTransport returns a Transport that authorizes requests via tokens.
func NewTransport(tokens TokenSource, opts ...TransportOption) (*Transport, error) {
	if tokens == nil {
		return nil, &ConfigError{Setting: "tokens", Reason: "a token source is required"}
	}

	t := &Transport{
		tokens:     tokens,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Send delivers msg through POST /users/{sender}/sendmail. A 2xx response
// is success (the endpoint normally answers 202 with an empty body); any
// non-2xx status fails with a DeliveryError. Token acquisition errors are
// propagated unchanged.
func (t *Transport) Send(ctx context.Context, msg *Message) error {
	if msg == nil || msg.From.Address == "" {
		return &ConfigError{Setting: "from", Reason: "message has no sender address"}
	}

	body, err := MarshalPayload(msg)
	if err != nil {
		return &UnreachableError{Kind: UnreachableUnknown, Err: err}
	}

	token, err := t.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/users/%s/sendmail", t.baseURL, url.PathEscape(msg.From.Address))
	requestID := uuid.NewString()

	logger.Debug(t.logger, "Calling Graph API",
		"method", http.MethodPost,
		"endpoint", endpoint,
		"requestID", requestID,
		"payloadBytes", len(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &UnreachableError{Kind: UnreachableUnknown, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("client-request-id", requestID)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return &UnreachableError{Kind: UnreachableNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{Status: resp.StatusCode, Body: string(respBody)}
	}

	logger.Debug(t.logger, "Mail accepted by Graph API",
		"status", resp.StatusCode, "from", msg.From.Address, "requestID", requestID)
	return nil
}
