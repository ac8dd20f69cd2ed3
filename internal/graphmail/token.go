package graphmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"graphmailer/internal/common/logger"
	"graphmailer/internal/common/security"
)

const (
	// TokenTTL is how long an acquired token is reused before a fresh one
	// is fetched. Tokens are normally valid for about an hour; the short
	// window trades extra token-endpoint calls for tolerance of clock
	// skew between this process and the remote service.
	TokenTTL = 45 * time.Second

	tokenCacheKey = "graphmail-accesstoken"

	// graphResource is the AAD v1 resource URI for Microsoft Graph.
	graphResource = "https://graph.microsoft.com/"

	tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/token?api-version=1.0"
)

// TokenSource supplies bearer tokens for Graph API calls.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenProvider implements TokenSource with the OAuth2 client-credentials
// grant against the tenant's token endpoint, caching each token in the
// injected TokenCache for TokenTTL.
type TokenProvider struct {
	tenantID     string
	clientID     string
	clientSecret string
	tokenURL     string
	cache        TokenCache
	httpClient   *http.Client
	logger       *slog.Logger

	// fetchMu serializes cache-miss fetches so at most one token request
	// is in flight even under concurrent sends.
	fetchMu sync.Mutex
}

// TokenProviderOption customises a TokenProvider.
type TokenProviderOption func(*TokenProvider)

// WithTokenURL overrides the token endpoint URL (useful for tests).
func WithTokenURL(u string) TokenProviderOption {
	return func(p *TokenProvider) { p.tokenURL = u }
}

// WithTokenHTTPClient overrides the HTTP client used for token requests.
func WithTokenHTTPClient(c *http.Client) TokenProviderOption {
	return func(p *TokenProvider) { p.httpClient = c }
}

// WithTokenLogger attaches a structured logger for debug output.
func WithTokenLogger(l *slog.Logger) TokenProviderOption {
	return func(p *TokenProvider) { p.logger = l }
}

// NewTokenProvider validates the client-credentials configuration and
// returns a provider backed by cache. A nil cache gets a fresh MemoryCache.
// All three credential values are required; a missing one fails with a
// ConfigError before any network activity.
func NewTokenProvider(tenantID, clientID, clientSecret string, cache TokenCache, opts ...TokenProviderOption) (*TokenProvider, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, &ConfigError{Setting: "tenant", Reason: "tenant ID must not be empty"}
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, &ConfigError{Setting: "clientid", Reason: "client ID must not be empty"}
	}
	if strings.TrimSpace(clientSecret) == "" {
		return nil, &ConfigError{Setting: "clientsecret", Reason: "client secret must not be empty"}
	}

	if cache == nil {
		cache = NewMemoryCache()
	}

	p := &TokenProvider{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     fmt.Sprintf(tokenURLFormat, url.PathEscape(tenantID)),
		cache:        cache,
		httpClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// AccessToken returns a bearer token for the Graph API, reusing the cached
// one when it is younger than TokenTTL.
func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	p.fetchMu.Lock()
	defer p.fetchMu.Unlock()

	if token, ok := p.cache.Get(tokenCacheKey); ok {
		logger.Debug(p.logger, "Access token served from cache")
		return token, nil
	}

	logger.Debug(p.logger, "Requesting access token",
		"tenantID", security.MaskGUID(p.tenantID),
		"clientID", security.MaskGUID(p.clientID))

	token, err := p.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	p.cache.Set(tokenCacheKey, token, TokenTTL)
	logger.Debug(p.logger, "Access token acquired",
		"token", security.MaskAccessToken(token), "ttl", TokenTTL)
	return token, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// fetchToken posts the client-credentials grant to the token endpoint and
// maps failures into the closed error taxonomy: 4xx/5xx responses become
// AuthError, transport failures UnreachableError (network), and anything
// else UnreachableError (unknown).
func (p *TokenProvider) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
		"resource":      {graphResource},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &UnreachableError{Kind: UnreachableUnknown, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &UnreachableError{Kind: UnreachableNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UnreachableError{Kind: UnreachableUnknown, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Best effort: the error fields stay empty if the body is not
		// the documented JSON shape.
		var remote tokenErrorResponse
		_ = json.Unmarshal(body, &remote)
		return "", &AuthError{
			Status:      resp.StatusCode,
			Code:        remote.Error,
			Description: remote.ErrorDescription,
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &UnreachableError{Kind: UnreachableUnknown, Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return "", &UnreachableError{Kind: UnreachableUnknown, Err: errors.New("token response has no access_token")}
	}
	return tr.AccessToken, nil
}
