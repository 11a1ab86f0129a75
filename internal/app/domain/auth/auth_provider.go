package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

// Session is the token pair returned by a successful code exchange.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Provider is the hosted auth service.
type Provider interface {
	// ExchangeCode trades an OAuth authorization code for a session.
	ExchangeCode(ctx context.Context, code, verifier string) (*Session, error)
	// SignOut revokes the session behind accessToken.
	SignOut(ctx context.Context, accessToken string) error
	// AuthorizeURL is where the browser starts a PKCE sign-in with the
	// identity provider idp. The provider sends it back to redirectTo.
	AuthorizeURL(idp, redirectTo, challenge string) (string, error)
}

// ProviderError carries the provider's own message, which is shown to the
// user on the landing page.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return models.ErrUpstream
}

var _ Provider = (*HTTPProvider)(nil)

type HTTPProvider struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPProvider(baseURL, anonKey string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

type exchangeRequest struct {
	AuthCode     string `json:"auth_code"`
	CodeVerifier string `json:"code_verifier"`
}

// providerErrorBody covers the error shapes the provider has used over time.
type providerErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (b providerErrorBody) text() string {
	for _, s := range []string{b.ErrorDescription, b.Msg, b.Message, b.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (p *HTTPProvider) ExchangeCode(ctx context.Context, code, verifier string) (*Session, error) {
	if p.baseURL == "" {
		return nil, &ProviderError{Status: http.StatusInternalServerError, Message: "Auth provider not configured"}
	}
	payload, err := json.Marshal(exchangeRequest{AuthCode: code, CodeVerifier: verifier})
	if err != nil {
		return nil, fmt.Errorf("failed to encode exchange request: %w", err)
	}

	resp, err := p.do(ctx, p.baseURL+"/auth/v1/token?grant_type=pkce", payload, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := p.checkStatus(resp, "Code exchange"); err != nil {
		return nil, err
	}
	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.AccessToken == "" {
		return nil, &ProviderError{Status: resp.StatusCode, Message: "Auth provider returned no access token"}
	}
	return &session, nil
}

func (p *HTTPProvider) SignOut(ctx context.Context, accessToken string) error {
	if p.baseURL == "" || accessToken == "" {
		return nil
	}
	resp, err := p.do(ctx, p.baseURL+"/auth/v1/logout", nil, accessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return p.checkStatus(resp, "Sign out")
}

func (p *HTTPProvider) AuthorizeURL(idp, redirectTo, challenge string) (string, error) {
	if p.baseURL == "" {
		return "", &ProviderError{Status: http.StatusInternalServerError, Message: "Auth provider not configured"}
	}
	q := url.Values{}
	q.Set("provider", idp)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "s256")
	return p.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

func (p *HTTPProvider) do(ctx context.Context, url string, body []byte, bearer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", p.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("Auth provider unreachable", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("auth provider request failed: %w", err)
	}
	return resp, nil
}

func (p *HTTPProvider) checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	var body providerErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)
	msg := body.text()
	if msg == "" {
		msg = fmt.Sprintf("%s failed (%d)", op, resp.StatusCode)
	}
	p.logger.Warn("Auth provider rejected request",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.String("message", msg),
	)
	return &ProviderError{Status: resp.StatusCode, Message: msg}
}
