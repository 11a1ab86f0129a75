package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/FACorreiaa/go-tripboard/internal/app/handlers"
	"github.com/FACorreiaa/go-tripboard/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-tripboard/internal/pkg/config"
)

const (
	afterSignInPath  = "/my-itineraries"
	afterSignOutPath = "/"
	callbackPath     = "/auth/callback"
	verifierMaxAge   = 10 * time.Minute
)

// CookieNames are the cookies a browser session is spread over.
type CookieNames struct {
	Access   string
	Refresh  string
	Verifier string
}

func NewCookieNames(base string) CookieNames {
	return CookieNames{Access: base, Refresh: base + "_refresh", Verifier: base + "_code_verifier"}
}

type Handler struct {
	*handlers.BaseHandler
	provider    Provider
	cookies     CookieNames
	secure      bool
	idps        []string
	callbackURL string
}

// NewHandler wires the sign-in routes. siteURL is the public origin the
// identity provider redirects back to.
func NewHandler(provider Provider, cfg config.AuthConfig, siteURL string, base *handlers.BaseHandler) *Handler {
	return &Handler{
		BaseHandler: base,
		provider:    provider,
		cookies:     NewCookieNames(cfg.CookieName),
		secure:      cfg.CookieSecure,
		idps:        cfg.OAuthProviders,
		callbackURL: strings.TrimRight(siteURL, "/") + callbackPath,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/auth/signin/:provider", h.SignIn)
	r.GET(callbackPath, h.Callback)
	r.POST("/auth/signout", h.SignOut)
}

// SignIn starts a PKCE sign-in: the verifier stays in a short-lived cookie
// and only its S256 challenge goes to the provider.
func (h *Handler) SignIn(c *gin.Context) {
	idp := strings.ToLower(c.Param("provider"))
	if !slices.Contains(h.idps, idp) {
		countAuth(c.Request.Context(), "signin", "rejected")
		h.redirectWithError(c, "Unsupported sign-in provider")
		return
	}

	verifier := oauth2.GenerateVerifier()
	target, err := h.provider.AuthorizeURL(idp, h.callbackURL, oauth2.S256ChallengeFromVerifier(verifier))
	if err != nil {
		countAuth(c.Request.Context(), "signin", "error")
		h.Logger.Warn("Sign-in could not start", zap.String("provider", idp), zap.Error(err))
		h.redirectWithError(c, exchangeMessage(err))
		return
	}

	h.setCookie(c, h.cookies.Verifier, verifier, int(verifierMaxAge.Seconds()))
	countAuth(c.Request.Context(), "signin", "ok")
	c.Redirect(http.StatusFound, target)
}

// Callback completes an OAuth sign-in. Without a code the visitor is sent
// on to their itineraries and the guard decides what they may see.
func (h *Handler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, afterSignInPath)
		return
	}

	verifier, _ := c.Cookie(h.cookies.Verifier)
	session, err := h.provider.ExchangeCode(c.Request.Context(), code, verifier)
	if err != nil {
		countAuth(c.Request.Context(), "callback", "error")
		h.Logger.Warn("OAuth code exchange failed", zap.Error(err))
		h.redirectWithError(c, exchangeMessage(err))
		return
	}

	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = int(time.Hour.Seconds())
	}
	h.setCookie(c, h.cookies.Access, session.AccessToken, maxAge)
	if session.RefreshToken != "" {
		h.setCookie(c, h.cookies.Refresh, session.RefreshToken, int((30 * 24 * time.Hour).Seconds()))
	}
	h.setCookie(c, h.cookies.Verifier, "", -1)

	countAuth(c.Request.Context(), "callback", "ok")
	h.Logger.Info("OAuth sign-in completed")
	c.Redirect(http.StatusFound, afterSignInPath)
}

// SignOut revokes the session when possible and always clears the cookies.
func (h *Handler) SignOut(c *gin.Context) {
	if token, err := c.Cookie(h.cookies.Access); err == nil && token != "" {
		if err := h.provider.SignOut(c.Request.Context(), token); err != nil {
			h.Logger.Warn("Session revoke failed", zap.Error(err))
		}
	}
	for _, name := range []string{h.cookies.Access, h.cookies.Refresh, h.cookies.Verifier} {
		h.setCookie(c, name, "", -1)
	}
	countAuth(c.Request.Context(), "signout", "ok")
	c.Redirect(http.StatusFound, afterSignOutPath)
}

func (h *Handler) redirectWithError(c *gin.Context, msg string) {
	c.Redirect(http.StatusFound, afterSignOutPath+"?oauth_error="+url.QueryEscape(msg))
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func exchangeMessage(err error) string {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Message
	}
	return err.Error()
}

func countAuth(ctx context.Context, op, outcome string) {
	metrics.Get().AuthRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}
