package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/eliza-news/backend/internal/identity"
	"github.com/emilythestrangee/eliza-news/backend/internal/middleware"
	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

const (
	oauthStateCookie = "eliza_oauth_state"
	oauthStateMaxAge = 600
)

type AuthHandler struct {
	sessions *middleware.Sessions
	wallet   *identity.WalletVerifier
	github   *identity.GitHubProvider
	secure   bool
	log      *logrus.Entry
}

func NewAuthHandler(sessions *middleware.Sessions, wallet *identity.WalletVerifier, github *identity.GitHubProvider, secure bool, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{sessions: sessions, wallet: wallet, github: github, secure: secure, log: log}
}

func authView(res identity.Result) gin.H {
	var user any
	if res.Authenticated() {
		user = res.Identity
	}
	return gin.H{
		"is_authenticated": res.Authenticated(),
		"user":             user,
	}
}

// apply stores a transition in the session cookie.
func (h *AuthHandler) apply(c *gin.Context, res identity.Result) error {
	if res.TornDown != models.MethodNone {
		h.log.WithFields(logrus.Fields{
			"state":     res.State,
			"torn_down": res.TornDown,
		}).Info("provider signed out")
	}
	return h.sessions.Apply(c, res)
}

// GetMe returns the current identity as {is_authenticated, user}.
func (h *AuthHandler) GetMe(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var user any
	if !id.IsZero() {
		user = id
	}
	c.JSON(http.StatusOK, gin.H{
		"is_authenticated": !id.IsZero(),
		"user":             user,
	})
}

// WalletChallenge issues a message for the wallet at ?address= to sign.
func (h *AuthHandler) WalletChallenge(c *gin.Context) {
	ch, err := h.wallet.NewChallenge(c.Query("address"))
	if err != nil {
		if errors.Is(err, identity.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address"})
			return
		}
		h.log.WithError(err).Error("failed to issue wallet challenge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue challenge"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

// WalletLogin verifies a signed challenge and makes the wallet the active
// identity. An active GitHub session is ended.
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var input struct {
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Challenge string `json:"challenge" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.wallet.Verify(input.Address, input.Signature, input.Challenge); err != nil {
		h.log.WithError(err).WithField("address", input.Address).Warn("wallet login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid wallet signature"})
		return
	}

	res := identity.ActivateWallet(middleware.GetSession(c), input.Address)
	if err := h.apply(c, res); err != nil {
		h.log.WithError(err).Error("failed to write session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}
	c.JSON(http.StatusOK, authView(res))
}

func (h *AuthHandler) signOut(c *gin.Context) (identity.Result, error) {
	res := identity.SignOut(middleware.GetSession(c))
	return res, h.apply(c, res)
}

// SignOut ends the pinned provider's session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	res, err := h.signOut(c)
	if err != nil {
		h.log.WithError(err).Error("failed to clear session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, authView(res))
}

// GitHubLogin redirects to GitHub's consent page.
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	if h.github == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": identity.ErrGitHubDisabled.Error()})
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/auth/github", "", h.secure, true)
	c.Redirect(http.StatusFound, h.github.AuthCodeURL(state))
}

// GitHubCallback finishes the OAuth flow and makes GitHub the active identity.
// A connected wallet is disconnected.
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	if h.github == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": identity.ErrGitHubDisabled.Error()})
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OAuth state"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/auth/github", "", h.secure, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	profile, err := h.github.Exchange(c.Request.Context(), code)
	if err != nil {
		h.log.WithError(err).Warn("github login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "GitHub login failed"})
		return
	}

	res := identity.ActivateGitHub(middleware.GetSession(c), profile)
	if err := h.apply(c, res); err != nil {
		h.log.WithError(err).Error("failed to write session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
