// Package middleware holds the gin middleware shared by the API and the pages.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/eliza-news/backend/internal/identity"
	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

const (
	identityKey = "identity"
	sessionKey  = "session"
)

// Sessions reads and writes the session cookie.
type Sessions struct {
	codec  *identity.SessionCodec
	name   string
	secure bool
}

func NewSessions(codec *identity.SessionCodec, cookieName string, secure bool) *Sessions {
	return &Sessions{codec: codec, name: cookieName, secure: secure}
}

// Read decodes the session cookie. A missing or invalid cookie is an empty
// session; present reports whether a cookie was sent at all.
func (s *Sessions) Read(c *gin.Context) (sess identity.Session, present bool) {
	raw, err := c.Cookie(s.name)
	if err != nil || raw == "" {
		return identity.Session{}, false
	}
	sess, err = s.codec.Decode(raw)
	if err != nil {
		return identity.Session{}, true
	}
	return sess, true
}

// Write stores sess in the cookie, or clears it when sess is empty.
func (s *Sessions) Write(c *gin.Context, sess identity.Session) error {
	if sess == (identity.Session{}) {
		s.Clear(c)
		return nil
	}
	token, err := s.codec.Encode(sess)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, token, int(s.codec.TTL().Seconds()), "/", "", s.secure, true)
	return nil
}

func (s *Sessions) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, "", -1, "/", "", s.secure, true)
}

// Apply writes the outcome of a transition and exposes it to later handlers.
func (s *Sessions) Apply(c *gin.Context, res identity.Result) error {
	c.Set(identityKey, res.Identity)
	c.Set(sessionKey, res.Session)
	return s.Write(c, res.Session)
}

// Identity resolves the acting identity from the session cookie on every
// request. A provider torn down by the resolver is dropped from the cookie.
func Identity(sessions *Sessions, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, present := sessions.Read(c)
		res := identity.Resolve(sess)

		c.Set(identityKey, res.Identity)
		c.Set(sessionKey, res.Session)

		if res.TornDown != models.MethodNone || (present && res.Session == (identity.Session{})) {
			log.WithFields(logrus.Fields{
				"torn_down": res.TornDown,
				"state":     res.State,
			}).Debug("session rewritten")
			if err := sessions.Write(c, res.Session); err != nil {
				log.WithError(err).Error("failed to rewrite session")
			}
		}
		c.Next()
	}
}

// RequireIdentity rejects requests without an acting identity.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c).IsZero() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}
	}
	id, _ := v.(models.Identity)
	return id
}

func GetSession(c *gin.Context) identity.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return identity.Session{}
	}
	sess, _ := v.(identity.Session)
	return sess
}
