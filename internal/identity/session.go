package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

var ErrInvalidSession = errors.New("invalid session")

const issuer = "eliza-news"

type sessionClaims struct {
	Pinned      models.Method `json:"pin,omitempty"`
	GitHubLogin string        `json:"gh_login,omitempty"`
	GitHubName  string        `json:"gh_name,omitempty"`
	GitHubEmail string        `json:"gh_email,omitempty"`
	HasGitHub   bool          `json:"gh,omitempty"`
	Wallet      string        `json:"wallet,omitempty"`
	jwt.RegisteredClaims
}

// SessionCodec signs sessions into HS256 tokens and back.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (c *SessionCodec) TTL() time.Duration { return c.ttl }

func (c *SessionCodec) Encode(s Session) (string, error) {
	now := c.now()
	claims := sessionClaims{
		Pinned: s.Pinned,
		Wallet: s.Wallet,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	if s.GitHub != nil {
		claims.HasGitHub = true
		claims.GitHubLogin = s.GitHub.Login
		claims.GitHubName = s.GitHub.Name
		claims.GitHubEmail = s.GitHub.Email
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

func (c *SessionCodec) Decode(token string) (Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	s := Session{Pinned: claims.Pinned, Wallet: claims.Wallet}
	if claims.HasGitHub {
		s.GitHub = &GitHubProfile{
			Login: claims.GitHubLogin,
			Name:  claims.GitHubName,
			Email: claims.GitHubEmail,
		}
	}
	return s, nil
}

func (c *SessionCodec) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return c.secret, nil
}
