package identity

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidChallenge = errors.New("invalid or expired challenge")
	ErrBadSignature     = errors.New("signature does not match wallet")
)

const challengeTTL = 5 * time.Minute

// Challenge is handed to the wallet to sign. Token must be sent back with the
// signature; it binds the message to the address and expires.
type Challenge struct {
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	Token     string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

type challengeClaims struct {
	Address string `json:"addr"`
	Nonce   string `json:"nonce"`
	jwt.RegisteredClaims
}

// WalletVerifier issues sign-in challenges and checks ed25519 signatures made
// by Solana wallets. Each challenge can be redeemed once.
type WalletVerifier struct {
	secret []byte
	now    func() time.Time

	mu   sync.Mutex
	used map[string]time.Time // nonce -> challenge expiry
}

func NewWalletVerifier(secret string) *WalletVerifier {
	return &WalletVerifier{
		secret: []byte("wallet:" + secret),
		now:    time.Now,
		used:   make(map[string]time.Time),
	}
}

func decodeAddress(address string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, ErrInvalidAddress
	}
	return ed25519.PublicKey(raw), nil
}

func challengeMessage(address, nonce string) string {
	return fmt.Sprintf("Sign in to ELIZA News\n\nWallet: %s\nNonce: %s", address, nonce)
}

func (v *WalletVerifier) NewChallenge(address string) (Challenge, error) {
	if _, err := decodeAddress(address); err != nil {
		return Challenge{}, err
	}

	nonce := uuid.NewString()
	expires := v.now().Add(challengeTTL)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, challengeClaims{
		Address: address,
		Nonce:   nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}).SignedString(v.secret)
	if err != nil {
		return Challenge{}, fmt.Errorf("sign challenge: %w", err)
	}

	return Challenge{
		Address:   address,
		Message:   challengeMessage(address, nonce),
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

// Verify checks that signature (base58) was made by address over the message
// of the given challenge token.
func (v *WalletVerifier) Verify(address, signature, token string) error {
	pub, err := decodeAddress(address)
	if err != nil {
		return err
	}

	var claims challengeClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || claims.Address != address {
		return ErrInvalidChallenge
	}

	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrBadSignature
	}
	if !ed25519.Verify(pub, []byte(challengeMessage(address, claims.Nonce)), sig) {
		return ErrBadSignature
	}
	return v.redeem(claims.Nonce, claims.ExpiresAt.Time)
}

// redeem marks nonce as spent until its challenge expires. Expired entries
// are pruned on every call.
func (v *WalletVerifier) redeem(nonce string, expires time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	for n, exp := range v.used {
		if !exp.After(now) {
			delete(v.used, n)
		}
	}
	if _, ok := v.used[nonce]; ok {
		return ErrInvalidChallenge
	}
	v.used[nonce] = expires
	return nil
}
