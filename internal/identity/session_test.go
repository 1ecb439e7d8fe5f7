package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

func TestSessionCodecRoundTrip(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)

	tests := []struct {
		name    string
		session Session
	}{
		{"empty", Session{}},
		{"github", Session{Pinned: models.MethodGitHub, GitHub: &GitHubProfile{Login: "octocat", Email: "octo@github.com"}}},
		{"github without login", Session{Pinned: models.MethodGitHub, GitHub: &GitHubProfile{}}},
		{"wallet", Session{Pinned: models.MethodWallet, Wallet: testWallet}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Encode(tt.session)
			require.NoError(t, err)

			got, err := codec.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, tt.session, got)
		})
	}
}

func TestSessionCodecRejects(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)
	token, err := codec.Encode(Session{Pinned: models.MethodWallet, Wallet: testWallet})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewSessionCodec("other-secret", time.Hour).Decode(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := codec.Decode("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewSessionCodec("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}
