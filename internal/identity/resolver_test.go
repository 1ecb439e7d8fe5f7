package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

const testWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		profile GitHubProfile
		want    string
	}{
		{"login", GitHubProfile{Login: "octocat", Name: "The Octocat", Email: "octo@github.com"}, "octocat"},
		{"name", GitHubProfile{Name: "The Octocat", Email: "octo@github.com"}, "The Octocat"},
		{"email", GitHubProfile{Email: "octo@github.com"}, "octo"},
		{"empty email local part", GitHubProfile{Email: "@github.com"}, "Unknown"},
		{"nothing", GitHubProfile{}, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.DisplayName())
		})
	}
}

func TestResolveNoSignals(t *testing.T) {
	res := Resolve(Session{Pinned: models.MethodWallet})

	assert.Equal(t, StateUnauthenticated, res.State)
	assert.False(t, res.Authenticated())
	assert.True(t, res.Identity.IsZero())
	assert.Equal(t, models.MethodNone, res.Session.Pinned)
	assert.Equal(t, models.MethodNone, res.TornDown)
}

func TestResolveGitHubOnly(t *testing.T) {
	res := Resolve(Session{GitHub: &GitHubProfile{Login: "octocat"}})

	assert.Equal(t, StateGitHub, res.State)
	assert.Equal(t, models.Identity{Name: "octocat", Method: models.MethodGitHub}, res.Identity)
	assert.Equal(t, models.MethodGitHub, res.Session.Pinned)
}

func TestResolveWalletOnly(t *testing.T) {
	res := Resolve(Session{Wallet: testWallet})

	assert.Equal(t, StateWallet, res.State)
	assert.Equal(t, models.Identity{Name: testWallet, Method: models.MethodWallet}, res.Identity)
	assert.Equal(t, models.MethodWallet, res.Session.Pinned)
}

func TestResolveBothSignalsPinnedWallet(t *testing.T) {
	res := Resolve(Session{
		Pinned: models.MethodWallet,
		GitHub: &GitHubProfile{Login: "octocat"},
		Wallet: testWallet,
	})

	assert.Equal(t, StateWallet, res.State)
	assert.Equal(t, models.MethodGitHub, res.TornDown)
	assert.Nil(t, res.Session.GitHub)
	assert.Equal(t, testWallet, res.Session.Wallet)
}

func TestResolveBothSignalsUnpinnedPrefersGitHub(t *testing.T) {
	res := Resolve(Session{GitHub: &GitHubProfile{Login: "octocat"}, Wallet: testWallet})

	assert.Equal(t, StateGitHub, res.State)
	assert.Equal(t, models.MethodWallet, res.TornDown)
	assert.Empty(t, res.Session.Wallet)
}

func TestResolveStaleSignal(t *testing.T) {
	t.Run("wallet left behind after github sign-out", func(t *testing.T) {
		res := Resolve(Session{Pinned: models.MethodGitHub, Wallet: testWallet})

		assert.Equal(t, StateUnauthenticated, res.State)
		assert.Equal(t, models.MethodWallet, res.TornDown)
		assert.Equal(t, Session{}, res.Session)
	})

	t.Run("github left behind after wallet disconnect", func(t *testing.T) {
		res := Resolve(Session{Pinned: models.MethodWallet, GitHub: &GitHubProfile{Login: "octocat"}})

		assert.Equal(t, StateUnauthenticated, res.State)
		assert.Equal(t, models.MethodGitHub, res.TornDown)
		assert.Equal(t, Session{}, res.Session)
	})
}

func TestActivateWalletWhileGitHubActive(t *testing.T) {
	github := ActivateGitHub(Session{}, GitHubProfile{Login: "octocat"})
	assert.Equal(t, StateGitHub, github.State)

	res := ActivateWallet(github.Session, testWallet)

	assert.Equal(t, StateWallet, res.State)
	assert.Equal(t, models.MethodWallet, res.Identity.Method)
	assert.Equal(t, testWallet, res.Identity.Name)
	assert.Equal(t, models.MethodGitHub, res.TornDown)
	assert.Nil(t, res.Session.GitHub)

	// resolving again is stable
	again := Resolve(res.Session)
	assert.Equal(t, res.Identity, again.Identity)
	assert.Equal(t, models.MethodNone, again.TornDown)
}

func TestActivateGitHubWhileWalletActive(t *testing.T) {
	wallet := ActivateWallet(Session{}, testWallet)
	res := ActivateGitHub(wallet.Session, GitHubProfile{Name: "Octo Cat"})

	assert.Equal(t, StateGitHub, res.State)
	assert.Equal(t, "Octo Cat", res.Identity.Name)
	assert.Equal(t, models.MethodWallet, res.TornDown)
	assert.Empty(t, res.Session.Wallet)
}

func TestSignOut(t *testing.T) {
	active := ActivateWallet(Session{}, testWallet)

	res := SignOut(active.Session)

	assert.Equal(t, StateUnauthenticated, res.State)
	assert.Equal(t, models.MethodWallet, res.TornDown)
	assert.Equal(t, Session{}, res.Session)

	empty := SignOut(Session{})
	assert.Equal(t, StateUnauthenticated, empty.State)
	assert.Equal(t, models.MethodNone, empty.TornDown)
}
