// Package identity turns the two login providers into one acting identity.
//
// A Session carries the raw provider signals (a GitHub profile, a connected
// wallet address) and the method the user last chose. Resolve is a small state
// machine over {unauthenticated, github, wallet}: every transition names the
// provider, if any, that has to be torn down so that at most one identity is
// ever active.
package identity

import (
	"strings"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateGitHub          State = "github"
	StateWallet          State = "wallet"
)

// GitHubProfile is the subset of the GitHub user consumed here.
type GitHubProfile struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName falls back from login to name to the email local part.
func (p GitHubProfile) DisplayName() string {
	switch {
	case p.Login != "":
		return p.Login
	case p.Name != "":
		return p.Name
	case p.Email != "":
		if local, _, _ := strings.Cut(p.Email, "@"); local != "" {
			return local
		}
	}
	return "Unknown"
}

type Session struct {
	Pinned models.Method
	GitHub *GitHubProfile
	Wallet string
}

// Result is the outcome of one transition.
type Result struct {
	Session  Session
	State    State
	Identity models.Identity
	// TornDown is the provider that was signed out, or MethodNone.
	TornDown models.Method
}

// Authenticated mirrors the {isAuthenticated, user} view handed to clients.
func (r Result) Authenticated() bool {
	return r.State != StateUnauthenticated
}

// Resolve computes the active identity from the session signals.
func Resolve(s Session) Result {
	hasGitHub := s.GitHub != nil
	hasWallet := s.Wallet != ""

	switch {
	case hasGitHub && (s.Pinned == models.MethodNone || s.Pinned == models.MethodGitHub):
		res := Result{TornDown: models.MethodNone}
		if hasWallet {
			s.Wallet = ""
			res.TornDown = models.MethodWallet
		}
		s.Pinned = models.MethodGitHub
		res.Session = s
		res.State = StateGitHub
		res.Identity = models.Identity{Name: s.GitHub.DisplayName(), Method: models.MethodGitHub}
		return res

	case hasWallet && (s.Pinned == models.MethodNone || s.Pinned == models.MethodWallet):
		res := Result{TornDown: models.MethodNone}
		if hasGitHub {
			s.GitHub = nil
			res.TornDown = models.MethodGitHub
		}
		s.Pinned = models.MethodWallet
		res.Session = s
		res.State = StateWallet
		res.Identity = models.Identity{Name: s.Wallet, Method: models.MethodWallet}
		return res

	case hasWallet:
		// Pinned to GitHub, whose session is gone; the wallet is stale.
		return Result{Session: Session{}, State: StateUnauthenticated, TornDown: models.MethodWallet}

	case hasGitHub:
		// Pinned to the wallet, which disconnected; GitHub is stale.
		return Result{Session: Session{}, State: StateUnauthenticated, TornDown: models.MethodGitHub}

	default:
		return Result{Session: Session{}, State: StateUnauthenticated}
	}
}

// ActivateGitHub pins GitHub with the given profile. Any connected wallet is
// torn down.
func ActivateGitHub(s Session, profile GitHubProfile) Result {
	s.Pinned = models.MethodGitHub
	s.GitHub = &profile
	return Resolve(s)
}

// ActivateWallet pins the wallet at address. Any GitHub session is torn down.
func ActivateWallet(s Session, address string) Result {
	s.Pinned = models.MethodWallet
	s.Wallet = address
	return Resolve(s)
}

// SignOut deactivates the pinned provider and clears the pin.
func SignOut(s Session) Result {
	torn := s.Pinned
	switch s.Pinned {
	case models.MethodGitHub:
		s.GitHub = nil
	case models.MethodWallet:
		s.Wallet = ""
	}
	s.Pinned = models.MethodNone

	res := Resolve(s)
	if res.TornDown == models.MethodNone {
		res.TornDown = torn
	}
	return res
}
