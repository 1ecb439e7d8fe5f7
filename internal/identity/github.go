package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubUserURL = "https://api.github.com/user"

var ErrGitHubDisabled = errors.New("github login is not configured")

// GitHubProvider runs the OAuth authorization-code flow against GitHub.
type GitHubProvider struct {
	oauth   *oauth2.Config
	userURL string
}

func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		userURL: githubUserURL,
	}
}

// AuthCodeURL returns the GitHub consent URL for the given state.
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades the callback code for a token and loads the user profile.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (GitHubProfile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return GitHubProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return GitHubProfile{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return GitHubProfile{}, fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GitHubProfile{}, fmt.Errorf("fetch github user: status %d", resp.StatusCode)
	}

	var profile GitHubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return GitHubProfile{}, fmt.Errorf("decode github user: %w", err)
	}
	return profile, nil
}
