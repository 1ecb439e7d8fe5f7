package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

func TestMarkdown(t *testing.T) {
	tp := NewTextProcessor()

	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			in:       "hello *world*",
			contains: []string{"<em>world</em>"},
		},
		{
			name:     "script is stripped",
			in:       "hi <script>alert(1)</script>",
			excludes: []string{"<script", "alert(1)</script>"},
		},
		{
			name:     "javascript links are dropped",
			in:       "[click](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "links get nofollow",
			in:       "see https://example.com",
			contains: []string{`href="https://example.com"`, `nofollow`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(tp.Markdown(tt.in))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}

	assert.Empty(t, tp.Markdown("   "))
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.com", Domain("https://www.example.com/a/b?c=d"))
	assert.Equal(t, "news.ycombinator.com", Domain("https://news.ycombinator.com"))
	assert.Equal(t, "not a url", Domain("not a url"))
}

func TestAgo(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		at   time.Time
		want string
	}{
		{now, "0 minutes ago"},
		{now.Add(-time.Minute), "1 minute ago"},
		{now.Add(-59 * time.Minute), "59 minutes ago"},
		{now.Add(-2 * time.Hour), "2 hours ago"},
		{now.Add(-23*time.Hour - 59*time.Minute), "23 hours ago"},
		{now.Add(-49 * time.Hour), "2 days ago"},
		{now.Add(time.Hour), "0 minutes ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ago(tt.at, now))
	}
}

func TestAuthor(t *testing.T) {
	addr := "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	assert.Equal(t, "9WzD...AWWM", Author(addr, models.MethodWallet))
	assert.Equal(t, "octocat", Author("octocat", models.MethodGitHub))
	assert.Equal(t, "abc", ShortAddress("abc"))
}

func TestTokenHelpers(t *testing.T) {
	assert.Equal(t, "https://dexscreener.com/solana/DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
		DexScreenerURL(models.ChainSolana, "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"))
	assert.Equal(t, "$BONK", Ticker("BONK"))
	assert.Equal(t, "$BONK", Ticker("$BONK"))
}
