// Package render turns stored posts into what the pages show: sanitised
// markdown, link domains, relative times and token links.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

type TextProcessor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewTextProcessor() *TextProcessor {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &TextProcessor{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		),
		policy: policy,
	}
}

// Markdown renders text and sanitises the result. Raw HTML in the input is
// dropped by goldmark and anything else unsafe by the policy.
func (tp *TextProcessor) Markdown(text string) template.HTML {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(strings.TrimSpace(tp.policy.Sanitize(buf.String())))
}

// Domain is the host of u without a leading "www.", or u itself when it does
// not parse.
func Domain(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Hostname() == "" {
		return u
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Ago formats the whole minutes, hours or days between t and now.
func Ago(t, now time.Time) string {
	minutes := int(now.Sub(t) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	if minutes < 60 {
		return plural(minutes, "minute")
	}
	hours := minutes / 60
	if hours < 24 {
		return plural(hours, "hour")
	}
	return plural(hours/24, "day")
}

// ShortAddress keeps the first and last four characters of a wallet address.
func ShortAddress(addr string) string {
	if len(addr) <= 11 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}

// Author is the display form of a post or comment author.
func Author(name string, method models.Method) string {
	if method == models.MethodWallet {
		return ShortAddress(name)
	}
	return name
}

func DexScreenerURL(chain models.Chain, contract string) string {
	return "https://dexscreener.com/" + url.PathEscape(string(chain)) + "/" + url.PathEscape(contract)
}

// Ticker is the badge text for a token ticker.
func Ticker(ticker string) string {
	return "$" + strings.ReplaceAll(ticker, "$", "")
}

// FuncMap exposes the helpers to html/template. now is read once per call of
// "ago".
func (tp *TextProcessor) FuncMap(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"markdown": tp.Markdown,
		"domain":   Domain,
		"ago":      func(t time.Time) string { return Ago(t, now()) },
		"author":   Author,
		"short":    ShortAddress,
		"dex":      DexScreenerURL,
		"ticker":   Ticker,
		"inc":      func(i int) int { return i + 1 },
	}
}
