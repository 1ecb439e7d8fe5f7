package store

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

// NormalizeTicker drops '$' and whitespace and upper-cases the rest.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if r == '$' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}

// ValidSolanaAddress reports whether s is a base58 encoded 32-byte key.
func ValidSolanaAddress(s string) bool {
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == 32
}

// ValidContract checks the address format expected on chain. Submissions
// are not rejected on format; a malformed contract only skips the lookup.
func ValidContract(chain models.Chain, address string) bool {
	switch {
	case chain == models.ChainSolana:
		return ValidSolanaAddress(address)
	case chain.IsEVM():
		return common.IsHexAddress(address) && strings.HasPrefix(strings.ToLower(address), "0x")
	default:
		return false
	}
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// cleanPostInput trims and validates in before any network call is made.
func cleanPostInput(op string, in models.PostInput) (models.PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.Text = strings.TrimSpace(in.Text)

	if in.Title == "" {
		return in, validationErr(op, "title is required")
	}
	if in.URL != "" && !validURL(in.URL) {
		return in, validationErr(op, "url must be an http or https address")
	}

	if !in.HasToken {
		in.TokenTicker, in.TokenChain, in.TokenContract = "", "", ""
		in.ClaimDeployer, in.ClaimHolder = false, false
		return in, nil
	}

	in.TokenTicker = NormalizeTicker(in.TokenTicker)
	in.TokenChain = models.ParseChain(string(in.TokenChain))
	in.TokenContract = strings.TrimSpace(in.TokenContract)

	switch {
	case in.TokenTicker == "":
		return in, validationErr(op, "token ticker is required")
	case in.TokenChain == "":
		return in, validationErr(op, "token blockchain is required")
	case !in.TokenChain.Valid():
		return in, validationErr(op, "unsupported token blockchain")
	case in.TokenContract == "":
		return in, validationErr(op, "token contract is required")
	}
	return in, nil
}
