package models

// Method is the provider class that authenticated the acting user.
type Method string

const (
	MethodNone   Method = ""
	MethodGitHub Method = "github"
	MethodWallet Method = "wallet"
)

// Identity is the acting user for one request. It is derived from the session
// and never persisted on its own.
type Identity struct {
	Name   string `json:"name"`
	Method Method `json:"method"`
}

// IsZero reports whether no identity is attached.
func (i Identity) IsZero() bool {
	return i.Name == "" || i.Method == MethodNone
}
