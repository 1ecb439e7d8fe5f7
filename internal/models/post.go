package models

import (
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID            string         `gorm:"primaryKey;type:uuid" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	URL           string         `json:"url,omitempty"`
	Text          string         `gorm:"type:text" json:"text,omitempty"`
	Points        int            `gorm:"not null;default:1" json:"points"`
	Username      string         `gorm:"not null;index" json:"username"`
	AuthType      Method         `gorm:"not null" json:"auth_type"`
	Upvoters      pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"upvoters"`
	CommentsCount int            `gorm:"not null;default:0" json:"comments_count"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`

	// Token metadata, only meaningful when HasToken is set
	HasToken        bool   `gorm:"not null;default:false" json:"has_token"`
	TokenTicker     string `json:"token_ticker,omitempty"`
	TokenBlockchain Chain  `json:"token_blockchain,omitempty"`
	TokenContract   string `json:"token_contract,omitempty"`
	IsTokenDeployer bool   `gorm:"not null;default:false" json:"is_token_deployer"`
	IsTokenHolder   bool   `gorm:"not null;default:false" json:"is_token_holder"`
	ClaimsDeployer  bool   `gorm:"not null;default:false" json:"claims_deployer"`
	ClaimsHolder    bool   `gorm:"not null;default:false" json:"claims_holder"`

	Comments []Comment `gorm:"-" json:"comments,omitempty"`
}

// HasUpvoted reports whether name is already in the upvoter set.
func (p Post) HasUpvoted(name string) bool {
	for _, u := range p.Upvoters {
		if u == name {
			return true
		}
	}
	return false
}

// PostInput is what a submitter controls. Author fields and token flags are
// filled in by the store.
type PostInput struct {
	Title         string `json:"title" form:"title"`
	URL           string `json:"url" form:"url"`
	Text          string `json:"text" form:"text"`
	HasToken      bool   `json:"has_token" form:"has_token"`
	TokenTicker   string `json:"token_ticker" form:"token_ticker"`
	TokenChain    Chain  `json:"token_blockchain" form:"token_blockchain" binding:"omitempty,chain"`
	TokenContract string `json:"token_contract" form:"token_contract"`
	ClaimDeployer bool   `json:"claim_deployer" form:"claim_deployer"`
	ClaimHolder   bool   `json:"claim_holder" form:"claim_holder"`
}
