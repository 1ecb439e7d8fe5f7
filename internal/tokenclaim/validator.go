// Package tokenclaim checks a submitter's claimed relationship to a token
// contract against the chain.
package tokenclaim

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

var ErrUnsupportedChain = errors.New("unsupported chain")

var lookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "token_claim_lookups_total",
		Help: "Token claim validations by chain and outcome",
	},
	[]string{"chain", "result"},
)

// Status holds the two derived badge flags.
type Status struct {
	IsDeployer bool `json:"is_deployer"`
	IsHolder   bool `json:"is_holder"`
}

// BalanceLookup answers whether owner holds a positive balance of mint.
type BalanceLookup interface {
	HasPositiveBalance(ctx context.Context, owner, mint string) (bool, error)
}

type Validator struct {
	solana BalanceLookup
	log    *logrus.Entry
}

func NewValidator(solana BalanceLookup, log *logrus.Entry) *Validator {
	return &Validator{solana: solana, log: log}
}

// Validate checks user against contract on chain. Only Solana holder status is
// looked up; deployer verification is not implemented and is always false.
// Other supported chains report an unverified Status without error.
func (v *Validator) Validate(ctx context.Context, chain models.Chain, contract, user string) (Status, error) {
	switch chain {
	case models.ChainSolana:
		held, err := v.solana.HasPositiveBalance(ctx, user, contract)
		if err != nil {
			lookupsTotal.WithLabelValues(string(chain), "error").Inc()
			return Status{}, fmt.Errorf("solana holder lookup: %w", err)
		}
		lookupsTotal.WithLabelValues(string(chain), result(held)).Inc()
		v.log.WithFields(logrus.Fields{
			"chain": chain, "contract": contract, "user": user, "holder": held,
		}).Debug("token claim checked")
		return Status{IsDeployer: false, IsHolder: held}, nil

	case models.ChainBase, models.ChainEthereum, models.ChainArbitrum, models.ChainOptimism:
		lookupsTotal.WithLabelValues(string(chain), "unverified").Inc()
		return Status{}, nil

	default:
		return Status{}, fmt.Errorf("%w: %q", ErrUnsupportedChain, chain)
	}
}

func result(held bool) string {
	if held {
		return "holder"
	}
	return "not_holder"
}
