package eth

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
)

// SimulatedGasLimit is a block gas limit of the simulated chain.
const SimulatedGasLimit uint64 = 8000000

// SimulatedChainID is a chain id of the simulated chain.
var SimulatedChainID = big.NewInt(1337)

// Simulated is an in-memory chain mining a block for every accepted
// transaction.
type Simulated struct {
	*backends.SimulatedBackend
}

// NewSimulated creates a simulated chain with funded accounts.
func NewSimulated(funded ...common.Address) *Simulated {
	balance := new(big.Int)
	balance.SetString("1000000000000000000000000", 10)

	alloc := make(core.GenesisAlloc)
	for _, addr := range funded {
		alloc[addr] = core.GenesisAccount{Balance: balance}
	}

	return &Simulated{
		SimulatedBackend: backends.NewSimulatedBackend(alloc,
			SimulatedGasLimit),
	}
}

// SendTransaction adds a transaction to the pending block and mines it.
func (s *Simulated) SendTransaction(ctx context.Context,
	tx *types.Transaction) error {
	if err := s.SimulatedBackend.SendTransaction(ctx, tx); err != nil {
		return err
	}
	s.Commit()
	return nil
}

// NewSimulatedClient creates a client over a new simulated chain.
func NewSimulatedClient(funded ...common.Address) (*Client, *Simulated) {
	sim := NewSimulated(funded...)
	return NewBackendClient(sim, SimulatedChainID), sim
}
