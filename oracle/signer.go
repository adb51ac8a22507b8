package oracle

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signer holds the oracle key. It is immutable after construction and
// safe for concurrent use.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	signer  types.Signer
}

// NewSigner creates a signer from a hex encoded private key.
func NewSigner(hexKey string, chainID *big.Int) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(
		strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid oracle private key")
	}

	if chainID == nil || chainID.Sign() <= 0 {
		return nil, errors.New("invalid chain id")
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		signer:  types.LatestSignerForChainID(chainID),
	}, nil
}

// Address returns the oracle account.
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign signs tx. It does no I/O.
func (s *Signer) Sign(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, s.signer, s.key)
}
