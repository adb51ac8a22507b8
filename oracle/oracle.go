package oracle

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/admon/ledger-mirror/data"
	"github.com/admon/ledger-mirror/db"
	"github.com/admon/ledger-mirror/eth"
	"github.com/admon/ledger-mirror/fault"
	"github.com/admon/ledger-mirror/metrics"
)

// Submission results used in metrics.
const (
	resultSuccessful = "successful"
	resultReverted   = "reverted"
	resultTimeout    = "timeout"
	resultRejected   = "rejected"
)

// Chain is a ledger node used by the oracle.
type Chain interface {
	PendingNonceAt(ctx context.Context,
		account common.Address) (uint64, error)
	BuildTransaction(ctx context.Context, from common.Address,
		nonce uint64, req eth.TxRequest) (*types.Transaction, error)
	Submit(ctx context.Context, tx *types.Transaction) (common.Hash, error)
	AwaitReceipt(ctx context.Context, hash common.Hash,
		timeout, poll time.Duration) (*types.Receipt, error)
	TransactionByHash(ctx context.Context,
		hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context,
		hash common.Hash) (*types.Receipt, error)
}

// Journal stores oracle submissions.
type Journal interface {
	RecordSubmission(ctx context.Context, sub *data.Submission) error
	SettleSubmission(ctx context.Context, hash string,
		status data.SubmissionStatus, block *uint64) error
	PendingSubmissions(ctx context.Context) ([]*data.Submission, error)
}

// Campaigns applies settled resolutions to the mirror.
type Campaigns interface {
	Campaign(ctx context.Context, id string) (*data.Campaign, error)
	ResolveCampaign(ctx context.Context, id string,
		outcome bool) (*data.Campaign, error)
}

// Options are oracle tunables.
type Options struct {
	ConfirmTimeout time.Duration
	ReceiptPoll    time.Duration
	// Used when a request does not set a gas limit. Zero means estimate.
	GasLimit uint64
}

// Result is a submitted oracle transaction.
type Result struct {
	Hash common.Hash
	// Nil until the transaction is mined.
	Receipt *types.Receipt
}

// Status is a ledger state of an oracle transaction.
type Status struct {
	Hash    common.Hash
	Status  data.SubmissionStatus
	Receipt *types.Receipt
}

// Service signs and submits transactions on behalf of the oracle
// account. Nonce assignment and submission are serialized, receipts are
// awaited concurrently.
type Service struct {
	signer    *Signer
	chain     Chain
	journal   Journal
	campaigns Campaigns
	opts      Options
	newID     func() string
	now       func() time.Time
	log       *zap.Logger
	metrics   *metrics.Metrics

	mu sync.Mutex
	// Next nonce to assign, valid while synced.
	next   uint64
	synced bool
}

// NewService creates a new oracle service. journal and campaigns may be
// nil.
func NewService(signer *Signer, chain Chain, journal Journal,
	campaigns Campaigns, newID func() string, opts Options,
	log *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		signer:    signer,
		chain:     chain,
		journal:   journal,
		campaigns: campaigns,
		opts:      opts,
		newID:     newID,
		now:       time.Now,
		log:       log.Named("oracle"),
		metrics:   m,
	}
}

// Address returns the oracle account.
func (s *Service) Address() common.Address {
	return s.signer.Address()
}

// SignAndSubmit signs req with the oracle key, submits it and waits for
// the receipt. On ConfirmationTimeout and ExecutionReverted failures the
// result is returned along with the error.
func (s *Service) SignAndSubmit(ctx context.Context,
	req eth.TxRequest) (*Result, error) {
	tx, err := s.submit(ctx, req)
	if err != nil {
		s.metrics.Submission(resultRejected)
		return nil, err
	}

	result := &Result{Hash: tx.Hash()}
	log := s.log.With(zap.String("hash", result.Hash.Hex()),
		zap.Uint64("nonce", tx.Nonce()))

	receipt, err := s.chain.AwaitReceipt(ctx, result.Hash,
		s.opts.ConfirmTimeout, s.opts.ReceiptPoll)
	if err != nil {
		s.metrics.Submission(resultTimeout)
		log.Warn("transaction is not confirmed", zap.Error(err))
		return result, fault.Wrap(fault.ConfirmationTimeout, err,
			"transaction %s is not confirmed, check it before resending",
			result.Hash.Hex())
	}

	result.Receipt = receipt
	block := receipt.BlockNumber.Uint64()

	if receipt.Status != types.ReceiptStatusSuccessful {
		s.metrics.Submission(resultReverted)
		s.settle(ctx, result.Hash, data.SubmissionFailed, &block)
		log.Error("transaction reverted", zap.Uint64("block", block))
		return result, fault.New(fault.ExecutionReverted,
			"transaction %s reverted in block %d", result.Hash.Hex(), block)
	}

	s.metrics.Submission(resultSuccessful)
	s.settle(ctx, result.Hash, data.SubmissionSuccessful, &block)
	log.Info("transaction confirmed", zap.Uint64("block", block))

	return result, nil
}

// submit assigns a nonce and hands the signed transaction to the node.
// The nonce is consumed only when the node accepted the transaction, an
// ambiguous failure forces a nonce re-fetch.
func (s *Service) submit(ctx context.Context,
	req eth.TxRequest) (*types.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.signer.Address()

	if !s.synced {
		nonce, err := s.chain.PendingNonceAt(ctx, from)
		if err != nil {
			return nil, fault.Wrap(fault.Submission, err,
				"failed to fetch nonce of %s", from.Hex())
		}

		s.next = nonce
		s.synced = true
		s.metrics.NonceResync()
		s.log.Debug("nonce synchronized", zap.Uint64("nonce", nonce))
	}

	if req.GasLimit == 0 {
		req.GasLimit = s.opts.GasLimit
	}

	tx, err := s.chain.BuildTransaction(ctx, from, s.next, req)
	if err != nil {
		return nil, fault.Wrap(fault.Submission, err,
			"failed to build transaction")
	}

	signed, err := s.signer.Sign(tx)
	if err != nil {
		return nil, fault.Wrap(fault.Submission, err,
			"failed to sign transaction")
	}

	if _, err := s.chain.Submit(ctx, signed); err != nil {
		s.synced = false
		s.log.Warn("transaction is not submitted",
			zap.Uint64("nonce", s.next), zap.Error(err))
		return nil, fault.Wrap(fault.Submission, err,
			"failed to submit transaction with nonce %d", s.next)
	}

	s.next++
	s.record(ctx, signed)

	return signed, nil
}

func (s *Service) record(ctx context.Context, tx *types.Transaction) {
	if s.journal == nil {
		return
	}

	sub := &data.Submission{
		ID:        s.newID(),
		Hash:      strings.ToLower(tx.Hash().Hex()),
		Nonce:     tx.Nonce(),
		Status:    data.SubmissionPending,
		CreatedAt: s.now().UTC(),
	}

	if to := tx.To(); to != nil {
		addr := strings.ToLower(to.Hex())
		sub.To = &addr
	}

	if err := s.journal.RecordSubmission(ctx, sub); err != nil {
		s.log.Error("failed to record submission",
			zap.String("hash", sub.Hash), zap.Error(err))
	}
}

func (s *Service) settle(ctx context.Context, hash common.Hash,
	status data.SubmissionStatus, block *uint64) {
	if s.journal == nil {
		return
	}

	err := s.journal.SettleSubmission(ctx, strings.ToLower(hash.Hex()),
		status, block)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		s.log.Error("failed to settle submission",
			zap.String("hash", hash.Hex()), zap.Error(err))
	}
}

// invalidateNonce forces a nonce re-fetch before the next submission.
func (s *Service) invalidateNonce() {
	s.mu.Lock()
	s.synced = false
	s.mu.Unlock()
}

// ParseHash parses a hex encoded transaction hash.
func ParseHash(hash string) (common.Hash, error) {
	raw, err := hexutil.Decode(strings.TrimSpace(hash))
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, fault.New(fault.Validation,
			"invalid transaction hash %q", hash)
	}
	return common.BytesToHash(raw), nil
}

// TransactionStatus checks a transaction on the ledger. A dropped
// transaction is unknown to the node and safe to resend.
func (s *Service) TransactionStatus(ctx context.Context,
	hash string) (*Status, error) {
	h, err := ParseHash(hash)
	if err != nil {
		return nil, err
	}

	return s.status(ctx, h)
}

func (s *Service) status(ctx context.Context,
	hash common.Hash) (*Status, error) {
	result := &Status{Hash: hash, Status: data.SubmissionPending}

	receipt, err := s.chain.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fault.Wrap(fault.Submission, err,
			"failed to get receipt of %s", hash.Hex())
	}

	if receipt != nil {
		result.Receipt = receipt
		result.Status = data.SubmissionSuccessful
		if receipt.Status != types.ReceiptStatusSuccessful {
			result.Status = data.SubmissionFailed
		}
		return result, nil
	}

	_, _, err = s.chain.TransactionByHash(ctx, hash)
	if err == ethereum.NotFound {
		result.Status = data.SubmissionDropped
		return result, nil
	}
	if err != nil {
		return nil, fault.Wrap(fault.Submission, err,
			"failed to get transaction %s", hash.Hex())
	}

	return result, nil
}

// RecheckPending settles journaled transactions which got a final state
// on the ledger.
func (s *Service) RecheckPending(ctx context.Context) error {
	if s.journal == nil {
		return nil
	}

	pending, err := s.journal.PendingSubmissions(ctx)
	if err != nil {
		return fault.Wrap(fault.Storage, err, "failed to list submissions")
	}

	for _, sub := range pending {
		st, err := s.status(ctx, common.HexToHash(sub.Hash))
		if err != nil {
			return err
		}

		if st.Status == data.SubmissionPending {
			continue
		}

		var block *uint64
		if st.Receipt != nil {
			b := st.Receipt.BlockNumber.Uint64()
			block = &b
		}

		if err := s.journal.SettleSubmission(ctx, sub.Hash, st.Status,
			block); err != nil {
			return fault.Wrap(fault.Storage, err,
				"failed to settle submission %s", sub.Hash)
		}

		if st.Status == data.SubmissionDropped {
			s.invalidateNonce()
		}

		s.log.Info("submission settled", zap.String("hash", sub.Hash),
			zap.Uint64("nonce", sub.Nonce),
			zap.String("status", string(st.Status)))
	}

	return nil
}

// ResolveCampaignOnChain submits the campaign resolution and mirrors it
// once mined.
func (s *Service) ResolveCampaignOnChain(ctx context.Context, id string,
	outcome bool) (*data.Campaign, *Result, error) {
	if s.campaigns == nil {
		return nil, nil, errors.New("campaign mirror is not configured")
	}

	c, err := s.campaigns.Campaign(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if c.Status == data.CampaignResolved && c.Outcome != nil &&
		*c.Outcome == outcome {
		return c, nil, nil
	}

	if c.Status.Terminal() {
		return nil, nil, fault.New(fault.Conflict,
			"campaign %s is %s", c.ID, c.Status)
	}

	input, err := eth.PackResolve(outcome)
	if err != nil {
		return nil, nil, fault.Wrap(fault.Validation, err,
			"failed to pack resolve call")
	}

	to := common.HexToAddress(c.ContractAddress)

	result, err := s.SignAndSubmit(ctx, eth.TxRequest{To: &to, Data: input})
	if err != nil {
		return nil, result, err
	}

	c, err = s.campaigns.ResolveCampaign(ctx, id, outcome)
	if err != nil {
		return nil, result, err
	}

	return c, result, nil
}
