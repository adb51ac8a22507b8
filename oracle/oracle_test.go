package oracle

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/admon/ledger-mirror/data"
	"github.com/admon/ledger-mirror/db"
	"github.com/admon/ledger-mirror/eth"
	"github.com/admon/ledger-mirror/fault"
	"github.com/admon/ledger-mirror/gen"
)

var errNetwork = errors.New("connection refused")

// fakeChain is a node accepting transactions with consecutive nonces.
type fakeChain struct {
	mu         sync.Mutex
	pending    uint64
	nonceCalls int
	submitted  []*types.Transaction
	receipts   map[common.Hash]*types.Receipt

	// Number of next submissions failing.
	failSubmits int
	// Failing submissions still reach the pool.
	acceptFailed bool
	revert       bool
	mine         bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		receipts: make(map[common.Hash]*types.Receipt),
		mine:     true,
	}
}

func (c *fakeChain) PendingNonceAt(ctx context.Context,
	account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nonceCalls++
	return c.pending, nil
}

func (c *fakeChain) BuildTransaction(ctx context.Context,
	from common.Address, nonce uint64,
	req eth.TxRequest) (*types.Transaction, error) {
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       req.To,
		Value:    big.NewInt(0),
		Gas:      req.GasLimit,
		GasPrice: big.NewInt(1),
		Data:     req.Data,
	}), nil
}

func (c *fakeChain) accept(tx *types.Transaction) error {
	if tx.Nonce() != c.pending {
		return errors.New("invalid nonce")
	}

	c.pending++
	c.submitted = append(c.submitted, tx)

	if c.mine {
		c.minedLocked(tx.Hash())
	}
	return nil
}

func (c *fakeChain) minedLocked(hash common.Hash) {
	status := types.ReceiptStatusSuccessful
	if c.revert {
		status = types.ReceiptStatusFailed
	}

	c.receipts[hash] = &types.Receipt{
		TxHash:      hash,
		Status:      status,
		BlockNumber: big.NewInt(int64(len(c.submitted))),
	}
}

func (c *fakeChain) mineAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tx := range c.submitted {
		if _, ok := c.receipts[tx.Hash()]; !ok {
			c.minedLocked(tx.Hash())
		}
	}
}

func (c *fakeChain) Submit(ctx context.Context,
	tx *types.Transaction) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failSubmits > 0 {
		c.failSubmits--
		if c.acceptFailed {
			_ = c.accept(tx)
		}
		return common.Hash{}, errNetwork
	}

	if err := c.accept(tx); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func (c *fakeChain) AwaitReceipt(ctx context.Context, hash common.Hash,
	timeout, poll time.Duration) (*types.Receipt, error) {
	c.mu.Lock()
	receipt := c.receipts[hash]
	c.mu.Unlock()

	if receipt == nil {
		select {
		case <-ctx.Done():
		case <-time.After(timeout):
		}
		return nil, eth.ErrReceiptTimeout
	}
	return receipt, nil
}

func (c *fakeChain) TransactionByHash(ctx context.Context,
	hash common.Hash) (*types.Transaction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tx := range c.submitted {
		if tx.Hash() == hash {
			_, mined := c.receipts[hash]
			return tx, !mined, nil
		}
	}
	return nil, false, ethereum.NotFound
}

func (c *fakeChain) TransactionReceipt(ctx context.Context,
	hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receipts[hash], nil
}

func (c *fakeChain) nonces() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var result []uint64
	for _, tx := range c.submitted {
		result = append(result, tx.Nonce())
	}
	return result
}

// fakeJournal keeps submissions in memory.
type fakeJournal struct {
	mu   sync.Mutex
	subs map[string]*data.Submission
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{subs: make(map[string]*data.Submission)}
}

func (j *fakeJournal) RecordSubmission(ctx context.Context,
	sub *data.Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := *sub
	j.subs[sub.Hash] = &s
	return nil
}

func (j *fakeJournal) SettleSubmission(ctx context.Context, hash string,
	status data.SubmissionStatus, block *uint64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	sub, ok := j.subs[hash]
	if !ok {
		return db.ErrNotFound
	}
	sub.Status = status
	sub.ReceiptBlock = block
	return nil
}

func (j *fakeJournal) PendingSubmissions(
	ctx context.Context) ([]*data.Submission, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var result []*data.Submission
	for _, sub := range j.subs {
		if sub.Status == data.SubmissionPending {
			s := *sub
			result = append(result, &s)
		}
	}
	sort.Slice(result, func(i, k int) bool {
		return result[i].Nonce < result[k].Nonce
	})
	return result, nil
}

func (j *fakeJournal) status(hash common.Hash) data.SubmissionStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	sub, ok := j.subs[hexLower(hash)]
	if !ok {
		return ""
	}
	return sub.Status
}

func hexLower(hash common.Hash) string {
	return "0x" + hex.EncodeToString(hash.Bytes())
}

func newTestSigner(t *testing.T) *Signer {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	signer, err := NewSigner(hex.EncodeToString(crypto.FromECDSA(key)),
		eth.SimulatedChainID)
	if err != nil {
		t.Fatal(err)
	}
	return signer
}

func newTestService(t *testing.T, chain Chain,
	journal Journal) *Service {
	return NewService(newTestSigner(t), chain, journal, nil, gen.NewUUID,
		Options{
			ConfirmTimeout: 50 * time.Millisecond,
			ReceiptPoll:    5 * time.Millisecond,
			GasLimit:       100000,
		}, zap.NewNop(), nil)
}

var target = common.HexToAddress("0xa7dba6053a0d631177340e8061bc12f5009ba453")

func TestSignAndSubmitConcurrentNonces(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	const calls = 8

	chain := newFakeChain()
	journal := newFakeJournal()
	s := newTestService(t, chain, journal)

	var wg sync.WaitGroup
	errs := make([]error, calls)

	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.SignAndSubmit(context.Background(),
				eth.TxRequest{To: &target})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	nonces := chain.nonces()
	if len(nonces) != calls {
		t.Fatalf("expected %d transactions, got %d", calls, len(nonces))
	}

	for i, nonce := range nonces {
		if nonce != uint64(i) {
			t.Fatalf("expected nonce %d, got %d", i, nonce)
		}
	}

	if chain.nonceCalls != 1 {
		t.Fatalf("expected one nonce fetch, got %d", chain.nonceCalls)
	}

	for _, tx := range chain.submitted {
		if journal.status(tx.Hash()) != data.SubmissionSuccessful {
			t.Fatal("confirmed transaction is not settled")
		}
	}
}

func TestSignAndSubmitSignsForOracle(t *testing.T) {
	chain := newFakeChain()
	s := newTestService(t, chain, nil)

	if _, err := s.SignAndSubmit(context.Background(),
		eth.TxRequest{To: &target}); err != nil {
		t.Fatal(err)
	}

	tx := chain.submitted[0]
	sender, err := types.Sender(types.LatestSignerForChainID(
		eth.SimulatedChainID), tx)
	if err != nil {
		t.Fatal(err)
	}

	if sender != s.Address() {
		t.Fatalf("expected sender %s, got %s", s.Address(), sender)
	}

	if tx.Gas() != 100000 {
		t.Fatalf("default gas limit is not applied: %d", tx.Gas())
	}
}

func TestNonceResyncAfterRejectedSubmission(t *testing.T) {
	chain := newFakeChain()
	chain.failSubmits = 1
	s := newTestService(t, chain, nil)

	_, err := s.SignAndSubmit(context.Background(), eth.TxRequest{To: &target})
	if !fault.Is(err, fault.Submission) {
		t.Fatalf("expected submission failure, got %v", err)
	}

	if _, err := s.SignAndSubmit(context.Background(),
		eth.TxRequest{To: &target}); err != nil {
		t.Fatal(err)
	}

	nonces := chain.nonces()
	if len(nonces) != 1 || nonces[0] != 0 {
		t.Fatalf("rejected nonce must be reused, got %v", nonces)
	}

	if chain.nonceCalls != 2 {
		t.Fatalf("expected a nonce re-fetch, got %d fetches",
			chain.nonceCalls)
	}
}

func TestNonceResyncAfterAmbiguousSubmission(t *testing.T) {
	chain := newFakeChain()
	chain.failSubmits = 1
	chain.acceptFailed = true
	s := newTestService(t, chain, nil)

	_, err := s.SignAndSubmit(context.Background(), eth.TxRequest{To: &target})
	if !fault.Is(err, fault.Submission) {
		t.Fatalf("expected submission failure, got %v", err)
	}

	if !fault.KindOf(err).Retryable() {
		t.Fatal("submission failure must be retryable")
	}

	if _, err := s.SignAndSubmit(context.Background(),
		eth.TxRequest{To: &target}); err != nil {
		t.Fatal(err)
	}

	nonces := chain.nonces()
	if len(nonces) != 2 || nonces[0] != 0 || nonces[1] != 1 {
		t.Fatalf("expected nonces [0 1], got %v", nonces)
	}
}

func TestExecutionReverted(t *testing.T) {
	chain := newFakeChain()
	chain.revert = true
	journal := newFakeJournal()
	s := newTestService(t, chain, journal)

	result, err := s.SignAndSubmit(context.Background(),
		eth.TxRequest{To: &target})
	if !fault.Is(err, fault.ExecutionReverted) {
		t.Fatalf("expected reverted failure, got %v", err)
	}

	if fault.KindOf(err).Retryable() {
		t.Fatal("reverted transaction must not be retryable")
	}

	if result == nil || result.Receipt == nil ||
		result.Receipt.Status != types.ReceiptStatusFailed {
		t.Fatal("reverted receipt must be returned")
	}

	if journal.status(result.Hash) != data.SubmissionFailed {
		t.Fatal("reverted transaction is not settled as failed")
	}
}

func TestConfirmationTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	chain := newFakeChain()
	chain.mine = false
	journal := newFakeJournal()
	s := newTestService(t, chain, journal)

	result, err := s.SignAndSubmit(ctx, eth.TxRequest{To: &target})
	if !fault.Is(err, fault.ConfirmationTimeout) {
		t.Fatalf("expected confirmation timeout, got %v", err)
	}

	if result == nil || result.Receipt != nil {
		t.Fatal("timed out submission must carry its hash only")
	}

	st, err := s.TransactionStatus(ctx, result.Hash.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if st.Status != data.SubmissionPending {
		t.Fatalf("expected pending, got %s", st.Status)
	}

	// The pool still holds the first nonce.
	if _, err := s.SignAndSubmit(ctx, eth.TxRequest{To: &target}); err == nil {
		t.Fatal("expected the second transaction to time out too")
	}

	nonces := chain.nonces()
	if len(nonces) != 2 || nonces[1] != 1 {
		t.Fatalf("expected nonces [0 1], got %v", nonces)
	}

	chain.mineAll()

	if err := s.RecheckPending(ctx); err != nil {
		t.Fatal(err)
	}

	if journal.status(result.Hash) != data.SubmissionSuccessful {
		t.Fatal("mined transaction is not settled")
	}

	pending, err := journal.PendingSubmissions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending submissions, got %d", len(pending))
	}
}

func TestConfirmationAbandoned(t *testing.T) {
	chain := newFakeChain()
	chain.mine = false
	s := newTestService(t, chain, nil)
	s.opts.ConfirmTimeout = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.SignAndSubmit(ctx, eth.TxRequest{To: &target})
	if !fault.Is(err, fault.ConfirmationTimeout) {
		t.Fatalf("abandoned wait must not be a failure, got %v", err)
	}

	if result == nil || (result.Hash == common.Hash{}) {
		t.Fatal("abandoned wait must carry the hash")
	}
}

func TestRecheckPendingDropped(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	journal := newFakeJournal()
	s := newTestService(t, chain, journal)

	lost := common.HexToHash("0x01")
	if err := journal.RecordSubmission(ctx, &data.Submission{
		ID:     gen.NewUUID(),
		Hash:   hexLower(lost),
		Status: data.SubmissionPending,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SignAndSubmit(ctx, eth.TxRequest{To: &target}); err != nil {
		t.Fatal(err)
	}

	if err := s.RecheckPending(ctx); err != nil {
		t.Fatal(err)
	}

	if journal.status(lost) != data.SubmissionDropped {
		t.Fatal("unknown transaction must be dropped")
	}

	if _, err := s.SignAndSubmit(ctx, eth.TxRequest{To: &target}); err != nil {
		t.Fatal(err)
	}

	if chain.nonceCalls != 2 {
		t.Fatalf("dropped transaction must force a nonce re-fetch, got %d",
			chain.nonceCalls)
	}
}

func TestTransactionStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, newFakeChain(), nil)

	st, err := s.TransactionStatus(ctx,
		"0x64e604787cbf194841e7b68d7cd28786f6c9a0a3ab9f8b0a0e87cb4387ab0107")
	if err != nil {
		t.Fatal(err)
	}
	if st.Status != data.SubmissionDropped {
		t.Fatalf("expected dropped, got %s", st.Status)
	}

	for _, bad := range []string{"", "0x01", "hash"} {
		if _, err := s.TransactionStatus(ctx,
			bad); !fault.Is(err, fault.Validation) {
			t.Fatalf("%q: expected validation failure, got %v", bad, err)
		}
	}
}

func TestNewSigner(t *testing.T) {
	if _, err := NewSigner("not a key", big.NewInt(1)); err == nil {
		t.Fatal("invalid key must be rejected")
	}

	key, _ := crypto.GenerateKey()
	encoded := "0x" + hex.EncodeToString(crypto.FromECDSA(key))

	if _, err := NewSigner(encoded, nil); err == nil {
		t.Fatal("missing chain id must be rejected")
	}

	signer, err := NewSigner(encoded, big.NewInt(1))
	if err != nil {
		t.Fatal(err)
	}

	if signer.Address() != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatal("wrong oracle address")
	}
}

type fakeCampaigns struct {
	campaign *data.Campaign
	resolved int
}

func (f *fakeCampaigns) Campaign(ctx context.Context,
	id string) (*data.Campaign, error) {
	if f.campaign == nil || f.campaign.ID != id {
		return nil, fault.New(fault.NotFound, "campaign %s not found", id)
	}
	c := *f.campaign
	return &c, nil
}

func (f *fakeCampaigns) ResolveCampaign(ctx context.Context, id string,
	outcome bool) (*data.Campaign, error) {
	f.resolved++
	f.campaign.Status = data.CampaignResolved
	f.campaign.Outcome = &outcome
	return f.Campaign(ctx, id)
}

func TestResolveCampaignOnChain(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	campaigns := &fakeCampaigns{campaign: &data.Campaign{
		ID:              gen.NewUUID(),
		ContractAddress: "0xa7dba6053a0d631177340e8061bc12f5009ba453",
		Status:          data.CampaignOpen,
	}}

	s := newTestService(t, chain, nil)
	s.campaigns = campaigns

	c, result, err := s.ResolveCampaignOnChain(ctx, campaigns.campaign.ID,
		true)
	if err != nil {
		t.Fatal(err)
	}

	if c.Status != data.CampaignResolved || result == nil {
		t.Fatal("campaign is not resolved")
	}

	tx := chain.submitted[0]
	if *tx.To() != target {
		t.Fatalf("resolution sent to %s", tx.To())
	}

	input, _ := eth.PackResolve(true)
	if hex.EncodeToString(tx.Data()) != hex.EncodeToString(input) {
		t.Fatal("wrong call data")
	}

	// Already resolved the same way.
	if _, result, err := s.ResolveCampaignOnChain(ctx,
		campaigns.campaign.ID, true); err != nil || result != nil {
		t.Fatal("repeated resolution must not submit")
	}

	_, _, err = s.ResolveCampaignOnChain(ctx, campaigns.campaign.ID, false)
	if !fault.Is(err, fault.Conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if campaigns.resolved != 1 || len(chain.submitted) != 1 {
		t.Fatal("unexpected extra resolution")
	}

	_, _, err = s.ResolveCampaignOnChain(ctx, gen.NewUUID(), true)
	if !fault.Is(err, fault.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
