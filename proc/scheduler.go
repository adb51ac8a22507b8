package proc

import (
	"context"
	"math"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/admon/ledger-mirror/config"
	"github.com/admon/ledger-mirror/data"
	"github.com/admon/ledger-mirror/eth"
	"github.com/admon/ledger-mirror/fault"
	"github.com/admon/ledger-mirror/metrics"
	"github.com/admon/ledger-mirror/reconcile"
)

// Chain is a ledger node scanned for protocol events.
type Chain interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context,
		q ethereum.FilterQuery) ([]types.Log, error)
}

// Checkpoint stores the next block to scan.
type Checkpoint interface {
	LastBlock(ctx context.Context) (uint64, error)
	SaveLastBlock(ctx context.Context, block uint64) error
}

// Mirror applies protocol events to the ledger store.
type Mirror interface {
	ReportCampaignCreated(ctx context.Context,
		ev reconcile.CampaignCreated) (*data.Campaign, error)
	ReportTicketPurchased(ctx context.Context,
		ev reconcile.TicketPurchased) (*data.Ticket, error)
	CampaignByContract(ctx context.Context,
		address string) (*data.Campaign, error)
	ResolveCampaign(ctx context.Context, id string,
		outcome bool) (*data.Campaign, error)
	CancelCampaign(ctx context.Context, id string) (*data.Campaign, error)
	ClaimTicketByToken(ctx context.Context, campaignID string,
		nftID int64) (*data.Ticket, error)
}

// Rechecker settles pending oracle transactions.
type Rechecker interface {
	RecheckPending(ctx context.Context) error
}

var topics = []common.Hash{
	eth.CampaignCreatedTopic,
	eth.TicketPurchasedTopic,
	eth.ResolvedTopic,
	eth.CanceledTopic,
	eth.TicketClaimedTopic,
}

// Scheduler is a task scheduler.
type Scheduler struct {
	cfg        *config.Config
	factory    common.Address
	cancel     context.CancelFunc
	ctx        context.Context
	chain      Chain
	checkpoint Checkpoint
	mirror     Mirror
	oracle     Rechecker
	log        *zap.Logger
	metrics    *metrics.Metrics

	mtx          sync.RWMutex
	lastBlockNum uint64

	wg sync.WaitGroup
}

// NewScheduler creates a new task scheduler. oracle may be nil.
func NewScheduler(ctx context.Context, cfg *config.Config, chain Chain,
	checkpoint Checkpoint, mirror Mirror, oracle Rechecker,
	log *zap.Logger, m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)

	return &Scheduler{
		cfg:        cfg,
		factory:    common.HexToAddress(cfg.Eth.FactoryAddress),
		cancel:     cancel,
		ctx:        ctx,
		chain:      chain,
		checkpoint: checkpoint,
		mirror:     mirror,
		oracle:     oracle,
		log:        log.Named("scheduler"),
		metrics:    m,
	}
}

// Start starts a task scheduler.
func (s *Scheduler) Start() error {
	last, err := s.chain.BlockNumber(s.ctx)
	if err != nil {
		return err
	}

	s.setLastBlock(last)
	s.wg.Add(3)

	go s.updateLastBlock()
	go s.updateSubmissions()
	go s.collect()

	return nil
}

// Close stops the scheduler and waits for its tasks.
func (s *Scheduler) Close() {
	s.cancel()

	s.wg.Wait()
}

func pause(ms uint64) time.Duration {
	return time.Millisecond * time.Duration(ms)
}

func (s *Scheduler) setLastBlock(block uint64) {
	s.mtx.Lock()
	s.lastBlockNum = block
	s.mtx.Unlock()
}

func (s *Scheduler) lastBlock() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.lastBlockNum
}

// every runs fn on each tick until the scheduler is closed.
func (s *Scheduler) every(period time.Duration, fn func()) {
	defer s.wg.Done()

	tic := time.NewTicker(period)
	defer tic.Stop()

	for {
		select {
		case <-tic.C:
			fn()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) updateLastBlock() {
	s.every(pause(s.cfg.Proc.UpdateLastBlockPause), func() {
		block, err := s.chain.BlockNumber(s.ctx)
		if err != nil {
			s.log.Warn("failed to get last block", zap.Error(err))
			return
		}
		s.setLastBlock(block)
	})
}

func (s *Scheduler) updateSubmissions() {
	s.every(pause(s.cfg.Proc.UpdateSubmissionsPause), func() {
		if s.oracle == nil {
			return
		}
		if err := s.oracle.RecheckPending(s.ctx); err != nil {
			s.log.Warn("failed to recheck submissions", zap.Error(err))
		}
	})
}

func (s *Scheduler) collect() {
	s.every(pause(s.cfg.Proc.CollectPause), func() {
		if err := s.collectData(); err != nil && s.ctx.Err() == nil {
			s.log.Warn("failed to collect events", zap.Error(err))
		}
	})
}

// collectData scans blocks from the checkpoint up to the last known
// block. The checkpoint moves only past batches applied in full.
func (s *Scheduler) collectData() error {
	from, err := s.checkpoint.LastBlock(s.ctx)
	if err != nil {
		return err
	}

	if s.cfg.Eth.StartBlock > from {
		from = s.cfg.Eth.StartBlock
	}

	batch := s.cfg.Eth.ScanBatch
	if batch == 0 {
		batch = 1
	}

	head := s.lastBlock()

	for from <= head {
		if err := s.ctx.Err(); err != nil {
			return err
		}

		to := from + batch - 1
		if to > head {
			to = head
		}

		logs, err := s.chain.FilterLogs(s.ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(to),
			Topics:    [][]common.Hash{topics},
		})
		if err != nil {
			return err
		}

		for k := range logs {
			if logs[k].Removed {
				continue
			}
			if err := s.apply(logs[k]); err != nil {
				return err
			}
		}

		from = to + 1
		if err := s.checkpoint.SaveLastBlock(s.ctx, from); err != nil {
			return err
		}

		s.metrics.Scanned(to)
		s.log.Debug("blocks scanned", zap.Uint64("to", to),
			zap.Int("logs", len(logs)))
	}

	return nil
}

// apply mirrors a single log. Only failures worth a retry are returned,
// the others are logged and the log is skipped.
func (s *Scheduler) apply(l types.Log) error {
	if len(l.Topics) == 0 {
		return nil
	}

	log := s.log.With(zap.String("tx", l.TxHash.Hex()),
		zap.Uint("index", l.Index), zap.Uint64("block", l.BlockNumber))

	var err error
	switch l.Topics[0] {
	case eth.CampaignCreatedTopic:
		err = s.applyCampaignCreated(l)
	default:
		err = s.applyCampaignEvent(l)
	}

	switch {
	case err == nil:
		return nil
	case fault.KindOf(err).Retryable(), fault.Is(err, fault.Referential):
		return err
	default:
		log.Warn("event skipped", zap.Error(err))
		return nil
	}
}

func (s *Scheduler) applyCampaignCreated(l types.Log) error {
	if s.factory != (common.Address{}) && l.Address != s.factory {
		return nil
	}

	ev, err := eth.ParseCampaignCreated(l)
	if err != nil {
		return fault.Wrap(fault.Validation, err, "bad log")
	}

	if ev.EndTime > math.MaxInt64 {
		return fault.New(fault.Validation, "end time %d is too large",
			ev.EndTime)
	}

	created := reconcile.CampaignCreated{
		CreatorWallet:   ev.Creator.Hex(),
		ContractAddress: ev.Campaign.Hex(),
		Title:           ev.Title,
		Symbol:          ev.Symbol,
		EndTime:         time.Unix(int64(ev.EndTime), 0).UTC(),
		FeeBps:          int(ev.FeeBps),
		CreationStake:   decimal.NewFromBigInt(ev.CreationStake, 0),
	}
	if err := created.Validate(); err != nil {
		return err
	}

	_, err = s.mirror.ReportCampaignCreated(s.ctx, created)
	return err
}

func tokenID(id *big.Int) (int64, error) {
	if !id.IsInt64() {
		return 0, fault.New(fault.Validation, "token id %s is too large", id)
	}
	return id.Int64(), nil
}

func (s *Scheduler) applyCampaignEvent(l types.Log) error {
	c, err := s.mirror.CampaignByContract(s.ctx,
		strings.ToLower(l.Address.Hex()))
	if fault.Is(err, fault.NotFound) {
		// Not a campaign of this protocol.
		return nil
	}
	if err != nil {
		return err
	}

	switch l.Topics[0] {
	case eth.TicketPurchasedTopic:
		ev, err := eth.ParseTicketPurchased(l)
		if err != nil {
			return fault.Wrap(fault.Validation, err, "bad log")
		}

		nft, err := tokenID(ev.TokenID)
		if err != nil {
			return err
		}

		purchased := reconcile.TicketPurchased{
			CampaignID:  c.ID,
			BuyerWallet: ev.Buyer.Hex(),
			NftID:       nft,
			Side:        ev.Side,
			Stake:       decimal.NewFromBigInt(ev.Stake, 0),
		}
		if err := purchased.Validate(); err != nil {
			return err
		}

		_, err = s.mirror.ReportTicketPurchased(s.ctx, purchased)
		return err
	case eth.ResolvedTopic:
		ev, err := eth.ParseResolved(l)
		if err != nil {
			return fault.Wrap(fault.Validation, err, "bad log")
		}

		_, err = s.mirror.ResolveCampaign(s.ctx, c.ID, ev.Outcome)
		return err
	case eth.CanceledTopic:
		_, err := s.mirror.CancelCampaign(s.ctx, c.ID)
		return err
	case eth.TicketClaimedTopic:
		ev, err := eth.ParseTicketClaimed(l)
		if err != nil {
			return fault.Wrap(fault.Validation, err, "bad log")
		}

		nft, err := tokenID(ev.TokenID)
		if err != nil {
			return err
		}

		_, err = s.mirror.ClaimTicketByToken(s.ctx, c.ID, nft)
		return err
	}

	return nil
}
