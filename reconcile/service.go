package reconcile

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/admon/ledger-mirror/data"
	"github.com/admon/ledger-mirror/db"
	"github.com/admon/ledger-mirror/fault"
	"github.com/admon/ledger-mirror/gen"
	"github.com/admon/ledger-mirror/metrics"
)

// Service mirrors on-chain protocol events into the ledger store.
// Every report is idempotent: repeating it, concurrently or not, leaves
// exactly one row per on-chain entity.
type Service struct {
	store   db.Store
	newID   func() string
	now     func() time.Time
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewService creates a new reconciliation service.
func NewService(store db.Store, newID func() string,
	log *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		newID:   newID,
		now:     time.Now,
		log:     log.Named("reconcile"),
		metrics: m,
	}
}

// ReportCampaignCreated mirrors a campaign deployment and returns the
// canonical campaign for the contract address.
func (s *Service) ReportCampaignCreated(ctx context.Context,
	ev CampaignCreated) (*data.Campaign, error) {
	ev.normalize()
	if err := ev.validate(); err != nil {
		s.metrics.Report(eventCampaignCreated, metrics.OutcomeRejected)
		return nil, err
	}

	var result *data.Campaign
	var created bool

	err := s.store.InTransaction(ctx, func(tx db.Tx) error {
		existing, err := tx.CampaignByContract(ev.ContractAddress)
		if err == nil {
			result = existing
			return nil
		}
		if err != db.ErrNotFound {
			return err
		}

		creator, err := s.ensureAccount(tx, ev.CreatorWallet)
		if err != nil {
			return err
		}

		campaign := &data.Campaign{
			ID:              s.newID(),
			CreatorWallet:   creator.WalletAddress,
			ContractAddress: ev.ContractAddress,
			Title:           ev.Title,
			Symbol:          ev.Symbol,
			EndTime:         ev.EndTime.UTC(),
			FeeBps:          ev.FeeBps,
			CreationStake:   ev.CreationStake,
			Status:          data.CampaignOpen,
			CreatedAt:       s.now().UTC(),
		}

		if err := tx.InsertCampaign(campaign); err != nil {
			return err
		}

		result = campaign
		created = true
		return nil
	})

	if errors.Is(err, db.ErrUniqueViolation) {
		// Another report of the same deployment committed first.
		existing, ferr := s.store.Reader(ctx).
			CampaignByContract(ev.ContractAddress)
		if ferr == db.ErrNotFound {
			s.metrics.Report(eventCampaignCreated, metrics.OutcomeFailed)
			return nil, fault.Wrap(fault.Conflict, err,
				"campaign %s", ev.ContractAddress)
		}
		if ferr != nil {
			s.metrics.Report(eventCampaignCreated, metrics.OutcomeFailed)
			return nil, classify(ferr, "read campaign %s",
				ev.ContractAddress)
		}

		s.metrics.Report(eventCampaignCreated, metrics.OutcomeRace)
		s.log.Debug("campaign already mirrored by a concurrent report",
			zap.String("contract", ev.ContractAddress),
			zap.String("id", existing.ID))
		return existing, nil
	}

	if err != nil {
		s.metrics.Report(eventCampaignCreated, metrics.OutcomeFailed)
		return nil, classify(err, "mirror campaign %s", ev.ContractAddress)
	}

	if created {
		s.metrics.Report(eventCampaignCreated, metrics.OutcomeCreated)
		s.log.Info("campaign mirrored",
			zap.String("contract", result.ContractAddress),
			zap.String("id", result.ID),
			zap.String("creator", result.CreatorWallet))
	} else {
		s.metrics.Report(eventCampaignCreated, metrics.OutcomeDuplicate)
		s.log.Debug("campaign already mirrored",
			zap.String("contract", result.ContractAddress),
			zap.String("id", result.ID))
	}

	return result, nil
}

// ReportTicketPurchased mirrors a stake placement. A ticket is identified
// on chain by its campaign and nft token id, repeated reports return the
// ticket stored first.
func (s *Service) ReportTicketPurchased(ctx context.Context,
	ev TicketPurchased) (*data.Ticket, error) {
	ev.normalize()
	if err := ev.validate(); err != nil {
		s.metrics.Report(eventTicketPurchased, metrics.OutcomeRejected)
		return nil, err
	}

	if !gen.IsUUID(ev.CampaignID) {
		s.metrics.Report(eventTicketPurchased, metrics.OutcomeRejected)
		return nil, fault.New(fault.Referential,
			"campaign %s does not exist", ev.CampaignID)
	}

	var result *data.Ticket
	var created bool

	err := s.store.InTransaction(ctx, func(tx db.Tx) error {
		campaign, err := tx.CampaignByID(ev.CampaignID)
		if err == db.ErrNotFound {
			return fault.New(fault.Referential,
				"campaign %s does not exist", ev.CampaignID)
		}
		if err != nil {
			return err
		}

		existing, err := tx.TicketByNft(campaign.ID, ev.NftID)
		if err == nil {
			result = existing
			return nil
		}
		if err != db.ErrNotFound {
			return err
		}

		buyer, err := s.ensureAccount(tx, ev.BuyerWallet)
		if err != nil {
			return err
		}

		if campaign.Status.Terminal() {
			s.log.Warn("ticket reported for a settled campaign",
				zap.String("campaign", campaign.ID),
				zap.String("status", string(campaign.Status)),
				zap.Int64("nft", ev.NftID))
		}

		ticket := &data.Ticket{
			ID:         s.newID(),
			CampaignID: campaign.ID,
			UserID:     buyer.ID,
			NftID:      ev.NftID,
			Side:       ev.Side,
			Stake:      ev.Stake,
			CreatedAt:  s.now().UTC(),
		}

		if err := tx.InsertTicket(ticket); err != nil {
			return err
		}

		result = ticket
		created = true
		return nil
	})

	if errors.Is(err, db.ErrUniqueViolation) {
		existing, ferr := s.store.Reader(ctx).
			TicketByNft(ev.CampaignID, ev.NftID)
		if ferr == db.ErrNotFound {
			s.metrics.Report(eventTicketPurchased, metrics.OutcomeFailed)
			return nil, fault.Wrap(fault.Conflict, err,
				"ticket %d of campaign %s", ev.NftID, ev.CampaignID)
		}
		if ferr != nil {
			s.metrics.Report(eventTicketPurchased, metrics.OutcomeFailed)
			return nil, classify(ferr, "read ticket %d of campaign %s",
				ev.NftID, ev.CampaignID)
		}

		s.metrics.Report(eventTicketPurchased, metrics.OutcomeRace)
		return existing, nil
	}

	if err != nil {
		if fault.Is(err, fault.Referential) {
			s.metrics.Report(eventTicketPurchased, metrics.OutcomeRejected)
		} else {
			s.metrics.Report(eventTicketPurchased, metrics.OutcomeFailed)
		}
		return nil, classify(err, "mirror ticket %d of campaign %s",
			ev.NftID, ev.CampaignID)
	}

	if created {
		s.metrics.Report(eventTicketPurchased, metrics.OutcomeCreated)
		s.log.Info("ticket mirrored",
			zap.String("campaign", result.CampaignID),
			zap.String("id", result.ID),
			zap.Int64("nft", result.NftID))
	} else {
		s.metrics.Report(eventTicketPurchased, metrics.OutcomeDuplicate)
	}

	return result, nil
}

func (s *Service) ensureAccount(tx db.Tx,
	wallet string) (*data.Account, error) {
	acc, err := tx.EnsureAccount(&data.Account{
		ID:            s.newID(),
		WalletAddress: wallet,
		CreatedAt:     s.now().UTC(),
	})
	if errors.Is(err, db.ErrNotFound) {
		return nil, fault.Wrap(fault.Referential, err,
			"wallet %s could not be resolved", wallet)
	}
	return acc, err
}

// classify maps store errors to failure kinds. Already classified errors
// are returned unchanged.
func classify(err error, format string, args ...interface{}) error {
	if err == nil || fault.KindOf(err) != fault.Unknown {
		return err
	}

	switch {
	case errors.Is(err, db.ErrForeignKeyViolation):
		return fault.Wrap(fault.Referential, err, format, args...)
	case errors.Is(err, db.ErrUniqueViolation):
		return fault.Wrap(fault.Conflict, err, format, args...)
	case errors.Is(err, db.ErrNotFound):
		return fault.Wrap(fault.NotFound, err, format, args...)
	case errors.Is(err, db.ErrInvalidValue):
		return fault.Wrap(fault.Validation, err, format, args...)
	default:
		return fault.Wrap(fault.Storage, err, format, args...)
	}
}
