package reconcile

import (
	"context"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/admon/ledger-mirror/data"
	"github.com/admon/ledger-mirror/db"
	"github.com/admon/ledger-mirror/fault"
	"github.com/admon/ledger-mirror/gen"
)

// CreateUser registers a wallet. Unlike the idempotent account upsert of
// the reports, registering a known wallet is a conflict.
func (s *Service) CreateUser(ctx context.Context, wallet string,
	email *string) (*data.Account, error) {
	wallet = NormalizeAddress(wallet)
	if wallet == "" {
		return nil, fault.New(fault.Validation, "wallet address is empty")
	}

	if email != nil {
		addr, err := mail.ParseAddress(strings.TrimSpace(*email))
		if err != nil {
			return nil, fault.Wrap(fault.Validation, err,
				"invalid email %q", *email)
		}
		email = &addr.Address
	}

	acc := &data.Account{
		ID:            s.newID(),
		WalletAddress: wallet,
		Email:         email,
		CreatedAt:     s.now().UTC(),
	}

	err := s.store.InTransaction(ctx, func(tx db.Tx) error {
		return tx.InsertAccount(acc)
	})
	if errors.Is(err, db.ErrUniqueViolation) {
		return nil, fault.Wrap(fault.Conflict, err,
			"wallet %s is already registered", wallet)
	}
	if err != nil {
		return nil, classify(err, "create user %s", wallet)
	}

	return acc, nil
}

// User returns an account by id.
func (s *Service) User(ctx context.Context, id string) (*data.Account, error) {
	if !gen.IsUUID(id) {
		return nil, fault.New(fault.NotFound, "user %s not found", id)
	}

	acc, err := s.store.Reader(ctx).AccountByID(id)
	if err != nil {
		return nil, classify(err, "user %s not found", id)
	}
	return acc, nil
}

// Users returns all accounts, newest first.
func (s *Service) Users(ctx context.Context) ([]*data.Account, error) {
	accounts, err := s.store.Reader(ctx).Accounts()
	if err != nil {
		return nil, classify(err, "list users")
	}
	return accounts, nil
}

// Campaign returns a campaign by id.
func (s *Service) Campaign(ctx context.Context,
	id string) (*data.Campaign, error) {
	if !gen.IsUUID(id) {
		return nil, fault.New(fault.NotFound, "campaign %s not found", id)
	}

	c, err := s.store.Reader(ctx).CampaignByID(id)
	if err != nil {
		return nil, classify(err, "campaign %s not found", id)
	}
	return c, nil
}

// CampaignByContract returns a campaign by its contract address.
func (s *Service) CampaignByContract(ctx context.Context,
	address string) (*data.Campaign, error) {
	address = NormalizeAddress(address)

	c, err := s.store.Reader(ctx).CampaignByContract(address)
	if err != nil {
		return nil, classify(err, "campaign %s not found", address)
	}
	return c, nil
}

// Campaigns returns all campaigns, newest first.
func (s *Service) Campaigns(ctx context.Context) ([]*data.Campaign, error) {
	campaigns, err := s.store.Reader(ctx).Campaigns()
	if err != nil {
		return nil, classify(err, "list campaigns")
	}
	return campaigns, nil
}

// Ticket returns a ticket by id.
func (s *Service) Ticket(ctx context.Context, id string) (*data.Ticket, error) {
	if !gen.IsUUID(id) {
		return nil, fault.New(fault.NotFound, "ticket %s not found", id)
	}

	t, err := s.store.Reader(ctx).TicketByID(id)
	if err != nil {
		return nil, classify(err, "ticket %s not found", id)
	}
	return t, nil
}

// TicketByToken returns the ticket minted as nftID by a campaign.
func (s *Service) TicketByToken(ctx context.Context, campaignID string,
	nftID int64) (*data.Ticket, error) {
	if !gen.IsUUID(campaignID) {
		return nil, fault.New(fault.NotFound,
			"ticket %d of campaign %s not found", nftID, campaignID)
	}

	t, err := s.store.Reader(ctx).TicketByNft(campaignID, nftID)
	if err != nil {
		return nil, classify(err, "ticket %d of campaign %s not found",
			nftID, campaignID)
	}
	return t, nil
}

// CampaignTickets returns tickets of a campaign, newest first.
func (s *Service) CampaignTickets(ctx context.Context,
	campaignID string) ([]*data.Ticket, error) {
	if !gen.IsUUID(campaignID) {
		return nil, nil
	}

	tickets, err := s.store.Reader(ctx).CampaignTickets(campaignID)
	if err != nil {
		return nil, classify(err, "list tickets of campaign %s", campaignID)
	}
	return tickets, nil
}
