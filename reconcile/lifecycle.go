package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/admon/ledger-mirror/data"
	"github.com/admon/ledger-mirror/db"
	"github.com/admon/ledger-mirror/fault"
	"github.com/admon/ledger-mirror/gen"
)

// ResolveCampaign moves an open campaign to resolved with the given
// outcome. Resolving again with the same outcome is a no-op.
func (s *Service) ResolveCampaign(ctx context.Context, id string,
	outcome bool) (*data.Campaign, error) {
	return s.settleCampaign(ctx, id, func(c *data.Campaign) (bool, error) {
		switch c.Status {
		case data.CampaignOpen:
			c.Status = data.CampaignResolved
			c.Outcome = &outcome
			return true, nil
		case data.CampaignResolved:
			if c.Outcome != nil && *c.Outcome == outcome {
				return false, nil
			}
			return false, fault.New(fault.Conflict,
				"campaign %s is already resolved with another outcome", c.ID)
		default:
			return false, fault.New(fault.Conflict,
				"campaign %s is %s", c.ID, c.Status)
		}
	})
}

// CancelCampaign moves an open campaign to canceled. Canceling again is
// a no-op.
func (s *Service) CancelCampaign(ctx context.Context,
	id string) (*data.Campaign, error) {
	return s.settleCampaign(ctx, id, func(c *data.Campaign) (bool, error) {
		switch c.Status {
		case data.CampaignOpen:
			c.Status = data.CampaignCanceled
			return true, nil
		case data.CampaignCanceled:
			return false, nil
		default:
			return false, fault.New(fault.Conflict,
				"campaign %s is %s", c.ID, c.Status)
		}
	})
}

func (s *Service) settleCampaign(ctx context.Context, id string,
	transition func(c *data.Campaign) (bool, error)) (*data.Campaign, error) {
	if !gen.IsUUID(id) {
		return nil, fault.New(fault.NotFound, "campaign %s not found", id)
	}

	var result *data.Campaign
	var changed bool

	err := s.store.InTransaction(ctx, func(tx db.Tx) error {
		c, err := tx.LockCampaign(id)
		if err == db.ErrNotFound {
			return fault.New(fault.NotFound, "campaign %s not found", id)
		}
		if err != nil {
			return err
		}

		changed, err = transition(c)
		if err != nil {
			return err
		}

		if changed {
			if err := tx.UpdateCampaign(c); err != nil {
				return err
			}
		}

		result = c
		return nil
	})
	if err != nil {
		return nil, classify(err, "settle campaign %s", id)
	}

	if changed {
		fields := []zap.Field{
			zap.String("id", result.ID),
			zap.String("status", string(result.Status)),
		}
		if result.Outcome != nil {
			fields = append(fields, zap.Bool("outcome", *result.Outcome))
		}
		s.log.Info("campaign settled", fields...)
	}

	return result, nil
}

// ClaimTicket marks a ticket claimed. Winning tickets of resolved
// campaigns and all tickets of canceled campaigns can be claimed, a
// claimed ticket stays claimed.
func (s *Service) ClaimTicket(ctx context.Context,
	id string) (*data.Ticket, error) {
	if !gen.IsUUID(id) {
		return nil, fault.New(fault.NotFound, "ticket %s not found", id)
	}

	var result *data.Ticket
	var changed bool

	err := s.store.InTransaction(ctx, func(tx db.Tx) error {
		t, err := tx.LockTicket(id)
		if err == db.ErrNotFound {
			return fault.New(fault.NotFound, "ticket %s not found", id)
		}
		if err != nil {
			return err
		}

		result = t
		if t.Claimed {
			return nil
		}

		c, err := tx.CampaignByID(t.CampaignID)
		if err == db.ErrNotFound {
			return fault.New(fault.Referential,
				"campaign %s does not exist", t.CampaignID)
		}
		if err != nil {
			return err
		}

		switch c.Status {
		case data.CampaignResolved:
			if c.Outcome == nil || *c.Outcome != t.Side {
				return fault.New(fault.Conflict,
					"ticket %s backs the losing side", t.ID)
			}
		case data.CampaignCanceled:
		default:
			return fault.New(fault.Conflict,
				"campaign %s is not settled", c.ID)
		}

		t.Claimed = true
		changed = true
		return tx.UpdateTicket(t)
	})
	if err != nil {
		return nil, classify(err, "claim ticket %s", id)
	}

	if changed {
		s.log.Info("ticket claimed", zap.String("id", result.ID),
			zap.String("campaign", result.CampaignID))
	}

	return result, nil
}

// ClaimTicketByToken claims the ticket minted as nftID by a campaign.
func (s *Service) ClaimTicketByToken(ctx context.Context, campaignID string,
	nftID int64) (*data.Ticket, error) {
	t, err := s.TicketByToken(ctx, campaignID, nftID)
	if err != nil {
		return nil, err
	}

	return s.ClaimTicket(ctx, t.ID)
}
