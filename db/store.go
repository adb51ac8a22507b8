package db

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gopkg.in/reform.v1"

	"github.com/admon/ledger-mirror/data"
)

// Store errors.
var (
	ErrNotFound        = errors.New("record not found")
	ErrUniqueViolation = errors.New("unique constraint violated")
	// ErrInvalidValue is returned when a value does not fit its column.
	ErrInvalidValue = errors.New("invalid column value")
)

// Postgres error codes.
const (
	uniqueViolation     pq.ErrorCode = "23505"
	foreignKeyViolation pq.ErrorCode = "23503"
	checkViolation      pq.ErrorCode = "23514"

	dataException pq.ErrorClass = "22"
)

// ErrForeignKeyViolation is returned when a referenced row is missing.
var ErrForeignKeyViolation = errors.New("foreign key constraint violated")

// Tx is a unit of work over the mirror tables. Reads made through a Tx
// returned by InTransaction observe its own uncommitted writes.
type Tx interface {
	AccountByID(id string) (*data.Account, error)
	AccountByWallet(wallet string) (*data.Account, error)
	Accounts() ([]*data.Account, error)
	InsertAccount(acc *data.Account) error
	// EnsureAccount inserts acc unless its wallet is already known and
	// returns the stored row.
	EnsureAccount(acc *data.Account) (*data.Account, error)

	CampaignByID(id string) (*data.Campaign, error)
	CampaignByContract(address string) (*data.Campaign, error)
	// LockCampaign reads a campaign and locks it until the unit of work ends.
	LockCampaign(id string) (*data.Campaign, error)
	Campaigns() ([]*data.Campaign, error)
	InsertCampaign(c *data.Campaign) error
	UpdateCampaign(c *data.Campaign) error

	TicketByID(id string) (*data.Ticket, error)
	TicketByNft(campaignID string, nftID int64) (*data.Ticket, error)
	LockTicket(id string) (*data.Ticket, error)
	CampaignTickets(campaignID string) ([]*data.Ticket, error)
	InsertTicket(t *data.Ticket) error
	UpdateTicket(t *data.Ticket) error
}

// Store runs units of work against the mirror tables.
type Store interface {
	// InTransaction runs fn atomically. Any error returned by fn rolls
	// the whole unit back.
	InTransaction(ctx context.Context, fn func(tx Tx) error) error
	// Reader returns a Tx whose calls run outside any transaction.
	Reader(ctx context.Context) Tx
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	if err == reform.ErrNoRows {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return errors.Wrap(ErrUniqueViolation, pqErr.Constraint)
		case foreignKeyViolation:
			return errors.Wrap(ErrForeignKeyViolation, pqErr.Constraint)
		case checkViolation:
			return errors.Wrap(ErrInvalidValue, pqErr.Constraint)
		}

		if pqErr.Code.Class() == dataException {
			return errors.Wrap(ErrInvalidValue, pqErr.Message)
		}
	}

	return err
}
