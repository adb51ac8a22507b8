package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/reform.v1"

	"github.com/admon/ledger-mirror/data"
)

const lastBlockKey = "lastBlock"

// Ledger is a postgres backed Store.
type Ledger struct {
	db *reform.DB
}

// NewLedger creates a new ledger store.
func NewLedger(db *reform.DB) *Ledger {
	return &Ledger{db: db}
}

// InTransaction runs fn in a database transaction. The transaction is
// rolled back when fn or the commit fails.
func (l *Ledger) InTransaction(ctx context.Context,
	fn func(tx Tx) error) error {
	return translate(l.db.InTransactionContext(ctx, nil,
		func(t *reform.TX) error {
			return fn(&queries{q: t.Querier})
		}))
}

// Reader returns queries running outside a transaction.
func (l *Ledger) Reader(ctx context.Context) Tx {
	return &queries{q: l.db.WithContext(ctx)}
}

// RecordSubmission stores a new oracle transaction.
func (l *Ledger) RecordSubmission(ctx context.Context,
	sub *data.Submission) error {
	return translate(l.db.WithContext(ctx).Insert(sub))
}

// SettleSubmission updates the final state of an oracle transaction.
func (l *Ledger) SettleSubmission(ctx context.Context, hash string,
	status data.SubmissionStatus, block *uint64) error {
	q := l.db.WithContext(ctx)

	sub := &data.Submission{}
	if err := q.FindOneTo(sub, "hash", hash); err != nil {
		return translate(err)
	}

	sub.Status = status
	sub.ReceiptBlock = block

	return translate(q.Update(sub))
}

// PendingSubmissions returns oracle transactions without a final state,
// oldest first.
func (l *Ledger) PendingSubmissions(
	ctx context.Context) ([]*data.Submission, error) {
	q := l.db.WithContext(ctx)

	items, err := q.SelectAllFrom(data.SubmissionTable,
		"WHERE status = "+q.Placeholder(1)+" ORDER BY nonce ASC",
		data.SubmissionPending)
	if err != nil {
		return nil, translate(err)
	}

	result := make([]*data.Submission, len(items))
	for k := range items {
		result[k] = items[k].(*data.Submission)
	}

	return result, nil
}

// LastBlock returns the last scanned block, zero if none.
func (l *Ledger) LastBlock(ctx context.Context) (uint64, error) {
	setting := &data.Setting{}

	err := l.db.WithContext(ctx).FindByPrimaryKeyTo(setting, lastBlockKey)
	if err != nil {
		if err != reform.ErrNoRows {
			return 0, err
		}
		return 0, nil
	}

	return strconv.ParseUint(setting.Value, 10, 64)
}

// SaveLastBlock stores the last scanned block.
func (l *Ledger) SaveLastBlock(ctx context.Context, block uint64) error {
	setting := &data.Setting{
		Key:   lastBlockKey,
		Value: strconv.FormatUint(block, 10),
	}

	return l.db.WithContext(ctx).Save(setting)
}

type queries struct {
	q *reform.Querier
}

func (q *queries) AccountByID(id string) (*data.Account, error) {
	acc := &data.Account{}
	if err := q.q.FindByPrimaryKeyTo(acc, id); err != nil {
		return nil, translate(err)
	}
	return acc, nil
}

func (q *queries) AccountByWallet(wallet string) (*data.Account, error) {
	acc := &data.Account{}
	if err := q.q.FindOneTo(acc, "wallet_address", wallet); err != nil {
		return nil, translate(err)
	}
	return acc, nil
}

func (q *queries) Accounts() ([]*data.Account, error) {
	items, err := q.q.SelectAllFrom(data.AccountTable,
		"ORDER BY created_at DESC")
	if err != nil {
		return nil, translate(err)
	}

	result := make([]*data.Account, len(items))
	for k := range items {
		result[k] = items[k].(*data.Account)
	}

	return result, nil
}

func (q *queries) InsertAccount(acc *data.Account) error {
	return translate(q.q.Insert(acc))
}

// EnsureAccount relies on ON CONFLICT so that a concurrent insert of the
// same wallet neither fails nor aborts the surrounding transaction.
func (q *queries) EnsureAccount(acc *data.Account) (*data.Account, error) {
	columns := data.AccountTable.Columns()
	for k := range columns {
		columns[k] = q.q.QuoteIdentifier(columns[k])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)"+
		" ON CONFLICT (%s) DO NOTHING",
		q.q.QuoteIdentifier(data.AccountTable.Name()),
		strings.Join(columns, ", "),
		strings.Join(q.q.Placeholders(1, len(columns)), ", "),
		q.q.QuoteIdentifier("wallet_address"))

	if _, err := q.q.Exec(query, acc.Values()...); err != nil {
		return nil, translate(err)
	}

	stored, err := q.AccountByWallet(acc.WalletAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read account %s",
			acc.WalletAddress)
	}

	return stored, nil
}

func (q *queries) CampaignByID(id string) (*data.Campaign, error) {
	c := &data.Campaign{}
	if err := q.q.FindByPrimaryKeyTo(c, id); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (q *queries) CampaignByContract(address string) (*data.Campaign, error) {
	c := &data.Campaign{}
	if err := q.q.FindOneTo(c, "contract_address", address); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (q *queries) LockCampaign(id string) (*data.Campaign, error) {
	c := &data.Campaign{}
	tail := fmt.Sprintf("WHERE %s = %s FOR UPDATE",
		q.q.QuoteIdentifier("id"), q.q.Placeholder(1))
	if err := q.q.SelectOneTo(c, tail, id); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (q *queries) Campaigns() ([]*data.Campaign, error) {
	items, err := q.q.SelectAllFrom(data.CampaignTable,
		"ORDER BY created_at DESC")
	if err != nil {
		return nil, translate(err)
	}

	result := make([]*data.Campaign, len(items))
	for k := range items {
		result[k] = items[k].(*data.Campaign)
	}

	return result, nil
}

func (q *queries) InsertCampaign(c *data.Campaign) error {
	return translate(q.q.Insert(c))
}

func (q *queries) UpdateCampaign(c *data.Campaign) error {
	return translate(q.q.Update(c))
}

func (q *queries) TicketByID(id string) (*data.Ticket, error) {
	t := &data.Ticket{}
	if err := q.q.FindByPrimaryKeyTo(t, id); err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (q *queries) TicketByNft(campaignID string,
	nftID int64) (*data.Ticket, error) {
	t := &data.Ticket{}
	tail := fmt.Sprintf("WHERE %s = %s AND %s = %s",
		q.q.QuoteIdentifier("campaign_id"), q.q.Placeholder(1),
		q.q.QuoteIdentifier("nft_id"), q.q.Placeholder(2))
	if err := q.q.SelectOneTo(t, tail, campaignID, nftID); err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (q *queries) LockTicket(id string) (*data.Ticket, error) {
	t := &data.Ticket{}
	tail := fmt.Sprintf("WHERE %s = %s FOR UPDATE",
		q.q.QuoteIdentifier("id"), q.q.Placeholder(1))
	if err := q.q.SelectOneTo(t, tail, id); err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (q *queries) CampaignTickets(campaignID string) ([]*data.Ticket, error) {
	tail := fmt.Sprintf("WHERE %s = %s ORDER BY %s DESC",
		q.q.QuoteIdentifier("campaign_id"), q.q.Placeholder(1),
		q.q.QuoteIdentifier("created_at"))

	items, err := q.q.SelectAllFrom(data.TicketTable, tail, campaignID)
	if err != nil {
		return nil, translate(err)
	}

	result := make([]*data.Ticket, len(items))
	for k := range items {
		result[k] = items[k].(*data.Ticket)
	}

	return result, nil
}

func (q *queries) InsertTicket(t *data.Ticket) error {
	return translate(q.q.Insert(t))
}

func (q *queries) UpdateTicket(t *data.Ticket) error {
	return translate(q.q.Update(t))
}
