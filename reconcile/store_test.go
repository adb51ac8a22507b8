package reconcile

import (
	"context"
	"sort"
	"sync"

	"github.com/admon/ledger-mirror/data"
	"github.com/admon/ledger-mirror/db"
)

type memTables struct {
	accounts  map[string]data.Account
	campaigns map[string]data.Campaign
	tickets   map[string]data.Ticket
}

func newMemTables() *memTables {
	return &memTables{
		accounts:  make(map[string]data.Account),
		campaigns: make(map[string]data.Campaign),
		tickets:   make(map[string]data.Ticket),
	}
}

func (t *memTables) clone() *memTables {
	c := newMemTables()
	for k, v := range t.accounts {
		c.accounts[k] = v
	}
	for k, v := range t.campaigns {
		c.campaigns[k] = v
	}
	for k, v := range t.tickets {
		c.tickets[k] = v
	}
	return c
}

func (t *memTables) merge(from *memTables) {
	for k, v := range from.accounts {
		t.accounts[k] = v
	}
	for k, v := range from.campaigns {
		t.campaigns[k] = v
	}
	for k, v := range from.tickets {
		t.tickets[k] = v
	}
}

// memStore is an in-memory db.Store. Transactions are serialized and
// work on a copy of the committed tables which is merged on success.
type memStore struct {
	txMu      sync.Mutex
	mu        sync.Mutex
	committed *memTables

	// Called inside a transaction right before the insert.
	beforeInsertCampaign func(c *data.Campaign)
	beforeInsertTicket   func(t *data.Ticket)

	failInsertCampaign error
	failInsertTicket   error
}

func newMemStore() *memStore {
	return &memStore{committed: newMemTables()}
}

func (s *memStore) InTransaction(ctx context.Context,
	fn func(tx db.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	work := s.committed.clone()
	s.mu.Unlock()

	if err := fn(&memTx{store: s, tables: work, inTx: true}); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed.merge(work)
	s.mu.Unlock()
	return nil
}

func (s *memStore) Reader(ctx context.Context) db.Tx {
	return &memTx{store: s}
}

// seed writes directly to the committed tables, as a concurrent
// transaction would.
func (s *memStore) seed(fn func(t *memTables)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.committed)
}

func (s *memStore) counts() (accounts, campaigns, tickets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed.accounts), len(s.committed.campaigns),
		len(s.committed.tickets)
}

type memTx struct {
	store  *memStore
	tables *memTables
	inTx   bool
}

// with runs fn over the tables visible to the unit of work and over the
// committed tables used for unique checks.
func (tx *memTx) with(fn func(t, committed *memTables) error) error {
	if tx.inTx {
		tx.store.mu.Lock()
		committed := tx.store.committed.clone()
		tx.store.mu.Unlock()
		return fn(tx.tables, committed)
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	return fn(tx.store.committed, tx.store.committed)
}

func copyCampaign(c data.Campaign) *data.Campaign {
	if c.Outcome != nil {
		o := *c.Outcome
		c.Outcome = &o
	}
	return &c
}

func findWallet(t *memTables, wallet string) (data.Account, bool) {
	for _, acc := range t.accounts {
		if acc.WalletAddress == wallet {
			return acc, true
		}
	}
	return data.Account{}, false
}

func findContract(t *memTables, address string) (data.Campaign, bool) {
	for _, c := range t.campaigns {
		if c.ContractAddress == address {
			return c, true
		}
	}
	return data.Campaign{}, false
}

func findNft(t *memTables, campaignID string, nftID int64) (data.Ticket, bool) {
	for _, ticket := range t.tickets {
		if ticket.CampaignID == campaignID && ticket.NftID == nftID {
			return ticket, true
		}
	}
	return data.Ticket{}, false
}

func (tx *memTx) AccountByID(id string) (*data.Account, error) {
	var result *data.Account
	err := tx.with(func(t, _ *memTables) error {
		acc, ok := t.accounts[id]
		if !ok {
			return db.ErrNotFound
		}
		result = &acc
		return nil
	})
	return result, err
}

func (tx *memTx) AccountByWallet(wallet string) (*data.Account, error) {
	var result *data.Account
	err := tx.with(func(t, _ *memTables) error {
		acc, ok := findWallet(t, wallet)
		if !ok {
			return db.ErrNotFound
		}
		result = &acc
		return nil
	})
	return result, err
}

func (tx *memTx) Accounts() ([]*data.Account, error) {
	var result []*data.Account
	err := tx.with(func(t, _ *memTables) error {
		for _, acc := range t.accounts {
			acc := acc
			result = append(result, &acc)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, err
}

func (tx *memTx) InsertAccount(acc *data.Account) error {
	return tx.with(func(t, committed *memTables) error {
		if _, ok := findWallet(t, acc.WalletAddress); ok {
			return db.ErrUniqueViolation
		}
		if _, ok := findWallet(committed, acc.WalletAddress); ok {
			return db.ErrUniqueViolation
		}
		t.accounts[acc.ID] = *acc
		return nil
	})
}

func (tx *memTx) EnsureAccount(acc *data.Account) (*data.Account, error) {
	var result *data.Account
	err := tx.with(func(t, committed *memTables) error {
		if existing, ok := findWallet(t, acc.WalletAddress); ok {
			result = &existing
			return nil
		}
		if existing, ok := findWallet(committed, acc.WalletAddress); ok {
			t.accounts[existing.ID] = existing
			result = &existing
			return nil
		}
		t.accounts[acc.ID] = *acc
		stored := *acc
		result = &stored
		return nil
	})
	return result, err
}

func (tx *memTx) CampaignByID(id string) (*data.Campaign, error) {
	var result *data.Campaign
	err := tx.with(func(t, _ *memTables) error {
		c, ok := t.campaigns[id]
		if !ok {
			return db.ErrNotFound
		}
		result = copyCampaign(c)
		return nil
	})
	return result, err
}

func (tx *memTx) CampaignByContract(address string) (*data.Campaign, error) {
	var result *data.Campaign
	err := tx.with(func(t, _ *memTables) error {
		c, ok := findContract(t, address)
		if !ok {
			return db.ErrNotFound
		}
		result = copyCampaign(c)
		return nil
	})
	return result, err
}

func (tx *memTx) LockCampaign(id string) (*data.Campaign, error) {
	return tx.CampaignByID(id)
}

func (tx *memTx) Campaigns() ([]*data.Campaign, error) {
	var result []*data.Campaign
	err := tx.with(func(t, _ *memTables) error {
		for _, c := range t.campaigns {
			result = append(result, copyCampaign(c))
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, err
}

func (tx *memTx) InsertCampaign(c *data.Campaign) error {
	if tx.store.beforeInsertCampaign != nil {
		tx.store.beforeInsertCampaign(c)
	}

	if tx.store.failInsertCampaign != nil {
		return tx.store.failInsertCampaign
	}

	return tx.with(func(t, committed *memTables) error {
		if _, ok := findWallet(t, c.CreatorWallet); !ok {
			return db.ErrForeignKeyViolation
		}
		if _, ok := findContract(t, c.ContractAddress); ok {
			return db.ErrUniqueViolation
		}
		if _, ok := findContract(committed, c.ContractAddress); ok {
			return db.ErrUniqueViolation
		}
		t.campaigns[c.ID] = *copyCampaign(*c)
		return nil
	})
}

func (tx *memTx) UpdateCampaign(c *data.Campaign) error {
	return tx.with(func(t, _ *memTables) error {
		if _, ok := t.campaigns[c.ID]; !ok {
			return db.ErrNotFound
		}
		t.campaigns[c.ID] = *copyCampaign(*c)
		return nil
	})
}

func (tx *memTx) TicketByID(id string) (*data.Ticket, error) {
	var result *data.Ticket
	err := tx.with(func(t, _ *memTables) error {
		ticket, ok := t.tickets[id]
		if !ok {
			return db.ErrNotFound
		}
		result = &ticket
		return nil
	})
	return result, err
}

func (tx *memTx) TicketByNft(campaignID string,
	nftID int64) (*data.Ticket, error) {
	var result *data.Ticket
	err := tx.with(func(t, _ *memTables) error {
		ticket, ok := findNft(t, campaignID, nftID)
		if !ok {
			return db.ErrNotFound
		}
		result = &ticket
		return nil
	})
	return result, err
}

func (tx *memTx) LockTicket(id string) (*data.Ticket, error) {
	return tx.TicketByID(id)
}

func (tx *memTx) CampaignTickets(campaignID string) ([]*data.Ticket, error) {
	var result []*data.Ticket
	err := tx.with(func(t, _ *memTables) error {
		for _, ticket := range t.tickets {
			if ticket.CampaignID == campaignID {
				ticket := ticket
				result = append(result, &ticket)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].NftID > result[j].NftID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, err
}

func (tx *memTx) InsertTicket(ticket *data.Ticket) error {
	if tx.store.beforeInsertTicket != nil {
		tx.store.beforeInsertTicket(ticket)
	}

	if tx.store.failInsertTicket != nil {
		return tx.store.failInsertTicket
	}

	return tx.with(func(t, committed *memTables) error {
		if _, ok := t.campaigns[ticket.CampaignID]; !ok {
			return db.ErrForeignKeyViolation
		}
		if _, ok := t.accounts[ticket.UserID]; !ok {
			return db.ErrForeignKeyViolation
		}
		if _, ok := findNft(t, ticket.CampaignID, ticket.NftID); ok {
			return db.ErrUniqueViolation
		}
		if _, ok := findNft(committed, ticket.CampaignID,
			ticket.NftID); ok {
			return db.ErrUniqueViolation
		}
		t.tickets[ticket.ID] = *ticket
		return nil
	})
}

func (tx *memTx) UpdateTicket(ticket *data.Ticket) error {
	return tx.with(func(t, _ *memTables) error {
		if _, ok := t.tickets[ticket.ID]; !ok {
			return db.ErrNotFound
		}
		t.tickets[ticket.ID] = *ticket
		return nil
	})
}
