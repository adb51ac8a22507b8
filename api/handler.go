package api

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/admon/ledger-mirror/data"
	"github.com/admon/ledger-mirror/eth"
	"github.com/admon/ledger-mirror/fault"
	"github.com/admon/ledger-mirror/oracle"
	"github.com/admon/ledger-mirror/reconcile"
)

// Mirror is the ledger mirror served by the API.
type Mirror interface {
	ReportCampaignCreated(ctx context.Context,
		ev reconcile.CampaignCreated) (*data.Campaign, error)
	ReportTicketPurchased(ctx context.Context,
		ev reconcile.TicketPurchased) (*data.Ticket, error)
	CreateUser(ctx context.Context, wallet string,
		email *string) (*data.Account, error)
	User(ctx context.Context, id string) (*data.Account, error)
	Users(ctx context.Context) ([]*data.Account, error)
	Campaign(ctx context.Context, id string) (*data.Campaign, error)
	Campaigns(ctx context.Context) ([]*data.Campaign, error)
	ResolveCampaign(ctx context.Context, id string,
		outcome bool) (*data.Campaign, error)
	CancelCampaign(ctx context.Context, id string) (*data.Campaign, error)
	Ticket(ctx context.Context, id string) (*data.Ticket, error)
	CampaignTickets(ctx context.Context,
		campaignID string) ([]*data.Ticket, error)
	ClaimTicket(ctx context.Context, id string) (*data.Ticket, error)
}

// Oracle is the signing service served by the API.
type Oracle interface {
	SignAndSubmit(ctx context.Context,
		req eth.TxRequest) (*oracle.Result, error)
	TransactionStatus(ctx context.Context,
		hash string) (*oracle.Status, error)
	ResolveCampaignOnChain(ctx context.Context, id string,
		outcome bool) (*data.Campaign, *oracle.Result, error)
}

// Handler is an API RPC handler.
type Handler struct {
	mirror Mirror
	oracle Oracle
	log    *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(mirror Mirror, oracle Oracle, log *zap.Logger) *Handler {
	return &Handler{
		mirror: mirror,
		oracle: oracle,
		log:    log.Named("api"),
	}
}

// CampaignCreatedArgs are arguments of ReportCampaignCreated.
type CampaignCreatedArgs struct {
	CreatorWallet   string `json:"creatorWallet"`
	ContractAddress string `json:"contractAddress"`
	Title           string `json:"title"`
	Symbol          string `json:"symbol"`
	// Unix time in seconds.
	EndTime int64 `json:"endTime"`
	FeeBps  int   `json:"feeBps"`
	// Decimal string, in token base units.
	CreationStake string `json:"creationStake"`
}

// TicketPurchasedArgs are arguments of ReportTicketPurchased.
type TicketPurchasedArgs struct {
	CampaignID  string `json:"campaignId"`
	BuyerWallet string `json:"buyerWallet"`
	NftID       int64  `json:"nftTokenId"`
	Side        bool   `json:"side"`
	Stake       string `json:"stake"`
}

// TxRequestArgs is an unsigned transaction accepted by SignAndSubmit.
type TxRequestArgs struct {
	To       string         `json:"to"`
	Data     hexutil.Bytes  `json:"data"`
	Value    *hexutil.Big   `json:"value"`
	GasLimit hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big   `json:"gasPrice"`
}

// AccountResult is an account representation.
type AccountResult struct {
	ID            string  `json:"id"`
	WalletAddress string  `json:"walletAddress"`
	Email         *string `json:"email"`
	CreatedAt     string  `json:"createdAt"`
}

// CampaignResult is a campaign representation.
type CampaignResult struct {
	ID              string `json:"id"`
	CreatorWallet   string `json:"creatorWallet"`
	ContractAddress string `json:"contractAddress"`
	Title           string `json:"title"`
	Symbol          string `json:"symbol"`
	EndTime         string `json:"endTime"`
	FeeBps          int    `json:"feeBps"`
	CreationStake   string `json:"creationStake"`
	Status          string `json:"status"`
	Outcome         *bool  `json:"outcome"`
	CreatedAt       string `json:"createdAt"`
}

// TicketResult is a ticket representation.
type TicketResult struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaignId"`
	UserID     string `json:"userId"`
	NftID      int64  `json:"nftTokenId"`
	Side       bool   `json:"side"`
	Stake      string `json:"stake"`
	Claimed    bool   `json:"claimed"`
	CreatedAt  string `json:"createdAt"`
}

// TxResult is an oracle transaction state.
type TxResult struct {
	Hash        string  `json:"hash"`
	Status      string  `json:"status"`
	BlockNumber *uint64 `json:"blockNumber"`
	GasUsed     uint64  `json:"gasUsed"`
}

// ResolutionResult is a campaign resolved on chain.
type ResolutionResult struct {
	Campaign    CampaignResult `json:"campaign"`
	Transaction *TxResult      `json:"transaction"`
}

func formatTime(tm time.Time) string {
	return tm.UTC().Format(time.RFC3339)
}

func newAccountResult(acc *data.Account) *AccountResult {
	return &AccountResult{
		ID:            acc.ID,
		WalletAddress: acc.WalletAddress,
		Email:         acc.Email,
		CreatedAt:     formatTime(acc.CreatedAt),
	}
}

func newCampaignResult(c *data.Campaign) *CampaignResult {
	return &CampaignResult{
		ID:              c.ID,
		CreatorWallet:   c.CreatorWallet,
		ContractAddress: c.ContractAddress,
		Title:           c.Title,
		Symbol:          c.Symbol,
		EndTime:         formatTime(c.EndTime),
		FeeBps:          c.FeeBps,
		CreationStake:   c.CreationStake.String(),
		Status:          string(c.Status),
		Outcome:         c.Outcome,
		CreatedAt:       formatTime(c.CreatedAt),
	}
}

func newTicketResult(t *data.Ticket) *TicketResult {
	return &TicketResult{
		ID:         t.ID,
		CampaignID: t.CampaignID,
		UserID:     t.UserID,
		NftID:      t.NftID,
		Side:       t.Side,
		Stake:      t.Stake.String(),
		Claimed:    t.Claimed,
		CreatedAt:  formatTime(t.CreatedAt),
	}
}

func newTxResult(res *oracle.Result) *TxResult {
	result := &TxResult{
		Hash:   res.Hash.Hex(),
		Status: string(data.SubmissionPending),
	}

	if res.Receipt != nil {
		block := res.Receipt.BlockNumber.Uint64()
		result.BlockNumber = &block
		result.GasUsed = res.Receipt.GasUsed
		result.Status = string(data.SubmissionSuccessful)
		if res.Receipt.Status == 0 {
			result.Status = string(data.SubmissionFailed)
		}
	}

	return result
}

func parseAmount(name, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fault.Wrap(fault.Validation, err,
			"invalid %q argument", name)
	}
	return amount, nil
}

// fail converts err to an RPC error and logs unexpected failures.
func (h *Handler) fail(method string, err error, hash *common.Hash) error {
	rpcErr := newError(err, hash)

	switch rpcErr.data.Kind {
	case fault.Unknown.String(), fault.Storage.String(),
		fault.Submission.String(), fault.ExecutionReverted.String():
		h.log.Error("request failed", zap.String("method", method),
			zap.Error(err))
	default:
		h.log.Debug("request rejected", zap.String("method", method),
			zap.Error(err))
	}

	return rpcErr
}

// ReportCampaignCreated mirrors a campaign deployment.
func (h *Handler) ReportCampaignCreated(ctx context.Context,
	args CampaignCreatedArgs) (*CampaignResult, error) {
	if args.EndTime <= 0 {
		return nil, h.fail("reportCampaignCreated", fault.New(
			fault.Validation, `invalid "endTime" argument`), nil)
	}

	stake, err := parseAmount("creationStake", args.CreationStake)
	if err != nil {
		return nil, h.fail("reportCampaignCreated", err, nil)
	}

	c, err := h.mirror.ReportCampaignCreated(ctx, reconcile.CampaignCreated{
		CreatorWallet:   args.CreatorWallet,
		ContractAddress: args.ContractAddress,
		Title:           args.Title,
		Symbol:          args.Symbol,
		EndTime:         time.Unix(args.EndTime, 0).UTC(),
		FeeBps:          args.FeeBps,
		CreationStake:   stake,
	})
	if err != nil {
		return nil, h.fail("reportCampaignCreated", err, nil)
	}

	return newCampaignResult(c), nil
}

// ReportTicketPurchased mirrors a stake placement.
func (h *Handler) ReportTicketPurchased(ctx context.Context,
	args TicketPurchasedArgs) (*TicketResult, error) {
	stake, err := parseAmount("stake", args.Stake)
	if err != nil {
		return nil, h.fail("reportTicketPurchased", err, nil)
	}

	t, err := h.mirror.ReportTicketPurchased(ctx, reconcile.TicketPurchased{
		CampaignID:  args.CampaignID,
		BuyerWallet: args.BuyerWallet,
		NftID:       args.NftID,
		Side:        args.Side,
		Stake:       stake,
	})
	if err != nil {
		return nil, h.fail("reportTicketPurchased", err, nil)
	}

	return newTicketResult(t), nil
}

// SignAndSubmit signs a transaction with the oracle key, submits it and
// waits for the receipt.
func (h *Handler) SignAndSubmit(ctx context.Context,
	args TxRequestArgs) (*TxResult, error) {
	if !common.IsHexAddress(args.To) {
		return nil, h.fail("signAndSubmit",
			fault.New(fault.Validation, `invalid "to" argument`), nil)
	}

	to := common.HexToAddress(args.To)
	res, err := h.oracle.SignAndSubmit(ctx, eth.TxRequest{
		To:       &to,
		Data:     args.Data,
		Value:    args.Value.ToInt(),
		GasLimit: uint64(args.GasLimit),
		GasPrice: args.GasPrice.ToInt(),
	})
	if err != nil {
		var hash *common.Hash
		if res != nil {
			hash = &res.Hash
		}
		return nil, h.fail("signAndSubmit", err, hash)
	}

	return newTxResult(res), nil
}

// TransactionStatus checks an oracle transaction on the ledger.
func (h *Handler) TransactionStatus(ctx context.Context,
	hash string) (*TxResult, error) {
	st, err := h.oracle.TransactionStatus(ctx, hash)
	if err != nil {
		return nil, h.fail("transactionStatus", err, nil)
	}

	if st.Receipt == nil {
		return &TxResult{Hash: st.Hash.Hex(), Status: string(st.Status)}, nil
	}

	result := newTxResult(&oracle.Result{Hash: st.Hash, Receipt: st.Receipt})
	return result, nil
}

// CreateUser registers a wallet.
func (h *Handler) CreateUser(ctx context.Context, wallet string,
	email *string) (*AccountResult, error) {
	acc, err := h.mirror.CreateUser(ctx, wallet, email)
	if err != nil {
		return nil, h.fail("createUser", err, nil)
	}
	return newAccountResult(acc), nil
}

// GetUser returns an account.
func (h *Handler) GetUser(ctx context.Context,
	id string) (*AccountResult, error) {
	acc, err := h.mirror.User(ctx, id)
	if err != nil {
		return nil, h.fail("getUser", err, nil)
	}
	return newAccountResult(acc), nil
}

// ListUsers returns all accounts, newest first.
func (h *Handler) ListUsers(ctx context.Context) ([]*AccountResult, error) {
	accounts, err := h.mirror.Users(ctx)
	if err != nil {
		return nil, h.fail("listUsers", err, nil)
	}

	result := make([]*AccountResult, len(accounts))
	for k := range accounts {
		result[k] = newAccountResult(accounts[k])
	}
	return result, nil
}

// GetCampaign returns a campaign.
func (h *Handler) GetCampaign(ctx context.Context,
	id string) (*CampaignResult, error) {
	c, err := h.mirror.Campaign(ctx, id)
	if err != nil {
		return nil, h.fail("getCampaign", err, nil)
	}
	return newCampaignResult(c), nil
}

// ListCampaigns returns all campaigns, newest first.
func (h *Handler) ListCampaigns(
	ctx context.Context) ([]*CampaignResult, error) {
	campaigns, err := h.mirror.Campaigns(ctx)
	if err != nil {
		return nil, h.fail("listCampaigns", err, nil)
	}

	result := make([]*CampaignResult, len(campaigns))
	for k := range campaigns {
		result[k] = newCampaignResult(campaigns[k])
	}
	return result, nil
}

// ResolveCampaign records a campaign resolution in the mirror.
func (h *Handler) ResolveCampaign(ctx context.Context, id string,
	outcome bool) (*CampaignResult, error) {
	c, err := h.mirror.ResolveCampaign(ctx, id, outcome)
	if err != nil {
		return nil, h.fail("resolveCampaign", err, nil)
	}
	return newCampaignResult(c), nil
}

// ResolveCampaignOnChain resolves a campaign contract with the oracle key
// and records the resolution.
func (h *Handler) ResolveCampaignOnChain(ctx context.Context, id string,
	outcome bool) (*ResolutionResult, error) {
	c, res, err := h.oracle.ResolveCampaignOnChain(ctx, id, outcome)
	if err != nil {
		var hash *common.Hash
		if res != nil {
			hash = &res.Hash
		}
		return nil, h.fail("resolveCampaignOnChain", err, hash)
	}

	result := &ResolutionResult{Campaign: *newCampaignResult(c)}
	if res != nil {
		result.Transaction = newTxResult(res)
	}
	return result, nil
}

// CancelCampaign records a campaign cancellation.
func (h *Handler) CancelCampaign(ctx context.Context,
	id string) (*CampaignResult, error) {
	c, err := h.mirror.CancelCampaign(ctx, id)
	if err != nil {
		return nil, h.fail("cancelCampaign", err, nil)
	}
	return newCampaignResult(c), nil
}

// GetTicket returns a ticket.
func (h *Handler) GetTicket(ctx context.Context,
	id string) (*TicketResult, error) {
	t, err := h.mirror.Ticket(ctx, id)
	if err != nil {
		return nil, h.fail("getTicket", err, nil)
	}
	return newTicketResult(t), nil
}

// ListCampaignTickets returns tickets of a campaign, newest first.
func (h *Handler) ListCampaignTickets(ctx context.Context,
	campaignID string) ([]*TicketResult, error) {
	tickets, err := h.mirror.CampaignTickets(ctx, campaignID)
	if err != nil {
		return nil, h.fail("listCampaignTickets", err, nil)
	}

	result := make([]*TicketResult, len(tickets))
	for k := range tickets {
		result[k] = newTicketResult(tickets[k])
	}
	return result, nil
}

// ClaimTicket records a ticket payout.
func (h *Handler) ClaimTicket(ctx context.Context,
	id string) (*TicketResult, error) {
	t, err := h.mirror.ClaimTicket(ctx, id)
	if err != nil {
		return nil, h.fail("claimTicket", err, nil)
	}
	return newTicketResult(t), nil
}
