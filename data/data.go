//go:generate reform

package data

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignStatus is a campaign lifecycle state.
type CampaignStatus string

// Campaign states. Resolved and canceled are terminal.
const (
	CampaignOpen     CampaignStatus = "open"
	CampaignResolved CampaignStatus = "resolved"
	CampaignCanceled CampaignStatus = "canceled"
)

// Terminal reports whether no further transition is allowed.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignResolved || s == CampaignCanceled
}

// SubmissionStatus is an oracle transaction state.
type SubmissionStatus string

// Oracle transaction states.
const (
	SubmissionPending    SubmissionStatus = "pending"
	SubmissionSuccessful SubmissionStatus = "successful"
	SubmissionFailed     SubmissionStatus = "failed"
	// The ledger does not know the transaction, it is safe to resend.
	SubmissionDropped SubmissionStatus = "dropped"
)

// Fee bounds in basis points.
const (
	MinFeeBps = 0
	MaxFeeBps = 10000
)

//reform:accounts
type Account struct {
	ID            string    `json:"id" reform:"id,pk"`
	WalletAddress string    `json:"walletAddress" reform:"wallet_address"`
	Email         *string   `json:"email" reform:"email"`
	CreatedAt     time.Time `json:"createdAt" reform:"created_at"`
}

//reform:campaigns
type Campaign struct {
	ID              string          `json:"id" reform:"id,pk"`
	CreatorWallet   string          `json:"creatorWallet" reform:"creator_wallet"`
	ContractAddress string          `json:"contractAddress" reform:"contract_address"`
	Title           string          `json:"title" reform:"title"`
	Symbol          string          `json:"symbol" reform:"symbol"`
	EndTime         time.Time       `json:"endTime" reform:"end_time"`
	FeeBps          int             `json:"feeBps" reform:"fee_bps"`
	CreationStake   decimal.Decimal `json:"creationStake" reform:"creation_stake"`
	Status          CampaignStatus  `json:"status" reform:"status"`
	// Set only when the campaign is resolved.
	Outcome   *bool     `json:"outcome" reform:"outcome"`
	CreatedAt time.Time `json:"createdAt" reform:"created_at"`
}

//reform:tickets
type Ticket struct {
	ID         string          `json:"id" reform:"id,pk"`
	CampaignID string          `json:"campaignId" reform:"campaign_id"`
	UserID     string          `json:"userId" reform:"user_id"`
	NftID      int64           `json:"nftId" reform:"nft_id"`
	Side       bool            `json:"side" reform:"side"`
	Stake      decimal.Decimal `json:"stake" reform:"stake"`
	Claimed    bool            `json:"claimed" reform:"claimed"`
	CreatedAt  time.Time       `json:"createdAt" reform:"created_at"`
}

//reform:submissions
type Submission struct {
	ID           string           `json:"id" reform:"id,pk"`
	Hash         string           `json:"hash" reform:"hash"`
	Nonce        uint64           `json:"nonce" reform:"nonce"`
	To           *string          `json:"to" reform:"to"`
	Status       SubmissionStatus `json:"status" reform:"status"`
	ReceiptBlock *uint64          `json:"receiptBlock" reform:"receipt_block"`
	CreatedAt    time.Time        `json:"createdAt" reform:"created_at"`
}

//reform:settings
type Setting struct {
	Key   string `json:"key" reform:"key,pk"`
	Value string `json:"value" reform:"value"`
}
