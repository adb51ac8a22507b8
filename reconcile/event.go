package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/admon/ledger-mirror/data"
	"github.com/admon/ledger-mirror/fault"
)

// Event names used in logs and metrics.
const (
	eventCampaignCreated = "campaign_created"
	eventTicketPurchased = "ticket_purchased"
)

// Column limits of the campaigns table.
const (
	maxTitleLen  = 255
	maxSymbolLen = 64
)

// Amounts are stored as numeric(38,18).
const (
	amountPrecision = 38
	amountScale     = 18
)

var (
	maxAmount = decimal.New(1, amountPrecision-amountScale)

	// timestamptz range with RFC3339 four digit years.
	minEndTime = time.Unix(0, 0).UTC()
	maxEndTime = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)
)

// CampaignCreated is a campaign deployment observed on chain.
type CampaignCreated struct {
	CreatorWallet   string
	ContractAddress string
	Title           string
	Symbol          string
	EndTime         time.Time
	FeeBps          int
	CreationStake   decimal.Decimal
}

// TicketPurchased is a stake placement observed on chain.
type TicketPurchased struct {
	CampaignID  string
	BuyerWallet string
	NftID       int64
	Side        bool
	Stake       decimal.Decimal
}

// NormalizeAddress returns the canonical form of a wallet or contract
// address.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// checkAmount rejects amounts the ledger cannot store exactly.
func checkAmount(name string, amount decimal.Decimal) error {
	switch {
	case amount.IsNegative():
		return fault.New(fault.Validation, "%s %s is negative", name, amount)
	case amount.GreaterThanOrEqual(maxAmount):
		return fault.New(fault.Validation,
			"%s %s has more than %d integer digits", name, amount,
			amountPrecision-amountScale)
	case !amount.Equal(amount.Truncate(amountScale)):
		return fault.New(fault.Validation,
			"%s %s has more than %d fractional digits", name, amount,
			amountScale)
	}
	return nil
}

// Validate checks that the event can be mirrored.
func (e CampaignCreated) Validate() error {
	e.normalize()
	return e.validate()
}

func (e *CampaignCreated) normalize() {
	e.CreatorWallet = NormalizeAddress(e.CreatorWallet)
	e.ContractAddress = NormalizeAddress(e.ContractAddress)
	e.Title = strings.TrimSpace(e.Title)
	e.Symbol = strings.TrimSpace(e.Symbol)
}

func (e *CampaignCreated) validate() error {
	if e.ContractAddress == "" {
		return fault.New(fault.Validation, "contract address is empty")
	}

	if e.CreatorWallet == "" {
		return fault.New(fault.Validation, "creator wallet is empty")
	}

	if e.FeeBps < data.MinFeeBps || e.FeeBps > data.MaxFeeBps {
		return fault.New(fault.Validation,
			"fee_bps %d is out of range [%d, %d]",
			e.FeeBps, data.MinFeeBps, data.MaxFeeBps)
	}

	if err := checkAmount("creation stake", e.CreationStake); err != nil {
		return err
	}

	if len(e.Title) > maxTitleLen {
		return fault.New(fault.Validation,
			"title is longer than %d bytes", maxTitleLen)
	}

	if len(e.Symbol) > maxSymbolLen {
		return fault.New(fault.Validation,
			"symbol is longer than %d bytes", maxSymbolLen)
	}

	if e.EndTime.IsZero() {
		return fault.New(fault.Validation, "end time is not set")
	}

	if e.EndTime.Before(minEndTime) || !e.EndTime.Before(maxEndTime) {
		return fault.New(fault.Validation,
			"end time %d is out of range", e.EndTime.Unix())
	}

	return nil
}

// Validate checks that the event can be mirrored.
func (e TicketPurchased) Validate() error {
	e.normalize()
	return e.validate()
}

func (e *TicketPurchased) normalize() {
	e.CampaignID = strings.TrimSpace(e.CampaignID)
	e.BuyerWallet = NormalizeAddress(e.BuyerWallet)
}

func (e *TicketPurchased) validate() error {
	if e.BuyerWallet == "" {
		return fault.New(fault.Validation, "buyer wallet is empty")
	}

	if e.NftID < 0 {
		return fault.New(fault.Validation,
			"nft token id %d is negative", e.NftID)
	}

	if err := checkAmount("stake", e.Stake); err != nil {
		return err
	}

	return nil
}
