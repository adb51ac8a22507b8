package eth

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

const factoryABI = `[
	{"type":"event","name":"CampaignCreated","anonymous":false,"inputs":[
		{"name":"creator","type":"address","indexed":true},
		{"name":"campaign","type":"address","indexed":true},
		{"name":"title","type":"string","indexed":false},
		{"name":"symbol","type":"string","indexed":false},
		{"name":"endTime","type":"uint64","indexed":false},
		{"name":"feeBps","type":"uint16","indexed":false},
		{"name":"creationStake","type":"uint256","indexed":false}]}
]`

const campaignABI = `[
	{"type":"event","name":"TicketPurchased","anonymous":false,"inputs":[
		{"name":"buyer","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"side","type":"bool","indexed":false},
		{"name":"stake","type":"uint256","indexed":false}]},
	{"type":"event","name":"Resolved","anonymous":false,"inputs":[
		{"name":"outcome","type":"bool","indexed":false}]},
	{"type":"event","name":"Canceled","anonymous":false,"inputs":[]},
	{"type":"event","name":"TicketClaimed","anonymous":false,"inputs":[
		{"name":"tokenId","type":"uint256","indexed":true}]},
	{"type":"function","name":"resolve","stateMutability":"nonpayable",
		"inputs":[{"name":"outcome","type":"bool"}],"outputs":[]}
]`

const erc20ABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
		"inputs":[{"name":"account","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]}
]`

// Contract interfaces.
var (
	FactoryABI  = mustParse(factoryABI)
	CampaignABI = mustParse(campaignABI)
	ERC20ABI    = mustParse(erc20ABI)
)

// Event topics.
var (
	CampaignCreatedTopic = FactoryABI.Events["CampaignCreated"].ID
	TicketPurchasedTopic = CampaignABI.Events["TicketPurchased"].ID
	ResolvedTopic        = CampaignABI.Events["Resolved"].ID
	CanceledTopic        = CampaignABI.Events["Canceled"].ID
	TicketClaimedTopic   = CampaignABI.Events["TicketClaimed"].ID
)

func mustParse(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

// CampaignCreatedLog is a decoded factory deployment event.
type CampaignCreatedLog struct {
	Creator       common.Address
	Campaign      common.Address
	Title         string
	Symbol        string
	EndTime       uint64
	FeeBps        uint16
	CreationStake *big.Int
}

type campaignCreatedData struct {
	Title         string
	Symbol        string
	EndTime       uint64
	FeeBps        uint16
	CreationStake *big.Int
}

// TicketPurchasedLog is a decoded stake placement event.
type TicketPurchasedLog struct {
	Campaign common.Address
	Buyer    common.Address
	TokenID  *big.Int
	Side     bool
	Stake    *big.Int
}

type ticketPurchasedData struct {
	Side  bool
	Stake *big.Int
}

// ResolvedLog is a decoded campaign resolution event.
type ResolvedLog struct {
	Campaign common.Address
	Outcome  bool
}

// TicketClaimedLog is a decoded payout event.
type TicketClaimedLog struct {
	Campaign common.Address
	TokenID  *big.Int
}

func checkTopics(l types.Log, topic common.Hash, count int) error {
	if len(l.Topics) != count || l.Topics[0] != topic {
		return errors.Errorf("unexpected topics in log %s:%d",
			l.TxHash.Hex(), l.Index)
	}
	return nil
}

// ParseCampaignCreated decodes a CampaignCreated log.
func ParseCampaignCreated(l types.Log) (*CampaignCreatedLog, error) {
	if err := checkTopics(l, CampaignCreatedTopic, 3); err != nil {
		return nil, err
	}

	var d campaignCreatedData
	if err := FactoryABI.UnpackIntoInterface(&d, "CampaignCreated",
		l.Data); err != nil {
		return nil, errors.Wrap(err, "failed to unpack CampaignCreated")
	}

	return &CampaignCreatedLog{
		Creator:       common.BytesToAddress(l.Topics[1].Bytes()),
		Campaign:      common.BytesToAddress(l.Topics[2].Bytes()),
		Title:         d.Title,
		Symbol:        d.Symbol,
		EndTime:       d.EndTime,
		FeeBps:        d.FeeBps,
		CreationStake: d.CreationStake,
	}, nil
}

// ParseTicketPurchased decodes a TicketPurchased log.
func ParseTicketPurchased(l types.Log) (*TicketPurchasedLog, error) {
	if err := checkTopics(l, TicketPurchasedTopic, 3); err != nil {
		return nil, err
	}

	var d ticketPurchasedData
	if err := CampaignABI.UnpackIntoInterface(&d, "TicketPurchased",
		l.Data); err != nil {
		return nil, errors.Wrap(err, "failed to unpack TicketPurchased")
	}

	return &TicketPurchasedLog{
		Campaign: l.Address,
		Buyer:    common.BytesToAddress(l.Topics[1].Bytes()),
		TokenID:  new(big.Int).SetBytes(l.Topics[2].Bytes()),
		Side:     d.Side,
		Stake:    d.Stake,
	}, nil
}

// ParseResolved decodes a Resolved log.
func ParseResolved(l types.Log) (*ResolvedLog, error) {
	if err := checkTopics(l, ResolvedTopic, 1); err != nil {
		return nil, err
	}

	values, err := CampaignABI.Unpack("Resolved", l.Data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack Resolved")
	}

	outcome, ok := values[0].(bool)
	if !ok {
		return nil, errors.New("unexpected Resolved outcome type")
	}

	return &ResolvedLog{Campaign: l.Address, Outcome: outcome}, nil
}

// ParseTicketClaimed decodes a TicketClaimed log.
func ParseTicketClaimed(l types.Log) (*TicketClaimedLog, error) {
	if err := checkTopics(l, TicketClaimedTopic, 2); err != nil {
		return nil, err
	}

	return &TicketClaimedLog{
		Campaign: l.Address,
		TokenID:  new(big.Int).SetBytes(l.Topics[1].Bytes()),
	}, nil
}

// PackResolve returns call data of the campaign resolve method.
func PackResolve(outcome bool) ([]byte, error) {
	return CampaignABI.Pack("resolve", outcome)
}
