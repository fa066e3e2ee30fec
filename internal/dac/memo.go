package dac

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fragmede/dacforge/internal/config"
	"github.com/fragmede/dacforge/internal/ual"
)

// Fixed values the DAC factory expects.
const (
	FactoryAccount = "piecesnbitss"
	CreationFee    = "1.0000"

	ProposalThreshold = 4
	FinalizeThreshold = 1
	ProposalExpiry    = 2592000 // 30 days, seconds

	requestPayContract = "eosio.token"
	requestPaySymbol   = "EOS"
	requestPayDecimals = 4
)

type SymbolRef struct {
	Contract string `json:"contract"`
	Symbol   string `json:"symbol"`
}

type ExtendedAsset struct {
	Quantity string `json:"quantity"`
	Contract string `json:"contract"`
}

type Colors struct {
	Warning  string `json:"$warning"`
	Primary  string `json:"primary"`
	Bg1      string `json:"bg1"`
	Bg2      string `json:"bg2"`
	Text1    string `json:"text1"`
	Text2    string `json:"text2"`
	Info     string `json:"info"`
	Positive string `json:"positive"`
	Negative string `json:"negative"`
	Dark     string `json:"dark"`
}

type Theme struct {
	IsDark bool   `json:"is_dark"`
	Colors Colors `json:"colors"`
}

// DefaultTheme is the palette every new DAC starts with.
var DefaultTheme = Theme{
	IsDark: true,
	Colors: Colors{
		Warning:  "#f2e285",
		Primary:  "#ba5f34",
		Bg1:      "#1f130d",
		Bg2:      "#574943",
		Text1:    "rgba(255,255,255,0.9)",
		Text2:    "rgba(255,255,255,0.7)",
		Info:     "#4583ba",
		Positive: "#21ba45",
		Negative: "#db2828",
		Dark:     "#3d2d27",
	},
}

type CustodianConfig struct {
	LockupAsset                 ExtendedAsset `json:"lockupasset"`
	MaxVotes                    int           `json:"maxvotes"`
	NumElected                  int           `json:"numelected"`
	PeriodLength                int           `json:"periodlength"`
	ShouldPayViaServiceProvider bool          `json:"should_pay_via_service_provider"`
	InitialVoteQuorumPercent    int           `json:"initial_vote_quorum_percent"`
	VoteQuorumPercent           int           `json:"vote_quorum_percent"`
	AuthThresholdHigh           int           `json:"auth_threshold_high"`
	AuthThresholdMid            int           `json:"auth_threshold_mid"`
	AuthThresholdLow            int           `json:"auth_threshold_low"`
	LockupReleaseTimeDelay      int64         `json:"lockup_release_time_delay"`
	RequestedPayMax             ExtendedAsset `json:"requested_pay_max"`
}

type ProposalsConfig struct {
	ProposalThreshold int `json:"proposal_threshold"`
	FinalizeThreshold int `json:"finalize_threshold"`
	EscrowExpiry      int `json:"escrow_expiry"`
	ApprovalExpiry    int `json:"approval_expiry"`
}

// Memo is the DAC descriptor carried in the transfer memo.
type Memo struct {
	ID                 string          `json:"id"`
	Owner              string          `json:"owner"`
	AppointedCustodian string          `json:"appointed_custodian"`
	Authority          string          `json:"authority"`
	Treasury           string          `json:"treasury"`
	Symbol             SymbolRef       `json:"symbol"`
	MaxSupply          string          `json:"max_supply"`
	Issuance           string          `json:"issuance"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Homepage           string          `json:"homepage"`
	LogoURL            string          `json:"logo_url"`
	LogoNoTextURL      string          `json:"logo_notext_url"`
	BackgroundURL      string          `json:"background_url"`
	Theme              Theme           `json:"theme"`
	CustodianConfig    CustodianConfig `json:"custodian_config"`
	ProposalsConfig    ProposalsConfig `json:"proposals_config"`
}

// Transfer is the data of a token transfer action.
type Transfer struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

// Quantity formats amount with the given precision, substituting 1 when the
// amount was left empty (zero).
func Quantity(amount float64, decimals int, symbol string) string {
	if amount == 0 {
		amount = 1
	}
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(amount, 'f', decimals, 64) + " " + symbol
}

// BuildMemo assembles the DAC descriptor for owner. dacContract is the
// contract that will issue the DAC token. Wizard values are copied as-is;
// nothing is validated here.
func BuildMemo(owner string, steps Steps, dacContract string) Memo {
	id := NameToID(steps.Identity.DacName)
	sym := steps.Identity.TokenSymbol
	dec := steps.Token.Decimals
	cust := steps.Custodian

	return Memo{
		ID:                 id,
		Owner:              owner,
		AppointedCustodian: owner,
		Authority:          AccountFromID(id, "authority"),
		Treasury:           AccountFromID(id, "treasury"),
		Symbol: SymbolRef{
			Contract: dacContract,
			Symbol:   fmt.Sprintf("%d,%s", dec, sym),
		},
		MaxSupply:     Quantity(steps.Token.MaxSupply, dec, sym),
		Issuance:      Quantity(steps.Token.Issuance, dec, sym),
		Name:          steps.Identity.DacName,
		Description:   steps.Identity.DacDescription,
		Homepage:      steps.Branding.WebsiteURL,
		LogoURL:       steps.Branding.LogoURL,
		LogoNoTextURL: steps.Branding.LogoMarkURL,
		BackgroundURL: "",
		Theme:         DefaultTheme,
		CustodianConfig: CustodianConfig{
			LockupAsset: ExtendedAsset{
				Quantity: Quantity(cust.LockupAsset, dec, sym),
				Contract: dacContract,
			},
			MaxVotes:                    cust.MaxVotes,
			NumElected:                  cust.NumberElected,
			PeriodLength:                cust.PeriodLength,
			ShouldPayViaServiceProvider: false,
			InitialVoteQuorumPercent:    1,
			VoteQuorumPercent:           cust.VoteQuorumPercent,
			AuthThresholdHigh:           cust.ThresholdHigh,
			AuthThresholdMid:            cust.ThresholdMed,
			AuthThresholdLow:            cust.ThresholdLow,
			LockupReleaseTimeDelay:      cust.LockupSeconds(),
			RequestedPayMax: ExtendedAsset{
				Quantity: Quantity(cust.RequestPay, requestPayDecimals, requestPaySymbol),
				Contract: requestPayContract,
			},
		},
		ProposalsConfig: ProposalsConfig{
			ProposalThreshold: ProposalThreshold,
			FinalizeThreshold: FinalizeThreshold,
			EscrowExpiry:      ProposalExpiry,
			ApprovalExpiry:    ProposalExpiry,
		},
	}
}

// Prepare builds the single-action transaction that pays the creation fee
// to the factory with the serialized memo attached.
func Prepare(accountName string, p Payload, contracts config.Contracts) (ual.Transaction, Memo, error) {
	memo := BuildMemo(accountName, p.StepsData, contracts.DacToken())
	encoded, err := EncodeMemo(memo)
	if err != nil {
		return ual.Transaction{}, Memo{}, err
	}

	action := ual.Action{
		Account: contracts.TokenContract(p.PayTokenSymbol),
		Name:    "transfer",
		Data: Transfer{
			From:     accountName,
			To:       FactoryAccount,
			Quantity: CreationFee + " " + p.PayTokenSymbol,
			Memo:     encoded,
		},
	}
	return ual.Transaction{Actions: []ual.Action{action}}, memo, nil
}

// EncodeMemo serializes m compactly without HTML escaping, so URLs and
// descriptions reach the chain byte for byte.
func EncodeMemo(m Memo) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("encoding memo: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
