package wizard

import (
	"strconv"
	"strings"

	"github.com/fragmede/dacforge/internal/dac"
)

// field is one wizard input. Choice fields cycle through options instead of
// accepting text.
type field struct {
	label       string
	placeholder string
	value       string
	options     []string
	apply       func(s *dac.Steps, v string)
}

type page struct {
	title  string
	fields []field
}

var lockupUnits = []string{dac.LockupDays, "Hour(s)"}

func pages() []page {
	return []page{
		{
			title: "Identity",
			fields: []field{
				{label: "DAC name", placeholder: "My DAC", apply: func(s *dac.Steps, v string) { s.Identity.DacName = v }},
				{label: "Description", placeholder: "What is this DAC about?", apply: func(s *dac.Steps, v string) { s.Identity.DacDescription = v }},
				{label: "Token symbol", placeholder: "DAC", apply: func(s *dac.Steps, v string) { s.Identity.TokenSymbol = strings.ToUpper(v) }},
			},
		},
		{
			title: "Token",
			fields: []field{
				{label: "Max supply", placeholder: "10000000000", apply: func(s *dac.Steps, v string) { s.Token.MaxSupply = parseFloat(v) }},
				{label: "Decimals", value: "4", apply: func(s *dac.Steps, v string) { s.Token.Decimals = parseInt(v) }},
				{label: "Issuance", placeholder: "1000000000", apply: func(s *dac.Steps, v string) { s.Token.Issuance = parseFloat(v) }},
			},
		},
		{
			title: "Custodians",
			fields: []field{
				{label: "Lockup asset", placeholder: "10", apply: func(s *dac.Steps, v string) { s.Custodian.LockupAsset = parseFloat(v) }},
				{label: "Max pay", placeholder: "0", apply: func(s *dac.Steps, v string) { s.Custodian.RequestPay = parseFloat(v) }},
				{label: "Lockup", placeholder: "7", apply: func(s *dac.Steps, v string) { s.Custodian.Lockup = parseFloat(v) }},
				{label: "Lockup unit", value: lockupUnits[0], options: lockupUnits, apply: func(s *dac.Steps, v string) { s.Custodian.LockupSelect = v }},
				{label: "Period (s)", placeholder: "604800", apply: func(s *dac.Steps, v string) { s.Custodian.PeriodLength = parseInt(v) }},
				{label: "Elected", value: "5", apply: func(s *dac.Steps, v string) { s.Custodian.NumberElected = parseInt(v) }},
				{label: "Threshold high", value: "4", apply: func(s *dac.Steps, v string) { s.Custodian.ThresholdHigh = parseInt(v) }},
				{label: "Threshold mid", value: "3", apply: func(s *dac.Steps, v string) { s.Custodian.ThresholdMed = parseInt(v) }},
				{label: "Threshold low", value: "2", apply: func(s *dac.Steps, v string) { s.Custodian.ThresholdLow = parseInt(v) }},
				{label: "Max votes", value: "2", apply: func(s *dac.Steps, v string) { s.Custodian.MaxVotes = parseInt(v) }},
				{label: "Vote quorum %", value: "1", apply: func(s *dac.Steps, v string) { s.Custodian.VoteQuorumPercent = parseInt(v) }},
			},
		},
		{
			title: "Branding",
			fields: []field{
				{label: "Website", placeholder: "https://", apply: func(s *dac.Steps, v string) { s.Branding.WebsiteURL = v }},
				{label: "Logo URL", placeholder: "https://", apply: func(s *dac.Steps, v string) { s.Branding.LogoURL = v }},
				{label: "Logo mark URL", placeholder: "https://", apply: func(s *dac.Steps, v string) { s.Branding.LogoMarkURL = v }},
				{label: "Color", placeholder: "#ba5f34", apply: func(s *dac.Steps, v string) { s.Branding.Color = v }},
			},
		},
	}
}

// Unparseable numbers count as not entered.
func parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
