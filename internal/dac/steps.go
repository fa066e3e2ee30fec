// Package dac turns the DAC creation wizard's answers into the memo and the
// transfer action that asks the factory to create the DAC.
package dac

// LockupDays is the unit selector value that makes Lockup count days;
// any other value counts hours.
const LockupDays = "Day(s)"

// Identity is wizard step 1.
type Identity struct {
	DacName        string `json:"dacName"`
	DacDescription string `json:"dacDescription"`
	TokenSymbol    string `json:"tokenSymbol"`
}

// Token is wizard step 2. Zero quantities mean "not entered".
type Token struct {
	MaxSupply float64 `json:"maxSupply"`
	Decimals  int     `json:"decimals"`
	Issuance  float64 `json:"issuance"`
}

// Custodian is wizard step 3.
type Custodian struct {
	LockupAsset       float64 `json:"lockupAsset"`
	RequestPay        float64 `json:"requestPay"`
	Lockup            float64 `json:"lockup"`
	LockupSelect      string  `json:"lockupSelect"`
	PeriodLength      int     `json:"periodLength"`
	NumberElected     int     `json:"numberElected"`
	ThresholdHigh     int     `json:"thresholdHigh"`
	ThresholdMed      int     `json:"thresholdMed"`
	ThresholdLow      int     `json:"thresholdLow"`
	MaxVotes          int     `json:"maxVotes"`
	VoteQuorumPercent int     `json:"voteQuorumPercent"`
}

// Branding is wizard step 4. Color is collected but not yet mapped onto the
// theme palette.
type Branding struct {
	WebsiteURL  string `json:"websiteURL"`
	LogoURL     string `json:"logoURL"`
	LogoMarkURL string `json:"logoMarkURL"`
	Color       string `json:"color"`
}

// Steps holds the four wizard pages, keyed "1".."4" on the wire.
type Steps struct {
	Identity  Identity  `json:"1"`
	Token     Token     `json:"2"`
	Custodian Custodian `json:"3"`
	Branding  Branding  `json:"4"`
}

// Payload is what the wizard submits: its answers plus the symbol of the
// token the creation fee is paid in.
type Payload struct {
	StepsData      Steps  `json:"stepsData"`
	PayTokenSymbol string `json:"payTokenSymbol"`
}

// LockupSeconds converts the custodian lockup to seconds.
func (c Custodian) LockupSeconds() int64 {
	if c.LockupSelect == LockupDays {
		return int64(c.Lockup * 24 * 3600)
	}
	return int64(c.Lockup * 3600)
}
