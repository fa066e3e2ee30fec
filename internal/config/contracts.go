package config

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DacTokenContractKey names the contract that issues the new DAC's token.
const DacTokenContractKey = "KASDAC_TOKEN_CONTRACT"

// Contracts resolves token contract accounts from environment-style keys.
type Contracts map[string]string

// LoadContracts snapshots the current process environment.
func LoadContracts() Contracts {
	return Contracts(env.ToMap(os.Environ()))
}

// DacToken returns the KASDAC_TOKEN_CONTRACT value, or "" when unset.
func (c Contracts) DacToken() string {
	return c[DacTokenContractKey]
}

// TokenContract returns the value of "<SYMBOL>_TOKEN_CONTRACT".
func (c Contracts) TokenContract(symbol string) string {
	return c[TokenContractKey(symbol)]
}

func TokenContractKey(symbol string) string {
	return strings.TrimSpace(symbol) + "_TOKEN_CONTRACT"
}
