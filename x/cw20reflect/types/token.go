package types

import (
	"math/big"
	"regexp"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MaxUint128 is the largest amount representable on the cw20 wire. Amounts
// beyond it are rejected at the boundary so local arithmetic can never
// produce a value the wire cannot carry.
var MaxUint128 = sdkmath.NewIntFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
)

// CustodyMode selects how the contract keeps the native denomination in
// step with the reflected ledger. It is fixed at instantiation.
type CustodyMode string

const (
	// CustodyLocked backs the ledger 1:1 with native funds held by the
	// contract: deposits mint, burns release, transfers move only the
	// local ledger.
	CustodyLocked CustodyMode = "locked"

	// CustodyPassthrough pushes the native coin out of contract custody on
	// every transfer and burn; supply grows only through the privileged
	// minter, who is responsible for pre-funding the contract.
	CustodyPassthrough CustodyMode = "passthrough"
)

func (m CustodyMode) Validate() error {
	switch m {
	case CustodyLocked, CustodyPassthrough:
		return nil
	default:
		return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "unknown custody mode %q", m)
	}
}

// TokenInfo is the immutable token metadata plus the cached total supply.
type TokenInfo struct {
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Decimals    uint8       `json:"decimals"`
	TotalSupply sdkmath.Int `json:"total_supply"`
}

// ReflectionState ties the contract instance to the one native denomination
// it mirrors. Created at instantiation, read-only thereafter.
type ReflectionState struct {
	ContractAddress string      `json:"contract_address"`
	Denom           string      `json:"denom"`
	CustodyMode     CustodyMode `json:"custody_mode"`
}

// MinterInfo names the account allowed to mint and an optional hard cap on
// total supply.
type MinterInfo struct {
	Minter string       `json:"minter"`
	Cap    *sdkmath.Int `json:"cap,omitempty"`
}

// MarketingInfo is optional descriptive metadata, stored verbatim.
type MarketingInfo struct {
	Project     string `json:"project,omitempty"`
	Description string `json:"description,omitempty"`
	Marketing   string `json:"marketing,omitempty"`
	Logo        string `json:"logo,omitempty"`
}

// Cw20Coin is an address/amount pair as used in initial balances.
type Cw20Coin struct {
	Address string      `json:"address"`
	Amount  sdkmath.Int `json:"amount"`
}

// InstantiateMsg configures one reflection contract instance.
type InstantiateMsg struct {
	Name            string         `json:"name"`
	Symbol          string         `json:"symbol"`
	Decimals        uint8          `json:"decimals"`
	Denom           string         `json:"denom"`
	CustodyMode     CustodyMode    `json:"custody_mode"`
	InitialBalances []Cw20Coin     `json:"initial_balances"`
	Mint            *MinterInfo    `json:"mint,omitempty"`
	Marketing       *MarketingInfo `json:"marketing,omitempty"`
}

var symbolRE = regexp.MustCompile(`^[a-zA-Z\-]{3,12}$`)

// GetCap returns the minting cap if one is configured.
func (m InstantiateMsg) GetCap() *sdkmath.Int {
	if m.Mint == nil {
		return nil
	}
	return m.Mint.Cap
}

// Validate checks name, symbol, decimals, denom, custody mode, the minter
// and the initial distribution.
func (m InstantiateMsg) Validate() error {
	if len(m.Name) < 3 || len(m.Name) > 50 {
		return errorsmod.Wrap(ErrInvalidInstantiateMsg, "name is not in the expected format (3-50 UTF-8 bytes)")
	}
	if !symbolRE.MatchString(m.Symbol) {
		return errorsmod.Wrap(ErrInvalidInstantiateMsg, `ticker symbol is not in expected format [a-zA-Z\-]{3,12}`)
	}
	if m.Decimals > 18 {
		return errorsmod.Wrap(ErrInvalidInstantiateMsg, "decimals must not exceed 18")
	}
	if err := sdk.ValidateDenom(m.Denom); err != nil {
		return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "native denom: %s", err)
	}
	if err := m.CustodyMode.Validate(); err != nil {
		return err
	}
	if m.Mint != nil {
		if _, err := sdk.AccAddressFromBech32(m.Mint.Minter); err != nil {
			return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "minter address: %s", err)
		}
		if m.Mint.Cap != nil && !m.Mint.Cap.IsPositive() {
			return errorsmod.Wrap(ErrInvalidInstantiateMsg, "minting cap must be positive")
		}
	}
	seen := make(map[string]struct{}, len(m.InitialBalances))
	total := sdkmath.ZeroInt()
	for _, ib := range m.InitialBalances {
		if _, err := sdk.AccAddressFromBech32(ib.Address); err != nil {
			return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "initial balance address: %s", err)
		}
		if _, ok := seen[ib.Address]; ok {
			return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "duplicate initial balance for %s", ib.Address)
		}
		seen[ib.Address] = struct{}{}
		if ib.Amount.IsNil() || !ib.Amount.IsPositive() || ib.Amount.GT(MaxUint128) {
			return errorsmod.Wrapf(ErrInvalidAmount, "initial balance for %s", ib.Address)
		}
		total = total.Add(ib.Amount)
	}
	if total.GT(MaxUint128) {
		return errorsmod.Wrap(ErrInvalidAmount, "initial supply exceeds uint128 range")
	}
	if cap := m.GetCap(); cap != nil && total.GT(*cap) {
		return errorsmod.Wrap(ErrInvalidInstantiateMsg, "initial supply greater than cap")
	}
	return nil
}

// InitialSupply returns the sum of the initial balances. Call only after
// Validate has accepted the message.
func (m InstantiateMsg) InitialSupply() sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, ib := range m.InitialBalances {
		total = total.Add(ib.Amount)
	}
	return total
}
