package types

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Balance is one exported account balance.
type Balance struct {
	Address string      `json:"address"`
	Amount  sdkmath.Int `json:"amount"`
}

// GenesisAllowance is one exported allowance record.
type GenesisAllowance struct {
	Owner     string      `json:"owner"`
	Spender   string      `json:"spender"`
	Allowance sdkmath.Int `json:"allowance"`
	Expires   *Expiration `json:"expires,omitempty"`
}

// GenesisState is the full exported ledger of one contract instance.
type GenesisState struct {
	TokenInfo  TokenInfo          `json:"token_info"`
	Reflection ReflectionState    `json:"reflection"`
	Minter     *MinterInfo        `json:"minter,omitempty"`
	Marketing  *MarketingInfo     `json:"marketing,omitempty"`
	Balances   []Balance          `json:"balances"`
	Allowances []GenesisAllowance `json:"allowances"`
}

// Validate checks addresses, amount ranges and the conservation invariant:
// the cached total supply must equal the sum of the exported balances.
func (gs GenesisState) Validate() error {
	if err := sdk.ValidateDenom(gs.Reflection.Denom); err != nil {
		return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "native denom: %s", err)
	}
	if err := gs.Reflection.CustodyMode.Validate(); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(gs.Reflection.ContractAddress); err != nil {
		return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "contract address: %s", err)
	}
	if gs.Minter != nil {
		if _, err := sdk.AccAddressFromBech32(gs.Minter.Minter); err != nil {
			return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "minter address: %s", err)
		}
	}

	sum := sdkmath.ZeroInt()
	seen := make(map[string]struct{}, len(gs.Balances))
	for _, b := range gs.Balances {
		if _, err := sdk.AccAddressFromBech32(b.Address); err != nil {
			return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "balance address: %s", err)
		}
		if _, ok := seen[b.Address]; ok {
			return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "duplicate balance for %s", b.Address)
		}
		seen[b.Address] = struct{}{}
		if b.Amount.IsNil() || !b.Amount.IsPositive() || b.Amount.GT(MaxUint128) {
			return errorsmod.Wrapf(ErrInvalidAmount, "balance for %s", b.Address)
		}
		sum = sum.Add(b.Amount)
	}
	if gs.TokenInfo.TotalSupply.IsNil() || !gs.TokenInfo.TotalSupply.Equal(sum) {
		return errorsmod.Wrapf(ErrSupplyMismatch,
			"total supply %s does not match sum of balances %s", gs.TokenInfo.TotalSupply, sum)
	}

	for _, a := range gs.Allowances {
		if _, err := sdk.AccAddressFromBech32(a.Owner); err != nil {
			return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "allowance owner: %s", err)
		}
		if _, err := sdk.AccAddressFromBech32(a.Spender); err != nil {
			return errorsmod.Wrapf(ErrInvalidInstantiateMsg, "allowance spender: %s", err)
		}
		if a.Allowance.IsNil() || !a.Allowance.IsPositive() || a.Allowance.GT(MaxUint128) {
			return errorsmod.Wrapf(ErrInvalidAmount, "allowance %s -> %s", a.Owner, a.Spender)
		}
		if err := a.Expires.Validate(); err != nil {
			return err
		}
	}
	return nil
}
