package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName is the codespace and log/event namespace of the contract.
	ModuleName = "cw20reflect"

	// StoreKey is the name of the KV store the host mounts for the contract.
	StoreKey = ModuleName
)

// Store layout, all under the contract's own prefix:
//
//	0x01                                  -> token metadata
//	0x02                                  -> reflection state
//	0x03                                  -> cached total supply
//	0x04 | len(addr) | addr              -> balance
//	0x05 | len(owner) | owner
//	     | len(spender) | spender        -> allowance record
//	0x06                                  -> minter info
//	0x07                                  -> marketing info
var (
	TokenInfoKey       = []byte{0x01}
	ReflectionStateKey = []byte{0x02}
	TotalSupplyKey     = []byte{0x03}
	BalancePrefix      = []byte{0x04}
	AllowancePrefix    = []byte{0x05}
	MinterKey          = []byte{0x06}
	MarketingKey       = []byte{0x07}
)

// BalanceKey returns the store key of an account balance under BalancePrefix.
func BalanceKey(addr sdk.AccAddress) []byte {
	return address.MustLengthPrefix(addr)
}

// AllowanceKey returns the store key of an owner/spender allowance record
// under AllowancePrefix.
func AllowanceKey(owner, spender sdk.AccAddress) []byte {
	return append(address.MustLengthPrefix(owner), address.MustLengthPrefix(spender)...)
}

// OwnerAllowancesPrefix returns the common prefix of all allowance records
// granted by owner, used for enumeration.
func OwnerAllowancesPrefix(owner sdk.AccAddress) []byte {
	return address.MustLengthPrefix(owner)
}
