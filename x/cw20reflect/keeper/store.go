package keeper

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

// The ledger store: typed accessors over the contract's store namespace.
// All mutation goes through these; nothing else holds ledger state.

func (k Keeper) balances(ctx sdk.Context) prefix.Store {
	return prefix.NewStore(ctx.KVStore(k.storeKey), types.BalancePrefix)
}

func (k Keeper) allowances(ctx sdk.Context) prefix.Store {
	return prefix.NewStore(ctx.KVStore(k.storeKey), types.AllowancePrefix)
}

// GetBalance returns the reflected balance of addr, zero when untracked.
func (k Keeper) GetBalance(ctx sdk.Context, addr sdk.AccAddress) sdkmath.Int {
	bz := k.balances(ctx).Get(types.BalanceKey(addr))
	if bz == nil {
		return sdkmath.ZeroInt()
	}
	var amt sdkmath.Int
	if err := amt.Unmarshal(bz); err != nil {
		panic(err)
	}
	return amt
}

// setBalance writes addr's balance, deleting the record when it reaches
// zero so account enumeration only sees live holders.
func (k Keeper) setBalance(ctx sdk.Context, addr sdk.AccAddress, amt sdkmath.Int) {
	if amt.IsNegative() {
		panic("negative balance write")
	}
	store := k.balances(ctx)
	if amt.IsZero() {
		store.Delete(types.BalanceKey(addr))
		return
	}
	bz, err := amt.Marshal()
	if err != nil {
		panic(err)
	}
	store.Set(types.BalanceKey(addr), bz)
}

// IterateBalances walks all account balances in store key order until cb
// returns true.
func (k Keeper) IterateBalances(ctx sdk.Context, cb func(addr sdk.AccAddress, amt sdkmath.Int) bool) {
	it := k.balances(ctx).Iterator(nil, nil)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		key := it.Key()
		addr := sdk.AccAddress(key[1 : 1+key[0]])
		var amt sdkmath.Int
		if err := amt.Unmarshal(it.Value()); err != nil {
			panic(err)
		}
		if cb(addr, amt) {
			return
		}
	}
}

// GetAllowance returns the stored allowance record for an owner/spender
// pair. Expiration is the caller's concern.
func (k Keeper) GetAllowance(ctx sdk.Context, owner, spender sdk.AccAddress) (types.AllowanceInfo, bool) {
	bz := k.allowances(ctx).Get(types.AllowanceKey(owner, spender))
	if bz == nil {
		return types.AllowanceInfo{}, false
	}
	var info types.AllowanceInfo
	if err := json.Unmarshal(bz, &info); err != nil {
		panic(err)
	}
	return info, true
}

func (k Keeper) setAllowance(ctx sdk.Context, owner, spender sdk.AccAddress, info types.AllowanceInfo) {
	bz, err := json.Marshal(info)
	if err != nil {
		panic(err)
	}
	k.allowances(ctx).Set(types.AllowanceKey(owner, spender), bz)
}

func (k Keeper) deleteAllowance(ctx sdk.Context, owner, spender sdk.AccAddress) {
	k.allowances(ctx).Delete(types.AllowanceKey(owner, spender))
}

// IterateOwnerAllowances walks the allowances granted by owner.
func (k Keeper) IterateOwnerAllowances(ctx sdk.Context, owner sdk.AccAddress, cb func(spender sdk.AccAddress, info types.AllowanceInfo) bool) {
	it := prefix.NewStore(k.allowances(ctx), types.OwnerAllowancesPrefix(owner)).Iterator(nil, nil)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		key := it.Key()
		spender := sdk.AccAddress(key[1 : 1+key[0]])
		var info types.AllowanceInfo
		if err := json.Unmarshal(it.Value(), &info); err != nil {
			panic(err)
		}
		if cb(spender, info) {
			return
		}
	}
}

// IterateAllAllowances walks every allowance record, for genesis export.
func (k Keeper) IterateAllAllowances(ctx sdk.Context, cb func(owner, spender sdk.AccAddress, info types.AllowanceInfo) bool) {
	it := k.allowances(ctx).Iterator(nil, nil)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		key := it.Key()
		ownerLen := key[0]
		owner := sdk.AccAddress(key[1 : 1+ownerLen])
		spenderKey := key[1+ownerLen:]
		spender := sdk.AccAddress(spenderKey[1 : 1+spenderKey[0]])
		var info types.AllowanceInfo
		if err := json.Unmarshal(it.Value(), &info); err != nil {
			panic(err)
		}
		if cb(owner, spender, info) {
			return
		}
	}
}

// GetTokenInfo returns the token metadata with the current supply cache
// filled in.
func (k Keeper) GetTokenInfo(ctx sdk.Context) (types.TokenInfo, bool) {
	bz := ctx.KVStore(k.storeKey).Get(types.TokenInfoKey)
	if bz == nil {
		return types.TokenInfo{}, false
	}
	var info types.TokenInfo
	if err := json.Unmarshal(bz, &info); err != nil {
		panic(err)
	}
	info.TotalSupply = k.GetTotalSupply(ctx)
	return info, true
}

// setTokenMetadata persists the immutable part of the token info; the
// supply cache lives under its own key.
func (k Keeper) setTokenMetadata(ctx sdk.Context, info types.TokenInfo) {
	info.TotalSupply = sdkmath.ZeroInt()
	bz, err := json.Marshal(info)
	if err != nil {
		panic(err)
	}
	ctx.KVStore(k.storeKey).Set(types.TokenInfoKey, bz)
}

// GetReflectionState returns the instance record.
func (k Keeper) GetReflectionState(ctx sdk.Context) (types.ReflectionState, bool) {
	bz := ctx.KVStore(k.storeKey).Get(types.ReflectionStateKey)
	if bz == nil {
		return types.ReflectionState{}, false
	}
	var state types.ReflectionState
	if err := json.Unmarshal(bz, &state); err != nil {
		panic(err)
	}
	return state, true
}

func (k Keeper) setReflectionState(ctx sdk.Context, state types.ReflectionState) {
	bz, err := json.Marshal(state)
	if err != nil {
		panic(err)
	}
	ctx.KVStore(k.storeKey).Set(types.ReflectionStateKey, bz)
}

// GetMinter returns the minter configuration, nil when the token is fixed
// supply.
func (k Keeper) GetMinter(ctx sdk.Context) *types.MinterInfo {
	bz := ctx.KVStore(k.storeKey).Get(types.MinterKey)
	if bz == nil {
		return nil
	}
	var info types.MinterInfo
	if err := json.Unmarshal(bz, &info); err != nil {
		panic(err)
	}
	return &info
}

func (k Keeper) setMinter(ctx sdk.Context, info *types.MinterInfo) {
	bz, err := json.Marshal(info)
	if err != nil {
		panic(err)
	}
	ctx.KVStore(k.storeKey).Set(types.MinterKey, bz)
}

// GetMarketing returns the marketing record, nil when absent.
func (k Keeper) GetMarketing(ctx sdk.Context) *types.MarketingInfo {
	bz := ctx.KVStore(k.storeKey).Get(types.MarketingKey)
	if bz == nil {
		return nil
	}
	var info types.MarketingInfo
	if err := json.Unmarshal(bz, &info); err != nil {
		panic(err)
	}
	return &info
}

func (k Keeper) setMarketing(ctx sdk.Context, info *types.MarketingInfo) {
	bz, err := json.Marshal(info)
	if err != nil {
		panic(err)
	}
	ctx.KVStore(k.storeKey).Set(types.MarketingKey, bz)
}

// GetTotalSupply returns the cached total supply.
func (k Keeper) GetTotalSupply(ctx sdk.Context) sdkmath.Int {
	bz := ctx.KVStore(k.storeKey).Get(types.TotalSupplyKey)
	if bz == nil {
		return sdkmath.ZeroInt()
	}
	var amt sdkmath.Int
	if err := amt.Unmarshal(bz); err != nil {
		panic(err)
	}
	return amt
}

func (k Keeper) setTotalSupply(ctx sdk.Context, amt sdkmath.Int) {
	bz, err := amt.Marshal()
	if err != nil {
		panic(err)
	}
	ctx.KVStore(k.storeKey).Set(types.TotalSupplyKey, bz)
}

// updateTotalSupply swaps the supply cache from the engine's observed value
// to the updated one. A stale expectation means the cache moved underneath
// the current operation, which the host's per-block serialization forbids;
// it is surfaced as a fatal SupplyMismatch.
func (k Keeper) updateTotalSupply(ctx sdk.Context, expected, updated sdkmath.Int) error {
	current := k.GetTotalSupply(ctx)
	if !current.Equal(expected) {
		return errorsmod.Wrapf(types.ErrSupplyMismatch,
			"supply cache holds %s, operation expected %s", current, expected)
	}
	if updated.IsNegative() {
		return errorsmod.Wrap(types.ErrSupplyMismatch, "total supply would turn negative")
	}
	if updated.GT(types.MaxUint128) {
		return errorsmod.Wrap(types.ErrInvalidAmount, "total supply exceeds uint128 range")
	}
	k.setTotalSupply(ctx, updated)
	return nil
}

// afterMutation runs the defensive conservation scan when enabled: the
// cached total supply must equal the sum of all reflected balances.
func (k Keeper) afterMutation(ctx sdk.Context) error {
	if !k.checkInvariants {
		return nil
	}
	sum := sdkmath.ZeroInt()
	k.IterateBalances(ctx, func(_ sdk.AccAddress, amt sdkmath.Int) bool {
		sum = sum.Add(amt)
		return false
	})
	if supply := k.GetTotalSupply(ctx); !sum.Equal(supply) {
		return errorsmod.Wrapf(types.ErrSupplyMismatch,
			"sum of balances %s != total supply %s", sum, supply)
	}
	return nil
}
