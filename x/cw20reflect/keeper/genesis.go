package keeper

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

// InitGenesis loads a previously exported ledger into a fresh store.
func (k Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	k.setTokenMetadata(ctx, gs.TokenInfo)
	k.setReflectionState(ctx, gs.Reflection)
	if gs.Minter != nil {
		k.setMinter(ctx, gs.Minter)
	}
	if gs.Marketing != nil {
		k.setMarketing(ctx, gs.Marketing)
	}
	for _, b := range gs.Balances {
		k.setBalance(ctx, sdk.MustAccAddressFromBech32(b.Address), b.Amount)
	}
	for _, a := range gs.Allowances {
		k.setAllowance(ctx,
			sdk.MustAccAddressFromBech32(a.Owner),
			sdk.MustAccAddressFromBech32(a.Spender),
			types.AllowanceInfo{Allowance: a.Allowance, Expires: a.Expires},
		)
	}
	k.setTotalSupply(ctx, gs.TokenInfo.TotalSupply)
	return k.afterMutation(ctx)
}

// ExportGenesis dumps the full ledger in store order.
func (k Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	info, _ := k.GetTokenInfo(ctx)
	state, _ := k.GetReflectionState(ctx)

	gs := &types.GenesisState{
		TokenInfo:  info,
		Reflection: state,
		Minter:     k.GetMinter(ctx),
		Marketing:  k.GetMarketing(ctx),
		Balances:   []types.Balance{},
		Allowances: []types.GenesisAllowance{},
	}
	k.IterateBalances(ctx, func(addr sdk.AccAddress, amt sdkmath.Int) bool {
		gs.Balances = append(gs.Balances, types.Balance{Address: addr.String(), Amount: amt})
		return false
	})
	k.IterateAllAllowances(ctx, func(owner, spender sdk.AccAddress, info types.AllowanceInfo) bool {
		gs.Allowances = append(gs.Allowances, types.GenesisAllowance{
			Owner:     owner.String(),
			Spender:   spender.String(),
			Allowance: info.Allowance,
			Expires:   info.Expires,
		})
		return false
	})
	return gs
}
