package keeper

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/stargate"
	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

// The reflection engine: every balance-changing operation mutates the
// ledger and, where the custody model requires it, emits the matching
// native bank send in the same invocation. The two sides can only diverge
// while an emitted message is still in flight, never across a committed
// transaction boundary.

func validateAmount(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return errorsmod.Wrap(types.ErrInvalidAmount, "amount must be positive")
	}
	if amount.GT(types.MaxUint128) {
		return errorsmod.Wrap(types.ErrInvalidAmount, "amount exceeds uint128 range")
	}
	return nil
}

// transfer moves amount from one reflected account to another. Under
// passthrough custody the native coin follows the recipient out of the
// contract's custodial balance; under locked custody it stays locked.
func (k Keeper) transfer(ctx sdk.Context, from, to sdk.AccAddress, amount sdkmath.Int) ([]wasmvmtypes.SubMsg, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	fromBal := k.GetBalance(ctx, from)
	if fromBal.LT(amount) {
		return nil, errorsmod.Wrapf(types.ErrInsufficientFunds,
			"balance %s, need %s", fromBal, amount)
	}
	k.setBalance(ctx, from, fromBal.Sub(amount))
	k.setBalance(ctx, to, k.GetBalance(ctx, to).Add(amount))

	var msgs []wasmvmtypes.SubMsg
	state, err := k.reflectionState(ctx)
	if err != nil {
		return nil, err
	}
	if state.CustodyMode == types.CustodyPassthrough {
		sub, err := k.custodySend(ctx, state, to, amount)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, sub)
	}
	return msgs, k.afterMutation(ctx)
}

// burn retires amount from owner's balance and the supply cache, releasing
// the equivalent native coin from contract custody back to the owner.
func (k Keeper) burn(ctx sdk.Context, owner sdk.AccAddress, amount sdkmath.Int) ([]wasmvmtypes.SubMsg, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	bal := k.GetBalance(ctx, owner)
	if bal.LT(amount) {
		return nil, errorsmod.Wrapf(types.ErrInsufficientFunds,
			"balance %s, need %s", bal, amount)
	}
	state, err := k.reflectionState(ctx)
	if err != nil {
		return nil, err
	}
	k.setBalance(ctx, owner, bal.Sub(amount))
	supply := k.GetTotalSupply(ctx)
	if err := k.updateTotalSupply(ctx, supply, supply.Sub(amount)); err != nil {
		return nil, err
	}
	sub, err := k.custodySend(ctx, state, owner, amount)
	if err != nil {
		return nil, err
	}
	return []wasmvmtypes.SubMsg{sub}, k.afterMutation(ctx)
}

// mint grows recipient's balance and the supply cache. Passthrough custody
// only; the dispatcher has already checked the minter. The grown supply is
// reconciled against the contract's live native holdings, which the minter
// must have funded beforehand.
func (k Keeper) mint(ctx sdk.Context, recipient sdk.AccAddress, amount sdkmath.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	supply := k.GetTotalSupply(ctx)
	newSupply := supply.Add(amount)
	if minter := k.GetMinter(ctx); minter != nil && minter.Cap != nil && newSupply.GT(*minter.Cap) {
		return errorsmod.Wrapf(types.ErrInvalidAmount,
			"minting %s would exceed cap %s", amount, minter.Cap)
	}
	if err := k.reconcileSupply(ctx, newSupply); err != nil {
		return err
	}
	k.setBalance(ctx, recipient, k.GetBalance(ctx, recipient).Add(amount))
	if err := k.updateTotalSupply(ctx, supply, newSupply); err != nil {
		return err
	}
	return k.afterMutation(ctx)
}

// deposit credits the sender with the native funds attached to the
// invocation. Locked custody only. The host has already moved the attached
// coins into the contract's account, so the grown supply must be covered
// by a live native balance query before the ledger is touched.
func (k Keeper) deposit(ctx sdk.Context, sender sdk.AccAddress, funds sdk.Coins) (sdkmath.Int, error) {
	state, err := k.reflectionState(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	amount := funds.AmountOf(state.Denom)
	if !amount.IsPositive() {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrInvalidAmount,
			"deposit requires attached %s funds", state.Denom)
	}
	if err := validateAmount(amount); err != nil {
		return sdkmath.Int{}, err
	}
	supply := k.GetTotalSupply(ctx)
	newSupply := supply.Add(amount)
	if minter := k.GetMinter(ctx); minter != nil && minter.Cap != nil && newSupply.GT(*minter.Cap) {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrInvalidAmount,
			"deposit of %s would exceed cap %s", amount, minter.Cap)
	}
	if err := k.reconcileSupply(ctx, newSupply); err != nil {
		return sdkmath.Int{}, err
	}
	k.setBalance(ctx, sender, k.GetBalance(ctx, sender).Add(amount))
	if err := k.updateTotalSupply(ctx, supply, newSupply); err != nil {
		return sdkmath.Int{}, err
	}
	return amount, k.afterMutation(ctx)
}

// reconcileSupply cross-checks the ledger against the chain: the contract's
// native holdings must cover the supply the ledger is about to claim. This
// is the point where externally caused divergence (funds moved outside the
// reflection flow) is caught.
func (k Keeper) reconcileSupply(ctx sdk.Context, requiredSupply sdkmath.Int) error {
	native, err := k.nativeBalance(ctx)
	if err != nil {
		return err
	}
	if native.LT(requiredSupply) {
		return errorsmod.Wrapf(types.ErrSupplyMismatch,
			"native holdings %s cannot back supply %s", native, requiredSupply)
	}
	return nil
}

// nativeBalance queries the contract's own bank balance through the host's
// stargate gateway.
func (k Keeper) nativeBalance(ctx sdk.Context) (sdkmath.Int, error) {
	state, err := k.reflectionState(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	req, err := stargate.EncodeQueryBalance(state.ContractAddress, state.Denom)
	if err != nil {
		return sdkmath.Int{}, err
	}
	respBz, err := k.querier.QueryStargate(ctx, stargate.QueryBalancePath, req)
	if err != nil {
		return sdkmath.Int{}, errorsmod.Wrap(types.ErrMalformedWireData, err.Error())
	}
	coin, err := stargate.DecodeQueryBalanceResponse(respBz)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return coin.Amount, nil
}

// custodySend builds the fire-and-forget stargate bank send moving amount
// of the native denom out of contract custody to recipient.
func (k Keeper) custodySend(ctx sdk.Context, state types.ReflectionState, to sdk.AccAddress, amount sdkmath.Int) (wasmvmtypes.SubMsg, error) {
	bz, err := stargate.EncodeMsgSend(state.ContractAddress, to.String(), sdk.NewCoin(state.Denom, amount))
	if err != nil {
		return wasmvmtypes.SubMsg{}, err
	}
	return wasmvmtypes.SubMsg{
		Msg: wasmvmtypes.CosmosMsg{
			Stargate: &wasmvmtypes.StargateMsg{
				TypeURL: stargate.MsgSendTypeURL,
				Value:   bz,
			},
		},
		ReplyOn: wasmvmtypes.ReplyNever,
	}, nil
}

// sendToContract is transfer plus the receive hook submessage delivered to
// the recipient contract.
func (k Keeper) sendToContract(ctx sdk.Context, sender, contract sdk.AccAddress, amount sdkmath.Int, payload json.RawMessage) ([]wasmvmtypes.SubMsg, error) {
	msgs, err := k.transfer(ctx, sender, contract, amount)
	if err != nil {
		return nil, err
	}
	hook := types.ReceiverExecuteMsg{Receive: &types.Cw20ReceiveMsg{
		Sender: sender.String(),
		Amount: amount,
		Msg:    payload,
	}}
	bz, err := json.Marshal(hook)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrUnknownMessage, err.Error())
	}
	msgs = append(msgs, wasmvmtypes.SubMsg{
		Msg: wasmvmtypes.CosmosMsg{
			Wasm: &wasmvmtypes.WasmMsg{
				Execute: &wasmvmtypes.ExecuteMsg{
					ContractAddr: contract.String(),
					Msg:          bz,
				},
			},
		},
		ReplyOn: wasmvmtypes.ReplyNever,
	})
	return msgs, nil
}

// increaseAllowance grows (or creates) the owner->spender allowance. An
// expired record is treated as zero and overwritten, which is also its
// lazy purge.
func (k Keeper) increaseAllowance(ctx sdk.Context, owner, spender sdk.AccAddress, amount sdkmath.Int, expires *types.Expiration) error {
	if owner.Equals(spender) {
		return errorsmod.Wrap(types.ErrUnauthorized, "cannot set allowance on own account")
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if err := expires.Validate(); err != nil {
		return err
	}
	if expires != nil && expires.IsExpired(ctx) {
		return errorsmod.Wrap(types.ErrAllowanceExpired, "cannot set an already expired expiration")
	}
	cur, found := k.GetAllowance(ctx, owner, spender)
	if !found || cur.Expires.IsExpired(ctx) {
		cur = types.AllowanceInfo{Allowance: sdkmath.ZeroInt()}
	}
	if expires != nil {
		cur.Expires = expires
	}
	cur.Allowance = cur.Allowance.Add(amount)
	if cur.Allowance.GT(types.MaxUint128) {
		return errorsmod.Wrap(types.ErrInvalidAmount, "allowance exceeds uint128 range")
	}
	k.setAllowance(ctx, owner, spender, cur)
	return nil
}

// decreaseAllowance shrinks the owner->spender allowance, saturating at
// zero; a zero remainder deletes the record.
func (k Keeper) decreaseAllowance(ctx sdk.Context, owner, spender sdk.AccAddress, amount sdkmath.Int, expires *types.Expiration) error {
	if owner.Equals(spender) {
		return errorsmod.Wrap(types.ErrUnauthorized, "cannot set allowance on own account")
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if err := expires.Validate(); err != nil {
		return err
	}
	if expires != nil && expires.IsExpired(ctx) {
		return errorsmod.Wrap(types.ErrAllowanceExpired, "cannot set an already expired expiration")
	}
	cur, found := k.GetAllowance(ctx, owner, spender)
	if !found || cur.Expires.IsExpired(ctx) {
		// expired records are lazily purged on the write touching the pair
		k.deleteAllowance(ctx, owner, spender)
		return errorsmod.Wrapf(types.ErrNoAllowance, "%s has no allowance from %s", spender, owner)
	}
	if cur.Allowance.LTE(amount) {
		k.deleteAllowance(ctx, owner, spender)
		return nil
	}
	cur.Allowance = cur.Allowance.Sub(amount)
	if expires != nil {
		cur.Expires = expires
	}
	k.setAllowance(ctx, owner, spender, cur)
	return nil
}

// spendAllowance burns amount out of the owner->spender allowance before
// any balance moves, so an undersized or expired grant fails the whole
// invocation untouched.
func (k Keeper) spendAllowance(ctx sdk.Context, owner, spender sdk.AccAddress, amount sdkmath.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	cur, found := k.GetAllowance(ctx, owner, spender)
	if !found {
		return errorsmod.Wrapf(types.ErrNoAllowance, "%s has no allowance from %s", spender, owner)
	}
	if cur.Expires.IsExpired(ctx) {
		k.deleteAllowance(ctx, owner, spender)
		return errorsmod.Wrapf(types.ErrAllowanceExpired, "allowance from %s expired", owner)
	}
	if cur.Allowance.LT(amount) {
		return errorsmod.Wrapf(types.ErrNoAllowance,
			"allowance %s, need %s", cur.Allowance, amount)
	}
	cur.Allowance = cur.Allowance.Sub(amount)
	if cur.Allowance.IsZero() {
		k.deleteAllowance(ctx, owner, spender)
		return nil
	}
	k.setAllowance(ctx, owner, spender, cur)
	return nil
}
