package keeper

import (
	"bytes"
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

// Execute is the single entry point for cw20 execute messages. It decodes
// the JSON envelope strictly, authorizes privileged variants before the
// engine runs, routes each variant to exactly one engine operation, and
// commits the invocation's writes only when the whole operation succeeds.
func (k Keeper) Execute(ctx sdk.Context, caller sdk.AccAddress, msg []byte, funds sdk.Coins) (*wasmvmtypes.Response, error) {
	exec, err := decodeExecuteMsg(msg)
	if err != nil {
		return nil, err
	}

	cacheCtx, commit := ctx.CacheContext()
	res, err := k.dispatch(cacheCtx, caller, exec, funds)
	if err != nil {
		return nil, err
	}
	commit()

	k.Logger(ctx).Debug("executed cw20 message", "sender", caller.String())
	return res, nil
}

func decodeExecuteMsg(msg []byte) (types.ExecuteMsg, error) {
	var exec types.ExecuteMsg
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&exec); err != nil {
		return types.ExecuteMsg{}, errorsmod.Wrap(types.ErrUnknownMessage, err.Error())
	}
	variants := 0
	for _, set := range []bool{
		exec.Transfer != nil, exec.Send != nil, exec.Burn != nil,
		exec.Mint != nil, exec.Deposit != nil,
		exec.IncreaseAllowance != nil, exec.DecreaseAllowance != nil,
		exec.TransferFrom != nil, exec.SendFrom != nil, exec.BurnFrom != nil,
	} {
		if set {
			variants++
		}
	}
	if variants != 1 {
		return types.ExecuteMsg{}, errorsmod.Wrapf(types.ErrUnknownMessage,
			"expected exactly one cw20 execute variant, got %d", variants)
	}
	return exec, nil
}

func (k Keeper) dispatch(ctx sdk.Context, caller sdk.AccAddress, exec types.ExecuteMsg, funds sdk.Coins) (*wasmvmtypes.Response, error) {
	// only deposit is payable; accepting coins on any other variant would
	// strand them in the contract's account outside the reflected supply
	if exec.Deposit == nil && !funds.IsZero() {
		return nil, errorsmod.Wrap(types.ErrInvalidAmount, "this message accepts no funds")
	}

	switch {
	case exec.Transfer != nil:
		to, err := parseAddr(exec.Transfer.Recipient)
		if err != nil {
			return nil, err
		}
		msgs, err := k.transfer(ctx, caller, to, exec.Transfer.Amount)
		if err != nil {
			return nil, err
		}
		return newResponse("transfer", msgs,
			attr("from", caller.String()),
			attr("to", exec.Transfer.Recipient),
			attr("amount", exec.Transfer.Amount.String()),
		), nil

	case exec.Send != nil:
		contract, err := parseAddr(exec.Send.Contract)
		if err != nil {
			return nil, err
		}
		msgs, err := k.sendToContract(ctx, caller, contract, exec.Send.Amount, exec.Send.Msg)
		if err != nil {
			return nil, err
		}
		return newResponse("send", msgs,
			attr("from", caller.String()),
			attr("to", exec.Send.Contract),
			attr("amount", exec.Send.Amount.String()),
		), nil

	case exec.Burn != nil:
		msgs, err := k.burn(ctx, caller, exec.Burn.Amount)
		if err != nil {
			return nil, err
		}
		return newResponse("burn", msgs,
			attr("from", caller.String()),
			attr("amount", exec.Burn.Amount.String()),
		), nil

	case exec.Mint != nil:
		if err := k.authorizeMint(ctx, caller); err != nil {
			return nil, err
		}
		to, err := parseAddr(exec.Mint.Recipient)
		if err != nil {
			return nil, err
		}
		if err := k.mint(ctx, to, exec.Mint.Amount); err != nil {
			return nil, err
		}
		return newResponse("mint", nil,
			attr("to", exec.Mint.Recipient),
			attr("amount", exec.Mint.Amount.String()),
		), nil

	case exec.Deposit != nil:
		state, err := k.reflectionState(ctx)
		if err != nil {
			return nil, err
		}
		if state.CustodyMode != types.CustodyLocked {
			return nil, errorsmod.Wrap(types.ErrUnauthorized, "deposits are only accepted under locked custody")
		}
		amount, err := k.deposit(ctx, caller, funds)
		if err != nil {
			return nil, err
		}
		return newResponse("deposit", nil,
			attr("to", caller.String()),
			attr("amount", amount.String()),
		), nil

	case exec.IncreaseAllowance != nil:
		spender, err := parseAddr(exec.IncreaseAllowance.Spender)
		if err != nil {
			return nil, err
		}
		if err := k.increaseAllowance(ctx, caller, spender, exec.IncreaseAllowance.Amount, exec.IncreaseAllowance.Expires); err != nil {
			return nil, err
		}
		return newResponse("increase_allowance", nil,
			attr("owner", caller.String()),
			attr("spender", exec.IncreaseAllowance.Spender),
			attr("amount", exec.IncreaseAllowance.Amount.String()),
		), nil

	case exec.DecreaseAllowance != nil:
		spender, err := parseAddr(exec.DecreaseAllowance.Spender)
		if err != nil {
			return nil, err
		}
		if err := k.decreaseAllowance(ctx, caller, spender, exec.DecreaseAllowance.Amount, exec.DecreaseAllowance.Expires); err != nil {
			return nil, err
		}
		return newResponse("decrease_allowance", nil,
			attr("owner", caller.String()),
			attr("spender", exec.DecreaseAllowance.Spender),
			attr("amount", exec.DecreaseAllowance.Amount.String()),
		), nil

	case exec.TransferFrom != nil:
		owner, err := parseAddr(exec.TransferFrom.Owner)
		if err != nil {
			return nil, err
		}
		to, err := parseAddr(exec.TransferFrom.Recipient)
		if err != nil {
			return nil, err
		}
		if err := k.spendAllowance(ctx, owner, caller, exec.TransferFrom.Amount); err != nil {
			return nil, err
		}
		msgs, err := k.transfer(ctx, owner, to, exec.TransferFrom.Amount)
		if err != nil {
			return nil, err
		}
		return newResponse("transfer_from", msgs,
			attr("from", exec.TransferFrom.Owner),
			attr("to", exec.TransferFrom.Recipient),
			attr("by", caller.String()),
			attr("amount", exec.TransferFrom.Amount.String()),
		), nil

	case exec.SendFrom != nil:
		owner, err := parseAddr(exec.SendFrom.Owner)
		if err != nil {
			return nil, err
		}
		contract, err := parseAddr(exec.SendFrom.Contract)
		if err != nil {
			return nil, err
		}
		if err := k.spendAllowance(ctx, owner, caller, exec.SendFrom.Amount); err != nil {
			return nil, err
		}
		msgs, err := k.sendToContract(ctx, owner, contract, exec.SendFrom.Amount, exec.SendFrom.Msg)
		if err != nil {
			return nil, err
		}
		return newResponse("send_from", msgs,
			attr("from", exec.SendFrom.Owner),
			attr("to", exec.SendFrom.Contract),
			attr("by", caller.String()),
			attr("amount", exec.SendFrom.Amount.String()),
		), nil

	case exec.BurnFrom != nil:
		owner, err := parseAddr(exec.BurnFrom.Owner)
		if err != nil {
			return nil, err
		}
		if err := k.spendAllowance(ctx, owner, caller, exec.BurnFrom.Amount); err != nil {
			return nil, err
		}
		msgs, err := k.burn(ctx, owner, exec.BurnFrom.Amount)
		if err != nil {
			return nil, err
		}
		return newResponse("burn_from", msgs,
			attr("from", exec.BurnFrom.Owner),
			attr("by", caller.String()),
			attr("amount", exec.BurnFrom.Amount.String()),
		), nil

	default:
		return nil, errorsmod.Wrap(types.ErrUnknownMessage, "unrecognized cw20 execute variant")
	}
}

// authorizeMint gates the privileged mint path: passthrough custody only,
// and only for the configured minter.
func (k Keeper) authorizeMint(ctx sdk.Context, caller sdk.AccAddress) error {
	state, err := k.reflectionState(ctx)
	if err != nil {
		return err
	}
	if state.CustodyMode != types.CustodyPassthrough {
		return errorsmod.Wrap(types.ErrUnauthorized, "minting is deposit-driven under locked custody")
	}
	minter := k.GetMinter(ctx)
	if minter == nil {
		return errorsmod.Wrap(types.ErrUnauthorized, "token has no minter")
	}
	if minter.Minter != caller.String() {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s is not the minter", caller)
	}
	return nil
}

func parseAddr(s string) (sdk.AccAddress, error) {
	addr, err := sdk.AccAddressFromBech32(s)
	if err != nil {
		return nil, errorsmod.Wrapf(sdkerrors.ErrInvalidAddress, "%s: %s", s, err)
	}
	return addr, nil
}

func attr(key, value string) wasmvmtypes.EventAttribute {
	return wasmvmtypes.EventAttribute{Key: key, Value: value}
}
