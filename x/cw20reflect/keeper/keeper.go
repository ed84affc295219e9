package keeper

import (
	errorsmod "cosmossdk.io/errors"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	"github.com/cometbft/cometbft/libs/log"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

// Keeper is the contract core. It owns the reflected ledger in its own
// store namespace and turns cw20 operations into local writes plus the
// stargate bank messages that keep the native side in step.
type Keeper struct {
	storeKey storetypes.StoreKey
	querier  types.StargateQuerier

	// checkInvariants enables the defensive supply == sum-of-balances scan
	// after every mutating call. Tests turn it on; a full ledger scan is
	// too expensive for release gas budgets.
	checkInvariants bool
}

// Option configures a Keeper at construction time.
type Option func(*Keeper)

// WithInvariantChecks enables the defensive conservation scan.
func WithInvariantChecks() Option {
	return func(k *Keeper) { k.checkInvariants = true }
}

// NewKeeper wires the keeper to its store namespace and the host's
// stargate query gateway.
func NewKeeper(storeKey storetypes.StoreKey, querier types.StargateQuerier, opts ...Option) Keeper {
	k := Keeper{storeKey: storeKey, querier: querier}
	for _, opt := range opts {
		opt(&k)
	}
	return k
}

// Logger returns a module-scoped logger.
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/"+types.ModuleName)
}

// Instantiate creates the contract state: validated metadata, reflection
// state, optional minter and marketing info, and the initial distribution.
// Under locked custody the initial supply must be backed by native funds
// attached to the instantiation.
func (k Keeper) Instantiate(ctx sdk.Context, contractAddr sdk.AccAddress, msg types.InstantiateMsg, funds sdk.Coins) (*wasmvmtypes.Response, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if _, found := k.GetTokenInfo(ctx); found {
		return nil, errorsmod.Wrap(types.ErrUnauthorized, "contract already instantiated")
	}

	supply := msg.InitialSupply()
	if msg.CustodyMode == types.CustodyLocked && supply.IsPositive() {
		attached := funds.AmountOf(msg.Denom)
		if attached.LT(supply) {
			return nil, errorsmod.Wrapf(types.ErrInsufficientFunds,
				"initial supply %s%s exceeds attached native funds %s%s", supply, msg.Denom, attached, msg.Denom)
		}
	}

	k.setTokenMetadata(ctx, types.TokenInfo{
		Name:     msg.Name,
		Symbol:   msg.Symbol,
		Decimals: msg.Decimals,
	})
	k.setReflectionState(ctx, types.ReflectionState{
		ContractAddress: contractAddr.String(),
		Denom:           msg.Denom,
		CustodyMode:     msg.CustodyMode,
	})
	if msg.Mint != nil {
		k.setMinter(ctx, msg.Mint)
	}
	if msg.Marketing != nil {
		k.setMarketing(ctx, msg.Marketing)
	}
	for _, ib := range msg.InitialBalances {
		addr := sdk.MustAccAddressFromBech32(ib.Address)
		k.setBalance(ctx, addr, ib.Amount)
	}
	k.setTotalSupply(ctx, supply)

	if err := k.afterMutation(ctx); err != nil {
		return nil, err
	}
	k.Logger(ctx).Info("instantiated reflection contract",
		"symbol", msg.Symbol, "denom", msg.Denom, "custody", string(msg.CustodyMode))

	return newResponse("instantiate",
		nil,
		wasmvmtypes.EventAttribute{Key: "denom", Value: msg.Denom},
		wasmvmtypes.EventAttribute{Key: "custody_mode", Value: string(msg.CustodyMode)},
		wasmvmtypes.EventAttribute{Key: "total_supply", Value: supply.String()},
	), nil
}

// reflectionState loads the instance record or fails the invocation when
// the contract was never instantiated.
func (k Keeper) reflectionState(ctx sdk.Context) (types.ReflectionState, error) {
	state, found := k.GetReflectionState(ctx)
	if !found {
		return types.ReflectionState{}, errorsmod.Wrap(types.ErrUnauthorized, "contract not instantiated")
	}
	return state, nil
}

func newResponse(action string, msgs []wasmvmtypes.SubMsg, attrs ...wasmvmtypes.EventAttribute) *wasmvmtypes.Response {
	return &wasmvmtypes.Response{
		Messages: msgs,
		Attributes: append([]wasmvmtypes.EventAttribute{
			{Key: "action", Value: action},
		}, attrs...),
	}
}
