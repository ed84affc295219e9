package keeper

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	dbm "github.com/cometbft/cometbft-db"
	"github.com/cometbft/cometbft/libs/log"
	tmproto "github.com/cometbft/cometbft/proto/tendermint/types"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	"github.com/cosmos/cosmos-sdk/store"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/stargate"
	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

const testDenom = "uusd"

type testEnv struct {
	ctx      sdk.Context
	keeper   Keeper
	storeKey storetypes.StoreKey
	querier  *stubQuerier
	contract sdk.AccAddress
}

func createTestEnv(t testing.TB) *testEnv {
	return createTestEnvWithDB(t, dbm.NewMemDB())
}

func createTestEnvWithDB(t testing.TB, db dbm.DB) *testEnv {
	key := storetypes.NewKVStoreKey(types.StoreKey)
	ms := store.NewCommitMultiStore(db)
	ms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, db)
	require.NoError(t, ms.LoadLatestVersion())

	ctx := sdk.NewContext(ms, tmproto.Header{
		Height: 20,
		Time:   time.Unix(1700000000, 0),
	}, false, log.NewNopLogger())

	querier := &stubQuerier{balances: map[string]sdkmath.Int{}}
	return &testEnv{
		ctx:      ctx,
		keeper:   NewKeeper(key, querier, WithInvariantChecks()),
		storeKey: key,
		querier:  querier,
		contract: randomAddr(),
	}
}

// stubQuerier stands in for the host's stargate gateway: it answers bank
// balance queries from an in-memory table, doing the same protobuf
// round-trip the real gateway would.
type stubQuerier struct {
	balances map[string]sdkmath.Int
}

func (q *stubQuerier) setBalance(addr string, amt sdkmath.Int) {
	q.balances[addr] = amt
}

func (q *stubQuerier) QueryStargate(_ sdk.Context, path string, req []byte) ([]byte, error) {
	if path != stargate.QueryBalancePath {
		return nil, fmt.Errorf("unhandled stargate path %s", path)
	}
	r, err := stargate.DecodeQueryBalance(req)
	if err != nil {
		return nil, err
	}
	amt, ok := q.balances[r.Address]
	if !ok {
		amt = sdkmath.ZeroInt()
	}
	return stargate.EncodeQueryBalanceResponse(sdk.NewCoin(r.Denom, amt))
}

func randomAddr() sdk.AccAddress {
	return sdk.AccAddress(secp256k1.GenPrivKey().PubKey().Address())
}

func defaultInstantiateMsg(mode types.CustodyMode, initial ...types.Cw20Coin) types.InstantiateMsg {
	return types.InstantiateMsg{
		Name:            "Reflected USD",
		Symbol:          "RUSD",
		Decimals:        6,
		Denom:           testDenom,
		CustodyMode:     mode,
		InitialBalances: initial,
	}
}

func (e *testEnv) mustInstantiate(t testing.TB, msg types.InstantiateMsg, funds sdk.Coins) {
	t.Helper()
	_, err := e.keeper.Instantiate(e.ctx, e.contract, msg, funds)
	require.NoError(t, err)
}

func (e *testEnv) execute(t testing.TB, caller sdk.AccAddress, msg types.ExecuteMsg, funds sdk.Coins) (*wasmvmtypes.Response, error) {
	t.Helper()
	bz, err := json.Marshal(msg)
	require.NoError(t, err)
	return e.keeper.Execute(e.ctx, caller, bz, funds)
}

func (e *testEnv) balance(addr sdk.AccAddress) sdkmath.Int {
	return e.keeper.GetBalance(e.ctx, addr)
}

func (e *testEnv) sumOfBalances() sdkmath.Int {
	sum := sdkmath.ZeroInt()
	e.keeper.IterateBalances(e.ctx, func(_ sdk.AccAddress, amt sdkmath.Int) bool {
		sum = sum.Add(amt)
		return false
	})
	return sum
}

func coins(amount int64) sdk.Coins {
	return sdk.NewCoins(sdk.NewInt64Coin(testDenom, amount))
}
