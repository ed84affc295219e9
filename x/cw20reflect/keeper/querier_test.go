package keeper

import (
	"encoding/json"
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

func (e *testEnv) query(t testing.TB, msg types.QueryMsg, into interface{}) {
	t.Helper()
	bz, err := e.keeper.Query(e.ctx, mustMarshal(t, msg))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(bz, into))
}

func TestQueryBalance(t *testing.T) {
	env := createTestEnv(t)
	alice := randomAddr()
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked,
		types.Cw20Coin{Address: alice.String(), Amount: sdkmath.NewInt(100)},
	), coins(100))

	var resp types.BalanceResponse
	env.query(t, types.QueryMsg{Balance: &types.BalanceQuery{Address: alice.String()}}, &resp)
	require.Equal(t, sdkmath.NewInt(100), resp.Balance)

	// untracked accounts read as zero, not as an error
	env.query(t, types.QueryMsg{Balance: &types.BalanceQuery{Address: randomAddr().String()}}, &resp)
	require.True(t, resp.Balance.IsZero())
}

func TestQueryTokenInfo(t *testing.T) {
	env := createTestEnv(t)
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked,
		types.Cw20Coin{Address: randomAddr().String(), Amount: sdkmath.NewInt(42)},
	), coins(42))

	var resp types.TokenInfoResponse
	env.query(t, types.QueryMsg{TokenInfo: &types.TokenInfoQuery{}}, &resp)
	require.Equal(t, "Reflected USD", resp.Name)
	require.Equal(t, "RUSD", resp.Symbol)
	require.Equal(t, uint8(6), resp.Decimals)
	require.Equal(t, sdkmath.NewInt(42), resp.TotalSupply)
}

func TestQueryMinter(t *testing.T) {
	env := createTestEnv(t)
	minter := randomAddr()
	mintCap := sdkmath.NewInt(9000)
	msg := defaultInstantiateMsg(types.CustodyPassthrough)
	msg.Mint = &types.MinterInfo{Minter: minter.String(), Cap: &mintCap}
	env.mustInstantiate(t, msg, nil)

	var resp *types.MinterResponse
	env.query(t, types.QueryMsg{Minter: &types.MinterQuery{}}, &resp)
	require.NotNil(t, resp)
	require.Equal(t, minter.String(), resp.Minter)
	require.Equal(t, mintCap, *resp.Cap)
}

func TestQueryMinterAbsent(t *testing.T) {
	env := createTestEnv(t)
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked), nil)

	bz, err := env.keeper.Query(env.ctx, mustMarshal(t, types.QueryMsg{Minter: &types.MinterQuery{}}))
	require.NoError(t, err)
	require.Equal(t, "null", string(bz))
}

func TestQueryMarketingInfo(t *testing.T) {
	env := createTestEnv(t)
	msg := defaultInstantiateMsg(types.CustodyLocked)
	msg.Marketing = &types.MarketingInfo{
		Project:     "dojoswap",
		Description: "reflected native USD",
	}
	env.mustInstantiate(t, msg, nil)

	var resp *types.MarketingInfo
	env.query(t, types.QueryMsg{MarketingInfo: &types.MarketingInfoQuery{}}, &resp)
	require.NotNil(t, resp)
	require.Equal(t, "dojoswap", resp.Project)
}

func TestQueryAllowanceAbsent(t *testing.T) {
	env := createTestEnv(t)
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked), nil)

	var resp types.AllowanceResponse
	env.query(t, types.QueryMsg{Allowance: &types.AllowanceQuery{
		Owner:   randomAddr().String(),
		Spender: randomAddr().String(),
	}}, &resp)
	require.True(t, resp.Allowance.IsZero())
	require.Nil(t, resp.Expires)
}

func TestQueryAllAccountsPagination(t *testing.T) {
	env := createTestEnv(t)
	initial := make([]types.Cw20Coin, 0, 5)
	for i := 0; i < 5; i++ {
		initial = append(initial, types.Cw20Coin{Address: randomAddr().String(), Amount: sdkmath.NewInt(10)})
	}
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked, initial...), coins(50))

	limit := uint32(2)
	seen := map[string]struct{}{}
	cursor := ""
	for {
		var resp types.AllAccountsResponse
		env.query(t, types.QueryMsg{AllAccounts: &types.AllAccountsQuery{
			StartAfter: cursor,
			Limit:      &limit,
		}}, &resp)
		if len(resp.Accounts) == 0 {
			break
		}
		require.LessOrEqual(t, len(resp.Accounts), int(limit))
		for _, acc := range resp.Accounts {
			_, dup := seen[acc]
			require.False(t, dup, "account %s returned twice", acc)
			seen[acc] = struct{}{}
		}
		cursor = resp.Accounts[len(resp.Accounts)-1]
	}
	require.Len(t, seen, 5)
}

func TestQueryAllAccountsDeletedCursor(t *testing.T) {
	env := createTestEnv(t)
	addrs := make([]sdk.AccAddress, 4)
	initial := make([]types.Cw20Coin, 0, len(addrs))
	for i := range addrs {
		addrs[i] = randomAddr()
		initial = append(initial, types.Cw20Coin{Address: addrs[i].String(), Amount: sdkmath.NewInt(10)})
	}
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked, initial...), coins(40))

	limit := uint32(1)
	var first types.AllAccountsResponse
	env.query(t, types.QueryMsg{AllAccounts: &types.AllAccountsQuery{Limit: &limit}}, &first)
	require.Len(t, first.Accounts, 1)
	cursor := first.Accounts[0]

	var cursorAddr, sink sdk.AccAddress
	for _, a := range addrs {
		if a.String() == cursor {
			cursorAddr = a
		} else if sink == nil {
			sink = a
		}
	}

	// draining the cursor account deletes its balance record
	_, err := env.execute(t, cursorAddr, types.ExecuteMsg{Transfer: &types.TransferMsg{
		Recipient: sink.String(), Amount: sdkmath.NewInt(10),
	}}, nil)
	require.NoError(t, err)

	// enumeration resumes after the gone cursor instead of ending early
	rest := uint32(30)
	var resp types.AllAccountsResponse
	env.query(t, types.QueryMsg{AllAccounts: &types.AllAccountsQuery{
		StartAfter: cursor,
		Limit:      &rest,
	}}, &resp)
	require.Len(t, resp.Accounts, 3)
	require.NotContains(t, resp.Accounts, cursor)
}

func TestQueryAllAccountsZeroLimit(t *testing.T) {
	env := createTestEnv(t)
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked,
		types.Cw20Coin{Address: randomAddr().String(), Amount: sdkmath.NewInt(10)},
	), coins(10))

	zero := uint32(0)
	var resp types.AllAccountsResponse
	env.query(t, types.QueryMsg{AllAccounts: &types.AllAccountsQuery{Limit: &zero}}, &resp)
	require.Empty(t, resp.Accounts)
}

func TestQueryAllAllowancesSkipsExpired(t *testing.T) {
	env := createTestEnv(t)
	owner, live, stale := randomAddr(), randomAddr(), randomAddr()
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked,
		types.Cw20Coin{Address: owner.String(), Amount: sdkmath.NewInt(100)},
	), coins(100))

	height := uint64(env.ctx.BlockHeight())
	_, err := env.execute(t, owner, types.ExecuteMsg{IncreaseAllowance: &types.IncreaseAllowanceMsg{
		Spender: live.String(), Amount: sdkmath.NewInt(5),
	}}, nil)
	require.NoError(t, err)
	_, err = env.execute(t, owner, types.ExecuteMsg{IncreaseAllowance: &types.IncreaseAllowanceMsg{
		Spender: stale.String(), Amount: sdkmath.NewInt(7),
		Expires: &types.Expiration{AtHeight: height + 1},
	}}, nil)
	require.NoError(t, err)

	env.ctx = env.ctx.WithBlockHeight(int64(height + 1))

	var resp types.AllAllowancesResponse
	env.query(t, types.QueryMsg{AllAllowances: &types.AllAllowancesQuery{Owner: owner.String()}}, &resp)
	require.Len(t, resp.Allowances, 1)
	require.Equal(t, live.String(), resp.Allowances[0].Spender)
	require.Equal(t, sdkmath.NewInt(5), resp.Allowances[0].Allowance)
}

func TestQueryAllAllowancesDeletedCursor(t *testing.T) {
	env := createTestEnv(t)
	owner := randomAddr()
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked,
		types.Cw20Coin{Address: owner.String(), Amount: sdkmath.NewInt(100)},
	), coins(100))

	spenders := make([]sdk.AccAddress, 3)
	for i := range spenders {
		spenders[i] = randomAddr()
		_, err := env.execute(t, owner, types.ExecuteMsg{IncreaseAllowance: &types.IncreaseAllowanceMsg{
			Spender: spenders[i].String(), Amount: sdkmath.NewInt(10),
		}}, nil)
		require.NoError(t, err)
	}

	limit := uint32(1)
	var first types.AllAllowancesResponse
	env.query(t, types.QueryMsg{AllAllowances: &types.AllAllowancesQuery{
		Owner: owner.String(), Limit: &limit,
	}}, &first)
	require.Len(t, first.Allowances, 1)
	cursor := first.Allowances[0].Spender

	// spending the whole grant deletes the cursor's allowance record
	cursorAddr, err := sdk.AccAddressFromBech32(cursor)
	require.NoError(t, err)
	_, err = env.execute(t, cursorAddr, types.ExecuteMsg{TransferFrom: &types.TransferFromMsg{
		Owner: owner.String(), Recipient: cursorAddr.String(), Amount: sdkmath.NewInt(10),
	}}, nil)
	require.NoError(t, err)

	rest := uint32(30)
	var resp types.AllAllowancesResponse
	env.query(t, types.QueryMsg{AllAllowances: &types.AllAllowancesQuery{
		Owner: owner.String(), StartAfter: cursor, Limit: &rest,
	}}, &resp)
	require.Len(t, resp.Allowances, 2)
	for _, a := range resp.Allowances {
		require.NotEqual(t, cursor, a.Spender)
	}
}

func TestQueryUnknownVariant(t *testing.T) {
	env := createTestEnv(t)
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked), nil)

	_, err := env.keeper.Query(env.ctx, []byte(`{"nope":{}}`))
	require.ErrorIs(t, err, types.ErrUnknownMessage)

	_, err = env.keeper.Query(env.ctx, []byte(`{}`))
	require.ErrorIs(t, err, types.ErrUnknownMessage)
}
