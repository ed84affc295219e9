package keeper

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/stargate"
	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

func TestTransferPassthrough(t *testing.T) {
	env := createTestEnv(t)
	alice, bob := randomAddr(), randomAddr()
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyPassthrough,
		types.Cw20Coin{Address: alice.String(), Amount: sdkmath.NewInt(100)},
	), nil)

	res, err := env.execute(t, alice, types.ExecuteMsg{Transfer: &types.TransferMsg{
		Recipient: bob.String(),
		Amount:    sdkmath.NewInt(40),
	}}, nil)
	require.NoError(t, err)

	require.Equal(t, sdkmath.NewInt(60), env.balance(alice))
	require.Equal(t, sdkmath.NewInt(40), env.balance(bob))
	require.Equal(t, sdkmath.NewInt(100), env.keeper.GetTotalSupply(env.ctx))

	// passthrough custody pushes the native coin to the recipient
	require.Len(t, res.Messages, 1)
	sg := res.Messages[0].Msg.Stargate
	require.NotNil(t, sg)
	require.Equal(t, stargate.MsgSendTypeURL, sg.TypeURL)
	send, err := stargate.DecodeMsgSend(sg.Value)
	require.NoError(t, err)
	require.Equal(t, env.contract.String(), send.FromAddress)
	require.Equal(t, bob.String(), send.ToAddress)
	require.Equal(t, coins(40), send.Amount)
}

func TestTransferLockedMovesOnlyLedger(t *testing.T) {
	env := createTestEnv(t)
	alice, bob := randomAddr(), randomAddr()
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked,
		types.Cw20Coin{Address: alice.String(), Amount: sdkmath.NewInt(100)},
	), coins(100))

	res, err := env.execute(t, alice, types.ExecuteMsg{Transfer: &types.TransferMsg{
		Recipient: bob.String(),
		Amount:    sdkmath.NewInt(25),
	}}, nil)
	require.NoError(t, err)

	require.Empty(t, res.Messages)
	require.Equal(t, sdkmath.NewInt(75), env.balance(alice))
	require.Equal(t, sdkmath.NewInt(25), env.balance(bob))
}

func TestTransferFailures(t *testing.T) {
	specs := map[string]struct {
		amount sdkmath.Int
		expErr error
	}{
		"zero amount":        {amount: sdkmath.ZeroInt(), expErr: types.ErrInvalidAmount},
		"negative amount":    {amount: sdkmath.NewInt(-5), expErr: types.ErrInvalidAmount},
		"missing amount":     {amount: sdkmath.Int{}, expErr: types.ErrInvalidAmount},
		"over uint128":       {amount: types.MaxUint128.AddRaw(1), expErr: types.ErrInvalidAmount},
		"insufficient funds": {amount: sdkmath.NewInt(101), expErr: types.ErrInsufficientFunds},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			env := createTestEnv(t)
			alice, bob := randomAddr(), randomAddr()
			env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyPassthrough,
				types.Cw20Coin{Address: alice.String(), Amount: sdkmath.NewInt(100)},
			), nil)

			_, err := env.execute(t, alice, types.ExecuteMsg{Transfer: &types.TransferMsg{
				Recipient: bob.String(),
				Amount:    spec.amount,
			}}, nil)
			require.ErrorIs(t, err, spec.expErr)

			// the failed invocation must leave the ledger untouched
			require.Equal(t, sdkmath.NewInt(100), env.balance(alice))
			require.True(t, env.balance(bob).IsZero())
		})
	}
}

func TestTransferRoundTrip(t *testing.T) {
	env := createTestEnv(t)
	alice, bob := randomAddr(), randomAddr()
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked,
		types.Cw20Coin{Address: alice.String(), Amount: sdkmath.NewInt(70)},
		types.Cw20Coin{Address: bob.String(), Amount: sdkmath.NewInt(30)},
	), coins(100))

	_, err := env.execute(t, alice, types.ExecuteMsg{Transfer: &types.TransferMsg{
		Recipient: bob.String(), Amount: sdkmath.NewInt(33),
	}}, nil)
	require.NoError(t, err)
	_, err = env.execute(t, bob, types.ExecuteMsg{Transfer: &types.TransferMsg{
		Recipient: alice.String(), Amount: sdkmath.NewInt(33),
	}}, nil)
	require.NoError(t, err)

	require.Equal(t, sdkmath.NewInt(70), env.balance(alice))
	require.Equal(t, sdkmath.NewInt(30), env.balance(bob))
}

func TestConservationAcrossOperations(t *testing.T) {
	env := createTestEnv(t)
	alice, bob, carl := randomAddr(), randomAddr(), randomAddr()
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked,
		types.Cw20Coin{Address: alice.String(), Amount: sdkmath.NewInt(1000)},
	), coins(1000))
	env.querier.setBalance(env.contract.String(), sdkmath.NewInt(1500))

	steps := []types.ExecuteMsg{
		{Transfer: &types.TransferMsg{Recipient: bob.String(), Amount: sdkmath.NewInt(250)}},
		{Transfer: &types.TransferMsg{Recipient: carl.String(), Amount: sdkmath.NewInt(1)}},
		{Deposit: &types.DepositMsg{}},
		{Burn: &types.BurnMsg{Amount: sdkmath.NewInt(300)}},
	}
	for i, msg := range steps {
		var funds sdk.Coins
		if msg.Deposit != nil {
			funds = coins(500)
		}
		_, err := env.execute(t, alice, msg, funds)
		require.NoError(t, err, "step %d", i)
		require.Equal(t, env.keeper.GetTotalSupply(env.ctx), env.sumOfBalances(), "step %d", i)
	}
}

func TestBurnReleasesCustody(t *testing.T) {
	for _, mode := range []types.CustodyMode{types.CustodyLocked, types.CustodyPassthrough} {
		t.Run(string(mode), func(t *testing.T) {
			env := createTestEnv(t)
			alice := randomAddr()
			var funds sdk.Coins
			if mode == types.CustodyLocked {
				funds = coins(100)
			}
			env.mustInstantiate(t, defaultInstantiateMsg(mode,
				types.Cw20Coin{Address: alice.String(), Amount: sdkmath.NewInt(100)},
			), funds)

			res, err := env.execute(t, alice, types.ExecuteMsg{Burn: &types.BurnMsg{
				Amount: sdkmath.NewInt(60),
			}}, nil)
			require.NoError(t, err)

			require.Equal(t, sdkmath.NewInt(40), env.balance(alice))
			require.Equal(t, sdkmath.NewInt(40), env.keeper.GetTotalSupply(env.ctx))

			require.Len(t, res.Messages, 1)
			send, err := stargate.DecodeMsgSend(res.Messages[0].Msg.Stargate.Value)
			require.NoError(t, err)
			require.Equal(t, alice.String(), send.ToAddress)
			require.Equal(t, coins(60), send.Amount)
		})
	}
}

func TestBurnInsufficientFunds(t *testing.T) {
	env := createTestEnv(t)
	alice := randomAddr()
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyPassthrough,
		types.Cw20Coin{Address: alice.String(), Amount: sdkmath.NewInt(10)},
	), nil)

	_, err := env.execute(t, alice, types.ExecuteMsg{Burn: &types.BurnMsg{Amount: sdkmath.NewInt(11)}}, nil)
	require.ErrorIs(t, err, types.ErrInsufficientFunds)
	require.Equal(t, sdkmath.NewInt(10), env.balance(alice))
}

func TestMintPassthrough(t *testing.T) {
	cap := sdkmath.NewInt(1000)
	specs := map[string]struct {
		nativeBacking int64
		amount        sdkmath.Int
		expErr        error
	}{
		"funded mint works":       {nativeBacking: 500, amount: sdkmath.NewInt(400)},
		"unbacked mint rejected":  {nativeBacking: 100, amount: sdkmath.NewInt(400), expErr: types.ErrSupplyMismatch},
		"cap exceeded":            {nativeBacking: 5000, amount: sdkmath.NewInt(1001), expErr: types.ErrInvalidAmount},
		"zero amount":             {nativeBacking: 500, amount: sdkmath.ZeroInt(), expErr: types.ErrInvalidAmount},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			env := createTestEnv(t)
			minter, recipient := randomAddr(), randomAddr()
			msg := defaultInstantiateMsg(types.CustodyPassthrough)
			msg.Mint = &types.MinterInfo{Minter: minter.String(), Cap: &cap}
			env.mustInstantiate(t, msg, nil)
			env.querier.setBalance(env.contract.String(), sdkmath.NewInt(spec.nativeBacking))

			_, err := env.execute(t, minter, types.ExecuteMsg{Mint: &types.MintMsg{
				Recipient: recipient.String(),
				Amount:    spec.amount,
			}}, nil)
			if spec.expErr != nil {
				require.ErrorIs(t, err, spec.expErr)
				require.True(t, env.balance(recipient).IsZero())
				require.True(t, env.keeper.GetTotalSupply(env.ctx).IsZero())
				return
			}
			require.NoError(t, err)
			require.Equal(t, spec.amount, env.balance(recipient))
			require.Equal(t, spec.amount, env.keeper.GetTotalSupply(env.ctx))
		})
	}
}

func TestDepositLocked(t *testing.T) {
	specs := map[string]struct {
		nativeBacking int64
		funds         sdk.Coins
		expErr        error
	}{
		// the host credits attached funds before the contract runs, so the
		// stub native balance includes the deposit itself
		"deposit mints":           {nativeBacking: 150, funds: coins(50)},
		"no funds attached":       {nativeBacking: 150, funds: nil, expErr: types.ErrInvalidAmount},
		"wrong denom attached":    {nativeBacking: 150, funds: sdk.NewCoins(sdk.NewInt64Coin("uatom", 50)), expErr: types.ErrInvalidAmount},
		"native holdings too low": {nativeBacking: 120, funds: coins(50), expErr: types.ErrSupplyMismatch},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			env := createTestEnv(t)
			alice, bob := randomAddr(), randomAddr()
			env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyLocked,
				types.Cw20Coin{Address: alice.String(), Amount: sdkmath.NewInt(100)},
			), coins(100))
			env.querier.setBalance(env.contract.String(), sdkmath.NewInt(spec.nativeBacking))

			_, err := env.execute(t, bob, types.ExecuteMsg{Deposit: &types.DepositMsg{}}, spec.funds)
			if spec.expErr != nil {
				require.ErrorIs(t, err, spec.expErr)
				require.True(t, env.balance(bob).IsZero())
				require.Equal(t, sdkmath.NewInt(100), env.keeper.GetTotalSupply(env.ctx))
				return
			}
			require.NoError(t, err)
			require.Equal(t, sdkmath.NewInt(50), env.balance(bob))
			require.Equal(t, sdkmath.NewInt(150), env.keeper.GetTotalSupply(env.ctx))
		})
	}
}

func TestDepositRejectedUnderPassthrough(t *testing.T) {
	env := createTestEnv(t)
	alice := randomAddr()
	env.mustInstantiate(t, defaultInstantiateMsg(types.CustodyPassthrough), nil)

	_, err := env.execute(t, alice, types.ExecuteMsg{Deposit: &types.DepositMsg{}}, coins(10))
	require.ErrorIs(t, err, types.ErrUnauthorized)
}
