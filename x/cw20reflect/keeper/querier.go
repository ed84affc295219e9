package keeper

import (
	"bytes"
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

// cw20-base pagination bounds.
const (
	defaultPageLimit = 10
	maxPageLimit     = 30
)

// Query answers the cw20 query surface from the ledger store. The local
// ledger is the authoritative cw20 view, so no query round-trips to the
// chain. Responses are JSON, like every cw20 query.
func (k Keeper) Query(ctx sdk.Context, msg []byte) ([]byte, error) {
	var q types.QueryMsg
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&q); err != nil {
		return nil, errorsmod.Wrap(types.ErrUnknownMessage, err.Error())
	}

	switch {
	case q.Balance != nil:
		addr, err := parseAddr(q.Balance.Address)
		if err != nil {
			return nil, err
		}
		return marshalResponse(types.BalanceResponse{Balance: k.GetBalance(ctx, addr)})

	case q.TokenInfo != nil:
		info, found := k.GetTokenInfo(ctx)
		if !found {
			return nil, errorsmod.Wrap(types.ErrUnauthorized, "contract not instantiated")
		}
		return marshalResponse(info)

	case q.Allowance != nil:
		owner, err := parseAddr(q.Allowance.Owner)
		if err != nil {
			return nil, err
		}
		spender, err := parseAddr(q.Allowance.Spender)
		if err != nil {
			return nil, err
		}
		return marshalResponse(k.allowanceResponse(ctx, owner, spender))

	case q.Minter != nil:
		return marshalResponse(k.GetMinter(ctx))

	case q.MarketingInfo != nil:
		return marshalResponse(k.GetMarketing(ctx))

	case q.AllAccounts != nil:
		start, err := parseCursor(q.AllAccounts.StartAfter)
		if err != nil {
			return nil, err
		}
		return marshalResponse(k.allAccounts(ctx, start, pageLimit(q.AllAccounts.Limit)))

	case q.AllAllowances != nil:
		owner, err := parseAddr(q.AllAllowances.Owner)
		if err != nil {
			return nil, err
		}
		start, err := parseCursor(q.AllAllowances.StartAfter)
		if err != nil {
			return nil, err
		}
		return marshalResponse(k.allAllowances(ctx, owner, start, pageLimit(q.AllAllowances.Limit)))

	default:
		return nil, errorsmod.Wrap(types.ErrUnknownMessage, "unrecognized cw20 query variant")
	}
}

// allowanceResponse treats an absent or expired grant as zero; the query
// never errors for a missing record.
func (k Keeper) allowanceResponse(ctx sdk.Context, owner, spender sdk.AccAddress) types.AllowanceResponse {
	info, found := k.GetAllowance(ctx, owner, spender)
	if !found || info.Expires.IsExpired(ctx) {
		return types.AllowanceResponse{Allowance: sdkmath.ZeroInt()}
	}
	return types.AllowanceResponse{Allowance: info.Allowance, Expires: info.Expires}
}

// allAccounts pages through live balance holders in store order. The
// cursor is exclusive and compared by store key, so enumeration resumes
// correctly even when the cursor's record has since been deleted.
func (k Keeper) allAccounts(ctx sdk.Context, startAfter sdk.AccAddress, limit int) types.AllAccountsResponse {
	accounts := []string{}
	if limit < 1 {
		return types.AllAccountsResponse{Accounts: accounts}
	}
	cursor := cursorKey(startAfter)
	k.IterateBalances(ctx, func(addr sdk.AccAddress, _ sdkmath.Int) bool {
		if cursor != nil && bytes.Compare(address.MustLengthPrefix(addr), cursor) <= 0 {
			return false
		}
		accounts = append(accounts, addr.String())
		return len(accounts) >= limit
	})
	return types.AllAccountsResponse{Accounts: accounts}
}

// allAllowances pages through the owner's live grants, hiding expired ones.
// Cursor semantics match allAccounts.
func (k Keeper) allAllowances(ctx sdk.Context, owner sdk.AccAddress, startAfter sdk.AccAddress, limit int) types.AllAllowancesResponse {
	allowances := []types.SpenderAllowance{}
	if limit < 1 {
		return types.AllAllowancesResponse{Allowances: allowances}
	}
	cursor := cursorKey(startAfter)
	k.IterateOwnerAllowances(ctx, owner, func(spender sdk.AccAddress, info types.AllowanceInfo) bool {
		if cursor != nil && bytes.Compare(address.MustLengthPrefix(spender), cursor) <= 0 {
			return false
		}
		if info.Expires.IsExpired(ctx) {
			return false
		}
		allowances = append(allowances, types.SpenderAllowance{
			Spender:   spender.String(),
			Allowance: info.Allowance,
			Expires:   info.Expires,
		})
		return len(allowances) >= limit
	})
	return types.AllAllowancesResponse{Allowances: allowances}
}

func parseCursor(s string) (sdk.AccAddress, error) {
	if s == "" {
		return nil, nil
	}
	return parseAddr(s)
}

func cursorKey(startAfter sdk.AccAddress) []byte {
	if len(startAfter) == 0 {
		return nil
	}
	return address.MustLengthPrefix(startAfter)
}

func pageLimit(limit *uint32) int {
	if limit == nil {
		return defaultPageLimit
	}
	if *limit > maxPageLimit {
		return maxPageLimit
	}
	return int(*limit)
}

func marshalResponse(v interface{}) ([]byte, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrUnknownMessage, err.Error())
	}
	return bz, nil
}
