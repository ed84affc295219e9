package types

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"
)

// ExecuteMsg is the cw20 execute envelope: exactly one variant per message.
// Amounts ride the wire as JSON strings (math.Int marshals that way).
type (
	ExecuteMsg struct {
		Transfer          *TransferMsg          `json:"transfer,omitempty"`
		Send              *SendMsg              `json:"send,omitempty"`
		Burn              *BurnMsg              `json:"burn,omitempty"`
		Mint              *MintMsg              `json:"mint,omitempty"`
		Deposit           *DepositMsg           `json:"deposit,omitempty"`
		IncreaseAllowance *IncreaseAllowanceMsg `json:"increase_allowance,omitempty"`
		DecreaseAllowance *DecreaseAllowanceMsg `json:"decrease_allowance,omitempty"`
		TransferFrom      *TransferFromMsg      `json:"transfer_from,omitempty"`
		SendFrom          *SendFromMsg          `json:"send_from,omitempty"`
		BurnFrom          *BurnFromMsg          `json:"burn_from,omitempty"`
	}

	TransferMsg struct {
		Recipient string      `json:"recipient"`
		Amount    sdkmath.Int `json:"amount"`
	}

	// SendMsg transfers to a contract and triggers its receive hook with
	// the embedded payload.
	SendMsg struct {
		Contract string          `json:"contract"`
		Amount   sdkmath.Int     `json:"amount"`
		Msg      json.RawMessage `json:"msg"`
	}

	BurnMsg struct {
		Amount sdkmath.Int `json:"amount"`
	}

	// MintMsg is minter-only and valid only under passthrough custody.
	MintMsg struct {
		Recipient string      `json:"recipient"`
		Amount    sdkmath.Int `json:"amount"`
	}

	// DepositMsg mints against native funds attached to the invocation;
	// valid only under locked custody.
	DepositMsg struct{}

	IncreaseAllowanceMsg struct {
		Spender string      `json:"spender"`
		Amount  sdkmath.Int `json:"amount"`
		Expires *Expiration `json:"expires,omitempty"`
	}

	DecreaseAllowanceMsg struct {
		Spender string      `json:"spender"`
		Amount  sdkmath.Int `json:"amount"`
		Expires *Expiration `json:"expires,omitempty"`
	}

	TransferFromMsg struct {
		Owner     string      `json:"owner"`
		Recipient string      `json:"recipient"`
		Amount    sdkmath.Int `json:"amount"`
	}

	SendFromMsg struct {
		Owner    string          `json:"owner"`
		Contract string          `json:"contract"`
		Amount   sdkmath.Int     `json:"amount"`
		Msg      json.RawMessage `json:"msg"`
	}

	BurnFromMsg struct {
		Owner  string      `json:"owner"`
		Amount sdkmath.Int `json:"amount"`
	}
)

// QueryMsg is the cw20 query envelope, one variant per message.
type (
	QueryMsg struct {
		Balance       *BalanceQuery       `json:"balance,omitempty"`
		TokenInfo     *TokenInfoQuery     `json:"token_info,omitempty"`
		Allowance     *AllowanceQuery     `json:"allowance,omitempty"`
		Minter        *MinterQuery        `json:"minter,omitempty"`
		MarketingInfo *MarketingInfoQuery `json:"marketing_info,omitempty"`
		AllAccounts   *AllAccountsQuery   `json:"all_accounts,omitempty"`
		AllAllowances *AllAllowancesQuery `json:"all_allowances,omitempty"`
	}

	BalanceQuery struct {
		Address string `json:"address"`
	}

	TokenInfoQuery struct{}

	AllowanceQuery struct {
		Owner   string `json:"owner"`
		Spender string `json:"spender"`
	}

	MinterQuery struct{}

	MarketingInfoQuery struct{}

	AllAccountsQuery struct {
		StartAfter string  `json:"start_after,omitempty"`
		Limit      *uint32 `json:"limit,omitempty"`
	}

	AllAllowancesQuery struct {
		Owner      string  `json:"owner"`
		StartAfter string  `json:"start_after,omitempty"`
		Limit      *uint32 `json:"limit,omitempty"`
	}
)

// Query responses.
type (
	BalanceResponse struct {
		Balance sdkmath.Int `json:"balance"`
	}

	// TokenInfoResponse reuses TokenInfo: same shape on the wire.
	TokenInfoResponse = TokenInfo

	AllowanceResponse struct {
		Allowance sdkmath.Int `json:"allowance"`
		Expires   *Expiration `json:"expires,omitempty"`
	}

	// MinterResponse reuses MinterInfo: same shape on the wire.
	MinterResponse = MinterInfo

	AllAccountsResponse struct {
		Accounts []string `json:"accounts"`
	}

	SpenderAllowance struct {
		Spender   string      `json:"spender"`
		Allowance sdkmath.Int `json:"allowance"`
		Expires   *Expiration `json:"expires,omitempty"`
	}

	AllAllowancesResponse struct {
		Allowances []SpenderAllowance `json:"allowances"`
	}
)

// AllowanceInfo is the stored per owner/spender allowance record.
type AllowanceInfo struct {
	Allowance sdkmath.Int `json:"allowance"`
	Expires   *Expiration `json:"expires,omitempty"`
}

// Cw20ReceiveMsg is the payload delivered to a recipient contract's receive
// hook after a send or send_from.
type Cw20ReceiveMsg struct {
	Sender string          `json:"sender"`
	Amount sdkmath.Int     `json:"amount"`
	Msg    json.RawMessage `json:"msg"`
}

// ReceiverExecuteMsg wraps Cw20ReceiveMsg into the execute envelope the
// recipient contract expects.
type ReceiverExecuteMsg struct {
	Receive *Cw20ReceiveMsg `json:"receive"`
}
