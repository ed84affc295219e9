package types

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// NeverExpires is the payload of the explicit "never" expiration variant.
type NeverExpires struct{}

// Expiration mirrors the cw20 expiration wire shape: at most one of the
// variants is set. A nil *Expiration never expires. Times are nanoseconds
// since the unix epoch, encoded as a JSON string like every cw20 uint64.
type Expiration struct {
	AtHeight uint64        `json:"at_height,omitempty"`
	AtTime   uint64        `json:"at_time,string,omitempty"`
	Never    *NeverExpires `json:"never,omitempty"`
}

// Validate rejects payloads that set more than one variant.
func (e *Expiration) Validate() error {
	if e == nil {
		return nil
	}
	set := 0
	if e.AtHeight > 0 {
		set++
	}
	if e.AtTime > 0 {
		set++
	}
	if e.Never != nil {
		set++
	}
	if set > 1 {
		return errorsmod.Wrap(ErrUnknownMessage, "expiration must set at most one variant")
	}
	return nil
}

// IsExpired reports whether the expiration has passed at the current block.
// Matching cw20 semantics, a block exactly at the boundary counts as expired.
func (e *Expiration) IsExpired(ctx sdk.Context) bool {
	if e == nil {
		return false
	}
	if e.AtHeight > 0 && uint64(ctx.BlockHeight()) >= e.AtHeight {
		return true
	}
	if e.AtTime > 0 && uint64(ctx.BlockTime().UnixNano()) >= e.AtTime {
		return true
	}
	return false
}
