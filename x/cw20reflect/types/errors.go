package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Codes 1-10 in the cw20reflect codespace. Code 1 is reserved by the errors
// package for internal failures.
var (
	// ErrInsufficientFunds is returned when an account's reflected balance
	// cannot cover a transfer or burn.
	ErrInsufficientFunds = errorsmod.Register(ModuleName, 2, "insufficient funds")

	// ErrInvalidAmount is returned for zero, negative or >uint128 amounts.
	ErrInvalidAmount = errorsmod.Register(ModuleName, 3, "invalid amount")

	// ErrNoAllowance is returned when a spender has no (or too small an)
	// allowance from the owner.
	ErrNoAllowance = errorsmod.Register(ModuleName, 4, "no allowance")

	// ErrAllowanceExpired is returned when an allowance exists but its
	// expiration has passed.
	ErrAllowanceExpired = errorsmod.Register(ModuleName, 5, "allowance expired")

	// ErrUnauthorized is returned when the sender may not perform the
	// requested operation.
	ErrUnauthorized = errorsmod.Register(ModuleName, 6, "unauthorized")

	// ErrUnknownMessage is returned when an execute or query payload does
	// not decode to exactly one known cw20 variant.
	ErrUnknownMessage = errorsmod.Register(ModuleName, 7, "unknown message")

	// ErrMalformedWireData is returned by the stargate codec on truncated
	// or type-mismatched protobuf buffers.
	ErrMalformedWireData = errorsmod.Register(ModuleName, 8, "malformed wire data")

	// ErrSupplyMismatch flags a divergence between the cached total supply
	// and either the sum of balances or the contract's native holdings. It
	// aborts the invocation; there is no in-contract recovery.
	ErrSupplyMismatch = errorsmod.Register(ModuleName, 9, "supply mismatch")

	// ErrInvalidInstantiateMsg is returned when instantiation input fails
	// validation.
	ErrInvalidInstantiateMsg = errorsmod.Register(ModuleName, 10, "invalid instantiate message")
)
