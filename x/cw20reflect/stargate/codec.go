// Package stargate encodes and decodes the bank-module protobuf payloads
// the contract exchanges with the host chain's stargate gateway. Encoding
// goes through gogoproto-generated marshallers, which write fields in tag
// order: equal logical messages always encode to identical bytes, so the
// host may hash or compare payloads.
package stargate

import (
	"bytes"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/dojoswap/cw20-reflection/x/cw20reflect/types"
)

const (
	// MsgSendTypeURL routes an encoded MsgSend through the host's stargate
	// message handler.
	MsgSendTypeURL = "/cosmos.bank.v1beta1.MsgSend"

	// QueryBalancePath routes an encoded QueryBalanceRequest to the bank
	// gRPC querier.
	QueryBalancePath = "/cosmos.bank.v1beta1.Query/Balance"
)

// EncodeMsgSend encodes a single-coin bank send from the contract's
// custodial address.
func EncodeMsgSend(from, to string, amount sdk.Coin) ([]byte, error) {
	msg := banktypes.MsgSend{
		FromAddress: from,
		ToAddress:   to,
		Amount:      sdk.NewCoins(amount),
	}
	bz, err := msg.Marshal()
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrMalformedWireData, err.Error())
	}
	return bz, nil
}

// DecodeMsgSend decodes and validates a MsgSend payload. Decoding is
// strict: the buffer must be the canonical encoding of the message it
// claims to be, so truncated or type-mismatched buffers are rejected even
// when they happen to parse.
func DecodeMsgSend(bz []byte) (*banktypes.MsgSend, error) {
	var msg banktypes.MsgSend
	if err := msg.Unmarshal(bz); err != nil {
		return nil, errorsmod.Wrap(types.ErrMalformedWireData, err.Error())
	}
	reenc, err := msg.Marshal()
	if err != nil || !bytes.Equal(reenc, bz) {
		return nil, errorsmod.Wrap(types.ErrMalformedWireData, "buffer is not a canonical MsgSend encoding")
	}
	if err := msg.ValidateBasic(); err != nil {
		return nil, errorsmod.Wrap(types.ErrMalformedWireData, err.Error())
	}
	return &msg, nil
}

// EncodeQueryBalance encodes a bank balance query for addr/denom.
func EncodeQueryBalance(addr, denom string) ([]byte, error) {
	req := banktypes.QueryBalanceRequest{Address: addr, Denom: denom}
	bz, err := req.Marshal()
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrMalformedWireData, err.Error())
	}
	return bz, nil
}

// DecodeQueryBalance decodes a bank balance query request. Used by hosts
// (and test doubles) servicing the contract's stargate queries.
func DecodeQueryBalance(bz []byte) (*banktypes.QueryBalanceRequest, error) {
	var req banktypes.QueryBalanceRequest
	if err := req.Unmarshal(bz); err != nil {
		return nil, errorsmod.Wrap(types.ErrMalformedWireData, err.Error())
	}
	reenc, err := req.Marshal()
	if err != nil || !bytes.Equal(reenc, bz) {
		return nil, errorsmod.Wrap(types.ErrMalformedWireData, "buffer is not a canonical QueryBalanceRequest encoding")
	}
	return &req, nil
}

// EncodeQueryBalanceResponse encodes the response side of a balance query.
func EncodeQueryBalanceResponse(balance sdk.Coin) ([]byte, error) {
	resp := banktypes.QueryBalanceResponse{Balance: &balance}
	bz, err := resp.Marshal()
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrMalformedWireData, err.Error())
	}
	return bz, nil
}

// DecodeQueryBalanceResponse extracts the coin from a balance query
// response.
func DecodeQueryBalanceResponse(bz []byte) (sdk.Coin, error) {
	var resp banktypes.QueryBalanceResponse
	if err := resp.Unmarshal(bz); err != nil {
		return sdk.Coin{}, errorsmod.Wrap(types.ErrMalformedWireData, err.Error())
	}
	if resp.Balance == nil {
		return sdk.Coin{}, errorsmod.Wrap(types.ErrMalformedWireData, "balance response missing coin")
	}
	return *resp.Balance, nil
}
