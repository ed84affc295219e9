package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// StargateQuerier is the host-provided gateway for protobuf queries into
// base-chain modules. Implementations route the gRPC-style path and the
// encoded request to the matching query handler and hand back the raw
// protobuf response bytes.
type StargateQuerier interface {
	QueryStargate(ctx sdk.Context, path string, req []byte) ([]byte, error)
}
