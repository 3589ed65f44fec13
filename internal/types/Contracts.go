/*

This file contains the Go shapes of the ABI tuples and events used by the live protocol.
Field names must match the ABI component names (camel-cased) for go-ethereum to pack them.

*/

package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SwapKind mirrors the Balancer vault enum.
type SwapKind uint8

// SwapKindGivenIn fixes the amount sent into the pool.
const SwapKindGivenIn SwapKind = 0

// SingleSwap is the Balancer vault single swap tuple.
type SingleSwap struct {
	PoolId   [32]byte
	Kind     uint8
	AssetIn  common.Address
	AssetOut common.Address
	Amount   *big.Int
	UserData []byte
}

// FundManagement is the Balancer vault funds tuple.
type FundManagement struct {
	Sender              common.Address
	FromInternalBalance bool
	Recipient           common.Address
	ToInternalBalance   bool
}

// DeployProxyEvent is emitted by the PRB proxy factory on deployFor.
type DeployProxyEvent struct {
	Origin   common.Address
	Deployer common.Address
	Owner    common.Address
	Seed     [32]byte
	Salt     [32]byte
	Proxy    common.Address
}
