/*

Mainnet contract addresses used by the live protocol.

The simulation runs against a hardhat fork of mainnet, so these are the real deployments
as of the fork block.

*/

package config

import (
	"github.com/ethereum/go-ethereum/common"
)

// ContractAddresses groups every contract the strategy touches.
type ContractAddresses struct {
	DaiWhale       common.Address // Funds the signer at the start of each run
	Dai            common.Address
	DaiPT          common.Address // Element DAI principal token, used as collateral
	PTPoolID       [32]byte       // Balancer pool DAI <-> PT
	BalancerVault  common.Address
	FiatActions    common.Address // VaultEPTActions
	FiatDaiVault   common.Address // FIAT collateral vault for the DAI PT
	ProxyFactory   common.Address // PRB proxy factory
	Fiat           common.Address
	FiatCurvePool  common.Address
	FiatCurveIndex int64 // Underlying index of FIAT in the curve pool
	DaiCurveIndex  int64 // Underlying index of DAI in the curve pool
}

var MainnetAddresses = ContractAddresses{
	DaiWhale:       common.HexToAddress("0x47ac0fb4f2d84898e4d9e7b4dab3c24507a6d503"),
	Dai:            common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
	DaiPT:          common.HexToAddress("0xCCE00da653eB50133455D4075fE8BcA36750492c"),
	PTPoolID:       common.HexToHash("0x8ffd1dc7c3ef65f833cf84dbcd15b6ad7f9c54ec000200000000000000000199"),
	BalancerVault:  common.HexToAddress("0xba12222222228d8ba445958a75a0704d566bf2c8"),
	FiatActions:    common.HexToAddress("0x0021DCEeb93130059C2BbBa7DacF14fe34aFF23c"),
	FiatDaiVault:   common.HexToAddress("0xb6922A39C85a4E838e1499A8B7465BDca2E49491"),
	ProxyFactory:   common.HexToAddress("0x7Ee06e44C4764A49346290CD9a2267DB6daD7214"),
	Fiat:           common.HexToAddress("0x586Aa273F262909EEF8fA02d90Ab65F5015e0516"),
	FiatCurvePool:  common.HexToAddress("0xDB8Cc7eCeD700A4bfFdE98013760Ff31FF9408D8"),
	FiatCurveIndex: 0,
	DaiCurveIndex:  1,
}
