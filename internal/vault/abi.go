package vault

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal ABI fragments for the contracts the strategy calls.
const (
	erc20ABI = `[
		{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
		{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
	]`

	balancerVaultABI = `[
		{"type":"function","name":"swap","stateMutability":"payable","inputs":[
			{"name":"singleSwap","type":"tuple","components":[
				{"name":"poolId","type":"bytes32"},
				{"name":"kind","type":"uint8"},
				{"name":"assetIn","type":"address"},
				{"name":"assetOut","type":"address"},
				{"name":"amount","type":"uint256"},
				{"name":"userData","type":"bytes"}]},
			{"name":"funds","type":"tuple","components":[
				{"name":"sender","type":"address"},
				{"name":"fromInternalBalance","type":"bool"},
				{"name":"recipient","type":"address"},
				{"name":"toInternalBalance","type":"bool"}]},
			{"name":"limit","type":"uint256"},
			{"name":"deadline","type":"uint256"}],
		 "outputs":[{"name":"amountCalculated","type":"uint256"}]}
	]`

	vaultEPTABI = `[
		{"type":"function","name":"fairPrice","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"},{"name":"net","type":"bool"},{"name":"face","type":"bool"}],"outputs":[{"name":"","type":"uint256"}]}
	]`

	vaultEPTActionsABI = `[
		{"type":"function","name":"publican","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"type":"function","name":"modifyCollateralAndDebt","stateMutability":"nonpayable","inputs":[
			{"name":"vault","type":"address"},
			{"name":"token","type":"address"},
			{"name":"tokenId","type":"uint256"},
			{"name":"position","type":"address"},
			{"name":"collateralizer","type":"address"},
			{"name":"creditor","type":"address"},
			{"name":"deltaCollateral","type":"int256"},
			{"name":"deltaNormalDebt","type":"int256"}],
		 "outputs":[]}
	]`

	publicanABI = `[
		{"type":"function","name":"virtualRate","stateMutability":"nonpayable","inputs":[{"name":"vault","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
	]`

	proxyFactoryABI = `[
		{"type":"function","name":"deployFor","stateMutability":"nonpayable","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"proxy","type":"address"}]},
		{"type":"event","name":"DeployProxy","anonymous":false,"inputs":[
			{"name":"origin","type":"address","indexed":true},
			{"name":"deployer","type":"address","indexed":true},
			{"name":"owner","type":"address","indexed":true},
			{"name":"seed","type":"bytes32","indexed":false},
			{"name":"salt","type":"bytes32","indexed":false},
			{"name":"proxy","type":"address","indexed":false}]}
	]`

	proxyABI = `[
		{"type":"function","name":"execute","stateMutability":"payable","inputs":[{"name":"target","type":"address"},{"name":"data","type":"bytes"}],"outputs":[{"name":"response","type":"bytes"}]}
	]`

	curvePoolABI = `[
		{"type":"function","name":"exchange_underlying","stateMutability":"nonpayable","inputs":[
			{"name":"i","type":"int128"},
			{"name":"j","type":"int128"},
			{"name":"dx","type":"uint256"},
			{"name":"min_dy","type":"uint256"},
			{"name":"receiver","type":"address"}],
		 "outputs":[{"name":"","type":"uint256"}]}
	]`
)

// contractABIs holds the parsed fragments.
type contractABIs struct {
	erc20         abi.ABI
	balancerVault abi.ABI
	vaultEPT      abi.ABI
	actions       abi.ABI
	publican      abi.ABI
	proxyFactory  abi.ABI
	proxy         abi.ABI
	curvePool     abi.ABI
}

type abiDef struct {
	name string
	def  string
	dst  *abi.ABI
}

func parseABIs() (*contractABIs, error) {
	out := &contractABIs{}
	defs := []abiDef{
		{"erc20", erc20ABI, &out.erc20},
		{"balancerVault", balancerVaultABI, &out.balancerVault},
		{"vaultEPT", vaultEPTABI, &out.vaultEPT},
		{"vaultEPTActions", vaultEPTActionsABI, &out.actions},
		{"publican", publicanABI, &out.publican},
		{"proxyFactory", proxyFactoryABI, &out.proxyFactory},
		{"proxy", proxyABI, &out.proxy},
		{"curvePool", curvePoolABI, &out.curvePool},
	}

	for _, d := range defs {
		parsed, err := abi.JSON(strings.NewReader(d.def))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s ABI: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return out, nil
}
