package vault

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/mihai6/FiatSim/internal/config"
	"github.com/mihai6/FiatSim/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseABIs(t *testing.T) {
	abis, err := parseABIs()
	require.NoError(t, err)

	assert.Contains(t, abis.erc20.Methods, "approve")
	assert.Contains(t, abis.erc20.Methods, "transfer")
	assert.Contains(t, abis.balancerVault.Methods, "swap")
	assert.Contains(t, abis.vaultEPT.Methods, "fairPrice")
	assert.Contains(t, abis.actions.Methods, "modifyCollateralAndDebt")
	assert.Contains(t, abis.publican.Methods, "virtualRate")
	assert.Contains(t, abis.proxyFactory.Events, "DeployProxy")
	assert.Contains(t, abis.proxy.Methods, "execute")
	assert.Contains(t, abis.curvePool.Methods, "exchange_underlying")
}

func TestPackBalancerSwap(t *testing.T) {
	abis, err := parseABIs()
	require.NoError(t, err)

	signer := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	amount := types.WadFromUnits(10000).BigInt()
	singleSwap := types.SingleSwap{
		PoolId:   config.MainnetAddresses.PTPoolID,
		Kind:     uint8(types.SwapKindGivenIn),
		AssetIn:  config.MainnetAddresses.Dai,
		AssetOut: config.MainnetAddresses.DaiPT,
		Amount:   amount,
		UserData: []byte{0x00},
	}
	funds := types.FundManagement{Sender: signer, Recipient: signer}

	data, err := abis.balancerVault.Pack("swap", singleSwap, funds, amount, big.NewInt(1_700_000_000))
	require.NoError(t, err)
	assert.Equal(t, abis.balancerVault.Methods["swap"].ID, data[:4])

	args, err := abis.balancerVault.Methods["swap"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Len(t, args, 4)
	assert.Equal(t, 0, amount.Cmp(args[2].(*big.Int)))
}

func TestPackModifyCollateralAndDebt(t *testing.T) {
	abis, err := parseABIs()
	require.NoError(t, err)

	signer := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	proxy := common.HexToAddress("0x1000000000000000000000000000000000000001")

	data, err := abis.actions.Pack("modifyCollateralAndDebt",
		config.MainnetAddresses.FiatDaiVault,
		config.MainnetAddresses.DaiPT,
		big.NewInt(0),
		proxy,
		signer,
		signer,
		types.WadFromUnits(10100).BigInt(),
		types.WadFromUnits(9000).BigInt(),
	)
	require.NoError(t, err)
	// selector + 8 static words
	assert.Len(t, data, 4+8*32)
}

func TestProxyFromReceipt(t *testing.T) {
	abis, err := parseABIs()
	require.NoError(t, err)

	addrs := config.MainnetAddresses
	f := &FiatClient{
		addrs:        addrs,
		abis:         abis,
		logger:       zerolog.Nop(),
		proxyFactory: bind.NewBoundContract(addrs.ProxyFactory, abis.proxyFactory, nil, nil, nil),
	}

	event := abis.proxyFactory.Events["DeployProxy"]
	signer := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	proxy := common.HexToAddress("0x2000000000000000000000000000000000000002")
	data, err := event.Inputs.NonIndexed().Pack([32]byte{1}, [32]byte{2}, proxy)
	require.NoError(t, err)

	deployLog := &ethtypes.Log{
		Address: addrs.ProxyFactory,
		Topics: []common.Hash{
			event.ID,
			common.BytesToHash(signer.Bytes()),
			common.BytesToHash(addrs.ProxyFactory.Bytes()),
			common.BytesToHash(signer.Bytes()),
		},
		Data: data,
	}
	unrelated := &ethtypes.Log{Address: addrs.Dai, Topics: []common.Hash{{0xaa}}}

	got, err := f.proxyFromReceipt(&ethtypes.Receipt{Logs: []*ethtypes.Log{unrelated, deployLog}})
	require.NoError(t, err)
	assert.Equal(t, proxy, got)

	_, err = f.proxyFromReceipt(&ethtypes.Receipt{Logs: []*ethtypes.Log{unrelated}})
	assert.ErrorIs(t, err, ErrProxyEventMissing)
}

func TestNewFiatClientValidation(t *testing.T) {
	_, err := NewFiatClient(FiatClientConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	err = validateFiatClientConfig(FiatClientConfig{ForkURL: "http://fork", SwapDeadline: 1})
	assert.ErrorContains(t, err, "wallet")
}

func TestMaxApprove(t *testing.T) {
	assert.Equal(t, 256, maxApprove.BitLen())
	assert.Equal(t, "1000000000000000000", new(big.Int).Div(whaleGas, big.NewInt(10)).String())
}
