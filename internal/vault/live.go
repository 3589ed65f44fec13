package vault

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/mihai6/FiatSim/internal/config"
	"github.com/mihai6/FiatSim/internal/logger"
	"github.com/mihai6/FiatSim/internal/types"
	"github.com/mihai6/FiatSim/internal/utils"
	"github.com/mihai6/FiatSim/internal/wallet"
	"github.com/rs/zerolog"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidConfig     = errors.New("invalid protocol configuration")
	ErrCallFailed        = errors.New("contract call failed")
	ErrUnexpectedOutput  = errors.New("unexpected contract output")
	ErrSeedMismatch      = errors.New("seeded balance does not match requested amount")
	ErrProxyEventMissing = errors.New("DeployProxy event not found in receipt")
)

var (
	maxApprove = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	whaleGas   = new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)) // 10 ETH
)

var _ Protocol = (*FiatClient)(nil)

// FiatClientConfig holds everything needed to build a FiatClient.
type FiatClientConfig struct {
	Wallet       *wallet.Client
	Addresses    config.ContractAddresses
	ForkURL      string
	ForkBlock    uint64
	SwapDeadline time.Duration
}

// FiatClient runs the strategy against a hardhat fork through go-ethereum bound contracts.
type FiatClient struct {
	wallet *wallet.Client
	addrs  config.ContractAddresses
	abis   *contractABIs
	logger zerolog.Logger

	forkURL      string
	forkBlock    uint64
	swapDeadline time.Duration

	dai, pt, fiat *bind.BoundContract
	balancerVault *bind.BoundContract
	vaultEPT      *bind.BoundContract
	actions       *bind.BoundContract
	proxyFactory  *bind.BoundContract
	curvePool     *bind.BoundContract
}

// NewFiatClient validates cfg and binds every contract.
func NewFiatClient(cfg FiatClientConfig) (*FiatClient, error) {
	if err := validateFiatClientConfig(cfg); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	abis, err := parseABIs()
	if err != nil {
		return nil, err
	}

	f := &FiatClient{
		wallet:       cfg.Wallet,
		addrs:        cfg.Addresses,
		abis:         abis,
		logger:       logger.GetForComponent("fiat_protocol"),
		forkURL:      cfg.ForkURL,
		forkBlock:    cfg.ForkBlock,
		swapDeadline: cfg.SwapDeadline,
	}

	f.dai = f.bind(cfg.Addresses.Dai, abis.erc20)
	f.pt = f.bind(cfg.Addresses.DaiPT, abis.erc20)
	f.fiat = f.bind(cfg.Addresses.Fiat, abis.erc20)
	f.balancerVault = f.bind(cfg.Addresses.BalancerVault, abis.balancerVault)
	f.vaultEPT = f.bind(cfg.Addresses.FiatDaiVault, abis.vaultEPT)
	f.actions = f.bind(cfg.Addresses.FiatActions, abis.actions)
	f.proxyFactory = f.bind(cfg.Addresses.ProxyFactory, abis.proxyFactory)
	f.curvePool = f.bind(cfg.Addresses.FiatCurvePool, abis.curvePool)

	f.logger.Info().
		Str("signer", cfg.Wallet.Address().Hex()).
		Uint64("forkBlock", cfg.ForkBlock).
		Msg("FiatClient initialized")

	return f, nil
}

func validateFiatClientConfig(cfg FiatClientConfig) error {
	if cfg.Wallet == nil {
		return errors.New("wallet client is nil")
	}
	if cfg.ForkURL == "" {
		return errors.New("fork URL is empty")
	}
	if cfg.SwapDeadline <= 0 {
		return errors.New("swap deadline must be positive")
	}
	zero := common.Address{}
	for name, addr := range map[string]common.Address{
		"dai": cfg.Addresses.Dai, "daiPT": cfg.Addresses.DaiPT, "fiat": cfg.Addresses.Fiat,
		"balancerVault": cfg.Addresses.BalancerVault, "fiatDaiVault": cfg.Addresses.FiatDaiVault,
		"fiatActions": cfg.Addresses.FiatActions, "proxyFactory": cfg.Addresses.ProxyFactory,
		"fiatCurvePool": cfg.Addresses.FiatCurvePool, "daiWhale": cfg.Addresses.DaiWhale,
	} {
		if addr == zero {
			return fmt.Errorf("%s address is not set", name)
		}
	}
	return nil
}

func (f *FiatClient) bind(address common.Address, parsed abi.ABI) *bind.BoundContract {
	eth := f.wallet.Eth()
	return bind.NewBoundContract(address, parsed, eth, eth, eth)
}

// ReferenceTime returns the timestamp of the pinned fork block.
func (f *FiatClient) ReferenceTime(ctx context.Context) (time.Time, error) {
	var number *big.Int
	if f.forkBlock > 0 {
		number = new(big.Int).SetUint64(f.forkBlock)
	}
	return f.wallet.HeaderTime(ctx, number)
}

// NativeBalance returns the signer's ETH balance as a Wad.
func (f *FiatClient) NativeBalance(ctx context.Context) (types.Wad, error) {
	bal, err := f.wallet.NativeBalance(ctx)
	if err != nil {
		return types.ZeroWad(), err
	}
	return types.WadFromBigInt(bal), nil
}

// ResetChain re-forks the node at the pinned block.
func (f *FiatClient) ResetChain(ctx context.Context) error {
	return f.wallet.ResetFork(ctx, f.forkURL, f.forkBlock)
}

// SeedStablecoin moves the signer's DAI back to the whale, then funds it with amount DAI
// from the impersonated whale.
func (f *FiatClient) SeedStablecoin(ctx context.Context, amount types.Wad) error {
	signer := f.wallet.Address()
	whale := f.addrs.DaiWhale

	if err := f.wallet.Impersonate(ctx, whale); err != nil {
		return err
	}
	defer func() {
		if err := f.wallet.StopImpersonating(ctx, whale); err != nil {
			f.logger.Warn().Err(err).Msg("Failed to stop impersonating DAI whale")
		}
	}()

	// The whale pays its own gas for the transfer.
	if err := f.wallet.SetBalance(ctx, whale, whaleGas); err != nil {
		return err
	}

	current, err := f.balanceOf(ctx, f.dai, signer)
	if err != nil {
		return err
	}
	if current.IsPositive() {
		if _, err := f.transact(ctx, f.dai, "return DAI to whale", "transfer", whale, current.BigInt()); err != nil {
			return err
		}
	}

	data, err := f.abis.erc20.Pack("transfer", signer, amount.BigInt())
	if err != nil {
		return fmt.Errorf("failed to encode DAI transfer: %w", err)
	}
	if _, err := f.wallet.SendUnsigned(ctx, whale, f.addrs.Dai, data, "seed DAI from whale"); err != nil {
		return err
	}

	seeded, err := f.balanceOf(ctx, f.dai, signer)
	if err != nil {
		return err
	}
	if !seeded.Equal(amount) {
		return fmt.Errorf("%w: want %s, have %s", ErrSeedMismatch, utils.WadToString(amount), utils.WadToString(seeded))
	}

	f.logger.Info().Str("daiBalance", utils.WadToString(seeded)).Msg("Confirmed transferred balance")
	return nil
}

// PurchasePT swaps amount DAI for principal tokens on the Balancer vault.
func (f *FiatClient) PurchasePT(ctx context.Context, amount types.Wad) (types.Wad, error) {
	signer := f.wallet.Address()

	if _, err := f.transact(ctx, f.dai, "approve DAI for balancer", "approve", f.addrs.BalancerVault, maxApprove); err != nil {
		return types.ZeroWad(), err
	}

	singleSwap := types.SingleSwap{
		PoolId:   f.addrs.PTPoolID,
		Kind:     uint8(types.SwapKindGivenIn),
		AssetIn:  f.addrs.Dai,
		AssetOut: f.addrs.DaiPT,
		Amount:   amount.BigInt(),
		UserData: []byte{0x00},
	}
	funds := types.FundManagement{
		Sender:    signer,
		Recipient: signer,
	}
	// PTs trade below par, so receiving at least amount PT is the slippage floor.
	limit := amount.BigInt()
	deadline := big.NewInt(time.Now().Add(f.swapDeadline).Unix())

	if _, err := f.transact(ctx, f.balancerVault, "balancer swap DAI->PT", "swap", singleSwap, funds, limit, deadline); err != nil {
		return types.ZeroWad(), err
	}

	ptBalance, err := f.balanceOf(ctx, f.pt, signer)
	if err != nil {
		return types.ZeroWad(), err
	}
	f.logger.Info().Str("ptBalance", utils.WadToString(ptBalance)).Msg("PTs acquired")
	return ptBalance, nil
}

// CollateralizeForFiat deposits the PT balance and draws the maximum FIAT the fair price allows.
func (f *FiatClient) CollateralizeForFiat(ctx context.Context) (types.Wad, error) {
	signer := f.wallet.Address()

	// The fair price already accounts for accrued interest, so this debt is never liquidatable.
	fairPrice, err := f.callUint(ctx, f.vaultEPT, "fairPrice", big.NewInt(0), true, false)
	if err != nil {
		return types.ZeroWad(), err
	}

	ptBalance, err := f.balanceOf(ctx, f.pt, signer)
	if err != nil {
		return types.ZeroWad(), err
	}

	maxDebt := types.WMul(fairPrice, ptBalance)

	publicanAddr, err := f.callAddress(ctx, f.actions, "publican")
	if err != nil {
		return types.ZeroWad(), err
	}
	publican := f.bind(publicanAddr, f.abis.publican)
	virtualRate, err := f.callUint(ctx, publican, "virtualRate", f.addrs.FiatDaiVault)
	if err != nil {
		return types.ZeroWad(), err
	}

	normalizedDebt, err := types.WDiv(maxDebt, virtualRate)
	if err != nil {
		return types.ZeroWad(), fmt.Errorf("failed to normalize debt: %w", err)
	}

	f.logger.Info().
		Str("maxDebt", utils.WadToString(maxDebt)).
		Str("normalizedDebt", utils.WadToString(normalizedDebt)).
		Msg("Debt sized")

	proxyAddr, err := f.deployProxy(ctx)
	if err != nil {
		return types.ZeroWad(), err
	}

	if _, err := f.transact(ctx, f.pt, "approve PT for proxy", "approve", proxyAddr, maxApprove); err != nil {
		return types.ZeroWad(), err
	}

	callData, err := f.abis.actions.Pack("modifyCollateralAndDebt",
		f.addrs.FiatDaiVault,
		f.addrs.DaiPT,
		big.NewInt(0),
		proxyAddr,
		signer,
		signer,
		ptBalance.BigInt(),
		normalizedDebt.BigInt(),
	)
	if err != nil {
		return types.ZeroWad(), fmt.Errorf("failed to encode modifyCollateralAndDebt: %w", err)
	}

	proxy := f.bind(proxyAddr, f.abis.proxy)
	if _, err := f.transact(ctx, proxy, "proxy modifyCollateralAndDebt", "execute", f.addrs.FiatActions, callData); err != nil {
		return types.ZeroWad(), err
	}

	fiatBalance, err := f.balanceOf(ctx, f.fiat, signer)
	if err != nil {
		return types.ZeroWad(), err
	}
	f.logger.Info().Str("fiatBalance", utils.WadToString(fiatBalance)).Msg("Current FIAT balance")
	return fiatBalance, nil
}

// SwapFiatForDai swaps the whole FIAT balance for DAI through the curve pool's underlying coins.
func (f *FiatClient) SwapFiatForDai(ctx context.Context) (types.Wad, error) {
	signer := f.wallet.Address()

	fiatBalance, err := f.balanceOf(ctx, f.fiat, signer)
	if err != nil {
		return types.ZeroWad(), err
	}

	if _, err := f.transact(ctx, f.fiat, "approve FIAT for curve", "approve", f.addrs.FiatCurvePool, maxApprove); err != nil {
		return types.ZeroWad(), err
	}

	if _, err := f.transact(ctx, f.curvePool, "curve swap FIAT->DAI", "exchange_underlying",
		big.NewInt(f.addrs.FiatCurveIndex),
		big.NewInt(f.addrs.DaiCurveIndex),
		fiatBalance.BigInt(),
		big.NewInt(0),
		signer,
	); err != nil {
		return types.ZeroWad(), err
	}

	daiBalance, err := f.balanceOf(ctx, f.dai, signer)
	if err != nil {
		return types.ZeroWad(), err
	}
	f.logger.Info().Str("daiBalance", utils.WadToString(daiBalance)).Msg("Swapped and received DAI")
	return daiBalance, nil
}

// Close releases the wallet connection.
func (f *FiatClient) Close() {
	f.wallet.Close()
}

// deployProxy deploys a PRB proxy owned by the signer and returns its address.
func (f *FiatClient) deployProxy(ctx context.Context) (common.Address, error) {
	receipt, err := f.transact(ctx, f.proxyFactory, "deploy proxy", "deployFor", f.wallet.Address())
	if err != nil {
		return common.Address{}, err
	}
	return f.proxyFromReceipt(receipt)
}

// proxyFromReceipt reads the proxy address from the factory's DeployProxy event.
func (f *FiatClient) proxyFromReceipt(receipt *ethtypes.Receipt) (common.Address, error) {
	for _, lg := range receipt.Logs {
		if lg.Address != f.addrs.ProxyFactory {
			continue
		}
		var ev types.DeployProxyEvent
		if err := f.proxyFactory.UnpackLog(&ev, "DeployProxy", *lg); err != nil {
			continue
		}
		f.logger.Debug().Str("proxy", ev.Proxy.Hex()).Msg("Proxy deployed")
		return ev.Proxy, nil
	}
	return common.Address{}, fmt.Errorf("%w: tx %s", ErrProxyEventMissing, receipt.TxHash.Hex())
}

func (f *FiatClient) transact(ctx context.Context, contract *bind.BoundContract, label, method string, args ...interface{}) (*ethtypes.Receipt, error) {
	opts, err := f.wallet.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := contract.Transact(opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", label, ErrCallFailed, err)
	}
	return f.wallet.WaitMined(ctx, tx, label)
}

func (f *FiatClient) call(ctx context.Context, contract *bind.BoundContract, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := contract.Call(f.wallet.CallOpts(ctx), &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", method, ErrCallFailed, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w: empty output", method, ErrUnexpectedOutput)
	}
	return out, nil
}

func (f *FiatClient) callUint(ctx context.Context, contract *bind.BoundContract, method string, args ...interface{}) (types.Wad, error) {
	out, err := f.call(ctx, contract, method, args...)
	if err != nil {
		return types.ZeroWad(), err
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return types.ZeroWad(), fmt.Errorf("%s: %w: got %T", method, ErrUnexpectedOutput, out[0])
	}
	return types.WadFromBigInt(value), nil
}

func (f *FiatClient) callAddress(ctx context.Context, contract *bind.BoundContract, method string, args ...interface{}) (common.Address, error) {
	out, err := f.call(ctx, contract, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: %w: got %T", method, ErrUnexpectedOutput, out[0])
	}
	return addr, nil
}

func (f *FiatClient) balanceOf(ctx context.Context, token *bind.BoundContract, owner common.Address) (types.Wad, error) {
	return f.callUint(ctx, token, "balanceOf", owner)
}
