package simulator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mihai6/FiatSim/internal/types"
	"github.com/mihai6/FiatSim/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var refTime = time.Unix(1_650_000_000, 0).UTC()

func testParams() types.SimulationParameters {
	return types.SimulationParameters{
		DaiPriceEth:      wad("0.0005"),
		FiatPriceDai:     wad("1"),
		FiatInterestRate: wad("0.01"),
		TermMaturity:     refTime.Add(15_768_000 * time.Second),
		YearSeconds:      31_536_000,
		StartBalance:     10000,
		BalanceIncrement: 2000,
		EndBalance:       14000,
		SwapDeadline:     100 * time.Second,
	}
}

// fakeProtocol replays PT gains per cycle index within a run. Every cycle borrows 1000
// FIAT, swaps it 1:1 into DAI and burns 0.001 ETH of gas.
type fakeProtocol struct {
	gains []string

	native      types.Wad
	cycle       int
	lastAmount  types.Wad
	seeded      []types.Wad
	resets      int
	purchaseErr error
}

var _ vault.Protocol = (*fakeProtocol)(nil)

func newFakeProtocol(gains ...string) *fakeProtocol {
	return &fakeProtocol{gains: gains, native: wad("10")}
}

func (f *fakeProtocol) ReferenceTime(context.Context) (time.Time, error) { return refTime, nil }

func (f *fakeProtocol) SeedStablecoin(_ context.Context, amount types.Wad) error {
	f.seeded = append(f.seeded, amount)
	f.cycle = 0
	return nil
}

func (f *fakeProtocol) NativeBalance(context.Context) (types.Wad, error) { return f.native, nil }

func (f *fakeProtocol) PurchasePT(_ context.Context, amount types.Wad) (types.Wad, error) {
	if f.purchaseErr != nil {
		return types.Wad{}, f.purchaseErr
	}
	f.native = f.native.Sub(wad("0.001"))
	f.lastAmount = amount
	gain := f.gains[f.cycle%len(f.gains)]
	f.cycle++
	return amount.Add(wad(gain)), nil
}

func (f *fakeProtocol) CollateralizeForFiat(context.Context) (types.Wad, error) {
	return wad("1000"), nil
}

func (f *fakeProtocol) SwapFiatForDai(context.Context) (types.Wad, error) {
	return wad("1000"), nil
}

func (f *fakeProtocol) ResetChain(context.Context) error {
	f.resets++
	f.native = wad("10")
	return nil
}

func (f *fakeProtocol) Close() {}

type collectingRecorder struct {
	mu      sync.Mutex
	records []types.SummaryRecord
}

func (c *collectingRecorder) Record(r types.SummaryRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

func TestNewSimulatorValidation(t *testing.T) {
	_, err := NewSimulator(Config{Params: testParams()})
	assert.Error(t, err)

	bad := testParams()
	bad.EndBalance = bad.StartBalance - 1
	_, err = NewSimulator(Config{Protocol: newFakeProtocol("1"), Params: bad})
	assert.ErrorIs(t, err, ErrInvalidParameters)

	bad = testParams()
	bad.BalanceIncrement = 0
	_, err = NewSimulator(Config{Protocol: newFakeProtocol("1"), Params: bad})
	assert.ErrorIs(t, err, ErrInvalidParameters)

	bad = testParams()
	bad.DaiPriceEth = types.ZeroWad()
	_, err = NewSimulator(Config{Protocol: newFakeProtocol("1"), Params: bad})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestStartingBalances(t *testing.T) {
	params := testParams()
	params.EndBalance = 150000
	sim, err := NewSimulator(Config{Protocol: newFakeProtocol("1"), Params: params})
	require.NoError(t, err)

	balances := sim.StartingBalances()
	require.Len(t, balances, 71)
	assert.Equal(t, int64(10000), balances[0])
	assert.Equal(t, int64(12000), balances[1])
	assert.Equal(t, int64(150000), balances[70])
}

func TestRunSweep(t *testing.T) {
	// earned per cycle = gain - 2 gas - 5 interest: 100, 50, then -7
	protocol := newFakeProtocol("107", "57", "0")
	recorder := &collectingRecorder{}
	sim, err := NewSimulator(Config{Protocol: protocol, Params: testParams(), Recorder: recorder})
	require.NoError(t, err)

	records, err := sim.RunSweep(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	expectedAPY := []float64{0.03, 0.025, 0.021428571428571428}
	for i, r := range records {
		assert.Equal(t, float64(10000+2000*i), r.StartingDaiBalance)
		assert.Equal(t, 2, r.Cycles)
		assert.InDelta(t, 150.0, r.TotalDaiEarned, 1e-9)
		assert.InDelta(t, 10.0, r.TotalInterestPaid, 1e-9)
		assert.InDelta(t, 4.0, r.GasDai, 1e-9)
		assert.InDelta(t, 1000.0, r.DaiBalance, 1e-9)
		assert.InDelta(t, expectedAPY[i], r.NetAPY, 1e-12)
	}

	assert.Equal(t, records, recorder.records)
	assert.Equal(t, 3, protocol.resets)
	require.Len(t, protocol.seeded, 3)
	assertWad(t, "14000", protocol.seeded[2])
	assertWad(t, "1000", protocol.lastAmount, "later cycles reinvest the swapped DAI")
}

func TestRunSweepFirstCycleUnprofitable(t *testing.T) {
	params := testParams()
	params.EndBalance = params.StartBalance
	sim, err := NewSimulator(Config{Protocol: newFakeProtocol("0"), Params: params})
	require.NoError(t, err)

	records, err := sim.RunSweep(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, 0, r.Cycles)
	assert.Zero(t, r.TotalDaiEarned)
	assert.Zero(t, r.TotalInterestPaid)
	assert.Zero(t, r.GasDai)
	assert.Zero(t, r.NetAPY)
	assert.Equal(t, 10000.0, r.DaiBalance)
}

func TestRunSweepMaxCycles(t *testing.T) {
	params := testParams()
	params.EndBalance = params.StartBalance
	params.MaxCycles = 4
	sim, err := NewSimulator(Config{Protocol: newFakeProtocol("57"), Params: params})
	require.NoError(t, err)

	records, err := sim.RunSweep(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].Cycles)
	assert.InDelta(t, 200.0, records[0].TotalDaiEarned, 1e-9)
}

func TestRunSweepPastMaturity(t *testing.T) {
	params := testParams()
	params.TermMaturity = refTime.Add(-time.Hour)
	sim, err := NewSimulator(Config{Protocol: newFakeProtocol("1"), Params: params})
	require.NoError(t, err)

	records, err := sim.RunSweep(context.Background())
	assert.ErrorIs(t, err, ErrNonPositiveMaturity)
	assert.Nil(t, records)
}

func TestRunSweepAbortsWithoutPartialResults(t *testing.T) {
	protocol := newFakeProtocol("107", "57", "0")
	protocol.purchaseErr = errors.New("BAL#507")
	recorder := &collectingRecorder{}
	sim, err := NewSimulator(Config{Protocol: protocol, Params: testParams(), Recorder: recorder})
	require.NoError(t, err)

	records, err := sim.RunSweep(context.Background())
	assert.ErrorIs(t, err, protocol.purchaseErr)
	assert.Contains(t, err.Error(), "10000 DAI")
	assert.Nil(t, records)
	assert.Empty(t, recorder.records)
	assert.Equal(t, 0, protocol.resets)
}

type mockProtocol struct {
	mock.Mock
}

func (m *mockProtocol) ReferenceTime(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *mockProtocol) SeedStablecoin(ctx context.Context, amount types.Wad) error {
	return m.Called(ctx, amount).Error(0)
}

func (m *mockProtocol) NativeBalance(ctx context.Context) (types.Wad, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.Wad), args.Error(1)
}

func (m *mockProtocol) PurchasePT(ctx context.Context, amount types.Wad) (types.Wad, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(types.Wad), args.Error(1)
}

func (m *mockProtocol) CollateralizeForFiat(ctx context.Context) (types.Wad, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.Wad), args.Error(1)
}

func (m *mockProtocol) SwapFiatForDai(ctx context.Context) (types.Wad, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.Wad), args.Error(1)
}

func (m *mockProtocol) ResetChain(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockProtocol) Close() { m.Called() }

func TestRunSweepSeedFailure(t *testing.T) {
	m := &mockProtocol{}
	seedErr := errors.New("whale balance too low")
	m.On("ReferenceTime", mock.Anything).Return(refTime, nil)
	m.On("SeedStablecoin", mock.Anything, mock.Anything).Return(seedErr).Once()

	sim, err := NewSimulator(Config{Protocol: m, Params: testParams()})
	require.NoError(t, err)

	records, err := sim.RunSweep(context.Background())
	assert.ErrorIs(t, err, seedErr)
	assert.Nil(t, records)

	m.AssertExpectations(t)
	m.AssertNotCalled(t, "PurchasePT", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "ResetChain", mock.Anything)
}

func TestRunSweepResetFailure(t *testing.T) {
	m := &mockProtocol{}
	m.On("ReferenceTime", mock.Anything).Return(refTime, nil)
	m.On("SeedStablecoin", mock.Anything, mock.Anything).Return(nil)
	m.On("NativeBalance", mock.Anything).Return(wad("10"), nil)
	m.On("PurchasePT", mock.Anything, mock.Anything).Return(wad("9000"), nil)
	m.On("CollateralizeForFiat", mock.Anything).Return(wad("1000"), nil)
	m.On("SwapFiatForDai", mock.Anything).Return(wad("1000"), nil)
	m.On("ResetChain", mock.Anything).Return(errors.New("hardhat_reset failed")).Once()

	sim, err := NewSimulator(Config{Protocol: m, Params: testParams()})
	require.NoError(t, err)

	records, err := sim.RunSweep(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset chain")
	assert.Nil(t, records)
	m.AssertNumberOfCalls(t, "SeedStablecoin", 1)
}

func TestRunSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim, err := NewSimulator(Config{Protocol: newFakeProtocol("1"), Params: testParams()})
	require.NoError(t, err)

	_, err = sim.RunSweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweepID(t *testing.T) {
	sim, err := NewSimulator(Config{Protocol: newFakeProtocol("1"), Params: testParams(), SweepID: "sweep-1"})
	require.NoError(t, err)
	assert.Equal(t, "sweep-1", sim.SweepID())

	sim, err = NewSimulator(Config{Protocol: newFakeProtocol("1"), Params: testParams()})
	require.NoError(t, err)
	assert.Len(t, sim.SweepID(), 36)
}
