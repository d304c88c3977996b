package batch

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/zkforge/rollup-forger/forge"
	"github.com/zkforge/rollup-forger/tracker"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Put(key, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[string(key)] = cp
	return nil
}

func (m *memStore) Get(key []byte) ([]byte, error) {
	return m.data[string(key)], nil
}

func (m *memStore) Close() error { return nil }

type fakeProver struct {
	gotInputs [forge.NumPublicInputs]string
}

func (f *fakeProver) Generate(_ context.Context, inputs [forge.NumPublicInputs]string) (*forge.Proof, error) {
	f.gotInputs = inputs
	return &forge.Proof{
		A: [2]*big.Int{big.NewInt(11), big.NewInt(12)},
		B: [2][2]*big.Int{
			{big.NewInt(21), big.NewInt(22)},
			{big.NewInt(23), big.NewInt(24)},
		},
		C: [2]*big.Int{big.NewInt(31), big.NewInt(32)},
	}, nil
}

type fakeSubmitter struct {
	calls    int
	lastCall *forge.ForgeCall
}

func (f *fakeSubmitter) ForgeBatch(_ context.Context, call *forge.ForgeCall, _ [forge.NumPublicInputs]string) (common.Hash, error) {
	f.calls++
	f.lastCall = call
	return common.HexToHash("0xf00d"), nil
}

func testRunner(t *testing.T) (*Runner, *memStore, *fakeSubmitter, *tracker.Tracker) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := newMemStore()
	tr, err := tracker.New(store, log)
	require.NoError(t, err)

	builder := NewBuilder(1, big.NewInt(0), big.NewInt(100))
	submitter := &fakeSubmitter{}
	r, err := NewRunner(nil, nil, common.Address{}, nil, builder,
		&fakeProver{}, submitter, tr, store, time.Millisecond, log)
	require.NoError(t, err)
	return r, store, submitter, tr
}

func TestForgeSubmitsAndResets(t *testing.T) {
	r, store, submitter, tr := testRunner(t)
	require.NoError(t, r.builder.Add(onChainTx(7)))

	require.NoError(t, r.forge(context.Background(), 42))
	require.Equal(t, 1, submitter.calls)

	// proofB rows arrive coordinate-swapped
	wantB00, err := forge.EncodeUint256(big.NewInt(22))
	require.NoError(t, err)
	require.Equal(t, wantB00, submitter.lastCall.ProofB[0][0])

	raw, err := store.Get([]byte("forged_1"))
	require.NoError(t, err)
	require.NotNil(t, raw)
	var record ForgedBatch
	require.NoError(t, json.Unmarshal(raw, &record))
	require.Equal(t, uint64(1), record.BatchNum)
	require.Equal(t, uint64(42), record.ForgedAt)
	require.Equal(t, 1, record.TxCount)
	require.Len(t, record.PublicInputs, forge.NumPublicInputs)

	require.Equal(t, []uint64{1}, tr.Pending())
	require.Zero(t, r.builder.Len(), "builder must reset after a forge")
	require.Equal(t, uint64(2), r.batchNum)
}

func TestRetireFinalizedDropsConfirmedBatches(t *testing.T) {
	r, _, _, tr := testRunner(t)

	require.NoError(t, r.builder.Add(onChainTx(1)))
	require.NoError(t, r.forge(context.Background(), 10))
	require.NoError(t, r.builder.Add(onChainTx(2)))
	require.NoError(t, r.forge(context.Background(), 20))
	require.NoError(t, r.builder.Add(onChainTx(3)))
	require.NoError(t, r.forge(context.Background(), 30))

	// finality below every forge height keeps the ledger intact
	r.retireFinalized(5)
	require.Equal(t, []uint64{1, 2, 3}, tr.Pending())

	// batches forged at heights 10 and 20 are final once the boundary
	// reaches 25; only the batch at height 30 stays pending
	r.retireFinalized(25)
	require.Equal(t, []uint64{3}, tr.Pending())

	r.retireFinalized(30)
	require.Empty(t, tr.Pending())
}

func TestHandleReorgDropsUnsafeBatches(t *testing.T) {
	r, _, _, tr := testRunner(t)

	require.NoError(t, r.builder.Add(onChainTx(1)))
	require.NoError(t, r.forge(context.Background(), 10))
	require.NoError(t, r.builder.Add(onChainTx(2)))
	require.NoError(t, r.forge(context.Background(), 20))
	require.Equal(t, []uint64{1, 2}, tr.Pending())

	r.lastScanned = 25
	r.handleReorg(15)

	require.Equal(t, []uint64{1}, tr.Pending())
	require.Equal(t, uint64(15), r.lastScanned)
}
