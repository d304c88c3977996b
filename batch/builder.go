package batch

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/zkforge/rollup-forger/rollup"
)

// Builder accumulates decoded rollup transactions for the next batch and
// maintains the ten scalars the forge circuit takes as public input. The
// builder is single-owner mutable state; Snapshot freezes a read-only copy
// for public-input assembly.
type Builder struct {
	maxTxs int
	txs    []rollup.Tx

	initIdx  *big.Int
	finalIdx *big.Int

	oldStateRoot *big.Int
	newStateRoot *big.Int
	newExitRoot  *big.Int

	onChainHash  *big.Int
	offChainHash *big.Int
	countersOut  *big.Int

	feePlanCoins *big.Int
	feePlanFees  *big.Int
}

// NewBuilder starts an empty builder for batches of maxTxs transactions,
// rooted at stateRoot with account indices beginning at initIdx.
func NewBuilder(maxTxs int, initIdx, stateRoot *big.Int) *Builder {
	return &Builder{
		maxTxs:       maxTxs,
		initIdx:      new(big.Int).Set(initIdx),
		finalIdx:     new(big.Int).Set(initIdx),
		oldStateRoot: new(big.Int).Set(stateRoot),
		newStateRoot: new(big.Int).Set(stateRoot),
		newExitRoot:  big.NewInt(0),
		onChainHash:  big.NewInt(0),
		offChainHash: big.NewInt(0),
		countersOut:  big.NewInt(0),
		feePlanCoins: big.NewInt(0),
		feePlanFees:  big.NewInt(0),
	}
}

// Add appends a transaction, folds it into the matching rolling hash and
// advances the counters. On-chain transactions open a new account leaf, so
// they also advance the final index.
func (b *Builder) Add(tx *rollup.Tx) error {
	if tx == nil {
		return fmt.Errorf("cannot add nil transaction")
	}
	if b.Full() {
		return fmt.Errorf("batch is full (%d txs)", b.maxTxs)
	}

	digest, err := txDigest(tx)
	if err != nil {
		return err
	}
	if tx.OnChain {
		b.onChainHash = foldHash(b.onChainHash, digest)
		b.finalIdx = new(big.Int).Add(b.finalIdx, big.NewInt(1))
	} else {
		b.offChainHash = foldHash(b.offChainHash, digest)
	}
	b.countersOut = new(big.Int).Add(b.countersOut, big.NewInt(1))
	b.txs = append(b.txs, *tx)
	return nil
}

// Full reports whether the batch reached its transaction budget.
func (b *Builder) Full() bool {
	return len(b.txs) >= b.maxTxs
}

// Len returns the number of accumulated transactions.
func (b *Builder) Len() int {
	return len(b.txs)
}

// Txs returns a copy of the accumulated transactions.
func (b *Builder) Txs() []rollup.Tx {
	out := make([]rollup.Tx, len(b.txs))
	copy(out, b.txs)
	return out
}

// SetStateRoot records the state root the batch transitions to.
func (b *Builder) SetStateRoot(root *big.Int) {
	b.newStateRoot = new(big.Int).Set(root)
}

// SetExitRoot records the exit tree root after the batch.
func (b *Builder) SetExitRoot(root *big.Int) {
	b.newExitRoot = new(big.Int).Set(root)
}

// SetFeePlan records the packed fee-plan coins and fees for the batch.
func (b *Builder) SetFeePlan(coins, fees *big.Int) {
	b.feePlanCoins = new(big.Int).Set(coins)
	b.feePlanFees = new(big.Int).Set(fees)
}

// Snapshot freezes the builder's current scalars into an immutable view.
func (b *Builder) Snapshot() *Snapshot {
	return &Snapshot{
		finalIdx:     new(big.Int).Set(b.finalIdx),
		newStateRoot: new(big.Int).Set(b.newStateRoot),
		newExitRoot:  new(big.Int).Set(b.newExitRoot),
		onChainHash:  new(big.Int).Set(b.onChainHash),
		offChainHash: new(big.Int).Set(b.offChainHash),
		countersOut:  new(big.Int).Set(b.countersOut),
		initIdx:      new(big.Int).Set(b.initIdx),
		oldStateRoot: new(big.Int).Set(b.oldStateRoot),
		feePlanCoins: new(big.Int).Set(b.feePlanCoins),
		feePlanFees:  new(big.Int).Set(b.feePlanFees),
	}
}

// Next resets the builder for the following batch: the new state root and
// final index become the old root and init index, hashes and counters clear.
func (b *Builder) Next() {
	b.txs = nil
	b.initIdx = new(big.Int).Set(b.finalIdx)
	b.oldStateRoot = new(big.Int).Set(b.newStateRoot)
	b.newExitRoot = big.NewInt(0)
	b.onChainHash = big.NewInt(0)
	b.offChainHash = big.NewInt(0)
	b.countersOut = big.NewInt(0)
}

// Snapshot is a frozen, read-only view of a built batch. Accessors return
// fresh copies so callers cannot reach back into builder state.
type Snapshot struct {
	finalIdx     *big.Int
	newStateRoot *big.Int
	newExitRoot  *big.Int
	onChainHash  *big.Int
	offChainHash *big.Int
	countersOut  *big.Int
	initIdx      *big.Int
	oldStateRoot *big.Int
	feePlanCoins *big.Int
	feePlanFees  *big.Int
}

func (s *Snapshot) FinalIdx() *big.Int     { return new(big.Int).Set(s.finalIdx) }
func (s *Snapshot) NewStateRoot() *big.Int { return new(big.Int).Set(s.newStateRoot) }
func (s *Snapshot) NewExitRoot() *big.Int  { return new(big.Int).Set(s.newExitRoot) }
func (s *Snapshot) OnChainHash() *big.Int  { return new(big.Int).Set(s.onChainHash) }
func (s *Snapshot) OffChainHash() *big.Int { return new(big.Int).Set(s.offChainHash) }
func (s *Snapshot) CountersOut() *big.Int  { return new(big.Int).Set(s.countersOut) }
func (s *Snapshot) InitIdx() *big.Int      { return new(big.Int).Set(s.initIdx) }
func (s *Snapshot) OldStateRoot() *big.Int { return new(big.Int).Set(s.oldStateRoot) }
func (s *Snapshot) FeePlanCoins() *big.Int { return new(big.Int).Set(s.feePlanCoins) }
func (s *Snapshot) FeePlanFees() *big.Int  { return new(big.Int).Set(s.feePlanFees) }

// txDigest hashes the canonical JSON form of a transaction.
func txDigest(tx *rollup.Tx) ([]byte, error) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to hash transaction: %v", err)
	}
	sum := sha256.Sum256(raw)
	return sum[:], nil
}

// foldHash chains the rolling batch hash with the next transaction digest.
func foldHash(acc *big.Int, digest []byte) *big.Int {
	buf := make([]byte, 0, 64)
	buf = append(buf, acc.FillBytes(make([]byte, 32))...)
	buf = append(buf, digest...)
	sum := sha256.Sum256(buf)
	return new(big.Int).SetBytes(sum[:])
}
