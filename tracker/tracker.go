package tracker

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/zkforge/rollup-forger/db"
)

const ledgerKey = "forged_ledger"

// Tracker owns the ascending ledger of forged batch indices that are still
// inside the reorg window. Entries drop out at either end: Retire removes
// the prefix that has finalized, Rollback removes the suffix orphaned by a
// reorg. The ledger is persisted after every mutation so a restart resumes
// with the same pending set.
type Tracker struct {
	mu     sync.Mutex
	ledger []uint64
	store  db.DB
	log    *logrus.Logger
}

// New loads the persisted ledger from store, starting empty when none was
// saved yet.
func New(store db.DB, log *logrus.Logger) (*Tracker, error) {
	t := &Tracker{store: store, log: log}

	raw, err := store.Get([]byte(ledgerKey))
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker ledger: %v", err)
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &t.ledger); err != nil {
			return nil, fmt.Errorf("failed to decode tracker ledger: %v", err)
		}
	}
	return t, nil
}

// Track appends a forged batch index. Indices must arrive in ascending
// order; an out-of-order index is rejected so the prune precondition holds.
func (t *Tracker) Track(idx uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.ledger); n > 0 && t.ledger[n-1] >= idx {
		return fmt.Errorf("batch index %d not above last tracked %d", idx, t.ledger[n-1])
	}
	t.ledger = append(t.ledger, idx)
	return t.persist()
}

// Rollback discards every tracked index above lastSafe and persists the
// remainder. Called when the safety boundary moves back, e.g. after a
// reorg past forged-but-unfinalized batches.
func (t *Tracker) Rollback(lastSafe uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := len(t.ledger)
	t.ledger = Prune(t.ledger, lastSafe)
	if dropped := before - len(t.ledger); dropped > 0 {
		t.log.Infof("Dropped %d tracked batch(es) above safety boundary %d", dropped, lastSafe)
	}
	return t.persist()
}

// Retire discards every tracked index at or below lastFinal and persists
// the remainder. Called each round as the chain's finality boundary
// advances past forged batches.
func (t *Tracker) Retire(lastFinal uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := len(t.ledger)
	t.ledger = Retire(t.ledger, lastFinal)
	if retired := before - len(t.ledger); retired > 0 {
		t.log.Infof("Retired %d finalized batch(es) at or below batch #%d", retired, lastFinal)
	}
	return t.persist()
}

// Pending returns a copy of the tracked indices.
func (t *Tracker) Pending() []uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]uint64, len(t.ledger))
	copy(out, t.ledger)
	return out
}

func (t *Tracker) persist() error {
	raw, err := json.Marshal(t.ledger)
	if err != nil {
		return fmt.Errorf("failed to encode tracker ledger: %v", err)
	}
	if err := t.store.Put([]byte(ledgerKey), raw); err != nil {
		return fmt.Errorf("failed to persist tracker ledger: %v", err)
	}
	return nil
}
