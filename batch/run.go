package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/zkforge/rollup-forger/db"
	"github.com/zkforge/rollup-forger/eth"
	"github.com/zkforge/rollup-forger/forge"
	"github.com/zkforge/rollup-forger/retry"
	"github.com/zkforge/rollup-forger/rollup"
	"github.com/zkforge/rollup-forger/tracker"
)

// ProofSource produces a proof for a batch's assembled public inputs.
type ProofSource interface {
	Generate(ctx context.Context, inputs [forge.NumPublicInputs]string) (*forge.Proof, error)
}

// Submitter sends a contract-ready forge call to the chain.
type Submitter interface {
	ForgeBatch(ctx context.Context, call *forge.ForgeCall, inputs [forge.NumPublicInputs]string) (common.Hash, error)
}

// ForgedBatch is the persisted record of one submitted batch.
type ForgedBatch struct {
	BatchNum     uint64           `json:"batch_num"`
	TxHash       string           `json:"tx_hash"`
	TxCount      int              `json:"tx_count"`
	Call         *forge.ForgeCall `json:"call"`
	PublicInputs []string         `json:"public_inputs"`
	ForgedAt     uint64           `json:"forged_at_block"`
	Timestamp    int64            `json:"timestamp"`
}

// Runner drives the forge pipeline: scan contract logs, decode them into
// rollup transactions, fill the builder, and on a full batch request a
// proof and submit the forge call.
type Runner struct {
	client    *eth.Client
	rpc       *eth.RpcClient
	contract  common.Address
	decoder   *rollup.Decoder
	builder   *Builder
	prover    ProofSource
	submitter Submitter
	tracker   *tracker.Tracker
	store     db.DB
	poll      time.Duration
	log       *logrus.Logger

	batchNum    uint64
	lastScanned uint64
}

// NewRunner wires a Runner and restores its scan cursor and batch counter
// from the store.
func NewRunner(client *eth.Client, rpc *eth.RpcClient, contract common.Address,
	decoder *rollup.Decoder, builder *Builder, prover ProofSource, submitter Submitter,
	tr *tracker.Tracker, store db.DB, poll time.Duration, log *logrus.Logger) (*Runner, error) {
	r := &Runner{
		client:    client,
		rpc:       rpc,
		contract:  contract,
		decoder:   decoder,
		builder:   builder,
		prover:    prover,
		submitter: submitter,
		tracker:   tr,
		store:     store,
		poll:      poll,
		log:       log,
		batchNum:  1,
	}

	if raw, err := store.Get([]byte("last_block")); err == nil && raw != nil {
		r.lastScanned = new(big.Int).SetBytes(raw).Uint64()
	}
	if raw, err := store.Get([]byte("batch_num")); err == nil && raw != nil {
		r.batchNum = new(big.Int).SetBytes(raw).Uint64()
	}
	return r, nil
}

// Run loops until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Infof("Forge runner starting from block %d, next batch #%d", r.lastScanned, r.batchNum)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		latest, err := r.client.Eth.BlockNumber(ctx)
		if err != nil {
			r.log.Warnf("Failed to fetch latest block number: %v, retrying", err)
			retry.Delay(r.poll)
			continue
		}

		if latest < r.lastScanned {
			r.handleReorg(latest)
			continue
		}

		if finalized, err := r.rpc.FinalizedBlockNumber(); err == nil {
			r.store.Put([]byte("finalized_block"), finalized.Bytes())
			r.retireFinalized(finalized.Uint64())
		} else {
			r.log.Debugf("Failed to fetch finalized block: %v", err)
		}

		if r.lastScanned >= latest {
			retry.Delay(r.poll)
			continue
		}

		if err := r.scan(ctx, r.lastScanned+1, latest); err != nil {
			r.log.Warnf("Scan of blocks %d-%d failed: %v, retrying", r.lastScanned+1, latest, err)
			retry.Delay(r.poll)
			continue
		}

		r.lastScanned = latest
		r.store.Put([]byte("last_block"), new(big.Int).SetUint64(latest).Bytes())
	}
}

func (r *Runner) scan(ctx context.Context, from, to uint64) error {
	logs, err := r.client.Eth.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{r.contract},
	})
	if err != nil {
		return fmt.Errorf("failed to filter logs: %v", err)
	}

	for _, vLog := range logs {
		ev, err := eth.ParseLog(vLog)
		if err != nil {
			r.log.Warnf("Skipping log %s[%d]: %v", vLog.TxHash.Hex(), vLog.Index, err)
			continue
		}

		tx, ok, err := r.decoder.Decode(ev)
		if err != nil {
			r.log.Warnf("Skipping undecodable event in %s: %v", vLog.TxHash.Hex(), err)
			continue
		}
		if !ok {
			continue
		}

		if err := r.builder.Add(tx); err != nil {
			return fmt.Errorf("failed to add tx to batch #%d: %v", r.batchNum, err)
		}
		r.log.Debugf("Batch #%d: %d tx(s) collected", r.batchNum, r.builder.Len())

		if r.builder.Full() {
			if err := r.forge(ctx, vLog.BlockNumber); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) forge(ctx context.Context, height uint64) error {
	snapshot := r.builder.Snapshot()
	inputs, err := forge.PublicInputs(snapshot)
	if err != nil {
		return fmt.Errorf("batch #%d: %v", r.batchNum, err)
	}

	proof, err := r.prover.Generate(ctx, inputs)
	if err != nil {
		return fmt.Errorf("batch #%d proof generation failed: %v", r.batchNum, err)
	}

	call, err := forge.BuildForgeCall(proof)
	if err != nil {
		return fmt.Errorf("batch #%d: %v", r.batchNum, err)
	}

	txHash, err := r.submitter.ForgeBatch(ctx, call, inputs)
	if err != nil {
		return fmt.Errorf("batch #%d submission failed: %v", r.batchNum, err)
	}

	record := ForgedBatch{
		BatchNum:     r.batchNum,
		TxHash:       txHash.Hex(),
		TxCount:      r.builder.Len(),
		Call:         call,
		PublicInputs: inputs[:],
		ForgedAt:     height,
		Timestamp:    time.Now().Unix(),
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode batch #%d record: %v", r.batchNum, err)
	}
	if err := r.store.Put([]byte(fmt.Sprintf("forged_%d", r.batchNum)), raw); err != nil {
		return fmt.Errorf("failed to save batch #%d record: %v", r.batchNum, err)
	}

	if err := r.tracker.Track(r.batchNum); err != nil {
		return err
	}
	r.log.Infof("Forged batch #%d (%d txs) in tx %s", r.batchNum, record.TxCount, record.TxHash)

	r.builder.Next()
	r.batchNum++
	r.store.Put([]byte("batch_num"), new(big.Int).SetUint64(r.batchNum).Bytes())
	return nil
}

// retireFinalized drops tracked batches whose forge height has passed the
// chain's finality boundary; they can no longer reorg out.
func (r *Runner) retireFinalized(finalized uint64) {
	lastFinal := uint64(0)
	for _, idx := range r.tracker.Pending() {
		raw, err := r.store.Get([]byte(fmt.Sprintf("forged_%d", idx)))
		if err != nil || raw == nil {
			break
		}
		var record ForgedBatch
		if err := json.Unmarshal(raw, &record); err != nil || record.ForgedAt > finalized {
			break
		}
		lastFinal = idx
	}
	if lastFinal == 0 {
		return
	}
	if err := r.tracker.Retire(lastFinal); err != nil {
		r.log.Errorf("Tracker retirement at batch #%d failed: %v", lastFinal, err)
	}
}

// handleReorg rewinds the scan cursor to the new head and drops tracked
// batches that were forged above it.
func (r *Runner) handleReorg(newHead uint64) {
	r.log.Warnf("Chain head moved back from %d to %d, rewinding", r.lastScanned, newHead)

	lastSafe := uint64(0)
	for _, idx := range r.tracker.Pending() {
		raw, err := r.store.Get([]byte(fmt.Sprintf("forged_%d", idx)))
		if err != nil || raw == nil {
			break
		}
		var record ForgedBatch
		if err := json.Unmarshal(raw, &record); err != nil || record.ForgedAt > newHead {
			break
		}
		lastSafe = idx
	}
	if err := r.tracker.Rollback(lastSafe); err != nil {
		r.log.Errorf("Tracker rollback to batch #%d failed: %v", lastSafe, err)
	}

	r.lastScanned = newHead
	r.store.Put([]byte("last_block"), new(big.Int).SetUint64(newHead).Bytes())
}
