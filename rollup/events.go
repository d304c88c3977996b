package rollup

import (
	"fmt"
	"math/big"
)

// Event is the closed set of rollup contract events this service consumes.
// Dispatch is by type switch; anything the log parser cannot classify
// arrives as UnrecognizedEvent so unhandled tags are an explicit outcome
// rather than a silent fallthrough.
type Event interface {
	isEvent()
}

// OnChainTxEvent carries a deposit/exit forced through the contract: the
// encoded transaction blob plus the raw scalars emitted next to it.
type OnChainTxEvent struct {
	BatchNum    uint64
	TxData      []byte
	LoadAmount  *big.Int
	FromEthAddr *big.Int
	FromAx      *big.Int
	FromAy      *big.Int
	ToEthAddr   *big.Int
	ToAx        *big.Int
	ToAy        *big.Int
}

// OffChainTxEvent carries a transaction already shaped by the coordinator.
// The source system never emits these today; the pass-through below is
// provisional until the schema is confirmed.
type OffChainTxEvent struct {
	Tx Tx
}

// UnrecognizedEvent is any contract event outside the known set.
type UnrecognizedEvent struct {
	Name string
}

func (OnChainTxEvent) isEvent()    {}
func (OffChainTxEvent) isEvent()   {}
func (UnrecognizedEvent) isEvent() {}

// TxDataDecoder decodes the byte layout of an on-chain transaction blob.
// The wire format belongs to the contract; this package never parses it
// itself.
type TxDataDecoder interface {
	DecodeTxData(data []byte) (*Tx, error)
}

// Decoder maps chain events onto uniform Tx records.
type Decoder struct {
	txData TxDataDecoder
}

// NewDecoder returns a Decoder that delegates blob decoding to txData.
func NewDecoder(txData TxDataDecoder) *Decoder {
	return &Decoder{txData: txData}
}

// Decode classifies ev and produces its Tx record. The second return is
// false when the event is not one this service handles; that is an
// "ignore this event" outcome, not an error. Blob decode failures and
// scalar conversion failures are returned unchanged.
func (d *Decoder) Decode(ev Event) (*Tx, bool, error) {
	switch e := ev.(type) {
	case OnChainTxEvent:
		tx, err := d.decodeOnChain(e)
		if err != nil {
			return nil, false, err
		}
		return tx, true, nil
	case OffChainTxEvent:
		tx := e.Tx
		return &tx, true, nil
	default:
		return nil, false, nil
	}
}

func (d *Decoder) decodeOnChain(e OnChainTxEvent) (*Tx, error) {
	tx, err := d.txData.DecodeTxData(e.TxData)
	if err != nil {
		return nil, err
	}

	for name, n := range map[string]*big.Int{
		"loadAmount":  e.LoadAmount,
		"fromAx":      e.FromAx,
		"fromAy":      e.FromAy,
		"fromEthAddr": e.FromEthAddr,
		"toAx":        e.ToAx,
		"toAy":        e.ToAy,
		"toEthAddr":   e.ToEthAddr,
	} {
		if n == nil {
			return nil, fmt.Errorf("on-chain event missing %s", name)
		}
	}

	tx.LoadAmount = new(big.Int).Set(e.LoadAmount)
	tx.FromAx = e.FromAx.Text(16)
	tx.FromAy = e.FromAy.Text(16)
	tx.FromEthAddr = e.FromEthAddr.String()
	tx.ToAx = e.ToAx.Text(16)
	tx.ToAy = e.ToAy.Text(16)
	tx.ToEthAddr = e.ToEthAddr.String()
	return tx, nil
}
