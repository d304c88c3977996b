package rollup

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTxDataDecoder struct {
	calls [][]byte
	tx    *Tx
	err   error
}

func (f *fakeTxDataDecoder) DecodeTxData(data []byte) (*Tx, error) {
	f.calls = append(f.calls, data)
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.tx
	return &cp, nil
}

func onChainEvent() OnChainTxEvent {
	return OnChainTxEvent{
		BatchNum:    7,
		TxData:      []byte{0xab, 0xcd},
		LoadAmount:  big.NewInt(1000),
		FromEthAddr: big.NewInt(0xffee),
		FromAx:      big.NewInt(0x1a2b),
		FromAy:      big.NewInt(0x3c4d),
		ToEthAddr:   big.NewInt(0xddcc),
		ToAx:        big.NewInt(0x5e6f),
		ToAy:        big.NewInt(0x70),
	}
}

func TestDecodeOnChainTx(t *testing.T) {
	fake := &fakeTxDataDecoder{tx: &Tx{
		Type:    "deposit",
		Amount:  big.NewInt(50),
		Coin:    3,
		OnChain: true,
	}}
	dec := NewDecoder(fake)

	tx, ok, err := dec.Decode(onChainEvent())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, [][]byte{{0xab, 0xcd}}, fake.calls)

	require.Equal(t, "deposit", tx.Type)
	require.Equal(t, int64(50), tx.Amount.Int64())
	require.Equal(t, uint32(3), tx.Coin)
	require.True(t, tx.OnChain, "on-chain flag must come from the decoded blob")

	require.Equal(t, int64(1000), tx.LoadAmount.Int64())
	require.Equal(t, "1a2b", tx.FromAx)
	require.Equal(t, "3c4d", tx.FromAy)
	require.Equal(t, "5e6f", tx.ToAx)
	require.Equal(t, "70", tx.ToAy, "coordinates must not be zero-padded")
	require.Equal(t, big.NewInt(0xffee).String(), tx.FromEthAddr)
	require.Equal(t, big.NewInt(0xddcc).String(), tx.ToEthAddr)
}

func TestDecodeOnChainTxPropagatesBlobError(t *testing.T) {
	fake := &fakeTxDataDecoder{err: fmt.Errorf("bad blob")}
	dec := NewDecoder(fake)

	_, ok, err := dec.Decode(onChainEvent())
	require.False(t, ok)
	require.EqualError(t, err, "bad blob")
}

func TestDecodeOnChainTxMissingScalar(t *testing.T) {
	ev := onChainEvent()
	ev.ToAy = nil

	dec := NewDecoder(&fakeTxDataDecoder{tx: &Tx{}})
	_, ok, err := dec.Decode(ev)
	require.False(t, ok)
	require.Error(t, err)
}

func TestDecodeOffChainTxPassThrough(t *testing.T) {
	orig := Tx{Type: "transfer", Amount: big.NewInt(9), FromAx: "aa"}
	dec := NewDecoder(&fakeTxDataDecoder{})

	tx, ok, err := dec.Decode(OffChainTxEvent{Tx: orig})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, orig, *tx)
	require.Empty(t, dec.txData.(*fakeTxDataDecoder).calls)
}

func TestDecodeUnrecognizedEvent(t *testing.T) {
	dec := NewDecoder(&fakeTxDataDecoder{})

	tx, ok, err := dec.Decode(UnrecognizedEvent{Name: "AddToken"})
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, tx)
}
