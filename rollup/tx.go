package rollup

import "math/big"

// Tx is the uniform transaction record every decoded event is mapped to.
// Curve coordinates are bare lowercase hex strings (no 0x prefix, no
// padding); Ethereum addresses are base-10 integer strings. Records are
// created fresh per event and not mutated afterwards.
type Tx struct {
	Type        string   `json:"type"`
	Amount      *big.Int `json:"amount"`
	LoadAmount  *big.Int `json:"loadAmount"`
	Coin        uint32   `json:"coin"`
	FromAx      string   `json:"fromAx"`
	FromAy      string   `json:"fromAy"`
	FromEthAddr string   `json:"fromEthAddr"`
	ToAx        string   `json:"toAx"`
	ToAy        string   `json:"toAy"`
	ToEthAddr   string   `json:"toEthAddr"`
	OnChain     bool     `json:"onChain"`
}
