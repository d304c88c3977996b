package forge

import (
	"fmt"
	"math/big"
)

// NumPublicInputs is the number of scalars the forge circuit exposes.
const NumPublicInputs = 10

// BatchSnapshot is the read-only view of a built batch that the public-input
// assembly needs. The batch builder owns and mutates the underlying state;
// each accessor is called at most once per assembly.
type BatchSnapshot interface {
	FinalIdx() *big.Int
	NewStateRoot() *big.Int
	NewExitRoot() *big.Int
	OnChainHash() *big.Int
	OffChainHash() *big.Int
	CountersOut() *big.Int
	InitIdx() *big.Int
	OldStateRoot() *big.Int
	FeePlanCoins() *big.Int
	FeePlanFees() *big.Int
}

// PublicInputs reads the ten snapshot scalars and encodes each one for the
// verifier. The order is the circuit's public-input order and must not
// change: finalIdx, newStateRoot, newExitRoot, onChainHash, offChainHash,
// countersOut, initIdx, oldStateRoot, feePlanCoins, feePlanFees.
func PublicInputs(s BatchSnapshot) ([NumPublicInputs]string, error) {
	scalars := [NumPublicInputs]*big.Int{
		s.FinalIdx(),
		s.NewStateRoot(),
		s.NewExitRoot(),
		s.OnChainHash(),
		s.OffChainHash(),
		s.CountersOut(),
		s.InitIdx(),
		s.OldStateRoot(),
		s.FeePlanCoins(),
		s.FeePlanFees(),
	}

	var inputs [NumPublicInputs]string
	for i, n := range scalars {
		enc, err := EncodeUint256(n)
		if err != nil {
			return inputs, fmt.Errorf("public input %d: %v", i, err)
		}
		inputs[i] = enc
	}
	return inputs, nil
}
