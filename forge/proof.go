package forge

import (
	"fmt"
	"math/big"
)

// Proof is a Groth16 proof as delivered by the proving service: two G1
// points (A, C), one G2 point (B) and, optionally, the public-input scalars
// the proof was generated against. A nil PublicInputs means the prover sent
// none; an empty slice is a proof over zero inputs.
type Proof struct {
	A            [2]*big.Int
	B            [2][2]*big.Int
	C            [2]*big.Int
	PublicInputs []*big.Int
}

// ForgeCall is the contract-ready shape of a Proof: every scalar encoded as
// a 256-bit hex word, with B's coordinates swapped per row. This is the only
// artifact handed to the submission layer.
type ForgeCall struct {
	ProofA       [2]string    `json:"proofA"`
	ProofB       [2][2]string `json:"proofB"`
	ProofC       [2]string    `json:"proofC"`
	PublicInputs []string     `json:"publicInputs,omitempty"`
}

// BuildForgeCall encodes a raw proof into the field order and grouping the
// verifier contract expects. Each G2 row of B is emitted imaginary
// coordinate first, matching the pairing precompile encoding; a proof
// submitted without the swap fails verification.
func BuildForgeCall(p *Proof) (*ForgeCall, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot build call from nil proof")
	}

	call := &ForgeCall{}
	var err error

	for i := 0; i < 2; i++ {
		if call.ProofA[i], err = EncodeUint256(p.A[i]); err != nil {
			return nil, fmt.Errorf("proofA[%d]: %v", i, err)
		}
		if call.ProofC[i], err = EncodeUint256(p.C[i]); err != nil {
			return nil, fmt.Errorf("proofC[%d]: %v", i, err)
		}
	}

	for i := 0; i < 2; i++ {
		if call.ProofB[i][0], err = EncodeUint256(p.B[i][1]); err != nil {
			return nil, fmt.Errorf("proofB[%d][1]: %v", i, err)
		}
		if call.ProofB[i][1], err = EncodeUint256(p.B[i][0]); err != nil {
			return nil, fmt.Errorf("proofB[%d][0]: %v", i, err)
		}
	}

	if p.PublicInputs != nil {
		call.PublicInputs = make([]string, len(p.PublicInputs))
		for i, n := range p.PublicInputs {
			if call.PublicInputs[i], err = EncodeUint256(n); err != nil {
				return nil, fmt.Errorf("publicInputs[%d]: %v", i, err)
			}
		}
	}

	return call, nil
}
