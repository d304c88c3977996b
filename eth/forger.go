package eth

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/zkforge/rollup-forger/forge"
)

// Forger signs and submits forgeBatch transactions to the rollup contract.
type Forger struct {
	client   *Client
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
	log      *logrus.Logger
}

// NewForger builds a Forger from a hex-encoded private key.
func NewForger(client *Client, contract common.Address, hexKey string, chainID *big.Int, log *logrus.Logger) (*Forger, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid forger key: %v", err)
	}
	return &Forger{
		client:   client,
		contract: contract,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
		log:      log,
	}, nil
}

// ForgeBatch packs the proof call and public inputs into forgeBatch
// calldata, signs it and submits it. Returns the transaction hash.
func (f *Forger) ForgeBatch(ctx context.Context, call *forge.ForgeCall, inputs [forge.NumPublicInputs]string) (common.Hash, error) {
	calldata, err := PackForgeBatch(call, inputs)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := f.client.Eth.PendingNonceAt(ctx, f.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch nonce: %v", err)
	}
	gasPrice, err := f.client.Eth.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch gas price: %v", err)
	}
	gasLimit, err := f.client.Eth.EstimateGas(ctx, ethereum.CallMsg{
		From: f.from,
		To:   &f.contract,
		Data: calldata,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("forgeBatch gas estimation failed: %v", err)
	}

	tx := types.NewTransaction(nonce, f.contract, big.NewInt(0), gasLimit, gasPrice, calldata)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(f.chainID), f.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign forgeBatch tx: %v", err)
	}
	if err := f.client.Eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send forgeBatch tx: %v", err)
	}

	f.log.Infof("Submitted forgeBatch tx %s (nonce %d, gas %d)", signed.Hash().Hex(), nonce, gasLimit)
	return signed.Hash(), nil
}

// PackForgeBatch turns a contract-ready proof call plus the assembled public
// inputs back into ABI calldata for forgeBatch.
func PackForgeBatch(call *forge.ForgeCall, inputs [forge.NumPublicInputs]string) ([]byte, error) {
	var (
		proofA, proofC [2]*big.Int
		proofB         [2][2]*big.Int
		input          [forge.NumPublicInputs]*big.Int
		err            error
	)

	for i := 0; i < 2; i++ {
		if proofA[i], err = decodeWord(call.ProofA[i]); err != nil {
			return nil, fmt.Errorf("proofA[%d]: %v", i, err)
		}
		if proofC[i], err = decodeWord(call.ProofC[i]); err != nil {
			return nil, fmt.Errorf("proofC[%d]: %v", i, err)
		}
		for j := 0; j < 2; j++ {
			if proofB[i][j], err = decodeWord(call.ProofB[i][j]); err != nil {
				return nil, fmt.Errorf("proofB[%d][%d]: %v", i, j, err)
			}
		}
	}
	for i, enc := range inputs {
		if input[i], err = decodeWord(enc); err != nil {
			return nil, fmt.Errorf("input[%d]: %v", i, err)
		}
	}

	calldata, err := rollupABI.Pack("forgeBatch", proofA, proofB, proofC, input)
	if err != nil {
		return nil, fmt.Errorf("failed to pack forgeBatch: %v", err)
	}
	return calldata, nil
}

func decodeWord(enc string) (*big.Int, error) {
	digits := strings.TrimPrefix(enc, "0x")
	if digits == "" {
		return nil, fmt.Errorf("empty hex word")
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("malformed hex word %q", enc)
	}
	return n, nil
}
