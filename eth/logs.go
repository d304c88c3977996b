package eth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/zkforge/rollup-forger/rollup"
)

// rollupABIJSON is the fragment of the rollup contract this service talks
// to: the OnChainTx event it consumes and the forgeBatch function it calls.
const rollupABIJSON = `[
  {
    "type": "event",
    "name": "OnChainTx",
    "anonymous": false,
    "inputs": [
      {"name": "batchNumber", "type": "uint256", "indexed": false},
      {"name": "txData", "type": "bytes32", "indexed": false},
      {"name": "loadAmount", "type": "uint128", "indexed": false},
      {"name": "fromEthAddress", "type": "address", "indexed": false},
      {"name": "fromAx", "type": "uint256", "indexed": false},
      {"name": "fromAy", "type": "uint256", "indexed": false},
      {"name": "toEthAddress", "type": "address", "indexed": false},
      {"name": "toAx", "type": "uint256", "indexed": false},
      {"name": "toAy", "type": "uint256", "indexed": false}
    ]
  },
  {
    "type": "function",
    "name": "forgeBatch",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "proofA", "type": "uint256[2]"},
      {"name": "proofB", "type": "uint256[2][2]"},
      {"name": "proofC", "type": "uint256[2]"},
      {"name": "input", "type": "uint256[10]"}
    ],
    "outputs": []
  }
]`

var rollupABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(rollupABIJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid rollup ABI: %v", err))
	}
	rollupABI = parsed
}

type onChainTxAux struct {
	BatchNumber    *big.Int
	TxData         [32]byte
	LoadAmount     *big.Int
	FromEthAddress common.Address
	FromAx         *big.Int
	FromAy         *big.Int
	ToEthAddress   common.Address
	ToAx           *big.Int
	ToAy           *big.Int
}

// ParseLog classifies a contract log into a rollup.Event. Logs whose topic
// is not in the known set come back as rollup.UnrecognizedEvent; unpacking
// failures on a known topic are errors.
func ParseLog(vLog types.Log) (rollup.Event, error) {
	if len(vLog.Topics) == 0 {
		return rollup.UnrecognizedEvent{}, nil
	}

	switch vLog.Topics[0] {
	case rollupABI.Events["OnChainTx"].ID:
		var aux onChainTxAux
		if err := rollupABI.UnpackIntoInterface(&aux, "OnChainTx", vLog.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack OnChainTx log: %v", err)
		}
		return rollup.OnChainTxEvent{
			BatchNum:    aux.BatchNumber.Uint64(),
			TxData:      aux.TxData[:],
			LoadAmount:  aux.LoadAmount,
			FromEthAddr: new(big.Int).SetBytes(aux.FromEthAddress.Bytes()),
			FromAx:      aux.FromAx,
			FromAy:      aux.FromAy,
			ToEthAddr:   new(big.Int).SetBytes(aux.ToEthAddress.Bytes()),
			ToAx:        aux.ToAx,
			ToAy:        aux.ToAy,
		}, nil
	default:
		return rollup.UnrecognizedEvent{Name: vLog.Topics[0].Hex()}, nil
	}
}
