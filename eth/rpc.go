package eth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"
)

const maxRetries = 3

type RPCRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type RPCResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// RpcClient is a minimal JSON-RPC client with bounded retry, used for the
// block-tag queries the typed client does not expose.
type RpcClient struct {
	URL string
}

func NewRpcClient(url string) *RpcClient {
	return &RpcClient{URL: url}
}

// Call posts a single JSON-RPC request, retrying transport failures up to
// maxRetries with a linearly growing pause.
func (c *RpcClient) Call(method string, params []interface{}) (*RPCResponse, error) {
	reqBody := RPCRequest{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := http.Post(c.URL, "application/json", bytes.NewBuffer(data))
		if err == nil {
			defer resp.Body.Close()
			var rpcResp RPCResponse
			if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
				return nil, fmt.Errorf("failed to decode response: %v", err)
			}
			if rpcResp.Error != nil {
				return nil, fmt.Errorf("RPC error: %s", rpcResp.Error.Message)
			}
			return &rpcResp, nil
		}
		if attempt < maxRetries-1 {
			time.Sleep(time.Second * time.Duration(attempt+1))
		}
	}
	return nil, fmt.Errorf("RPC call failed after %d retries", maxRetries)
}

// FinalizedBlockNumber returns the number of the chain's finalized block,
// the safety boundary the batch tracker prunes against. Falls back to the
// latest block on nodes that predate the finalized tag.
func (c *RpcClient) FinalizedBlockNumber() (*big.Int, error) {
	num, err := c.blockNumberByTag("finalized")
	if err == nil {
		return num, nil
	}
	return c.blockNumberByTag("latest")
}

func (c *RpcClient) blockNumberByTag(tag string) (*big.Int, error) {
	resp, err := c.Call("eth_getBlockByNumber", []interface{}{tag, false})
	if err != nil {
		return nil, err
	}
	var block struct {
		Number string `json:"number"`
	}
	if err := json.Unmarshal(resp.Result, &block); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s block: %v", tag, err)
	}
	if block.Number == "" {
		return nil, fmt.Errorf("no %s block available", tag)
	}
	return HexToBigInt(block.Number), nil
}

// HexToBigInt parses a 0x-prefixed hex quantity, returning zero for the
// empty string.
func HexToBigInt(hexStr string) *big.Int {
	if hexStr == "" {
		return big.NewInt(0)
	}
	n := new(big.Int)
	n.SetString(strings.TrimPrefix(hexStr, "0x"), 16)
	return n
}
