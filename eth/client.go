package eth

import (
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps both rpc.Client and ethclient.Client for talking to the
// settlement chain: the typed client for logs and transactions, the raw one
// for methods ethclient does not surface.
type Client struct {
	Rpc *rpc.Client
	Eth *ethclient.Client
}

// NewClient dials url once and shares the connection between both clients
func NewClient(url string) (*Client, error) {
	rpcClient, err := rpc.Dial(url)
	if err != nil {
		return nil, err
	}

	return &Client{
		Rpc: rpcClient,
		Eth: ethclient.NewClient(rpcClient),
	}, nil
}

// Close tears down the underlying connection
func (c *Client) Close() {
	c.Rpc.Close()
}
