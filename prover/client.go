package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zkforge/rollup-forger/forge"
	"github.com/zkforge/rollup-forger/retry"
)

// generateRequest is the body posted to the proving service.
type generateRequest struct {
	PublicInputs []string `json:"publicInputs"`
}

// proofJSON is the proof as the proving service emits it: decimal-string
// scalars in snarkjs field order. Coordinate swapping for the verifier
// happens later, in forge.BuildForgeCall.
type proofJSON struct {
	PiA           [2]string    `json:"pi_a"`
	PiB           [2][2]string `json:"pi_b"`
	PiC           [2]string    `json:"pi_c"`
	PublicSignals []string     `json:"publicSignals,omitempty"`
}

type generateResponse struct {
	Status      int       `json:"status"`
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	Description string    `json:"description"`
	Data        proofJSON `json:"data,omitempty"`
}

// Client talks to the proving service over HTTP.
type Client struct {
	endpoint string
	client   *http.Client
	log      *logrus.Logger
}

// NewClient creates a prover client with a 5-minute request timeout; proof
// generation is slow.
func NewClient(endpoint string, log *logrus.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 300 * time.Second,
		},
		log: log,
	}
}

func (c *Client) request(body any) ([]byte, int, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("error encoding JSON body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint+"/api/v1/proof/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, 0, fmt.Errorf("error creating POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error making HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error reading response body: %w", err)
	}
	return bodyBytes, resp.StatusCode, nil
}

// Generate asks the proving service for a proof over the assembled public
// inputs, retrying with capped backoff until it succeeds, the request is
// rejected as non-retryable, or ctx is cancelled.
func (c *Client) Generate(ctx context.Context, inputs [forge.NumPublicInputs]string) (*forge.Proof, error) {
	body := generateRequest{PublicInputs: inputs[:]}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("proof generation cancelled: %w", err)
		}

		res, statusCode, err := c.request(body)
		if err == nil {
			var bodyRes generateResponse
			if unmarshalErr := json.Unmarshal(res, &bodyRes); unmarshalErr != nil {
				c.log.Warnf("Attempt %d: error unmarshalling prover response: %v, retrying", attempt, unmarshalErr)
				retry.Delay(retry.Backoff(attempt))
				continue
			}

			if !bodyRes.Success {
				c.log.Warnf("Attempt %d: proof generation failed: %s, retrying", attempt, bodyRes.Description)
				retry.Delay(retry.Backoff(attempt))
				continue
			}

			return parseProof(&bodyRes.Data)
		}

		if statusCode == http.StatusBadRequest ||
			statusCode == http.StatusUnauthorized ||
			statusCode == http.StatusForbidden ||
			statusCode == http.StatusNotFound {
			return nil, fmt.Errorf("non-retryable error (HTTP %d): %w", statusCode, err)
		}

		c.log.Warnf("Attempt %d: error making prover request: %v, retrying", attempt, err)
		retry.Delay(retry.Backoff(attempt))
	}
}

// parseProof converts the service's decimal-string scalars into a raw proof.
func parseProof(p *proofJSON) (*forge.Proof, error) {
	proof := &forge.Proof{}
	var err error

	for i := 0; i < 2; i++ {
		if proof.A[i], err = parseScalar(p.PiA[i]); err != nil {
			return nil, fmt.Errorf("pi_a[%d]: %v", i, err)
		}
		if proof.C[i], err = parseScalar(p.PiC[i]); err != nil {
			return nil, fmt.Errorf("pi_c[%d]: %v", i, err)
		}
		for j := 0; j < 2; j++ {
			if proof.B[i][j], err = parseScalar(p.PiB[i][j]); err != nil {
				return nil, fmt.Errorf("pi_b[%d][%d]: %v", i, j, err)
			}
		}
	}

	if p.PublicSignals != nil {
		proof.PublicInputs = make([]*big.Int, len(p.PublicSignals))
		for i, s := range p.PublicSignals {
			if proof.PublicInputs[i], err = parseScalar(s); err != nil {
				return nil, fmt.Errorf("publicSignals[%d]: %v", i, err)
			}
		}
	}
	return proof, nil
}

func parseScalar(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("malformed scalar %q", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative scalar %q", s)
	}
	return n, nil
}
