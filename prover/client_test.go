package prover

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/zkforge/rollup-forger/forge"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testInputs(t *testing.T) [forge.NumPublicInputs]string {
	t.Helper()
	var inputs [forge.NumPublicInputs]string
	for i := range inputs {
		inputs[i] = "0x01"
	}
	return inputs
}

func successBody(signals []string) generateResponse {
	return generateResponse{
		Status:  200,
		Success: true,
		Data: proofJSON{
			PiA:           [2]string{"11", "12"},
			PiB:           [2][2]string{{"21", "22"}, {"23", "24"}},
			PiC:           [2]string{"31", "32"},
			PublicSignals: signals,
		},
	}
}

func TestGenerateParsesProof(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/proof/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(successBody([]string{"5", "6"}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	proof, err := c.Generate(context.Background(), testInputs(t))
	require.NoError(t, err)
	require.Len(t, gotReq.PublicInputs, forge.NumPublicInputs)

	require.Equal(t, int64(11), proof.A[0].Int64())
	require.Equal(t, int64(24), proof.B[1][1].Int64())
	require.Equal(t, int64(32), proof.C[1].Int64())
	require.Len(t, proof.PublicInputs, 2)
	require.Equal(t, int64(6), proof.PublicInputs[1].Int64())
}

func TestGenerateOmittedSignalsStayNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(successBody(nil))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	proof, err := c.Generate(context.Background(), testInputs(t))
	require.NoError(t, err)
	require.Nil(t, proof.PublicInputs)
}

func TestGenerateRetriesFailureThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			json.NewEncoder(w).Encode(generateResponse{Success: false, Description: "busy"})
			return
		}
		json.NewEncoder(w).Encode(successBody(nil))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	_, err := c.Generate(context.Background(), testInputs(t))
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestGenerateMalformedScalar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := successBody(nil)
		body.Data.PiB[0][1] = "not-a-number"
		json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	_, err := c.Generate(context.Background(), testInputs(t))
	require.Error(t, err)
}

func TestGenerateHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("http://127.0.0.1:0", quietLogger())
	_, err := c.Generate(ctx, testInputs(t))
	require.ErrorIs(t, err, context.Canceled)
}
