package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/signalsfoundry/galactic-ops/internal/logging"
)

// batchRequest is one line of batch input, e.g. {"op":"xyz2lb","args":[1,2,0]}.
type batchRequest struct {
	ID   string    `json:"id,omitempty"`
	Op   string    `json:"op"`
	Args []float64 `json:"args"`
}

// batchResponse carries either a result or an error, never both.
type batchResponse struct {
	ID     string `json:"id,omitempty"`
	Op     string `json:"op"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

const maxBatchLine = 1 << 20

// runBatch answers one response line per request line until stdin closes or
// ctx is cancelled. Per-request failures are reported inline; only I/O
// failures abort the run.
func runBatch(ctx context.Context, e *env, in io.Reader, out io.Writer) error {
	if e.metricsAddr != "" {
		srv := serveMetrics(ctx, e)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBatchLine)
	enc := json.NewEncoder(out)

	var handled, failed int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := handleBatchLine(ctx, e, line)
		if resp.Error != "" {
			failed++
		}
		handled++
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}

	e.log.Info(ctx, "batch complete",
		logging.Int("requests", handled),
		logging.Int("failed", failed),
	)
	return nil
}

func handleBatchLine(ctx context.Context, e *env, line []byte) batchResponse {
	var req batchRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return batchResponse{Error: fmt.Sprintf("decode request: %v", err)}
	}
	resp := batchResponse{ID: req.ID, Op: req.Op}
	res, err := invoke(ctx, e.ops, req.Op, req.Args)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	// A result JSON cannot encode fails only this request.
	raw, err := json.Marshal(res)
	if err != nil {
		resp.Error = fmt.Sprintf("encode result: %v", err)
		return resp
	}
	resp.Result = json.RawMessage(raw)
	return resp
}

func serveMetrics(ctx context.Context, e *env) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.collector.Handler())

	srv := &http.Server{
		Addr:              e.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.log.Warn(ctx, "metrics server exited", logging.Err(err))
		}
	}()

	e.log.Info(ctx, "serving Prometheus metrics", logging.String("addr", e.metricsAddr))
	return srv
}
