package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/galactic-ops/core"
)

// runGalops invokes run with an isolated config directory so local
// galops.yaml or .env files never leak into the test.
func runGalops(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	dir := t.TempDir()
	full := append([]string{
		"-config-dir", dir,
		"-env-file", filepath.Join(dir, "missing.env"),
	}, args...)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), full, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decodeFloats(t *testing.T, out string) map[string]float64 {
	t.Helper()
	var got map[string]float64
	require.NoError(t, json.Unmarshal([]byte(out), &got), "stdout: %q", out)
	return got
}

func TestDTrueCommand(t *testing.T) {
	code, out, _ := runGalops(t, "", "dtrue", "0", "0", "0")
	require.Equal(t, exitOK, code)
	assert.InDelta(t, 8.5, decodeFloats(t, out)["dtrue_kpc"], 1e-12)
}

func TestXYZToLBCommand(t *testing.T) {
	code, out, _ := runGalops(t, "", "xyz2lb", "1", "8.5", "0")
	require.Equal(t, exitOK, code)
	got := decodeFloats(t, out)
	assert.InDelta(t, 90.0, got["l"], 1e-9)
	assert.InDelta(t, 0.0, got["b"], 1e-9)
}

func TestDTrueLargeCoordinates(t *testing.T) {
	code, out, _ := runGalops(t, "", "dtrue", "1e200", "0", "0")
	require.Equal(t, exitOK, code)
	assert.Equal(t, 1e200, decodeFloats(t, out)["dtrue_kpc"])
}

func TestScatterOverflowReportsDomainError(t *testing.T) {
	code, out, errOut := runGalops(t, "", "scatter", "1e18", "-4", "1400")
	assert.Equal(t, exitError, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "overflows")
}

func TestOffsetCommand(t *testing.T) {
	code, out, _ := runGalops(t, "", "offset", "0", "0", "180", "0")
	require.Equal(t, exitOK, code)
	assert.InDelta(t, 180.0, decodeFloats(t, out)["offset_deg"], 1e-9)
}

func TestLBToXYZCommand(t *testing.T) {
	code, out, _ := runGalops(t, "", "lb2xyz", "0", "0", "8.5")
	require.Equal(t, exitOK, code)
	got := decodeFloats(t, out)
	assert.InDelta(t, 0.0, got["x"], 1e-9)
	assert.InDelta(t, 0.0, got["y"], 1e-9)
	assert.InDelta(t, 0.0, got["z"], 1e-9)
}

func TestDegenerateInputPrintsNoResult(t *testing.T) {
	code, out, errOut := runGalops(t, "", "xyz2lb", "0", "8.5", "0")
	assert.Equal(t, exitError, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "degenerate")
}

func TestSeedMakesDrawsReproducible(t *testing.T) {
	_, first, _ := runGalops(t, "", "-seed", "7", "scatter", "100", "-4", "1400")
	_, second, _ := runGalops(t, "", "-seed", "7", "scatter", "100", "-4", "1400")
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.Greater(t, decodeFloats(t, first)["tau_ms"], 0.0)
}

func TestExternalOperationWithoutNativeIsUnavailable(t *testing.T) {
	code, out, errOut := runGalops(t, "", "-native", "dm-ne2001", "1", "30", "0")
	assert.Equal(t, exitError, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "not configured")
}

func TestUsageErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"no operation", nil},
		{"unknown operation", []string{"warp", "1"}},
		{"wrong arity", []string{"dtrue", "1", "2"}},
		{"not a number", []string{"xy", "ten"}},
		{"bad flag", []string{"-nope", "dtrue", "0", "0", "0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, out, _ := runGalops(t, "", tc.args...)
			assert.Equal(t, exitUsage, code)
			assert.Empty(t, out)
		})
	}
}

func TestHelpExitsCleanly(t *testing.T) {
	code, _, errOut := runGalops(t, "", "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "radec2lb RA DEC")
	assert.Contains(t, errOut, "batch")
}

func TestBatchAnswersEachLine(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"a","op":"dtrue","args":[0,0,0]}`,
		``,
		`{"id":"b","op":"xyz2lb","args":[0,8.5,0]}`,
		`{"id":"c","op":"warp","args":[]}`,
		`not json`,
		`{"id":"d","op":"offset","args":[10,10,10,10]}`,
	}, "\n")

	code, out, errOut := runGalops(t, input, "batch")
	require.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "batch complete")

	var responses []batchResponse
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r batchResponse
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		responses = append(responses, r)
	}
	require.Len(t, responses, 5)

	assert.Equal(t, "a", responses[0].ID)
	assert.Empty(t, responses[0].Error)
	assert.InDelta(t, 8.5, responses[0].Result.(map[string]any)["dtrue_kpc"], 1e-12)

	assert.Equal(t, "b", responses[1].ID)
	assert.Contains(t, responses[1].Error, "degenerate")
	assert.Nil(t, responses[1].Result)

	assert.Contains(t, responses[2].Error, "unknown operation")
	assert.Contains(t, responses[3].Error, "decode request")

	assert.Equal(t, "d", responses[4].ID)
	assert.Empty(t, responses[4].Error)
	assert.Equal(t, 0.0, responses[4].Result.(map[string]any)["offset_deg"])
}

func TestCommandTableUsagesMatchArity(t *testing.T) {
	for name, cmd := range commands {
		fields := strings.Fields(cmd.usage)
		require.NotEmpty(t, fields, name)
		assert.Equal(t, name, fields[0])
		assert.Len(t, fields[1:], cmd.nargs, name)
	}
}

func decodeResponses(t *testing.T, out string) []batchResponse {
	t.Helper()
	var responses []batchResponse
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r batchResponse
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		responses = append(responses, r)
	}
	return responses
}

func TestBatchContinuesAfterOverflow(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"a","op":"scatter","args":[1e18,-4,1400]}`,
		`{"id":"b","op":"dtrue","args":[0,0,0]}`,
	}, "\n")

	code, out, _ := runGalops(t, input, "batch")
	require.Equal(t, exitOK, code)

	responses := decodeResponses(t, out)
	require.Len(t, responses, 2)
	assert.Contains(t, responses[0].Error, "overflows")
	assert.Nil(t, responses[0].Result)
	assert.Equal(t, "b", responses[1].ID)
	assert.Empty(t, responses[1].Error)
	assert.InDelta(t, 8.5, responses[1].Result.(map[string]any)["dtrue_kpc"], 1e-12)
}

func TestBatchReportsUnencodableResultInline(t *testing.T) {
	commands["inf"] = command{
		usage: "inf",
		run: func(context.Context, *core.GalacticOps, []float64) (any, error) {
			return map[string]float64{"v": math.Inf(1)}, nil
		},
	}
	t.Cleanup(func() { delete(commands, "inf") })

	input := `{"id":"a","op":"inf","args":[]}` + "\n" + `{"id":"b","op":"dtrue","args":[0,0,0]}`
	code, out, _ := runGalops(t, input, "batch")
	require.Equal(t, exitOK, code)

	responses := decodeResponses(t, out)
	require.Len(t, responses, 2)
	assert.Equal(t, "a", responses[0].ID)
	assert.Contains(t, responses[0].Error, "encode result")
	assert.Nil(t, responses[0].Result)
	assert.Equal(t, "b", responses[1].ID)
	assert.Empty(t, responses[1].Error)
}
