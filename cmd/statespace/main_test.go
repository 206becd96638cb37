package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rcNetlist = `rc low-pass
E1 0 1 10
R1 1 2 100
C1 2 0 100u
.tran 1e-4 5m
.print U_C1 I_R1
`

const rlcYAML = `
title: series rlc
components:
  - {name: E1, type: E, value: 5, nodes: [0, 1]}
  - {name: R1, type: R, value: 10, nodes: [1, 2]}
  - {name: L1, type: L, value: 10m, nodes: [2, 3]}
  - {name: C1, type: C, value: 100u, nodes: [3, 0]}
simulation: {step: 1e-5, stop: 1m, method: trapezoidal}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	rc := writeFile(t, dir, "rc.cir", rcNetlist)
	rlc := writeFile(t, dir, "rlc.yaml", rlcYAML)
	csvDir := filepath.Join(dir, "csv")
	metricsPath := filepath.Join(dir, "statespace.prom")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-csv", csvDir, "-metrics", metricsPath, "-jobs", "2", rc, rlc,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Contains(t, stdout.String(), "=== rc low-pass")
	assert.Contains(t, stdout.String(), "=== series rlc")
	assert.Contains(t, stdout.String(), "States  (2): U_C1, I_L1")

	data, err := os.ReadFile(filepath.Join(csvDir, "rc.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "TIME,U_C1,I_R1", lines[0])
	assert.Len(t, lines, 52)

	_, err = os.Stat(filepath.Join(csvDir, "rlc.csv"))
	require.NoError(t, err)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `statespace_builds_total{error="",status="ok"} 2`)
}

func TestRunOverrides(t *testing.T) {
	dir := t.TempDir()
	rc := writeFile(t, dir, "rc.cir", rcNetlist)
	csvDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-quiet", "-stop", "1e-3", "-method", "backward", "-outputs", "U_R1, I_C1", "-csv", csvDir, rc,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(filepath.Join(csvDir, "rc.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "TIME,U_R1,I_C1", lines[0])
	assert.Len(t, lines, 12)
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "rc.cir", rcNetlist)
	bad := writeFile(t, dir, "bad.cir", "disconnected\nE1 0 1 1\nR1 1 0 1\nR2 2 3 1\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-quiet", "-log-format", "json", good, bad}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `"kind":"topology"`)

	stderr.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"-quiet", filepath.Join(dir, "missing.cir")}, &stdout, &stderr))

	stderr.Reset()
	csvDir := filepath.Join(dir, "dup")
	code = run(context.Background(), []string{
		"-quiet", "-log-format", "json", "-outputs", "U_C1,u_C1", "-csv", csvDir, good,
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `"kind":"duplicate_output"`)
	assert.NoFileExists(t, filepath.Join(csvDir, "rc.csv"))
}

func TestRunUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: statespace")

	assert.Equal(t, 2, run(context.Background(), []string{"-log-level", "loud", "x.cir"}, &stdout, &stderr))
	assert.Equal(t, 2, run(context.Background(), []string{"-log-format", "xml", "x.cir"}, &stdout, &stderr))
	assert.Equal(t, 2, run(context.Background(), []string{"-nope"}, &stdout, &stderr))
}

func TestLogLevelFromEnv(t *testing.T) {
	t.Setenv(logLevelEnv, "debug")

	fs := newTestFlagSet()
	cfg, err := parseFlags(fs, []string{"a.cir"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.logLevel)

	cfg, err = parseFlags(newTestFlagSet(), []string{"-log-level", "warn", "a.cir"})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.logLevel)
}

func newTestFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestExampleNetlists(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "examples", "netlists", "*"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-quiet", "-stop", "1e-4"}, files...), &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
}
