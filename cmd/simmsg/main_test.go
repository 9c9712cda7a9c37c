package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(append([]string{"--log-level", "error"}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestPackBigEndian(t *testing.T) {
	out, err := runCLI(t, "--out-order", "big", "pack", "hi", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "0001000000000002\n", out)

	out, err = runCLI(t, "--mode", "character", "--out-order", "network", "pack", "hi", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "000100000002\n", out)
}

func TestUnpackHex(t *testing.T) {
	out, err := runCLI(t, "--in-order", "big", "--hex", "0001000000000002", "unpack", "hi")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)

	_, err = runCLI(t, "unpack", "hi")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	out, err := runCLI(t, "--out-profile", "ILP32", "--in-profile", "ILP32",
		"roundtrip", "hlsDc", "7", "-3", "hey", "1.5,2", "Z")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"7", "-3", `"hey"`, "[1.5 2]", `"Z"`}, lines[1:])
}

func TestNegativeValues(t *testing.T) {
	out, err := runCLI(t, "--out-order", "big", "pack", "hI", "-2", "5,-1")
	require.NoError(t, err)
	assert.Equal(t, "fffe000000000005ffffffff\n", out)

	out, err = runCLI(t, "roundtrip", "lL", "-9", "-1,0,-300")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"-9", "[-1 0 -300]"}, lines[1:])

	// flags after the command are values, not options
	_, err = runCLI(t, "pack", "h", "--mode")
	assert.Error(t, err)
}

func TestCaptureAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msgs.cap")
	_, err := runCLI(t, "--out-profile", "LP32", "--capture", path, "pack", "iL", "300", "1,2,3")
	require.NoError(t, err)
	_, err = runCLI(t, "--capture", path, "pack", "s", "second")
	require.NoError(t, err)

	out, err := runCLI(t, "--from", path, "unpack", "-")
	require.NoError(t, err)
	assert.Equal(t, "300\n[1 2 3]\n\"second\"\n", out)
}

func TestProfiles(t *testing.T) {
	out, err := runCLI(t, "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "LP32")
	assert.Contains(t, out, "int=2(as short)")
	assert.Contains(t, out, "native")
}

func TestCLIErrors(t *testing.T) {
	_, err := runCLI(t)
	assert.Error(t, err)
	_, err = runCLI(t, "frobnicate")
	assert.Error(t, err)
	_, err = runCLI(t, "--mode", "morse", "pack", "i", "1")
	assert.Error(t, err)
	_, err = runCLI(t, "pack", "hi", "1")
	assert.Error(t, err)
	_, err = runCLI(t, "pack", "h", "70000")
	assert.Error(t, err)
	_, err = runCLI(t, "--out-profile", "LP128", "pack", "h", "1")
	assert.Error(t, err)
}

func TestUnpackSchemaCounts(t *testing.T) {
	values, err := parseValues("csBHF", []string{"x", "abc", "true,false", "1,2,3", ""})
	require.NoError(t, err)
	assert.Equal(t, "c3s2B3H0F", unpackSchema("csBHF", values))
}
