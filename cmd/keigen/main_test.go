package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDemo(t *testing.T) {
	for _, engine := range []string{"cpu", "wasm"} {
		t.Run(engine, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runDemo(engine, newRenderer(&buf, false)))

			out := buf.String()
			assert.Contains(t, out, "fill [3, 3]\n2  2  2\n")
			assert.Contains(t, out, "get(3, 3) Get: matrix: index out of bounds: (3, 3) outside [3, 3]")
			assert.Contains(t, out, "get(2, 2) 2\n")
			assert.Contains(t, out, "c [3, 2]\n 7   8\n 9  10\n11  12\n")
			assert.Contains(t, out, "a * c [2, 2]\n 58   64\n139  154\n")
			assert.Contains(t, out, "(a + a * c) / 2 [2, 2]\n 58   64\n139  154\n")
			assert.Contains(t, out, "transpose(c) [2, 3]\n 7   9  11\n 8  10  12\n")
			assert.Contains(t, out, "a + transpose(c) Plus: matrix: dimension mismatch: dimensions must equal (this: [2, 2], other: [2, 3])")
			assert.Contains(t, out, engine+": live=0 ")
		})
	}
}

func TestRunDemo_UnknownEngine(t *testing.T) {
	var buf bytes.Buffer
	err := runDemo("tpu", newRenderer(&buf, false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown engine "tpu"`)
	assert.Empty(t, buf.String())
}

func TestDemoCommand_BadFlag(t *testing.T) {
	assert.Error(t, demoCommand([]string{"-bogus"}))
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "keigen "+version, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Host: "))
	assert.True(t, strings.HasPrefix(lines[2], "SIMD: "))
}

func TestRenderer_Styled(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, true)
	r.step("m", 1, 2, []float64{1.5, -2})

	out := buf.String()
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "-2")
	assert.Contains(t, out, "[1, 2]")
}
