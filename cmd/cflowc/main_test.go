package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cflow/internal/config"
)

// TestParseArgsHelpReturnsNilOptions checks that --help is handled before
// any input-file validation, by itself, with no error.
func TestParseArgsHelpReturnsNilOptions(t *testing.T) {
	opts, err := parseArgs([]string{"--help"})
	require.NoError(t, err)
	assert.Nil(t, opts)
}

// TestParseArgsRequiresInputFile checks that omitting a positional input
// path is rejected even when every flag given is otherwise valid.
func TestParseArgsRequiresInputFile(t *testing.T) {
	_, err := parseArgs([]string{"-O2", "-v"})
	assert.Error(t, err)
}

// TestParseArgsRejectsSecondInputFile checks that only one positional
// argument may be given.
func TestParseArgsRejectsSecondInputFile(t *testing.T) {
	_, err := parseArgs([]string{"a.cf", "b.cf"})
	assert.Error(t, err)
}

// TestParseArgsRejectsUnknownFlag checks that an unrecognized -flag is
// rejected rather than silently swallowed as a positional argument.
func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	_, err := parseArgs([]string{"--bogus", "a.cf"})
	assert.Error(t, err)
}

// TestParseArgsTokenizeAndParseOnlyAreExclusive checks the documented
// mutual exclusion between --tokenize-only and --parse-only.
func TestParseArgsTokenizeAndParseOnlyAreExclusive(t *testing.T) {
	_, err := parseArgs([]string{"--tokenize-only", "--parse-only", "a.cf"})
	assert.Error(t, err)
}

// TestParseArgsFullOptionSet checks that -o, -O3, -vv, --linker-flags and
// the input path each land on the right Options field.
func TestParseArgsFullOptionSet(t *testing.T) {
	opts, err := parseArgs([]string{"-o", "out.ir", "-O3", "-vv", "--linker-flags", "-lm", "a.cf"})
	require.NoError(t, err)
	require.NotNil(t, opts)

	assert.Equal(t, "out.ir", opts.OutputPath)
	assert.Equal(t, config.O3, opts.OptLevel)
	assert.Equal(t, config.VeryVerbose, opts.Verbosity)
	assert.Equal(t, "-lm", opts.LinkerFlags)
	assert.Equal(t, "a.cf", opts.InputPath)
}

// TestParseArgsRejectsDuplicateLinkerFlags checks that --linker-flags may
// only be given once, matching the explicit linkerFlagsSet guard.
func TestParseArgsRejectsDuplicateLinkerFlags(t *testing.T) {
	_, err := parseArgs([]string{"--linker-flags", "-lm", "--linker-flags", "-lpthread", "a.cf"})
	assert.Error(t, err)
}

// TestParseArgsUpdateIsUnimplemented checks that --update fails loudly
// rather than being silently accepted and ignored.
func TestParseArgsUpdateIsUnimplemented(t *testing.T) {
	_, err := parseArgs([]string{"--update", "a.cf"})
	assert.Error(t, err)
}
