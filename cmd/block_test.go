package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimmerbailey/ryulog/internal/blocklist"
)

func TestBlockUnblockCycle(t *testing.T) {
	setupTestConfig(t)
	var out, errOut bytes.Buffer
	cmd := newTestCmd(&out, &errOut, nil)

	require.NoError(t, runBlock(cmd, []string{"0100ABCD00000000", "pirated", "release"}))
	assert.Equal(t, "Blocked 0100abcd00000000\n", out.String())

	out.Reset()
	require.NoError(t, runBlock(cmd, []string{"0100abcd00000000", "other note"}))
	assert.Equal(t, "0100abcd00000000 is already blocked\n", out.String())

	viper.Set("format", "json")
	out.Reset()
	require.NoError(t, runBlocked(cmd, nil))
	var entries []blocklist.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "0100abcd00000000", entries[0].TitleID)
	assert.Equal(t, "pirated release", entries[0].Note)

	out.Reset()
	require.NoError(t, runUnblock(cmd, []string{"0100abcd00000000"}))
	assert.Equal(t, "Unblocked 0100abcd00000000\n", out.String())

	out.Reset()
	require.NoError(t, runUnblock(cmd, []string{"0100abcd00000000"}))
	assert.Equal(t, "0100abcd00000000 was not blocked\n", out.String())
}

func TestBlockRejectsInvalidTitleID(t *testing.T) {
	setupTestConfig(t)
	var out, errOut bytes.Buffer
	cmd := newTestCmd(&out, &errOut, nil)

	for _, tid := range []string{"", "0100", "zz00000000010000", "01000000000100001"} {
		err := runBlock(cmd, []string{tid})
		assert.Error(t, err, "tid %q", tid)
	}
	assert.Error(t, runUnblock(cmd, []string{"nope"}))
	assert.Empty(t, out.String())
}

func TestBlockedEmpty(t *testing.T) {
	setupTestConfig(t)
	var out, errOut bytes.Buffer
	require.NoError(t, runBlocked(newTestCmd(&out, &errOut, nil), nil))
	assert.Equal(t, "No blocked titles\n", out.String())
}
