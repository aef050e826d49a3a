package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskYesNo(t *testing.T) {
	var out bytes.Buffer
	confirm := askYesNo(strings.NewReader("y\nno\n\nYES\n"), &out)

	assert.True(t, confirm("Delete 2 resume(s)?"))
	assert.False(t, confirm("again?"))
	assert.False(t, confirm("empty answer?"))
	assert.True(t, confirm("shouting?"))
	assert.Contains(t, out.String(), "Delete 2 resume(s)? [y/N] ")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "12"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 12}, ids)

	_, err = parseIDs([]string{"3", "x"})
	assert.ErrorIs(t, err, errUsage)

	_, err = parseIDs([]string{"0"})
	assert.ErrorIs(t, err, errUsage)
}

func TestLookup(t *testing.T) {
	cmd, ok := lookup("live-search")
	require.True(t, ok)
	assert.Equal(t, "live-search", cmd.name)

	_, ok = lookup("nope")
	assert.False(t, ok)
}
