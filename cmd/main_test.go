package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "A famished", preview("A famished Fox saw", 10))
	assert.Equal(t, "one line", preview("one\n\n  line", 150))
	assert.Equal(t, "crème", preview("crème brûlée", 5))
	assert.Equal(t, "all of it", preview("all of it", 0))
}

func TestCommandFlags(t *testing.T) {
	a := &app{}
	tests := []struct {
		cmd   *cobra.Command
		flags []string
	}{
		{scrapeCmd(a), []string{"output", "max-fables", "skip-errors", "cache"}},
		{dedupCmd(a), []string{"input", "output", "removed", "threshold", "stem", "verbose"}},
		{embedCmd(a), []string{"input", "recreate", "batch-size", "no-probe"}},
		{queryCmd(a), []string{"top-k", "answer"}},
		{exportCmd(a), []string{"output"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			for _, name := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(name), "missing --%s", name)
			}
		})
	}
}

func TestEmbedRecreatesByDefault(t *testing.T) {
	flag := embedCmd(&app{}).Flags().Lookup("recreate")
	require.NotNil(t, flag)
	assert.Equal(t, "true", flag.DefValue)
}

func TestQueryRequiresText(t *testing.T) {
	cmd := queryCmd(&app{})
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"fox", "and", "grapes"}))
}
