package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion_Shells(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeCompletion(rootCmd, shell, &buf))
			assert.Contains(t, buf.String(), "phonehome")
		})
	}
}

func TestCompletion_RejectsUnknownShell(t *testing.T) {
	err := completionCmd.Args(completionCmd, []string{"powershell"})
	assert.Error(t, err)
}
