package main

import (
	"bytes"
	"io"
	"testing"

	"SportsSync/internal/model"
	"SportsSync/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(args ...string) error {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestRootCommand_RejectsInputBeforeConnecting(t *testing.T) {
	err := runCommand("games", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")

	err = runCommand("games", "--date", "2024/01/15")
	assert.Error(t, err)

	err = runCommand("teams", "--conference", "Atlantic")
	assert.ErrorIs(t, err, model.ErrUnknownConference)
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "json", &service.TeamSyncResult{Fetched: 2, Upserted: 2}))
	assert.JSONEq(t, `{"fetched":2,"upserted":2,"skipped":0,"failed":0}`, buf.String())

	buf.Reset()
	require.NoError(t, printResult(&buf, "text", &service.TeamSyncResult{Fetched: 1}))
	assert.Contains(t, buf.String(), "Fetched:1")
}
