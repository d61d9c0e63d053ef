package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/domain/waitlist"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T) (*command, *bytes.Buffer) {
	t.Helper()

	store, err := waitlist.NewStore(storage.NewMemorySlot("pledg_waitlist_entries"), log.NewDiscardLogger())
	require.NoError(t, err)

	_, err = store.Create(context.Background(), waitlist.Input{
		FirstName:    "Asha",
		LastName:     "Rao",
		Email:        "asha@example.com",
		Phone:        "123",
		InterestType: waitlist.InterestLender,
		AgreeToTerms: true,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	return &command{
		store:     store,
		stdout:    &out,
		now:       func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC) },
		exportDir: t.TempDir(),
	}, &out
}

func TestExport_DefaultPath(t *testing.T) {
	cmd, out := newTestCommand(t)

	require.NoError(t, cmd.run(context.Background(), "export", nil))

	path := filepath.Join(cmd.exportDir, "pledg_waitlist_2026-02-01.json")
	assert.Equal(t, path, strings.TrimSpace(out.String()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"email": "asha@example.com"`)
}

func TestExport_CSVToStdout(t *testing.T) {
	cmd, out := newTestCommand(t)

	require.NoError(t, cmd.run(context.Background(), "export", []string{"--format", "csv", "--out", "-"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,firstName"))
}

func TestExport_RejectsUnknownFormat(t *testing.T) {
	cmd, _ := newTestCommand(t)

	assert.Error(t, cmd.run(context.Background(), "export", []string{"--format", "xml"}))
}

func TestStats(t *testing.T) {
	cmd, out := newTestCommand(t)

	require.NoError(t, cmd.run(context.Background(), "stats", nil))
	assert.Contains(t, out.String(), `"total": 1`)
	assert.Contains(t, out.String(), `"lender": 1`)
}

func TestClear_NeedsConfirmation(t *testing.T) {
	cmd, _ := newTestCommand(t)

	assert.Error(t, cmd.run(context.Background(), "clear", nil))
	assert.Len(t, cmd.store.List(context.Background()), 1)

	require.NoError(t, cmd.run(context.Background(), "clear", []string{"--yes"}))
	assert.Empty(t, cmd.store.List(context.Background()))
}
