package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chipfoundry/caravelsim/model"
)

func TestLoadEntries(t *testing.T) {
	sim := t.TempDir()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Write(filepath.Join(sim, "nightly"), &model.Run{ID: "aaaa", Timestamp: base, Tag: "nightly"}))
	require.NoError(t, Write(filepath.Join(sim, "smoke"), &model.Run{
		ID:        "bbbb",
		Timestamp: base.Add(time.Hour),
		Tag:       "smoke",
		Tests:     []model.TestResult{{Name: "gpio_test", Sim: model.SimRTL, Status: model.StatusPassed}},
	}))
	require.NoError(t, os.MkdirAll(filepath.Join(sim, "broken"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sim, "broken", FileName), []byte("{"), 0o644))

	entries, err := LoadEntries(zerolog.Nop(), sim)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bbbb", entries[0].Run.ID)
	assert.Equal(t, filepath.Join(sim, "smoke"), entries[0].FullPath)
	assert.Equal(t, model.StatusPassed, entries[0].Run.Tests[0].Status)
	assert.Equal(t, "aaaa", entries[1].Run.ID)
}

func TestLoadEntriesMissingDir(t *testing.T) {
	entries, err := LoadEntries(zerolog.Nop(), filepath.Join(t.TempDir(), "sim"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSelect(t *testing.T) {
	entries := []Entry{
		{Run: model.Run{ID: "c0ffee"}},
		{Run: model.Run{ID: "beef01"}},
		{Run: model.Run{ID: "abc123"}},
	}

	tests := []struct {
		name    string
		arg     string
		wantID  string
		wantErr bool
	}{
		{name: "latest", arg: "0", wantID: "c0ffee"},
		{name: "second to last", arg: "-1", wantID: "beef01"},
		{name: "third to last", arg: "-2", wantID: "abc123"},
		{name: "out of range", arg: "-3", wantErr: true},
		{name: "positive index", arg: "1", wantErr: true},
		{name: "id prefix", arg: "BEE", wantID: "beef01"},
		{name: "unknown id", arg: "ffff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(entries, tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.Run.ID)
		})
	}

	_, err := Select(nil, "0")
	assert.Error(t, err)
}
