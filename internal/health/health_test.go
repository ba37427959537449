package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestCheckFolderWritable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CheckFolderWritable(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")

	assert.Error(t, CheckFolderWritable(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.ErrorContains(t, CheckFolderWritable(file), "not a directory")
}

func TestReport(t *testing.T) {
	s := NewService()
	s.Register("database", Database(fakePinger{}))
	s.Register("tracker", Configured(func() bool { return false }, "tracker API key missing"))
	s.Register("tmdb", Configured(func() bool { return true }, ""))

	r := s.Report(context.Background())
	assert.Equal(t, StatusWarning, r.Status)
	require.Len(t, r.Checks, 3)
	assert.Equal(t, "database", r.Checks[0].Name)
	assert.Equal(t, "tmdb", r.Checks[1].Name)
	assert.Equal(t, Result{Name: "tracker", Status: StatusWarning, Message: "tracker API key missing"}, r.Checks[2])

	s.Register("database", Database(fakePinger{err: errors.New("closed")}))
	s.Register("hardlinks", Folder(func() string { return "/definitely/not/here" }))
	r = s.Report(context.Background())
	assert.Equal(t, StatusError, r.Status)
}
