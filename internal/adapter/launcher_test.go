package adapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type startCall struct {
	name string
	args []string
}

func newRecordingLauncher(cfg LauncherConfig, err error) (*Launcher, *[]startCall) {
	var calls []startCall
	l := NewLauncher(cfg, NullLogger())
	l.start = func(name string, args ...string) error {
		calls = append(calls, startCall{name, args})
		return err
	}
	return l, &calls
}

func TestLauncher_Configured(t *testing.T) {
	l, calls := newRecordingLauncher(LauncherConfig{Command: "firefox", Args: []string{"--new-tab"}}, nil)

	require.NoError(t, l.Open("https://www.themoviedb.org/movie/949"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "firefox", (*calls)[0].name)
	assert.Equal(t, []string{"--new-tab", "https://www.themoviedb.org/movie/949"}, (*calls)[0].args)
}

func TestLauncher_SystemDefault(t *testing.T) {
	l, calls := newRecordingLauncher(LauncherConfig{}, nil)

	require.NoError(t, l.Open("https://example.com"))
	require.Len(t, *calls, 1)
	assert.Contains(t, (*calls)[0].args, "https://example.com")
}

func TestLauncher_Errors(t *testing.T) {
	l, _ := newRecordingLauncher(LauncherConfig{Command: "missing"}, errors.New("not found"))
	assert.Error(t, l.Open("https://example.com"))
	assert.Error(t, l.Open(""))
}

func TestDefaultOpener(t *testing.T) {
	name, args := defaultOpener("darwin", "u")
	assert.Equal(t, "open", name)
	assert.Equal(t, []string{"u"}, args)

	name, args = defaultOpener("windows", "u")
	assert.Equal(t, "cmd", name)
	assert.Equal(t, []string{"/c", "start", "", "u"}, args)

	name, _ = defaultOpener("linux", "u")
	assert.Equal(t, "xdg-open", name)
}
