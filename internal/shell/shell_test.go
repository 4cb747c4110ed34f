package shell

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

func newTestShell(portalErr, spawnErr error) (*Shell, *[]string, *[]call) {
	var portalCalls []string
	var spawned []call
	s := New(nil)
	s.portal = func(_ context.Context, link string) error {
		portalCalls = append(portalCalls, link)
		return portalErr
	}
	s.spawn = func(_ context.Context, name string, args ...string) error {
		spawned = append(spawned, call{name: name, args: args})
		return spawnErr
	}
	return s, &portalCalls, &spawned
}

func TestOpen_Portal(t *testing.T) {
	s, portal, spawned := newTestShell(nil, nil)

	require.NoError(t, s.Open(context.Background(), "https://example.com/build/42"))
	assert.Equal(t, []string{"https://example.com/build/42"}, *portal)
	assert.Empty(t, *spawned)
}

func TestOpen_FallsBackToXdgOpen(t *testing.T) {
	s, _, spawned := newTestShell(errors.New("no portal"), nil)

	require.NoError(t, s.Open(context.Background(), "file:///tmp/report.html"))
	require.Len(t, *spawned, 1)
	assert.Equal(t, "xdg-open", (*spawned)[0].name)
	assert.Equal(t, []string{"file:///tmp/report.html"}, (*spawned)[0].args)
}

func TestOpen_BothFail(t *testing.T) {
	spawnErr := errors.New("exec: not found")
	s, _, _ := newTestShell(errors.New("no portal"), spawnErr)

	err := s.Open(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, spawnErr)
}

func TestOpen_InvalidURL(t *testing.T) {
	s, portal, spawned := newTestShell(nil, nil)

	for _, link := range []string{"", "not a url", "://missing"} {
		err := s.Open(context.Background(), link)
		assert.ErrorIs(t, err, ErrInvalidURL, link)
	}
	assert.Empty(t, *portal)
	assert.Empty(t, *spawned)
}
