package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/host/headless"
	"github.com/jmylchreest/toaststack/internal/loop"
	"github.com/jmylchreest/toaststack/internal/stack"
)

func TestMain(m *testing.M) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func TestParseRequest(t *testing.T) {
	req, err := parseRequest(`{"title":"Build","body":"done","url":"https://example.com","sound":"bell.ogg"}`)
	require.NoError(t, err)
	assert.Equal(t, "Build", req.Title)
	assert.Equal(t, "done", req.Body)
	assert.Equal(t, "https://example.com", req.Link)
	assert.Equal(t, "bell.ogg", req.Sound)

	_, err = parseRequest(`{"url":"https://example.com"}`)
	assert.Error(t, err)

	_, err = parseRequest(`not json`)
	assert.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	base := config.Default()

	c, err := withTimeout(base, "")
	require.NoError(t, err)
	assert.Same(t, base, c)

	c, err = withTimeout(base, "2s")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, c.DisplayTime.Duration())
	assert.NotEqual(t, c.DisplayTime, base.DisplayTime, "base config must not change")

	c, err = withTimeout(base, "2500")
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, c.DisplayTime.Duration())

	_, err = withTimeout(base, "soon")
	assert.Error(t, err)
}

func TestFeedRequests(t *testing.T) {
	v := loop.NewVirtual()
	h := headless.New(v, headless.DefaultScreen())
	cfg := config.Default().Apply(config.Patch{
		DisplayTime: config.Ptr(config.Duration(time.Second)),
	})
	s := stack.New(v, h, cfg, stack.WithStrict(true))
	require.NoError(t, s.Init())

	var buf bytes.Buffer
	out := &eventWriter{enc: json.NewEncoder(&buf)}
	input := strings.Join([]string{
		`{"title":"first"}`,
		``,
		`{"broken"`,
		`{"title":"second","body":"hello"}`,
	}, "\n")

	require.NoError(t, feedRequests(context.Background(), strings.NewReader(input), s, out))
	v.Drain()
	v.RunFor(2*time.Second, 10*time.Millisecond)

	var events []event
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var e event
		require.NoError(t, dec.Decode(&e))
		events = append(events, e)
	}

	assert.Equal(t, []event{
		{ID: 1, Event: "shown"},
		{ID: 2, Event: "shown"},
		{ID: 1, Event: "closed", Reason: "timeout"},
		{ID: 2, Event: "closed", Reason: "timeout"},
	}, events)
}

func TestFeedRequestsStopsOnCancel(t *testing.T) {
	v := loop.NewVirtual()
	s := stack.New(v, headless.New(v, headless.DefaultScreen()), config.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &eventWriter{enc: json.NewEncoder(io.Discard)}
	err := feedRequests(ctx, strings.NewReader(`{"title":"x"}`), s, out)
	assert.ErrorIs(t, err, context.Canceled)
}
