package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toaststack/internal/host"
	"github.com/jmylchreest/toaststack/internal/host/headless"
	"github.com/jmylchreest/toaststack/internal/loop"
)

var testOpts = host.Options{AlwaysOnTop: true, Transparent: true, Width: 300, Height: 65}

func newPool(t *testing.T) (*Pool, *headless.Host, *loop.Virtual) {
	t.Helper()
	v := loop.NewVirtual()
	h := headless.New(v)
	return New(h, "builtin:default", testOpts, ".toast-container{}", nil), h, v
}

func acquire(t *testing.T, p *Pool, v *loop.Virtual) host.Window {
	t.Helper()
	var got host.Window
	var gotErr error
	p.Acquire(func(w host.Window, err error) { got, gotErr = w, err })
	v.Drain()
	require.NoError(t, gotErr)
	require.NotNil(t, got)
	return got
}

func TestAcquire_CreatesAndStyles(t *testing.T) {
	p, h, v := newPool(t)

	var got host.Window
	p.Acquire(func(w host.Window, err error) {
		require.NoError(t, err)
		got = w
	})
	assert.Nil(t, got, "new windows are handed out only after loading")
	assert.Zero(t, p.ActiveCount())

	v.Drain()
	require.NotNil(t, got)
	hw := got.(*headless.Window)
	assert.True(t, hw.Loaded())
	assert.Equal(t, ".toast-container{}", hw.Style())
	assert.Equal(t, testOpts, hw.Options())
	assert.False(t, hw.Visible())
	assert.Equal(t, 1, p.ActiveCount())
	assert.Equal(t, 1, h.Created())
}

func TestAcquire_ReusesLIFO(t *testing.T) {
	p, h, v := newPool(t)

	a := acquire(t, p, v)
	b := acquire(t, p, v)
	c := acquire(t, p, v)

	_, err := p.Release(a)
	require.NoError(t, err)
	_, err = p.Release(c)
	require.NoError(t, err)
	assert.Equal(t, 2, p.InactiveCount())

	assert.Same(t, c, acquire(t, p, v), "last released is reused first")
	assert.Same(t, a, acquire(t, p, v))
	assert.Equal(t, 3, h.Created())
	assert.Equal(t, []host.Window{b, c, a}, p.Active())
}

func TestRelease(t *testing.T) {
	p, _, v := newPool(t)

	a := acquire(t, p, v)
	b := acquire(t, p, v)
	c := acquire(t, p, v)

	idx, err := p.Release(b)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []host.Window{a, c}, p.Active())
	assert.Equal(t, 1, p.IndexOf(c))
	assert.Equal(t, -1, p.IndexOf(b))

	_, err = p.Release(b)
	assert.ErrorIs(t, err, ErrInvalidState)
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "release", se.Op)
	assert.Equal(t, b.ID(), se.Window)
}

func TestAcquireRelease_RoundTripPreservesSets(t *testing.T) {
	p, _, v := newPool(t)
	for i := 0; i < 3; i++ {
		acquire(t, p, v)
	}
	w := p.Active()[2]
	_, err := p.Release(w)
	require.NoError(t, err)

	before := p.Active()
	beforeIdle := p.InactiveCount()

	got := acquire(t, p, v)
	_, err = p.Release(got)
	require.NoError(t, err)

	assert.Equal(t, before, p.Active())
	assert.Equal(t, beforeIdle, p.InactiveCount())
}

func TestAcquire_CreateFailure(t *testing.T) {
	p, h, _ := newPool(t)
	h.FailNextCreates(1)

	var gotErr error
	p.Acquire(func(_ host.Window, err error) { gotErr = err })
	assert.ErrorIs(t, gotErr, headless.ErrCreateFailed)
	assert.Zero(t, p.ActiveCount())
}

func TestCloseAllAndReset(t *testing.T) {
	p, h, v := newPool(t)
	acquire(t, p, v)
	b := acquire(t, p, v)
	_, err := p.Release(b)
	require.NoError(t, err)

	// Reuses b, then the next acquire has to create and load a window.
	acquire(t, p, v)
	var lateErr error
	p.Acquire(func(_ host.Window, err error) { lateErr = err })
	_, err = p.Release(b)
	require.NoError(t, err)

	p.CloseAllAndReset()
	v.Drain()

	assert.ErrorIs(t, lateErr, ErrReset)
	assert.Zero(t, p.ActiveCount())
	assert.Zero(t, p.InactiveCount())
	assert.Equal(t, 3, h.Created())
	for _, w := range h.Windows() {
		assert.True(t, w.Closed(), "window %s left open", w.ID())
	}
}

func TestReconfigure(t *testing.T) {
	p, _, v := newPool(t)
	a := acquire(t, p, v)
	b := acquire(t, p, v)
	_, err := p.Release(b)
	require.NoError(t, err)

	t.Run("style only", func(t *testing.T) {
		p.Reconfigure("builtin:default", testOpts, ".new{}")
		assert.Equal(t, ".new{}", a.(*headless.Window).Style())
		assert.Equal(t, ".new{}", b.(*headless.Window).Style())
		assert.Equal(t, 1, p.InactiveCount())
	})

	t.Run("size change resizes live windows", func(t *testing.T) {
		bigger := testOpts
		bigger.Width = 400
		p.Reconfigure("builtin:default", bigger, ".new{}")

		assert.Equal(t, 1, p.InactiveCount())
		assert.False(t, b.(*headless.Window).Closed())
		assert.Equal(t, 400, a.(*headless.Window).Options().Width)
		assert.Equal(t, 400, b.(*headless.Window).Options().Width)

		c := acquire(t, p, v)
		assert.Same(t, b, c)
		assert.Equal(t, 400, c.(*headless.Window).Options().Width)
	})

	t.Run("flag change drops idle windows", func(t *testing.T) {
		_, err := p.Release(b)
		require.NoError(t, err)

		flags := testOpts
		flags.Width = 400
		flags.AlwaysOnTop = false
		p.Reconfigure("builtin:default", flags, ".new{}")

		assert.Zero(t, p.InactiveCount())
		assert.True(t, b.(*headless.Window).Closed())
		assert.False(t, a.(*headless.Window).Closed(), "visible windows are kept")
	})
}

func TestRelease_ClosesOutdatedWindow(t *testing.T) {
	p, h, v := newPool(t)
	a := acquire(t, p, v)

	p.Reconfigure("builtin:compact", testOpts, ".toast-container{}")
	assert.False(t, a.(*headless.Window).Closed(), "active window survives until released")

	idx, err := p.Release(a)
	require.NoError(t, err)
	assert.Zero(t, idx)
	assert.True(t, a.(*headless.Window).Closed())
	assert.Zero(t, p.InactiveCount())

	b := acquire(t, p, v)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, h.Created())
}

func TestAcquire_LoadingWindowFollowsResize(t *testing.T) {
	p, _, v := newPool(t)

	var got host.Window
	p.Acquire(func(w host.Window, err error) {
		require.NoError(t, err)
		got = w
	})

	smaller := testOpts
	smaller.Height = 40
	p.Reconfigure("builtin:default", smaller, ".toast-container{}")
	v.Drain()

	require.NotNil(t, got)
	assert.Equal(t, 40, got.(*headless.Window).Options().Height)
}
