package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func screen(x, y, w, h int) Screen {
	return Screen{
		Bounds:   Rect{X: x, Y: y, Width: w, Height: h},
		WorkArea: Rect{X: x, Y: y, Width: w, Height: h - 40},
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		screen     Screen
		w, h, pad  int
		wantCorner [2]int
		wantMax    int
	}{
		{
			name:       "1080p primary",
			screen:     screen(0, 0, 1920, 1080),
			w:          300, h: 65, pad: 10,
			wantCorner: [2]int{1920, 1040},
			wantMax:    7, // 1040/75 = 13, capped
		},
		{
			name:       "short work area",
			screen:     screen(0, 0, 800, 265),
			w:          300, h: 65, pad: 10,
			wantCorner: [2]int{800, 225},
			wantMax:    3, // 225/75
		},
		{
			name:       "offset secondary monitor",
			screen:     screen(1920, 200, 1280, 1024),
			w:          300, h: 65, pad: 10,
			wantCorner: [2]int{3200, 1184},
			wantMax:    7,
		},
		{
			name:       "work area smaller than one slot",
			screen:     screen(0, 0, 400, 100),
			w:          300, h: 65, pad: 10,
			wantCorner: [2]int{400, 60},
			wantMax:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Compute(tt.screen, tt.w, tt.h, tt.pad)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorner[0], g.CornerX)
			assert.Equal(t, tt.wantCorner[1], g.CornerY)
			assert.Equal(t, tt.w+tt.pad, g.SlotWidth)
			assert.Equal(t, tt.h+tt.pad, g.SlotHeight)
			assert.Equal(t, tt.wantMax, g.MaxVisible)
		})
	}
}

func TestCompute_InvalidBox(t *testing.T) {
	for _, dims := range [][3]int{{0, 65, 10}, {300, 0, 10}, {300, 65, 0}, {-1, 65, 10}} {
		_, err := Compute(screen(0, 0, 1920, 1080), dims[0], dims[1], dims[2])
		assert.ErrorIs(t, err, ErrInvalidBox, "dims %v", dims)
	}
}

func TestSlotPositions(t *testing.T) {
	g, err := Compute(screen(0, 0, 1920, 1080), 300, 65, 10)
	require.NoError(t, err)

	assert.Equal(t, 1920-310, g.SlotX())
	assert.Equal(t, 1040-75, g.SlotY(0))
	assert.Equal(t, 1040-150, g.SlotY(1))
	assert.Equal(t, 1040-75*7, g.SlotY(6))
}

func TestSelect(t *testing.T) {
	screens := []Screen{screen(0, 0, 1920, 1080), screen(1920, 0, 1280, 1024)}

	s, ok, err := Select(screens, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1920, s.Bounds.X)

	s, ok, err = Select(screens, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Bounds.X)

	_, _, err = Select(nil, 0)
	assert.Error(t, err)
}
