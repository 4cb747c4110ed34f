// Package geometry derives the notification stack layout from screen bounds.
package geometry

import (
	"errors"
	"fmt"
)

// MaxVisibleCeiling caps the number of simultaneously visible slots so the
// stack never clutters a tall screen.
const MaxVisibleCeiling = 7

// ErrInvalidBox is returned when a notification box dimension is not positive.
var ErrInvalidBox = errors.New("box width, height and padding must be positive")

// Rect is an axis-aligned rectangle in global screen coordinates.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Right returns the x coordinate just past the rectangle.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate just past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Screen describes one display: its full bounds and the work area left
// over after panels and docks.
type Screen struct {
	Bounds   Rect `json:"bounds" yaml:"bounds"`
	WorkArea Rect `json:"work_area" yaml:"work_area"`
}

// Geometry is the stack layout for one screen.
type Geometry struct {
	CornerX    int // Work area bottom-right x
	CornerY    int // Work area bottom-right y
	SlotWidth  int // Box width plus padding
	SlotHeight int // Box height plus padding
	MaxVisible int
}

// Compute derives the stack geometry for the given screen and box size.
func Compute(screen Screen, boxWidth, boxHeight, padding int) (Geometry, error) {
	if boxWidth <= 0 || boxHeight <= 0 || padding <= 0 {
		return Geometry{}, fmt.Errorf("%w: width=%d height=%d padding=%d",
			ErrInvalidBox, boxWidth, boxHeight, padding)
	}

	g := Geometry{
		CornerX:    screen.WorkArea.Right(),
		CornerY:    screen.WorkArea.Bottom(),
		SlotWidth:  boxWidth + padding,
		SlotHeight: boxHeight + padding,
	}

	g.MaxVisible = screen.WorkArea.Height / g.SlotHeight
	if g.MaxVisible > MaxVisibleCeiling {
		g.MaxVisible = MaxVisibleCeiling
	}
	if g.MaxVisible < 0 {
		g.MaxVisible = 0
	}

	return g, nil
}

// SlotX returns the x coordinate shared by every slot.
func (g Geometry) SlotX() int {
	return g.CornerX - g.SlotWidth
}

// SlotY returns the y coordinate of slot i, counted from the corner.
func (g Geometry) SlotY(i int) int {
	return g.CornerY - g.SlotHeight*(i+1)
}

// Select returns the designated screen. An out-of-range index falls back to
// the first screen and reports ok=false so the caller can log it.
func Select(screens []Screen, index int) (screen Screen, ok bool, err error) {
	if len(screens) == 0 {
		return Screen{}, false, errors.New("no screens available")
	}
	if index < 0 || index >= len(screens) {
		return screens[0], false, nil
	}
	return screens[index], true, nil
}
