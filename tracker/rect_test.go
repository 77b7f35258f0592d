package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcIoU(t *testing.T) {

	tests := []struct {
		name     string
		a, b     Rect
		expected float32
	}{
		{"identical", NewRect(0, 0, 10, 10), NewRect(0, 0, 10, 10), 1},
		{"disjoint", NewRect(0, 0, 10, 10), NewRect(20, 20, 30, 30), 0},
		{"touching edges", NewRect(0, 0, 10, 10), NewRect(10, 0, 20, 10), 0},
		{"half overlap", NewRect(0, 0, 10, 10), NewRect(5, 0, 15, 10), 50.0 / 150.0},
		{"contained", NewRect(0, 0, 10, 10), NewRect(0, 0, 5, 10), 0.5},
		{"shifted by ten", NewRect(100, 100, 200, 200), NewRect(110, 110, 210, 210), 8100.0 / 11900.0},
		{"zero area", NewRect(0, 0, 0, 0), NewRect(0, 0, 0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.a.CalcIoU(tt.b), 1e-6)
			assert.InDelta(t, tt.expected, tt.b.CalcIoU(tt.a), 1e-6)
		})
	}
}

func TestXysrRoundTrip(t *testing.T) {

	r := NewRect(100, 200, 150, 300)
	xysr := r.GetXysr()

	assert.Equal(t, Xysr{125, 250, 5000, 0.5}, xysr)
	assert.Equal(t, r, GenerateRectByXysr(xysr))
}

func TestXysrDegenerate(t *testing.T) {

	// zero height gives an aspect ratio of 1 instead of dividing by zero
	xysr := NewRect(10, 10, 20, 10).GetXysr()
	assert.Equal(t, 1.0, xysr[3])
	assert.Equal(t, 0.0, xysr[2])

	// non-positive area collapses to a point at the center
	r := GenerateRectByXysr(Xysr{50, 60, -4, 1})
	assert.Equal(t, NewRect(50, 60, 50, 60), r)
}

func TestRectHelpers(t *testing.T) {

	r := NewRectFromTlwh(10, 20, 30, 40)

	assert.Equal(t, NewRect(10, 20, 40, 60), r)
	assert.Equal(t, float32(30), r.Width())
	assert.Equal(t, float32(40), r.Height())
	assert.Equal(t, float32(1200), r.Area())
	assert.True(t, r.Valid())

	cx, cy := r.Center()
	assert.Equal(t, float32(25), cx)
	assert.Equal(t, float32(40), cy)

	assert.False(t, NewRect(10, 10, 5, 20).Valid())
	assert.False(t, NewRect(10, 10, 20, 10).Valid())
	assert.Zero(t, NewRect(10, 10, 5, 20).Area())
}
