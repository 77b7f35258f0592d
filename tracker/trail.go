package tracker

// Point represents the x,y coordinates of the center of a tracked bounding
// box
type Point struct {
	X, Y int
}

// Trail is a bounded history of a tracks most recent state estimates, used
// for drawing a trail.  Once full the oldest entry is evicted first
type Trail struct {
	// size is the maximum number of most recent estimates to keep
	size int
	// history of estimated boxes, oldest first
	history []Rect
}

// NewTrail returns a new trail history.  Size is the number of most recent
// estimates to keep and specifies the maximum length of the trail
func NewTrail(size int) *Trail {

	if size < 0 {
		size = 0
	}

	return &Trail{
		size:    size,
		history: make([]Rect, 0, size),
	}
}

// Add appends an estimate to the history dropping the oldest when the
// history is full
func (t *Trail) Add(rect Rect) {

	if t.size == 0 {
		return
	}

	if len(t.history) == t.size {
		copy(t.history, t.history[1:])
		t.history = t.history[:t.size-1]
	}

	t.history = append(t.history, rect)
}

// Len returns the number of estimates held
func (t *Trail) Len() int {
	return len(t.history)
}

// Rects returns a copy of the estimate history, oldest first
func (t *Trail) Rects() []Rect {
	out := make([]Rect, len(t.history))
	copy(out, t.history)
	return out
}

// GetPoints returns the center points of the estimate history, oldest first
func (t *Trail) GetPoints() []Point {

	points := make([]Point, 0, len(t.history))

	for _, r := range t.history {
		x, y := r.Center()
		points = append(points, Point{X: int(x), Y: int(y)})
	}

	return points
}

// Reset clears all history
func (t *Trail) Reset() {
	t.history = t.history[:0]
}
