package tracker

import (
	"github.com/swdee/go-deepsort/postprocess/reid"
)

// TrackState represents the lifecycle state of a tracked object
type TrackState int

const (
	// Tentative is a newly created track that has not yet been matched
	// enough consecutive frames to be trusted
	Tentative TrackState = 0
	// Confirmed is a track that reached the minimum hit streak
	Confirmed TrackState = 1
	// Deleted is a track that has been pruned from the live set
	Deleted TrackState = 2
)

// String returns the name of the track state
func (s TrackState) String() string {
	switch s {
	case Tentative:
		return "tentative"
	case Confirmed:
		return "confirmed"
	case Deleted:
		return "deleted"
	}

	return "unknown"
}

// Track represents a single tracked object persisting across frames
type Track struct {
	// Unique ID for the track
	trackID int
	// Kalman filter owned exclusively by this track
	kalmanFilter *KalmanFilter
	// Current best estimate of the bounding box
	rect Rect
	// Appearance descriptor of the last matched detection
	feature []float32
	// label is the class name of the last matched detection
	label string
	// classID is the class index of the last matched detection
	classID int
	// Detection score of the last matched detection
	score float32
	// Unique ID of the last matched detection
	detectionID int64
	// age is the number of frames since creation
	age int
	// hitStreak is the number of consecutive frames matched
	hitStreak int
	// timeSinceUpdate is the number of frames since the last match
	timeSinceUpdate int
	// Current lifecycle state
	state TrackState
	// Frame ID when the track was created
	startFrameID int
	// Frame ID of the last match
	frameID int
	// trail of recent state estimates for visualisation
	trail *Trail
}

// newTrack creates a Tentative track from an unmatched detection
func newTrack(obj Object, feature []float32, trackID, frameID, minHits,
	historyLen int) *Track {

	t := &Track{
		trackID:      trackID,
		kalmanFilter: NewKalmanFilter(obj.Rect),
		feature:      reid.NormalizeVec(feature),
		label:        obj.Label,
		classID:      obj.ClassID,
		score:        obj.Prob,
		detectionID:  obj.ID,
		age:          1,
		hitStreak:    1,
		state:        Tentative,
		startFrameID: frameID,
		frameID:      frameID,
		trail:        NewTrail(historyLen),
	}

	if t.hitStreak >= minHits {
		t.state = Confirmed
	}

	t.rect = t.kalmanFilter.GetState()
	t.trail.Add(t.rect)

	return t
}

// Predict advances the tracks motion estimate by one frame and ages the
// track.  A track that already missed the previous frame loses its hit
// streak
func (t *Track) Predict() Rect {

	t.rect = t.kalmanFilter.Predict()
	t.age++

	if t.timeSinceUpdate > 0 {
		t.hitStreak = 0
	}

	t.timeSinceUpdate++

	return t.rect
}

// Update corrects the track with a matched detection and its descriptor.
// The track is promoted to Confirmed once its hit streak reaches minHits
func (t *Track) Update(obj Object, feature []float32, frameID, minHits int) {

	t.kalmanFilter.Update(obj.Rect)
	t.rect = t.kalmanFilter.GetState()

	t.feature = reid.NormalizeVec(feature)
	t.label = obj.Label
	t.classID = obj.ClassID
	t.score = obj.Prob
	t.detectionID = obj.ID
	t.frameID = frameID

	t.timeSinceUpdate = 0
	t.hitStreak++

	if t.state == Tentative && t.hitStreak >= minHits {
		t.state = Confirmed
	}

	t.trail.Add(t.rect)
}

// MarkAsDeleted marks the track as removed from the live set
func (t *Track) MarkAsDeleted() {
	t.state = Deleted
}

// GetTrackID returns the unique ID for the track
func (t *Track) GetTrackID() int {
	return t.trackID
}

// GetRect returns the current bounding box estimate
func (t *Track) GetRect() Rect {
	return t.rect
}

// GetFeature returns the appearance descriptor of the track
func (t *Track) GetFeature() []float32 {
	return t.feature
}

// GetLabel returns the class name of the last matched detection
func (t *Track) GetLabel() string {
	return t.label
}

// GetClassID returns the class index of the last matched detection
func (t *Track) GetClassID() int {
	return t.classID
}

// GetScore returns the detection score of the last matched detection
func (t *Track) GetScore() float32 {
	return t.score
}

// GetDetectionID returns the ID of the last matched detection
func (t *Track) GetDetectionID() int64 {
	return t.detectionID
}

// GetAge returns the number of frames since the track was created
func (t *Track) GetAge() int {
	return t.age
}

// GetHitStreak returns the number of consecutive frames matched
func (t *Track) GetHitStreak() int {
	return t.hitStreak
}

// GetTimeSinceUpdate returns the number of frames since the last match
func (t *Track) GetTimeSinceUpdate() int {
	return t.timeSinceUpdate
}

// GetState returns the lifecycle state of the track
func (t *Track) GetState() TrackState {
	return t.state
}

// IsConfirmed returns whether the track has been confirmed
func (t *Track) IsConfirmed() bool {
	return t.state == Confirmed
}

// GetStartFrameID returns the frame ID when the track was created
func (t *Track) GetStartFrameID() int {
	return t.startFrameID
}

// GetFrameID returns the frame ID of the last match
func (t *Track) GetFrameID() int {
	return t.frameID
}

// GetTrail returns the history of recent state estimates
func (t *Track) GetTrail() *Trail {
	return t.trail
}

// Result returns the output record of the track for the given frame
func (t *Track) Result(frameID int) TrackResult {
	return TrackResult{
		TrackID:         t.trackID,
		Rect:            t.rect,
		Label:           t.label,
		ClassID:         t.classID,
		Score:           t.score,
		IsNew:           t.startFrameID == frameID,
		Age:             t.age,
		HitStreak:       t.hitStreak,
		Confirmed:       t.state == Confirmed,
		TimeSinceUpdate: t.timeSinceUpdate,
	}
}
