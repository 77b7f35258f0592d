package tracker

import (
	"errors"
	"fmt"

	"github.com/swdee/go-deepsort/postprocess/result"
	"gocv.io/x/gocv"
)

var (
	// ErrInvalidDetection is returned when a detection has a non-positive
	// width or height.  The tracker state is left untouched
	ErrInvalidDetection = errors.New("invalid detection bounding box")
	// ErrInvalidParams is returned when tracking parameters are out of range
	ErrInvalidParams = errors.New("invalid tracker parameters")
)

// Params defines the tuning parameters of the tracker
type Params struct {
	// MaxAge is the number of consecutive missed frames after which a
	// confirmed track is deleted
	MaxAge int
	// MinHits is the hit streak a track needs to become confirmed
	MinHits int
	// GateThreshold is the cost a candidate match must be strictly below
	// to be accepted
	GateThreshold float32
	// DescriptorLength is the appearance descriptor size used when the
	// tracker creates its own extractor.  It is only read by NewDeepSORT,
	// descriptors keep the extractor's length when Params are given per
	// call so tracks stay comparable
	DescriptorLength int
	// AppearanceWeight is the share of the match cost given to appearance
	// distance, the rest goes to IoU distance
	AppearanceWeight float32
	// Distance is the method used to compare appearance descriptors
	Distance DistanceMethod
	// HistoryLength is the number of recent estimates kept per track for
	// drawing trails
	HistoryLength int
}

// DefaultParams returns the default tracker parameters
func DefaultParams() Params {
	return Params{
		MaxAge:           30,
		MinHits:          3,
		GateThreshold:    0.3,
		DescriptorLength: DefaultDescriptorLength,
		AppearanceWeight: 0.5,
		Distance:         Cosine,
		HistoryLength:    30,
	}
}

// Validate checks the parameters are usable
func (p Params) Validate() error {

	switch {
	case p.MaxAge < 1:
		return fmt.Errorf("%w: max age %d must be at least 1", ErrInvalidParams, p.MaxAge)
	case p.MinHits < 1:
		return fmt.Errorf("%w: min hits %d must be at least 1", ErrInvalidParams, p.MinHits)
	case p.GateThreshold <= 0:
		return fmt.Errorf("%w: gate threshold %.3f must be positive", ErrInvalidParams, p.GateThreshold)
	case p.DescriptorLength < 1:
		return fmt.Errorf("%w: descriptor length %d must be at least 1", ErrInvalidParams, p.DescriptorLength)
	case p.AppearanceWeight < 0 || p.AppearanceWeight > 1:
		return fmt.Errorf("%w: appearance weight %.3f must be within [0,1]", ErrInvalidParams, p.AppearanceWeight)
	case p.HistoryLength < 0:
		return fmt.Errorf("%w: history length %d must not be negative", ErrInvalidParams, p.HistoryLength)
	}

	return nil
}

// TrackResult is the per frame output record of a live track
type TrackResult struct {
	TrackID int
	// Rect is the current bounding box estimate
	Rect    Rect
	Label   string
	ClassID int
	// Score is the confidence of the last matched detection
	Score float32
	// IsNew is true when the track was created this frame
	IsNew     bool
	Age       int
	HitStreak int
	Confirmed bool
	// TimeSinceUpdate is the number of frames since the last match
	TimeSinceUpdate int
}

// DeepSORT is a multi-object tracker fusing Kalman motion prediction with
// appearance similarity.  It is not safe for concurrent use, each video
// stream should own its own instance and serialise calls to it
type DeepSORT struct {
	// params used when none are given per call
	params Params
	// extractor computes appearance descriptors from frames
	extractor Extractor
	// Current frame ID
	frameID int
	// Counter for assigning unique track IDs
	idGen *result.IDGenerator
	// tracks is the arena of live tracks addressed by track ID
	tracks map[int]*Track
	// live holds the IDs of live tracks in creation order
	live []int
}

// NewDeepSORT initializes and returns a new DeepSORT tracker.  If extractor
// is nil a HistogramExtractor of params.DescriptorLength is used
func NewDeepSORT(params Params, extractor Extractor) *DeepSORT {

	if extractor == nil {
		extractor = NewHistogramExtractor(params.DescriptorLength)
	}

	return &DeepSORT{
		params:    params,
		extractor: extractor,
		idGen:     result.NewIDGenerator(),
		tracks:    make(map[int]*Track),
		live:      make([]int, 0),
	}
}

// Params returns the parameters the tracker was created with
func (ds *DeepSORT) Params() Params {
	return ds.params
}

// Reset clears all tracks and restarts track IDs from 1
func (ds *DeepSORT) Reset() {
	ds.frameID = 0
	ds.idGen.Reset()
	ds.tracks = make(map[int]*Track)
	ds.live = make([]int, 0)
}

// Update updates the tracker with the detections of a new frame using the
// objects precomputed Feature descriptors.  When no object carries a
// Feature the frame is matched on IoU alone
func (ds *DeepSORT) Update(objects []Object) ([]TrackResult, error) {

	if err := ds.check(objects, ds.params); err != nil {
		return nil, err
	}

	params := ds.params

	if !hasFeatures(objects) {
		params.AppearanceWeight = 0
	}

	features := noopExtractor{dim: ds.extractor.Dim()}.Extract(objects, gocv.Mat{})

	return ds.step(objects, features, params), nil
}

// hasFeatures reports whether any object carries a precomputed descriptor
func hasFeatures(objects []Object) bool {

	for _, obj := range objects {
		if len(obj.Feature) > 0 {
			return true
		}
	}

	return false
}

// UpdateWithFrame updates the tracker with the detections of a new frame,
// computing appearance descriptors from the BGR image frame
func (ds *DeepSORT) UpdateWithFrame(objects []Object, frame gocv.Mat) ([]TrackResult, error) {
	return ds.UpdateWithParams(objects, frame, ds.params)
}

// UpdateWithParams is UpdateWithFrame using the given parameters for this
// call only.  An empty frame with no object Features is matched on IoU alone
func (ds *DeepSORT) UpdateWithParams(objects []Object, frame gocv.Mat,
	params Params) ([]TrackResult, error) {

	if err := ds.check(objects, params); err != nil {
		return nil, err
	}

	if frame.Empty() && !hasFeatures(objects) {
		params.AppearanceWeight = 0
	}

	features := ds.extractor.Extract(objects, frame)

	return ds.step(objects, features, params), nil
}

// check validates the input before any state is touched
func (ds *DeepSORT) check(objects []Object, params Params) error {

	if err := params.Validate(); err != nil {
		return err
	}

	for i, obj := range objects {
		if !obj.Rect.Valid() {
			return fmt.Errorf("%w: detection %d has box %v", ErrInvalidDetection,
				i, obj.Rect.GetTlbr())
		}
	}

	return nil
}

// step runs one frame of predict, associate, update, create and prune
func (ds *DeepSORT) step(objects []Object, features [][]float32,
	params Params) []TrackResult {

	ds.frameID++

	// Step 1: predict current position of every live track
	for _, id := range ds.live {
		ds.tracks[id].Predict()
	}

	// Step 2: nothing to associate, tracks are only predicted
	if len(objects) == 0 {
		return ds.results()
	}

	// Step 3: no tracks yet so every detection starts one
	if len(ds.live) == 0 {
		for i := range objects {
			ds.createTrack(objects[i], features[i], params)
		}
		return ds.results()
	}

	// Step 4: associate detections with tracks on fused cost
	tracks := ds.Tracks()
	costMatrix := buildCostMatrix(objects, features, tracks,
		params.AppearanceWeight, params.Distance)

	matchesIdx, unmatchDetIdx, _, err := linearAssignment(costMatrix,
		len(objects), len(tracks), params.GateThreshold)

	if err != nil {
		// the cost matrix is finite and bounded so the solver can not fail,
		// treat every detection as unmatched should it ever happen
		matchesIdx = nil
		unmatchDetIdx = unmatchDetIdx[:0]

		for i := range objects {
			unmatchDetIdx = append(unmatchDetIdx, i)
		}
	}

	// Step 5: update matched tracks
	for _, m := range matchesIdx {
		tracks[m[1]].Update(objects[m[0]], features[m[0]], ds.frameID, params.MinHits)
	}

	// Step 6: init new tracks
	for _, i := range unmatchDetIdx {
		ds.createTrack(objects[i], features[i], params)
	}

	// Step 7: prune
	ds.prune(params)

	return ds.results()
}

// createTrack starts a Tentative track from a detection with the next ID
func (ds *DeepSORT) createTrack(obj Object, feature []float32, params Params) {

	id := int(ds.idGen.GetNext())
	ds.tracks[id] = newTrack(obj, feature, id, ds.frameID, params.MinHits,
		params.HistoryLength)
	ds.live = append(ds.live, id)
}

// prune removes tracks that missed MaxAge frames or are unconfirmed and
// missed a single frame.  A new live index is built rather than modifying
// the current one in place
func (ds *DeepSORT) prune(params Params) {

	live := make([]int, 0, len(ds.live))

	for _, id := range ds.live {

		t := ds.tracks[id]
		tsu := t.GetTimeSinceUpdate()

		if tsu >= params.MaxAge || (!t.IsConfirmed() && tsu >= 1) {
			t.MarkAsDeleted()
			delete(ds.tracks, id)
			continue
		}

		live = append(live, id)
	}

	ds.live = live
}

// results returns the output records of all live tracks
func (ds *DeepSORT) results() []TrackResult {

	out := make([]TrackResult, 0, len(ds.live))

	for _, id := range ds.live {
		out = append(out, ds.tracks[id].Result(ds.frameID))
	}

	return out
}

// Tracks returns the live tracks in creation order
func (ds *DeepSORT) Tracks() []*Track {

	out := make([]*Track, 0, len(ds.live))

	for _, id := range ds.live {
		out = append(out, ds.tracks[id])
	}

	return out
}

// GetTrack returns the live track with the given ID
func (ds *DeepSORT) GetTrack(id int) (*Track, bool) {
	t, ok := ds.tracks[id]
	return t, ok
}

// FrameID returns the number of frames processed since creation or the
// last Reset
func (ds *DeepSORT) FrameID() int {
	return ds.frameID
}

// ActiveCount returns the number of live tracks
func (ds *DeepSORT) ActiveCount() int {
	return len(ds.live)
}

// ConfirmedCount returns the number of live confirmed tracks
func (ds *DeepSORT) ConfirmedCount() int {

	n := 0

	for _, id := range ds.live {
		if ds.tracks[id].IsConfirmed() {
			n++
		}
	}

	return n
}
