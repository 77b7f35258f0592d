package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// detect returns a detection with a precomputed descriptor
func detect(x1, y1, x2, y2 float32, label string, classID int, prob float32,
	feature []float32) Object {

	obj := NewObject(NewRect(x1, y1, x2, y2), label, classID, prob)
	obj.Feature = feature

	return obj
}

// distractor returns a detection for frame i that overlaps no other test
// object or the distractor of the previous frame, with a descriptor unlike
// the ones on axis 0
func distractor(i int) Object {
	x := float32(1000 + (i%2)*200)
	return detect(x, 1000, x+50, 1050, "bird", 14, 0.6,
		unitFeature(DefaultDescriptorLength, 10+i%2))
}

// findTrack returns the result of the given track ID
func findTrack(results []TrackResult, id int) (TrackResult, bool) {

	for _, r := range results {
		if r.TrackID == id {
			return r, true
		}
	}

	return TrackResult{}, false
}

func trackIDs(results []TrackResult) []int {

	ids := make([]int, 0, len(results))

	for _, r := range results {
		ids = append(ids, r.TrackID)
	}

	return ids
}

func TestDeepSORTScenarioA(t *testing.T) {

	ds := NewDeepSORT(DefaultParams(), nil)
	person := unitFeature(DefaultDescriptorLength, 0)
	car := unitFeature(DefaultDescriptorLength, 5)

	// frame 1, no existing tracks
	res, err := ds.Update([]Object{
		detect(100, 100, 200, 200, "person", 0, 0.85, person),
	})
	require.NoError(t, err)
	require.Len(t, res, 1)

	assert.Equal(t, 1, res[0].TrackID)
	assert.True(t, res[0].IsNew)
	assert.Equal(t, 1, res[0].HitStreak)
	assert.Equal(t, 1, res[0].Age)
	assert.False(t, res[0].Confirmed)
	assert.Equal(t, "person", res[0].Label)

	// frame 2, same object moved
	res, err = ds.Update([]Object{
		detect(110, 110, 210, 210, "person", 0, 0.87, person),
	})
	require.NoError(t, err)
	require.Len(t, res, 1)

	assert.Equal(t, 1, res[0].TrackID)
	assert.False(t, res[0].IsNew)
	// created with a streak of 1 and each match adds 1
	assert.Equal(t, 2, res[0].HitStreak)
	assert.Equal(t, 2, res[0].Age)
	assert.Equal(t, 0, res[0].TimeSinceUpdate)
	assert.InDelta(t, 0.87, res[0].Score, 1e-6)

	// frame 3, a second disjoint object appears
	res, err = ds.Update([]Object{
		detect(110, 110, 210, 210, "person", 0, 0.87, person),
		detect(300, 300, 400, 400, "car", 2, 0.90, car),
	})
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, []int{1, 2}, trackIDs(res))
	assert.False(t, res[0].IsNew)
	assert.True(t, res[0].Confirmed)
	assert.Equal(t, 3, res[0].HitStreak)

	assert.True(t, res[1].IsNew)
	assert.False(t, res[1].Confirmed)
	assert.Equal(t, "car", res[1].Label)
	assert.Equal(t, 2, res[1].ClassID)

	assert.Equal(t, 3, ds.FrameID())
	assert.Equal(t, 2, ds.ActiveCount())
	assert.Equal(t, 1, ds.ConfirmedCount())
}

// confirmTrack feeds the same detection for three frames so it becomes
// confirmed under the default parameters
func confirmTrack(t *testing.T, ds *DeepSORT, obj Object) {

	t.Helper()

	for i := 0; i < 3; i++ {
		res, err := ds.Update([]Object{obj})
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.Equal(t, 1, res[0].TrackID)
	}

	require.Equal(t, 1, ds.ConfirmedCount())
}

func TestDeepSORTScenarioB(t *testing.T) {

	params := DefaultParams()
	ds := NewDeepSORT(params, nil)
	obj := detect(100, 100, 200, 200, "person", 0, 0.9,
		unitFeature(DefaultDescriptorLength, 0))

	confirmTrack(t, ds, obj)

	for i := 0; i < params.MaxAge-1; i++ {
		res, err := ds.Update(nil)
		require.NoError(t, err)
		require.Len(t, res, 1, "track pruned after %d missed frames", i+1)
		assert.Equal(t, i+1, res[0].TimeSinceUpdate)
	}

	res, err := ds.Update([]Object{obj})
	require.NoError(t, err)
	require.Len(t, res, 1)

	assert.Equal(t, 1, res[0].TrackID)
	assert.False(t, res[0].IsNew)
	assert.True(t, res[0].Confirmed)
	assert.Equal(t, 0, res[0].TimeSinceUpdate)
	assert.Equal(t, 1, res[0].HitStreak)
}

func TestDeepSORTScenarioBExpired(t *testing.T) {

	params := DefaultParams()
	ds := NewDeepSORT(params, nil)
	obj := detect(100, 100, 200, 200, "person", 0, 0.9,
		unitFeature(DefaultDescriptorLength, 0))

	confirmTrack(t, ds, obj)

	for i := 0; i < params.MaxAge; i++ {
		_, err := ds.Update([]Object{distractor(i)})
		require.NoError(t, err)
	}

	_, ok := ds.GetTrack(1)
	assert.False(t, ok)

	res, err := ds.Update([]Object{obj})
	require.NoError(t, err)
	require.Len(t, res, 1)

	// distractors took one ID per frame
	assert.Equal(t, 2+params.MaxAge, res[0].TrackID)
	assert.True(t, res[0].IsNew)
}

func TestDeepSORTEmptyFramesDoNotPrune(t *testing.T) {

	params := DefaultParams()
	params.MaxAge = 3
	ds := NewDeepSORT(params, nil)
	obj := detect(100, 100, 200, 200, "person", 0, 0.9,
		unitFeature(DefaultDescriptorLength, 0))

	confirmTrack(t, ds, obj)

	// empty frames only predict, even past MaxAge
	for i := 1; i <= params.MaxAge+2; i++ {
		res, err := ds.Update(nil)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, i, res[0].TimeSinceUpdate)
	}

	// the next frame with detections prunes the expired track
	res, err := ds.Update([]Object{distractor(0)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.NotEqual(t, 1, res[0].TrackID)

	_, ok := ds.GetTrack(1)
	assert.False(t, ok)
}

func TestDeepSORTConfirmedTolerance(t *testing.T) {

	params := DefaultParams()
	params.MaxAge = 5
	ds := NewDeepSORT(params, nil)

	confirmTrack(t, ds, detect(10, 10, 60, 60, "dog", 16, 0.7,
		unitFeature(DefaultDescriptorLength, 3)))

	trk, ok := ds.GetTrack(1)
	require.True(t, ok)

	for i := 1; i < params.MaxAge; i++ {
		res, err := ds.Update([]Object{distractor(i)})
		require.NoError(t, err)

		r, found := findTrack(res, 1)
		require.True(t, found, "track pruned after %d missed frames", i)
		assert.Equal(t, i, r.TimeSinceUpdate)
		assert.True(t, r.Confirmed)
	}

	res, err := ds.Update([]Object{distractor(params.MaxAge)})
	require.NoError(t, err)

	_, found := findTrack(res, 1)
	assert.False(t, found)

	_, ok = ds.GetTrack(1)
	assert.False(t, ok)
	assert.Equal(t, Deleted, trk.GetState())
}

func TestDeepSORTTentativeIntolerance(t *testing.T) {

	ds := NewDeepSORT(DefaultParams(), nil)

	res, err := ds.Update([]Object{
		detect(0, 0, 50, 50, "cat", 15, 0.6, unitFeature(DefaultDescriptorLength, 1)),
	})
	require.NoError(t, err)
	require.Len(t, res, 1)

	res, err = ds.Update([]Object{distractor(0)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 2, res[0].TrackID)

	_, ok := ds.GetTrack(1)
	assert.False(t, ok)
}

func TestDeepSORTTentativeSurvivesEmptyFrame(t *testing.T) {

	ds := NewDeepSORT(DefaultParams(), nil)
	obj := detect(0, 0, 50, 50, "cat", 15, 0.6, unitFeature(DefaultDescriptorLength, 1))

	_, err := ds.Update([]Object{obj})
	require.NoError(t, err)

	res, err := ds.Update(nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].TrackID)
	assert.False(t, res[0].Confirmed)
	assert.Equal(t, 1, res[0].TimeSinceUpdate)

	// still matchable on the next frame with detections
	res, err = ds.Update([]Object{obj})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].TrackID)
	assert.Equal(t, 0, res[0].TimeSinceUpdate)
}

func TestDeepSORTMatchOrCreate(t *testing.T) {

	ds := NewDeepSORT(DefaultParams(), nil)

	// IoU only matching when no descriptors are given
	res, err := ds.Update([]Object{NewObject(NewRect(0, 0, 100, 100), "person", 0, 0.9)})
	require.NoError(t, err)
	require.Len(t, res, 1)

	res, err = ds.Update([]Object{NewObject(NewRect(2, 0, 102, 100), "person", 0, 0.9)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].TrackID)
	assert.False(t, res[0].IsNew)

	// an IoU under 0.7 leaves a cost above the gate so a new track starts
	// and the unconfirmed track that missed is pruned
	res, err = ds.Update([]Object{NewObject(NewRect(40, 0, 140, 100), "person", 0, 0.9)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 2, res[0].TrackID)
	assert.True(t, res[0].IsNew)
}

func TestDeepSORTUniqueIDs(t *testing.T) {

	ds := NewDeepSORT(DefaultParams(), nil)

	seen := make(map[int]bool)
	last := 0

	for f := 0; f < 12; f++ {

		var objs []Object

		if f%3 != 0 {
			x := float32((f % 5) * 200)
			objs = append(objs, NewObject(NewRect(x, 0, x+50, 50), "person", 0, 0.9))
		}

		res, err := ds.Update(objs)
		require.NoError(t, err)

		for _, r := range res {
			if r.IsNew {
				assert.False(t, seen[r.TrackID], "track ID %d reused", r.TrackID)
				assert.Greater(t, r.TrackID, last)
				seen[r.TrackID] = true
				last = r.TrackID
			} else {
				assert.True(t, seen[r.TrackID])
			}
		}
	}

	assert.True(t, seen[1])
	assert.Equal(t, len(seen), last)
}

func TestDeepSORTReset(t *testing.T) {

	ds := NewDeepSORT(DefaultParams(), nil)
	feat := unitFeature(DefaultDescriptorLength, 0)

	for i := 0; i < 3; i++ {
		x := float32(i * 300)
		_, err := ds.Update([]Object{detect(x, 0, x+50, 50, "person", 0, 0.9, feat)})
		require.NoError(t, err)
	}

	require.NotZero(t, ds.ActiveCount())

	ds.Reset()
	assert.Zero(t, ds.ActiveCount())
	assert.Zero(t, ds.FrameID())
	assert.Empty(t, ds.Tracks())

	// reset twice is harmless
	ds.Reset()

	res, err := ds.Update([]Object{detect(0, 0, 50, 50, "person", 0, 0.9, feat)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].TrackID)
	assert.Equal(t, 1, ds.FrameID())
}

func TestDeepSORTInvalidDetection(t *testing.T) {

	ds := NewDeepSORT(DefaultParams(), nil)
	feat := unitFeature(DefaultDescriptorLength, 0)

	_, err := ds.Update([]Object{detect(0, 0, 50, 50, "person", 0, 0.9, feat)})
	require.NoError(t, err)

	res, err := ds.Update([]Object{
		detect(0, 0, 50, 50, "person", 0, 0.9, feat),
		detect(60, 60, 60, 90, "person", 0, 0.9, feat),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDetection))
	assert.Nil(t, res)

	// nothing was predicted or created
	assert.Equal(t, 1, ds.FrameID())
	require.Equal(t, 1, ds.ActiveCount())

	trk, ok := ds.GetTrack(1)
	require.True(t, ok)
	assert.Equal(t, 0, trk.GetTimeSinceUpdate())
	assert.Equal(t, 1, trk.GetAge())
}

func TestDeepSORTInvalidParams(t *testing.T) {

	ds := NewDeepSORT(DefaultParams(), nil)

	frame := gocv.NewMat()
	defer frame.Close()

	params := DefaultParams()
	params.MaxAge = 0

	_, err := ds.UpdateWithParams([]Object{NewObject(NewRect(0, 0, 10, 10), "person", 0, 0.9)},
		frame, params)

	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Zero(t, ds.FrameID())
}

func TestParamsValidate(t *testing.T) {

	tests := []struct {
		name   string
		modify func(p *Params)
		valid  bool
	}{
		{"defaults", func(p *Params) {}, true},
		{"zero max age", func(p *Params) { p.MaxAge = 0 }, false},
		{"zero min hits", func(p *Params) { p.MinHits = 0 }, false},
		{"zero gate", func(p *Params) { p.GateThreshold = 0 }, false},
		{"zero descriptor", func(p *Params) { p.DescriptorLength = 0 }, false},
		{"negative weight", func(p *Params) { p.AppearanceWeight = -0.1 }, false},
		{"weight above one", func(p *Params) { p.AppearanceWeight = 1.1 }, false},
		{"negative history", func(p *Params) { p.HistoryLength = -1 }, false},
		{"no history", func(p *Params) { p.HistoryLength = 0 }, true},
		{"iou only", func(p *Params) { p.AppearanceWeight = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			p := DefaultParams()
			tt.modify(&p)

			err := p.Validate()

			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidParams)
			}
		})
	}
}

func TestDeepSORTMinHitsOne(t *testing.T) {

	params := DefaultParams()
	params.MinHits = 1
	ds := NewDeepSORT(params, nil)

	res, err := ds.Update([]Object{NewObject(NewRect(0, 0, 10, 10), "person", 0, 0.9)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].Confirmed)
	assert.True(t, res[0].IsNew)

	// a confirmed track survives a missed frame
	res, err = ds.Update(nil)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestDeepSORTTrail(t *testing.T) {

	params := DefaultParams()
	params.HistoryLength = 2
	ds := NewDeepSORT(params, nil)
	feat := unitFeature(DefaultDescriptorLength, 0)

	for i := 0; i < 4; i++ {
		x := float32(i * 2)
		_, err := ds.Update([]Object{detect(x, 0, x+100, 100, "person", 0, 0.9, feat)})
		require.NoError(t, err)
	}

	trk, ok := ds.GetTrack(1)
	require.True(t, ok)
	assert.Equal(t, 2, trk.GetTrail().Len())
	assert.Equal(t, 4, trk.GetHitStreak())
}
