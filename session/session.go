package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/swdee/go-deepsort/metrics"
	"github.com/swdee/go-deepsort/postprocess"
	"github.com/swdee/go-deepsort/tracker"
	"gocv.io/x/gocv"
)

var (
	// ErrFrameTimeout is returned when a frame did not finish within the
	// frame timeout.  The frame still completes in the background and the
	// tracker stays consistent
	ErrFrameTimeout = errors.New("frame processing timed out")
	// ErrDetection wraps errors returned by a Detector
	ErrDetection = errors.New("detection failed")
)

// Detector runs object detection on a BGR frame
type Detector interface {
	Detect(ctx context.Context, frame gocv.Mat) ([]postprocess.DetectResult, error)
}

// DetectorFunc adapts a function to the Detector interface
type DetectorFunc func(ctx context.Context, frame gocv.Mat) ([]postprocess.DetectResult, error)

// Detect calls f
func (f DetectorFunc) Detect(ctx context.Context, frame gocv.Mat) ([]postprocess.DetectResult, error) {
	return f(ctx, frame)
}

// Result is the outcome of processing one frame with Process
type Result struct {
	// Detections are the filtered detections handed to the tracker
	Detections []postprocess.DetectResult
	// Stats summarises Detections
	Stats postprocess.Stats
	// Tracks are the live tracks after the frame
	Tracks []tracker.TrackResult
}

// outcome is passed back from the frame worker
type outcome struct {
	res Result
	err error
}

// Session owns one tracker instance, normally one per video stream, and
// serialises all frames sent to it
type Session struct {
	id      string
	tracker *tracker.DeepSORT
	labels  []string
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time

	// sem is a single slot lock that can be waited on with a context
	sem chan struct{}

	mu         sync.Mutex
	lastSeen   time.Time
	lastActive int
}

func newSession(id string, trk *tracker.DeepSORT, labels []string,
	timeout time.Duration, logger *slog.Logger, now func() time.Time) *Session {

	return &Session{
		id:       id,
		tracker:  trk,
		labels:   labels,
		timeout:  timeout,
		logger:   logger.With("session_id", id),
		now:      now,
		sem:      make(chan struct{}, 1),
		lastSeen: now(),
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// LastSeen returns the time the session was last used
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// lock waits for exclusive use of the tracker or for ctx to be done.  A ctx
// that is already done never acquires the lock
func (s *Session) lock(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		if err := ctx.Err(); err != nil {
			s.unlock()
			return err
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) unlock() {
	<-s.sem
}

// busy reports whether a frame is being processed
func (s *Session) busy() bool {
	return len(s.sem) > 0
}

// Track runs appearance extraction and one tracker update for the given
// detections and frame.  The frame is cloned so the caller may close it as
// soon as Track returns
func (s *Session) Track(ctx context.Context, objects []tracker.Object,
	frame gocv.Mat, params tracker.Params) ([]tracker.TrackResult, error) {

	res, err := s.run(ctx, frame, func(_ context.Context, work gocv.Mat) (Result, error) {

		start := time.Now()
		tracks, err := s.tracker.UpdateWithParams(objects, work, params)
		metrics.FrameDuration.WithLabelValues("track").Observe(time.Since(start).Seconds())

		if err != nil {
			return Result{}, err
		}

		return Result{Tracks: tracks}, nil
	})

	return res.Tracks, err
}

// Process runs detection, filtering and one tracker update on the frame as
// a single unit.  When the detector fails the tracker is left untouched
func (s *Session) Process(ctx context.Context, frame gocv.Mat, detector Detector,
	filter postprocess.FilterParams, params tracker.Params) (Result, error) {

	return s.run(ctx, frame, func(ctx context.Context, work gocv.Mat) (Result, error) {

		start := time.Now()
		dets, err := detector.Detect(ctx, work)
		metrics.FrameDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())

		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrDetection, err)
		}

		dets = postprocess.Filter(dets, filter)

		start = time.Now()
		tracks, err := s.tracker.UpdateWithParams(tracker.DetectionsToObjects(dets, s.labels),
			work, params)
		metrics.FrameDuration.WithLabelValues("track").Observe(time.Since(start).Seconds())

		if err != nil {
			return Result{}, err
		}

		return Result{
			Detections: dets,
			Stats:      postprocess.Summarize(dets, s.labels),
			Tracks:     tracks,
		}, nil
	})
}

// run executes unit on a worker goroutine holding the session lock.  Once
// the lock is held the unit always runs to completion, the caller stops
// waiting for it when the frame timeout expires or ctx is done
func (s *Session) run(ctx context.Context, frame gocv.Mat,
	unit func(context.Context, gocv.Mat) (Result, error)) (Result, error) {

	if err := s.lock(ctx); err != nil {
		metrics.FrameErrors.WithLabelValues(metrics.ReasonCanceled).Inc()
		return Result{}, err
	}

	s.touch()

	work := frame.Clone()
	workCtx := context.WithoutCancel(ctx)
	done := make(chan outcome, 1)

	go func() {
		defer s.unlock()
		defer work.Close()

		res, err := unit(workCtx, work)

		if err == nil {
			s.recordFrame(res.Tracks)
		}

		s.touch()
		done <- outcome{res: res, err: err}
	}()

	var expired <-chan time.Time

	if s.timeout > 0 {
		timer := time.NewTimer(s.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case out := <-done:
		if out.err != nil {
			s.recordError(out.err)
		}
		return out.res, out.err

	case <-expired:
		metrics.FrameErrors.WithLabelValues(metrics.ReasonTimeout).Inc()
		s.logger.Warn("frame timed out", "timeout", s.timeout)
		return Result{}, ErrFrameTimeout

	case <-ctx.Done():
		metrics.FrameErrors.WithLabelValues(metrics.ReasonCanceled).Inc()
		return Result{}, ctx.Err()
	}
}

// recordFrame updates the metrics after a successful frame
func (s *Session) recordFrame(tracks []tracker.TrackResult) {

	created := 0

	for _, t := range tracks {
		if t.IsNew {
			created++
		}
	}

	metrics.FramesProcessed.Inc()
	metrics.TracksCreated.Add(float64(created))

	s.mu.Lock()
	metrics.ActiveTracks.Add(float64(len(tracks) - s.lastActive))
	s.lastActive = len(tracks)
	s.mu.Unlock()

	s.logger.Debug("frame tracked", "tracks", len(tracks), "new", created)
}

// recordError counts and logs a failed frame
func (s *Session) recordError(err error) {

	reason := metrics.ReasonInvalid

	if errors.Is(err, ErrDetection) {
		reason = metrics.ReasonDetection
	}

	metrics.FrameErrors.WithLabelValues(reason).Inc()
	s.logger.Warn("frame failed", "error", err)
}

// Reset clears all tracks of the session, waiting for any frame in
// progress to finish first
func (s *Session) Reset(ctx context.Context) error {

	if err := s.lock(ctx); err != nil {
		return err
	}

	defer s.unlock()

	s.tracker.Reset()
	s.touch()

	s.mu.Lock()
	metrics.ActiveTracks.Sub(float64(s.lastActive))
	s.lastActive = 0
	s.mu.Unlock()

	return nil
}

// Stats returns the frame count and live track counts of the session
func (s *Session) Stats(ctx context.Context) (frames, active, confirmed int, err error) {

	if err := s.lock(ctx); err != nil {
		return 0, 0, 0, err
	}

	defer s.unlock()

	return s.tracker.FrameID(), s.tracker.ActiveCount(), s.tracker.ConfirmedCount(), nil
}

// release removes the sessions tracks from the active track gauge
func (s *Session) release() {
	s.mu.Lock()
	metrics.ActiveTracks.Sub(float64(s.lastActive))
	s.lastActive = 0
	s.mu.Unlock()
}
