package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	deepsort "github.com/swdee/go-deepsort"
	"github.com/swdee/go-deepsort/config"
	"github.com/swdee/go-deepsort/postprocess"
	"github.com/swdee/go-deepsort/render"
	"github.com/swdee/go-deepsort/session"
	"github.com/swdee/go-deepsort/tracker"
	"gocv.io/x/gocv"
)

var (
	// FPS is the number of FPS to simulate
	FPS         = 30
	FPSinterval = time.Duration(float64(time.Second) / float64(FPS))
)

// Demo defines the struct for running the object tracking demo
type Demo struct {
	// vidBuffer buffers the video frames into memory
	vidBuffer []gocv.Mat
	// detections are the precomputed detections keyed by frame number
	detections map[int][]postprocess.DetectResult
	// labels are the class names used for drawing
	labels []string
	// store holds a tracking session per client
	store  *session.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewDemo returns and instance of Demo, a streaming HTTP server showing
// video with object tracking
func NewDemo(cfg *config.Config, logger *slog.Logger, vidFile, detFile string) (*Demo, error) {

	d := &Demo{
		cfg:    cfg,
		logger: logger,
	}

	if err := d.bufferVideo(vidFile); err != nil {
		return nil, fmt.Errorf("error buffering video: %w", err)
	}

	if len(d.vidBuffer) == 0 {
		return nil, errors.New("video has no frames")
	}

	f, err := os.Open(detFile)

	if err != nil {
		return nil, fmt.Errorf("error opening detections: %w", err)
	}

	defer f.Close()

	d.detections, err = postprocess.ReadDetections(f)

	if err != nil {
		return nil, err
	}

	labels, err := deepsort.LoadLabels(cfg.Detection.LabelsFile)

	if err != nil {
		return nil, fmt.Errorf("error loading model labels: %w", err)
	}

	d.labels = labels

	if cfg.Detection.TranslationsFile != "" {
		tr, err := deepsort.LoadTranslations(cfg.Detection.TranslationsFile)

		if err != nil {
			return nil, fmt.Errorf("error loading translations: %w", err)
		}

		d.labels = tr.Apply(labels)
	}

	params := cfg.Tracking.Params()

	d.store = session.NewStore(cfg.Session, func() *tracker.DeepSORT {
		return tracker.NewDeepSORT(params, nil)
	}, logger, session.WithLabels(labels))

	return d, nil
}

// bufferVideo reads in the video frames and saves them to a buffer
func (d *Demo) bufferVideo(vidFile string) error {

	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return err
	}

	defer video.Close()

	d.vidBuffer = make([]gocv.Mat, 0)

	for {
		img := gocv.NewMat()

		// read the next frame from the video
		if ok := video.Read(&img); !ok {
			img.Close()
			break
		}

		if img.Empty() {
			img.Close()
			continue
		}

		d.vidBuffer = append(d.vidBuffer, img)
	}

	return nil
}

// detector returns a Detector serving the precomputed detections of a
// video frame
func (d *Demo) detector(frameNum int) session.Detector {
	return session.DetectorFunc(func(_ context.Context, _ gocv.Mat) ([]postprocess.DetectResult, error) {
		return d.detections[frameNum], nil
	})
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	sess, err := d.store.GetOrCreate(r.URL.Query().Get("session"))

	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	logger := d.logger.With("session_id", sess.ID())
	logger.Info("client connected")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("X-Session-ID", sess.ID())

	params := d.cfg.Tracking.Params()
	filter := d.cfg.Detection.FilterParams(len(d.labels))

	// pointer to position in video buffer
	frameNum := -1

	ticker := time.NewTicker(FPSinterval)
	defer ticker.Stop()

	resImg := gocv.NewMat()
	defer resImg.Close()

	for {
		select {
		case <-r.Context().Done():
			logger.Info("client disconnected")
			return

		// simulate reading 30FPS web camera
		case <-ticker.C:
		}

		frameNum++

		if frameNum > len(d.vidBuffer)-1 {
			// last frame reached so loop back to start of video
			frameNum = 0

			if err := sess.Reset(r.Context()); err != nil {
				return
			}
		}

		img := d.vidBuffer[frameNum]

		res, err := sess.Process(r.Context(), img, d.detector(frameNum), filter, params)

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}

			logger.Warn("error processing frame", "frame", frameNum, "error", err)
			continue
		}

		img.CopyTo(&resImg)
		render.TrackResults(&resImg, res.Tracks, d.labels, render.DefaultFont(), 2)
		d.annotate(&resImg, frameNum, res)

		buf, err := gocv.IMEncode(".jpg", resImg)

		if err != nil {
			logger.Warn("error encoding frame", "error", err)
			continue
		}

		// Write the image to the response writer
		w.Write([]byte("--frame\r\n"))
		w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
		w.Write(buf.GetBytes())
		w.Write([]byte("\r\n"))
		buf.Close()

		// Flush the buffer
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// Reset is the HTTP handler clearing the tracks of a session
func (d *Demo) Reset(w http.ResponseWriter, r *http.Request) {

	sess, err := d.store.Get(r.PathValue("id"))

	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := sess.Reset(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusRequestTimeout)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete is the HTTP handler removing a session
func (d *Demo) Delete(w http.ResponseWriter, r *http.Request) {

	if err := d.store.Delete(r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// annotate writes the frame statistics at the top of the image
func (d *Demo) annotate(img *gocv.Mat, frameNum int, res session.Result) {

	rect := image.Rect(0, 0, img.Cols(), 36)
	gocv.Rectangle(img, rect, render.Black, -1)

	gocv.PutTextWithParams(img, fmt.Sprintf("Frame: %d, Tracks: %d, Detections: %d",
		frameNum, len(res.Tracks), res.Stats.Total),
		image.Pt(4, 14), gocv.FontHersheySimplex, 0.5, render.Pink, 1,
		gocv.LineAA, false)

	gocv.PutTextWithParams(img, fmt.Sprintf("Confidence avg: %.2f, min: %.2f, max: %.2f",
		res.Stats.AvgConfidence, res.Stats.MinConfidence, res.Stats.MaxConfidence),
		image.Pt(4, 30), gocv.FontHersheySimplex, 0.5, render.Pink, 1,
		gocv.LineAA, false)
}

// Close releases the buffered video frames
func (d *Demo) Close() {
	for _, img := range d.vidBuffer {
		img.Close()
	}
}

func main() {
	configPath := flag.String("config", "", "path to config file, defaults are used when empty")
	vidFile := flag.String("v", "../data/palace.mp4", "Video file to run object tracking on")
	detFile := flag.String("d", "../data/palace-detections.jsonl", "JSON lines file of per frame detections")
	flag.Parse()

	cfg := config.Default()
	cfg.Detection.LabelsFile = "../data/coco_80_labels_list.txt"

	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)

		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}

	logger := cfg.Logging.SetupLogger()

	demo, err := NewDemo(cfg, logger, *vidFile, *detFile)

	if err != nil {
		logger.Error("create demo", "error", err)
		os.Exit(1)
	}

	defer demo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go demo.store.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stream", demo.Stream)
	mux.HandleFunc("POST /sessions/{id}/reset", demo.Reset)
	mux.HandleFunc("DELETE /sessions/{id}", demo.Delete)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("open browser and view video", "url", fmt.Sprintf("http://%s/stream", cfg.Server.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server", "error", err)
		os.Exit(1)
	}
}
