package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	deepsort "github.com/swdee/go-deepsort"
	"github.com/swdee/go-deepsort/config"
	"github.com/swdee/go-deepsort/postprocess"
	"github.com/swdee/go-deepsort/render"
	"github.com/swdee/go-deepsort/tracker"
	"gocv.io/x/gocv"
)

// Timing is a struct to hold timers used for finding execution time
// for various parts of the process
type Timing struct {
	FilterStart  time.Time
	TrackerStart time.Time
	TrackerEnd   time.Time
	ProcessEnd   time.Time
}

func main() {
	vidFile := flag.String("v", "../data/palace.mp4", "Video file to run object tracking on")
	detFile := flag.String("d", "../data/palace-detections.jsonl", "JSON lines file of per frame detections")
	labelFile := flag.String("l", "../data/coco_80_labels_list.txt", "Text file containing model labels")
	saveFile := flag.String("o", "../data/palace-tracked.mp4", "The output video file with tracking markers")
	configFile := flag.String("c", "", "YAML config file, defaults are used when empty")
	fontFile := flag.String("f", "", "Optional TTF font for drawing translated labels")
	fontScale := flag.Float64("s", 0.5, "Scale of the Hershey label font")
	draw := flag.String("draw", "status", "Box style: status, palette or detections")

	flag.Parse()

	switch *draw {
	case drawStatus, drawPalette, drawDetections:
	default:
		fmt.Fprintf(os.Stderr, "unknown draw style %q\n", *draw)
		os.Exit(1)
	}

	cfg := config.Default()

	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)

		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}

	logger := cfg.Logging.SetupLogger()

	opts := options{
		vidFile:   *vidFile,
		detFile:   *detFile,
		labelFile: *labelFile,
		saveFile:  *saveFile,
		fontFile:  *fontFile,
		font:      render.DefaultFont().WithScale(*fontScale),
		draw:      *draw,
	}

	if err := run(cfg, logger, opts); err != nil {
		logger.Error("tracking failed", "error", err)
		os.Exit(1)
	}
}

const (
	// drawStatus colors track boxes by status and marks new tracks
	drawStatus = "status"
	// drawPalette colors track boxes by track ID
	drawPalette = "palette"
	// drawDetections draws the filtered detections without tracking labels
	drawDetections = "detections"
)

// options are the command line settings of a run
type options struct {
	vidFile   string
	detFile   string
	labelFile string
	saveFile  string
	fontFile  string
	font      render.Font
	draw      string
}

func run(cfg *config.Config, logger *slog.Logger, opts options) error {

	labels, err := deepsort.LoadLabels(opts.labelFile)

	if err != nil {
		return fmt.Errorf("error loading model labels: %w", err)
	}

	// display names may be translated while the tracker keeps the originals
	names := labels

	if cfg.Detection.TranslationsFile != "" {
		tr, err := deepsort.LoadTranslations(cfg.Detection.TranslationsFile)

		if err != nil {
			return fmt.Errorf("error loading translations: %w", err)
		}

		names = tr.Apply(labels)
	}

	f, err := os.Open(opts.detFile)

	if err != nil {
		return fmt.Errorf("error opening detections: %w", err)
	}

	frames, err := postprocess.ReadDetections(f)
	f.Close()

	if err != nil {
		return err
	}

	video, err := gocv.VideoCaptureFile(opts.vidFile)

	if err != nil {
		return fmt.Errorf("error opening video: %w", err)
	}

	defer video.Close()

	fps := video.Get(gocv.VideoCaptureFPS)
	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))

	writer, err := gocv.VideoWriterFile(opts.saveFile, "mp4v", fps, width, height, true)

	if err != nil {
		return fmt.Errorf("error creating video writer: %w", err)
	}

	defer writer.Close()

	var ttf *render.TTFLabeler

	if opts.fontFile != "" {
		ttf, err = render.NewTTFLabeler(opts.fontFile, 16)

		if err != nil {
			return err
		}

		defer ttf.Close()
	}

	params := cfg.Tracking.Params()
	filter := cfg.Detection.FilterParams(len(labels))
	deepSort := tracker.NewDeepSORT(params, nil)

	img := gocv.NewMat()
	defer img.Close()

	frameNum := -1
	start := time.Now()
	var trackTime time.Duration

	for {
		if ok := video.Read(&img); !ok {
			// reached last video frame
			break
		}

		if img.Empty() {
			continue
		}

		frameNum++
		timing := &Timing{FilterStart: time.Now()}

		dets := postprocess.Filter(frames[frameNum], filter)

		timing.TrackerStart = time.Now()
		results, err := deepSort.UpdateWithFrame(tracker.DetectionsToObjects(dets, labels), img)
		timing.TrackerEnd = time.Now()

		if err != nil {
			return fmt.Errorf("frame %d: %w", frameNum, err)
		}

		trackTime += timing.TrackerEnd.Sub(timing.TrackerStart)

		render.Trail(&img, deepSort.Tracks(), render.DefaultTrailStyle())

		switch {
		case opts.draw == drawDetections:
			render.DetectionBoxes(&img, dets, names, opts.font, 2)
		case opts.draw == drawPalette:
			render.TrackerBoxes(&img, results, names, opts.font, 2)
		case ttf != nil:
			if err := ttf.TrackResults(&img, results, names, 2); err != nil {
				return err
			}
		default:
			render.TrackResults(&img, results, names, opts.font, 2)
		}

		annotate(&img, frameNum, deepSort, timing)
		writer.Write(img)

		timing.ProcessEnd = time.Now()

		logger.Debug("frame tracked", "frame", frameNum, "detections", len(dets),
			"tracks", len(results),
			"track_ms", float32(timing.TrackerEnd.Sub(timing.TrackerStart))/float32(time.Millisecond))
	}

	logger.Info("tracking complete", "frames", frameNum+1,
		"elapsed", time.Since(start), "tracking", trackTime,
		"output", opts.saveFile)

	return nil
}

// annotate writes the frame statistics at the top of the image
func annotate(img *gocv.Mat, frameNum int, deepSort *tracker.DeepSORT, timing *Timing) {

	// blank out background video
	rect := image.Rect(0, 0, img.Cols(), 20)
	gocv.Rectangle(img, rect, render.Black, -1)

	gocv.PutTextWithParams(img, fmt.Sprintf("Frame: %d, Tracks: %d, Confirmed: %d, Tracking: %.2fms",
		frameNum, deepSort.ActiveCount(), deepSort.ConfirmedCount(),
		float32(timing.TrackerEnd.Sub(timing.TrackerStart))/float32(time.Millisecond)),
		image.Pt(4, 14), gocv.FontHersheySimplex, 0.5, render.Pink, 1,
		gocv.LineAA, false)
}
