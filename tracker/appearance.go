package tracker

import (
	"github.com/swdee/go-deepsort/postprocess/reid"
	"github.com/swdee/go-deepsort/preprocess"
	"gocv.io/x/gocv"
)

const (
	// DefaultDescriptorLength is the default appearance descriptor size
	DefaultDescriptorLength = 128
	// histogramBins is the number of intensity bins per color channel
	histogramBins = 32
	// cropWidth and cropHeight are the reference size detections are
	// scaled to before computing their histograms
	cropWidth  = 64
	cropHeight = 128
)

// Extractor converts the detections of a frame into fixed length, unit
// length appearance descriptors comparable by cosine similarity
type Extractor interface {
	// Extract returns one descriptor per object, in object order
	Extract(objects []Object, frame gocv.Mat) [][]float32
	// Dim returns the length of the descriptors produced
	Dim() int
}

// HistogramExtractor is a cheap appearance descriptor built from per channel
// color histograms of each detection's crop
type HistogramExtractor struct {
	// dim is the descriptor length, histograms are padded or truncated to it
	dim int
	// bins is the number of bins per channel histogram
	bins int
	// cropper scales each detection to a common reference size
	cropper *preprocess.Cropper
}

// NewHistogramExtractor returns a HistogramExtractor producing descriptors
// of length dim
func NewHistogramExtractor(dim int) *HistogramExtractor {

	if dim <= 0 {
		dim = DefaultDescriptorLength
	}

	return &HistogramExtractor{
		dim:     dim,
		bins:    histogramBins,
		cropper: preprocess.NewCropper(cropWidth, cropHeight),
	}
}

// Dim returns the length of the descriptors produced
func (h *HistogramExtractor) Dim() int {
	return h.dim
}

// Extract computes a descriptor for every object from the given BGR frame.
// Objects that already carry a Feature of the descriptor length are passed
// through normalized, objects whose box does not overlap the frame get an
// all zero descriptor
func (h *HistogramExtractor) Extract(objects []Object, frame gocv.Mat) [][]float32 {

	features := make([][]float32, len(objects))

	for i, obj := range objects {

		if len(obj.Feature) == h.dim {
			features[i] = reid.NormalizeVec(obj.Feature)
			continue
		}

		features[i] = h.describe(frame, obj.Rect)
	}

	return features
}

// describe computes the histogram descriptor of a single region
func (h *HistogramExtractor) describe(frame gocv.Mat, rect Rect) []float32 {

	desc := make([]float32, h.dim)

	crop := gocv.NewMat()
	defer crop.Close()

	if !h.cropper.CropResize(frame, rect.ImageRect(), &crop) {
		return desc
	}

	mask := gocv.NewMat()
	defer mask.Close()

	hist := gocv.NewMat()
	defer hist.Close()

	channels := crop.Channels()

	if channels > 3 {
		channels = 3
	}

	feature := make([]float32, 0, 3*h.bins)

	// channels are in frame order, B, G, R for a gocv BGR frame
	for c := 0; c < 3; c++ {

		bins := make([]float32, h.bins)

		if c < channels {
			gocv.CalcHist([]gocv.Mat{crop}, []int{c}, mask, &hist,
				[]int{h.bins}, []float64{0, 256}, false)

			var sum float32

			for b := range bins {
				bins[b] = hist.GetFloatAt(b, 0)
				sum += bins[b]
			}

			for b := range bins {
				bins[b] /= sum + reid.Epsilon
			}
		}

		feature = append(feature, bins...)
	}

	// pad with zeros or truncate to the descriptor length
	copy(desc, feature)
	reid.NormalizeVecEps(desc)

	return desc
}

// noopExtractor returns the objects own features, or zero descriptors,
// without looking at a frame
type noopExtractor struct {
	dim int
}

// Dim returns the length of the descriptors produced
func (n noopExtractor) Dim() int {
	return n.dim
}

// Extract returns the normalized precomputed features of the objects
func (n noopExtractor) Extract(objects []Object, _ gocv.Mat) [][]float32 {

	features := make([][]float32, len(objects))

	for i, obj := range objects {
		features[i] = make([]float32, n.dim)
		copy(features[i], obj.Feature)
		features[i] = reid.NormalizeVec(features[i])
	}

	return features
}
