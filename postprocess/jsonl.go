package postprocess

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/swdee/go-deepsort/postprocess/result"
)

// JSONDetection is a single detection in the JSON lines exchange format
type JSONDetection struct {
	// BBox is x1, y1, x2, y2 in frame pixels
	BBox       [4]float32 `json:"bbox"`
	Class      string     `json:"class"`
	ClassID    int        `json:"class_id"`
	Confidence float32    `json:"confidence"`
}

// JSONFrame holds the detections of one video frame, frames are numbered
// from 0
type JSONFrame struct {
	Frame      int             `json:"frame"`
	Detections []JSONDetection `json:"detections"`
}

// ReadDetections reads one JSONFrame per line from r and returns the
// detections keyed by frame number.  Each detection is given a unique ID
// in file order.  Blank lines are skipped
func ReadDetections(r io.Reader) (map[int][]DetectResult, error) {

	idGen := result.NewIDGenerator()
	frames := make(map[int][]DetectResult)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		var jf JSONFrame

		if err := json.Unmarshal([]byte(line), &jf); err != nil {
			return nil, fmt.Errorf("error parsing line %d: %w", lineNo, err)
		}

		for _, jd := range jf.Detections {
			frames[jf.Frame] = append(frames[jf.Frame], DetectResult{
				Class: jd.ClassID,
				Label: jd.Class,
				Box: BoxRect{
					Left:   jd.BBox[0],
					Top:    jd.BBox[1],
					Right:  jd.BBox[2],
					Bottom: jd.BBox[3],
				},
				Probability: jd.Confidence,
				ID:          idGen.GetNext(),
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading detections: %w", err)
	}

	return frames, nil
}
