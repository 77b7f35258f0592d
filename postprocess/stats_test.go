package postprocess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {

	labels := []string{"person", "bicycle", "car"}

	dets := []DetectResult{
		det(0, 0, 0, 10, 10, 0.5, 1),
		det(2, 0, 0, 10, 10, 0.9, 2),
		det(0, 0, 0, 10, 10, 0.7, 3),
		{Class: 7, Label: "truck", Box: BoxRect{Right: 5, Bottom: 5}, Probability: 0.3},
	}

	got := Summarize(dets, labels)

	want := Stats{
		Total:   4,
		Classes: []string{"car", "person", "truck"},
		ClassCounts: map[string]int{
			"person": 2,
			"car":    1,
			"truck":  1,
		},
		AvgConfidence: 0.6,
		MinConfidence: 0.3,
		MaxConfidence: 0.9,
	}

	opt := cmp.Comparer(func(a, b float32) bool {
		d := a - b
		return d < 1e-5 && d > -1e-5
	})

	if diff := cmp.Diff(want, got, opt); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeEmpty(t *testing.T) {

	stats := Summarize(nil, nil)

	assert.Zero(t, stats.Total)
	assert.NotNil(t, stats.Classes)
	assert.Empty(t, stats.Classes)
	assert.Empty(t, stats.ClassCounts)
	assert.Zero(t, stats.AvgConfidence)
	assert.Zero(t, stats.MinConfidence)
	assert.Zero(t, stats.MaxConfidence)
}
