package tracker

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// floatsEqual compares slices of float64
func floatsEqual(a, b []float64, epsilon float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if diff := a[i] - b[i]; diff > epsilon || diff < -epsilon {
			return false
		}
	}
	return true
}

// rectsEqual compares two rects within epsilon
func rectsEqual(a, b Rect, epsilon float32) bool {
	for _, d := range []float32{a.X1 - b.X1, a.Y1 - b.Y1, a.X2 - b.X2, a.Y2 - b.Y2} {
		if d > epsilon || d < -epsilon {
			return false
		}
	}
	return true
}

// matricesEqual compare matrices
func matricesEqual(a, b mat.Matrix, epsilon float64) bool {
	r1, c1 := a.Dims()
	r2, c2 := b.Dims()

	if r1 != r2 || c1 != c2 {
		return false
	}

	for i := 0; i < r1; i++ {
		for j := 0; j < c1; j++ {
			if diff := a.At(i, j) - b.At(i, j); diff > epsilon || diff < -epsilon {
				return false
			}
		}
	}

	return true
}

// TestKalmanFilter tests for expected output from the Kalman Filter.  Expected
// values are derived from a reference SORT filter with the same noise setup
func TestKalmanFilter(t *testing.T) {
	kf := NewKalmanFilter(NewRect(100, 200, 150, 300))

	expectedMeanInit := []float64{125, 250, 5000, 0.5, 0, 0, 0}

	expectedCovarianceInit := diag(stateDim, []float64{10, 10, 10, 10, 10000, 10000, 10000})

	if !floatsEqual(kf.Mean(), expectedMeanInit, 1e-6) {
		t.Errorf("expected mean %v, got %v", expectedMeanInit, kf.Mean())
	}

	if !matricesEqual(kf.Covariance(), expectedCovarianceInit, 1e-6) {
		t.Errorf("expected covariance %v, got %v",
			mat.Formatted(expectedCovarianceInit, mat.Prefix(""), mat.Excerpt(0)),
			mat.Formatted(kf.Covariance(), mat.Prefix(""), mat.Excerpt(0)),
		)
	}

	// Predict the next state, without velocity the box stays put
	predicted := kf.Predict()

	if !rectsEqual(predicted, NewRect(100, 200, 150, 300), 1e-3) {
		t.Errorf("expected predicted rect unchanged, got %v", predicted)
	}

	expectedCovariancePredict := mat.NewDense(7, 7, []float64{
		10011, 0, 0, 0, 10000, 0, 0,
		0, 10011, 0, 0, 0, 10000, 0,
		0, 0, 10011, 0, 0, 0, 10000,
		0, 0, 0, 11, 0, 0, 0,
		10000, 0, 0, 0, 10000.01, 0, 0,
		0, 10000, 0, 0, 0, 10000.01, 0,
		0, 0, 10000, 0, 0, 0, 10000.0001,
	})

	if !floatsEqual(kf.Mean(), expectedMeanInit, 1e-6) {
		t.Errorf("expected mean %v, got %v", expectedMeanInit, kf.Mean())
	}

	if !matricesEqual(kf.Covariance(), expectedCovariancePredict, 1e-6) {
		t.Errorf("expected covariance %v, got %v",
			mat.Formatted(expectedCovariancePredict, mat.Prefix(""), mat.Excerpt(0)),
			mat.Formatted(kf.Covariance(), mat.Prefix(""), mat.Excerpt(0)),
		)
	}

	// Update the filter with the box moved 10 pixels right and down
	kf.Update(NewRect(110, 210, 160, 310))

	expectedMeanUpdate := []float64{134.999001, 259.999001, 5000, 0.5, 9.988014, 9.988014, 0}
	expectedCovarianceUpdate := mat.NewDense(7, 7, []float64{
		0.99990012, 0, 0, 0, 0.998801438, 0, 0,
		0, 0.99990012, 0, 0, 0, 0.998801438, 0,
		0, 0, 9.990020956, 0, 0, 0, 9.979044008,
		0, 0, 0, 5.238095238, 0, 0, 0,
		0.998801438, 0, 0, 0, 11.995617259, 0, 0,
		0, 0.998801438, 0, 0, 0, 11.995617259, 0,
		0, 0, 9.979044008, 0, 0, 0, 20.956092416,
	})

	if !floatsEqual(kf.Mean(), expectedMeanUpdate, 1e-5) {
		t.Errorf("expected mean %v, got %v", expectedMeanUpdate, kf.Mean())
	}

	if !matricesEqual(kf.Covariance(), expectedCovarianceUpdate, 1e-6) {
		t.Errorf("expected covariance %v, got %v",
			mat.Formatted(expectedCovarianceUpdate, mat.Prefix(""), mat.Excerpt(0)),
			mat.Formatted(kf.Covariance(), mat.Prefix(""), mat.Excerpt(0)),
		)
	}

	expectedState := NewRect(109.999001, 209.999001, 159.999001, 309.999001)

	if got := kf.GetState(); !rectsEqual(got, expectedState, 1e-3) {
		t.Errorf("expected state %v, got %v", expectedState, got)
	}
}

// TestKalmanFilterConstantVelocity checks the filter learns a steady motion
// and predicts ahead of the last measurement
func TestKalmanFilterConstantVelocity(t *testing.T) {
	kf := NewKalmanFilter(NewRect(100, 200, 150, 300))

	for k := float32(1); k < 20; k++ {
		kf.Predict()
		kf.Update(NewRect(100+10*k, 200, 150+10*k, 300))
	}

	predicted := kf.Predict()
	expected := NewRect(299.630166, 199.706509, 349.630166, 299.706509)

	if !rectsEqual(predicted, expected, 1e-2) {
		t.Errorf("expected prediction %v, got %v", expected, predicted)
	}
}

// TestKalmanFilterScaleGuard checks a shrinking box never predicts a
// negative area
func TestKalmanFilterScaleGuard(t *testing.T) {
	kf := NewKalmanFilter(NewRect(0, 0, 10, 10))

	// force a strongly negative area velocity
	kf.mean.SetVec(6, -1000)

	kf.Predict()

	if vs := kf.Mean()[6]; vs != 0 {
		t.Errorf("expected area velocity reset to 0, got %v", vs)
	}

	if s := kf.Mean()[2]; s != 100 {
		t.Errorf("expected area to stay 100, got %v", s)
	}
}

// TestKalmanFilterDegenerate checks zero height boxes are handled without
// producing NaN values
func TestKalmanFilterDegenerate(t *testing.T) {
	kf := NewKalmanFilter(NewRect(10, 10, 20, 10))

	if r := kf.Mean()[3]; r != 1 {
		t.Errorf("expected aspect ratio 1 for zero height box, got %v", r)
	}

	kf.Predict()
	kf.Update(NewRect(10, 10, 20, 10))

	for i, v := range kf.Mean() {
		if v != v {
			t.Fatalf("state component %d is NaN", i)
		}
	}
}
