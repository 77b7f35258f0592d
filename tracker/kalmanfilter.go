package tracker

import (
	"gonum.org/v1/gonum/mat"
)

const (
	// stateDim is the size of the state vector [cx, cy, s, r, vcx, vcy, vs]
	stateDim = 7
	// measureDim is the size of the measurement vector [cx, cy, s, r]
	measureDim = 4
)

var (
	// initialCovariance is the diagonal of the starting state covariance.
	// Velocities are unknown on the first observation so get a large
	// variance, and the whole matrix is scaled up by 10
	initialCovariance = []float64{10, 10, 10, 10, 10000, 10000, 10000}
	// measurementNoise is the diagonal of R.  Scale and aspect ratio are
	// measured less reliably than the box center
	measurementNoise = []float64{1, 1, 10, 10}
	// processNoise is the diagonal of Q.  Velocity terms drift slowly and
	// scale velocity slowest of all
	processNoise = []float64{1, 1, 1, 1, 0.01, 0.01, 0.0001}
)

// KalmanFilter is a constant velocity Kalman filter tracking a single
// bounding box in [cx, cy, s, r, vcx, vcy, vs] state space, where s is the
// box area and r its aspect ratio.  Aspect ratio has no velocity term
type KalmanFilter struct {
	// mean is the 7x1 state estimate
	mean *mat.VecDense
	// covariance is the 7x7 state covariance
	covariance *mat.Dense
	// motionMat is the 7x7 state transition matrix F
	motionMat *mat.Dense
	// updateMat is the 4x7 observation matrix H
	updateMat *mat.Dense
	// noiseR is the 4x4 measurement noise covariance
	noiseR *mat.Dense
	// noiseQ is the 7x7 process noise covariance
	noiseQ *mat.Dense
}

// NewKalmanFilter initializes and returns a new KalmanFilter with its state
// set from the given bounding box
func NewKalmanFilter(rect Rect) *KalmanFilter {

	// constant velocity model, cx, cy and s advance by their velocity
	motionMat := diag(stateDim, nil)

	for i := 0; i < 3; i++ {
		motionMat.Set(i, measureDim+i, 1.0)
	}

	// observe the first four state components directly
	updateMat := mat.NewDense(measureDim, stateDim, nil)

	for i := 0; i < measureDim; i++ {
		updateMat.Set(i, i, 1.0)
	}

	kf := &KalmanFilter{
		mean:       mat.NewVecDense(stateDim, nil),
		covariance: diag(stateDim, initialCovariance),
		motionMat:  motionMat,
		updateMat:  updateMat,
		noiseR:     diag(measureDim, measurementNoise),
		noiseQ:     diag(stateDim, processNoise),
	}

	for i, v := range rect.GetXysr() {
		kf.mean.SetVec(i, v)
	}

	return kf
}

// Predict advances the state one time step and returns the predicted
// bounding box
func (kf *KalmanFilter) Predict() Rect {

	// stop the area collapsing to a non-positive value
	if kf.mean.AtVec(6)+kf.mean.AtVec(2) <= 0 {
		kf.mean.SetVec(6, 0)
	}

	var mean mat.VecDense
	mean.MulVec(kf.motionMat, kf.mean)
	kf.mean.CopyVec(&mean)

	var fp, cov mat.Dense
	fp.Mul(kf.motionMat, kf.covariance)
	cov.Mul(&fp, kf.motionMat.T())
	cov.Add(&cov, kf.noiseQ)
	kf.covariance.Copy(&cov)

	return kf.GetState()
}

// Update corrects the state using the measured bounding box
func (kf *KalmanFilter) Update(rect Rect) {

	measurement := mat.NewVecDense(measureDim, rect.GetXysr())

	// innovation y = z - Hx
	var projected, innovation mat.VecDense
	projected.MulVec(kf.updateMat, kf.mean)
	innovation.SubVec(measurement, &projected)

	// innovation covariance S = HPH' + R
	var hp, hph mat.Dense
	hp.Mul(kf.updateMat, kf.covariance)
	hph.Mul(&hp, kf.updateMat.T())

	innovationCov := mat.NewSymDense(measureDim, nil)

	for i := 0; i < measureDim; i++ {
		for j := i; j < measureDim; j++ {
			v := (hph.At(i, j)+hph.At(j, i))/2 + kf.noiseR.At(i, j)
			innovationCov.SetSym(i, j, v)
		}
	}

	// kalman gain transposed, K' = S^-1 HP
	var chol mat.Cholesky
	var gainT mat.Dense

	if ok := chol.Factorize(innovationCov); !ok {
		kf.adopt(measurement)
		return
	}

	if err := chol.SolveTo(&gainT, &hp); err != nil {
		kf.adopt(measurement)
		return
	}

	gain := gainT.T()

	var correction mat.VecDense
	correction.MulVec(gain, &innovation)
	kf.mean.AddVec(kf.mean, &correction)

	// Joseph form P = (I-KH)P(I-KH)' + KRK'
	var kh mat.Dense
	kh.Mul(gain, kf.updateMat)

	ikh := diag(stateDim, nil)
	ikh.Sub(ikh, &kh)

	var left, cov mat.Dense
	left.Mul(ikh, kf.covariance)
	cov.Mul(&left, ikh.T())

	var kr, krk mat.Dense
	kr.Mul(gain, kf.noiseR)
	krk.Mul(&kr, &gainT)

	cov.Add(&cov, &krk)
	kf.covariance.Copy(&cov)
}

// GetState returns the current best estimate of the bounding box
func (kf *KalmanFilter) GetState() Rect {
	return GenerateRectByXysr(Xysr{
		kf.mean.AtVec(0),
		kf.mean.AtVec(1),
		kf.mean.AtVec(2),
		kf.mean.AtVec(3),
	})
}

// Mean returns a copy of the state vector
func (kf *KalmanFilter) Mean() []float64 {
	out := make([]float64, stateDim)

	for i := range out {
		out[i] = kf.mean.AtVec(i)
	}

	return out
}

// Covariance returns the state covariance matrix
func (kf *KalmanFilter) Covariance() mat.Matrix {
	return kf.covariance
}

// adopt sets the observed state components straight from the measurement,
// used when the innovation covariance cannot be factorized
func (kf *KalmanFilter) adopt(measurement *mat.VecDense) {
	for i := 0; i < measureDim; i++ {
		kf.mean.SetVec(i, measurement.AtVec(i))
	}
}

// diag returns an n x n matrix with the given values on its diagonal, or
// the identity matrix when values is nil
func diag(n int, values []float64) *mat.Dense {

	m := mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		if values == nil {
			m.Set(i, i, 1.0)
		} else {
			m.Set(i, i, values[i])
		}
	}

	return m
}
