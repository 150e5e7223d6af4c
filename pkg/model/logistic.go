package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// Logistic is an L2-regularized logistic regression, intended for the
// reduced-component feature path. Lambda is the tunable penalty strength;
// the solver is plain batch gradient descent with zero initialization, so
// fitting is fully deterministic.
type Logistic struct {
	Lambda    float64 `json:"lambda"`
	LearnRate float64 `json:"learn_rate"`
	MaxIter   int     `json:"max_iter"`
	Tol       float64 `json:"tol"`

	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	FeatureNames []string  `json:"feature_names"`
}

// NewLogistic creates a logistic classifier with penalty strength lambda.
func NewLogistic(lambda float64) *Logistic {
	return &Logistic{
		Lambda:    lambda,
		LearnRate: 0.1,
		MaxIter:   500,
		Tol:       1e-6,
	}
}

// Name identifies the model family.
func (l *Logistic) Name() string { return FamilyLogistic }

// Fit estimates the coefficients by minimizing the penalized log loss.
// Rows with missing values are rejected; the recipe chain in front of this
// model is expected to deliver complete cases.
func (l *Logistic) Fit(train *dataset.Matrix) error {
	n, d := train.NumRows(), train.NumCols()
	if n == 0 {
		return fmt.Errorf("logistic: empty training data")
	}

	flat := make([]float64, 0, n*d)
	for i, row := range train.Rows {
		for _, v := range row {
			if math.IsNaN(v) {
				return fmt.Errorf("logistic: missing value in row %d", i)
			}
			flat = append(flat, v)
		}
	}
	x := mat.NewDense(n, d, flat)

	y := mat.NewVecDense(n, nil)
	for i, label := range train.Labels {
		y.SetVec(i, float64(label))
	}

	l.FeatureNames = append([]string(nil), train.Names...)
	l.Coefficients = make([]float64, d)
	l.Intercept = 0

	beta := mat.NewVecDense(d, nil)
	lin := mat.NewVecDense(n, nil)
	prob := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)

	prevLoss := math.Inf(1)
	for iter := 0; iter < l.MaxIter; iter++ {
		lin.MulVec(x, beta)
		loss := 0.0
		interceptGrad := 0.0
		for i := 0; i < n; i++ {
			z := lin.AtVec(i) + l.Intercept
			p := sigmoid(z)
			prob.SetVec(i, p-y.AtVec(i))
			interceptGrad += p - y.AtVec(i)
			loss -= y.AtVec(i)*logClamped(p) + (1-y.AtVec(i))*logClamped(1-p)
		}

		grad.MulVec(x.T(), prob)
		for j := 0; j < d; j++ {
			g := grad.AtVec(j)/float64(n) + l.Lambda*beta.AtVec(j)
			beta.SetVec(j, beta.AtVec(j)-l.LearnRate*g)
			loss += 0.5 * l.Lambda * float64(n) * beta.AtVec(j) * beta.AtVec(j)
		}
		l.Intercept -= l.LearnRate * interceptGrad / float64(n)

		loss /= float64(n)
		if math.Abs(prevLoss-loss) < l.Tol {
			break
		}
		prevLoss = loss
	}

	for j := 0; j < d; j++ {
		l.Coefficients[j] = beta.AtVec(j)
	}
	return nil
}

// PredictProba returns P(label = 1) per row.
func (l *Logistic) PredictProba(m *dataset.Matrix) ([]float64, error) {
	if l.Coefficients == nil {
		return nil, fmt.Errorf("logistic: not fitted")
	}
	aligned, err := m.Align(l.FeatureNames)
	if err != nil {
		return nil, err
	}

	out := make([]float64, aligned.NumRows())
	for i, row := range aligned.Rows {
		z := l.Intercept
		for j, v := range row {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("logistic: missing value in row %d", i)
			}
			z += l.Coefficients[j] * v
		}
		out[i] = sigmoid(z)
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func logClamped(p float64) float64 {
	const eps = 1e-12
	if p < eps {
		p = eps
	}
	return math.Log(p)
}
