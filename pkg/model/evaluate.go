package model

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// Predictor scores feature rows with P(label = 1). Trained artifacts and
// bare classifiers both satisfy it.
type Predictor interface {
	PredictProba(m *dataset.Matrix) ([]float64, error)
}

// Report holds the held-out discrimination metrics for one evaluation call.
// The confusion matrix is indexed [actual][predicted] with class 1 =
// employed as the positive class.
type Report struct {
	ConfusionMatrix [2][2]int `json:"confusion_matrix"`
	Accuracy        float64   `json:"accuracy"`
	Sensitivity     float64   `json:"sensitivity"`
	Specificity     float64   `json:"specificity"`
	AUC             float64   `json:"roc_auc"`
	Count           int       `json:"count"`
}

// reportJSON is the wire form of Report. AUC is a pointer so an undefined
// curve (single observed class) serializes as null rather than NaN, which
// encoding/json rejects.
type reportJSON struct {
	ConfusionMatrix [2][2]int `json:"confusion_matrix"`
	Accuracy        float64   `json:"accuracy"`
	Sensitivity     float64   `json:"sensitivity"`
	Specificity     float64   `json:"specificity"`
	AUC             *float64  `json:"roc_auc"`
	Count           int       `json:"count"`
}

// MarshalJSON implements json.Marshaler.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		ConfusionMatrix: r.ConfusionMatrix,
		Accuracy:        r.Accuracy,
		Sensitivity:     r.Sensitivity,
		Specificity:     r.Specificity,
		Count:           r.Count,
	}
	if !math.IsNaN(r.AUC) {
		out.AUC = &r.AUC
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Report) UnmarshalJSON(data []byte) error {
	var in reportJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Report{
		ConfusionMatrix: in.ConfusionMatrix,
		Accuracy:        in.Accuracy,
		Sensitivity:     in.Sensitivity,
		Specificity:     in.Specificity,
		AUC:             math.NaN(),
		Count:           in.Count,
	}
	if in.AUC != nil {
		r.AUC = *in.AUC
	}
	return nil
}

// Evaluate scores a predictor against any compatible dataset. It is
// read-only and side-effect-free: identical inputs yield identical metrics.
func Evaluate(p Predictor, m *dataset.Matrix) (*Report, error) {
	if m.NumRows() == 0 {
		return nil, fmt.Errorf("evaluate: empty dataset")
	}

	probs, err := p.PredictProba(m)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	report := &Report{Count: m.NumRows()}
	for i, prob := range probs {
		predicted := 0
		if prob >= 0.5 {
			predicted = 1
		}
		report.ConfusionMatrix[m.Labels[i]][predicted]++
	}

	tn := report.ConfusionMatrix[0][0]
	fp := report.ConfusionMatrix[0][1]
	fn := report.ConfusionMatrix[1][0]
	tp := report.ConfusionMatrix[1][1]

	report.Accuracy = float64(tn+tp) / float64(report.Count)
	if tp+fn > 0 {
		report.Sensitivity = float64(tp) / float64(tp+fn)
	}
	if tn+fp > 0 {
		report.Specificity = float64(tn) / float64(tn+fp)
	}
	report.AUC = rocAUC(probs, m.Labels)

	return report, nil
}

// rocAUC computes area under the ROC curve. With a single observed class
// the curve is undefined and NaN is returned.
func rocAUC(probs []float64, labels []int) float64 {
	neg, pos := 0, 0
	scores := make([]float64, len(probs))
	classes := make([]bool, len(labels))
	copy(scores, probs)
	for i, l := range labels {
		classes[i] = l == 1
		if l == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return math.NaN()
	}

	stat.SortWeightedLabeled(scores, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
