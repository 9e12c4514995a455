package evaluate

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Classifier predicts a 0/1 class for an input.
type Classifier[T any] interface {
	Predict(x T) (int, error)
}

// ProbabilityEstimator additionally exposes the positive-class probability.
type ProbabilityEstimator[T any] interface {
	PredictProba(x T) (float64, error)
}

// Scores are the held-out evaluation results. ROCAUC is nil when it cannot
// be computed.
type Scores struct {
	Accuracy float64  `json:"accuracy"`
	F1       float64  `json:"f1"`
	ROCAUC   *float64 `json:"roc_auc"`
}

// Evaluate scores c on xs against labels y. ROC-AUC is only computed when c
// is a ProbabilityEstimator and y holds both classes.
func Evaluate[T any](c Classifier[T], xs []T, y []int) (Scores, error) {
	if len(xs) != len(y) {
		return Scores{}, fmt.Errorf("%w: %d inputs, %d labels", ErrLengthMismatch, len(xs), len(y))
	}
	pred := make([]int, len(xs))
	for i, x := range xs {
		p, err := c.Predict(x)
		if err != nil {
			return Scores{}, fmt.Errorf("predict row %d: %w", i, err)
		}
		pred[i] = p
	}

	s := Scores{Accuracy: Accuracy(y, pred), F1: F1(y, pred)}

	pe, ok := c.(ProbabilityEstimator[T])
	if !ok {
		return s, nil
	}
	proba := make([]float64, len(xs))
	for i, x := range xs {
		p, err := pe.PredictProba(x)
		if err != nil {
			return Scores{}, fmt.Errorf("predict proba row %d: %w", i, err)
		}
		proba[i] = p
	}
	s.ROCAUC = ROCAUC(y, proba)
	return s, nil
}

// Accuracy is the fraction of matching labels; 0 for empty input.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hit := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(yTrue))
}

// F1 is the harmonic mean of precision and recall for the positive class.
// It is 0 when there are no true positives.
func F1(yTrue, yPred []int) float64 {
	var tp, fp, fn int
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			tp++
		case yTrue[i] == 0 && yPred[i] == 1:
			fp++
		case yTrue[i] == 1 && yPred[i] == 0:
			fn++
		}
	}
	if tp == 0 {
		return 0
	}
	return float64(2*tp) / float64(2*tp+fp+fn)
}

// ROCAUC returns the area under the ROC curve of scores against yTrue, or nil
// when yTrue lacks one of the classes.
func ROCAUC(yTrue []int, scores []float64) *float64 {
	if len(yTrue) != len(scores) {
		return nil
	}
	var pos, neg int
	for _, l := range yTrue {
		if l == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	y := make([]float64, len(idx))
	classes := make([]bool, len(idx))
	for i, j := range idx {
		y[i] = scores[j]
		classes[i] = yTrue[j] == 1
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	auc := integrate.Trapezoidal(fpr, tpr)
	return &auc
}
