package evaluate_test

import (
	"errors"
	"testing"

	"github.com/okian/winrate/internal/domain/evaluate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTrainTestSplit(t *testing.T) {
	Convey("Given 10 rows with both classes", t, func() {
		labels := []int{1, 0, 1, 0, 1, 0, 1, 0, 1, 1}

		Convey("When split 80/20", func() {
			s, err := evaluate.TrainTestSplit(labels, 0.2, 42)
			So(err, ShouldBeNil)

			Convey("Then sizes follow the ratio and cover every row once", func() {
				So(len(s.Test), ShouldEqual, 2)
				So(len(s.Train), ShouldEqual, 8)
				seen := map[int]bool{}
				for _, i := range append(append([]int{}, s.Train...), s.Test...) {
					So(seen[i], ShouldBeFalse)
					seen[i] = true
				}
				So(len(seen), ShouldEqual, 10)
			})

			Convey("Then the split is stratified with one test row per class", func() {
				So(s.Stratified, ShouldBeTrue)
				wins := 0
				for _, i := range s.Test {
					wins += labels[i]
				}
				So(wins, ShouldEqual, 1)
			})

			Convey("Then the same seed gives the same split", func() {
				again, _ := evaluate.TrainTestSplit(labels, 0.2, 42)
				So(again, ShouldResemble, s)
			})
		})

		Convey("When the ratio does not divide evenly", func() {
			s, err := evaluate.TrainTestSplit(labels, 0.25, 1)
			So(err, ShouldBeNil)

			Convey("Then the test size rounds up", func() {
				So(len(s.Test), ShouldEqual, 3)
				So(len(s.Train)+len(s.Test), ShouldEqual, 10)
			})
		})
	})

	Convey("Given single-class labels", t, func() {
		labels := []int{1, 1, 1, 1, 1}

		Convey("Then the split falls back to a plain shuffle", func() {
			s, err := evaluate.TrainTestSplit(labels, 0.2, 42)
			So(err, ShouldBeNil)
			So(s.Stratified, ShouldBeFalse)
			So(len(s.Test), ShouldEqual, 1)
			So(len(s.Train), ShouldEqual, 4)
		})
	})

	Convey("Given degenerate input", t, func() {
		Convey("Then fewer than two rows is insufficient", func() {
			_, err := evaluate.TrainTestSplit([]int{1}, 0.2, 42)
			So(errors.Is(err, evaluate.ErrInsufficientData), ShouldBeTrue)
		})

		Convey("Then an out-of-range test size is rejected", func() {
			_, err := evaluate.TrainTestSplit([]int{1, 0}, 1.5, 42)
			So(errors.Is(err, evaluate.ErrInvalidTestSize), ShouldBeTrue)
		})

		Convey("Then two rows still leave one for training", func() {
			s, err := evaluate.TrainTestSplit([]int{1, 0}, 0.9, 42)
			So(err, ShouldBeNil)
			So(len(s.Train), ShouldEqual, 1)
			So(len(s.Test), ShouldEqual, 1)
		})
	})
}

func TestScores(t *testing.T) {
	Convey("Given predictions", t, func() {
		yTrue := []int{1, 1, 0, 0}
		yPred := []int{1, 0, 0, 1}

		Convey("Then accuracy and F1 match their definitions", func() {
			So(evaluate.Accuracy(yTrue, yPred), ShouldEqual, 0.5)
			So(evaluate.F1(yTrue, yPred), ShouldEqual, 0.5)
			So(evaluate.F1(yTrue, []int{0, 0, 0, 0}), ShouldEqual, 0)
			So(evaluate.Accuracy(nil, nil), ShouldEqual, 0)
		})

		Convey("Then ROC-AUC ranks scores", func() {
			perfect := evaluate.ROCAUC(yTrue, []float64{0.9, 0.8, 0.2, 0.1})
			So(perfect, ShouldNotBeNil)
			So(*perfect, ShouldAlmostEqual, 1.0)

			inverted := evaluate.ROCAUC(yTrue, []float64{0.1, 0.2, 0.8, 0.9})
			So(*inverted, ShouldAlmostEqual, 0.0)

			tied := evaluate.ROCAUC(yTrue, []float64{0.5, 0.5, 0.5, 0.5})
			So(*tied, ShouldAlmostEqual, 0.5)

			mixed := evaluate.ROCAUC(yTrue, []float64{0.9, 0.3, 0.5, 0.1})
			So(*mixed, ShouldAlmostEqual, 0.75)
		})

		Convey("Then ROC-AUC is unavailable for a single class", func() {
			So(evaluate.ROCAUC([]int{1, 1}, []float64{0.2, 0.9}), ShouldBeNil)
		})
	})
}

type threshold struct{ cut float64 }

func (c threshold) Predict(x float64) (int, error) {
	if x > c.cut {
		return 1, nil
	}
	return 0, nil
}

type thresholdProba struct{ threshold }

func (c thresholdProba) PredictProba(x float64) (float64, error) { return x, nil }

func TestEvaluate(t *testing.T) {
	Convey("Given a held-out set", t, func() {
		xs := []float64{0.9, 0.7, 0.4, 0.1}
		y := []int{1, 1, 0, 0}

		Convey("When the classifier exposes probabilities", func() {
			s, err := evaluate.Evaluate[float64](thresholdProba{threshold{0.5}}, xs, y)

			Convey("Then every score is reported", func() {
				So(err, ShouldBeNil)
				So(s.Accuracy, ShouldEqual, 1)
				So(s.F1, ShouldEqual, 1)
				So(s.ROCAUC, ShouldNotBeNil)
				So(*s.ROCAUC, ShouldAlmostEqual, 1.0)
			})
		})

		Convey("When the classifier only predicts classes", func() {
			s, err := evaluate.Evaluate[float64](threshold{0.5}, xs, y)

			Convey("Then ROC-AUC is unavailable", func() {
				So(err, ShouldBeNil)
				So(s.ROCAUC, ShouldBeNil)
			})
		})

		Convey("When lengths differ", func() {
			_, err := evaluate.Evaluate[float64](threshold{0.5}, xs, y[:1])
			So(errors.Is(err, evaluate.ErrLengthMismatch), ShouldBeTrue)
		})
	})
}
