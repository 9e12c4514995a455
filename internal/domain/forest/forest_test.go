package forest_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/winrate/internal/domain/forest"
	. "github.com/smartystreets/goconvey/convey"
)

// separable builds rows where feature 0 decides the label and feature 1 is noise.
func separable(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		label := i % 2
		X[i] = []float64{float64(label*10 + i%3), float64(i % 7)}
		y[i] = label
	}
	return X, y
}

func TestForest_Fit(t *testing.T) {
	Convey("Given separable data", t, func() {
		X, y := separable(60)
		ctx := context.Background()

		Convey("When fitted", func() {
			f := forest.New(forest.WithTrees(25), forest.WithMaxDepth(4), forest.WithSeed(7))
			So(f.Fit(ctx, X, y), ShouldBeNil)

			Convey("Then it learns the deciding feature", func() {
				p, err := f.PredictProba([]float64{12, 3})
				So(err, ShouldBeNil)
				So(p, ShouldBeGreaterThan, 0.5)

				cls, err := f.Predict([]float64{0, 3})
				So(err, ShouldBeNil)
				So(cls, ShouldEqual, 0)
			})

			Convey("Then every tree respects the depth bound", func() {
				So(len(f.Trees), ShouldEqual, 25)
				for i := range f.Trees {
					So(f.Trees[i].Depth(), ShouldBeLessThanOrEqualTo, 4)
				}
			})

			Convey("Then probabilities stay in [0,1]", func() {
				for _, row := range X {
					p, err := f.PredictProba(row)
					So(err, ShouldBeNil)
					So(p, ShouldBeBetweenOrEqual, 0, 1)
				}
			})
		})

		Convey("When fitted twice with the same seed and different worker counts", func() {
			a := forest.New(forest.WithTrees(15), forest.WithSeed(42), forest.WithWorkers(1))
			b := forest.New(forest.WithTrees(15), forest.WithSeed(42), forest.WithWorkers(8))
			So(a.Fit(ctx, X, y), ShouldBeNil)
			So(b.Fit(ctx, X, y), ShouldBeNil)

			Convey("Then the forests are identical", func() {
				So(b.Trees, ShouldResemble, a.Trees)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			f := forest.New(forest.WithTrees(5))

			Convey("Then Fit fails and leaves the forest unfitted", func() {
				So(errors.Is(f.Fit(cctx, X, y), context.Canceled), ShouldBeTrue)
				_, err := f.PredictProba([]float64{0, 0})
				So(errors.Is(err, forest.ErrNotFitted), ShouldBeTrue)
			})
		})
	})

	Convey("Given a single-class training set", t, func() {
		X := [][]float64{{1}, {2}, {3}}
		y := []int{1, 1, 1}
		f := forest.New(forest.WithTrees(3))

		Convey("Then every tree is a leaf predicting that class", func() {
			So(f.Fit(context.Background(), X, y), ShouldBeNil)
			p, err := f.PredictProba([]float64{100})
			So(err, ShouldBeNil)
			So(p, ShouldEqual, 1.0)
		})
	})

	Convey("Given malformed input", t, func() {
		f := forest.New(forest.WithTrees(2))
		ctx := context.Background()

		Convey("Then empty, ragged, mismatched or non-binary input is rejected", func() {
			So(errors.Is(f.Fit(ctx, nil, nil), forest.ErrInvalidInput), ShouldBeTrue)
			So(errors.Is(f.Fit(ctx, [][]float64{{1}, {2}}, []int{1}), forest.ErrInvalidInput), ShouldBeTrue)
			So(errors.Is(f.Fit(ctx, [][]float64{{1}, {2, 3}}, []int{0, 1}), forest.ErrInvalidInput), ShouldBeTrue)
			So(errors.Is(f.Fit(ctx, [][]float64{{1}, {2}}, []int{0, 2}), forest.ErrInvalidInput), ShouldBeTrue)
		})
	})
}

func TestForest_PredictProba(t *testing.T) {
	Convey("Given a fitted forest", t, func() {
		X, y := separable(20)
		f := forest.New(forest.WithTrees(5))
		So(f.Fit(context.Background(), X, y), ShouldBeNil)

		Convey("Then a vector of the wrong width is rejected", func() {
			_, err := f.PredictProba([]float64{1})
			So(errors.Is(err, forest.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("Then the JSON form predicts the same", func() {
			b, err := json.Marshal(f)
			So(err, ShouldBeNil)
			var back forest.Forest
			So(json.Unmarshal(b, &back), ShouldBeNil)

			for _, row := range X {
				want, _ := f.PredictProba(row)
				got, err := back.PredictProba(row)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})
	})
}
