package smoke

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateRequests(t *testing.T) {
	Convey("Given a seeded config", t, func() {
		cfg := &Config{Requests: 50, Seed: 7, Champions: []string{"Jinx", "Ahri"}}

		Convey("Then generation is reproducible", func() {
			a := generateRequests(cfg)
			b := generateRequests(cfg)
			So(len(a), ShouldEqual, 50)
			So(a, ShouldResemble, b)
		})

		Convey("Then only configured champions appear", func() {
			for _, r := range generateRequests(cfg) {
				So(r.Champion, ShouldBeIn, cfg.Champions)
			}
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given prediction responses", t, func() {
		So(verify(Response{Probability: 0.7, PredictedWin: true, FallbackSource: "champion_average"}), ShouldBeTrue)
		So(verify(Response{Probability: 0.5, PredictedWin: true, FallbackSource: "global_defaults"}), ShouldBeTrue)
		So(verify(Response{Probability: 0.5, PredictedWin: false, FallbackSource: "global_defaults"}), ShouldBeFalse)
		So(verify(Response{Probability: 1.2, PredictedWin: true, FallbackSource: "global_defaults"}), ShouldBeFalse)
		So(verify(Response{Probability: 0.2, FallbackSource: ""}), ShouldBeFalse)
	})
}
