package match_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/winrate/internal/domain/match"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeRole(t *testing.T) {
	Convey("Given Riot position names", t, func() {
		Convey("Then bottom-lane aliases map to ADC", func() {
			So(match.NormalizeRole("BOTTOM"), ShouldEqual, match.RoleADC)
			So(match.NormalizeRole("BOT"), ShouldEqual, match.RoleADC)
			So(match.NormalizeRole("bottom"), ShouldEqual, match.RoleADC)
		})

		Convey("Then UTILITY maps to SUPPORT and MIDDLE to MID", func() {
			So(match.NormalizeRole("UTILITY"), ShouldEqual, match.RoleSupport)
			So(match.NormalizeRole("middle"), ShouldEqual, match.RoleMid)
		})

		Convey("Then other values pass through upper-cased", func() {
			So(match.NormalizeRole("jungle"), ShouldEqual, match.RoleJungle)
			So(match.NormalizeRole("Top"), ShouldEqual, match.RoleTop)
			So(match.NormalizeRole("duo_carry"), ShouldEqual, match.Role("DUO_CARRY"))
		})

		Convey("Then empty input is UNKNOWN", func() {
			So(match.NormalizeRole(""), ShouldEqual, match.RoleUnknown)
			So(match.NormalizeRole("   "), ShouldEqual, match.RoleUnknown)
		})

		Convey("Then normalizing twice is stable", func() {
			for _, in := range []string{"BOTTOM", "UTILITY", "MIDDLE", "TOP", ""} {
				once := match.NormalizeRole(in)
				So(match.NormalizeRole(string(once)), ShouldEqual, once)
			}
		})
	})
}

func TestToPatch(t *testing.T) {
	Convey("Given game version strings", t, func() {
		Convey("Then the first two components are kept", func() {
			So(match.ToPatch("14.20.123.4567"), ShouldEqual, "14.20")
			So(match.ToPatch("14.20"), ShouldEqual, "14.20")
			So(match.ToPatch("15.1.1"), ShouldEqual, "15.1")
		})

		Convey("Then strings without a dot yield empty", func() {
			So(match.ToPatch(""), ShouldEqual, "")
			So(match.ToPatch("1420"), ShouldEqual, "")
			So(match.ToPatch("nan"), ShouldEqual, "")
		})
	})
}

func TestStatsCheck(t *testing.T) {
	Convey("Given metric values", t, func() {
		So(match.Stats{match.Kills: 3}.Check(), ShouldBeNil)

		err := match.Stats{match.GoldPerMin: math.Inf(1)}.Check()
		So(errors.Is(err, match.ErrInvalidValue), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "goldPerMin")

		So(errors.Is(match.Stats{match.Deaths: math.NaN()}.Check(), match.ErrInvalidValue), ShouldBeTrue)
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a raw table", t, func() {
		header := []string{"\ufeffmatchId", "champion", "role", "runePrimary", "runeSub", "win", "kills", "deaths", "gameVersion", "queueId"}

		Convey("When every cell is set", func() {
			rows := [][]string{
				{"KR_1", "Jinx", "BOTTOM", "8000", "8300", "1", "10", "2", "14.20.123", "420"},
				{"KR_2", "Ezreal", "utility", "8100.0", "8200.0", "False", "2", "8", "14.21.1", "440"},
			}
			ds, err := match.Normalize(header, rows)

			Convey("Then records are normalized", func() {
				So(err, ShouldBeNil)
				So(ds.Len(), ShouldEqual, 2)
				So(ds.Records[0], ShouldResemble, match.Record{
					Champion: "Jinx", Role: match.RoleADC, RunePrimary: 8000, RuneSub: 8300,
					QueueID: 420, Patch: "14.20", Win: true,
					Stats: match.Stats{match.Kills: 10, match.Deaths: 2},
				})
				So(ds.Records[1].Role, ShouldEqual, match.RoleSupport)
				So(ds.Records[1].RunePrimary, ShouldEqual, 8100)
				So(ds.Records[1].Win, ShouldBeFalse)
			})

			Convey("Then column presence is tracked", func() {
				So(ds.Has(match.ColPatch), ShouldBeTrue)
				So(ds.Has("matchId"), ShouldBeTrue)
				So(ds.Has("assists"), ShouldBeFalse)
				So(ds.PresentMetrics(), ShouldResemble, []match.Metric{match.Kills, match.Deaths})
			})
		})

		Convey("When cells are unset", func() {
			rows := [][]string{{"", "", "", "", "", "", "", "", "", ""}}
			ds, err := match.Normalize(header, rows)

			Convey("Then they are zero-filled", func() {
				So(err, ShouldBeNil)
				r := ds.Records[0]
				So(r.Champion, ShouldEqual, "0")
				So(r.Role, ShouldEqual, match.RoleUnknown)
				So(r.RunePrimary, ShouldEqual, 0)
				So(r.QueueID, ShouldEqual, 0)
				So(r.Patch, ShouldEqual, "")
				So(r.Win, ShouldBeFalse)
				So(r.Stats, ShouldResemble, match.Stats{})
			})
		})

		Convey("When a row is shorter than the header", func() {
			ds, err := match.Normalize(header, [][]string{{"KR_3", "Jinx", "ADC", "8000", "8300", "true"}})

			Convey("Then the missing tail is zero-filled", func() {
				So(err, ShouldBeNil)
				So(ds.Records[0].Stats[match.Kills], ShouldEqual, 0)
				So(ds.Records[0].Patch, ShouldEqual, "")
			})
		})

		Convey("When a mandatory column is missing", func() {
			_, err := match.Normalize([]string{"champion", "role", "runePrimary", "win"}, nil)

			Convey("Then a schema violation names the column", func() {
				So(errors.Is(err, match.ErrSchemaViolation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "runeSub")
			})
		})

		Convey("When a numeric cell is infinite", func() {
			for _, v := range []string{"inf", "+Inf", "-inf", "1e400"} {
				rows := [][]string{{"KR_5", "Jinx", "ADC", "8000", "8300", "1", v, "1", "14.1.1", "420"}}
				_, err := match.Normalize(header, rows)
				So(errors.Is(err, match.ErrInvalidValue), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "kills")
			}
		})

		Convey("When a categorical cell is infinite", func() {
			rows := [][]string{{"KR_6", "Jinx", "ADC", "inf", "8300", "1", "1", "1", "14.1.1", "420"}}
			_, err := match.Normalize(header, rows)
			So(errors.Is(err, match.ErrInvalidValue), ShouldBeTrue)
		})

		Convey("When a numeric cell is not a number", func() {
			rows := [][]string{{"KR_4", "Jinx", "ADC", "precision", "8300", "1", "1", "1", "14.1.1", "420"}}
			_, err := match.Normalize(header, rows)

			Convey("Then an invalid value error names the line and column", func() {
				So(errors.Is(err, match.ErrInvalidValue), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "line 2")
				So(err.Error(), ShouldContainSubstring, "runePrimary")
			})
		})
	})
}

func TestDataset(t *testing.T) {
	Convey("Given a dataset", t, func() {
		ds := match.NewDataset([]match.Record{
			{Champion: "Jinx", Win: true},
			{Champion: "Ezreal"},
			{Champion: "Jinx"},
		}, []string{"champion", "win"})

		Convey("Then Filter keeps matching rows and the column set", func() {
			sub := ds.Filter(func(r match.Record) bool { return r.Champion == "Jinx" })
			So(sub.Len(), ShouldEqual, 2)
			So(sub.Has("champion"), ShouldBeTrue)
		})

		Convey("Then Labels encodes wins as 1", func() {
			So(ds.Labels(), ShouldResemble, []int{1, 0, 0})
		})

		Convey("Then a nil dataset is empty", func() {
			var nilDS *match.Dataset
			So(nilDS.Len(), ShouldEqual, 0)
			So(nilDS.Has("champion"), ShouldBeFalse)
		})
	})
}
