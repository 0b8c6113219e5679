package export_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mkarimof/jurybox/internal/adapters/export"
	"github.com/mkarimof/jurybox/internal/domain/model"
)

func TestWorkbook(t *testing.T) {
	Convey("Given ranked results and raw records", t, func() {
		criteria := []model.Criterion{
			{ID: "c1", Name: "Innovation", MaxScore: 50},
			{ID: "c2", Name: "Execution", MaxScore: 50},
		}
		results := []model.EntryResult{
			{EntryID: "alpha", EntryName: "Team Alpha", AvgRaw: 70, AvgNormalized: 61.79, NumJudges: 1},
			{EntryID: "beta", EntryName: "Team Beta", AvgRaw: 60, AvgNormalized: 38.21, NumJudges: 1},
		}
		records := []model.ScoreRecord{
			{
				Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
				Judge:     "alice",
				EntryID:   "alpha",
				EntryName: "Team Alpha",
				Scores:    map[string]int{"c1": 40, "c2": 30},
			},
		}

		Convey("When the workbook is built", func() {
			wb, err := export.Workbook(results, records, criteria, 100)
			So(err, ShouldBeNil)
			defer func() { _ = wb.Close() }()

			Convey("Then both sheets exist", func() {
				So(wb.GetSheetList(), ShouldResemble, []string{export.SheetRankings, export.SheetRawScores})
			})

			Convey("Then the rankings sheet carries headers and ranked rows", func() {
				v, err := wb.GetCellValue(export.SheetRankings, "A1")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "Rank")

				v, err = wb.GetCellValue(export.SheetRankings, "B2")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "alpha")

				v, err = wb.GetCellValue(export.SheetRankings, "A3")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "2")

				v, err = wb.GetCellValue(export.SheetRankings, "E2")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "100")
			})

			Convey("Then the raw scores sheet uses criterion display names", func() {
				v, err := wb.GetCellValue(export.SheetRawScores, "E1")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "Innovation")

				v, err = wb.GetCellValue(export.SheetRawScores, "A2")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "2026-03-14 09:30:00")

				v, err = wb.GetCellValue(export.SheetRawScores, "F2")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "30")
			})
		})

		Convey("When there are no records at all", func() {
			wb, err := export.Workbook(nil, nil, criteria, 100)
			So(err, ShouldBeNil)
			defer func() { _ = wb.Close() }()

			Convey("Then an empty but well-formed workbook is produced", func() {
				v, err := wb.GetCellValue(export.SheetRankings, "A1")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "Rank")
			})
		})
	})
}
