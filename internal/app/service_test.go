package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/mkarimof/jurybox/internal/app"
	"github.com/mkarimof/jurybox/internal/config"
	"github.com/mkarimof/jurybox/internal/domain/auth"
	"github.com/mkarimof/jurybox/pkg/logger"
)

const testEvent = `{
  "entries": [
    {"id": "alpha", "name": "Team Alpha"},
    {"id": "beta", "name": "Team Beta"}
  ],
  "criteria": [
    {"id": "c1", "name": "Innovation", "max_score": 50},
    {"id": "c2", "name": "Execution", "max_score": 50}
  ],
  "judges": [
    {"username": "alice", "password": "pw1"},
    {"username": "bob", "password": "pw2"}
  ],
  "admins": [{"username": "root", "password": "admin-pw"}]
}`

var (
	judgeAlice = auth.Identity{Name: "alice", Role: auth.RoleJudge}
	judgeBob   = auth.Identity{Name: "bob", Role: auth.RoleJudge}
	admin      = auth.Identity{Name: "root", Role: auth.RoleAdmin}
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	_ = logger.Init()

	dir := t.TempDir()
	eventPath := filepath.Join(dir, "event.json")
	if err := os.WriteFile(eventPath, []byte(testEvent), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := service.New(
		service.WithEventProvider(config.NewFileEventProvider(config.WithEventPath(eventPath))),
		service.WithLedgerPath(dir, "scores.csv"),
		service.WithLockTimeout(2*time.Second),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_SubmitScore(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newTestService(t)

		Convey("When a judge submits scores for a known entry", func() {
			rec, err := svc.SubmitScore(ctx, judgeAlice, "alpha", map[string]int{"c1": 40, "c2": 30})

			Convey("Then the record is stored with the judge's identity", func() {
				So(err, ShouldBeNil)
				So(rec.Judge, ShouldEqual, "alice")
				So(rec.EntryID, ShouldEqual, "alpha")
				So(rec.EntryName, ShouldEqual, "Team Alpha")
				So(rec.Scores["c1"], ShouldEqual, 40)
			})
		})

		Convey("When submitted values exceed a criterion's range", func() {
			rec, err := svc.SubmitScore(ctx, judgeAlice, "alpha", map[string]int{"c1": 999, "c2": -5})

			Convey("Then they are clamped to the legal range", func() {
				So(err, ShouldBeNil)
				So(rec.Scores["c1"], ShouldEqual, 50)
				So(rec.Scores["c2"], ShouldEqual, 0)
			})
		})

		Convey("When the entry is unknown", func() {
			_, err := svc.SubmitScore(ctx, judgeAlice, "ghost", map[string]int{"c1": 10})

			Convey("Then the submission is rejected", func() {
				So(errors.Is(err, service.ErrUnknownEntry), ShouldBeTrue)
			})
		})

		Convey("When an admin tries to submit scores", func() {
			_, err := svc.SubmitScore(ctx, admin, "alpha", map[string]int{"c1": 10})

			Convey("Then the use case refuses", func() {
				So(errors.Is(err, service.ErrForbidden), ShouldBeTrue)
			})
		})

		Convey("When a judge resubmits for the same entry", func() {
			first, err := svc.SubmitScore(ctx, judgeAlice, "alpha", map[string]int{"c1": 10, "c2": 10})
			So(err, ShouldBeNil)
			second, err := svc.SubmitScore(ctx, judgeAlice, "alpha", map[string]int{"c1": 20, "c2": 20})
			So(err, ShouldBeNil)

			records, _, err := svc.RawScores(ctx, admin)

			Convey("Then only the latest record survives, timestamp refreshed", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].Scores["c1"], ShouldEqual, 20)
				So(second.Timestamp.Before(first.Timestamp), ShouldBeFalse)
			})
		})
	})
}

func TestService_Queries(t *testing.T) {
	Convey("Given a service with submissions from two judges", t, func() {
		ctx := context.Background()
		svc := newTestService(t)

		_, err := svc.SubmitScore(ctx, judgeAlice, "alpha", map[string]int{"c1": 50, "c2": 30})
		So(err, ShouldBeNil)
		_, err = svc.SubmitScore(ctx, judgeAlice, "beta", map[string]int{"c1": 40, "c2": 20})
		So(err, ShouldBeNil)
		_, err = svc.SubmitScore(ctx, judgeBob, "alpha", map[string]int{"c1": 25, "c2": 20})
		So(err, ShouldBeNil)

		Convey("When alice asks for her entry status", func() {
			statuses, err := svc.EntryStatus(ctx, judgeAlice)

			Convey("Then every entry is flagged scored", func() {
				So(err, ShouldBeNil)
				So(statuses, ShouldHaveLength, 2)
				So(statuses[0].Scored, ShouldBeTrue)
				So(statuses[1].Scored, ShouldBeTrue)
			})
		})

		Convey("When bob asks for his entry status", func() {
			statuses, err := svc.EntryStatus(ctx, judgeBob)

			Convey("Then only alpha is flagged scored", func() {
				So(err, ShouldBeNil)
				So(statuses[0].Entry.ID, ShouldEqual, "alpha")
				So(statuses[0].Scored, ShouldBeTrue)
				So(statuses[1].Scored, ShouldBeFalse)
			})
		})

		Convey("When bob fetches his record for alpha", func() {
			rec, err := svc.JudgeRecord(ctx, judgeBob, "alpha")

			Convey("Then his record comes back for prefill", func() {
				So(err, ShouldBeNil)
				So(rec, ShouldNotBeNil)
				So(rec.Scores["c1"], ShouldEqual, 25)
			})
		})

		Convey("When bob fetches a record he never submitted", func() {
			rec, err := svc.JudgeRecord(ctx, judgeBob, "beta")

			Convey("Then there is simply nothing", func() {
				So(err, ShouldBeNil)
				So(rec, ShouldBeNil)
			})
		})

		Convey("When the admin requests rankings", func() {
			ranking, err := svc.Rankings(ctx, admin)

			Convey("Then results are ranked with presentation context", func() {
				So(err, ShouldBeNil)
				So(ranking.Results, ShouldHaveLength, 2)
				So(ranking.MaxPossible, ShouldEqual, 100)
				So(ranking.Results[0].EntryID, ShouldEqual, "alpha")
				So(ranking.Results[0].NumJudges, ShouldEqual, 2)
			})
		})

		Convey("When a judge requests rankings", func() {
			_, err := svc.Rankings(ctx, judgeAlice)

			Convey("Then the use case refuses", func() {
				So(errors.Is(err, service.ErrForbidden), ShouldBeTrue)
			})
		})

		Convey("When a judge requests raw scores", func() {
			_, _, err := svc.RawScores(ctx, judgeAlice)

			Convey("Then the use case refuses", func() {
				So(errors.Is(err, service.ErrForbidden), ShouldBeTrue)
			})
		})

		Convey("When authenticating through the service", func() {
			id, err := svc.Authenticate(ctx, "alice", "pw1")

			Convey("Then the event file's credentials are honored", func() {
				So(err, ShouldBeNil)
				So(id.Role, ShouldEqual, auth.RoleJudge)
			})
		})

		Convey("When reading stats", func() {
			stats := svc.Stats()

			Convey("Then submission counters are visible", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["submissions"], ShouldEqual, int64(3))
			})
		})
	})
}
