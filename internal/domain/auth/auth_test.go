package auth_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mkarimof/jurybox/internal/domain/auth"
)

type staticCreds struct {
	judges map[string]string
	admins map[string]string
	err    error
}

func (s staticCreds) JudgeCredentials(_ context.Context) (map[string]string, error) {
	return s.judges, s.err
}

func (s staticCreds) AdminCredentials(_ context.Context) (map[string]string, error) {
	return s.admins, s.err
}

func TestAuthenticate(t *testing.T) {
	Convey("Given judge and admin credential lists", t, func() {
		ctx := context.Background()
		src := staticCreds{
			judges: map[string]string{"alice": "j-secret", "both": "judge-pw"},
			admins: map[string]string{"root": "a-secret", "both": "admin-pw"},
		}

		Convey("When a judge presents valid credentials", func() {
			id, err := auth.Authenticate(ctx, src, "alice", "j-secret")

			Convey("Then a judge identity is returned", func() {
				So(err, ShouldBeNil)
				So(id.Name, ShouldEqual, "alice")
				So(id.Role, ShouldEqual, auth.RoleJudge)
			})
		})

		Convey("When an admin presents valid credentials", func() {
			id, err := auth.Authenticate(ctx, src, "root", "a-secret")

			Convey("Then an admin identity is returned", func() {
				So(err, ShouldBeNil)
				So(id.Role, ShouldEqual, auth.RoleAdmin)
			})
		})

		Convey("When a username exists in both lists", func() {
			id, err := auth.Authenticate(ctx, src, "both", "admin-pw")

			Convey("Then the admin list wins", func() {
				So(err, ShouldBeNil)
				So(id.Role, ShouldEqual, auth.RoleAdmin)
			})
		})

		Convey("When the password is wrong", func() {
			_, err := auth.Authenticate(ctx, src, "alice", "nope")

			Convey("Then authentication fails", func() {
				So(errors.Is(err, auth.ErrBadCredentials), ShouldBeTrue)
			})
		})

		Convey("When the username is unknown", func() {
			_, err := auth.Authenticate(ctx, src, "stranger", "whatever")

			Convey("Then authentication fails", func() {
				So(errors.Is(err, auth.ErrBadCredentials), ShouldBeTrue)
			})
		})

		Convey("When the credential source fails", func() {
			broken := staticCreds{err: errors.New("config gone")}
			_, err := auth.Authenticate(ctx, broken, "alice", "j-secret")

			Convey("Then the failure propagates unrecovered", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, auth.ErrBadCredentials), ShouldBeFalse)
			})
		})
	})
}

func TestRequireChecks(t *testing.T) {
	Convey("Given identities of each role", t, func() {
		judge := auth.Identity{Name: "alice", Role: auth.RoleJudge}
		admin := auth.Identity{Name: "root", Role: auth.RoleAdmin}

		Convey("Then RequireJudge only allows judges", func() {
			So(auth.RequireJudge(judge).Allowed, ShouldBeTrue)
			d := auth.RequireJudge(admin)
			So(d.Allowed, ShouldBeFalse)
			So(d.Reason, ShouldNotBeEmpty)
		})

		Convey("Then RequireAdmin only allows admins", func() {
			So(auth.RequireAdmin(admin).Allowed, ShouldBeTrue)
			d := auth.RequireAdmin(judge)
			So(d.Allowed, ShouldBeFalse)
			So(d.Reason, ShouldNotBeEmpty)
		})

		Convey("Then an unauthenticated identity is denied everywhere", func() {
			So(auth.RequireJudge(auth.Identity{}).Allowed, ShouldBeFalse)
			So(auth.RequireAdmin(auth.Identity{}).Allowed, ShouldBeFalse)
		})
	})
}
