package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"gitlab.com/agentlink-marketplace/attribution_api/config"
	"gitlab.com/agentlink-marketplace/attribution_api/model"
	"gitlab.com/agentlink-marketplace/attribution_api/queries"
)

func attributionTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	repo := queries.InitTestRepo(db, db)
	cfg := config.Config{}
	cfg.Attribution.CookieSecret = "unit-test-secret"
	cfg.Attribution.CookieMaxAgeDays = 30
	cfg.Attribution.CodeLength = 7
	cfg.Attribution.CodeMaxRetries = 10
	cfg.Fraud.VelocityWindowSeconds = 3600
	cfg.Fraud.VelocityMaxCount = 25
	return NewService(context.Background(), cfg, repo, nil), mock
}

func TestResolveAndBindAttributionIdempotency(t *testing.T) {
	Convey("Given a signup that was already processed", t, func() {
		srv, mock := attributionTestService(t)

		Convey("Retrying with the same signup reference returns the bound state without writing", func() {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE signup_ref = `).
				WillReturnRows(sqlmock.NewRows([]string{"id", "referred_by_profile_id", "status"}).
					AddRow(3, 9, "active"))
			mock.ExpectQuery(`SELECT \* FROM "referral_attempts" WHERE referred_profile_id = `).
				WillReturnRows(sqlmock.NewRows([]string{"id", "agent_profile_id", "referred_profile_id", "status", "source"}).
					AddRow(1, 9, 3, "signed_up", "url"))
			mock.ExpectCommit()

			result, err := srv.ResolveAndBindAttribution(&model.SignupRequest{
				SignupRef:  "host-ref-42",
				ManualCode: "Ab3xK9q",
			})
			So(err, ShouldBeNil)
			So(result.ProfileID, ShouldEqual, 3)
			So(*result.ReferrerID, ShouldEqual, 9)
			So(*result.Method, ShouldEqual, "url")
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestTrackReferralClickRecordsEveryClick(t *testing.T) {
	Convey("Given repeated visits from the same source", t, func() {
		srv, mock := attributionTestService(t)

		expectClick := func(attemptID int64) {
			mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE referral_code = `).
				WillReturnRows(sqlmock.NewRows([]string{"id", "referral_code", "status"}).
					AddRow(5, "Ab3xK9q", "active"))
			mock.ExpectQuery(`SELECT count`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO "referral_attempts"`).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(attemptID))
			mock.ExpectCommit()
		}

		Convey("Each click records its own pending attempt and mints a valid token", func() {
			expectClick(11)
			expectClick(12)

			for i := 0; i < 2; i++ {
				token, flagged, err := srv.TrackReferralClick("Ab3xK9q", "203.0.113.9")
				So(err, ShouldBeNil)
				So(flagged, ShouldBeFalse)

				code, err := VerifyReferralToken(token, "unit-test-secret", 30*24*time.Hour, time.Now())
				So(err, ShouldBeNil)
				So(code, ShouldEqual, "Ab3xK9q")
			}
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}
