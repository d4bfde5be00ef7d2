package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"gitlab.com/agentlink-marketplace/attribution_api/config"
	"gitlab.com/agentlink-marketplace/attribution_api/queries"
)

func fraudTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
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
	cfg.Fraud.VelocityWindowSeconds = 3600
	cfg.Fraud.VelocityMaxCount = 25
	return NewService(context.Background(), cfg, repo, nil), mock
}

func TestSelfChecks(t *testing.T) {
	service := signalTestService()

	Convey("A profile cannot be referred by itself", t, func() {
		So(service.RejectsSelfReferral(5, 5), ShouldBeTrue)
		So(service.RejectsSelfReferral(5, 6), ShouldBeFalse)
	})
	Convey("An unassigned profile id never flags", t, func() {
		So(service.RejectsSelfReferral(0, 0), ShouldBeFalse)
	})
	Convey("A provider cannot delegate commission to themselves", t, func() {
		So(service.RejectsSelfDelegation(9, 9), ShouldBeTrue)
		So(service.RejectsSelfDelegation(9, 10), ShouldBeFalse)
	})
}

func TestExceedsVelocity(t *testing.T) {
	Convey("Counts above the window limit flag, counts below do not", t, func() {
		service, mock := fraudTestService(t)
		mock.ExpectQuery("SELECT count").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(26))
		flagged, err := service.ExceedsVelocity("198.51.100.7", 3600, 25)
		So(err, ShouldBeNil)
		So(flagged, ShouldBeTrue)

		mock.ExpectQuery("SELECT count").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
		flagged, err = service.ExceedsVelocity("198.51.100.7", 3600, 25)
		So(err, ShouldBeNil)
		So(flagged, ShouldBeFalse)
	})
	Convey("A missing source identifier is never flagged", t, func() {
		service, mock := fraudTestService(t)
		flagged, err := service.ExceedsVelocity("", 3600, 25)
		So(err, ShouldBeNil)
		So(flagged, ShouldBeFalse)
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})
}
