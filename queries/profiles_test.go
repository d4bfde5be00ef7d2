package queries

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func mockConn(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
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
	return db, mock
}

func TestBindReferrer(t *testing.T) {
	Convey("Given an unbound profile", t, func() {
		db, mock := mockConn(t)
		repo := InitTestRepo(db, db)

		Convey("The conditional update binds the referrer once", func() {
			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "profiles" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()
			So(repo.BindReferrer(repo.ConnWriter, 5, 9), ShouldBeNil)
		})
		Convey("A row that already carries a referrer is never overwritten", func() {
			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "profiles" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectCommit()
			So(repo.BindReferrer(repo.ConnWriter, 5, 9), ShouldEqual, ErrReferrerAlreadyBound)
		})
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})
}

func TestGetProfileByIDUsesCallerConnection(t *testing.T) {
	Convey("Given separate writer and reader connections", t, func() {
		writer, writerMock := mockConn(t)
		reader, readerMock := mockConn(t)
		repo := InitTestRepo(writer, reader)

		Convey("A lookup on the writer handle never touches the reader", func() {
			writerMock.ExpectQuery(`SELECT \* FROM "profiles"`).
				WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(7, "active"))

			profile, err := repo.GetProfileByID(repo.ConnWriter, 7)
			So(err, ShouldBeNil)
			So(profile.ID, ShouldEqual, 7)
			So(writerMock.ExpectationsWereMet(), ShouldBeNil)
			So(readerMock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}
