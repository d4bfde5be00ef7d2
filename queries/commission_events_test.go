package queries

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
)

func TestReleaseHeldCommissions(t *testing.T) {
	Convey("Given the pending to available sweep", t, func() {
		db, mock := mockConn(t)
		repo := InitTestRepo(db, db)
		now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

		Convey("The update is gated on the hold deadline, rows not yet due stay pending", func() {
			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "commission_events" SET .+ WHERE status = .+ AND available_at <= `).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectCommit()

			released, err := repo.ReleaseHeldCommissions(now)
			So(err, ShouldBeNil)
			So(released, ShouldEqual, 0)
		})
		Convey("Rows past their deadline are counted as released", func() {
			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "commission_events" SET .+ WHERE status = .+ AND available_at <= `).
				WillReturnResult(sqlmock.NewResult(0, 2))
			mock.ExpectCommit()

			released, err := repo.ReleaseHeldCommissions(now)
			So(err, ShouldBeNil)
			So(released, ShouldEqual, 2)
		})
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})
}

func TestConfirmPayout(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a scheduled payout row", t, func() {
		db, mock := mockConn(t)
		repo := InitTestRepo(db, db)

		Convey("A successful callback finalizes it as paid out", func() {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT \* FROM "commission_events" WHERE id = .+ FOR UPDATE`).
				WillReturnRows(sqlmock.NewRows([]string{"id", "status", "attempts"}).AddRow(4, "scheduled", 0))
			mock.ExpectExec(`UPDATE "commission_events" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			event, changed, err := repo.ConfirmPayout(4, true, 3, now)
			So(err, ShouldBeNil)
			So(changed, ShouldBeTrue)
			So(event.Status, ShouldEqual, model.CommissionEventStatusPaidOut)
		})
		Convey("A failed callback bounces it back to available with an attempt burned", func() {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT \* FROM "commission_events" WHERE id = .+ FOR UPDATE`).
				WillReturnRows(sqlmock.NewRows([]string{"id", "status", "attempts"}).AddRow(4, "scheduled", 0))
			mock.ExpectExec(`UPDATE "commission_events" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			event, changed, err := repo.ConfirmPayout(4, false, 3, now)
			So(err, ShouldBeNil)
			So(changed, ShouldBeTrue)
			So(event.Status, ShouldEqual, model.CommissionEventStatusAvailable)
			So(event.Attempts, ShouldEqual, 1)
		})
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("Given an already finalized row", t, func() {
		db, mock := mockConn(t)
		repo := InitTestRepo(db, db)

		Convey("A replayed callback leaves it untouched and reports no change", func() {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT \* FROM "commission_events" WHERE id = .+ FOR UPDATE`).
				WillReturnRows(sqlmock.NewRows([]string{"id", "status", "attempts"}).AddRow(4, "paid_out", 1))
			mock.ExpectCommit()

			event, changed, err := repo.ConfirmPayout(4, true, 3, now)
			So(err, ShouldBeNil)
			So(changed, ShouldBeFalse)
			So(event.Status, ShouldEqual, model.CommissionEventStatusPaidOut)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}
