package repository_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/twbeatles/hwpmaster-api/internal/model"
	"github.com/twbeatles/hwpmaster-api/internal/repository"
)

// setupMockDB initializes a GORM DB backed by sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

var batchRunColumns = []string{
	"id", "job_id", "operation", "state", "total_count", "success_count",
	"fail_count", "cancelled", "error_message", "output_dir",
	"created_at", "updated_at", "deleted_at",
}

func TestBatchRepo(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewBatchRepo(db)
		run := &model.BatchRun{
			JobID:      "job-1",
			Operation:  model.OpConvert,
			State:      model.StateRunning,
			TotalCount: 3,
			OutputDir:  "/out",
		}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(
			"INSERT INTO `batch_runs` (`job_id`,`operation`,`state`,`total_count`,`success_count`,`fail_count`,`cancelled`,`error_message`,`output_dir`,`created_at`,`updated_at`,`deleted_at`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		)).WithArgs(
			run.JobID, run.Operation, run.State, run.TotalCount, 0, 0, false, "", run.OutputDir,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.Create(run)
		assert.NoError(t, err)
		assert.Equal(t, uint(1), run.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FindByJobID_Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewBatchRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT * FROM `batch_runs` WHERE job_id = ? AND `batch_runs`.`deleted_at` IS NULL ORDER BY `batch_runs`.`id` LIMIT ?",
		)).WithArgs("job-1", 1).WillReturnRows(
			sqlmock.NewRows(batchRunColumns).
				AddRow(7, "job-1", "convert", "finished", 3, 3, 0, false, "", "/out",
					time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), nil),
		)

		run, err := repo.FindByJobID("job-1")
		require.NoError(t, err)
		assert.Equal(t, uint(7), run.ID)
		assert.Equal(t, model.StateFinished, run.State)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FindByJobID_NotFound", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewBatchRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT * FROM `batch_runs` WHERE job_id = ? AND `batch_runs`.`deleted_at` IS NULL ORDER BY `batch_runs`.`id` LIMIT ?",
		)).WithArgs("nope", 1).WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByJobID("nope")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewBatchRepo(db)
		run := &model.BatchRun{
			ID:           7,
			JobID:        "job-1",
			Operation:    model.OpConvert,
			State:        model.StateFinished,
			TotalCount:   3,
			SuccessCount: 2,
			FailCount:    1,
		}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(
			"UPDATE `batch_runs` SET",
		)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Update(run)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("List", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewBatchRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT * FROM `batch_runs` WHERE `batch_runs`.`deleted_at` IS NULL ORDER BY id DESC LIMIT ? OFFSET ?",
		)).WithArgs(5, 5).WillReturnRows(
			sqlmock.NewRows(batchRunColumns).
				AddRow(2, "job-2", "convert", "finished", 1, 1, 0, false, "", "/out",
					time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), nil).
				AddRow(1, "job-1", "mask", "cancelled", 4, 2, 0, true, "", "/out",
					time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), nil),
		)

		runs, err := repo.List(repository.Pagination{Page: 2, PageSize: 5})
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "job-2", runs[0].JobID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SaveItems", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewBatchRepo(db)
		items := []model.BatchItem{
			{SourceRef: "/docs/a.hwp", OutputRef: "/out/a.pdf", Success: true},
			{SourceRef: "/docs/b.hwp", ErrorMessage: "save failed"},
		}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(
			"INSERT INTO `batch_items`",
		)).WillReturnResult(sqlmock.NewResult(1, 2))
		mock.ExpectCommit()

		err := repo.SaveItems(9, items)
		require.NoError(t, err)
		assert.Equal(t, uint(9), items[0].BatchRunID)
		assert.Equal(t, 0, items[0].Position)
		assert.Equal(t, 1, items[1].Position)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SaveItems_Empty", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewBatchRepo(db)
		// No SQL expected.
		assert.NoError(t, repo.SaveItems(9, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListItems", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewBatchRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT * FROM `batch_items` WHERE batch_run_id = ? AND `batch_items`.`deleted_at` IS NULL ORDER BY position ASC",
		)).WithArgs(9).WillReturnRows(
			sqlmock.NewRows([]string{"id", "batch_run_id", "position", "source_ref", "output_ref", "success", "error_message", "created_at", "updated_at", "deleted_at"}).
				AddRow(1, 9, 0, "/docs/a.hwp", "/out/a.pdf", true, "",
					time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), nil).
				AddRow(2, 9, 1, "/docs/b.hwp", "", false, "save failed",
					time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), nil),
		)

		items, err := repo.ListItems(9)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "/docs/a.hwp", items[0].SourceRef)
		assert.False(t, items[1].Success)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
