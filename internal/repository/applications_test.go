// internal/repository/applications_test.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"job-portal/internal/common/logger"
	"job-portal/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

func newStore(t *testing.T, withRedis bool) (*ApplicationStore, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var rdb *redis.Client
	var mr *miniredis.Miniredis
	if withRedis {
		mr = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
	}

	return NewApplicationStore(db, rdb, time.Hour, logger.NewTestLogger(t)), mock, mr
}

// ==========================
// Create
// ==========================

func TestApplicationStore_Create_WritesApplicationAndWorkItem(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(sqlmock.AnyArg(), "user-1", "job-1", "Screening").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO screening_outbox`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "job-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := store.Create(context.Background(), "user-1", "job-1", models.StatusScreening)
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Create_NonScreeningSkipsWorkItem(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(sqlmock.AnyArg(), "user-1", "job-1", "Applied").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := store.Create(context.Background(), "user-1", "job-1", models.StatusApplied)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Create_DuplicateIsConflict(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	_, err := store.Create(context.Background(), "user-1", "job-1", models.StatusScreening)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Create_OutboxFailureRollsBack(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO screening_outbox`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.Create(context.Background(), "user-1", "job-1", models.StatusScreening)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_HasApplied(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	applied, err := store.HasApplied(context.Background(), "user-1", "job-1")
	require.NoError(t, err)
	assert.True(t, applied)
}

// ==========================
// Scoring inputs
// ==========================

func TestApplicationStore_GetJobDescription_CachesResult(t *testing.T) {
	store, mock, mr := newStore(t, true)

	mock.ExpectQuery(`SELECT title, description, responsibilities, qualifications`).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "description", "responsibilities", "qualifications"}).
			AddRow("Backend Engineer", "Build APIs", "Own services", ""))

	text, err := store.GetJobDescription(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Title: Backend Engineer\n\nDescription: Build APIs\n\nResponsibilities: Own services", text)

	cached, err := mr.Get("job:description:job-1")
	require.NoError(t, err)
	assert.Equal(t, text, cached)

	// second read is served from Redis; no further query is expected
	again, err := store.GetJobDescription(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, text, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_GetJobDescription_CacheErrorFallsBackToDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, cache := redismock.NewClientMock()
	store := NewApplicationStore(db, rdb, time.Hour, logger.NewTestLogger(t))

	want := "Title: Backend Engineer\n\nDescription: Build APIs"
	cache.ExpectGet("job:description:job-1").SetErr(errors.New("connection reset"))
	mock.ExpectQuery(`SELECT title, description`).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "description", "responsibilities", "qualifications"}).
			AddRow("Backend Engineer", "Build APIs", "", ""))
	cache.ExpectSet("job:description:job-1", want, time.Hour).SetErr(errors.New("READONLY"))

	text, err := store.GetJobDescription(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, want, text)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, cache.ExpectationsWereMet())
}

func TestApplicationStore_GetJobDescription_NotFound(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectQuery(`SELECT title, description`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetJobDescription(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestApplicationStore_GetResumeReference(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		want    string
		wantErr error
	}{
		{
			name: "stored reference",
			rows: sqlmock.NewRows([]string{"resume_url"}).AddRow("s3://resumes/u1.pdf"),
			want: "s3://resumes/u1.pdf",
		},
		{
			name:    "empty reference",
			rows:    sqlmock.NewRows([]string{"resume_url"}).AddRow(""),
			wantErr: ErrNotFound,
		},
		{
			name:    "no profile",
			err:     sql.ErrNoRows,
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock, _ := newStore(t, false)

			q := mock.ExpectQuery(`SELECT resume_url FROM job_seeker_profiles`).WithArgs("u1")
			if tt.err != nil {
				q.WillReturnError(tt.err)
			} else {
				q.WillReturnRows(tt.rows)
			}

			ref, err := store.GetResumeReference(context.Background(), "u1")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

// ==========================
// Status writes
// ==========================

func TestApplicationStore_SetStatus(t *testing.T) {
	t.Run("applies while screening", func(t *testing.T) {
		store, mock, _ := newStore(t, false)
		mock.ExpectExec(`UPDATE applications SET status = \$2`).
			WithArgs("app-1", "Applied").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := store.SetStatus(context.Background(), "app-1", models.StatusApplied)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("already decided", func(t *testing.T) {
		store, mock, _ := newStore(t, false)
		mock.ExpectExec(`UPDATE applications SET status = \$2`).
			WithArgs("app-1", "Rejected").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := store.SetStatus(context.Background(), "app-1", models.StatusRejected)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("database error", func(t *testing.T) {
		store, mock, _ := newStore(t, false)
		mock.ExpectExec(`UPDATE applications SET status = \$2`).
			WillReturnError(errors.New("connection reset"))

		_, err := store.SetStatus(context.Background(), "app-1", models.StatusRejected)
		require.Error(t, err)
	})
}

func TestApplicationStore_UpdateReviewStatus_ScreeningIsConflict(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectQuery(`UPDATE applications SET status = \$2`).
		WithArgs("app-1", "Viewed").
		WillReturnError(sql.ErrNoRows)

	_, err := store.UpdateReviewStatus(context.Background(), "app-1", models.StatusViewed)
	assert.True(t, errors.Is(err, ErrConflict))
}

// ==========================
// Work items
// ==========================

func TestApplicationStore_ClaimPending(t *testing.T) {
	store, mock, _ := newStore(t, false)
	now := time.Now()

	mock.ExpectQuery(`UPDATE screening_outbox\s+SET state = 'running'`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "application_id", "job_id", "applicant_id", "state", "attempts", "run_at", "locked_at", "last_error",
		}).
			AddRow("w1", "app-1", "job-1", "user-1", "running", 1, now, now, "").
			AddRow("w2", "app-2", "job-1", "user-2", "running", 2, now, nil, "timeout"))

	items, err := store.ClaimPending(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "app-1", items[0].ApplicationID)
	assert.Equal(t, models.WorkItemRunning, items[0].State)
	require.NotNil(t, items[0].LockedAt)
	assert.Nil(t, items[1].LockedAt)
	assert.Equal(t, 2, items[1].Attempts)
	assert.Equal(t, "timeout", items[1].LastError)
}

func TestApplicationStore_ReleaseAndMarkDone(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectExec(`SET state = 'pending'`).
		WithArgs("w1", sqlmock.AnyArg(), "scoring failed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET state = 'done'`).
		WithArgs("w1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Release(context.Background(), "w1", errors.New("scoring failed")))
	require.NoError(t, store.MarkDone(context.Background(), "w1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_FindStaleScreenings(t *testing.T) {
	store, mock, _ := newStore(t, false)
	applied := time.Now().Add(-time.Hour)

	mock.ExpectQuery(`FROM applications a\s+LEFT JOIN screening_outbox o`).
		WithArgs(sqlmock.AnyArg(), 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "user_id", "applied_at", "attempts", "state"}).
			AddRow("app-1", "job-1", "user-1", applied, 3, "running").
			AddRow("app-2", "job-2", "user-2", applied, 0, "done"))

	stale, err := store.FindStaleScreenings(context.Background(), 10*time.Minute, 50)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, 3, stale[0].Attempts)
	assert.Equal(t, models.WorkItemDone, stale[1].State)
}

func TestApplicationStore_Requeue(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectExec(`ON CONFLICT \(application_id\) DO UPDATE`).
		WithArgs("app-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Requeue(context.Background(), "app-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_DecisionRecipient(t *testing.T) {
	store, mock, _ := newStore(t, false)

	mock.ExpectQuery(`JOIN users u ON u.id = a.user_id`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "email", "phone", "title", "name"}).
			AddRow("app-1", "Ada", "ada@example.com", "+4915112345678", "Backend Engineer", "Acme"))

	r, err := store.DecisionRecipient(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", r.FirstName)
	assert.Equal(t, "Backend Engineer", r.JobTitle)

	mock.ExpectQuery(`JOIN users u ON u.id = a.user_id`).WillReturnError(sql.ErrNoRows)
	_, err = store.DecisionRecipient(context.Background(), "gone")
	assert.True(t, errors.Is(err, ErrNotFound))
}
