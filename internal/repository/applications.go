// internal/repository/applications.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"job-portal/internal/common/database"
	"job-portal/internal/common/logger"
	"job-portal/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseDelay is how long a released work item waits before it can be claimed again.
const releaseDelay = 30 * time.Second

// ApplicationStore persists applications and their screening work items.
type ApplicationStore struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewApplicationStore builds the store. rdb may be nil, which disables the job description cache.
func NewApplicationStore(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *ApplicationStore {
	return &ApplicationStore{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "application-store"}),
	}
}

// Create inserts the application and, for Screening applications, its work item in one transaction.
func (s *ApplicationStore) Create(ctx context.Context, applicantID, jobID string, status models.ApplicationStatus) (string, error) {
	appID := uuid.New().String()

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO applications (id, user_id, job_id, status, applied_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())`,
			appID, applicantID, jobID, string(status),
		); err != nil {
			return err
		}

		if status != models.StatusScreening {
			return nil
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO screening_outbox (id, application_id, job_id, applicant_id, state, run_at)
			VALUES ($1, $2, $3, $4, 'pending', now())`,
			uuid.New().String(), appID, jobID, applicantID,
		)
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return "", fmt.Errorf("%w: application exists for user %s and job %s", ErrConflict, applicantID, jobID)
		}
		return "", fmt.Errorf("insert application: %w", err)
	}

	return appID, nil
}

func (s *ApplicationStore) HasApplied(ctx context.Context, applicantID, jobID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications WHERE user_id = $1 AND job_id = $2
		)`, applicantID, jobID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return exists, nil
}

// GetJobDescription returns the scoring text for a job, served from Redis when cached.
func (s *ApplicationStore) GetJobDescription(ctx context.Context, jobID string) (string, error) {
	cacheKey := jobDescriptionKey(jobID)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("job description cache read failed", map[string]interface{}{
				"jobId": jobID,
				"error": err,
			})
		}
	}

	var title, description, responsibilities, qualifications string
	err := s.db.QueryRowContext(ctx, `
		SELECT title, description, responsibilities, qualifications
		FROM jobs WHERE id = $1`, jobID,
	).Scan(&title, &description, &responsibilities, &qualifications)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	if err != nil {
		return "", fmt.Errorf("load job description: %w", err)
	}

	text := composeJobDescription(title, description, responsibilities, qualifications)
	if text == "" {
		return "", fmt.Errorf("%w: job %s has no description", ErrNotFound, jobID)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, text, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("job description cache write failed", map[string]interface{}{
				"jobId": jobID,
				"error": err,
			})
		}
	}

	return text, nil
}

// GetResumeReference returns the applicant's stored resume location.
func (s *ApplicationStore) GetResumeReference(ctx context.Context, applicantID string) (string, error) {
	var ref string
	err := s.db.QueryRowContext(ctx,
		`SELECT resume_url FROM job_seeker_profiles WHERE user_id = $1`, applicantID,
	).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && ref == "") {
		return "", fmt.Errorf("%w: no resume on file for user %s", ErrNotFound, applicantID)
	}
	if err != nil {
		return "", fmt.Errorf("load resume reference: %w", err)
	}
	return ref, nil
}

// SetStatus writes a screening decision. It only applies while the application is
// still Screening and reports false when the row was already decided.
func (s *ApplicationStore) SetStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'Screening'`,
		applicationID, string(status),
	)
	if err != nil {
		return false, fmt.Errorf("set application status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set application status: %w", err)
	}
	return n == 1, nil
}

// ClaimPending atomically moves up to limit due work items to running.
func (s *ApplicationStore) ClaimPending(ctx context.Context, limit int) ([]models.WorkItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE screening_outbox
		SET state = 'running', locked_at = now(), attempts = attempts + 1, updated_at = now()
		WHERE id IN (
			SELECT id FROM screening_outbox
			WHERE state = 'pending' AND run_at <= now()
			ORDER BY run_at
			FOR UPDATE SKIP LOCKED
			LIMIT $1
		)
		RETURNING id, application_id, job_id, applicant_id, state, attempts, run_at, locked_at, last_error`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("claim work items: %w", err)
	}
	defer rows.Close()

	var items []models.WorkItem
	for rows.Next() {
		var item models.WorkItem
		var lockedAt sql.NullTime
		if err := rows.Scan(
			&item.ID, &item.ApplicationID, &item.JobID, &item.ApplicantID,
			&item.State, &item.Attempts, &item.RunAt, &lockedAt, &item.LastError,
		); err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		if lockedAt.Valid {
			item.LockedAt = &lockedAt.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *ApplicationStore) MarkDone(ctx context.Context, workItemID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE screening_outbox
		SET state = 'done', locked_at = NULL, updated_at = now()
		WHERE id = $1`, workItemID)
	if err != nil {
		return fmt.Errorf("mark work item done: %w", err)
	}
	return nil
}

// MarkDoneForApplication closes the work item of an application decided outside a run.
func (s *ApplicationStore) MarkDoneForApplication(ctx context.Context, applicationID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE screening_outbox
		SET state = 'done', locked_at = NULL, updated_at = now()
		WHERE application_id = $1`, applicationID)
	if err != nil {
		return fmt.Errorf("mark work item done: %w", err)
	}
	return nil
}

// Release returns a claimed work item to pending after a failed attempt.
func (s *ApplicationStore) Release(ctx context.Context, workItemID string, cause error) error {
	lastErr := ""
	if cause != nil {
		lastErr = cause.Error()
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE screening_outbox
		SET state = 'pending', locked_at = NULL, run_at = $2, last_error = $3, updated_at = now()
		WHERE id = $1`,
		workItemID, time.Now().UTC().Add(releaseDelay), lastErr,
	)
	if err != nil {
		return fmt.Errorf("release work item: %w", err)
	}
	return nil
}

// FindStaleScreenings lists applications that entered Screening before now-olderThan
// and whose work item is missing, finished, or stuck.
func (s *ApplicationStore) FindStaleScreenings(ctx context.Context, olderThan time.Duration, limit int) ([]models.StaleScreening, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.job_id, a.user_id, a.applied_at,
		       COALESCE(o.attempts, 0), COALESCE(o.state, 'done')
		FROM applications a
		LEFT JOIN screening_outbox o ON o.application_id = a.id
		WHERE a.status = 'Screening'
		  AND a.applied_at < $1
		  AND (o.id IS NULL
		       OR o.state = 'done'
		       OR (o.state = 'running' AND o.locked_at < $1)
		       OR (o.state = 'pending' AND o.run_at < $1))
		ORDER BY a.applied_at
		LIMIT $2`,
		cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("find stale screenings: %w", err)
	}
	defer rows.Close()

	var stale []models.StaleScreening
	for rows.Next() {
		var st models.StaleScreening
		if err := rows.Scan(&st.ApplicationID, &st.JobID, &st.ApplicantID, &st.AppliedAt, &st.Attempts, &st.State); err != nil {
			return nil, fmt.Errorf("scan stale screening: %w", err)
		}
		stale = append(stale, st)
	}
	return stale, rows.Err()
}

// Requeue makes the application's work item claimable again, recreating it if it is missing.
// Applications that already left Screening are ignored.
func (s *ApplicationStore) Requeue(ctx context.Context, applicationID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO screening_outbox (id, application_id, job_id, applicant_id, state, run_at)
		SELECT $2, a.id, a.job_id, a.user_id, 'pending', now()
		FROM applications a
		WHERE a.id = $1 AND a.status = 'Screening'
		ON CONFLICT (application_id) DO UPDATE
		SET state = 'pending', run_at = now(), locked_at = NULL, updated_at = now()`,
		applicationID, uuid.New().String(),
	)
	if err != nil {
		return fmt.Errorf("requeue application %s: %w", applicationID, err)
	}
	return nil
}

// ListForApplicant returns the seeker's applications, newest first.
func (s *ApplicationStore) ListForApplicant(ctx context.Context, applicantID string) ([]models.MyApplication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.status, a.applied_at, j.id, j.title, j.location, c.name
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN companies c ON c.id = j.company_id
		WHERE a.user_id = $1
		ORDER BY a.applied_at DESC`, applicantID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := []models.MyApplication{}
	for rows.Next() {
		var a models.MyApplication
		if err := rows.Scan(&a.ApplicationID, &a.Status, &a.AppliedAt, &a.JobID, &a.Title, &a.Location, &a.CompanyName); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// ListApplicants returns everyone who applied to a job.
func (s *ApplicationStore) ListApplicants(ctx context.Context, jobID string) ([]models.Applicant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.status, a.applied_at, u.first_name, u.last_name, u.email, COALESCE(p.resume_url, '')
		FROM applications a
		JOIN users u ON u.id = a.user_id
		LEFT JOIN job_seeker_profiles p ON p.user_id = a.user_id
		WHERE a.job_id = $1
		ORDER BY a.applied_at DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	applicants := []models.Applicant{}
	for rows.Next() {
		var a models.Applicant
		if err := rows.Scan(&a.ApplicationID, &a.Status, &a.AppliedAt, &a.FirstName, &a.LastName, &a.Email, &a.ResumeURL); err != nil {
			return nil, fmt.Errorf("scan applicant: %w", err)
		}
		applicants = append(applicants, a)
	}
	return applicants, rows.Err()
}

// ReviewTarget returns the employer owning the application's job and its current status.
func (s *ApplicationStore) ReviewTarget(ctx context.Context, applicationID string) (string, models.ApplicationStatus, error) {
	var ownerID string
	var status models.ApplicationStatus
	err := s.db.QueryRowContext(ctx, `
		SELECT c.user_id, a.status
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN companies c ON c.id = j.company_id
		WHERE a.id = $1`, applicationID,
	).Scan(&ownerID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("%w: application %s", ErrNotFound, applicationID)
	}
	if err != nil {
		return "", "", fmt.Errorf("load application: %w", err)
	}
	return ownerID, status, nil
}

// UpdateReviewStatus sets an employer review status. Applications still in
// Screening are left alone and reported as ErrConflict.
func (s *ApplicationStore) UpdateReviewStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (*models.Application, error) {
	var app models.Application
	err := s.db.QueryRowContext(ctx, `
		UPDATE applications SET status = $2, updated_at = now()
		WHERE id = $1 AND status <> 'Screening'
		RETURNING id, job_id, user_id, status, applied_at, updated_at`,
		applicationID, string(status),
	).Scan(&app.ID, &app.JobID, &app.UserID, &app.Status, &app.AppliedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: application %s is still being screened", ErrConflict, applicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	return &app, nil
}

// DecisionRecipient loads the applicant contact data used to announce a decision.
func (s *ApplicationStore) DecisionRecipient(ctx context.Context, applicationID string) (*models.DecisionRecipient, error) {
	var r models.DecisionRecipient
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, u.first_name, u.email, u.phone, j.title, c.name
		FROM applications a
		JOIN users u ON u.id = a.user_id
		JOIN jobs j ON j.id = a.job_id
		JOIN companies c ON c.id = j.company_id
		WHERE a.id = $1`, applicationID,
	).Scan(&r.ApplicationID, &r.FirstName, &r.Email, &r.Phone, &r.JobTitle, &r.CompanyName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, applicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("load decision recipient: %w", err)
	}
	return &r, nil
}
