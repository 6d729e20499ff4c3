// internal/repository/jobs.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"job-portal/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type JobRepository struct {
	db    *sql.DB
	redis *redis.Client
}

// NewJobRepository builds the job store. rdb may be nil.
func NewJobRepository(db *sql.DB, rdb *redis.Client) *JobRepository {
	return &JobRepository{db: db, redis: rdb}
}

// BuildSearchQuery turns free text into a to_tsquery expression: terms are
// ANDed and the last one matches as a prefix.
func BuildSearchQuery(q string) string {
	var terms []string
	for _, field := range strings.Fields(q) {
		term := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, field)
		if term != "" {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return ""
	}
	terms[len(terms)-1] += ":*"
	return strings.Join(terms, " & ")
}

func buildListFilter(f models.JobFilter) (string, []interface{}) {
	conditions := []string{"j.is_active = TRUE"}
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if tsq := BuildSearchQuery(f.Query); tsq != "" {
		add("j.tsv @@ to_tsquery('english', $%d)", tsq)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		add("j.location ILIKE '%%' || $%d || '%%'", loc)
	}
	if f.Type != "" {
		add("j.type = $%d", f.Type)
	}
	if f.MinSalary > 0 {
		add("j.salary_min >= $%d", f.MinSalary)
	}

	return strings.Join(conditions, " AND "), args
}

// List returns one page of active jobs matching the filter and the total match count.
func (r *JobRepository) List(ctx context.Context, f models.JobFilter) ([]models.JobSummary, int, error) {
	f.Normalize()
	where, args := buildListFilter(f)
	args = append(args, f.Limit, f.Offset())

	query := fmt.Sprintf(`
		SELECT j.id, j.title, j.location, j.type, j.posted_at, j.salary_min, j.salary_max, c.name,
		       COUNT(*) OVER() AS total
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		WHERE %s
		ORDER BY j.posted_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.JobSummary{}
	total := 0
	for rows.Next() {
		var j models.JobSummary
		var salaryMin, salaryMax sql.NullInt64
		if err := rows.Scan(&j.ID, &j.Title, &j.Location, &j.Type, &j.PostedAt, &salaryMin, &salaryMax, &j.CompanyName, &total); err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		j.SalaryMin = nullIntPtr(salaryMin)
		j.SalaryMax = nullIntPtr(salaryMax)
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	// COUNT(*) OVER() is absent when the page is past the end.
	if len(jobs) == 0 && f.Page > 1 {
		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM jobs j WHERE %s`, where)
		if err := r.db.QueryRowContext(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count jobs: %w", err)
		}
	}

	return jobs, total, nil
}

// GetByID loads a job. When viewerID is set the viewer's application, if any, is attached.
func (r *JobRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Job, error) {
	var j models.Job
	var salaryMin, salaryMax sql.NullInt64
	var appID, appStatus sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT j.id, j.company_id, c.name, j.title, j.description, j.location, j.type,
		       j.salary_min, j.salary_max, j.responsibilities, j.qualifications, j.is_active, j.posted_at,
		       a.id, a.status
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		LEFT JOIN applications a ON a.job_id = j.id AND a.user_id::text = $2
		WHERE j.id = $1`, id, viewerID,
	).Scan(
		&j.ID, &j.CompanyID, &j.CompanyName, &j.Title, &j.Description, &j.Location, &j.Type,
		&salaryMin, &salaryMax, &j.Responsibilities, &j.Qualifications, &j.IsActive, &j.PostedAt,
		&appID, &appStatus,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	j.SalaryMin = nullIntPtr(salaryMin)
	j.SalaryMax = nullIntPtr(salaryMax)
	if appID.Valid {
		j.UserHasApplied = true
		j.ApplicationID = appID.String
		j.ApplicationStatus = models.ApplicationStatus(appStatus.String)
	}
	return &j, nil
}

// Create inserts a posting for the company and returns its id.
func (r *JobRepository) Create(ctx context.Context, companyID string, in models.JobInput) (string, error) {
	id := uuid.New().String()
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, company_id, title, description, location, type,
		                  salary_min, salary_max, responsibilities, qualifications, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, companyID, deref(in.Title), deref(in.Description), deref(in.Location), string(derefType(in.Type)),
		intArg(in.SalaryMin), intArg(in.SalaryMax), deref(in.Responsibilities), deref(in.Qualifications), isActive,
	)
	if err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

// Update applies the non-nil fields of in and drops the cached scoring text.
func (r *JobRepository) Update(ctx context.Context, id string, in models.JobInput) error {
	var jobType interface{}
	if in.Type != nil {
		jobType = string(*in.Type)
	}
	var isActive interface{}
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			location = COALESCE($4, location),
			type = COALESCE($5, type),
			salary_min = COALESCE($6, salary_min),
			salary_max = COALESCE($7, salary_max),
			responsibilities = COALESCE($8, responsibilities),
			qualifications = COALESCE($9, qualifications),
			is_active = COALESCE($10, is_active)
		WHERE id = $1`,
		id, strArg(in.Title), strArg(in.Description), strArg(in.Location), jobType,
		intArg(in.SalaryMin), intArg(in.SalaryMax), strArg(in.Responsibilities), strArg(in.Qualifications), isActive,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: job %s", ErrNotFound, id)
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: job %s", ErrNotFound, id)
	}

	r.invalidate(ctx, id)
	return nil
}

// OwnerUserID returns the id of the employer user that owns the job.
func (r *JobRepository) OwnerUserID(ctx context.Context, jobID string) (string, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx, `
		SELECT c.user_id FROM jobs j
		JOIN companies c ON c.id = j.company_id
		WHERE j.id = $1`, jobID,
	).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	if err != nil {
		return "", fmt.Errorf("load job owner: %w", err)
	}
	return ownerID, nil
}

// ListByEmployer returns every posting of the employer's company with its applicant count.
func (r *JobRepository) ListByEmployer(ctx context.Context, userID string) ([]models.EmployerJob, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT j.id, j.title, j.location, j.type, j.posted_at, j.salary_min, j.salary_max, c.name,
		       j.is_active, COUNT(a.id)
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		LEFT JOIN applications a ON a.job_id = j.id
		WHERE c.user_id = $1
		GROUP BY j.id, c.name
		ORDER BY j.posted_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list employer jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.EmployerJob{}
	for rows.Next() {
		var j models.EmployerJob
		var salaryMin, salaryMax sql.NullInt64
		if err := rows.Scan(&j.ID, &j.Title, &j.Location, &j.Type, &j.PostedAt, &salaryMin, &salaryMax,
			&j.CompanyName, &j.IsActive, &j.ApplicantCount); err != nil {
			return nil, fmt.Errorf("scan employer job: %w", err)
		}
		j.SalaryMin = nullIntPtr(salaryMin)
		j.SalaryMax = nullIntPtr(salaryMax)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) invalidate(ctx context.Context, jobID string) {
	if r.redis == nil {
		return
	}
	// best effort; the entry also expires on its own
	_ = r.redis.Del(ctx, jobDescriptionKey(jobID)).Err()
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefType(t *models.JobType) models.JobType {
	if t == nil {
		return models.JobTypeFullTime
	}
	return *t
}

func strArg(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func intArg(n *int) interface{} {
	if n == nil {
		return nil
	}
	return int64(*n)
}
