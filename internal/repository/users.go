// internal/repository/users.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"job-portal/internal/common/database"
	"job-portal/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func insertUser(ctx context.Context, tx *sql.Tx, u *models.User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.FirstName, u.LastName, strings.ToLower(u.Email), u.Phone, u.PasswordHash, string(u.Role),
	)
	return err
}

// CreateSeeker stores a job seeker together with an empty profile holding the resume location.
func (r *UserRepository) CreateSeeker(ctx context.Context, u *models.User, resumeURL string) error {
	u.ID = uuid.New().String()
	u.Role = models.RoleJobSeeker

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO job_seeker_profiles (user_id, resume_url) VALUES ($1, $2)`,
			u.ID, resumeURL,
		)
		return err
	})
	return wrapUserInsert(err, u.Email)
}

// CreateEmployer stores an employer and their company.
func (r *UserRepository) CreateEmployer(ctx context.Context, u *models.User, company *models.Company) error {
	u.ID = uuid.New().String()
	u.Role = models.RoleEmployer
	company.ID = uuid.New().String()
	company.UserID = u.ID

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO companies (id, user_id, name, description, website)
			VALUES ($1, $2, $3, $4, $5)`,
			company.ID, company.UserID, company.Name, company.Description, company.Website,
		)
		return err
	})
	return wrapUserInsert(err, u.Email)
}

func wrapUserInsert(err error, email string) error {
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: email %s already registered", ErrConflict, email)
	}
	return fmt.Errorf("insert user: %w", err)
}

const userColumns = `id, first_name, last_name, email, phone, password_hash, role, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// CompanyByUser returns the company owned by an employer.
func (r *UserRepository) CompanyByUser(ctx context.Context, userID string) (*models.Company, error) {
	var c models.Company
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, website
		FROM companies WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Website)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: company for user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	return &c, nil
}

func (r *UserRepository) SeekerProfile(ctx context.Context, userID string) (*models.SeekerProfile, error) {
	var p models.SeekerProfile
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, headline, summary, skills, resume_url
		FROM job_seeker_profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Headline, &p.Summary, pq.Array(&p.Skills), &p.ResumeURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile for user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}

// Profile assembles the role-specific profile of a user.
func (r *UserRepository) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	u, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{User: u}
	switch u.Role {
	case models.RoleJobSeeker:
		profile.Seeker, err = r.SeekerProfile(ctx, userID)
	case models.RoleEmployer:
		profile.Company, err = r.CompanyByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateSeekerProfile overwrites the editable profile fields. An empty
// ResumeURL keeps the stored resume.
func (r *UserRepository) UpdateSeekerProfile(ctx context.Context, p models.SeekerProfile) error {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE job_seeker_profiles SET
			headline = $2,
			summary = $3,
			skills = $4,
			resume_url = COALESCE(NULLIF($5, ''), resume_url),
			updated_at = now()
		WHERE user_id = $1`,
		p.UserID, p.Headline, p.Summary, pq.Array(skills), p.ResumeURL,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: profile for user %s", ErrNotFound, p.UserID)
	}
	return nil
}

func (r *UserRepository) UpdateCompany(ctx context.Context, c models.Company) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE companies SET name = $2, description = $3, website = $4
		WHERE user_id = $1`,
		c.UserID, c.Name, c.Description, c.Website,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: company for user %s", ErrNotFound, c.UserID)
	}
	return nil
}
