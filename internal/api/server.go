// internal/api/server.go
package api

import (
	"context"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"job-portal/internal/common/auth"
	"job-portal/internal/common/errors"
	"job-portal/internal/common/logger"
	"job-portal/internal/models"
	analyzeresume "job-portal/internal/workers/ai/analyze-resume"
	applytojob "job-portal/internal/workers/application/apply-to-job"
	searchjobs "job-portal/internal/workers/data-access/search-jobs"
)

type UserStore interface {
	CreateSeeker(ctx context.Context, u *models.User, resumeURL string) error
	CreateEmployer(ctx context.Context, u *models.User, company *models.Company) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CompanyByUser(ctx context.Context, userID string) (*models.Company, error)
	SeekerProfile(ctx context.Context, userID string) (*models.SeekerProfile, error)
	Profile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateSeekerProfile(ctx context.Context, p models.SeekerProfile) error
	UpdateCompany(ctx context.Context, c models.Company) error
}

type JobStore interface {
	GetByID(ctx context.Context, id, viewerID string) (*models.Job, error)
	Create(ctx context.Context, companyID string, in models.JobInput) (string, error)
	Update(ctx context.Context, id string, in models.JobInput) error
	Delete(ctx context.Context, id string) error
	OwnerUserID(ctx context.Context, jobID string) (string, error)
	ListByEmployer(ctx context.Context, userID string) ([]models.EmployerJob, error)
}

type ApplicationStore interface {
	ListForApplicant(ctx context.Context, applicantID string) ([]models.MyApplication, error)
	ListApplicants(ctx context.Context, jobID string) ([]models.Applicant, error)
	ReviewTarget(ctx context.Context, applicationID string) (string, models.ApplicationStatus, error)
	UpdateReviewStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (*models.Application, error)
}

// JobSearcher lists postings and keeps the search index in step with writes.
type JobSearcher interface {
	Execute(ctx context.Context, input *searchjobs.Input) (*searchjobs.Output, error)
	IndexJob(ctx context.Context, job *models.Job) error
	RemoveJob(ctx context.Context, jobID string) error
}

type ApplyService interface {
	Execute(ctx context.Context, input *applytojob.Input) (*applytojob.Output, error)
}

type ResumeAnalyzer interface {
	Execute(ctx context.Context, input *analyzeresume.Input) (*analyzeresume.Output, error)
}

type ResumeUploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Deps wires the API to its stores and services. Resumes and Revocations
// may be nil: resume uploads are then refused and logout is a no-op.
type Deps struct {
	Users        UserStore
	Jobs         JobStore
	Applications ApplicationStore
	Search       JobSearcher
	Intake       ApplyService
	Analyzer     ResumeAnalyzer
	Resumes      ResumeUploader
	Tokens       *auth.TokenManager
	Passwords    *auth.PasswordHasher
	Revocations  Revoker
}

type Config struct {
	CORSOrigins    []string
	MaxUploadBytes int64
}

type Server struct {
	deps   Deps
	config Config
	logger logger.Logger
}

func NewServer(deps Deps, config Config, log logger.Logger) *Server {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 5 << 20
	}
	return &Server{
		deps:   deps,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Router builds the gin engine with every route under /api/v1.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.config.MaxUploadBytes
	r.Use(gin.Recovery(), s.requestLogger(), s.corsMiddleware(), errors.Handler(s.logger))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Job portal API is running")
	})

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.POST("/signup", s.signup)
	authRoutes.POST("/login", s.login)
	authRoutes.POST("/logout", s.protect(), s.logout)

	jobs := v1.Group("/jobs")
	jobs.GET("", s.listJobs)
	jobs.GET("/:id", s.checkUser(), s.getJob)
	jobs.POST("", s.protect(), restrictTo(models.RoleEmployer), s.createJob)
	jobs.PATCH("/:id", s.protect(), restrictTo(models.RoleEmployer), s.updateJob)
	jobs.DELETE("/:id", s.protect(), restrictTo(models.RoleEmployer), s.deleteJob)
	jobs.POST("/:id/apply", s.protect(), restrictTo(models.RoleJobSeeker), s.applyToJob)

	v1.GET("/applications", s.protect(), restrictTo(models.RoleJobSeeker), s.myApplications)

	employer := v1.Group("/employer", s.protect(), restrictTo(models.RoleEmployer))
	employer.GET("/jobs", s.employerJobs)
	employer.PUT("/jobs/:jobId", s.updateJob)
	employer.DELETE("/jobs/:jobId", s.deleteJob)
	employer.GET("/jobs/:jobId/applicants", s.jobApplicants)
	employer.PATCH("/applications/:applicationId/status", s.updateApplicationStatus)

	profiles := v1.Group("/profiles", s.protect())
	profiles.GET("/me", s.getProfile)
	profiles.PUT("/me", s.updateProfile)

	v1.POST("/ai/analyze-resume", s.protect(), restrictTo(models.RoleJobSeeker), s.analyzeResume)

	return r
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	if len(s.config.CORSOrigins) == 0 || slices.Contains(s.config.CORSOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.config.CORSOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
