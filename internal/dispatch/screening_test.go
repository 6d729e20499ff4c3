// internal/dispatch/screening_test.go
package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "job-portal/internal/common/http"
	"job-portal/internal/common/logger"
	"job-portal/internal/models"
	scoreresume "job-portal/internal/workers/ai/score-resume"
	applytojob "job-portal/internal/workers/application/apply-to-job"
	screenapplication "job-portal/internal/workers/application/screen-application"
)

// ==========================
// Pool + dispatcher + scorer
// ==========================

type memoryStore struct {
	mu       sync.Mutex
	jobs     map[string]string
	resumes  map[string]string
	statuses map[string]models.ApplicationStatus
}

func (m *memoryStore) GetJobDescription(_ context.Context, jobID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.jobs[jobID]
	if !ok {
		return "", fmt.Errorf("job %s not found", jobID)
	}
	return text, nil
}

func (m *memoryStore) GetResumeReference(_ context.Context, applicantID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, ok := m.resumes[applicantID]
	if !ok {
		return "", fmt.Errorf("no resume for %s", applicantID)
	}
	return ref, nil
}

func (m *memoryStore) SetStatus(_ context.Context, applicationID string, status models.ApplicationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statuses[applicationID] != models.StatusScreening {
		return false, nil
	}
	m.statuses[applicationID] = status
	return true, nil
}

func (m *memoryStore) status(applicationID string) models.ApplicationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[applicationID]
}

type fixedGenerator struct {
	response string
}

func (g fixedGenerator) GenerateJSON(context.Context, string, []byte, string) (string, error) {
	return g.response, nil
}

func TestScreening_EndToEnd(t *testing.T) {
	resumes := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "Eight years of Go, Postgres and Kubernetes.")
	}))
	defer resumes.Close()

	gone := httptest.NewServer(http.NotFoundHandler())
	unreachable := gone.URL + "/resume.pdf"
	gone.Close()

	tests := []struct {
		name      string
		resumeURL string
		response  string
		want      models.ApplicationStatus
	}{
		{"strong match is applied", resumes.URL + "/resume.txt", `{"score": 90}`, models.StatusApplied},
		{"weak match is rejected", resumes.URL + "/resume.txt", "```json\n{\"score\": 40}\n```", models.StatusRejected},
		{"network error is rejected", unreachable, `{"score": 99}`, models.StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewTestLogger(t)
			store := &memoryStore{
				jobs:     map[string]string{"job-1": "Title: Senior Go engineer\n\nDescription: Build services"},
				resumes:  map[string]string{"user-1": tt.resumeURL},
				statuses: map[string]models.ApplicationStatus{"app-1": models.StatusScreening},
			}

			fetcher := httpclient.NewClient(2*time.Second, 1<<20, nil)
			scorer := scoreresume.NewScorer(&scoreresume.Config{Timeout: 5 * time.Second}, fixedGenerator{tt.response}, fetcher, log)
			dispatcher := screenapplication.NewDispatcher(&screenapplication.Config{
				RunTimeout:   5 * time.Second,
				WriteTimeout: time.Second,
			}, store, scorer, nil, nil, log)

			source := &fakeSource{}
			source.add(item(1))

			pool := NewPool(source, dispatcher, 1, 10*time.Millisecond, log)
			require.NoError(t, pool.Start(context.Background()))

			assert.Eventually(t, func() bool {
				done, _ := source.snapshot()
				return len(done) == 1
			}, 5*time.Second, 10*time.Millisecond)
			require.NoError(t, pool.Stop(context.Background()))

			assert.Equal(t, tt.want, store.status("app-1"))
		})
	}
}

// ==========================
// Intake + pool
// ==========================

// outboxStore keeps applications and their work items in memory.
type outboxStore struct {
	*memoryStore
	*fakeSource
	created int
}

func (o *outboxStore) HasApplied(context.Context, string, string) (bool, error) {
	return false, nil
}

func (o *outboxStore) Create(_ context.Context, applicantID, jobID string, status models.ApplicationStatus) (string, error) {
	o.memoryStore.mu.Lock()
	o.created++
	id := fmt.Sprintf("app-%d", o.created)
	o.statuses[id] = status
	o.memoryStore.mu.Unlock()

	o.add(models.WorkItem{
		ID:            "wi-" + id,
		ApplicationID: id,
		JobID:         jobID,
		ApplicantID:   applicantID,
		State:         models.WorkItemPending,
	})
	return id, nil
}

type jobLookup map[string]*models.Job

func (j jobLookup) GetByID(_ context.Context, id, _ string) (*models.Job, error) {
	job, ok := j[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	cp := *job
	return &cp, nil
}

// gatedScorer blocks every call until release is closed.
type gatedScorer struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedScorer) Score(ctx context.Context, _, _ string) (float64, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
		return 90, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func TestIntake_ReturnsScreeningWhileRunIsInFlight(t *testing.T) {
	log := logger.NewTestLogger(t)
	store := &outboxStore{
		memoryStore: &memoryStore{
			jobs:     map[string]string{"job-1": "Title: Senior Go engineer"},
			resumes:  map[string]string{"user-1": "https://resumes.example.com/ada.pdf"},
			statuses: map[string]models.ApplicationStatus{},
		},
		fakeSource: &fakeSource{},
	}
	scorer := &gatedScorer{started: make(chan struct{}, 1), release: make(chan struct{})}

	dispatcher := screenapplication.NewDispatcher(&screenapplication.Config{
		RunTimeout:   10 * time.Second,
		WriteTimeout: time.Second,
	}, store, scorer, nil, nil, log)

	// a long poll interval leaves Wake as the only way the run starts promptly
	pool := NewPool(store, dispatcher, 1, time.Hour, log)
	require.NoError(t, pool.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, pool.Stop(ctx))
	}()

	intake := applytojob.NewIntake(&applytojob.Config{Timeout: time.Second}, store,
		jobLookup{"job-1": {ID: "job-1", Title: "Senior Go engineer", IsActive: true}}, pool, log)

	out, err := intake.Execute(context.Background(), &applytojob.Input{ApplicantID: "user-1", JobID: "job-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScreening, out.Job.ApplicationStatus)
	assert.True(t, out.Job.UserHasApplied)
	appID := out.Job.ApplicationID

	select {
	case <-scorer.started:
	case <-time.After(5 * time.Second):
		t.Fatal("screening run was not started by the intake wake-up")
	}
	assert.Equal(t, models.StatusScreening, store.status(appID))

	close(scorer.release)
	assert.Eventually(t, func() bool {
		return store.status(appID) == models.StatusApplied
	}, 5*time.Second, 10*time.Millisecond)
}
