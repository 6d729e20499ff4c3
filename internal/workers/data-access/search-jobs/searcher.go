// internal/workers/data-access/search-jobs/searcher.go
package searchjobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"job-portal/internal/common/logger"
	"job-portal/internal/common/metrics"
	"job-portal/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const TaskType = "search-jobs"

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrIndexingFailed    = errors.New("INDEXING_FAILED")
)

// JobLister is the relational fallback used when the index is unavailable.
type JobLister interface {
	List(ctx context.Context, f models.JobFilter) ([]models.JobSummary, int, error)
}

// Searcher answers job searches from Elasticsearch and falls back to
// Postgres full-text search when the index is disabled or failing.
type Searcher struct {
	config *Config
	es     *elasticsearch.Client
	jobs   JobLister
	logger logger.Logger
}

// NewSearcher builds a searcher. es may be nil, which keeps every search on Postgres.
func NewSearcher(config *Config, es *elasticsearch.Client, jobs JobLister, log logger.Logger) *Searcher {
	return &Searcher{
		config: config,
		es:     es,
		jobs:   jobs,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (s *Searcher) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	return s.execute(ctx, input)
}

func (s *Searcher) execute(ctx context.Context, input *Input) (*Output, error) {
	filter := input.Filter()
	filter.Normalize()

	if s.es != nil {
		jobs, total, err := s.searchIndex(ctx, filter)
		if err == nil {
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			return &Output{Jobs: jobs, Pagination: models.NewPagination(total, filter), Source: SourceElasticsearch}, nil
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "SEARCH_QUERY_FAILED").Inc()
		s.logger.Warn("index search failed, falling back to postgres", map[string]interface{}{"error": err})
	}

	jobs, total, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return &Output{Jobs: jobs, Pagination: models.NewPagination(total, filter), Source: SourcePostgres}, nil
}

func (s *Searcher) searchIndex(ctx context.Context, f models.JobFilter) ([]models.JobSummary, int, error) {
	body, err := json.Marshal(BuildSearchBody(f))
	if err != nil {
		return nil, 0, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.config.Index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search %s: %s", s.config.Index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	jobs := make([]models.JobSummary, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		jobs = append(jobs, models.JobSummary{
			ID:          hit.ID,
			Title:       doc.Title,
			Location:    doc.Location,
			Type:        models.JobType(doc.Type),
			PostedAt:    doc.PostedAt,
			SalaryMin:   doc.SalaryMin,
			SalaryMax:   doc.SalaryMax,
			CompanyName: doc.CompanyName,
		})
	}

	s.logger.Debug("index search completed", map[string]interface{}{
		"took":  parsed.Took,
		"total": parsed.Hits.Total.Value,
	})
	return jobs, int(parsed.Hits.Total.Value), nil
}

// IndexJob writes or replaces the posting's search document.
func (s *Searcher) IndexJob(ctx context.Context, job *models.Job) error {
	if s.es == nil {
		return nil
	}

	body, err := json.Marshal(newJobDocument(job))
	if err != nil {
		return fmt.Errorf("%w: encode job %s: %v", ErrIndexingFailed, job.ID, err)
	}

	res, err := s.es.Index(
		s.config.Index,
		bytes.NewReader(body),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(job.ID),
	)
	if err != nil {
		return fmt.Errorf("%w: job %s: %v", ErrIndexingFailed, job.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: job %s: %s", ErrIndexingFailed, job.ID, res.Status())
	}
	return nil
}

// RemoveJob deletes the posting's search document. A missing document is not an error.
func (s *Searcher) RemoveJob(ctx context.Context, jobID string) error {
	if s.es == nil {
		return nil
	}

	res, err := s.es.Delete(s.config.Index, jobID, s.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: delete job %s: %v", ErrIndexingFailed, jobID, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: delete job %s: %s", ErrIndexingFailed, jobID, res.Status())
	}
	return nil
}
