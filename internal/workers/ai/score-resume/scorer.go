// internal/workers/ai/score-resume/scorer.go
package scoreresume

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"job-portal/internal/common/gemini"
	httpclient "job-portal/internal/common/http"
	"job-portal/internal/common/logger"
	"job-portal/internal/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TaskType = "score-resume"

var ErrScoringFailed = errors.New("SCORING_FAILED")

//go:embed prompt.md
var promptTemplate string

type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, document []byte, mimeType string) (string, error)
}

type DocumentFetcher interface {
	Fetch(ctx context.Context, ref string) (*httpclient.Document, error)
}

// Scorer rates a resume against a job description with an LLM.
type Scorer struct {
	config    *Config
	generator Generator
	fetcher   DocumentFetcher
	logger    logger.Logger
}

func NewScorer(config *Config, generator Generator, fetcher DocumentFetcher, log logger.Logger) *Scorer {
	return &Scorer{
		config:    config,
		generator: generator,
		fetcher:   fetcher,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Score returns a value in [0,100]. Every failure, including a panic in the
// client libraries, is returned as an error wrapping ErrScoringFailed.
func (s *Scorer) Score(ctx context.Context, resumeRef, jobDescription string) (score float64, err error) {
	ctx, span := otel.Tracer("job-portal/scoring").Start(ctx, "scoring.score")
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrScoringFailed, r)
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Float64("score", score))
		}
		span.End()
		metrics.ScoringDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(resumeRef) == "" {
		return 0, fmt.Errorf("%w: resume reference is empty", ErrScoringFailed)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return 0, fmt.Errorf("%w: job description is empty", ErrScoringFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	doc, err := s.fetcher.Fetch(ctx, resumeRef)
	if err != nil {
		return 0, fmt.Errorf("%w: fetch resume: %v", ErrScoringFailed, err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{JOB_DESCRIPTION}}", jobDescription)
	raw, err := s.generator.GenerateJSON(ctx, prompt, doc.Data, doc.MIMEType)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}

	score, err = parseScore(raw)
	if err != nil {
		s.logger.Debug("Unparseable scoring response", map[string]interface{}{"response": raw})
		return 0, err
	}
	return score, nil
}

// Execute scores the input and reports the score as workflow output.
func (s *Scorer) Execute(ctx context.Context, input *Input) (*Output, error) {
	score, err := s.Score(ctx, input.ResumeRef, input.JobDescription)
	if err != nil {
		return nil, err
	}
	return &Output{Score: score}, nil
}

func parseScore(raw string) (float64, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(gemini.ExtractJSON(raw)), &payload); err != nil {
		return 0, fmt.Errorf("%w: response is not JSON: %v", ErrScoringFailed, err)
	}

	value, ok := payload["score"]
	if !ok {
		return 0, fmt.Errorf("%w: response has no score", ErrScoringFailed)
	}

	score := coerceFloat(value)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: score %v is not a number", ErrScoringFailed, value)
	}

	return math.Max(0, math.Min(100, score)), nil
}

func coerceFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
