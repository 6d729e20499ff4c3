// internal/workers/ai/analyze-resume/analyzer.go
package analyzeresume

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"job-portal/internal/common/gemini"
	httpclient "job-portal/internal/common/http"
	"job-portal/internal/common/logger"
	"job-portal/internal/common/validation"
)

const TaskType = "analyze-resume"

var (
	ErrNoResume       = errors.New("RESUME_REQUIRED")
	ErrResumeTooLong  = errors.New("RESUME_TOO_LONG")
	ErrAnalysisFailed = errors.New("ANALYSIS_FAILED")
)

//go:embed prompt.md
var promptTemplate string

type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, document []byte, mimeType string) (string, error)
}

type DocumentFetcher interface {
	Fetch(ctx context.Context, ref string) (*httpclient.Document, error)
}

type Analyzer struct {
	config    *Config
	generator Generator
	fetcher   DocumentFetcher
	logger    logger.Logger
}

func NewAnalyzer(config *Config, generator Generator, fetcher DocumentFetcher, log logger.Logger) *Analyzer {
	return &Analyzer{
		config:    config,
		generator: generator,
		fetcher:   fetcher,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (a *Analyzer) Execute(ctx context.Context, input *Input) (*Output, error) {
	return a.execute(ctx, input)
}

func (a *Analyzer) execute(ctx context.Context, input *Input) (*Output, error) {
	text := strings.TrimSpace(input.ResumeText)
	if text == "" && strings.TrimSpace(input.ResumeRef) == "" {
		return nil, ErrNoResume
	}
	if len(text) > a.config.MaxTextLength {
		return nil, fmt.Errorf("%w: %d characters, limit %d", ErrResumeTooLong, len(text), a.config.MaxTextLength)
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var (
		doc      []byte
		mimeType string
		prompt   string
	)
	if text != "" {
		prompt = strings.ReplaceAll(promptTemplate, "{{RESUME_TEXT}}", "Resume:\n---\n"+text+"\n---")
	} else {
		fetched, err := a.fetcher.Fetch(ctx, input.ResumeRef)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch resume: %v", ErrAnalysisFailed, err)
		}
		doc, mimeType = fetched.Data, fetched.MIMEType
		prompt = strings.ReplaceAll(promptTemplate, "{{RESUME_TEXT}}", "The resume is attached.")
	}

	raw, err := a.generator.GenerateJSON(ctx, prompt, doc, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	body := []byte(gemini.ExtractJSON(raw))
	result, err := validation.ValidateJSON(validation.SchemaResumeAnalysis, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	if !result.Valid {
		a.logger.Warn("Analysis response failed schema validation", map[string]interface{}{
			"errors": result.GetErrorMessages(),
		})
		return nil, fmt.Errorf("%w: unexpected response shape: %s", ErrAnalysisFailed, strings.Join(result.GetErrorMessages(), "; "))
	}

	var out Output
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAnalysisFailed, err)
	}

	a.logger.Info("Resume analysed", map[string]interface{}{
		"strengths":   len(out.Strengths),
		"weaknesses":  len(out.Weaknesses),
		"suggestions": len(out.Suggestions),
	})
	return &out, nil
}
