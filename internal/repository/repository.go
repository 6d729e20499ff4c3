// internal/repository/repository.go
package repository

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("NOT_FOUND")
	ErrConflict = errors.New("CONFLICT")
)

func jobDescriptionKey(jobID string) string {
	return "job:description:" + jobID
}

// composeJobDescription flattens the descriptive columns of a job into the text sent to the scorer.
func composeJobDescription(title, description, responsibilities, qualifications string) string {
	sections := []struct{ label, text string }{
		{"Title", title},
		{"Description", description},
		{"Responsibilities", responsibilities},
		{"Qualifications", qualifications},
	}

	var b strings.Builder
	for _, s := range sections {
		text := strings.TrimSpace(s.text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.label)
		b.WriteString(": ")
		b.WriteString(text)
	}
	return b.String()
}
