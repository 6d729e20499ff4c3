// internal/workers/ai/analyze-resume/models.go
package analyzeresume

// Input carries either the resume text or a reference to the stored document.
type Input struct {
	ResumeText string `json:"resumeText"`
	ResumeRef  string `json:"resumeRef"`
}

type Output struct {
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}
