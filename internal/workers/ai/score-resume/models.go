// internal/workers/ai/score-resume/models.go
package scoreresume

type Input struct {
	ApplicationID  string `json:"applicationId"`
	ResumeRef      string `json:"resumeRef"`
	JobDescription string `json:"jobDescription"`
}

type Output struct {
	Score float64 `json:"score"`
}
