// internal/workers/application/sweep-stale-screenings/models.go
package sweepstalescreenings

type Output struct {
	Found    int `json:"found"`
	Requeued int `json:"requeued"`
	Rejected int `json:"rejected"`
	Failed   int `json:"failed"`
}
