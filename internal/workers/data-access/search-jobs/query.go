// internal/workers/data-access/search-jobs/query.go
package searchjobs

import (
	"strings"

	"job-portal/internal/models"
)

// BuildSearchBody translates a normalized job filter into an Elasticsearch query body.
func BuildSearchBody(f models.JobFilter) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"isActive": true}},
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q,
				"fields": []string{"title^3", "description", "companyName^2"},
				"type":   "best_fields",
			},
		})
	}

	if loc := strings.TrimSpace(f.Location); loc != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"match": map[string]interface{}{
				"location": map[string]interface{}{"query": loc, "operator": "and"},
			},
		})
	}

	if f.Type != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"type": f.Type},
		})
	}

	if f.MinSalary > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"salaryMin": map[string]interface{}{"gte": f.MinSalary},
			},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
		"from":             f.Offset(),
		"size":             f.Limit,
		"track_total_hits": true,
	}

	// relevance first when searching, newest first when browsing
	if strings.TrimSpace(f.Query) == "" {
		body["sort"] = []map[string]interface{}{{"postedAt": "desc"}}
	} else {
		body["sort"] = []interface{}{"_score", map[string]interface{}{"postedAt": "desc"}}
	}

	return body
}
