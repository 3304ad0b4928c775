// File: backend/internal/urlchecker/stats.go
package urlchecker

import "math"

// Summarize aggregates a finished run. The average response time only counts
// results without an error; failed probes ran into timeouts and would drown
// out the signal.
func Summarize(results []StatusResult) Summary {
	summary := Summary{Total: len(results)}

	var latencySum int64
	var latencyCount int
	for _, r := range results {
		switch Classify(r) {
		case GroupLive:
			summary.Live++
		case GroupRedirect:
			summary.Redirect++
		case GroupClientError:
			summary.ClientError++
		default:
			summary.ServerError++
		}
		if r.Error == "" {
			latencySum += r.ResponseTimeMs
			latencyCount++
		}
	}

	if latencyCount > 0 {
		summary.AvgResponseTimeMs = int64(math.Round(float64(latencySum) / float64(latencyCount)))
	}
	if summary.Total > 0 {
		summary.SuccessRate = float64(summary.Live) / float64(summary.Total)
	}
	return summary
}
