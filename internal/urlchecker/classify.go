// File: backend/internal/urlchecker/classify.go
package urlchecker

// Classify buckets a result into its status group. Results carrying an error
// never made it to a usable HTTP answer, so they land in serverError no
// matter what status code they carry.
func Classify(r StatusResult) StatusGroup {
	if r.Error != "" || r.Status == 0 {
		return GroupServerError
	}
	switch {
	case r.Status >= 200 && r.Status < 300:
		return GroupLive
	case r.Status >= 300 && r.Status < 400:
		return GroupRedirect
	case r.Status >= 400 && r.Status < 500:
		return GroupClientError
	default:
		return GroupServerError
	}
}
