package urlchecker

// Method tokens recorded in StatusResult.MethodUsed. The first five name the
// probe strategy that produced the result; the last two mark results that
// never came from a successful strategy.
const (
	MethodHead           = "HEAD"
	MethodGet            = "GET"
	MethodWithWWW        = "with-www"
	MethodWithoutWWW     = "without-www"
	MethodSwitchProtocol = "switch-protocol"
	MethodValidation     = "validation"
	MethodFailed         = "failed"
)

// Status texts for results with no HTTP reason phrase.
const (
	StatusTextInvalidURL  = "Invalid URL"
	StatusTextUnreachable = "Unreachable"
)

// StatusResult is the terminal outcome for one input URL. Exactly one result
// is produced per input; probe failures are encoded here, never raised.
type StatusResult struct {
	OriginalURL    string `json:"originalUrl"`
	FinalURL       string `json:"finalUrl"`
	Status         int    `json:"status"` // HTTP status code, 0 when no response was obtained
	StatusText     string `json:"statusText"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
	Error          string `json:"error,omitempty"` // non-empty iff Status == 0 or validation failed
	MethodUsed     string `json:"methodUsed,omitempty"`
}

// StatusGroup buckets results for reporting and filtering.
type StatusGroup string

const (
	GroupLive        StatusGroup = "live"
	GroupRedirect    StatusGroup = "redirect"
	GroupClientError StatusGroup = "clientError"
	GroupServerError StatusGroup = "serverError"
)

// Summary holds the headline numbers for a finished run.
type Summary struct {
	Total             int     `json:"total"`
	Live              int     `json:"live"`
	Redirect          int     `json:"redirect"`
	ClientError       int     `json:"clientError"`
	ServerError       int     `json:"serverError"`
	AvgResponseTimeMs int64   `json:"avgResponseTimeMs"`
	SuccessRate       float64 `json:"successRate"`
}

// BatchProgress describes scheduler state after a batch has joined.
type BatchProgress struct {
	Done    int
	Total   int
	Percent int
	Batch   []StatusResult
}

// ProgressFunc receives scheduler state after each batch joins. It is called
// from the scheduler goroutine, one batch at a time.
type ProgressFunc func(BatchProgress)
