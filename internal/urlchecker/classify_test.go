package urlchecker

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		result StatusResult
		want   StatusGroup
	}{
		{"ok", StatusResult{Status: 200}, GroupLive},
		{"created", StatusResult{Status: 201}, GroupLive},
		{"moved", StatusResult{Status: 301}, GroupRedirect},
		{"not found", StatusResult{Status: 404}, GroupClientError},
		{"server error", StatusResult{Status: 503}, GroupServerError},
		{"informational", StatusResult{Status: 101}, GroupServerError},
		{"unreachable", StatusResult{Status: 0, Error: "all probe attempts failed"}, GroupServerError},
		{"invalid url", StatusResult{Status: 400, Error: "Invalid URL format"}, GroupServerError},
		{"plain bad request", StatusResult{Status: 400}, GroupClientError},
		{"zero status without error", StatusResult{Status: 0}, GroupServerError},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tc.result); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
