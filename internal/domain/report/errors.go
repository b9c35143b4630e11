package report

import "errors"

// Fixed failure messages recorded on jobs.
var (
	ErrGeneratorNotConfigured = errors.New("openai not configured")
	ErrSummaryMissing         = errors.New("attempt summary missing")
	ErrPublishedTestMissing   = errors.New("published test missing")
)
