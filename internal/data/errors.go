package data

import apperrors "github.com/target/quizreport/internal/errors"

// Shared sentinel errors for data-layer repositories. They carry an application
// error code so services and handlers can branch on apperrors.IsNotFound and
// apperrors.IsConflict without importing this package.
var (
	// Report job repository sentinels.
	ErrReportJobNotFound  = apperrors.NotFoundf("report job not found")
	ErrReportJobNotFailed = apperrors.Conflictf("report job is not in failed state")

	// Artifact and summary sentinels.
	ErrReportArtifactNotFound = apperrors.NotFoundf("report artifact not found")
	ErrAttemptSummaryNotFound = apperrors.NotFoundf("attempt summary not found")

	// Content sentinels.
	ErrTestNotFound        = apperrors.NotFoundf("test not found")
	ErrTestVersionNotFound = apperrors.NotFoundf("test version not found")
)
