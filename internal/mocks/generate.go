// Package mocks provides gomock implementations of the core ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	jobs := mocks.NewMockReportJobRepository(ctrl)
//	jobs.EXPECT().ClaimQueued(gomock.Any(), 5).Return(claimed, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=report_job_repository_mock.go github.com/target/quizreport/internal/core ReportJobRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=report_artifact_repository_mock.go github.com/target/quizreport/internal/core ReportArtifactRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=attempt_summary_repository_mock.go github.com/target/quizreport/internal/core AttemptSummaryRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=content_repository_mock.go github.com/target/quizreport/internal/core ContentRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=published_test_provider_mock.go github.com/target/quizreport/internal/core PublishedTestProvider
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=report_generator_mock.go github.com/target/quizreport/internal/core ReportGenerator
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=artifact_mirror_mock.go github.com/target/quizreport/internal/core ArtifactMirror
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/quizreport/internal/core CacheRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=reaper_repository_mock.go github.com/target/quizreport/internal/core ReaperRepository
