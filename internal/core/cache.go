// Package core defines the ports of the report pipeline and the business services that only need those ports.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/target/quizreport/internal/domain/model"
)

// CacheRepository defines the interface for caching operations.
// The data layer provides the Redis implementation.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// SetIfNotExists atomically sets a key only if it doesn't already exist.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// DefaultContentCacheTTL bounds how stale a published spec may be.
const DefaultContentCacheTTL = 60 * time.Second

// ContentCacheServiceOptions bundles dependencies for NewContentCacheService.
type ContentCacheServiceOptions struct {
	Content ContentRepository
	// Cache is optional; without it every lookup reads the database.
	Cache  CacheRepository
	TTL    time.Duration
	Logger *slog.Logger
	Clock  func() time.Time
}

// ContentCacheService resolves published tests through a TTL cache.
// Each tenant has a generation stored in the cache; bumping it orphans every
// entry written under the previous generation.
type ContentCacheService struct {
	content ContentRepository
	cache   CacheRepository
	ttl     time.Duration
	logger  *slog.Logger
	clock   func() time.Time
	group   singleflight.Group
}

// NewContentCacheService creates a ContentCacheService.
func NewContentCacheService(opts ContentCacheServiceOptions) *ContentCacheService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultContentCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ContentCacheService{
		content: opts.Content,
		cache:   opts.Cache,
		ttl:     ttl,
		logger:  logger.With("component", "content_cache"),
		clock:   clock,
	}
}

// ListTenantCatalog returns the tenant's enabled, published tests ordered by slug.
func (s *ContentCacheService) ListTenantCatalog(ctx context.Context, tenantID string) ([]model.TenantCatalogEntry, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, nil
	}
	gen := s.generation(ctx, tenantID)
	key := fmt.Sprintf("tenant_catalog:%s:%s", tenantID, gen)

	var entries []model.TenantCatalogEntry
	if s.readCached(ctx, key, &entries) {
		return entries, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		list, err := s.content.ListTenantCatalog(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		s.writeCached(ctx, key, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	entries, _ = v.([]model.TenantCatalogEntry)
	return entries, nil
}

// LoadPublishedTestByID finds testID in the tenant catalog and loads its published spec
// in the best available locale. It returns nil, nil when nothing is published.
func (s *ContentCacheService) LoadPublishedTestByID(
	ctx context.Context,
	tenantID, testID, locale string,
) (*model.PublishedTest, error) {
	testID = strings.TrimSpace(testID)
	if testID == "" {
		return nil, nil
	}
	catalog, err := s.ListTenantCatalog(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list tenant catalog: %w", err)
	}
	for _, entry := range catalog {
		if entry.TestID == testID {
			return s.LoadPublishedTestBySlug(ctx, tenantID, entry.Slug, locale)
		}
	}
	return nil, nil
}

// LoadPublishedTestBySlug loads a tenant's published spec by slug. It returns nil, nil when
// the tenant has no enabled, published test with that slug.
func (s *ContentCacheService) LoadPublishedTestBySlug(
	ctx context.Context,
	tenantID, slug, locale string,
) (*model.PublishedTest, error) {
	tenantID = strings.TrimSpace(tenantID)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if tenantID == "" || slug == "" {
		return nil, nil
	}
	gen := s.generation(ctx, tenantID)
	key := fmt.Sprintf("published_test:%s:%s:%s:%s", tenantID, gen, slug, strings.ToLower(strings.TrimSpace(locale)))

	var cached model.PublishedTest
	if s.readCached(ctx, key, &cached) {
		return &cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		row, err := s.content.GetPublishedBySlug(ctx, tenantID, slug)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return (*model.PublishedTest)(nil), nil
		}
		resolved, err := ResolveLocale(row.Spec, locale, row.Entry.DefaultLocale)
		if err != nil {
			return nil, err
		}
		defaultLocale, ok := model.NormalizeLocaleTag(row.Entry.DefaultLocale)
		if !ok {
			defaultLocale = resolved
		}
		pt := &model.PublishedTest{
			TenantID:      row.Entry.TenantID,
			TestID:        row.Spec.TestID,
			Slug:          row.Spec.Slug,
			DefaultLocale: defaultLocale,
			Locale:        resolved,
			Spec:          row.Spec,
		}
		s.writeCached(ctx, key, pt)
		return pt, nil
	})
	if err != nil {
		return nil, err
	}
	pt, _ := v.(*model.PublishedTest)
	return pt, nil
}

// InvalidateTenant orphans every cached entry for the tenant.
func (s *ContentCacheService) InvalidateTenant(ctx context.Context, tenantID string) (string, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", fmt.Errorf("tenant id is required")
	}
	next := strconv.FormatInt(s.clock().UnixNano(), 36)
	if s.cache == nil {
		return next, nil
	}
	if err := s.cache.Set(ctx, generationKey(tenantID), []byte(next), 0); err != nil {
		return "", fmt.Errorf("bump content generation: %w", err)
	}
	s.logger.InfoContext(ctx, "content cache invalidated", "tenant_id", tenantID, "generation", next)
	return next, nil
}

// ResolveLocale picks the locale to present: the requested tag, then the test default,
// then English, then the first locale the spec defines.
func ResolveLocale(spec *model.TestSpec, requested, defaultLocale string) (string, error) {
	for _, candidate := range []string{requested, defaultLocale, model.LocaleEN} {
		if tag, ok := model.NormalizeLocaleTag(candidate); ok && spec.HasLocale(tag) {
			return tag, nil
		}
	}
	for _, tag := range spec.LocaleTags() {
		if canonical, ok := model.NormalizeLocaleTag(tag); ok {
			return canonical, nil
		}
	}
	return "", fmt.Errorf("test %s does not define any supported locale", spec.TestID)
}

func generationKey(tenantID string) string {
	return "content_gen:" + tenantID
}

func (s *ContentCacheService) generation(ctx context.Context, tenantID string) string {
	if s.cache == nil {
		return "0"
	}
	b, err := s.cache.Get(ctx, generationKey(tenantID))
	if err != nil {
		s.logger.WarnContext(ctx, "content generation lookup failed", "tenant_id", tenantID, "error", err)
		return "0"
	}
	if len(b) == 0 {
		return "0"
	}
	return string(b)
}

func (s *ContentCacheService) readCached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	b, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "content cache read failed", "key", key, "error", err)
		return false
	}
	if len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.logger.WarnContext(ctx, "content cache entry unreadable", "key", key, "error", err)
		return false
	}
	return true
}

func (s *ContentCacheService) writeCached(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "content cache write failed", "key", key, "error", err)
	}
}
