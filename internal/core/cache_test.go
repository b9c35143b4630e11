package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/mocks"
)

func multiLocaleSpec(locales ...string) *model.TestSpec {
	spec := &model.TestSpec{TestID: "test-focus", Slug: "focus", Version: 1, Locales: map[string]model.LocaleStrings{}}
	for _, l := range locales {
		spec.Locales[l] = model.LocaleStrings{Title: l}
	}
	return spec
}

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		name      string
		locales   []string
		requested string
		def       string
		want      string
	}{
		{"requested case insensitive", []string{"en", "pt-BR"}, "PT-br", "en", "pt-BR"},
		{"falls back to default", []string{"en", "es"}, "fr", "es", "es"},
		{"falls back to english", []string{"en", "es"}, "fr", "pt-BR", "en"},
		{"falls back to first", []string{"pt-BR", "es"}, "fr", "fr", "es"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.ResolveLocale(multiLocaleSpec(tt.locales...), tt.requested, tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := core.ResolveLocale(multiLocaleSpec(), "en", "en")
	require.Error(t, err)
}

func newContentService(t *testing.T) (*core.ContentCacheService, *mocks.MockContentRepository, *mocks.MockCacheRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	content := mocks.NewMockContentRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)
	svc := core.NewContentCacheService(core.ContentCacheServiceOptions{
		Content: content,
		Cache:   cache,
		Clock:   func() time.Time { return time.Unix(0, 42) },
	})
	return svc, content, cache
}

func TestContentCacheService_LoadPublishedTestByID_Miss(t *testing.T) {
	svc, content, cache := newContentService(t)
	ctx := context.Background()
	spec := multiLocaleSpec("en", "es")

	cache.EXPECT().Get(gomock.Any(), "content_gen:tenant-a").Return(nil, nil).Times(2)
	cache.EXPECT().Get(gomock.Any(), "tenant_catalog:tenant-a:0").Return(nil, nil)
	content.EXPECT().ListTenantCatalog(gomock.Any(), "tenant-a").Return([]model.TenantCatalogEntry{
		{TenantID: "tenant-a", TestID: "test-other", Slug: "other"},
		{TenantID: "tenant-a", TestID: "test-focus", Slug: "focus", DefaultLocale: "en"},
	}, nil)
	cache.EXPECT().Set(gomock.Any(), "tenant_catalog:tenant-a:0", gomock.Any(), core.DefaultContentCacheTTL).Return(nil)

	cache.EXPECT().Get(gomock.Any(), "published_test:tenant-a:0:focus:es").Return(nil, nil)
	content.EXPECT().GetPublishedBySlug(gomock.Any(), "tenant-a", "focus").Return(&core.PublishedSpec{
		Entry: model.TenantCatalogEntry{TenantID: "tenant-a", TestID: "test-focus", Slug: "focus", DefaultLocale: "en"},
		Spec:  spec,
	}, nil)
	cache.EXPECT().Set(gomock.Any(), "published_test:tenant-a:0:focus:es", gomock.Any(), core.DefaultContentCacheTTL).Return(nil)

	pt, err := svc.LoadPublishedTestByID(ctx, "tenant-a", "test-focus", "ES")
	require.NoError(t, err)
	require.NotNil(t, pt)
	assert.Equal(t, "es", pt.Locale)
	assert.Equal(t, "en", pt.DefaultLocale)
	assert.Equal(t, "focus", pt.Slug)
}

func TestContentCacheService_LoadPublishedTestByID_CacheHit(t *testing.T) {
	svc, _, cache := newContentService(t)
	catalog, err := json.Marshal([]model.TenantCatalogEntry{{TenantID: "tenant-a", TestID: "test-focus", Slug: "focus"}})
	require.NoError(t, err)
	published, err := json.Marshal(model.PublishedTest{TenantID: "tenant-a", TestID: "test-focus", Slug: "focus", Locale: "en", Spec: multiLocaleSpec("en")})
	require.NoError(t, err)

	cache.EXPECT().Get(gomock.Any(), "content_gen:tenant-a").Return([]byte("g1"), nil).Times(2)
	cache.EXPECT().Get(gomock.Any(), "tenant_catalog:tenant-a:g1").Return(catalog, nil)
	cache.EXPECT().Get(gomock.Any(), "published_test:tenant-a:g1:focus:en").Return(published, nil)

	pt, err := svc.LoadPublishedTestByID(context.Background(), "tenant-a", "test-focus", "en")
	require.NoError(t, err)
	require.NotNil(t, pt)
	assert.Equal(t, "test-focus", pt.Spec.TestID)
}

func TestContentCacheService_LoadPublishedTestByID_NotInCatalog(t *testing.T) {
	svc, content, cache := newContentService(t)

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	content.EXPECT().ListTenantCatalog(gomock.Any(), "tenant-a").Return(nil, nil)

	pt, err := svc.LoadPublishedTestByID(context.Background(), "tenant-a", "test-focus", "en")
	require.NoError(t, err)
	assert.Nil(t, pt)
}

func TestContentCacheService_CacheErrorsFallThrough(t *testing.T) {
	svc, content, cache := newContentService(t)
	boom := errors.New("redis down")

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, boom).AnyTimes()
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(boom).AnyTimes()
	content.EXPECT().ListTenantCatalog(gomock.Any(), "tenant-a").Return([]model.TenantCatalogEntry{
		{TenantID: "tenant-a", TestID: "test-focus", Slug: "focus"},
	}, nil)
	content.EXPECT().GetPublishedBySlug(gomock.Any(), "tenant-a", "focus").Return(nil, nil)

	pt, err := svc.LoadPublishedTestByID(context.Background(), "tenant-a", "test-focus", "en")
	require.NoError(t, err)
	assert.Nil(t, pt)
}

func TestContentCacheService_InvalidateTenant(t *testing.T) {
	svc, _, cache := newContentService(t)
	cache.EXPECT().Set(gomock.Any(), "content_gen:tenant-a", []byte("16"), time.Duration(0)).Return(nil)

	gen, err := svc.InvalidateTenant(context.Background(), " tenant-a ")
	require.NoError(t, err)
	assert.Equal(t, "16", gen)

	_, err = svc.InvalidateTenant(context.Background(), " ")
	require.Error(t, err)
}
