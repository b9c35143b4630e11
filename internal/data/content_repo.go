package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/data/pgxutil"
	"github.com/target/quizreport/internal/domain/model"
	apperrors "github.com/target/quizreport/internal/errors"
)

// ContentRepo reads and writes the test catalog: tests, their versions, and per-tenant publication.
type ContentRepo struct {
	DB *sql.DB
}

// NewContentRepo creates a new ContentRepo.
func NewContentRepo(db *sql.DB) *ContentRepo {
	return &ContentRepo{DB: db}
}

// ListTenantCatalog returns the tenant's enabled tests that have a published version, ordered by slug.
func (r *ContentRepo) ListTenantCatalog(ctx context.Context, tenantID string) ([]model.TenantCatalogEntry, error) {
	var entries []model.TenantCatalogEntry
	err := pgxutil.WithConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT tt.tenant_id, t.test_id, t.slug, t.default_locale, tt.is_enabled,
				tt.published_version_id::text, tv.version, tt.published_at
			FROM tenant_tests tt
			JOIN tests t ON t.id = tt.test_id
			LEFT JOIN test_versions tv ON tv.id = tt.published_version_id
			WHERE tt.tenant_id = $1
			  AND tt.is_enabled
			  AND tt.published_version_id IS NOT NULL
			ORDER BY t.slug
		`, tenantID)
		if err != nil {
			return err
		}
		entries, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TenantCatalogEntry, error) {
			var (
				e           model.TenantCatalogEntry
				versionID   sql.NullString
				version     sql.NullInt32
				publishedAt sql.NullTime
			)
			if err := row.Scan(&e.TenantID, &e.TestID, &e.Slug, &e.DefaultLocale, &e.IsEnabled,
				&versionID, &version, &publishedAt); err != nil {
				return e, err
			}
			e.PublishedVersionID = cloneNullableString(versionID)
			if version.Valid {
				v := int(version.Int32)
				e.PublishedVersion = &v
			}
			e.PublishedAt = cloneNullableTime(publishedAt)
			return e, nil
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list tenant catalog: %w", err)
	}
	return entries, nil
}

// GetPublishedBySlug loads the published spec of a tenant's enabled test. It returns nil, nil
// when there is none. A stored spec that fails validation is an error.
func (r *ContentRepo) GetPublishedBySlug(ctx context.Context, tenantID, slug string) (*core.PublishedSpec, error) {
	var (
		e           model.TenantCatalogEntry
		versionID   string
		version     int
		publishedAt sql.NullTime
		raw         []byte
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT tt.tenant_id, t.test_id, t.slug, t.default_locale, tt.is_enabled,
			tv.id::text, tv.version, tt.published_at, tv.spec_json
		FROM tenant_tests tt
		JOIN tests t ON t.id = tt.test_id
		JOIN test_versions tv ON tv.id = tt.published_version_id
		WHERE tt.tenant_id = $1
		  AND t.slug = $2
		  AND tt.is_enabled
		LIMIT 1
	`, tenantID, strings.ToLower(strings.TrimSpace(slug))).Scan(
		&e.TenantID, &e.TestID, &e.Slug, &e.DefaultLocale, &e.IsEnabled,
		&versionID, &version, &publishedAt, &raw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get published test: %w", err)
	}
	e.PublishedVersionID = &versionID
	e.PublishedVersion = &version
	e.PublishedAt = cloneNullableTime(publishedAt)

	spec, err := model.ParseTestSpec(raw)
	if err != nil {
		return nil, err
	}
	return &core.PublishedSpec{Entry: e, Spec: spec}, nil
}

// UpsertTestVersion stores spec as a new version of its test, creating the test row on first use.
// Re-uploading an existing version replaces its document. It returns the version row id.
func (r *ContentRepo) UpsertTestVersion(ctx context.Context, spec *model.TestSpec, defaultLocale string) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	if _, ok := model.NormalizeLocaleTag(defaultLocale); !ok {
		defaultLocale = model.LocaleEN
	}
	doc, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("encode test spec: %w", err)
	}

	var versionID string
	err = pgxutil.WithTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var testRowID string
		if err := tx.QueryRow(ctx, `
			INSERT INTO tests (test_id, slug, default_locale)
			VALUES ($1, $2, $3)
			ON CONFLICT (test_id) DO UPDATE SET
				slug = EXCLUDED.slug,
				default_locale = EXCLUDED.default_locale,
				updated_at = now()
			RETURNING id::text
		`, spec.TestID, spec.Slug, defaultLocale).Scan(&testRowID); err != nil {
			return fmt.Errorf("upsert test: %w", apperrors.MapDBError(err))
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO test_versions (test_id, version, spec_json)
			VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (test_id, version) DO UPDATE SET spec_json = EXCLUDED.spec_json
			RETURNING id::text
		`, testRowID, spec.Version, string(doc)).Scan(&versionID); err != nil {
			return fmt.Errorf("upsert test version: %w", apperrors.MapDBError(err))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return versionID, nil
}

// PublishForTenant enables testID for the tenant and points it at the given version.
func (r *ContentRepo) PublishForTenant(ctx context.Context, tenantID, testID string, version int) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO tenant_tests (tenant_id, test_id, is_enabled, published_version_id, published_at)
		SELECT $1, t.id, TRUE, tv.id, now()
		FROM tests t
		JOIN test_versions tv ON tv.test_id = t.id AND tv.version = $3
		WHERE t.test_id = $2
		ON CONFLICT (tenant_id, test_id) DO UPDATE SET
			is_enabled = TRUE,
			published_version_id = EXCLUDED.published_version_id,
			published_at = EXCLUDED.published_at,
			updated_at = now()
	`, tenantID, testID, version)
	if err != nil {
		return fmt.Errorf("publish test: %w", err)
	}
	return expectAffected(res, ErrTestVersionNotFound)
}

// DisableForTenant hides testID from the tenant's catalog without unpublishing it.
func (r *ContentRepo) DisableForTenant(ctx context.Context, tenantID, testID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tenant_tests tt
		SET is_enabled = FALSE, updated_at = now()
		FROM tests t
		WHERE tt.test_id = t.id AND tt.tenant_id = $1 AND t.test_id = $2
	`, tenantID, testID)
	if err != nil {
		return fmt.Errorf("disable test: %w", err)
	}
	return expectAffected(res, ErrTestNotFound)
}
