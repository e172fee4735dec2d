package graph

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/tarven-note/tarven-core/internal/database"
	"github.com/tarven-note/tarven-core/pkg/apperror"
	"github.com/tarven-note/tarven-core/pkg/logger"
	"github.com/tarven-note/tarven-core/pkg/sqlutils"
)

// PropertyRepository owns the property store: rich per-entity attribute rows
// and the alias index.
type PropertyRepository struct {
	db  *database.PropertyDB
	log *slog.Logger
}

// NewPropertyRepository creates a property repository.
func NewPropertyRepository(db *database.PropertyDB, log *slog.Logger) *PropertyRepository {
	return &PropertyRepository{
		db:  db,
		log: log.With(logger.Scope("graph.property")),
	}
}

// GetByName returns the campaign's property record for a name, or nil.
func (r *PropertyRepository) GetByName(ctx context.Context, campaignID, name string) (*EntityRecord, error) {
	var rec EntityRecord
	err := r.db.NewSelect().
		Model(&rec).
		Where("campaign_id = ?", campaignID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &rec, nil
}

// GetByNames returns property records for the given names in one query. This
// is the single batch lookup subgraph enrichment runs on.
func (r *PropertyRepository) GetByNames(ctx context.Context, campaignID string, names []string) ([]EntityRecord, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var recs []EntityRecord
	err := r.db.NewSelect().
		Model(&recs).
		Where("campaign_id = ?", campaignID).
		Where("name IN (?)", bun.In(names)).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return recs, nil
}

// Insert creates a new property record. A UNIQUE(campaign_id, name)
// violation surfaces as ErrConflict so the caller can re-read and merge.
func (r *PropertyRepository) Insert(ctx context.Context, rec *EntityRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		if sqlutils.IsUniqueViolation(err) {
			return apperror.ErrConflict.WithInternal(err)
		}
		r.log.Error("failed to insert property record", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// Update rewrites an existing record's property columns.
func (r *PropertyRepository) Update(ctx context.Context, rec *EntityRecord) error {
	rec.UpdatedAt = time.Now().UTC()

	_, err := r.db.NewUpdate().
		Model(rec).
		WherePK().
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to update property record", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// Delete removes an entity's property record and its alias entries.
func (r *PropertyRepository) Delete(ctx context.Context, campaignID, entityID string) error {
	_, err := r.db.NewDelete().
		Model((*EntityRecord)(nil)).
		Where("campaign_id = ?", campaignID).
		Where("entity_id = ?", entityID).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}

	_, err = r.db.NewDelete().
		Model((*EntityAlias)(nil)).
		Where("campaign_id = ?", campaignID).
		Where("entity_id = ?", entityID).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// EnsureAliases inserts each alias into the alias index if absent. A
// duplicate alias within the campaign is left pointing at its first owner.
func (r *PropertyRepository) EnsureAliases(ctx context.Context, campaignID, entityID string, aliases []string) error {
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		entry := &EntityAlias{
			CampaignID: campaignID,
			EntityID:   entityID,
			Alias:      alias,
			CreatedAt:  time.Now().UTC(),
		}
		if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
			if sqlutils.IsUniqueViolation(err) {
				continue
			}
			return apperror.ErrDatabase.WithInternal(err)
		}
	}
	return nil
}

// ResolveAlias returns the entity id an alias points at, or empty when the
// alias is unknown.
func (r *PropertyRepository) ResolveAlias(ctx context.Context, campaignID, alias string) (string, error) {
	var entry EntityAlias
	err := r.db.NewSelect().
		Model(&entry).
		Where("campaign_id = ?", campaignID).
		Where("alias = ?", alias).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", apperror.ErrDatabase.WithInternal(err)
	}
	return entry.EntityID, nil
}
