package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tarven-note/tarven-core/internal/database"
	"github.com/tarven-note/tarven-core/pkg/apperror"
	"github.com/tarven-note/tarven-core/pkg/logger"
	"github.com/tarven-note/tarven-core/pkg/sqljson"
)

// Repository handles campaign rows in the topology store. Cascade deletion
// also reaches into the property store, which is why it holds both handles:
// the campaign is the ownership root for graph data in both.
type Repository struct {
	topo *database.TopologyDB
	prop *database.PropertyDB
	log  *slog.Logger
}

// NewRepository creates a new campaign repository.
func NewRepository(topo *database.TopologyDB, prop *database.PropertyDB, log *slog.Logger) *Repository {
	return &Repository{
		topo: topo,
		prop: prop,
		log:  log.With(logger.Scope("campaigns.repo")),
	}
}

// Create inserts a new campaign. An empty id gets a generated one.
func (r *Repository) Create(ctx context.Context, c *Campaign) error {
	if c.CampaignID == "" {
		c.CampaignID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := r.topo.NewInsert().Model(c).Exec(ctx); err != nil {
		r.log.Error("failed to create campaign", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// GetByID returns a campaign, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*Campaign, error) {
	var c Campaign
	err := r.topo.NewSelect().
		Model(&c).
		Where("campaign_id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get campaign", logger.Error(err), slog.String("id", id))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &c, nil
}

// List returns all campaigns, newest first.
func (r *Repository) List(ctx context.Context) ([]Campaign, error) {
	var cs []Campaign
	err := r.topo.NewSelect().
		Model(&cs).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return cs, nil
}

// UpdateParams are the mutable campaign fields; nil means "leave unchanged".
type UpdateParams struct {
	Name        *string
	System      *string
	Description *string
	Status      *string
	Metadata    sqljson.Map
}

// Update applies the non-nil fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id string, params UpdateParams) (*Campaign, error) {
	q := r.topo.NewUpdate().
		Model((*Campaign)(nil)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("campaign_id = ?", id)

	if params.Name != nil {
		q = q.Set("name = ?", *params.Name)
	}
	if params.System != nil {
		q = q.Set("system = ?", *params.System)
	}
	if params.Description != nil {
		q = q.Set("description = ?", *params.Description)
	}
	if params.Status != nil {
		q = q.Set("status = ?", *params.Status)
	}
	if params.Metadata != nil {
		q = q.Set("metadata = ?", params.Metadata)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Delete removes the campaign and cascades to everything scoped to it: the
// campaign's entities and relationships in the topology store, and its
// property rows and alias index in the property store. Returns whether a
// campaign row was actually deleted.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.topo.NewDelete().
		Model((*Campaign)(nil)).
		Where("campaign_id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, apperror.ErrDatabase.WithInternal(err)
	}
	deleted, _ := res.RowsAffected()

	// Topology cascade. Raw table deletes, the graph models belong to the
	// graph domain.
	if _, err := r.topo.NewRaw("DELETE FROM relationships WHERE campaign_id = ?", id).Exec(ctx); err != nil {
		return deleted > 0, apperror.ErrDatabase.WithInternal(err)
	}
	if _, err := r.topo.NewRaw("DELETE FROM entities WHERE campaign_id = ?", id).Exec(ctx); err != nil {
		return deleted > 0, apperror.ErrDatabase.WithInternal(err)
	}

	// Property-store cascade.
	if _, err := r.prop.NewRaw("DELETE FROM entity_aliases WHERE campaign_id = ?", id).Exec(ctx); err != nil {
		return deleted > 0, apperror.ErrDatabase.WithInternal(err)
	}
	if _, err := r.prop.NewRaw("DELETE FROM entities WHERE campaign_id = ?", id).Exec(ctx); err != nil {
		return deleted > 0, apperror.ErrDatabase.WithInternal(err)
	}

	return deleted > 0, nil
}
