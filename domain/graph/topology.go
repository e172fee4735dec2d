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

// TopologyRepository owns the topology store: node identity and edges.
// It is the authority on whether an entity exists at all.
type TopologyRepository struct {
	db  *database.TopologyDB
	log *slog.Logger
}

// NewTopologyRepository creates a topology repository.
func NewTopologyRepository(db *database.TopologyDB, log *slog.Logger) *TopologyRepository {
	return &TopologyRepository{
		db:  db,
		log: log.With(logger.Scope("graph.topology")),
	}
}

// CreateNode inserts a node. A UNIQUE(campaign_id, name) violation surfaces
// as ErrConflict so the resolution engine can switch to its update path.
func (r *TopologyRepository) CreateNode(ctx context.Context, node *Entity) error {
	now := time.Now().UTC()
	node.CreatedAt = now
	node.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(node).Exec(ctx); err != nil {
		if sqlutils.IsUniqueViolation(err) {
			return apperror.ErrConflict.WithInternal(err)
		}
		r.log.Error("failed to create node", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// GetNodeByName returns the campaign's node with the given name, or nil.
func (r *TopologyRepository) GetNodeByName(ctx context.Context, campaignID, name string) (*Entity, error) {
	var node Entity
	err := r.db.NewSelect().
		Model(&node).
		Where("campaign_id = ?", campaignID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &node, nil
}

// GetNodeByID returns the node with the given entity id, or nil.
func (r *TopologyRepository) GetNodeByID(ctx context.Context, campaignID, entityID string) (*Entity, error) {
	var node Entity
	err := r.db.NewSelect().
		Model(&node).
		Where("campaign_id = ?", campaignID).
		Where("entity_id = ?", entityID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &node, nil
}

// GetNodesByIDs returns the campaign's nodes matching the given entity ids.
func (r *TopologyRepository) GetNodesByIDs(ctx context.Context, campaignID string, entityIDs []string) ([]Entity, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	var nodes []Entity
	err := r.db.NewSelect().
		Model(&nodes).
		Where("campaign_id = ?", campaignID).
		Where("entity_id IN (?)", bun.In(entityIDs)).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return nodes, nil
}

// UpdateNodeType rewrites a node's type. Used only for the Unknown upgrade.
func (r *TopologyRepository) UpdateNodeType(ctx context.Context, campaignID, entityID, newType string) error {
	_, err := r.db.NewUpdate().
		Model((*Entity)(nil)).
		Set("type = ?", newType).
		Set("updated_at = ?", time.Now().UTC()).
		Where("campaign_id = ?", campaignID).
		Where("entity_id = ?", entityID).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// ListNodesParams filters ListNodes. Zero-valued filters are skipped.
type ListNodesParams struct {
	CampaignID string
	Type       string
	Name       string
}

// ListNodes returns the campaign's nodes, oldest first.
func (r *TopologyRepository) ListNodes(ctx context.Context, params ListNodesParams) ([]Entity, error) {
	var nodes []Entity
	q := r.db.NewSelect().
		Model(&nodes).
		Where("campaign_id = ?", params.CampaignID)
	if params.Type != "" {
		q = q.Where("type = ?", params.Type)
	}
	if params.Name != "" {
		q = q.Where("name = ?", params.Name)
	}
	err := q.Order("id ASC").Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return nodes, nil
}

// DeleteNode removes a node and every edge touching it. Returns whether the
// node existed.
func (r *TopologyRepository) DeleteNode(ctx context.Context, campaignID, entityID string) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*Entity)(nil)).
		Where("campaign_id = ?", campaignID).
		Where("entity_id = ?", entityID).
		Exec(ctx)
	if err != nil {
		return false, apperror.ErrDatabase.WithInternal(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}

	_, err = r.db.NewDelete().
		Model((*Relationship)(nil)).
		Where("campaign_id = ?", campaignID).
		Where("(from_id = ? OR to_id = ?)", entityID, entityID).
		Exec(ctx)
	if err != nil {
		return true, apperror.ErrDatabase.WithInternal(err)
	}
	return true, nil
}

// CreateEdge inserts an edge.
func (r *TopologyRepository) CreateEdge(ctx context.Context, edge *Relationship) error {
	now := time.Now().UTC()
	edge.CreatedAt = now
	edge.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(edge).Exec(ctx); err != nil {
		r.log.Error("failed to create edge", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// ListEdgesParams filters ListEdges. Filters are conjunctive; zero-valued
// filters are skipped.
type ListEdgesParams struct {
	CampaignID string
	FromID     string
	ToID       string
	Type       string
}

// ListEdges returns matching edges in insertion order.
func (r *TopologyRepository) ListEdges(ctx context.Context, params ListEdgesParams) ([]Relationship, error) {
	var edges []Relationship
	q := r.db.NewSelect().
		Model(&edges).
		Where("campaign_id = ?", params.CampaignID)
	if params.FromID != "" {
		q = q.Where("from_id = ?", params.FromID)
	}
	if params.ToID != "" {
		q = q.Where("to_id = ?", params.ToID)
	}
	if params.Type != "" {
		q = q.Where("type = ?", params.Type)
	}
	err := q.Order("id ASC").Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return edges, nil
}

// EdgesForNodes returns every edge touching any of the given nodes in either
// direction, in insertion order. This is the per-level fetch of the BFS
// traversals.
func (r *TopologyRepository) EdgesForNodes(ctx context.Context, campaignID string, entityIDs []string) ([]Relationship, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	var edges []Relationship
	err := r.db.NewSelect().
		Model(&edges).
		Where("campaign_id = ?", campaignID).
		Where("(from_id IN (?) OR to_id IN (?))", bun.In(entityIDs), bun.In(entityIDs)).
		Order("id ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return edges, nil
}

// DeleteEdge removes an edge by its relationship id. Returns whether it
// existed.
func (r *TopologyRepository) DeleteEdge(ctx context.Context, campaignID, relationshipID string) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*Relationship)(nil)).
		Where("campaign_id = ?", campaignID).
		Where("relationship_id = ?", relationshipID).
		Exec(ctx)
	if err != nil {
		return false, apperror.ErrDatabase.WithInternal(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
