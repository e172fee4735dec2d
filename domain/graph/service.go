package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tarven-note/tarven-core/domain/campaigns"
	"github.com/tarven-note/tarven-core/domain/vocab"
	"github.com/tarven-note/tarven-core/pkg/apperror"
	"github.com/tarven-note/tarven-core/pkg/logger"
)

// Service is the graph engine: entity resolution and merge, relationship
// management, ingestion, and traversal queries.
type Service struct {
	topo      *TopologyRepository
	prop      *PropertyRepository
	campaigns *campaigns.Service
	vocab     *vocab.Canonicalizer
	log       *slog.Logger
}

// NewService creates the graph service.
func NewService(
	topo *TopologyRepository,
	prop *PropertyRepository,
	campaignSvc *campaigns.Service,
	canonicalizer *vocab.Canonicalizer,
	log *slog.Logger,
) *Service {
	return &Service{
		topo:      topo,
		prop:      prop,
		campaigns: campaignSvc,
		vocab:     canonicalizer,
		log:       log.With(logger.Scope("graph.service")),
	}
}

// ResolveEntity finds or creates the campaign's entity with the given name
// and merges the incoming properties into it. The write order is fixed:
// topology identity first, property attributes second, so a failed attribute
// write can be retried against the already-assigned id.
func (s *Service) ResolveEntity(ctx context.Context, params ResolveParams) (*EntityDetail, error) {
	detail, warnings, err := s.resolveEntity(ctx, params)
	for _, w := range warnings {
		s.log.Warn("property degraded during merge",
			slog.String("campaign_id", params.CampaignID),
			slog.String("name", params.Name),
			slog.String("warning", w))
	}
	return detail, err
}

func (s *Service) resolveEntity(ctx context.Context, params ResolveParams) (*EntityDetail, []string, error) {
	if params.CampaignID == "" {
		return nil, nil, apperror.ErrValidation.WithMessage("campaign id is required")
	}
	if params.Name == "" {
		return nil, nil, apperror.ErrValidation.WithMessage("entity name is required")
	}

	if _, err := s.campaigns.Get(ctx, params.CampaignID); err != nil {
		return nil, nil, err
	}

	typ := s.vocab.EntityType(params.Type)

	node, created, err := s.mergeNode(ctx, params.CampaignID, params.Name, typ)
	if err != nil {
		return nil, nil, err
	}
	if created {
		entityResolutions.WithLabelValues("created").Inc()
	} else {
		entityResolutions.WithLabelValues("merged").Inc()
	}

	rec, warnings, err := s.mergeProperties(ctx, node, params)
	if err != nil {
		return nil, warnings, err
	}

	if aliases := coerceList(params.Properties["aliases"]).Strings(); len(aliases) > 0 {
		if err := s.prop.EnsureAliases(ctx, params.CampaignID, node.EntityID, aliases); err != nil {
			return nil, warnings, err
		}
	}

	return &EntityDetail{
		EntityID:   node.EntityID,
		CampaignID: node.CampaignID,
		Type:       node.Type,
		Name:       node.Name,
		Properties: rec.PropertyMap(),
		CreatedAt:  node.CreatedAt,
		UpdatedAt:  node.UpdatedAt,
	}, warnings, nil
}

// mergeNode finds or creates the topology node. A create/create race loses
// the INSERT to the UNIQUE(campaign_id, name) constraint; the loser re-reads
// once and switches to the update path.
func (s *Service) mergeNode(ctx context.Context, campaignID, name, typ string) (*Entity, bool, error) {
	node, err := s.topo.GetNodeByName(ctx, campaignID, name)
	if err != nil {
		return nil, false, err
	}

	if node == nil {
		node = &Entity{
			EntityID:   uuid.NewString(),
			CampaignID: campaignID,
			Type:       typ,
			Name:       name,
		}
		err := s.topo.CreateNode(ctx, node)
		if err == nil {
			return node, true, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, false, err
		}

		resolutionConflictRetries.Inc()
		node, err = s.topo.GetNodeByName(ctx, campaignID, name)
		if err != nil {
			return nil, false, err
		}
		if node == nil {
			return nil, false, apperror.ErrConflict.WithMessage("entity create conflict did not converge")
		}
	}

	// Type upgrade is one-way: only a placeholder loses its type. The first
	// concrete type wins over later disagreeing writes.
	if node.Type == vocab.UnknownEntityType && typ != vocab.UnknownEntityType {
		if err := s.topo.UpdateNodeType(ctx, campaignID, node.EntityID, typ); err != nil {
			return nil, false, err
		}
		node.Type = typ
	}

	return node, false, nil
}

// mergeProperties upserts the property-store record for a resolved node.
func (s *Service) mergeProperties(ctx context.Context, node *Entity, params ResolveParams) (*EntityRecord, []string, error) {
	rec, err := s.prop.GetByName(ctx, node.CampaignID, node.Name)
	if err != nil {
		return nil, nil, err
	}

	if rec == nil {
		rec = &EntityRecord{
			EntityID:   node.EntityID,
			CampaignID: node.CampaignID,
			Type:       node.Type,
			Name:       node.Name,
		}
		warnings := applyProperties(rec, params.Properties)
		mergeMetadata(rec, params.Metadata)

		err := s.prop.Insert(ctx, rec)
		if err == nil {
			return rec, warnings, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, warnings, err
		}

		// Lost the race on the property row; re-read and merge into the
		// winner's record.
		resolutionConflictRetries.Inc()
		rec, err = s.prop.GetByName(ctx, node.CampaignID, node.Name)
		if err != nil {
			return nil, warnings, err
		}
		if rec == nil {
			return nil, warnings, apperror.ErrConflict.WithMessage("property record conflict did not converge")
		}
	}

	rec.Type = node.Type
	warnings := applyProperties(rec, params.Properties)
	mergeMetadata(rec, params.Metadata)

	if err := s.prop.Update(ctx, rec); err != nil {
		return nil, warnings, err
	}
	return rec, warnings, nil
}

// GetEntity returns an entity by its id with full properties.
func (s *Service) GetEntity(ctx context.Context, campaignID, entityID string) (*EntityDetail, error) {
	node, err := s.topo.GetNodeByID(ctx, campaignID, entityID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, apperror.ErrNotFound.WithMessage("entity not found")
	}
	return s.detailFor(ctx, node)
}

// GetEntityByName returns an entity by its primary name, falling back to the
// alias index when no node carries the name directly.
func (s *Service) GetEntityByName(ctx context.Context, campaignID, name string) (*EntityDetail, error) {
	node, err := s.topo.GetNodeByName(ctx, campaignID, name)
	if err != nil {
		return nil, err
	}
	if node == nil {
		entityID, err := s.prop.ResolveAlias(ctx, campaignID, name)
		if err != nil {
			return nil, err
		}
		if entityID != "" {
			node, err = s.topo.GetNodeByID(ctx, campaignID, entityID)
			if err != nil {
				return nil, err
			}
		}
	}
	if node == nil {
		return nil, apperror.ErrNotFound.WithMessage("entity not found")
	}
	return s.detailFor(ctx, node)
}

func (s *Service) detailFor(ctx context.Context, node *Entity) (*EntityDetail, error) {
	detail := &EntityDetail{
		EntityID:   node.EntityID,
		CampaignID: node.CampaignID,
		Type:       node.Type,
		Name:       node.Name,
		CreatedAt:  node.CreatedAt,
		UpdatedAt:  node.UpdatedAt,
	}
	rec, err := s.prop.GetByName(ctx, node.CampaignID, node.Name)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		detail.Properties = rec.PropertyMap()
	}
	return detail, nil
}

// ListEntities returns the campaign's entities, optionally filtered by type
// and name. Identity only; properties are fetched per entity on demand.
func (s *Service) ListEntities(ctx context.Context, params ListNodesParams) ([]Entity, error) {
	return s.topo.ListNodes(ctx, params)
}

// DeleteEntity removes an entity, its edges, its property record and its
// aliases from both stores.
func (s *Service) DeleteEntity(ctx context.Context, campaignID, entityID string) error {
	deleted, err := s.topo.DeleteNode(ctx, campaignID, entityID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.ErrNotFound.WithMessage("entity not found")
	}
	if err := s.prop.Delete(ctx, campaignID, entityID); err != nil {
		return err
	}
	s.log.Info("entity deleted",
		slog.String("campaign_id", campaignID),
		slog.String("entity_id", entityID))
	return nil
}

// CreateRelationship creates a directed edge between two existing entities.
// Both endpoints must exist in the campaign.
func (s *Service) CreateRelationship(ctx context.Context, params CreateRelationshipParams) (*Relationship, error) {
	if params.CampaignID == "" || params.FromID == "" || params.ToID == "" {
		return nil, apperror.ErrValidation.WithMessage("campaign id and both endpoints are required")
	}

	ids := []string{params.FromID, params.ToID}
	nodes, err := s.topo.GetNodesByIDs(ctx, params.CampaignID, ids)
	if err != nil {
		return nil, err
	}
	found := map[string]bool{}
	for _, n := range nodes {
		found[n.EntityID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, apperror.ErrNotFound.WithMessage(fmt.Sprintf("relationship endpoint %s not found", id))
		}
	}

	edge := &Relationship{
		RelationshipID: uuid.NewString(),
		CampaignID:     params.CampaignID,
		FromID:         params.FromID,
		ToID:           params.ToID,
		Type:           s.vocab.RelationshipType(params.Type),
		Properties:     params.Properties,
	}
	if err := s.topo.CreateEdge(ctx, edge); err != nil {
		return nil, err
	}
	relationshipsCreated.Inc()
	return edge, nil
}

// ListRelationships returns edges matching the conjunctive filters.
func (s *Service) ListRelationships(ctx context.Context, params ListEdgesParams) ([]Relationship, error) {
	return s.topo.ListEdges(ctx, params)
}

// DeleteRelationship removes an edge.
func (s *Service) DeleteRelationship(ctx context.Context, campaignID, relationshipID string) error {
	deleted, err := s.topo.DeleteEdge(ctx, campaignID, relationshipID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.ErrNotFound.WithMessage("relationship not found")
	}
	return nil
}

// Ingest processes one batch of extracted graph facts: resolve each entity,
// then create the listed relationships, auto-creating placeholder entities
// for endpoint names the batch never declared. The batch is not
// transactional; on error the counts reflect rows already written.
func (s *Service) Ingest(ctx context.Context, campaignID string, req IngestRequest) (*IngestResult, error) {
	if err := s.campaigns.EnsureExists(ctx, campaignID); err != nil {
		return nil, err
	}
	ingestBatches.Inc()

	result := &IngestResult{}
	byName := map[string]*EntityDetail{}

	for _, e := range req.Entities {
		detail, warnings, err := s.resolveEntity(ctx, ResolveParams{
			CampaignID: campaignID,
			Type:       e.Type,
			Name:       e.Name,
			Properties: e.Properties,
			Metadata:   e.Metadata,
		})
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			return result, err
		}
		byName[detail.Name] = detail
		result.EntitiesResolved++
	}

	for _, rel := range req.Relationships {
		fromID, err := s.endpointID(ctx, campaignID, rel.From, byName, result)
		if err != nil {
			return result, err
		}
		toID, err := s.endpointID(ctx, campaignID, rel.To, byName, result)
		if err != nil {
			return result, err
		}

		if _, err := s.CreateRelationship(ctx, CreateRelationshipParams{
			CampaignID: campaignID,
			FromID:     fromID,
			ToID:       toID,
			Type:       rel.Type,
			Properties: rel.Properties,
		}); err != nil {
			return result, err
		}
		result.RelationshipsCreated++

		if rel.Bidirectional {
			reverseType := rel.ReverseType
			if reverseType == "" {
				reverseType = rel.Type
			}
			// The reverse edge is best-effort: its failure is recorded but
			// never undoes the forward edge.
			if _, err := s.CreateRelationship(ctx, CreateRelationshipParams{
				CampaignID: campaignID,
				FromID:     toID,
				ToID:       fromID,
				Type:       reverseType,
				Properties: rel.Properties,
			}); err != nil {
				s.log.Warn("failed to create reverse relationship",
					slog.String("campaign_id", campaignID),
					slog.String("from", rel.To),
					slog.String("to", rel.From),
					logger.Error(err))
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("reverse relationship %s -> %s not created", rel.To, rel.From))
				continue
			}
			result.RelationshipsCreated++
		}
	}

	return result, nil
}

// endpointID resolves a relationship endpoint name to an entity id,
// auto-creating a placeholder entity for names the batch never declared.
func (s *Service) endpointID(ctx context.Context, campaignID, name string, byName map[string]*EntityDetail, result *IngestResult) (string, error) {
	if name == "" {
		return "", apperror.ErrValidation.WithMessage("relationship endpoint name is required")
	}
	if detail, ok := byName[name]; ok {
		return detail.EntityID, nil
	}

	node, err := s.topo.GetNodeByName(ctx, campaignID, name)
	if err != nil {
		return "", err
	}
	if node != nil {
		return node.EntityID, nil
	}

	detail, warnings, err := s.resolveEntity(ctx, ResolveParams{
		CampaignID: campaignID,
		Type:       vocab.UnknownEntityType,
		Name:       name,
	})
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		return "", err
	}
	byName[name] = detail
	result.EntitiesResolved++
	return detail.EntityID, nil
}
