package graph

import (
	"context"
	"log/slog"

	"github.com/tarven-note/tarven-core/pkg/apperror"
)

// FindPaths returns up to MaxPaths routes between two entities named in the
// campaign, shortest first. Traversal is direction-agnostic and an edge is
// used at most once per path; nodes may repeat. A missing endpoint yields an
// empty result, not an error.
func (s *Service) FindPaths(ctx context.Context, campaignID, fromName, toName string, maxHops int) ([]Path, error) {
	maxHops = clamp(maxHops, MinHops, MaxHops)
	traversalQueries.WithLabelValues("paths").Inc()

	from, err := s.topo.GetNodeByName(ctx, campaignID, fromName)
	if err != nil {
		return nil, err
	}
	to, err := s.topo.GetNodeByName(ctx, campaignID, toName)
	if err != nil {
		return nil, err
	}
	if from == nil || to == nil {
		return []Path{}, nil
	}

	nodes, err := s.topo.ListNodes(ctx, ListNodesParams{CampaignID: campaignID})
	if err != nil {
		return nil, err
	}
	nameByID := make(map[string]string, len(nodes))
	for _, n := range nodes {
		nameByID[n.EntityID] = n.Name
	}

	edges, err := s.topo.ListEdges(ctx, ListEdgesParams{CampaignID: campaignID})
	if err != nil {
		return nil, err
	}

	// Adjacency over edge indices, both directions.
	adjacent := map[string][]int{}
	for i, e := range edges {
		adjacent[e.FromID] = append(adjacent[e.FromID], i)
		if e.ToID != e.FromID {
			adjacent[e.ToID] = append(adjacent[e.ToID], i)
		}
	}

	type state struct {
		nodeID   string
		names    []string
		relTypes []string
		used     map[int]bool
	}

	level := []state{{
		nodeID: from.EntityID,
		names:  []string{from.Name},
	}}

	var paths []Path
	for hop := 1; hop <= maxHops && len(level) > 0 && len(paths) < MaxPaths; hop++ {
		var next []state
		for _, st := range level {
			for _, i := range adjacent[st.nodeID] {
				if st.used[i] {
					continue
				}
				e := edges[i]
				neighbor := e.ToID
				if neighbor == st.nodeID && e.FromID != e.ToID {
					neighbor = e.FromID
				}

				names := append(append([]string{}, st.names...), nameByID[neighbor])
				relTypes := append(append([]string{}, st.relTypes...), e.Type)

				if neighbor == to.EntityID {
					paths = append(paths, Path{
						Entities:      names,
						Relationships: relTypes,
						Hops:          hop,
					})
					if len(paths) >= MaxPaths {
						return paths, nil
					}
					continue
				}

				used := make(map[int]bool, len(st.used)+1)
				for k := range st.used {
					used[k] = true
				}
				used[i] = true
				next = append(next, state{
					nodeID:   neighbor,
					names:    names,
					relTypes: relTypes,
					used:     used,
				})
			}
		}
		level = next
	}

	if paths == nil {
		paths = []Path{}
	}
	return paths, nil
}

// GetSubgraph extracts the bounded neighborhood around a center entity,
// expanding level by level in both directions. Node properties are populated
// according to the requested detail level; edges always carry their full
// property bag.
func (s *Service) GetSubgraph(ctx context.Context, campaignID string, q SubgraphQuery) (*Subgraph, error) {
	if (q.EntityID == "") == (q.Name == "") {
		return nil, apperror.ErrValidation.WithMessage("exactly one of entity id and name must be set")
	}
	depth := clamp(q.Depth, MinDepth, MaxDepth)
	detail := q.Detail
	if detail == "" {
		detail = DetailFull
	}
	traversalQueries.WithLabelValues("subgraph").Inc()

	var center *Entity
	var err error
	if q.EntityID != "" {
		center, err = s.topo.GetNodeByID(ctx, campaignID, q.EntityID)
	} else {
		center, err = s.topo.GetNodeByName(ctx, campaignID, q.Name)
	}
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, apperror.ErrNotFound.WithMessage("subgraph center not found")
	}

	sub := &Subgraph{
		CenterID: center.EntityID,
		Depth:    depth,
		Nodes: []SubgraphNode{{
			EntityID: center.EntityID,
			Name:     center.Name,
			Type:     center.Type,
			Depth:    0,
		}},
		Edges: []SubgraphEdge{},
	}

	visited := map[string]bool{center.EntityID: true}
	edgeSeen := map[string]bool{}
	level := []string{center.EntityID}

	for d := 1; d <= depth && len(level) > 0; d++ {
		edges, err := s.topo.EdgesForNodes(ctx, campaignID, level)
		if err != nil {
			return nil, err
		}

		neighborSet := map[string]bool{}
		for _, e := range edges {
			if edgeSeen[e.RelationshipID] {
				continue
			}
			edgeSeen[e.RelationshipID] = true
			sub.Edges = append(sub.Edges, SubgraphEdge{
				RelationshipID: e.RelationshipID,
				FromID:         e.FromID,
				ToID:           e.ToID,
				Type:           e.Type,
				Properties:     e.Properties,
			})
			if !visited[e.FromID] {
				neighborSet[e.FromID] = true
			}
			if !visited[e.ToID] {
				neighborSet[e.ToID] = true
			}
		}

		if len(neighborSet) == 0 {
			break
		}
		neighborIDs := make([]string, 0, len(neighborSet))
		for id := range neighborSet {
			neighborIDs = append(neighborIDs, id)
		}

		neighbors, err := s.topo.GetNodesByIDs(ctx, campaignID, neighborIDs)
		if err != nil {
			return nil, err
		}

		level = level[:0]
		for _, n := range neighbors {
			if visited[n.EntityID] {
				continue
			}
			visited[n.EntityID] = true
			sub.Nodes = append(sub.Nodes, SubgraphNode{
				EntityID: n.EntityID,
				Name:     n.Name,
				Type:     n.Type,
				Depth:    d,
			})
			level = append(level, n.EntityID)
		}
	}

	if detail == DetailSkeleton {
		return sub, nil
	}
	if err := s.enrichNodes(ctx, campaignID, sub, detail); err != nil {
		return nil, err
	}
	return sub, nil
}

// enrichNodes populates node properties with a single batch property-store
// lookup keyed by node names.
func (s *Service) enrichNodes(ctx context.Context, campaignID string, sub *Subgraph, detail string) error {
	names := make([]string, 0, len(sub.Nodes))
	for _, n := range sub.Nodes {
		names = append(names, n.Name)
	}

	recs, err := s.prop.GetByNames(ctx, campaignID, names)
	if err != nil {
		return err
	}
	byName := make(map[string]*EntityRecord, len(recs))
	for i := range recs {
		byName[recs[i].Name] = &recs[i]
	}

	for i := range sub.Nodes {
		rec, ok := byName[sub.Nodes[i].Name]
		if !ok {
			continue
		}
		switch detail {
		case DetailSummary:
			if rec.Description != nil {
				sub.Nodes[i].Properties = map[string]any{"description": *rec.Description}
			}
		case DetailFull:
			sub.Nodes[i].Properties = rec.PropertyMap()
		}
	}

	s.log.Debug("subgraph enriched",
		slog.String("campaign_id", campaignID),
		slog.String("detail", detail),
		slog.Int("nodes", len(sub.Nodes)),
		slog.Int("edges", len(sub.Edges)))
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
