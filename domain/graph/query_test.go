package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarven-note/tarven-core/pkg/apperror"
)

// buildChain creates a linear A-B-C-D chain and returns the entity ids by
// name.
func buildChain(t *testing.T, svc *Service, campaignID string) map[string]string {
	t.Helper()
	ctx := context.Background()

	ids := map[string]string{}
	for _, name := range []string{"A", "B", "C", "D"} {
		detail, err := svc.ResolveEntity(ctx, ResolveParams{
			CampaignID: campaignID,
			Type:       "Character",
			Name:       name,
			Properties: map[string]any{"description": "character " + name},
		})
		require.NoError(t, err)
		ids[name] = detail.EntityID
	}
	for _, pair := range [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}} {
		_, err := svc.CreateRelationship(ctx, CreateRelationshipParams{
			CampaignID: campaignID,
			FromID:     ids[pair[0]],
			ToID:       ids[pair[1]],
			Type:       "KNOWS",
		})
		require.NoError(t, err)
	}
	return ids
}

func TestFindPathsLinearChain(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()
	buildChain(t, svc, campaignID)

	paths, err := svc.FindPaths(ctx, campaignID, "A", "D", 3)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"A", "B", "C", "D"}, paths[0].Entities)
	assert.Equal(t, []string{"KNOWS", "KNOWS", "KNOWS"}, paths[0].Relationships)
	assert.Equal(t, 3, paths[0].Hops)

	// The same query bounded to one hop finds nothing.
	paths, err = svc.FindPaths(ctx, campaignID, "A", "D", 1)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFindPathsDirectionAgnostic(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()
	buildChain(t, svc, campaignID)

	// All edges point A->D; traversal still finds the reverse route.
	paths, err := svc.FindPaths(ctx, campaignID, "D", "A", 3)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"D", "C", "B", "A"}, paths[0].Entities)
}

func TestFindPathsShortestFirst(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()
	ids := buildChain(t, svc, campaignID)

	// Add a direct A->D shortcut; it must come before the 3-hop route.
	_, err := svc.CreateRelationship(ctx, CreateRelationshipParams{
		CampaignID: campaignID,
		FromID:     ids["A"],
		ToID:       ids["D"],
		Type:       "TRUSTS",
	})
	require.NoError(t, err)

	paths, err := svc.FindPaths(ctx, campaignID, "A", "D", 6)
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	assert.Equal(t, 1, paths[0].Hops)
	assert.Equal(t, []string{"TRUSTS"}, paths[0].Relationships)
	for i := 1; i < len(paths); i++ {
		assert.GreaterOrEqual(t, paths[i].Hops, paths[i-1].Hops)
	}
}

func TestFindPathsMissingEndpoint(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()
	buildChain(t, svc, campaignID)

	paths, err := svc.FindPaths(ctx, campaignID, "A", "Nobody", 3)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFindPathsClampsHopBounds(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()
	buildChain(t, svc, campaignID)

	// 0 clamps up to 1: no route A-D.
	paths, err := svc.FindPaths(ctx, campaignID, "A", "D", 0)
	require.NoError(t, err)
	assert.Empty(t, paths)

	// 99 clamps down to 6: the 3-hop route is within bounds.
	paths, err = svc.FindPaths(ctx, campaignID, "A", "D", 99)
	require.NoError(t, err)
	require.Len(t, paths, 1)
}

func TestGetSubgraphDepthBounds(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()
	buildChain(t, svc, campaignID)

	sub, err := svc.GetSubgraph(ctx, campaignID, SubgraphQuery{Name: "A", Depth: 1, Detail: DetailSkeleton})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, nodeNames(sub))
	assert.Len(t, sub.Edges, 1)

	sub, err = svc.GetSubgraph(ctx, campaignID, SubgraphQuery{Name: "A", Depth: 2, Detail: DetailSkeleton})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, nodeNames(sub))
	assert.Len(t, sub.Edges, 2)

	// Depth annotations follow BFS levels.
	assert.Equal(t, 0, sub.Nodes[0].Depth)
	assert.Equal(t, 1, sub.Nodes[1].Depth)
	assert.Equal(t, 2, sub.Nodes[2].Depth)
}

func TestGetSubgraphStar(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()

	center, err := svc.ResolveEntity(ctx, ResolveParams{CampaignID: campaignID, Type: "Character", Name: "X"})
	require.NoError(t, err)
	spokes := []string{"S1", "S2", "S3", "S4", "S5"}
	var outer string
	for _, name := range spokes {
		spoke, err := svc.ResolveEntity(ctx, ResolveParams{CampaignID: campaignID, Type: "Character", Name: name})
		require.NoError(t, err)
		_, err = svc.CreateRelationship(ctx, CreateRelationshipParams{
			CampaignID: campaignID, FromID: center.EntityID, ToID: spoke.EntityID, Type: "KNOWS",
		})
		require.NoError(t, err)
		outer = spoke.EntityID
	}
	// One node two hops out, reachable only through the last spoke.
	far, err := svc.ResolveEntity(ctx, ResolveParams{CampaignID: campaignID, Type: "Location", Name: "Far"})
	require.NoError(t, err)
	_, err = svc.CreateRelationship(ctx, CreateRelationshipParams{
		CampaignID: campaignID, FromID: outer, ToID: far.EntityID, Type: "LOCATED_AT",
	})
	require.NoError(t, err)

	sub, err := svc.GetSubgraph(ctx, campaignID, SubgraphQuery{Name: "X", Depth: 1, Detail: DetailSkeleton})
	require.NoError(t, err)
	assert.Len(t, sub.Nodes, 6)
	assert.Len(t, sub.Edges, 5)

	sub, err = svc.GetSubgraph(ctx, campaignID, SubgraphQuery{Name: "X", Depth: 2, Detail: DetailSkeleton})
	require.NoError(t, err)
	assert.Len(t, sub.Nodes, 7)
	assert.Len(t, sub.Edges, 6)
	assert.Contains(t, nodeNames(sub), "Far")
}

func TestGetSubgraphByEntityID(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()
	ids := buildChain(t, svc, campaignID)

	sub, err := svc.GetSubgraph(ctx, campaignID, SubgraphQuery{EntityID: ids["B"], Depth: 1, Detail: DetailSkeleton})
	require.NoError(t, err)
	assert.Equal(t, ids["B"], sub.CenterID)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, nodeNames(sub))
}

func TestGetSubgraphDetailLevels(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()
	buildChain(t, svc, campaignID)

	skeleton, err := svc.GetSubgraph(ctx, campaignID, SubgraphQuery{Name: "B", Depth: 1, Detail: DetailSkeleton})
	require.NoError(t, err)
	for _, n := range skeleton.Nodes {
		assert.Nil(t, n.Properties)
	}

	summary, err := svc.GetSubgraph(ctx, campaignID, SubgraphQuery{Name: "B", Depth: 1, Detail: DetailSummary})
	require.NoError(t, err)
	for _, n := range summary.Nodes {
		require.NotNil(t, n.Properties)
		assert.Equal(t, map[string]any{"description": "character " + n.Name}, n.Properties)
	}

	full, err := svc.GetSubgraph(ctx, campaignID, SubgraphQuery{Name: "B", Depth: 1, Detail: DetailFull})
	require.NoError(t, err)
	for _, n := range full.Nodes {
		require.NotNil(t, n.Properties)
		assert.Equal(t, "character "+n.Name, n.Properties["description"])
	}
}

func TestGetSubgraphValidation(t *testing.T) {
	svc, campaignID := newTestGraph(t)
	ctx := context.Background()

	_, err := svc.GetSubgraph(ctx, campaignID, SubgraphQuery{Depth: 1})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = svc.GetSubgraph(ctx, campaignID, SubgraphQuery{EntityID: "x", Name: "y", Depth: 1})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = svc.GetSubgraph(ctx, campaignID, SubgraphQuery{Name: "Nobody", Depth: 1})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func nodeNames(sub *Subgraph) []string {
	names := make([]string, len(sub.Nodes))
	for i, n := range sub.Nodes {
		names[i] = n.Name
	}
	return names
}
