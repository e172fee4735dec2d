package graph

import "time"

// Detail levels for subgraph enrichment.
const (
	DetailSkeleton = "skeleton"
	DetailSummary  = "summary"
	DetailFull     = "full"
)

// Traversal bounds. Out-of-range requests are clamped, not rejected.
const (
	MinHops  = 1
	MaxHops  = 6
	MinDepth = 1
	MaxDepth = 4
	// MaxPaths caps FindPaths results, shortest first.
	MaxPaths = 5
)

// ResolveParams is the input to entity resolution.
type ResolveParams struct {
	CampaignID string
	Type       string
	Name       string
	Properties map[string]any
	Metadata   map[string]any
}

// EntityDetail combines a topology node with its property-store attributes.
type EntityDetail struct {
	EntityID   string         `json:"entity_id"`
	CampaignID string         `json:"campaign_id"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CreateRelationshipParams is the input to edge creation.
type CreateRelationshipParams struct {
	CampaignID string
	FromID     string
	ToID       string
	Type       string
	Properties map[string]any
}

// IngestEntity is one entity mention in an ingestion request.
type IngestEntity struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// IngestRelationship is one relationship mention in an ingestion request.
// Endpoints are referenced by name; unseen names get placeholder entities.
type IngestRelationship struct {
	From          string         `json:"from"`
	To            string         `json:"to"`
	Type          string         `json:"type"`
	Properties    map[string]any `json:"properties,omitempty"`
	Bidirectional bool           `json:"bidirectional,omitempty"`
	// ReverseType optionally labels the reverse edge of a bidirectional
	// mention; empty means the forward type is reused.
	ReverseType string `json:"reverse_type,omitempty"`
}

// IngestRequest is one batch of extracted graph facts.
type IngestRequest struct {
	Entities      []IngestEntity       `json:"entities"`
	Relationships []IngestRelationship `json:"relationships"`
}

// IngestResult reports what an ingestion batch produced. Ingestion is not
// transactional: on error, counts reflect the rows already written.
type IngestResult struct {
	EntitiesResolved     int      `json:"entities_resolved"`
	RelationshipsCreated int      `json:"relationships_created"`
	Warnings             []string `json:"warnings,omitempty"`
}

// Path is one route between two entities: n+1 node names and n edge type
// labels for n hops.
type Path struct {
	Entities      []string `json:"entities"`
	Relationships []string `json:"relationships"`
	Hops          int      `json:"hops"`
}

// SubgraphQuery selects a neighborhood. Exactly one of EntityID and Name
// identifies the center.
type SubgraphQuery struct {
	EntityID string
	Name     string
	Depth    int
	Detail   string
}

// SubgraphNode is one node of an extracted neighborhood. Properties are
// populated according to the requested detail level.
type SubgraphNode struct {
	EntityID   string         `json:"entity_id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Depth      int            `json:"depth"`
	Properties map[string]any `json:"properties,omitempty"`
}

// SubgraphEdge is one edge of an extracted neighborhood. Edges always carry
// their full property bag.
type SubgraphEdge struct {
	RelationshipID string         `json:"relationship_id"`
	FromID         string         `json:"from_id"`
	ToID           string         `json:"to_id"`
	Type           string         `json:"type"`
	Properties     map[string]any `json:"properties,omitempty"`
}

// Subgraph is a bounded neighborhood around a center entity.
type Subgraph struct {
	CenterID string         `json:"center_id"`
	Depth    int            `json:"depth"`
	Nodes    []SubgraphNode `json:"nodes"`
	Edges    []SubgraphEdge `json:"edges"`
}
