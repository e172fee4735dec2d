package graph

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/tarven-note/tarven-core/pkg/sqljson"
)

// Entity is a graph node in the topology store. It carries identity and type
// only; rich attributes live in the property store keyed by the same
// (campaign_id, name) pair.
type Entity struct {
	bun.BaseModel `bun:"table:entities,alias:e"`

	ID         int64     `bun:"id,pk,autoincrement" json:"-"`
	EntityID   string    `bun:"entity_id,notnull" json:"entity_id"`
	CampaignID string    `bun:"campaign_id,notnull" json:"campaign_id"`
	Type       string    `bun:"type,notnull" json:"type"`
	Name       string    `bun:"name,notnull" json:"name"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// Relationship is a directed edge between two topology entities. Endpoint
// references are entity_id values; existence is enforced by the engine, not
// by foreign keys.
type Relationship struct {
	bun.BaseModel `bun:"table:relationships,alias:r"`

	ID             int64       `bun:"id,pk,autoincrement" json:"-"`
	RelationshipID string      `bun:"relationship_id,notnull" json:"relationship_id"`
	CampaignID     string      `bun:"campaign_id,notnull" json:"campaign_id"`
	FromID         string      `bun:"from_id,notnull" json:"from_id"`
	ToID           string      `bun:"to_id,notnull" json:"to_id"`
	Type           string      `bun:"type,notnull" json:"type"`
	Properties     sqljson.Map `bun:"properties" json:"properties,omitempty"`
	CreatedAt      time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time   `bun:"updated_at,notnull" json:"updated_at"`
}

// EntityRecord is the property-store row for one entity. Typed columns cover
// the per-type attribute vocabulary; everything outside it lands in the
// attributes extension bag.
type EntityRecord struct {
	bun.BaseModel `bun:"table:entities,alias:pe"`

	ID         int64  `bun:"id,pk,autoincrement" json:"-"`
	EntityID   string `bun:"entity_id,notnull" json:"entity_id"`
	CampaignID string `bun:"campaign_id,notnull" json:"campaign_id"`
	Type       string `bun:"type,notnull" json:"type"`
	Name       string `bun:"name,notnull" json:"name"`

	Description *string `bun:"description" json:"description,omitempty"`

	// Character
	Occupation  *string `bun:"occupation" json:"occupation,omitempty"`
	Age         *int    `bun:"age" json:"age,omitempty"`
	Gender      *string `bun:"gender" json:"gender,omitempty"`
	Appearance  *string `bun:"appearance" json:"appearance,omitempty"`
	Personality *string `bun:"personality" json:"personality,omitempty"`
	Background  *string `bun:"background" json:"background,omitempty"`

	// Location
	LocationType *string `bun:"location_type" json:"location_type,omitempty"`
	Address      *string `bun:"address" json:"address,omitempty"`

	// Item
	ItemType *string `bun:"item_type" json:"item_type,omitempty"`
	Rarity   *string `bun:"rarity" json:"rarity,omitempty"`

	// Event
	EventTime    *string      `bun:"event_time" json:"event_time,omitempty"`
	Participants sqljson.List `bun:"participants" json:"participants,omitempty"`

	// Organization
	OrgType *string      `bun:"org_type" json:"org_type,omitempty"`
	Members sqljson.List `bun:"members" json:"members,omitempty"`

	Attributes sqljson.Map `bun:"attributes" json:"attributes,omitempty"`

	// Additive list fields, append-only.
	Aliases   sqljson.List `bun:"aliases" json:"aliases,omitempty"`
	UsedNames sqljson.List `bun:"used_names" json:"used_names,omitempty"`
	Notes     sqljson.List `bun:"notes" json:"notes,omitempty"`

	Metadata  sqljson.Map `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time   `bun:"updated_at,notnull" json:"updated_at"`
}

// EntityAlias is one entry in the property store's alias index. The
// UNIQUE(campaign_id, alias) constraint makes inserts naturally
// insert-if-absent.
type EntityAlias struct {
	bun.BaseModel `bun:"table:entity_aliases,alias:ea"`

	ID         int64     `bun:"id,pk,autoincrement" json:"-"`
	CampaignID string    `bun:"campaign_id,notnull" json:"campaign_id"`
	EntityID   string    `bun:"entity_id,notnull" json:"entity_id"`
	Alias      string    `bun:"alias,notnull" json:"alias"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
}

// PropertyMap returns the record's non-null property columns as a map,
// excluding bookkeeping columns. This is the "full" detail projection.
func (r *EntityRecord) PropertyMap() map[string]any {
	out := map[string]any{}
	putStr := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	putStr("description", r.Description)
	putStr("occupation", r.Occupation)
	putStr("gender", r.Gender)
	putStr("appearance", r.Appearance)
	putStr("personality", r.Personality)
	putStr("background", r.Background)
	putStr("location_type", r.LocationType)
	putStr("address", r.Address)
	putStr("item_type", r.ItemType)
	putStr("rarity", r.Rarity)
	putStr("event_time", r.EventTime)
	putStr("org_type", r.OrgType)
	if r.Age != nil {
		out["age"] = *r.Age
	}
	if r.Participants != nil {
		out["participants"] = r.Participants
	}
	if r.Members != nil {
		out["members"] = r.Members
	}
	if r.Attributes != nil {
		out["attributes"] = r.Attributes
	}
	if r.Aliases != nil {
		out["aliases"] = r.Aliases
	}
	if r.UsedNames != nil {
		out["used_names"] = r.UsedNames
	}
	if r.Notes != nil {
		out["notes"] = r.Notes
	}
	if r.Metadata != nil {
		out["metadata"] = r.Metadata
	}
	return out
}
