// Package vocab maps free-form entity and relationship type labels onto the
// closed vocabularies the graph engine stores. Canonicalization is lossy but
// total: an unrecognized label degrades to a documented default instead of
// failing, so ingestion never hard-fails on a bad type.
package vocab

import (
	"log/slog"

	"github.com/tarven-note/tarven-core/pkg/logger"
)

// Defaults substituted when a label cannot be canonicalized.
const (
	DefaultEntityType       = "Character"
	DefaultRelationshipType = "KNOWS"

	// UnknownEntityType marks entities created implicitly as relationship
	// endpoints; it is the only type the resolution engine will upgrade.
	UnknownEntityType = "Unknown"
)

// entityTypeAliases maps localized and lowercase variants to standard values.
var entityTypeAliases = map[string]string{
	// Chinese -> English
	"角色": "Character",
	"人物": "Character",
	"地点": "Location",
	"地方": "Location",
	"事件": "Event",
	"线索": "Clue",
	"物品": "Item",
	"道具": "Item",
	"组织": "Organization",
	// lowercase -> standard
	"character":    "Character",
	"location":     "Location",
	"event":        "Event",
	"clue":         "Clue",
	"item":         "Item",
	"organization": "Organization",
}

var validEntityTypes = map[string]bool{
	"Character":    true,
	"Location":     true,
	"Event":        true,
	"Clue":         true,
	"Item":         true,
	"Organization": true,
}

var relationshipTypeAliases = map[string]string{
	// Chinese -> English
	"认识":  "KNOWS",
	"知道":  "KNOWS",
	"信任":  "TRUSTS",
	"恐惧":  "FEARS",
	"害怕":  "FEARS",
	"爱":   "LOVES",
	"恨":   "HATES",
	"位于":  "LOCATED_AT",
	"在":   "LOCATED_AT",
	"工作于": "WORKS_AT",
	"居住于": "LIVES_AT",
	"住在":  "LIVES_AT",
	"参与":  "PARTICIPATED_IN",
	"目击":  "WITNESSED",
	"导致":  "CAUSED",
	"拥有":  "OWNS",
	"持有":  "OWNS",
	"使用":  "USED",
	"发现":  "FOUND",
	"属于":  "BELONGS_TO",
	"连接":  "CONNECTED_TO",
	// lowercase -> standard
	"knows":           "KNOWS",
	"trusts":          "TRUSTS",
	"fears":           "FEARS",
	"loves":           "LOVES",
	"hates":           "HATES",
	"located_at":      "LOCATED_AT",
	"works_at":        "WORKS_AT",
	"lives_at":        "LIVES_AT",
	"participated_in": "PARTICIPATED_IN",
	"witnessed":       "WITNESSED",
	"caused":          "CAUSED",
	"owns":            "OWNS",
	"used":            "USED",
	"found":           "FOUND",
	"belongs_to":      "BELONGS_TO",
	"connected_to":    "CONNECTED_TO",
}

var validRelationshipTypes = map[string]bool{
	"KNOWS": true, "TRUSTS": true, "FEARS": true, "LOVES": true, "HATES": true,
	"LOCATED_AT": true, "WORKS_AT": true, "LIVES_AT": true,
	"PARTICIPATED_IN": true, "WITNESSED": true, "CAUSED": true,
	"OWNS": true, "USED": true, "FOUND": true, "BELONGS_TO": true, "CONNECTED_TO": true,
}

// Canonicalizer maps labels onto the closed vocabularies. It has no state
// beyond its logger.
type Canonicalizer struct {
	log *slog.Logger
}

// NewCanonicalizer creates a canonicalizer.
func NewCanonicalizer(log *slog.Logger) *Canonicalizer {
	return &Canonicalizer{log: log.With(logger.Scope("vocab"))}
}

// EntityType canonicalizes an entity type label. The Unknown sentinel passes
// through untouched so implicitly created endpoints keep their upgradeable
// type.
func (c *Canonicalizer) EntityType(label string) string {
	if label == UnknownEntityType {
		return UnknownEntityType
	}

	mapped := label
	if v, ok := entityTypeAliases[label]; ok {
		mapped = v
	}

	if !validEntityTypes[mapped] {
		c.log.Warn("unknown entity type, substituting default",
			slog.String("label", label),
			slog.String("default", DefaultEntityType))
		return DefaultEntityType
	}

	if mapped != label {
		c.log.Info("canonicalized entity type",
			slog.String("label", label),
			slog.String("canonical", mapped))
	}
	return mapped
}

// RelationshipType canonicalizes a relationship type label.
func (c *Canonicalizer) RelationshipType(label string) string {
	mapped := label
	if v, ok := relationshipTypeAliases[label]; ok {
		mapped = v
	}

	if !validRelationshipTypes[mapped] {
		c.log.Warn("unknown relationship type, substituting default",
			slog.String("label", label),
			slog.String("default", DefaultRelationshipType))
		return DefaultRelationshipType
	}

	if mapped != label {
		c.log.Info("canonicalized relationship type",
			slog.String("label", label),
			slog.String("canonical", mapped))
	}
	return mapped
}

// IsValidEntityType reports closed-vocabulary membership (Unknown excluded).
func IsValidEntityType(t string) bool { return validEntityTypes[t] }

// IsValidRelationshipType reports closed-vocabulary membership.
func IsValidRelationshipType(t string) bool { return validRelationshipTypes[t] }
