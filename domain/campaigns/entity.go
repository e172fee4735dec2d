package campaigns

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/tarven-note/tarven-core/pkg/sqljson"
)

// Campaign is the scope node every entity and relationship belongs to. It
// lives in the topology store.
type Campaign struct {
	bun.BaseModel `bun:"table:campaigns,alias:c"`

	CampaignID  string      `bun:"campaign_id,pk" json:"campaign_id"`
	Name        string      `bun:"name,notnull" json:"name"`
	System      string      `bun:"system" json:"system,omitempty"`
	Description string      `bun:"description" json:"description,omitempty"`
	Status      string      `bun:"status,notnull" json:"status"`
	Metadata    sqljson.Map `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time   `bun:"updated_at,notnull" json:"updated_at"`
}

// StatusActive is the status assigned to new campaigns.
const StatusActive = "active"
