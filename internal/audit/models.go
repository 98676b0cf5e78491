package audit

import (
	"time"

	"github.com/google/uuid"

	"ledgerpass/pkg/domain"
)

// Event is the append-only record of a committed registry mutation. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID        `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Height    domain.Height    `json:"height"`
	Actor     domain.Principal `json:"actor"`
	Subject   string           `json:"subject"`
	Action    Action           `json:"action"`
	Detail    string           `json:"detail,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
}

type Action string

const (
	ActionAuthorityAdded           Action = "authority_added"
	ActionAuthorityRemoved         Action = "authority_removed"
	ActionPassportIssued           Action = "passport_issued"
	ActionPassportRevoked          Action = "passport_revoked"
	ActionPassportMetadataUpdated  Action = "passport_metadata_updated"
	ActionPassportValidityExtended Action = "passport_validity_extended"
)
