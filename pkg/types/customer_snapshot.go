package types

import (
	"github.com/atelierhq/repairops-backend/pkg/enums"
	"github.com/google/uuid"
)

// CustomerSnapshot freezes the customer identity printed on a document at
// issue time.
type CustomerSnapshot struct {
	ID    uuid.UUID          `json:"id"`
	Name  string             `json:"name"`
	Kind  enums.CustomerKind `json:"kind"`
	Email *string            `json:"email,omitempty"`
	Phone *string            `json:"phone,omitempty"`
}
