package records

import (
	"time"

	"github.com/google/uuid"
)

// Record is the per-user factor row the MFA host keeps for every factor a
// user has. The domain factor never reads its fields; it only guarantees one
// exists.
type Record struct {
	ID            uuid.UUID
	UserID        string
	Factor        string
	TimeCreated   time.Time
	CreatedFromIP string
	TimeModified  time.Time
	Revoked       bool
}

// NewRecord builds a fresh, unrevoked record created at now.
func NewRecord(userID, factor, createdFromIP string, now time.Time) *Record {
	return &Record{
		ID:            uuid.New(),
		UserID:        userID,
		Factor:        factor,
		TimeCreated:   now,
		CreatedFromIP: createdFromIP,
		TimeModified:  now,
		Revoked:       false,
	}
}
