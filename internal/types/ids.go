// internal/types/ids.go
package types

import (
	"time"

	"github.com/google/uuid"
)

type WorkspaceName string
type SessionID string

// NewSessionID builds a session identifier that sorts by start time while
// staying unique across concurrent sessions sharing a workspace.
func NewSessionID(at time.Time) SessionID {
	return SessionID(at.UTC().Format("20060102_150405") + "_" + uuid.New().String()[:8])
}
