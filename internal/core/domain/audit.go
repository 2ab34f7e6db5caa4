package domain

import "time"

// AuditAction identifies what a recorded event was about.
type AuditAction string

const (
	AuditLoginSucceeded AuditAction = "login_succeeded"
	AuditLoginFailed    AuditAction = "login_failed"
	AuditUserRegistered AuditAction = "user_registered"
	AuditRoleChanged    AuditAction = "role_changed"
	AuditUserDeleted    AuditAction = "user_deleted"
)

// AuditEntry records a security-relevant event. Entries are written
// asynchronously; losing one on shutdown is acceptable, blocking a request on
// audit persistence is not.
type AuditEntry struct {
	ID         string      `json:"id" bson:"_id"`
	Action     AuditAction `json:"action" bson:"action"`
	ActorID    string      `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	ActorEmail string      `json:"actor_email,omitempty" bson:"actor_email,omitempty"`
	TargetID   string      `json:"target_id,omitempty" bson:"target_id,omitempty"`
	Detail     string      `json:"detail,omitempty" bson:"detail,omitempty"`
	OccurredAt time.Time   `json:"occurred_at" bson:"occurred_at"`
}
