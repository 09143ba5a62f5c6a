package entity

import "time"

// AuditLog is one immutable record of a state-mutating operation. Writing
// it is fire-and-forget from the caller's perspective: an audit failure
// never rolls back the business transaction.
type AuditLog struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	StoreID     *string   `json:"store_id,omitempty"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"`
	ObjectTable string    `json:"object_table"`
	ObjectID    string    `json:"object_id"`
	Data        string    `json:"data,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
