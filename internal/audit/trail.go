package audit

import (
	"context"
	"time"

	"github.com/nerrad567/assetflow-core/internal/lifecycle"
)

// Trail writes audit entries for lifecycle events and API mutations.
type Trail struct {
	repo Repository
	now  func() time.Time
}

// NewTrail creates a Trail over repo.
func NewTrail(repo Repository) *Trail {
	return &Trail{repo: repo, now: time.Now}
}

// Notify implements lifecycle.Notifier. Approvals and rejections are
// recorded against the request, everything else against the device.
func (t *Trail) Notify(ctx context.Context, e lifecycle.Event) error {
	entry := &Entry{
		Action:     string(e.Type),
		EntityType: EntityDevice,
		EntityID:   e.DeviceID,
		UserID:     e.Actor.ID,
		Source:     SourceLifecycle,
		Details:    eventDetails(e),
		CreatedAt:  e.At,
	}
	if e.Type == lifecycle.EventRequestApproved || e.Type == lifecycle.EventRequestRejected {
		entry.EntityType = EntityRequest
		entry.EntityID = e.RequestID
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = t.now()
	}
	return t.repo.Create(ctx, entry)
}

func eventDetails(e lifecycle.Event) map[string]any {
	d := map[string]any{"device_id": e.DeviceID}
	set := func(k, v string) {
		if v != "" {
			d[k] = v
		}
	}
	set("request_id", e.RequestID)
	set("allocation_id", e.AllocationID)
	set("employee_id", e.EmployeeID)
	set("condition", string(e.Condition))
	set("device_status", string(e.DeviceStatus))
	set("actor_role", e.Actor.Role)
	return d
}

// Record writes an entry for a directory or registry mutation made
// through the API, e.g. Record(ctx, "create", EntityDevice, id, actorID, nil).
func (t *Trail) Record(ctx context.Context, action, entityType, entityID, userID string, details map[string]any) error {
	return t.repo.Create(ctx, &Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Source:     SourceAPI,
		Details:    details,
		CreatedAt:  t.now(),
	})
}

// List returns a page of the trail.
func (t *Trail) List(ctx context.Context, filter Filter) (*Page, error) {
	return t.repo.List(ctx, filter)
}
