package export

import (
	"context"
	"sync"
	"time"
)

const auditAction = "value_table_export"

// AuditEntry captures one export status transition for compliance trails.
type AuditEntry struct {
	ID             string         `json:"id"`
	Action         string         `json:"action"`
	Actor          string         `json:"actor"`
	TreeSequenceID string         `json:"tree_sequence_id"`
	TraitTableID   string         `json:"trait_table_id"`
	Status         Status         `json:"status"`
	Reason         string         `json:"reason,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

// AuditLog records export audit entries.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MemoryAuditLog captures audit entries in memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record appends the entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries copies out everything recorded so far.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditEntry(nil), l.entries...)
}
