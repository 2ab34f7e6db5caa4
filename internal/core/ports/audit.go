package ports

import (
	"context"

	"github.com/userdir/directory-system/internal/core/domain"
)

// AuditSink accepts audit entries for asynchronous persistence. Record must
// not block the calling request beyond enqueueing.
type AuditSink interface {
	Record(entry domain.AuditEntry)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}
