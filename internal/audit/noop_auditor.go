package audit

import "github.com/darmiel/vertrag/internal/core"

var _ core.Auditor = (*NoopAuditor)(nil)

// NoopAuditor is an auditor that does nothing.
type NoopAuditor struct{}

func NewNoopAuditor() *NoopAuditor {
	return &NoopAuditor{}
}

func (n *NoopAuditor) Log(core.AuditEntry) error {
	// noop
	return nil
}

func (n *NoopAuditor) GetRecent(int) ([]core.AuditEntry, error) {
	return []core.AuditEntry{}, nil
}

func (n *NoopAuditor) Find(func(core.AuditEntry) bool, int) ([]core.AuditEntry, error) {
	return []core.AuditEntry{}, nil
}

func (n *NoopAuditor) Close() error {
	// nothing to close
	return nil
}
