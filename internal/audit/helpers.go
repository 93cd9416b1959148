package audit

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/darmiel/vertrag/internal/config"
	"github.com/darmiel/vertrag/internal/core"
)

// Digest identifies a payload in the audit log without storing it.
func Digest(payload []byte) string {
	hash := sha256.Sum256(payload)
	return "sha256:" + base64.StdEncoding.EncodeToString(hash[:])
}

// New creates the auditor described by the config.
func New(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "", "memory":
		return NewInMemoryAuditor(cfg.Capacity), nil
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file auditor requires a path")
		}
		return NewFileAuditor(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown audit type '%s'", cfg.Type)
	}
}

func lastN(entries []core.AuditEntry, limit int) []core.AuditEntry {
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	out := make([]core.AuditEntry, limit)
	copy(out, entries[len(entries)-limit:])
	return out
}
