package domain

import "time"

// AuditRecord is one append-only row in the auditoria table.
type AuditRecord struct {
	ID         int64
	UserID     *int
	Username   *string
	Action     string
	Module     string
	Entity     *string
	EntityID   *int
	DataBefore []byte // JSON snapshot, nil when not applicable
	DataAfter  []byte
	IPAddress  *string
	UserAgent  *string
	CreatedAt  time.Time
}

// AuditFilter narrows an audit query. Zero values mean "no filter".
type AuditFilter struct {
	Module   string
	UserID   int
	DateFrom time.Time
	DateTo   time.Time
	Limit    int
}
