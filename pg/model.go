package pg

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// BookkeepingModel carries the audit columns every catalog table has.
// Entities embed it directly so the columns are inlined.
type BookkeepingModel struct {
	CreatedAt time.Time `bun:"created_at,notnull,nullzero" json:"created_at"`
	CreatedBy string    `bun:"created_by,notnull"          json:"created_by"`
	UpdatedAt time.Time `bun:"updated_at,notnull,nullzero" json:"updated_at"`
	UpdatedBy string    `bun:"updated_by,notnull"          json:"updated_by"`
}

var _ bun.BeforeAppendModelHook = (*BookkeepingModel)(nil)

// BeforeAppendModel fills timestamps the caller left unset and refreshes
// UpdatedAt on every update.
func (m *BookkeepingModel) BeforeAppendModel(_ context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = m.CreatedAt
		}
	case *bun.UpdateQuery:
		m.UpdatedAt = now
	}
	return nil
}

// AuditStamp is embedded by create schemas. Its values are always set by the
// server through Stamp, never taken from the caller.
type AuditStamp struct {
	CreatedAt time.Time `json:"-"`
	CreatedBy string    `json:"-"`
	UpdatedAt time.Time `json:"-"`
	UpdatedBy string    `json:"-"`
}

// Stamp records actor and at as both creator and last updater.
func (s *AuditStamp) Stamp(actor string, at time.Time) {
	s.CreatedAt, s.UpdatedAt = at, at
	s.CreatedBy, s.UpdatedBy = actor, actor
}

// Bookkeeping converts the stamp into the storage columns.
func (s AuditStamp) Bookkeeping() BookkeepingModel {
	return BookkeepingModel{
		CreatedAt: s.CreatedAt,
		CreatedBy: s.CreatedBy,
		UpdatedAt: s.UpdatedAt,
		UpdatedBy: s.UpdatedBy,
	}
}
