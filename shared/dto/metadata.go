package dto

import (
	"time"

	"elc/shared/constant"
	"elc/shared/model"
	"elc/shared/timezone"
)

type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by"`
}

// FromModel renders the audit timestamps in the application time zone.
// Unset timestamps are left empty.
func (m *Metadata) FromModel(meta model.Metadata) {
	m.CreatedAt = formatStamp(meta.CreatedAt)
	m.ModifiedAt = formatStamp(meta.ModifiedAt)
	m.CreatedBy = meta.CreatedBy
	m.ModifiedBy = meta.ModifiedBy
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return timezone.Format(t, constant.DateFormat)
}
