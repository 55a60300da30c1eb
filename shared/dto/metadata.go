package dto

import (
	"lodging/shared/constant"
	"lodging/shared/model"
)

// Metadata is the audit block of every response. Instants are rendered in UTC.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by"`
}

func (m *Metadata) FromModel(model model.Metadata) {
	m.CreatedAt = model.CreatedAt.UTC().Format(constant.InstantFormat)
	m.ModifiedAt = model.ModifiedAt.UTC().Format(constant.InstantFormat)
	m.CreatedBy = model.CreatedBy
	m.ModifiedBy = model.ModifiedBy
}
