package models

import (
	"time"
)

// Dataset is one ingested workbook. Hash is the BLAKE2b-256 of the upload.
type Dataset struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Hash      string `gorm:"size:64;not null;uniqueIndex" json:"hash"`
	Filename  string `json:"filename"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`

	NodeColumns []string `gorm:"serializer:json" json:"node_columns"`
	EdgeColumns []string `gorm:"serializer:json" json:"edge_columns"`

	CreatedAt time.Time `json:"created_at"`
}
