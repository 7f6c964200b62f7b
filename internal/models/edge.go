package models

// Edge is a row of the Edges sheet, with "From Name"/"To Name" renamed to
// src/dst. Src and Dst refer to node names, not ids.
type Edge struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	DatasetID  uint       `gorm:"not null;index" json:"-"`
	Position   int        `gorm:"not null" json:"-"`
	Src        string     `gorm:"not null" json:"src"`
	Dst        string     `gorm:"not null" json:"dst"`
	EdgeType   string     `json:"edge_type"`
	Attributes Attributes `gorm:"serializer:json" json:"attributes"`
}
