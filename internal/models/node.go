package models

// Node is a row of the Nodes sheet.
// NodeID and Name are the renamed "Node ID" / "Name" columns; Attributes holds
// every column (including id and name) in sheet order.
type Node struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	DatasetID  uint       `gorm:"not null;index:idx_nodes_dataset_name,priority:1;index:idx_nodes_dataset_node,priority:1" json:"-"`
	Position   int        `gorm:"not null" json:"-"`
	NodeID     string     `gorm:"not null;index:idx_nodes_dataset_node,priority:2" json:"id"`
	Name       string     `gorm:"not null;index:idx_nodes_dataset_name,priority:2" json:"name"`
	Attributes Attributes `gorm:"serializer:json" json:"attributes"`
}
