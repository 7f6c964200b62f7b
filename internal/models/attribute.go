package models

// Attribute is one cell of a sheet row, keyed by its (normalized) column name.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attributes keeps sheet column order.
type Attributes []Attribute

// Get returns the value for name, or "" if absent.
func (a Attributes) Get(name string) string {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value
		}
	}
	return ""
}
