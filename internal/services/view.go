package services

import "graphv/internal/models"

// Widget settings shared by every rendered graph.
const (
	NodeSize       = 15
	GraphHeight    = 750
	GraphWidth     = "100%"
	HighlightColor = "#F7A7A6"
)

// VisNode is a node of the graph widget.
type VisNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Size  int    `json:"size"`
}

// VisEdge is a directed, labelled connector between two node ids.
type VisEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// GraphView is the filtered subgraph for one query.
type GraphView struct {
	// Match is nil when no fuzzy lookup ran (empty query).
	Match        *Match        `json:"match,omitempty"`
	Anchor       string        `json:"anchor"`
	Nodes        []VisNode     `json:"nodes"`
	Edges        []VisEdge     `json:"edges"`
	EdgeColumns  []string      `json:"edge_columns"`
	EdgeRows     []models.Edge `json:"filtered_edges"`
	DroppedEdges int           `json:"dropped_edges"`
}

// BuildView turns filtered records into widget nodes and edges. Edges point
// at the first node id (in sheet order) bearing each endpoint name and are
// skipped when either endpoint has none.
func BuildView(match *Match, anchor string, nodes []models.Node, edges []models.Edge) *GraphView {
	v := &GraphView{
		Match:    match,
		Anchor:   anchor,
		Nodes:    make([]VisNode, 0, len(nodes)),
		Edges:    make([]VisEdge, 0, len(edges)),
		EdgeRows: edges,
	}

	idByName := make(map[string]string, len(nodes))
	seenID := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if _, ok := idByName[n.Name]; !ok {
			idByName[n.Name] = n.NodeID
		}
		// the widget rejects duplicate ids
		if seenID[n.NodeID] {
			continue
		}
		seenID[n.NodeID] = true
		v.Nodes = append(v.Nodes, VisNode{ID: n.NodeID, Label: n.Name, Size: NodeSize})
	}

	for _, e := range edges {
		from, okFrom := idByName[e.Src]
		to, okTo := idByName[e.Dst]
		if !okFrom || !okTo {
			v.DroppedEdges++
			continue
		}
		v.Edges = append(v.Edges, VisEdge{From: from, To: to, Label: e.EdgeType})
	}

	return v
}

// DetailRow is one line of the node attribute table.
type DetailRow struct {
	Attribute string `json:"Attribute"`
	Value     string `json:"Value"`
}

// DetailRows lists a node's attributes in column order, without empty or
// "nan" values.
func DetailRows(attrs models.Attributes) []DetailRow {
	rows := make([]DetailRow, 0, len(attrs))
	for _, a := range attrs {
		if isEmptyValue(a.Value) {
			continue
		}
		rows = append(rows, DetailRow{Attribute: a.Name, Value: a.Value})
	}
	return rows
}

func isEmptyValue(v string) bool {
	return v == "" || v == "nan"
}
