package services

import (
	"fmt"
	"io"
	"strings"

	"graphv/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	NodesSheet = "Nodes"
	EdgesSheet = "Edges"
)

// Normalized column names.
const (
	ColID       = "id"
	ColName     = "name"
	ColSrc      = "src"
	ColDst      = "dst"
	ColEdgeType = "Edge Type"
)

var (
	nodeRenames = map[string]string{"Node ID": ColID, "Name": ColName}
	edgeRenames = map[string]string{"From Name": ColSrc, "To Name": ColDst}
)

// Table is one sheet: a header row and text cells padded to its width.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Workbook holds the two sheets the graph is built from.
type Workbook struct {
	Nodes Table
	Edges Table
}

// ReadWorkbook parses an .xlsx stream and extracts the Edges and Nodes sheets.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}

	wb := &Workbook{}
	for _, s := range []struct {
		name string
		dst  *Table
	}{{EdgesSheet, &wb.Edges}, {NodesSheet, &wb.Nodes}} {
		if !sheets[s.name] {
			return nil, fmt.Errorf("%w: %q", ErrMissingSheet, s.name)
		}
		rows, err := f.GetRows(s.name)
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %q: %v", ErrInvalidWorkbook, s.name, err)
		}
		*s.dst = buildTable(rows)
	}
	return wb, nil
}

// buildTable treats the first non-blank row as the header. Blank rows are
// skipped, unnamed header cells become "Unnamed: N" and repeated names get a
// ".1", ".2" suffix.
func buildTable(rows [][]string) Table {
	var t Table
	headerSeen := false
	width := 0
	var body [][]string

	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if !headerSeen {
			t.Columns = row
			headerSeen = true
			continue
		}
		body = append(body, row)
		if len(row) > width {
			width = len(row)
		}
	}
	if len(t.Columns) > width {
		width = len(t.Columns)
	}

	t.Columns = headerNames(t.Columns, width)
	t.Rows = make([][]string, len(body))
	for i, row := range body {
		cells := make([]string, width)
		copy(cells, row)
		t.Rows[i] = cells
	}
	return t
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func headerNames(raw []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = raw[i]
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func renameColumns(cols []string, renames map[string]string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if to, ok := renames[c]; ok {
			out[i] = to
		} else {
			out[i] = c
		}
	}
	return out
}

func columnIndex(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Normalize renames the columns to the graph schema and turns rows into
// records. Node and edge Position follow sheet order.
func Normalize(wb *Workbook) ([]models.Node, []models.Edge, error) {
	nodeCols := renameColumns(wb.Nodes.Columns, nodeRenames)
	idIdx, nameIdx := columnIndex(nodeCols, ColID), columnIndex(nodeCols, ColName)
	if idIdx < 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q has no %q column", ErrMissingColumn, NodesSheet, "Node ID")
	}
	if nameIdx < 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q has no %q column", ErrMissingColumn, NodesSheet, "Name")
	}

	edgeCols := renameColumns(wb.Edges.Columns, edgeRenames)
	srcIdx, dstIdx := columnIndex(edgeCols, ColSrc), columnIndex(edgeCols, ColDst)
	typeIdx := columnIndex(edgeCols, ColEdgeType)
	if srcIdx < 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q has no %q column", ErrMissingColumn, EdgesSheet, "From Name")
	}
	if dstIdx < 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q has no %q column", ErrMissingColumn, EdgesSheet, "To Name")
	}

	nodes := make([]models.Node, len(wb.Nodes.Rows))
	for i, row := range wb.Nodes.Rows {
		nodes[i] = models.Node{
			Position:   i,
			NodeID:     row[idIdx],
			Name:       row[nameIdx],
			Attributes: attributes(nodeCols, row),
		}
	}

	edges := make([]models.Edge, len(wb.Edges.Rows))
	for i, row := range wb.Edges.Rows {
		e := models.Edge{
			Position:   i,
			Src:        row[srcIdx],
			Dst:        row[dstIdx],
			Attributes: attributes(edgeCols, row),
		}
		if typeIdx >= 0 {
			e.EdgeType = row[typeIdx]
		}
		edges[i] = e
	}
	return nodes, edges, nil
}

func attributes(cols, row []string) models.Attributes {
	attrs := make(models.Attributes, len(cols))
	for i, c := range cols {
		attrs[i] = models.Attribute{Name: c, Value: row[i]}
	}
	return attrs
}
