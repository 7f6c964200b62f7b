package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name string
	rows [][]any
}

// buildWorkbook writes the sheets into an in-memory .xlsx file.
func buildWorkbook(t *testing.T, sheets ...sheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for _, s := range sheets {
		_, err := f.NewSheet(s.name)
		require.NoError(t, err)
		for i, row := range s.rows {
			cells := row
			require.NoError(t, f.SetSheetRow(s.name, fmt.Sprintf("A%d", i+1), &cells))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func companiesWorkbook(t *testing.T) []byte {
	t.Helper()
	return buildWorkbook(t,
		sheet{"Nodes", [][]any{
			{"Node ID", "Name", "City", "Sector"},
			{1, "Acme", "Rabat", ""},
			{2, "Acme Corp", "Casablanca", "Industry"},
			{3, "Globex", "", "Energy"},
			{4, "Initech", "Tangier", "nan"},
		}},
		sheet{"Edges", [][]any{
			{"From Name", "To Name", "Edge Type", "Since"},
			{"Acme", "Acme Corp", "partner", 2019},
			{"Globex", "Initech", "supplier", ""},
			{"Initech", "Ghost", "owner", ""},
		}},
	)
}
