package services

import "errors"

var (
	// ErrInvalidWorkbook means the upload is empty or not a readable .xlsx file.
	ErrInvalidWorkbook = errors.New("invalid workbook")
	// ErrMissingSheet means a required sheet (Nodes or Edges) is absent.
	ErrMissingSheet = errors.New("missing sheet")
	// ErrMissingColumn means a required column is absent from a sheet.
	ErrMissingColumn = errors.New("missing column")
	// ErrDatasetNotFound means the dataset expired or was never loaded.
	ErrDatasetNotFound = errors.New("dataset not found")
)
