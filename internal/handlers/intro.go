package handlers

import (
	"fmt"
	"html/template"
	"os"

	"graphv/internal/utils"
)

const defaultIntro = `Upload an Excel workbook to explore it as a graph.

The workbook needs two sheets:

- **Nodes** with the columns ` + "`Node ID`" + ` and ` + "`Name`" + `, plus any attribute columns.
- **Edges** with the columns ` + "`From Name`" + `, ` + "`To Name`" + ` and ` + "`Edge Type`" + `, plus any attribute columns.

A [sample workbook](https://github.com/AbdoAnss/Graph-V/blob/main/data.xlsx) shows the
expected layout.

Use the filter to find a node even if you do not know its exact name, then
click a node to see its attributes.`

// Intro is the markdown shown above the upload form and the graph.
type Intro struct {
	Markdown string
}

// LoadIntro reads the intro from path, or returns the built-in text when
// path is empty.
func LoadIntro(path string) (Intro, error) {
	if path == "" {
		return Intro{Markdown: defaultIntro}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Intro{}, fmt.Errorf("read intro: %w", err)
	}
	return Intro{Markdown: string(b)}, nil
}

func (i Intro) HTML() template.HTML {
	return utils.RenderMarkdown(i.Markdown)
}
