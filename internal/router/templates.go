package router

import (
	"html/template"
	"path/filepath"

	"graphv/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	components, err := filepath.Glob(templatesDir + "/components/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, components...)
		files = append(files, view)
		return files
	}

	// partials render without the layout; the view must come first so it is
	// the template executed
	partial := func(view string) []string {
		return append([]string{view}, components...)
	}

	funcMap := template.FuncMap{
		"truncate": utils.Truncate,
	}

	r.AddFromFilesFuncs("graph/upload.html", funcMap, assemble(templatesDir+"/views/graph/upload.html")...)
	r.AddFromFilesFuncs("graph/index.html", funcMap, assemble(templatesDir+"/views/graph/index.html")...)
	r.AddFromFilesFuncs("graph/node_detail.html", funcMap, partial(templatesDir+"/views/graph/node_detail.html")...)

	// Error
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
