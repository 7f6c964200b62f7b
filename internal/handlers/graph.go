package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"graphv/internal/middleware"
	"graphv/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// widgetConfig mirrors the options the page passes to the graph widget.
type widgetConfig struct {
	Width          string `json:"width"`
	Height         int    `json:"height"`
	Directed       bool   `json:"directed"`
	HighlightColor string `json:"highlightColor"`
	NodeSize       int    `json:"nodeSize"`
}

var defaultWidget = widgetConfig{
	Width:          services.GraphWidth,
	Height:         services.GraphHeight,
	Directed:       true,
	HighlightColor: services.HighlightColor,
	NodeSize:       services.NodeSize,
}

// GraphHandler serves the graph page, its JSON API and node details.
type GraphHandler struct {
	svc   *services.GraphService
	log   *zap.Logger
	intro template.HTML
}

func NewGraphHandler(svc *services.GraphService, log *zap.Logger, intro template.HTML) *GraphHandler {
	return &GraphHandler{svc: svc, log: log, intro: intro}
}

type queryForm struct {
	Q string `form:"q" binding:"max=200"`
}

// Index shows the upload form, or the filtered graph when a dataset is loaded.
func (h *GraphHandler) Index(c *gin.Context) {
	ds, ok := middleware.CurrentDataset(c)
	if !ok {
		Render(c, http.StatusOK, "graph/upload.html", gin.H{
			"Title": "Upload",
			"Intro": h.intro,
		})
		return
	}

	var form queryForm
	if err := c.ShouldBindQuery(&form); err != nil {
		RenderError(c, http.StatusBadRequest, "Filter is too long")
		return
	}

	view, err := h.svc.Query(c.Request.Context(), ds, form.Q)
	if err != nil {
		h.log.Error("graph query failed", zap.String("dataset", ds.Hash), zap.Error(err))
		RenderError(c, http.StatusInternalServerError, "Could not build the graph")
		return
	}

	graphJSON, err := json.Marshal(gin.H{"nodes": view.Nodes, "edges": view.Edges, "config": defaultWidget})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}

	Render(c, http.StatusOK, "graph/index.html", gin.H{
		"Title":     ds.Filename,
		"Intro":     h.intro,
		"Query":     form.Q,
		"View":      view,
		"GraphJSON": template.JS(graphJSON),
	})
}

// Graph returns the filtered graph as JSON (GET /api/graph?q=).
func (h *GraphHandler) Graph(c *gin.Context) {
	ds, _ := middleware.CurrentDataset(c)

	var form queryForm
	if err := c.ShouldBindQuery(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg(err)})
		return
	}

	view, err := h.svc.Query(c.Request.Context(), ds, form.Q)
	if err != nil {
		h.log.Error("graph query failed", zap.String("dataset", ds.Hash), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build the graph"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset": ds,
		"view":    view,
		"config":  defaultWidget,
	})
}

// Node renders the attribute table of one node (GET /nodes?id=). The id is
// a query value since node ids may contain "/".
// HTMX requests get the table fragment, JSON callers the rows.
func (h *GraphHandler) Node(c *gin.Context) {
	ds, _ := middleware.CurrentDataset(c)
	nodeID := c.Query("id")

	node, rows, err := h.svc.NodeDetail(c.Request.Context(), ds, nodeID)
	if err != nil && !errors.Is(err, services.ErrNodeNotFound) {
		h.log.Error("node lookup failed", zap.String("node", nodeID), zap.Error(err))
		RenderError(c, http.StatusInternalServerError, "Could not load the node")
		return
	}

	status := http.StatusOK
	if node == nil {
		status = http.StatusNotFound
	}

	if wantsJSON(c) {
		if node == nil {
			c.JSON(status, gin.H{"error": "node not found", "id": nodeID})
			return
		}
		c.JSON(status, gin.H{"id": node.NodeID, "name": node.Name, "rows": rows})
		return
	}

	// HTMX only swaps 2xx responses, so the "not found" fragment is sent as 200.
	if isHtmx(c) {
		status = http.StatusOK
	}
	c.HTML(status, "graph/node_detail.html", gin.H{
		"NodeID": nodeID,
		"Node":   node,
		"Rows":   rows,
	})
}

// Reset forgets the session's dataset (POST /reset).
func (h *GraphHandler) Reset(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(middleware.SessionDatasetKey)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}
	Redirect(c, "/")
}
