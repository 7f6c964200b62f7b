package handlers

import (
	"net/http"
	"strings"

	"graphv/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like the current dataset
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if ds, ok := middleware.CurrentDataset(c); ok {
		obj["Dataset"] = ds
	}
	if _, expired := c.Get(middleware.DatasetExpiredKey); expired {
		obj["DatasetExpired"] = true
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// HTMX Redirect helper
func HtmxRedirect(c *gin.Context, path string) {
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK) // HTMX handles the redirect on client side via header
}

// Redirect sends HTMX requests through HX-Redirect and others through 303.
func Redirect(c *gin.Context, path string) {
	if isHtmx(c) {
		HtmxRedirect(c, path)
		return
	}
	c.Redirect(http.StatusSeeOther, path)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	if wantsJSON(c) {
		c.JSON(code, gin.H{"error": message})
		return
	}
	Render(c, code, "error.html", gin.H{"Error": message, "Title": http.StatusText(code)})
}

func isHtmx(c *gin.Context) bool {
	return c.GetHeader("HX-Request") != ""
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func msg(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
