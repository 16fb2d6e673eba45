// Package httpapi exposes the query tools over HTTP with gin, matching the
// route surface this codebase's own trace server wires up: otelgin tracing
// middleware, a health endpoint, and a Prometheus /metrics endpoint.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/h7lu/modkg/services/kgraph/graph"
	"github.com/h7lu/modkg/services/kgraph/query"
	"github.com/h7lu/modkg/services/kgraph/tools"
)

// NewRouter builds the gin engine serving /v1/item, /v1/uses, /v1/used_by,
// /healthz, and /metrics (when metricsHandler is non-nil).
func NewRouter(g *graph.Graph, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("kgraph"))

	getItem := tools.NewGetItemTool(g)
	getUses := tools.NewGetUsesTool(g)
	getUsedBy := tools.NewGetUsedByTool(g)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := router.Group("/v1")
	v1.GET("/item", func(c *gin.Context) {
		symbol := c.Query("symbol")
		if symbol == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing symbol query parameter"})
			return
		}
		maxLines := parseIntDefault(c.Query("max_lines"), 0)
		result, err := getItem.Execute(c.Request.Context(), tools.GetItemParams{Ref: symbol, MaxLines: maxLines})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	v1.GET("/uses", queryHandler(getUses))
	v1.GET("/used_by", queryHandler(getUsedBy))

	return router
}

func queryHandler(tool tools.Tool) gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Query("symbol")
		if symbol == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing symbol query parameter"})
			return
		}
		kindFilter := parseKindFilter(c.Query("kind"))
		page := parseIntDefault(c.Query("page"), 1)
		pageSize := parseIntDefault(c.Query("page_size"), 20)

		var params tools.TypedParams
		switch tool.Name() {
		case "get_uses":
			params = tools.GetUsesParams{Ref: symbol, KindFilter: kindFilter, Page: page, PageSize: pageSize}
		default:
			params = tools.GetUsedByParams{Ref: symbol, KindFilter: kindFilter, Page: page, PageSize: pageSize}
		}

		result, err := tool.Execute(c.Request.Context(), params)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func parseKindFilter(v string) query.KindFilter {
	switch v {
	case "code":
		return query.KindCode
	case "xml":
		return query.KindXML
	default:
		return query.KindAny
	}
}

func parseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	return n
}
