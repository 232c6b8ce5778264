package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "profilehub/internal/transport/http/response"
)

// SchemaVersion identifies the shape of the public documents; bump on any
// breaking change to the public projection or the query contract.
const SchemaVersion = "2026-08"

// discoveryModule 公共发现文档：列出可用端点和 schema 版本
type discoveryModule struct{}

func (discoveryModule) MountAPI(g *gin.RouterGroup) {
	g.GET("/discovery", func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.OK(gin.H{
			"schemaVersion": SchemaVersion,
			"endpoints": []gin.H{
				{"method": "GET", "path": "/api/v1/profiles/:handle", "desc": "latest published profile"},
				{"method": "GET", "path": "/api/v1/profiles", "desc": "query published profiles (skill, org, title, location, updatedAfter, limit, cursor)"},
				{"method": "GET", "path": "/api/v1/discovery", "desc": "this document"},
			},
		}))
	})
}

func (discoveryModule) Priority() int { return 10 }

func init() { Register(discoveryModule{}) }
