package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func healthHandler(reports ReportSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if reports != nil {
			if report, ok := reports.LastReport(); ok {
				body["last_cycle"] = report
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
