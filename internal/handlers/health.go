package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/gymadmin/internal/monitoring"
)

// Health serves the readiness report. Any failing probe answers 503.
func Health(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeHealthReport(c, manager.Readiness(requestContext(c)))
	}
}

// Liveness answers 200 while the process can serve requests.
func Liveness(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeHealthReport(c, manager.Liveness())
	}
}

func writeHealthReport(c *gin.Context, report monitoring.HealthReport) {
	status := http.StatusOK
	if !report.Success {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checks":     report.Checks,
		"checked_at": time.Now().UTC(),
	})
}
