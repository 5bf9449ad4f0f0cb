// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"gorm.io/gorm"
)

// NewHealthCheck creates the Kubernetes-style probe endpoints.
//
// GET /livez answers as long as the process runs. GET /readyz also
// requires a reachable database, since every catalog route needs it.
// Register this before any other middleware so probes keep answering
// under load.
func NewHealthCheck(db *gorm.DB) fiber.Handler {
	ready := func(_ *fiber.Ctx) bool {
		if db == nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}

		return sqlDB.Ping() == nil
	}

	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint:  "/livez",
		LivenessProbe:     func(_ *fiber.Ctx) bool { return true },
		ReadinessEndpoint: "/readyz",
		ReadinessProbe:    ready,
	})
}
