package handlers

import (
	"github.com/derslig/teacher-panel-api/database"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth reports the API and database status
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"database": "unreachable",
		})
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": "ok",
	})
}
