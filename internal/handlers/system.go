package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const Version = "1.2.0"

type SystemHandler struct {
	db *gorm.DB
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{db: db}
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "degraded",
			"version": Version,
		})
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
	})
}

// pagination reads skip/limit query params with the usual caps.
func pagination(c *fiber.Ctx) (skip, limit int) {
	skip = c.QueryInt("skip", 0)
	limit = c.QueryInt("limit", 100)
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 200 {
		limit = 100
	}
	return skip, limit
}
