package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bookscope/bookscope/internal/audit"
	"github.com/bookscope/bookscope/internal/middleware"
	"github.com/bookscope/bookscope/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the audit/soft-delete surface: tombstoning and
// restoring entities, reading the deleted partition and the audit trail.
type AdminHandler struct {
	audit *services.AuditService
}

func NewAdminHandler(auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{audit: auditService}
}

// entityTypeParam maps the :entity path segment onto a registered entity
// type ("users", "user" and "User" all select User).
func entityTypeParam(c *fiber.Ctx) string {
	raw := strings.ToLower(strings.TrimSuffix(c.Params("entity"), "s"))
	switch raw {
	case "user":
		return "User"
	case "payment":
		return "Payment"
	default:
		return c.Params("entity")
	}
}

// auditContext attaches the caller's address, agent and optional reason
// so the observer can stamp them onto the audit entries it writes.
func auditContext(c *fiber.Ctx) context.Context {
	return audit.WithRequestInfo(c.UserContext(), audit.RequestInfo{
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Reason:    c.Query("reason"),
	})
}

func (h *AdminHandler) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUnknownEntityType):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Unknown entity type",
		})
	case errors.Is(err, services.ErrEntityNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Entity not found",
		})
	default:
		slog.Error("Admin operation failed", "error", err, "path", c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Operation failed",
		})
	}
}

// SoftDelete tombstones an entity. Deleting an already-deleted or
// missing entity reports not-found; it never errors.
func (h *AdminHandler) SoftDelete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	actorID, _ := middleware.CurrentUserID(c)

	entity, svcErr := h.audit.SoftDelete(auditContext(c), entityTypeParam(c), id, &actorID)
	if svcErr != nil {
		return h.serviceError(c, svcErr)
	}
	return c.JSON(entity)
}

// Restore clears an entity's tombstone.
func (h *AdminHandler) Restore(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	actorID, _ := middleware.CurrentUserID(c)

	entity, svcErr := h.audit.Restore(auditContext(c), entityTypeParam(c), id, &actorID)
	if svcErr != nil {
		return h.serviceError(c, svcErr)
	}
	return c.JSON(entity)
}

func (h *AdminHandler) GetActive(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	entity, svcErr := h.audit.GetActive(c.UserContext(), entityTypeParam(c), id)
	if svcErr != nil {
		return h.serviceError(c, svcErr)
	}
	return c.JSON(entity)
}

func (h *AdminHandler) ListActive(c *fiber.Ctx) error {
	skip, limit := pagination(c)
	entities, err := h.audit.GetAllActive(c.UserContext(), entityTypeParam(c), skip, limit)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(entities)
}

func (h *AdminHandler) ListDeleted(c *fiber.Ctx) error {
	skip, limit := pagination(c)
	entities, err := h.audit.GetDeleted(c.UserContext(), entityTypeParam(c), skip, limit)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(entities)
}

func (h *AdminHandler) Counts(c *fiber.Ctx) error {
	entityType := entityTypeParam(c)
	active, err := h.audit.CountActive(c.UserContext(), entityType)
	if err != nil {
		return h.serviceError(c, err)
	}
	deleted, err := h.audit.CountDeleted(c.UserContext(), entityType)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"entity_type": entityType,
		"active":      active,
		"deleted":     deleted,
	})
}

// EntityHistory returns one entity's audit trail, newest first.
func (h *AdminHandler) EntityHistory(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	skip, limit := pagination(c)

	logs, svcErr := h.audit.GetEntityAuditHistory(c.UserContext(), entityTypeParam(c), id, skip, limit)
	if svcErr != nil {
		return h.serviceError(c, svcErr)
	}
	return c.JSON(logs)
}

// UserHistory returns all changes performed by one actor, newest first.
func (h *AdminHandler) UserHistory(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	skip, limit := pagination(c)

	logs, svcErr := h.audit.GetUserAuditHistory(c.UserContext(), id, skip, limit)
	if svcErr != nil {
		return h.serviceError(c, svcErr)
	}
	return c.JSON(logs)
}

// RecentLogs returns audit entries of the last N days, newest first.
func (h *AdminHandler) RecentLogs(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "7"))
	if days < 1 {
		days = 7
	}
	skip, limit := pagination(c)

	logs, err := h.audit.GetRecentAuditLogs(c.UserContext(), days, skip, limit)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(logs)
}

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return uint(id), err == nil
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   true,
		"message": "Invalid id",
	})
}
