package audit

import (
	"buffet-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// -------------------------------------------------
// GET /api/audit-logs?entityType=inventory_movement&entityId=...&userId=...&limit=50
// -------------------------------------------------
func ListAuditLogsHandler(w *Writer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{
			EntityType: c.Query("entityType"),
			EntityID:   c.Query("entityId"),
			UserID:     c.Query("userId"),
			Limit:      c.QueryInt("limit", 100),
		}

		logs, err := w.List(c.UserContext(), f)
		if err != nil {
			return apperror.FromDB(err, "audit logs not found")
		}
		return c.JSON(logs)
	}
}
