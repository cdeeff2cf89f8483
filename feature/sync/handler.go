package sync

import (
	"errors"

	"guild-sync/core/logger"
	"guild-sync/core/reconcile"
	"guild-sync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for member syncs and sweeps.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = reconcile.SweepReport{}
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/:guild/members/:user", h.HandleSyncMember)
	group.Post("/:guild", h.HandleSweep)
	group.Get("/:guild/reports", h.HandleListReports)
	group.Get("/:guild/reports/:name", h.HandleGetReport)
}

// HandleSyncMember syncs one member.
// @Summary Sync Member
// @Description Reconciles one user of a subscriber community with the donor community. Failures are reported in the result, not as HTTP errors.
// @Tags sync
// @Security ApiKeyAuth
// @Produce json
// @Param guild path string true "Subscriber community id"
// @Param user path string true "User id"
// @Success 200 {object} reconcile.Result
// @Failure 400 {object} map[string]string "Invalid id"
// @Router /sync/{guild}/members/{user} [post]
func (h *Handler) HandleSyncMember(c *fiber.Ctx) error {
	guildID, err := utils.ParseSnowflake(c.Params("guild"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	userID, err := utils.ParseSnowflake(c.Params("user"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	l := logger.WithRayID(h.service.logger, c)
	l.Info("Syncing member", zap.String("guild_id", guildID), zap.String("user_id", userID))

	result := h.service.SyncMember(c.UserContext(), guildID, userID)
	if !result.Success {
		l.Warn("Member sync finished with errors", zap.Strings("errors", result.Errors))
	}
	return c.JSON(result)
}

// HandleSweep syncs every member of a community.
// @Summary Sweep Community
// @Description Reconciles every member of a subscriber community. Concurrent requests for the same community share one run (X-Sweep-Shared header).
// @Tags sync
// @Security ApiKeyAuth
// @Produce json
// @Param guild path string true "Subscriber community id"
// @Success 200 {object} reconcile.SweepReport
// @Failure 400 {object} map[string]string "Invalid id"
// @Router /sync/{guild} [post]
func (h *Handler) HandleSweep(c *fiber.Ctx) error {
	guildID, err := utils.ParseSnowflake(c.Params("guild"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	l := logger.WithRayID(h.service.logger, c)
	l.Info("Sweeping community", zap.String("guild_id", guildID))

	run := h.service.Sweep(c.UserContext(), guildID, nil)
	if run.Shared {
		c.Set("X-Sweep-Shared", "true")
	}
	if run.ArchiveKey != "" {
		c.Set("X-Report-Key", run.ArchiveKey)
	}
	return c.JSON(run.Report)
}

// HandleListReports lists archived sweep reports.
// @Summary List Sweep Reports
// @Description Lists the archived sweep report keys of a community, oldest first.
// @Tags sync
// @Security ApiKeyAuth
// @Produce json
// @Param guild path string true "Subscriber community id"
// @Success 200 {object} map[string]interface{} "Report keys"
// @Failure 503 {object} map[string]string "Archive disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/{guild}/reports [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	guildID, err := utils.ParseSnowflake(c.Params("guild"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	archiver := h.service.Archiver()
	if archiver == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "report archive is disabled"})
	}

	keys, err := archiver.List(c.UserContext(), guildID)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"guild_id": guildID, "reports": keys})
}

// HandleGetReport returns one archived sweep report.
// @Summary Get Sweep Report
// @Description Downloads one archived sweep report by file name.
// @Tags sync
// @Security ApiKeyAuth
// @Produce json
// @Param guild path string true "Subscriber community id"
// @Param name path string true "Report file name"
// @Success 200 {object} reconcile.SweepReport
// @Failure 404 {object} map[string]string "Not found"
// @Failure 503 {object} map[string]string "Archive disabled"
// @Router /sync/{guild}/reports/{name} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	guildID, err := utils.ParseSnowflake(c.Params("guild"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	archiver := h.service.Archiver()
	if archiver == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "report archive is disabled"})
	}

	report, err := archiver.Load(c.UserContext(), guildID, c.Params("name"))
	if errors.Is(err, ErrReportNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to load report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
