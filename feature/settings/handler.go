package settings

import (
	"guild-sync/core/logger"
	"guild-sync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for community settings.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the settings routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/settings")
	group.Get("/:guild", h.HandleShow)
	group.Put("/:guild/switches/:switch", h.HandleSetSwitch)
	group.Put("/:guild/verified", h.HandleSetVerified)
	group.Put("/:guild/roles/:alias", h.HandleBindRole)
	group.Delete("/:guild/roles/:alias", h.HandleUnbindRole)
}

// ValueRequest carries a boolean setting value.
type ValueRequest struct {
	Value *bool `json:"value"`
}

// BindRequest carries the local role of a binding.
type BindRequest struct {
	RoleID string `json:"role_id"`
}

// HandleShow returns the settings of a community.
// @Summary Show Settings
// @Description Returns verification, switches and role bindings of a subscriber community, with accessibility flags.
// @Tags settings
// @Security ApiKeyAuth
// @Produce json
// @Param guild path string true "Subscriber community id"
// @Success 200 {object} View
// @Failure 400 {object} map[string]string "Invalid id"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /settings/{guild} [get]
func (h *Handler) HandleShow(c *fiber.Ctx) error {
	guildID, err := utils.ParseSnowflake(c.Params("guild"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	view, err := h.service.Show(c.UserContext(), guildID)
	return h.respond(c, view, err)
}

// HandleSetSwitch changes one switch.
// @Summary Set Switch
// @Description Turns a sync switch on or off. Verified-only switches are rejected in unverified communities.
// @Tags settings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param guild path string true "Subscriber community id"
// @Param switch path string true "Switch alias" Enums(whitelist, sync_roles, sync_nicknames, sync_bans, use_api)
// @Param body body ValueRequest true "New value"
// @Success 200 {object} View
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /settings/{guild}/switches/{switch} [put]
func (h *Handler) HandleSetSwitch(c *fiber.Ctx) error {
	guildID, value, err := h.parseValue(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	view, err := h.service.SetSwitch(c.UserContext(), guildID, c.Params("switch"), value)
	return h.respond(c, view, err)
}

// HandleSetVerified marks or unmarks a community as verified.
// @Summary Set Verification
// @Description Marks or unmarks a subscriber community as verified.
// @Tags settings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param guild path string true "Subscriber community id"
// @Param body body ValueRequest true "New value"
// @Success 200 {object} View
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /settings/{guild}/verified [put]
func (h *Handler) HandleSetVerified(c *fiber.Ctx) error {
	guildID, value, err := h.parseValue(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	view, err := h.service.SetVerified(c.UserContext(), guildID, value)
	return h.respond(c, view, err)
}

// HandleBindRole binds a local role to a donor role alias.
// @Summary Bind Role
// @Description Binds a local role to a donor role alias.
// @Tags settings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param guild path string true "Subscriber community id"
// @Param alias path string true "Donor role alias"
// @Param body body BindRequest true "Local role"
// @Success 200 {object} View
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /settings/{guild}/roles/{alias} [put]
func (h *Handler) HandleBindRole(c *fiber.Ctx) error {
	guildID, err := utils.ParseSnowflake(c.Params("guild"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var req BindRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	view, err := h.service.BindRole(c.UserContext(), guildID, c.Params("alias"), req.RoleID)
	return h.respond(c, view, err)
}

// HandleUnbindRole removes a role binding.
// @Summary Unbind Role
// @Description Removes the local role bound to a donor role alias.
// @Tags settings
// @Security ApiKeyAuth
// @Produce json
// @Param guild path string true "Subscriber community id"
// @Param alias path string true "Donor role alias"
// @Success 200 {object} View
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /settings/{guild}/roles/{alias} [delete]
func (h *Handler) HandleUnbindRole(c *fiber.Ctx) error {
	guildID, err := utils.ParseSnowflake(c.Params("guild"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	view, err := h.service.UnbindRole(c.UserContext(), guildID, c.Params("alias"))
	return h.respond(c, view, err)
}

func (h *Handler) parseValue(c *fiber.Ctx) (string, bool, error) {
	guildID, err := utils.ParseSnowflake(c.Params("guild"))
	if err != nil {
		return "", false, err
	}
	var req ValueRequest
	if err := c.BodyParser(&req); err != nil || req.Value == nil {
		return "", false, fiber.NewError(fiber.StatusBadRequest, "body must be {\"value\": true|false}")
	}
	return guildID, *req.Value, nil
}

func (h *Handler) respond(c *fiber.Ctx, view *View, err error) error {
	if err == nil {
		return c.JSON(view)
	}
	if IsClientError(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error("Settings request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
