package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackeval-go-api/internal/middleware"
	"github.com/noah-isme/hackeval-go-api/internal/service"
	"github.com/noah-isme/hackeval-go-api/internal/utils"
)

// HackathonHandler serves the hackathon read endpoints.
type HackathonHandler struct {
	service service.HackathonService
	logger  zerolog.Logger
}

// NewHackathonHandler builds a hackathon handler instance.
func NewHackathonHandler(service service.HackathonService, logger zerolog.Logger) *HackathonHandler {
	return &HackathonHandler{
		service: service,
		logger:  logger.With().Str("component", "hackathon_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *HackathonHandler) Register(router fiber.Router) {
	router.Get("/:id/results", h.results)
	router.Get("/:id/insights", h.insights)
}

func (h *HackathonHandler) results(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	results, err := h.service.Results(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *HackathonHandler) insights(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	insights, err := h.service.Insights(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "insights retrieved", insights)
}

func (h *HackathonHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrHackathonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "hackathon not found")
	case errors.Is(err, service.ErrResultsNotPublished):
		return utils.SendError(c, fiber.StatusConflict, "results are not published yet")
	default:
		h.logger.Error().
			Err(err).
			Str("correlation_id", middleware.GetCorrelationID(c)).
			Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
