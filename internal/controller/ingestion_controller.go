package controller

import (
	"github.com/gofiber/fiber/v2"

	"chatbot-knowledge-be/internal/pkg/serverutils"
	"chatbot-knowledge-be/internal/service"
)

type IIngestionController interface {
	RegisterRoutes(r fiber.Router)
	Run(ctx *fiber.Ctx) error
}

type ingestionController struct {
	ingestionService service.IIngestionService
}

func NewIngestionController(ingestionService service.IIngestionService) IIngestionController {
	return &ingestionController{
		ingestionService: ingestionService,
	}
}

func (c *ingestionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingestion")
	h.Post("run", c.Run)
}

// Run executes one synchronous pass over pending documents. Per-document
// failures land in the counts, not in the HTTP status.
func (c *ingestionController) Run(ctx *fiber.Ctx) error {
	res, err := c.ingestionService.ProcessPending(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Ingestion run complete", res))
}
