package controller

import (
	"regulation-chat-be/internal/dto"
	"regulation-chat-be/internal/pkg/serverutils"
	"regulation-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	Run(ctx *fiber.Ctx) error
}

type ingestController struct {
	ingestService service.IIngestService
	corpusDir     string
}

func NewIngestController(ingestService service.IIngestService, corpusDir string) IIngestController {
	return &ingestController{
		ingestService: ingestService,
		corpusDir:     corpusDir,
	}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingest/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("run", c.Run)
}

func (c *ingestController) Run(ctx *fiber.Ctx) error {
	var req dto.RunIngestRequest
	if err := ctx.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return err
	}

	dir := req.Dir
	if dir == "" {
		dir = c.corpusDir
	}

	jobId, err := c.ingestService.Enqueue(ctx.Context(), dir)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Ingestion job queued", &dto.RunIngestResponse{
		JobId: jobId,
	}))
}
