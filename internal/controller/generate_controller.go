package controller

import (
	"policygen/internal/dto"
	"policygen/internal/pkg/serverutils"
	"policygen/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGenerateController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
}

type generateController struct {
	service service.IGenerateService
}

func NewGenerateController(service service.IGenerateService) IGenerateController {
	return &generateController{service: service}
}

func (c *generateController) RegisterRoutes(r fiber.Router) {
	r.Post("/generate", serverutils.OptionalIdentity, c.Generate)
}

// Generate answers with the bare {documents} or {error} body used by the
// front end's generation client, not the standard envelope.
func (c *generateController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.fail(ctx, fiber.StatusBadRequest, "malformed request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return c.fail(ctx, fiber.StatusBadRequest, err.Error())
	}

	res, err := c.service.Generate(ctx.UserContext(), callerID(ctx), *req.Answers)
	if err != nil {
		code := serverutils.StatusFor(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			message = "internal server error"
		}
		return c.fail(ctx, code, message)
	}

	return ctx.JSON(res)
}

func (c *generateController) fail(ctx *fiber.Ctx, code int, message string) error {
	return ctx.Status(code).JSON(dto.GenerateErrorResponse{Error: message})
}
