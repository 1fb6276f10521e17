package controller

import (
	"fmt"

	"policygen/internal/dto"
	"policygen/internal/pkg/serverutils"
	"policygen/internal/service"
	"policygen/pkg/wizard"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProjectController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type projectController struct {
	service service.IProjectService
}

func NewProjectController(service service.IProjectService) IProjectController {
	return &projectController{service: service}
}

func (c *projectController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/project/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
}

func (c *projectController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return wizard.ErrUnauthenticated
	}

	var req dto.GetAllProjectRequest
	if err := ctx.QueryParser(&req); err != nil {
		return &wizard.ValidationError{Field: "query", Message: "malformed query"}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetAll(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all project", res))
}

func (c *projectController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return wizard.ErrUnauthenticated
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fmt.Errorf("%w: %s", wizard.ErrNotFound, ctx.Params("id"))
	}

	res, err := c.service.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show project", res))
}
