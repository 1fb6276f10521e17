package controller

import (
	"fmt"

	"policygen/internal/dto"
	"policygen/internal/pkg/serverutils"
	"policygen/internal/service"
	"policygen/pkg/gist"
	"policygen/pkg/wizard"

	"github.com/gofiber/fiber/v2"
)

type IWizardController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Next(ctx *fiber.Ctx) error
	Back(ctx *fiber.Ctx) error
	Restart(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Documents(ctx *fiber.Ctx) error
	Document(ctx *fiber.Ctx) error
	DownloadDocument(ctx *fiber.Ctx) error
	DownloadArchive(ctx *fiber.Ctx) error
	PublishGist(ctx *fiber.Ctx) error
}

type wizardController struct {
	service service.IWizardService
}

func NewWizardController(service service.IWizardService) IWizardController {
	return &wizardController{service: service}
}

func (c *wizardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/wizard/v1/sessions")
	h.Use(serverutils.OptionalIdentity)
	h.Post("", c.Start)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Close)
	h.Post(":id/next", c.Next)
	h.Post(":id/back", c.Back)
	h.Post(":id/restart", c.Restart)
	h.Post(":id/generate", c.Generate)
	h.Post(":id/save", c.Save)
	h.Get(":id/documents", c.Documents)
	h.Get(":id/documents/download", c.DownloadArchive)
	h.Get(":id/documents/:kind", c.Document)
	h.Get(":id/documents/:kind/download", c.DownloadDocument)
	h.Post(":id/documents/:kind/gist", c.PublishGist)
}

// callerID is the authenticated user id, empty for anonymous callers.
func callerID(ctx *fiber.Ctx) string {
	if auth, ok := serverutils.CurrentIdentity(ctx).(serverutils.Authenticated); ok {
		return auth.UserID
	}
	return ""
}

func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.BodyParser(out); err != nil {
		return &wizard.ValidationError{Field: "body", Message: "malformed request body"}
	}
	return nil
}

func (c *wizardController) Start(ctx *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Start(ctx.UserContext(), callerID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start wizard session", res))
}

func (c *wizardController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), callerID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show wizard session", res))
}

func (c *wizardController) Next(ctx *fiber.Ctx) error {
	var patch wizard.Patch
	if err := parseBody(ctx, &patch); err != nil {
		return err
	}

	res, err := c.service.Next(ctx.UserContext(), callerID(ctx), ctx.Params("id"), patch)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success advance wizard", res))
}

func (c *wizardController) Back(ctx *fiber.Ctx) error {
	res, err := c.service.Back(ctx.UserContext(), callerID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success go back", res))
}

func (c *wizardController) Restart(ctx *fiber.Ctx) error {
	res, err := c.service.Restart(ctx.UserContext(), callerID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success restart wizard", res))
}

func (c *wizardController) Close(ctx *fiber.Ctx) error {
	if err := c.service.Close(ctx.UserContext(), callerID(ctx), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success close wizard", nil))
}

func (c *wizardController) Generate(ctx *fiber.Ctx) error {
	res, err := c.service.Generate(ctx.UserContext(), callerID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate documents", res))
}

func (c *wizardController) Save(ctx *fiber.Ctx) error {
	if _, err := serverutils.RequireAuthenticated(ctx); err != nil {
		return err
	}

	res, err := c.service.Save(ctx.UserContext(), callerID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save project", res))
}

func (c *wizardController) Documents(ctx *fiber.Ctx) error {
	res, err := c.service.Documents(ctx.UserContext(), callerID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get documents", res))
}

// Document returns the raw Markdown of one document, ready for the clipboard.
func (c *wizardController) Document(ctx *fiber.Ctx) error {
	_, content, err := c.service.Document(ctx.UserContext(), callerID(ctx), ctx.Params("id"), ctx.Params("kind"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return ctx.SendString(content)
}

func (c *wizardController) DownloadDocument(ctx *fiber.Ctx) error {
	kind, content, err := c.service.Document(ctx.UserContext(), callerID(ctx), ctx.Params("id"), ctx.Params("kind"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", gist.FileName(kind)))
	return ctx.SendString(content)
}

func (c *wizardController) DownloadArchive(ctx *fiber.Ctx) error {
	name, data, err := c.service.Archive(ctx.UserContext(), callerID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/zip")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return ctx.Send(data)
}

func (c *wizardController) PublishGist(ctx *fiber.Ctx) error {
	res, err := c.service.PublishGist(ctx.UserContext(), callerID(ctx), ctx.Params("id"), ctx.Params("kind"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success publish gist", res))
}
