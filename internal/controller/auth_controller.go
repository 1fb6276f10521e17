package controller

import (
	"net/url"

	"policygen/internal/dto"
	"policygen/internal/pkg/serverutils"
	"policygen/internal/service"
	"policygen/pkg/wizard"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type authController struct {
	service   service.IAuthService
	clientURL string
}

// NewAuthController redirects successful logins to clientURL with the token
// in the query string. Without a client URL the login response is returned
// as JSON.
func NewAuthController(service service.IAuthService, clientURL string) IAuthController {
	return &authController{service: service, clientURL: clientURL}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Get("/google/login", c.Login)
	h.Get("/google/callback", c.Callback)
	h.Get("/me", serverutils.JwtMiddleware, c.Me)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	res, err := c.service.GetLoginURL()
	if err != nil {
		return err
	}

	if ctx.Query("redirect") == "false" {
		return ctx.JSON(serverutils.SuccessResponse("Success get login url", res))
	}
	return ctx.Redirect(res.URL)
}

func (c *authController) Callback(ctx *fiber.Ctx) error {
	var req dto.OAuthCallbackRequest
	if err := ctx.QueryParser(&req); err != nil {
		return &wizard.ValidationError{Field: "code", Message: "malformed callback"}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.HandleCallback(ctx.UserContext(), req.Code)
	if err != nil {
		return err
	}

	if c.clientURL == "" {
		return ctx.JSON(serverutils.SuccessResponse("Success login", res))
	}

	q := url.Values{}
	q.Set("token", res.AccessToken)
	return ctx.Redirect(c.clientURL + "/auth/callback?" + q.Encode())
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return wizard.ErrUnauthenticated
	}

	res, err := c.service.Me(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get current user", res))
}
