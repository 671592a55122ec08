package handler

import (
	"github.com/gofiber/fiber/v2"

	"docqa/internal/service"
)

// credentials is accepted as JSON or form data.
type credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" form:"refresh"`
}

// Register creates an account.
//
// @Summary  Register a user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body credentials true "username and password"
// @Success  201 {object} map[string]string
// @Failure  400 {object} errorPayload
// @Router   /api/register [post]
func Register(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in credentials
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", service.ErrCredentialsRequired.Error())
		}
		if _, err := svc.Register(c.UserContext(), in.Username, in.Password); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created successfully"})
	}
}

// ObtainToken exchanges credentials for an access/refresh pair.
//
// @Summary  Obtain a token pair
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body credentials true "username and password"
// @Success  200 {object} auth.TokenPair
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Router   /api/token [post]
func ObtainToken(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in credentials
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", service.ErrCredentialsRequired.Error())
		}
		pair, err := svc.Login(c.UserContext(), in.Username, in.Password)
		if err != nil {
			return err
		}
		return c.JSON(pair)
	}
}

// RefreshToken issues a new access token.
//
// @Summary  Refresh an access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body refreshRequest true "refresh token"
// @Success  200 {object} map[string]string
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Router   /api/token/refresh [post]
func RefreshToken(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in refreshRequest
		if err := c.BodyParser(&in); err != nil || in.Refresh == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "refresh is required")
		}
		access, err := svc.Refresh(c.UserContext(), in.Refresh)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"access": access})
	}
}
