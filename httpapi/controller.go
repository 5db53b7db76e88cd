// Package httpapi exposes the account operations over HTTP with fiber.
package httpapi

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	accounts "github.com/goliatone/go-accounts"
)

// Service is the account surface the controller drives. *accounts.Auther
// satisfies it.
type Service interface {
	Register(ctx context.Context, email, password string) (*accounts.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
	Current(ctx context.Context, token string) (*accounts.Principal, error)
	Activate(ctx context.Context, token string) (*accounts.Account, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*accounts.Account, error)
	RequestPasswordReset(ctx context.Context, email string) error
}

type Routes struct {
	Users                string
	Login                string
	Me                   string
	Activate             string
	PasswordReset        string
	PasswordResetRequest string
	Ping                 string
}

// Controller maps account routes to Service calls.
type Controller struct {
	Routes     *Routes
	service    Service
	logger     accounts.Logger
	extractors []TokenExtractor
}

func NewController(service Service) *Controller {
	return &Controller{
		Routes: &Routes{
			Users:                "/users",
			Login:                "/auth/login",
			Me:                   "/auth/me",
			Activate:             "/auth/activate",
			PasswordReset:        "/auth/password-reset",
			PasswordResetRequest: "/auth/password-reset-request",
			Ping:                 "/ping",
		},
		service:    service,
		logger:     accounts.NewSlogLogger(nil),
		extractors: GetExtractors(DefaultTokenLookup),
	}
}

func (h *Controller) WithLogger(logger accounts.Logger) *Controller {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithTokenLookup replaces where bearer tokens are read from.
func (h *Controller) WithTokenLookup(lookup string, authSchemes ...string) *Controller {
	h.extractors = GetExtractors(lookup, authSchemes...)
	return h
}

// Register mounts the routes on r.
func (h *Controller) Register(r fiber.Router) {
	r.Get(h.Routes.Ping, h.Ping)
	r.Post(h.Routes.Users, h.CreateUser)
	r.Get(h.Routes.Login, h.Login)
	r.Get(h.Routes.Me, h.Me)
	r.Put(h.Routes.Activate, h.Activate)
	r.Put(h.Routes.PasswordReset, h.PasswordReset)
	r.Post(h.Routes.PasswordResetRequest, h.PasswordResetRequest)
}

// NewApp returns a fiber app with the controller mounted and the account
// error handler installed.
func NewApp(h *Controller) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(h.logger),
	})
	h.Register(app)
	return app
}

type CreateUserPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (p CreateUserPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

type PasswordResetRequestPayload struct {
	Email string `json:"email" form:"email"`
}

type PasswordResetPayload struct {
	Password string `json:"password" form:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type accountResponse struct {
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

type activationResponse struct {
	Active bool `json:"active"`
}

func (h *Controller) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Controller) CreateUser(c *fiber.Ctx) error {
	payload := new(CreateUserPayload)
	if err := c.BodyParser(payload); err != nil {
		h.logger.Debug("create user parse payload", "error", err)
		return fiber.ErrBadRequest
	}

	if err := payload.Validate(); err != nil {
		return accounts.NewValidationError(err)
	}

	account, err := h.service.Register(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"email": account.Email})
}

func (h *Controller) Login(c *fiber.Ctx) error {
	email, password, err := basicCredentials(c)
	if err != nil {
		return err
	}

	token, err := h.service.Login(c.UserContext(), email, password)
	if err != nil {
		return err
	}

	return c.JSON(tokenResponse{Token: token})
}

func (h *Controller) Me(c *fiber.Ctx) error {
	token, err := ExtractToken(c, h.extractors)
	if err != nil {
		return err
	}

	principal, err := h.service.Current(c.UserContext(), token)
	if err != nil {
		return err
	}

	return c.JSON(accountResponse{Email: principal.Email, Active: principal.Account.Active})
}

func (h *Controller) Activate(c *fiber.Ctx) error {
	token, err := ExtractToken(c, h.extractors)
	if err != nil {
		return err
	}

	account, err := h.service.Activate(c.UserContext(), token)
	if err != nil {
		return err
	}

	return c.JSON(activationResponse{Active: account.Active})
}

func (h *Controller) PasswordReset(c *fiber.Ctx) error {
	token, err := ExtractToken(c, h.extractors)
	if err != nil {
		return err
	}

	payload := new(PasswordResetPayload)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			h.logger.Debug("password reset parse payload", "error", err)
			return fiber.ErrBadRequest
		}
	}

	account, err := h.service.ResetPassword(c.UserContext(), token, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(accountResponse{Email: account.Email, Active: account.Active})
}

// PasswordResetRequest always answers 200 so callers cannot probe which
// accounts exist.
func (h *Controller) PasswordResetRequest(c *fiber.Ctx) error {
	payload := new(PasswordResetRequestPayload)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			h.logger.Debug("password reset request parse payload", "error", err)
		}
	}

	if payload.Email != "" {
		if err := h.service.RequestPasswordReset(c.UserContext(), payload.Email); err != nil {
			h.logger.Error("password reset request failed", "error", err)
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
