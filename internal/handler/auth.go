package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/expomatch/server/internal/config"
	"github.com/expomatch/server/internal/middleware"
	"github.com/expomatch/server/internal/model"
	"github.com/expomatch/server/internal/repository"
	"github.com/expomatch/server/internal/utils"
)

// UserStore is the slice of the user repository the auth endpoints need.
// *repository.UserRepo satisfies it; tests substitute an in-memory store.
type UserStore interface {
	Create(ctx context.Context, nu repository.NewUser, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"role" validate:"required,oneof=organizer vendor"`
	Phone    *string `json:"phone"`
	Bio      *string `json:"bio"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account and returns its public summary.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, repository.NewUser{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
		Bio:      req.Bio,
	}, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		c.Logger().Errorf("register: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"user": model.User{
		ID:    uid,
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  req.Role,
		Phone: req.Phone,
		Bio:   req.Bio,
	}})
}

// Login verifies credentials and issues the access token. Unknown email
// and wrong password answer with the exact same body so a caller cannot
// tell which check failed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		c.Logger().Errorf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Claims{
		UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
	}, h.Cfg.TokenTTLHours)
	if err != nil {
		c.Logger().Errorf("login: sign token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":   token.Token,
		"expires": token.Exp,
		"user":    publicUser(u),
	})
}

// Profile returns a fresh read of the authenticated user.
func (h *AuthHandler) Profile(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.Identity(c).UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("profile: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile lookup failed"})
	}
	return c.JSON(http.StatusOK, publicUser(u))
}

func publicUser(u repository.User) model.User {
	return model.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Phone:     u.Phone,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}
