// Package authhdl - handler HTTP cho domain auth.
package authhdl

import (
	"fmt"
	"time"

	"lead_center/internal/api/auth/dto"
	"lead_center/internal/api/auth/models"
	authsvc "lead_center/internal/api/auth/service"
	basehdl "lead_center/internal/api/base/handler"
	"lead_center/internal/api/middleware"
	"lead_center/internal/common"
	"lead_center/internal/global"
	"lead_center/internal/logger"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenCookieName là tên cookie chứa JWT phiên đăng nhập.
const TokenCookieName = "token"

// AuthHandler xử lý các route xác thực: đăng ký, đăng nhập, đăng xuất, thông tin cá nhân.
type AuthHandler struct {
	*basehdl.BaseHandler[models.User, dto.RegisterInput, dto.UserUpdateInput]
	Auth *authsvc.AuthService
}

// NewAuthHandler tạo AuthHandler với AuthService được cung cấp.
func NewAuthHandler(auth *authsvc.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: basehdl.NewBaseHandler[models.User, dto.RegisterInput, dto.UserUpdateInput](auth.UserCRUD),
		Auth:        auth,
	}
}

// setTokenCookie ghi JWT vào cookie HTTPOnly.
func setTokenCookie(c fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   global.MongoDB_ServerConfig.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// clearTokenCookie xóa cookie token.
func clearTokenCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   global.MongoDB_ServerConfig.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// HandleRegister đăng ký tài khoản mới.
// POST /api/v1/auth/register
func (h *AuthHandler) HandleRegister(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.RegisterInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu đăng ký không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		user, err := h.Auth.Register(c.Context(), input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		logger.LogAuth("register", c, fiber.Map{"email": user.Email})
		h.HandleResponse(c, authsvc.ToUserResponse(user), nil)
		return nil
	})
}

// HandleLogin đăng nhập, trả về JWT trong body và set cookie HTTPOnly.
// POST /api/v1/auth/login
func (h *AuthHandler) HandleLogin(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.LoginInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu đăng nhập không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.Auth.Login(c.Context(), input, c.Get("User-Agent"), c.IP())
		if err != nil {
			logger.LogAuth("login_failed", c, fiber.Map{"email": input.Email})
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogAuth("login", c, fiber.Map{"email": input.Email})
		setTokenCookie(c, result.Token, time.UnixMilli(result.ExpiresAt))
		h.HandleResponse(c, result, nil)
		return nil
	})
}

// HandleLogout hủy phiên hiện tại và xóa cookie.
// POST /api/v1/auth/logout
func (h *AuthHandler) HandleLogout(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		sessionID, _ := c.Locals("session_id").(string)
		if err := h.Auth.Logout(c.Context(), sessionID); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		logger.LogAuth("logout", c, nil)
		clearTokenCookie(c)
		h.HandleResponse(c, fiber.Map{"loggedOut": true}, nil)
		return nil
	})
}

// HandleMe trả về thông tin user của phiên hiện tại.
// GET /api/v1/auth/me
func (h *AuthHandler) HandleMe(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user, ok := c.Locals("user").(models.User)
		if !ok {
			h.HandleResponse(c, nil, common.ErrTokenInvalid)
			return nil
		}
		h.HandleResponse(c, authsvc.ToUserResponse(user), nil)
		return nil
	})
}

// HandleChangePassword đổi mật khẩu của user hiện tại.
// PUT /api/v1/auth/password
func (h *AuthHandler) HandleChangePassword(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userIDStr, _ := c.Locals("user_id").(string)
		userID, err := primitive.ObjectIDFromHex(userIDStr)
		if err != nil {
			h.HandleResponse(c, nil, common.ErrTokenInvalid)
			return nil
		}

		var input dto.ChangePasswordInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if err := h.Auth.ChangePassword(c.Context(), userID, input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogAuth("password_change", c, nil)
		middleware.InvalidateUserCache(userIDStr)
		clearTokenCookie(c)
		h.HandleResponse(c, fiber.Map{"changed": true}, nil)
		return nil
	})
}
