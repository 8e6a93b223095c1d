package authhdl

import (
	"fmt"
	"strings"

	"lead_center/internal/api/auth/dto"
	"lead_center/internal/api/auth/models"
	authsvc "lead_center/internal/api/auth/service"
	basehdl "lead_center/internal/api/base/handler"
	"lead_center/internal/common"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler cung cấp CRUD quản trị trên collection users.
// Các thao tác list/get/update/delete dùng lại BaseHandler; riêng tạo user
// cần hash mật khẩu nên có handler riêng.
type UserHandler struct {
	*basehdl.BaseHandler[models.User, dto.UserCreateInput, dto.UserUpdateInput]
	Auth *authsvc.AuthService
}

// NewUserHandler tạo UserHandler với AuthService được cung cấp.
func NewUserHandler(auth *authsvc.AuthService) *UserHandler {
	return &UserHandler{
		BaseHandler: basehdl.NewBaseHandler[models.User, dto.UserCreateInput, dto.UserUpdateInput](auth.UserCRUD),
		Auth:        auth,
	}
}

// HandleCreateUser tạo user mới với mật khẩu được hash bằng bcrypt.
// POST /api/v1/users
func (h *UserHandler) HandleCreateUser(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.UserCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeInternalServer, "Không thể xử lý mật khẩu", common.StatusInternalServerError, err))
			return nil
		}

		role := input.Role
		if role == "" {
			role = models.RoleUser
		}

		user := models.User{
			Name:     strings.TrimSpace(input.Name),
			Email:    strings.ToLower(strings.TrimSpace(input.Email)),
			Password: string(hash),
			Role:     role,
			IsActive: input.IsActive,
		}

		created, err := h.Auth.UserCRUD.InsertOne(c.Context(), user)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, authsvc.ToUserResponse(created), nil)
		return nil
	})
}
