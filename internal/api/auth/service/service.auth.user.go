package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lead_center/internal/api/auth/dto"
	"lead_center/internal/api/auth/models"
	basesvc "lead_center/internal/api/base/service"
	"lead_center/internal/common"
	"lead_center/internal/global"
	"lead_center/internal/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserService quản lý CRUD cho collection users.
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
}

// NewUserService tạo mới UserService với collection users từ registry.
func NewUserService() (*UserService, error) {
	collection, exists := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exists {
		return nil, fmt.Errorf("collection %s chưa được đăng ký", global.MongoDB_ColNames.Users)
	}
	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](collection),
	}, nil
}

// FindByEmail tìm user theo email (đã chuẩn hóa lowercase).
func (s *UserService) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}, nil)
}

// AuthService xử lý nghiệp vụ xác thực: đăng ký, đăng nhập, đăng xuất.
// SessionStore được inject khi khởi tạo để chọn backend lưu phiên qua cấu hình.
type AuthService struct {
	UserCRUD   *UserService
	Sessions   SessionStore
	SessionTTL time.Duration
}

// NewAuthService tạo AuthService với session store được inject.
func NewAuthService(store SessionStore) (*AuthService, error) {
	userService, err := NewUserService()
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(global.MongoDB_ServerConfig.SessionTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		UserCRUD:   userService,
		Sessions:   store,
		SessionTTL: ttl,
	}, nil
}

// Register đăng ký tài khoản mới với mật khẩu được hash bằng bcrypt.
// Email được chuẩn hóa lowercase và phải chưa tồn tại.
//
// Parameters:
// - ctx: Context cho request
// - input: Dữ liệu đăng ký đã validate
//
// Returns:
// - models.User: User đã tạo
// - error: common.ErrDuplicate nếu email đã tồn tại
func (s *AuthService) Register(ctx context.Context, input dto.RegisterInput) (models.User, error) {
	var zero models.User

	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.UserCRUD.DocumentExists(ctx, bson.M{"email": email})
	if err != nil {
		return zero, err
	}
	if exists {
		return zero, common.NewError(common.ErrCodeDatabaseQuery, "Email đã được sử dụng", common.StatusConflict, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return zero, common.NewError(common.ErrCodeInternalServer, "Không thể xử lý mật khẩu", common.StatusInternalServerError, err)
	}

	user := models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
		IsActive: true,
	}

	created, err := s.UserCRUD.InsertOne(ctx, user)
	if err != nil {
		return zero, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"log_type": "audit",
		"action":   "register",
		"user_id":  created.ID.Hex(),
		"email":    created.Email,
	}).Info("Đăng ký tài khoản mới")

	return created, nil
}

// Login xác thực email/mật khẩu, tạo phiên mới và ký JWT trỏ tới phiên đó.
//
// Parameters:
// - ctx: Context cho request
// - input: Thông tin đăng nhập
// - userAgent: User-Agent của client (lưu vào phiên)
// - ip: Địa chỉ IP của client
//
// Returns:
// - *dto.LoginResult: Token và thông tin user
// - error: common.ErrInvalidCredentials nếu sai thông tin, ErrUserBlocked nếu bị khóa
func (s *AuthService) Login(ctx context.Context, input dto.LoginInput, userAgent string, ip string) (*dto.LoginResult, error) {
	user, err := s.UserCRUD.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, common.ErrUserBlocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.SessionTTL)
	sessionID := uuid.NewString()

	session := models.Session{
		SessionID: sessionID,
		UserID:    user.ID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: primitive.NewDateTimeFromTime(expiresAt),
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}
	if err := s.Sessions.Put(ctx, session); err != nil {
		return nil, err
	}

	token, err := CreateSessionToken(sessionID, user.ID.Hex(), expiresAt)
	if err != nil {
		return nil, err
	}

	// Cập nhật lastLoginAt, lỗi không chặn đăng nhập
	_, _ = s.UserCRUD.UpdateById(ctx, user.ID, &basesvc.UpdateData{
		Set: map[string]interface{}{"lastLoginAt": now.UnixMilli()},
	})

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"log_type": "audit",
		"action":   "login",
		"user_id":  user.ID.Hex(),
		"ip":       ip,
	}).Info("Đăng nhập thành công")

	return &dto.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
		User:      ToUserResponse(user),
	}, nil
}

// Logout hủy phiên hiện tại. Phiên không tồn tại vẫn trả về thành công.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, sessionID)
}

// ChangePassword đổi mật khẩu sau khi xác thực mật khẩu cũ.
// Mọi phiên khác của user bị hủy để buộc đăng nhập lại.
func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, input dto.ChangePasswordInput) error {
	user, err := s.UserCRUD.FindOneById(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		return common.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.NewError(common.ErrCodeInternalServer, "Không thể xử lý mật khẩu", common.StatusInternalServerError, err)
	}

	if _, err := s.UserCRUD.UpdateById(ctx, userID, &basesvc.UpdateData{
		Set: map[string]interface{}{"password": string(hash)},
	}); err != nil {
		return err
	}

	if _, err := s.Sessions.DeleteByUser(ctx, userID); err != nil {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"user_id": userID.Hex(),
			"error":   err.Error(),
		}).Warn("Không thể hủy các phiên cũ sau khi đổi mật khẩu")
	}

	return nil
}

// ToUserResponse chuyển model User sang response không chứa thông tin nhạy cảm.
func ToUserResponse(user models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID.Hex(),
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
