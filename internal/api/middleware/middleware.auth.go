package middleware

import (
	"strings"
	"time"

	"lead_center/internal/api/auth/models"
	authsvc "lead_center/internal/api/auth/service"
	"lead_center/internal/common"
	"lead_center/internal/logger"
	"lead_center/internal/utility"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userCache giảm số lần query user trên mỗi request đã xác thực.
// TTL ngắn để thay đổi trạng thái (khóa tài khoản, đổi role) có hiệu lực nhanh.
var userCache = utility.NewCache(1*time.Minute, 5*time.Minute)

// extractToken lấy JWT từ cookie "token" hoặc header Authorization (Bearer).
// Cookie được ưu tiên vì là kênh chính của web client.
func extractToken(c fiber.Ctx) string {
	if token := c.Cookies("token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// loadUser lấy user theo ID, ưu tiên cache.
func loadUser(c fiber.Ctx, auth *authsvc.AuthService, userIDHex string) (models.User, error) {
	cacheKey := "auth_user:" + userIDHex
	if cached, found := userCache.Get(cacheKey); found {
		if user, ok := cached.(models.User); ok {
			return user, nil
		}
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return models.User{}, common.ErrTokenInvalid
	}
	user, err := auth.UserCRUD.FindOneById(c.Context(), userID)
	if err != nil {
		return models.User{}, common.ErrUserNotFound
	}

	userCache.Set(cacheKey, user)
	return user, nil
}

// AuthMiddleware xác thực request bằng JWT phiên đăng nhập.
// Token được parse và đối chiếu với SessionStore: phiên không tồn tại hoặc
// hết hạn đều bị từ chối, nên logout có hiệu lực ngay cả khi JWT còn hạn.
// Thông tin user được lưu vào context: user_id, user, session_id.
func AuthMiddleware(auth *authsvc.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("Thiếu token xác thực")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		claims, err := authsvc.ParseSessionToken(token)
		if err != nil {
			HandleErrorResponse(c, err)
			return nil
		}

		session, err := auth.Sessions.Get(c.Context(), claims.SessionID)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":       c.Path(),
				"session_id": claims.SessionID,
			}).Warn("Phiên đăng nhập không tồn tại")
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		if session.IsExpired(time.Now().UnixMilli()) {
			// Dọn luôn phiên hết hạn thay vì đợi sweep
			_ = auth.Sessions.Delete(c.Context(), claims.SessionID)
			HandleErrorResponse(c, common.ErrTokenExpired)
			return nil
		}

		user, err := loadUser(c, auth, claims.UserID)
		if err != nil {
			HandleErrorResponse(c, err)
			return nil
		}

		if !user.IsActive {
			HandleErrorResponse(c, common.ErrUserBlocked)
			return nil
		}

		c.Locals("user_id", user.ID.Hex())
		c.Locals("user", user)
		c.Locals("session_id", session.SessionID)

		return c.Next()
	}
}

// RequireAdmin chặn các route chỉ dành cho admin.
// Phải đặt sau AuthMiddleware trong chuỗi middleware.
func RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		user, ok := c.Locals("user").(models.User)
		if !ok {
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}
		if !user.IsAdmin() {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"user_id": user.ID.Hex(),
				"path":    c.Path(),
			}).Warn("Từ chối truy cập route quản trị")
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthRole,
				"Chỉ quản trị viên mới được thực hiện thao tác này",
				common.StatusForbidden,
				nil,
			))
			return nil
		}
		return c.Next()
	}
}

// InvalidateUserCache xóa cache user sau khi cập nhật (đổi role, khóa tài khoản).
func InvalidateUserCache(userIDHex string) {
	userCache.Delete("auth_user:" + userIDHex)
}
