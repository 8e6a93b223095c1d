package authsvc

import (
	"errors"
	"time"

	"lead_center/internal/common"
	"lead_center/internal/global"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims là payload của JWT: định danh phiên và user.
// Token chỉ là con trỏ tới phiên; trạng thái thực nằm trong SessionStore
// nên logout có hiệu lực ngay lập tức.
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	jwt.RegisteredClaims
}

// CreateSessionToken ký một JWT HS256 chứa sessionID/userID với thời hạn cho trước.
//
// Parameters:
// - sessionID: UUID của phiên
// - userID: Hex ObjectID của user
// - expiresAt: Thời điểm hết hạn
//
// Returns:
// - string: Token đã ký
// - error: Lỗi nếu có
func CreateSessionToken(sessionID string, userID string, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(global.MongoDB_ServerConfig.JwtSecret))
	if err != nil {
		return "", common.NewError(common.ErrCodeAuthToken, "Không thể tạo token", common.StatusInternalServerError, err)
	}
	return signed, nil
}

// ParseSessionToken xác thực chữ ký và thời hạn của token, trả về claims.
// Token hết hạn trả về common.ErrTokenExpired, các lỗi khác trả về ErrTokenInvalid.
func ParseSessionToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(global.MongoDB_ServerConfig.JwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}
	if !token.Valid || claims.SessionID == "" || claims.UserID == "" {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}
