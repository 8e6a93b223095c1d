package authsvc

import (
	"errors"
	"testing"
	"time"

	"lead_center/config"
	"lead_center/internal/common"
	"lead_center/internal/global"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setTestJwtSecret(t *testing.T, secret string) {
	t.Helper()
	prev := global.MongoDB_ServerConfig
	global.MongoDB_ServerConfig = &config.Configuration{JwtSecret: secret}
	t.Cleanup(func() { global.MongoDB_ServerConfig = prev })
}

func TestSessionToken_RoundTrip(t *testing.T) {
	setTestJwtSecret(t, "test-secret")

	userID := primitive.NewObjectID().Hex()
	token, err := CreateSessionToken("sid-123", userID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-123", claims.SessionID)
	assert.Equal(t, userID, claims.UserID)
}

func TestSessionToken_Expired(t *testing.T) {
	setTestJwtSecret(t, "test-secret")

	token, err := CreateSessionToken("sid-123", "uid", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = ParseSessionToken(token)
	assert.True(t, errors.Is(err, common.ErrTokenExpired), "token hết hạn phải trả về ErrTokenExpired, got: %v", err)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	setTestJwtSecret(t, "secret-a")
	token, err := CreateSessionToken("sid-123", "uid", time.Now().Add(time.Hour))
	require.NoError(t, err)

	setTestJwtSecret(t, "secret-b")
	_, err = ParseSessionToken(token)
	assert.True(t, errors.Is(err, common.ErrTokenInvalid), "token ký sai secret phải bị từ chối")
}

func TestSessionToken_Garbage(t *testing.T) {
	setTestJwtSecret(t, "test-secret")
	_, err := ParseSessionToken("not.a.jwt")
	assert.True(t, errors.Is(err, common.ErrTokenInvalid))
}

func TestSessionToken_EmptyClaims(t *testing.T) {
	setTestJwtSecret(t, "test-secret")

	// Token hợp lệ nhưng thiếu sid/uid không được chấp nhận
	token, err := CreateSessionToken("", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = ParseSessionToken(token)
	assert.True(t, errors.Is(err, common.ErrTokenInvalid))
}
