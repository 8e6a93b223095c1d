package authsvc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lead_center/internal/api/auth/models"
	"lead_center/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestSession(sessionID string, userID primitive.ObjectID, ttl time.Duration) models.Session {
	return models.Session{
		SessionID: sessionID,
		UserID:    userID,
		ExpiresAt: primitive.NewDateTimeFromTime(time.Now().Add(ttl)),
	}
}

func TestMemorySessionStore_PutGet(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	session := newTestSession("sid-1", userID, time.Hour)
	require.NoError(t, store.Put(ctx, session))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "sid-1", got.SessionID)
	assert.Equal(t, userID, got.UserID)

	// Put ghi đè phiên cùng SessionID
	session.IP = "10.0.0.1"
	require.NoError(t, store.Put(ctx, session))
	got, err = store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", got.IP)
	assert.Equal(t, 1, store.Len())
}

func TestMemorySessionStore_PutRequiresSessionID(t *testing.T) {
	store := NewMemorySessionStore()
	err := store.Put(context.Background(), models.Session{})
	assert.Error(t, err, "phiên không có SessionID phải bị từ chối")
}

func TestMemorySessionStore_GetMissing(t *testing.T) {
	store := NewMemorySessionStore()
	_, err := store.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound), "phiên không tồn tại phải trả về ErrNotFound")
}

func TestMemorySessionStore_DeleteIdempotent(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, newTestSession("sid-1", primitive.NewObjectID(), time.Hour)))

	require.NoError(t, store.Delete(ctx, "sid-1"))
	_, err := store.Get(ctx, "sid-1")
	assert.Error(t, err)

	// Xóa lần hai không phải lỗi
	assert.NoError(t, store.Delete(ctx, "sid-1"))
}

func TestMemorySessionStore_DeleteByUser(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	require.NoError(t, store.Put(ctx, newTestSession("a-1", userA, time.Hour)))
	require.NoError(t, store.Put(ctx, newTestSession("a-2", userA, time.Hour)))
	require.NoError(t, store.Put(ctx, newTestSession("b-1", userB, time.Hour)))

	deleted, err := store.DeleteByUser(ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// Phiên của user khác không bị ảnh hưởng
	_, err = store.Get(ctx, "b-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestMemorySessionStore_Sweep(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	require.NoError(t, store.Put(ctx, newTestSession("expired-1", userID, -time.Minute)))
	require.NoError(t, store.Put(ctx, newTestSession("expired-2", userID, -time.Hour)))
	require.NoError(t, store.Put(ctx, newTestSession("alive", userID, time.Hour)))

	swept, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), swept)

	_, err = store.Get(ctx, "alive")
	assert.NoError(t, err, "phiên còn hạn không được bị quét")
	assert.Equal(t, 1, store.Len())
}

func TestMemorySessionStore_ConcurrentAccess(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sid := fmt.Sprintf("sid-%d", n)
			_ = store.Put(ctx, newTestSession(sid, userID, time.Hour))
			_, _ = store.Get(ctx, sid)
			if n%2 == 0 {
				_ = store.Delete(ctx, sid)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, store.Len(), "chỉ các phiên lẻ còn lại sau khi xóa song song")
}
