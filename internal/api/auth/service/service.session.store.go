// Package authsvc - service cho domain auth: người dùng, phiên đăng nhập, token.
package authsvc

import (
	"context"
	"sync"
	"time"

	"lead_center/internal/api/auth/models"
	"lead_center/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStore trừu tượng hóa nơi lưu phiên đăng nhập.
// Store được inject vào AuthService khi khởi tạo, cho phép chọn backend
// (in-memory hoặc MongoDB) qua cấu hình mà không đổi logic xác thực.
type SessionStore interface {
	// Put lưu hoặc ghi đè một phiên theo SessionID.
	Put(ctx context.Context, session models.Session) error
	// Get trả về phiên theo SessionID, common.ErrNotFound nếu không tồn tại.
	Get(ctx context.Context, sessionID string) (models.Session, error)
	// Delete xóa một phiên theo SessionID. Xóa phiên không tồn tại không phải lỗi.
	Delete(ctx context.Context, sessionID string) error
	// DeleteByUser xóa toàn bộ phiên của một user, trả về số phiên đã xóa.
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// Sweep xóa các phiên đã hết hạn, trả về số phiên đã dọn.
	Sweep(ctx context.Context) (int64, error)
}

// MemorySessionStore lưu phiên trong bộ nhớ process, bảo vệ bằng RWMutex.
// Dùng cho single-instance deployment; phiên mất khi restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewMemorySessionStore tạo mới một MemorySessionStore rỗng.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.Session),
	}
}

// Put lưu phiên theo SessionID.
func (s *MemorySessionStore) Put(ctx context.Context, session models.Session) error {
	if session.SessionID == "" {
		return common.ErrRequiredField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session
	return nil
}

// Get trả về phiên theo SessionID.
func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return models.Session{}, common.ErrNotFound
	}
	return session, nil
}

// Delete xóa phiên theo SessionID.
func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// DeleteByUser xóa toàn bộ phiên của một user.
func (s *MemorySessionStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// Sweep xóa các phiên đã hết hạn.
func (s *MemorySessionStore) Sweep(ctx context.Context) (int64, error) {
	now := time.Now().UnixMilli()
	s.mu.Lock()
	defer s.mu.Unlock()
	var swept int64
	for id, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, id)
			swept++
		}
	}
	return swept, nil
}

// Len trả về số phiên hiện có trong store (phục vụ giám sát và test).
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
