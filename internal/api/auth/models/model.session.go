package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session định nghĩa một phiên đăng nhập của người dùng.
// SessionID là UUID được nhúng vào JWT; ExpiresAt dùng TTL index để MongoDB
// tự dọn các phiên hết hạn (store in-memory có sweep worker riêng).
type Session struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID string             `json:"sessionId" bson:"sessionId" index:"unique"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId" index:"single:1"`
	UserAgent string             `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	IP        string             `json:"ip,omitempty" bson:"ip,omitempty"`
	ExpiresAt primitive.DateTime `json:"expiresAt" bson:"expiresAt" index:"ttl:0"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}

// IsExpired kiểm tra phiên đã hết hạn so với mốc thời gian nowMilli chưa.
func (s *Session) IsExpired(nowMilli int64) bool {
	return int64(s.ExpiresAt) <= nowMilli
}
