// Package models - các model thuộc domain auth (User, Session).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các role hợp lệ của người dùng.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User định nghĩa mô hình người dùng.
// Password chứa bcrypt hash, không bao giờ được serialize ra JSON.
// Quan hệ với leads (assignedTo) được khai báo để chặn xóa user còn lead đang gán.
type User struct {
	_Relationships struct{}           `relationship:"collection:leads,field:assignedTo,message:Không thể xóa người dùng vì có %d lead đang được gán. Vui lòng gỡ gán các lead trước."`
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	Email          string             `json:"email" bson:"email" index:"unique"`
	Password       string             `json:"-" bson:"password,omitempty"`
	Role           string             `json:"role" bson:"role" default:"user"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	LastLoginAt    int64              `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64              `json:"updatedAt" bson:"updatedAt"`
}

// IsAdmin kiểm tra user có role admin không.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
