// Package global giữ các biến toàn cục dùng chung của ứng dụng:
// cấu hình server, kết nối MongoDB, validator và registry các collection.
package global

import (
	"lead_center/config"
	"lead_center/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// ColNames chứa tên các collection trong database.
// Giá trị được gán một lần khi khởi động server (cmd/server/init.go).
type ColNames struct {
	Users    string // Collection người dùng
	Sessions string // Collection phiên đăng nhập (chỉ dùng khi SESSION_STORE=mongo)
	Leads    string // Collection lead
}

var (
	// MongoDB_ServerConfig cấu hình server, load từ env khi khởi động
	MongoDB_ServerConfig *config.Configuration

	// MongoDB_Session client kết nối MongoDB dùng chung
	MongoDB_Session *mongo.Client

	// MongoDB_ColNames tên các collection
	MongoDB_ColNames ColNames

	// Validate validator dùng chung, khởi tạo qua InitValidator
	Validate *validator.Validate

	// RegistryCollections registry các *mongo.Collection theo tên collection
	RegistryCollections = registry.NewRegistry[*mongo.Collection]()
)
