// Package router - đăng ký toàn bộ route HTTP của ứng dụng.
package router

import (
	"github.com/gofiber/fiber/v3"

	authhdl "lead_center/internal/api/auth/handler"
	basehdl "lead_center/internal/api/base/handler"
	leadhdl "lead_center/internal/api/leads/handler"
)

// ============================================================================
// LƯU Ý: CÁCH ĐĂNG KÝ MIDDLEWARE TRONG FIBER V3
// ============================================================================
//
// Không đăng ký middleware trực tiếp trong route:
//
//	router.Get("/path", middleware, handler) // middleware sẽ KHÔNG được gọi
//
// Phải đăng ký qua group .Use():
//
//	RegisterRouteWithMiddleware(router, "/prefix", "GET", "/path", []fiber.Handler{mw}, handler)
//
// ============================================================================

// CRUDHandler định nghĩa interface cho các handler CRUD generic.
type CRUDHandler interface {
	// Create
	InsertOne(c fiber.Ctx) error
	InsertMany(c fiber.Ctx) error

	// Read
	Find(c fiber.Ctx) error
	FindOne(c fiber.Ctx) error
	FindOneById(c fiber.Ctx) error
	FindManyByIds(c fiber.Ctx) error
	FindWithPagination(c fiber.Ctx) error

	// Update
	UpdateOne(c fiber.Ctx) error
	UpdateMany(c fiber.Ctx) error
	UpdateById(c fiber.Ctx) error
	FindOneAndUpdate(c fiber.Ctx) error

	// Delete
	DeleteOne(c fiber.Ctx) error
	DeleteMany(c fiber.Ctx) error
	DeleteById(c fiber.Ctx) error
	FindOneAndDelete(c fiber.Ctx) error

	// Other
	CountDocuments(c fiber.Ctx) error
	Distinct(c fiber.Ctx) error
	Upsert(c fiber.Ctx) error
	DocumentExists(c fiber.Ctx) error
}

// CRUDConfig cấu hình các operation được phép cho một collection.
type CRUDConfig struct {
	// Create
	InsOne  bool
	InsMany bool

	// Read
	Find     bool
	FindOne  bool
	FindById bool
	FindIds  bool
	Paginate bool

	// Update
	UpdOne  bool
	UpdMany bool
	UpdById bool
	FindUpd bool

	// Delete
	DelOne  bool
	DelMany bool
	DelById bool
	FindDel bool

	// Other
	Count    bool
	Distinct bool
	Upsert   bool
	Exists   bool
}

var (
	// ReadOnlyConfig chỉ cho phép đọc (find, find-one, count, distinct, exists).
	ReadOnlyConfig = CRUDConfig{
		Find: true, FindOne: true, FindById: true,
		FindIds: true, Paginate: true,
		Count: true, Distinct: true, Exists: true,
	}

	// ReadWriteConfig cho phép đầy đủ CRUD.
	ReadWriteConfig = CRUDConfig{
		InsOne: true, InsMany: true,
		Find: true, FindOne: true, FindById: true,
		FindIds: true, Paginate: true,
		UpdOne: true, UpdMany: true, UpdById: true,
		FindUpd: true,
		DelOne:  true, DelMany: true, DelById: true,
		FindDel: true,
		Count:   true, Distinct: true,
		Upsert: true, Exists: true,
	}
)

// RoutePrefix chứa các prefix cơ bản cho API.
type RoutePrefix struct {
	Base string // /api
	V1   string // /api/v1
}

// NewRoutePrefix tạo RoutePrefix với giá trị mặc định.
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// Router quản lý việc định tuyến cho API.
type Router struct {
	app *fiber.App
}

// NewRouter tạo mới một instance của Router.
func NewRouter(app *fiber.App) *Router {
	return &Router{app: app}
}

// RegisterRouteWithMiddleware đăng ký route với middleware qua group .Use()
// (cách duy nhất hoạt động đúng trong Fiber v3, xem comment đầu file).
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	switch method {
	case "GET":
		routeGroup.Get(path, handler)
	case "POST":
		routeGroup.Post(path, handler)
	case "PUT":
		routeGroup.Put(path, handler)
	case "DELETE":
		routeGroup.Delete(path, handler)
	}
}

// RegisterCRUDRoutes đăng ký các route CRUD generic cho một collection,
// toàn bộ đi qua cùng một chain middleware.
func (r *Router) RegisterCRUDRoutes(router fiber.Router, prefix string, h CRUDHandler, config CRUDConfig, middlewares []fiber.Handler) {
	// Create operations
	if config.InsOne {
		RegisterRouteWithMiddleware(router, prefix, "POST", "/insert-one", middlewares, h.InsertOne)
	}
	if config.InsMany {
		RegisterRouteWithMiddleware(router, prefix, "POST", "/insert-many", middlewares, h.InsertMany)
	}

	// Read operations
	if config.Find {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find", middlewares, h.Find)
	}
	if config.FindOne {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-one", middlewares, h.FindOne)
	}
	if config.FindById {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-by-id/:id", middlewares, h.FindOneById)
	}
	if config.FindIds {
		RegisterRouteWithMiddleware(router, prefix, "POST", "/find-by-ids", middlewares, h.FindManyByIds)
	}
	if config.Paginate {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-with-pagination", middlewares, h.FindWithPagination)
	}

	// Update operations
	if config.UpdOne {
		RegisterRouteWithMiddleware(router, prefix, "PUT", "/update-one", middlewares, h.UpdateOne)
	}
	if config.UpdMany {
		RegisterRouteWithMiddleware(router, prefix, "PUT", "/update-many", middlewares, h.UpdateMany)
	}
	if config.UpdById {
		RegisterRouteWithMiddleware(router, prefix, "PUT", "/update-by-id/:id", middlewares, h.UpdateById)
	}
	if config.FindUpd {
		RegisterRouteWithMiddleware(router, prefix, "PUT", "/find-one-and-update", middlewares, h.FindOneAndUpdate)
	}

	// Delete operations
	if config.DelOne {
		RegisterRouteWithMiddleware(router, prefix, "DELETE", "/delete-one", middlewares, h.DeleteOne)
	}
	if config.DelMany {
		RegisterRouteWithMiddleware(router, prefix, "DELETE", "/delete-many", middlewares, h.DeleteMany)
	}
	if config.DelById {
		RegisterRouteWithMiddleware(router, prefix, "DELETE", "/delete-by-id/:id", middlewares, h.DeleteById)
	}
	if config.FindDel {
		RegisterRouteWithMiddleware(router, prefix, "DELETE", "/find-one-and-delete", middlewares, h.FindOneAndDelete)
	}

	// Other operations
	if config.Count {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/count", middlewares, h.CountDocuments)
	}
	if config.Distinct {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/distinct", middlewares, h.Distinct)
	}
	if config.Upsert {
		RegisterRouteWithMiddleware(router, prefix, "POST", "/upsert-one", middlewares, h.Upsert)
	}
	if config.Exists {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/exists", middlewares, h.DocumentExists)
	}
}

// Handlers gom các handler cần cho việc đăng ký route.
type Handlers struct {
	Auth   *authhdl.AuthHandler
	Users  *authhdl.UserHandler
	Leads  *leadhdl.LeadHandler
	System *basehdl.SystemHandler
}

// Middlewares gom các middleware dùng chung khi đăng ký route.
type Middlewares struct {
	AuthRequired fiber.Handler // yêu cầu phiên đăng nhập hợp lệ
	AdminOnly    fiber.Handler // yêu cầu role admin, phải đứng sau AuthRequired
}

// SetupRoutes thiết lập tất cả các route cho ứng dụng.
//
// Public:    /api/v1/auth/register, /auth/login, /system/health
// Đăng nhập: /auth/logout, /auth/me, /auth/password, /leads/*
// Admin:     /users/*
func SetupRoutes(app *fiber.App, h Handlers, mw Middlewares) {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app)

	// System - public
	v1.Get("/system/health", h.System.HandleHealth)

	// Auth - public
	v1.Post("/auth/register", h.Auth.HandleRegister)
	v1.Post("/auth/login", h.Auth.HandleLogin)

	// Auth - yêu cầu đăng nhập
	authed := []fiber.Handler{mw.AuthRequired}
	RegisterRouteWithMiddleware(v1, "/auth", "POST", "/logout", authed, h.Auth.HandleLogout)
	RegisterRouteWithMiddleware(v1, "/auth", "GET", "/me", authed, h.Auth.HandleMe)
	RegisterRouteWithMiddleware(v1, "/auth", "PUT", "/password", authed, h.Auth.HandleChangePassword)

	// Leads - yêu cầu đăng nhập
	RegisterRouteWithMiddleware(v1, "/leads", "GET", "/", authed, h.Leads.HandleListLeads)
	RegisterRouteWithMiddleware(v1, "/leads", "POST", "/", authed, h.Leads.HandleCreateLead)
	RegisterRouteWithMiddleware(v1, "/leads", "GET", "/stats/overview", authed, h.Leads.HandleStatsOverview)
	RegisterRouteWithMiddleware(v1, "/leads", "GET", "/analytics", authed, h.Leads.HandleAnalytics)
	RegisterRouteWithMiddleware(v1, "/leads", "GET", "/:id", authed, h.Leads.HandleGetLead)
	RegisterRouteWithMiddleware(v1, "/leads", "PUT", "/:id", authed, h.Leads.HandleUpdateLead)
	RegisterRouteWithMiddleware(v1, "/leads", "DELETE", "/:id", authed, h.Leads.HandleDeleteLead)

	// Users - chỉ admin. Tạo user đi qua handler riêng để hash mật khẩu,
	// phần còn lại dùng CRUD generic.
	adminOnly := []fiber.Handler{mw.AuthRequired, mw.AdminOnly}
	RegisterRouteWithMiddleware(v1, "/users", "POST", "/create", adminOnly, h.Users.HandleCreateUser)
	userCRUD := ReadWriteConfig
	userCRUD.InsOne = false
	userCRUD.InsMany = false
	userCRUD.Upsert = false
	r.RegisterCRUDRoutes(v1, "/users", h.Users, userCRUD, adminOnly)
}
