package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	authhdl "lead_center/internal/api/auth/handler"
	authsvc "lead_center/internal/api/auth/service"
	basehdl "lead_center/internal/api/base/handler"
	leadhdl "lead_center/internal/api/leads/handler"
	leadsvc "lead_center/internal/api/leads/service"
	"lead_center/internal/api/middleware"
	"lead_center/internal/api/router"
	"lead_center/internal/database"
	"lead_center/internal/global"
	"lead_center/internal/logger"
	"lead_center/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// newSessionStore tạo session store theo cấu hình SESSION_STORE.
func newSessionStore() authsvc.SessionStore {
	log := logger.GetAppLogger()
	switch global.MongoDB_ServerConfig.SessionStore {
	case "mongo":
		store, err := authsvc.NewMongoSessionStore()
		if err != nil {
			log.Fatalf("Failed to create mongo session store: %v", err)
		}
		log.Info("Using mongo session store")
		return store
	default:
		log.Info("Using in-memory session store")
		return authsvc.NewMemorySessionStore()
	}
}

// main_thread khởi tạo và chạy Fiber server
func main_thread(app *fiber.App) {
	cfg := global.MongoDB_ServerConfig
	address := cfg.Address

	log := logger.GetAppLogger()
	log.Info("Starting Fiber server...")

	// Helper resolve đường dẫn tương đối từ thư mục gốc dự án
	resolvePath := func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		currentDir, err := os.Getwd()
		if err != nil {
			return path
		}
		for {
			envDir := filepath.Join(currentDir, "config", "env")
			if _, err := os.Stat(envDir); err == nil {
				return filepath.Join(currentDir, path)
			}
			parentDir := filepath.Dir(currentDir)
			if parentDir == currentDir {
				return path
			}
			currentDir = parentDir
		}
	}

	// Kiểm tra xem có bật TLS không
	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		certPath := resolvePath(cfg.TLSCertFile)
		keyPath := resolvePath(cfg.TLSKeyFile)

		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			log.Fatalf("TLS certificate file not found: %s (resolved from: %s)", certPath, cfg.TLSCertFile)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			log.Fatalf("TLS key file not found: %s (resolved from: %s)", keyPath, cfg.TLSKeyFile)
		}

		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			log.Fatalf("Error loading TLS certificate: %v", err)
		}

		ln, err := net.Listen("tcp", address)
		if err != nil {
			log.Fatalf("Error creating listener: %v", err)
		}

		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		tlsListener := tls.NewListener(ln, tlsConfig)

		log.WithFields(map[string]interface{}{
			"address": address,
			"cert":    certPath,
			"key":     keyPath,
		}).Info("Starting server with HTTPS/TLS")

		if err := app.Listener(tlsListener); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
	} else {
		log.WithFields(map[string]interface{}{
			"address":  address,
			"protocol": "HTTP",
		}).Info("Starting server with HTTP")

		listenConfig := fiber.ListenConfig{}
		if err := app.Listen(address, listenConfig); err != nil {
			log.Fatalf("Error in Fiber Listen: %v", err)
		}
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Khởi tạo dữ liệu mặc định
	InitDefaultData()

	log := logger.GetAppLogger()

	// Khởi tạo session store và auth service
	sessionStore := newSessionStore()
	authService, err := authsvc.NewAuthService(sessionStore)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	// Khởi tạo lead service
	leadService, err := leadsvc.NewLeadService()
	if err != nil {
		log.Fatalf("Failed to create lead service: %v", err)
	}

	// Khởi tạo system handler
	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		log.Fatalf("Failed to create system handler: %v", err)
	}

	handlers := router.Handlers{
		Auth:   authhdl.NewAuthHandler(authService),
		Users:  authhdl.NewUserHandler(authService),
		Leads:  leadhdl.NewLeadHandler(leadService),
		System: systemHandler,
	}
	middlewares := router.Middlewares{
		AuthRequired: middleware.AuthMiddleware(authService),
		AdminOnly:    middleware.RequireAdmin(),
	}

	// Khởi tạo app với cấu hình và routes
	app := InitFiberApp(handlers, middlewares)

	// Chạy worker dọn phiên hết hạn trong goroutine riêng
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweepInterval := time.Duration(global.MongoDB_ServerConfig.SessionSweepSecs) * time.Second
	sweepWorker := worker.NewSessionSweepWorker(sessionStore, sweepInterval)
	go sweepWorker.Start(ctx)

	// Bắt tín hiệu dừng để shutdown có trật tự: dừng nhận request mới,
	// dừng worker rồi ngắt kết nối MongoDB.
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan

		log.WithFields(map[string]interface{}{"signal": sig.String()}).Info("Shutting down server...")
		cancel()

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Error during server shutdown")
		}
		if client := global.MongoDB_Session; client != nil {
			_ = database.CloseInstance(client)
		}
		os.Exit(0)
	}()

	// Chạy Fiber server trên main thread
	main_thread(app)
}
