package main

import (
	"context"
	"strings"

	authmodels "lead_center/internal/api/auth/models"
	authsvc "lead_center/internal/api/auth/service"
	leadmodels "lead_center/internal/api/leads/models"
	leadsvc "lead_center/internal/api/leads/service"
	"lead_center/internal/global"
	"lead_center/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// InitDefaultData khởi tạo dữ liệu mặc định: user admin từ config
// và dữ liệu lead mẫu (nếu SEED_SAMPLE_DATA được bật).
func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	initAdminUser()
	initSampleLeads()

	log.Info("✅ [INIT] InitDefaultData completed")
}

// initAdminUser tạo user admin từ ADMIN_EMAIL/ADMIN_PASSWORD nếu chưa tồn tại.
// Không cấu hình ADMIN_PASSWORD thì bỏ qua.
func initAdminUser() {
	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig

	if cfg.AdminPassword == "" {
		log.Info("ADMIN_PASSWORD not set, skipping admin user seed")
		return
	}

	userService, err := authsvc.NewUserService()
	if err != nil {
		log.Fatalf("Failed to initialize user service: %v", err)
	}

	ctx := context.Background()
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	exists, err := userService.DocumentExists(ctx, bson.M{"email": email})
	if err != nil {
		log.Warnf("Failed to check admin user: %v", err)
		return
	}
	if exists {
		log.Infof("Admin user %s already exists", email)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Warnf("Failed to hash admin password: %v", err)
		return
	}

	admin := authmodels.User{
		Name:     "Administrator",
		Email:    email,
		Password: string(hashed),
		Role:     authmodels.RoleAdmin,
		IsActive: true,
	}
	if _, err := userService.InsertOne(ctx, admin); err != nil {
		log.Warnf("Failed to seed admin user: %v", err)
		return
	}
	log.Infof("Admin user %s created", email)
}

// initSampleLeads tạo một ít lead mẫu khi SEED_SAMPLE_DATA=true và collection rỗng.
func initSampleLeads() {
	log := logger.GetAppLogger()
	if !global.MongoDB_ServerConfig.SeedSampleData {
		return
	}

	leadService, err := leadsvc.NewLeadService()
	if err != nil {
		log.Fatalf("Failed to initialize lead service: %v", err)
	}

	ctx := context.Background()
	count, err := leadService.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Warnf("Failed to count leads: %v", err)
		return
	}
	if count > 0 {
		return
	}

	samples := []leadmodels.Lead{
		{
			FirstName: "An", LastName: "Nguyễn", Email: "an.nguyen@example.com",
			Company: "Sunrise Media", City: "Hà Nội",
			Source: leadmodels.SourceWebsite, Status: leadmodels.StatusNew,
			Score: 72, LeadValue: 1500,
		},
		{
			FirstName: "Bình", LastName: "Trần", Email: "binh.tran@example.com",
			Company: "Delta Logistics", City: "Đà Nẵng",
			Source: leadmodels.SourceReferral, Status: leadmodels.StatusContacted,
			Score: 55, LeadValue: 800,
		},
		{
			FirstName: "Chi", LastName: "Lê", Email: "chi.le@example.com",
			Company: "Mekong Foods", City: "Cần Thơ",
			Source: leadmodels.SourceFacebookAds, Status: leadmodels.StatusQualified,
			Score: 88, LeadValue: 4200, IsQualified: true,
		},
	}
	for _, lead := range samples {
		if _, err := leadService.CreateLead(ctx, lead); err != nil {
			log.Warnf("Failed to seed sample lead %s: %v", lead.Email, err)
		}
	}
	log.Infof("Seeded %d sample leads", len(samples))
}
