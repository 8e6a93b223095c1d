// Package models - model Lead thuộc domain leads.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các giá trị hợp lệ cho nguồn lead.
const (
	SourceWebsite     = "website"
	SourceFacebookAds = "facebook_ads"
	SourceGoogleAds   = "google_ads"
	SourceReferral    = "referral"
	SourceEvents      = "events"
	SourceOther       = "other"
)

// Các giá trị hợp lệ cho trạng thái lead.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusLost      = "lost"
	StatusWon       = "won"
)

// ValidSources liệt kê các nguồn lead hợp lệ.
var ValidSources = []string{SourceWebsite, SourceFacebookAds, SourceGoogleAds, SourceReferral, SourceEvents, SourceOther}

// ValidStatuses liệt kê các trạng thái lead hợp lệ.
var ValidStatuses = []string{StatusNew, StatusContacted, StatusQualified, StatusLost, StatusWon}

// Lead định nghĩa mô hình khách hàng tiềm năng.
// Email là unique trên toàn collection. Status mặc định "new" khi insert.
// LastActivityAt được service cập nhật mỗi khi lead có thay đổi nghiệp vụ,
// tách biệt với UpdatedAt do tầng CRUD stamp.
type Lead struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName      string             `json:"firstName" bson:"firstName"`
	LastName       string             `json:"lastName" bson:"lastName"`
	Email          string             `json:"email" bson:"email" index:"unique"`
	Phone          string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Company        string             `json:"company,omitempty" bson:"company,omitempty"`
	City           string             `json:"city,omitempty" bson:"city,omitempty"`
	State          string             `json:"state,omitempty" bson:"state,omitempty"`
	Source         string             `json:"source" bson:"source" default:"other"`
	Status         string             `json:"status" bson:"status" default:"new"`
	Score          int                `json:"score" bson:"score"`
	LeadValue      float64            `json:"leadValue" bson:"leadValue"`
	IsQualified    bool               `json:"isQualified" bson:"isQualified"`
	Notes          string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Tags           []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	AssignedTo     primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	LastActivityAt int64              `json:"lastActivityAt,omitempty" bson:"lastActivityAt,omitempty"`
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64              `json:"updatedAt" bson:"updatedAt"`
}
