// Package dto - các cấu trúc input/output cho domain leads.
package dto

// LeadCreateInput dữ liệu tạo mới lead. Các trường liên hệ (phone, company,
// city, state) và source là bắt buộc khi tạo; chỉ update mới cho phép bỏ qua.
// AssignedTo không nhận từ client: lead mới luôn được gán cho user tạo nó.
type LeadCreateInput struct {
	FirstName   string   `json:"firstName" validate:"required,min=1,max=50,no_xss"`
	LastName    string   `json:"lastName" validate:"required,min=1,max=50,no_xss"`
	Email       string   `json:"email" validate:"required,email,max=100"`
	Phone       string   `json:"phone" validate:"required,phone_e164"`
	Company     string   `json:"company" validate:"required,min=1,max=100,no_xss"`
	City        string   `json:"city" validate:"required,min=1,max=50,no_xss"`
	State       string   `json:"state" validate:"required,min=1,max=50,no_xss"`
	Source      string   `json:"source" validate:"required,oneof=website facebook_ads google_ads referral events other"`
	Status      string   `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified lost won"`
	Score       int      `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	LeadValue   float64  `json:"leadValue,omitempty" validate:"omitempty,gte=0"`
	IsQualified bool     `json:"isQualified,omitempty"`
	Notes       string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=30"`
}

// LeadUpdateInput dữ liệu cập nhật lead (partial update, chỉ các field được gửi).
type LeadUpdateInput struct {
	FirstName   *string  `json:"firstName,omitempty" validate:"omitempty,min=1,max=50,no_xss"`
	LastName    *string  `json:"lastName,omitempty" validate:"omitempty,min=1,max=50,no_xss"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,phone_e164"`
	Company     *string  `json:"company,omitempty" validate:"omitempty,max=100,no_xss"`
	City        *string  `json:"city,omitempty" validate:"omitempty,max=50,no_xss"`
	State       *string  `json:"state,omitempty" validate:"omitempty,max=50,no_xss"`
	Source      *string  `json:"source,omitempty" validate:"omitempty,oneof=website facebook_ads google_ads referral events other"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified lost won"`
	Score       *int     `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	LeadValue   *float64 `json:"leadValue,omitempty" validate:"omitempty,gte=0"`
	IsQualified *bool    `json:"isQualified,omitempty"`
	Notes       *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=30"`
	AssignedTo  *string  `json:"assignedTo,omitempty" validate:"omitempty,len=24,hexadecimal"`
}

// LeadListParams tham số truy vấn danh sách lead, nhận raw từ query string.
// Việc validate chi tiết (enum, khoảng số, định dạng ngày) do query builder
// thực hiện và trả về danh sách FieldError.
type LeadListParams struct {
	Page        string `query:"page"`
	Limit       string `query:"limit"`
	Search      string `query:"search"`
	Status      string `query:"status"`
	Source      string `query:"source"`
	MinScore    string `query:"minScore"`
	MaxScore    string `query:"maxScore"`
	MinValue    string `query:"minValue"`
	MaxValue    string `query:"maxValue"`
	IsQualified string `query:"isQualified"`
	AssignedTo  string `query:"assignedTo"`
	DateFrom    string `query:"dateFrom"`
	DateTo      string `query:"dateTo"`
	SortBy      string `query:"sortBy"`
	SortOrder   string `query:"sortOrder"`
}

// FieldError mô tả một lỗi validate trên một tham số cụ thể.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Pagination thông tin phân trang trả về cho client.
type Pagination struct {
	Page        int64 `json:"currentPage"`
	Limit       int64 `json:"itemsPerPage"`
	Total       int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}
