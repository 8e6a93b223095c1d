// Package leadhdl - handler HTTP cho domain leads.
package leadhdl

import (
	"fmt"
	"strconv"

	authmdl "lead_center/internal/api/auth/models"
	basehdl "lead_center/internal/api/base/handler"
	basesvc "lead_center/internal/api/base/service"
	"lead_center/internal/api/leads/dto"
	"lead_center/internal/api/leads/models"
	leadsvc "lead_center/internal/api/leads/service"
	"lead_center/internal/common"
	"lead_center/internal/logger"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeleteAuthorizer quyết định một user có được xóa một lead hay không.
// Tách thành function để có thể thay chính sách mà không sửa handler.
type DeleteAuthorizer func(user authmdl.User, lead models.Lead) bool

// DefaultDeleteAuthorizer cho phép admin xóa mọi lead,
// user thường chỉ xóa lead đang được gán cho mình.
func DefaultDeleteAuthorizer(user authmdl.User, lead models.Lead) bool {
	if user.IsAdmin() {
		return true
	}
	return !lead.AssignedTo.IsZero() && lead.AssignedTo == user.ID
}

// LeadHandler xử lý các route quản lý lead.
type LeadHandler struct {
	*basehdl.BaseHandler[models.Lead, dto.LeadCreateInput, dto.LeadUpdateInput]
	Lead      *leadsvc.LeadService
	CanDelete DeleteAuthorizer
}

// NewLeadHandler tạo LeadHandler với chính sách xóa mặc định.
func NewLeadHandler(service *leadsvc.LeadService) *LeadHandler {
	return &LeadHandler{
		BaseHandler: basehdl.NewBaseHandler[models.Lead, dto.LeadCreateInput, dto.LeadUpdateInput](service),
		Lead:        service,
		CanDelete:   DefaultDeleteAuthorizer,
	}
}

// parseListParams đọc tham số liệt kê từ query string.
func parseListParams(c fiber.Ctx) dto.LeadListParams {
	return dto.LeadListParams{
		Page:        c.Query("page"),
		Limit:       c.Query("limit"),
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		Source:      c.Query("source"),
		MinScore:    c.Query("minScore"),
		MaxScore:    c.Query("maxScore"),
		MinValue:    c.Query("minValue"),
		MaxValue:    c.Query("maxValue"),
		IsQualified: c.Query("isQualified"),
		AssignedTo:  c.Query("assignedTo"),
		DateFrom:    c.Query("dateFrom"),
		DateTo:      c.Query("dateTo"),
		SortBy:      c.Query("sortBy"),
		SortOrder:   c.Query("sortOrder"),
	}
}

// respondFieldErrors trả về 400 kèm danh sách lỗi theo từng tham số.
func respondFieldErrors(c fiber.Ctx, errs []dto.FieldError) {
	basehdl.JSONResponse(c, common.StatusBadRequest, fiber.Map{
		"code":    common.ErrCodeValidationInput.Code,
		"message": common.MsgValidationError,
		"errors":  errs,
		"status":  "error",
	})
}

// HandleListLeads liệt kê lead với filter, sort và phân trang.
// GET /api/v1/leads
func (h *LeadHandler) HandleListLeads(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		query, errs := leadsvc.BuildLeadQuery(parseListParams(c))
		if len(errs) > 0 {
			respondFieldErrors(c, errs)
			return nil
		}

		result, err := h.Lead.List(c.Context(), query)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		h.HandleResponse(c, fiber.Map{
			"leads": result.Items,
			"pagination": dto.Pagination{
				Page:        result.Page,
				Limit:       result.Limit,
				Total:       result.Total,
				TotalPages:  result.TotalPage,
				HasNextPage: result.Page < result.TotalPage,
				HasPrevPage: result.Page > 1,
			},
		}, nil)
		return nil
	})
}

// HandleCreateLead tạo lead mới.
// POST /api/v1/leads
func (h *LeadHandler) HandleCreateLead(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.LeadCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu lead không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		lead, err := h.TransformCreateInputToModel(&input)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, err))
			return nil
		}

		// Lead mới luôn được gán cho user tạo nó
		if user, ok := c.Locals("user").(authmdl.User); ok {
			lead.AssignedTo = user.ID
		}

		created, err := h.Lead.CreateLead(c.Context(), *lead)
		if err == nil {
			logger.LogCRUD("create", "lead", created.ID.Hex(), c, nil)
		}
		h.HandleResponse(c, created, err)
		return nil
	})
}

// parseLeadID đọc và validate id từ path, sai định dạng coi như không tìm thấy.
func (h *LeadHandler) parseLeadID(c fiber.Ctx) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
	if err != nil {
		return primitive.NilObjectID, leadsvc.ErrLeadNotFound
	}
	return id, nil
}

// HandleGetLead lấy chi tiết một lead theo id.
// GET /api/v1/leads/:id
func (h *LeadHandler) HandleGetLead(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseLeadID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		lead, err := h.Lead.GetLeadById(c.Context(), id)
		h.HandleResponse(c, lead, err)
		return nil
	})
}

// HandleUpdateLead cập nhật một lead theo id (partial update).
// PUT /api/v1/leads/:id
func (h *LeadHandler) HandleUpdateLead(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseLeadID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.LeadUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu cập nhật không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		update, err := h.buildLeadUpdate(&input)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, err))
			return nil
		}

		updated, err := h.Lead.UpdateLead(c.Context(), id, update)
		if err == nil {
			logger.LogCRUD("update", "lead", id.Hex(), c, nil)
		}
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// buildLeadUpdate chuyển UpdateInput thành UpdateData, chỉ lấy các field
// client thực sự gửi (pointer khác nil).
func (h *LeadHandler) buildLeadUpdate(input *dto.LeadUpdateInput) (*basesvc.UpdateData, error) {
	model, err := h.TransformUpdateInputToModel(input)
	if err != nil {
		return nil, err
	}

	update := &basesvc.UpdateData{Set: map[string]interface{}{}}
	setIf := func(cond bool, key string, value interface{}) {
		if cond {
			update.Set[key] = value
		}
	}
	setIf(input.FirstName != nil, "firstName", model.FirstName)
	setIf(input.LastName != nil, "lastName", model.LastName)
	setIf(input.Email != nil, "email", model.Email)
	setIf(input.Phone != nil, "phone", model.Phone)
	setIf(input.Company != nil, "company", model.Company)
	setIf(input.City != nil, "city", model.City)
	setIf(input.State != nil, "state", model.State)
	setIf(input.Source != nil, "source", model.Source)
	setIf(input.Status != nil, "status", model.Status)
	setIf(input.Score != nil, "score", model.Score)
	setIf(input.LeadValue != nil, "leadValue", model.LeadValue)
	setIf(input.IsQualified != nil, "isQualified", model.IsQualified)
	setIf(input.Notes != nil, "notes", model.Notes)
	setIf(input.Tags != nil, "tags", model.Tags)
	setIf(input.AssignedTo != nil, "assignedTo", model.AssignedTo)
	return update, nil
}

// HandleDeleteLead xóa một lead theo id, có kiểm tra quyền xóa.
// DELETE /api/v1/leads/:id
func (h *LeadHandler) HandleDeleteLead(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseLeadID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		lead, err := h.Lead.GetLeadById(c.Context(), id)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		user, ok := c.Locals("user").(authmdl.User)
		if !ok || !h.CanDelete(user, lead) {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeAuthRole,
				"Bạn không có quyền xóa lead này",
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		err = h.Lead.DeleteLead(c.Context(), id)
		if err == nil {
			logger.LogCRUD("delete", "lead", id.Hex(), c, nil)
		}
		h.HandleResponse(c, fiber.Map{"deleted": err == nil}, err)
		return nil
	})
}

// HandleStatsOverview thống kê tổng quan toàn bộ lead.
// GET /api/v1/leads/stats/overview
func (h *LeadHandler) HandleStatsOverview(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		overview, err := h.Lead.StatsOverview(c.Context())
		h.HandleResponse(c, overview, err)
		return nil
	})
}

// HandleAnalytics phân tích lead trong khoảng days ngày gần nhất.
// GET /api/v1/leads/analytics?days=30
func (h *LeadHandler) HandleAnalytics(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		days := 30
		if raw := c.Query("days"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				respondFieldErrors(c, []dto.FieldError{{Field: "days", Message: "days phải là số nguyên (7, 30 hoặc 90)"}})
				return nil
			}
			days = v
		}

		analytics, err := h.Lead.Analytics(c.Context(), days)
		h.HandleResponse(c, analytics, err)
		return nil
	})
}
