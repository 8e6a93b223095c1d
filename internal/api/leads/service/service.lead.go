// Package leadsvc - nghiệp vụ quản lý lead: truy vấn, CRUD và thống kê.
package leadsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	basemdl "lead_center/internal/api/base/models"
	basesvc "lead_center/internal/api/base/service"
	"lead_center/internal/api/leads/models"
	"lead_center/internal/common"
	"lead_center/internal/global"
	"lead_center/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LeadService quản lý nghiệp vụ cho collection leads.
type LeadService struct {
	*basesvc.BaseServiceMongoImpl[models.Lead]
}

// NewLeadService tạo mới LeadService với collection leads từ registry.
func NewLeadService() (*LeadService, error) {
	collection, exists := global.RegistryCollections.Get(global.MongoDB_ColNames.Leads)
	if !exists {
		return nil, fmt.Errorf("collection %s chưa được đăng ký", global.MongoDB_ColNames.Leads)
	}
	return &LeadService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Lead](collection),
	}, nil
}

// List liệt kê lead theo truy vấn đã dựng từ BuildLeadQuery.
func (s *LeadService) List(ctx context.Context, query *LeadQuery) (*basemdl.PaginateResult[models.Lead], error) {
	opts := options.Find().SetSort(query.Sort)
	return s.FindWithPagination(ctx, query.Filter, query.Page, query.Limit, opts)
}

// CreateLead tạo lead mới sau khi kiểm tra trùng email.
//
// Parameters:
//   - ctx: context của request
//   - lead: dữ liệu lead đã transform từ input
//
// Returns:
//   - models.Lead: lead vừa tạo
//   - error: lỗi nếu email đã tồn tại hoặc thao tác database thất bại
func (s *LeadService) CreateLead(ctx context.Context, lead models.Lead) (models.Lead, error) {
	lead.Email = strings.ToLower(strings.TrimSpace(lead.Email))

	exists, err := s.DocumentExists(ctx, bson.M{"email": lead.Email})
	if err != nil {
		return lead, err
	}
	if exists {
		return lead, common.NewError(common.ErrCodeBusinessOperation,
			"Lead với email này đã tồn tại", common.StatusConflict, nil)
	}

	lead.LastActivityAt = utility.CurrentTimeInMilli()
	return s.InsertOne(ctx, lead)
}

// GetLeadById tìm lead theo id, trả về lỗi 404 thống nhất khi không tìm thấy.
func (s *LeadService) GetLeadById(ctx context.Context, id primitive.ObjectID) (models.Lead, error) {
	lead, err := s.FindOneById(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return lead, ErrLeadNotFound
		}
		return lead, err
	}
	return lead, nil
}

// ErrLeadNotFound lỗi chuẩn khi id không tồn tại hoặc sai định dạng.
var ErrLeadNotFound = common.NewError(common.ErrCodeDatabaseQuery,
	"Không tìm thấy lead", common.StatusNotFound, nil)

// UpdateLead cập nhật lead theo id. Nếu đổi email thì kiểm tra trùng với
// các lead khác. Mọi cập nhật đều làm mới lastActivityAt.
func (s *LeadService) UpdateLead(ctx context.Context, id primitive.ObjectID, update *basesvc.UpdateData) (models.Lead, error) {
	current, err := s.GetLeadById(ctx, id)
	if err != nil {
		return current, err
	}

	if update.Set == nil {
		update.Set = bson.M{}
	}
	if rawEmail, ok := update.Set["email"]; ok {
		email, _ := rawEmail.(string)
		email = strings.ToLower(strings.TrimSpace(email))
		update.Set["email"] = email
		if email != current.Email {
			exists, err := s.DocumentExists(ctx, bson.M{"email": email, "_id": bson.M{"$ne": id}})
			if err != nil {
				return current, err
			}
			if exists {
				return current, common.NewError(common.ErrCodeBusinessOperation,
					"Lead với email này đã tồn tại", common.StatusConflict, nil)
			}
		}
	}
	update.Set["lastActivityAt"] = utility.CurrentTimeInMilli()

	return s.UpdateById(ctx, id, update)
}

// DeleteLead xóa lead theo id, trả về 404 nếu không tồn tại.
func (s *LeadService) DeleteLead(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetLeadById(ctx, id); err != nil {
		return err
	}
	return s.DeleteById(ctx, id)
}

// ====================================================================
// THỐNG KÊ
// ====================================================================

// StatsOverview trả về thống kê tổng quan của toàn bộ lead:
// tổng số, phân bố theo status/source, điểm trung bình, tổng giá trị
// và số lead đã qualify.
func (s *LeadService) StatsOverview(ctx context.Context) (bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"byStatus": mongo.Pipeline{
				{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
				{{Key: "$sort", Value: bson.M{"count": -1}}},
			},
			"bySource": mongo.Pipeline{
				{{Key: "$group", Value: bson.M{"_id": "$source", "count": bson.M{"$sum": 1}}}},
				{{Key: "$sort", Value: bson.M{"count": -1}}},
			},
			"totals": mongo.Pipeline{
				{{Key: "$group", Value: bson.M{
					"_id":        nil,
					"totalLeads": bson.M{"$sum": 1},
					"avgScore":   bson.M{"$avg": "$score"},
					"totalValue": bson.M{"$sum": "$leadValue"},
					"qualified":  bson.M{"$sum": bson.M{"$cond": bson.A{"$isQualified", 1, 0}}},
				}}},
			},
		}}},
	}

	results, err := s.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return bson.M{}, nil
	}

	facet := results[0]
	overview := bson.M{
		"byStatus":   facet["byStatus"],
		"bySource":   facet["bySource"],
		"totalLeads": int64(0),
		"avgScore":   float64(0),
		"totalValue": float64(0),
		"qualified":  int64(0),
	}
	if totals, ok := facet["totals"].(bson.A); ok && len(totals) > 0 {
		if doc, ok := totals[0].(bson.M); ok {
			overview["totalLeads"] = doc["totalLeads"]
			overview["avgScore"] = doc["avgScore"]
			overview["totalValue"] = doc["totalValue"]
			overview["qualified"] = doc["qualified"]
		}
	}
	return overview, nil
}

// validAnalyticsWindows các khoảng thời gian phân tích được hỗ trợ (ngày).
var validAnalyticsWindows = []int{7, 30, 90}

// Analytics trả về phân tích lead trong khoảng days ngày gần nhất:
// số lead mới theo ngày và phân bố status trong khoảng đó.
//
// Parameters:
//   - ctx: context của request
//   - days: khoảng thời gian, chỉ chấp nhận 7, 30 hoặc 90
func (s *LeadService) Analytics(ctx context.Context, days int) (bson.M, error) {
	valid := false
	for _, w := range validAnalyticsWindows {
		if days == w {
			valid = true
			break
		}
	}
	if !valid {
		return nil, common.NewError(common.ErrCodeValidationInput,
			"days phải là 7, 30 hoặc 90", common.StatusBadRequest, nil)
	}

	cutoff := time.Now().AddDate(0, 0, -days).UnixMilli()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": cutoff}}}},
		{{Key: "$facet", Value: bson.M{
			"dailyNewLeads": mongo.Pipeline{
				{{Key: "$group", Value: bson.M{
					"_id": bson.M{"$dateToString": bson.M{
						"format": "%Y-%m-%d",
						"date":   bson.M{"$toDate": "$createdAt"},
					}},
					"count": bson.M{"$sum": 1},
				}}},
				{{Key: "$sort", Value: bson.M{"_id": 1}}},
			},
			"byStatus": mongo.Pipeline{
				{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
			},
			"totals": mongo.Pipeline{
				{{Key: "$group", Value: bson.M{
					"_id":        nil,
					"newLeads":   bson.M{"$sum": 1},
					"totalValue": bson.M{"$sum": "$leadValue"},
				}}},
			},
		}}},
	}

	results, err := s.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	analytics := bson.M{
		"days":          days,
		"dailyNewLeads": bson.A{},
		"byStatus":      bson.A{},
		"newLeads":      int64(0),
		"totalValue":    float64(0),
	}
	if len(results) == 0 {
		return analytics, nil
	}

	facet := results[0]
	if v, ok := facet["dailyNewLeads"]; ok {
		analytics["dailyNewLeads"] = v
	}
	if v, ok := facet["byStatus"]; ok {
		analytics["byStatus"] = v
	}
	if totals, ok := facet["totals"].(bson.A); ok && len(totals) > 0 {
		if doc, ok := totals[0].(bson.M); ok {
			analytics["newLeads"] = doc["newLeads"]
			analytics["totalValue"] = doc["totalValue"]
		}
	}
	return analytics, nil
}
