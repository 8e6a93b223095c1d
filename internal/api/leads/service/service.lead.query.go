package leadsvc

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"lead_center/internal/api/leads/dto"
	"lead_center/internal/api/leads/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ====================================================================
// CÁC PREDICATE LỌC LEAD
// Mỗi điều kiện lọc là một predicate riêng, query builder gom tất cả
// predicate lại rồi fold thành một bson.M duy nhất. Cách này tách việc
// parse tham số khỏi việc dựng câu lệnh Mongo, dễ test từng phần.
// ====================================================================

// Predicate một điều kiện lọc có thể áp vào filter Mongo.
type Predicate interface {
	Apply(filter bson.M)
}

// TextSearchPredicate tìm kiếm không phân biệt hoa thường trên nhiều field
// bằng $or các regex đã escape.
type TextSearchPredicate struct {
	Fields []string
	Term   string
}

func (p TextSearchPredicate) Apply(filter bson.M) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(p.Term), Options: "i"}
	or := make([]bson.M, 0, len(p.Fields))
	for _, f := range p.Fields {
		or = append(or, bson.M{f: pattern})
	}
	filter["$or"] = or
}

// ExactPredicate so khớp chính xác một field với một giá trị.
type ExactPredicate struct {
	Field string
	Value interface{}
}

func (p ExactPredicate) Apply(filter bson.M) {
	filter[p.Field] = p.Value
}

// RangePredicate lọc theo khoảng số, Min/Max đều tùy chọn.
type RangePredicate struct {
	Field string
	Min   *float64
	Max   *float64
}

func (p RangePredicate) Apply(filter bson.M) {
	cond := bson.M{}
	if p.Min != nil {
		cond["$gte"] = *p.Min
	}
	if p.Max != nil {
		cond["$lte"] = *p.Max
	}
	if len(cond) > 0 {
		filter[p.Field] = cond
	}
}

// DateRangePredicate lọc theo khoảng thời gian trên field kiểu UnixMilli.
type DateRangePredicate struct {
	Field string
	From  *time.Time
	To    *time.Time
}

func (p DateRangePredicate) Apply(filter bson.M) {
	cond := bson.M{}
	if p.From != nil {
		cond["$gte"] = p.From.UnixMilli()
	}
	if p.To != nil {
		cond["$lte"] = p.To.UnixMilli()
	}
	if len(cond) > 0 {
		filter[p.Field] = cond
	}
}

// FoldPredicates gom danh sách predicate thành một filter bson.M.
func FoldPredicates(predicates []Predicate) bson.M {
	filter := bson.M{}
	for _, p := range predicates {
		p.Apply(filter)
	}
	return filter
}

// ====================================================================
// QUERY BUILDER
// ====================================================================

// searchFields các field tham gia tìm kiếm text.
var searchFields = []string{"firstName", "lastName", "email", "company", "city", "state"}

// allowedSortFields ánh xạ tên sort hợp lệ từ client sang field trong document.
var allowedSortFields = map[string]string{
	"firstName":      "firstName",
	"lastName":       "lastName",
	"email":          "email",
	"company":        "company",
	"status":         "status",
	"score":          "score",
	"leadValue":      "leadValue",
	"createdAt":      "createdAt",
	"lastActivityAt": "lastActivityAt",
}

// LeadQuery kết quả đã validate của một yêu cầu liệt kê lead.
type LeadQuery struct {
	Filter bson.M
	Sort   bson.D
	Page   int64
	Limit  int64
}

// BuildLeadQuery parse và validate tham số liệt kê lead.
// Mọi lỗi được gom vào danh sách FieldError thay vì dừng ở lỗi đầu tiên,
// để client sửa một lần cho tất cả tham số sai.
//
// Parameters:
//   - params: tham số thô từ query string
//
// Returns:
//   - *LeadQuery: truy vấn đã dựng, nil nếu có lỗi
//   - []dto.FieldError: danh sách lỗi validate, rỗng nếu hợp lệ
func BuildLeadQuery(params dto.LeadListParams) (*LeadQuery, []dto.FieldError) {
	var errs []dto.FieldError
	addErr := func(field, message string) {
		errs = append(errs, dto.FieldError{Field: field, Message: message})
	}

	page := int64(1)
	if params.Page != "" {
		v, err := strconv.ParseInt(params.Page, 10, 64)
		if err != nil || v < 1 {
			addErr("page", "page phải là số nguyên lớn hơn hoặc bằng 1")
		} else {
			page = v
		}
	}

	limit := int64(10)
	if params.Limit != "" {
		v, err := strconv.ParseInt(params.Limit, 10, 64)
		if err != nil || v < 1 || v > 100 {
			addErr("limit", "limit phải là số nguyên trong khoảng 1 đến 100")
		} else {
			limit = v
		}
	}

	var predicates []Predicate

	if search := strings.TrimSpace(params.Search); search != "" {
		if len(search) > 100 {
			addErr("search", "search không được vượt quá 100 ký tự")
		} else {
			predicates = append(predicates, TextSearchPredicate{Fields: searchFields, Term: search})
		}
	}

	if params.Status != "" {
		if !containsString(models.ValidStatuses, params.Status) {
			addErr("status", "status phải là một trong: "+strings.Join(models.ValidStatuses, ", "))
		} else {
			predicates = append(predicates, ExactPredicate{Field: "status", Value: params.Status})
		}
	}

	if params.Source != "" {
		if !containsString(models.ValidSources, params.Source) {
			addErr("source", "source phải là một trong: "+strings.Join(models.ValidSources, ", "))
		} else {
			predicates = append(predicates, ExactPredicate{Field: "source", Value: params.Source})
		}
	}

	// Khoảng min > max vẫn hợp lệ: filter tự nhiên cho kết quả rỗng
	minScore := parseBoundedFloat(params.MinScore, "minScore", 0, 100, addErr)
	maxScore := parseBoundedFloat(params.MaxScore, "maxScore", 0, 100, addErr)
	if minScore != nil || maxScore != nil {
		predicates = append(predicates, RangePredicate{Field: "score", Min: minScore, Max: maxScore})
	}

	minValue := parseNonNegativeFloat(params.MinValue, "minValue", addErr)
	maxValue := parseNonNegativeFloat(params.MaxValue, "maxValue", addErr)
	if minValue != nil || maxValue != nil {
		predicates = append(predicates, RangePredicate{Field: "leadValue", Min: minValue, Max: maxValue})
	}

	if params.IsQualified != "" {
		switch params.IsQualified {
		case "true", "1":
			predicates = append(predicates, ExactPredicate{Field: "isQualified", Value: true})
		case "false", "0":
			predicates = append(predicates, ExactPredicate{Field: "isQualified", Value: false})
		default:
			addErr("isQualified", "isQualified phải là true, false, 1 hoặc 0")
		}
	}

	if params.AssignedTo != "" {
		oid, err := primitive.ObjectIDFromHex(params.AssignedTo)
		if err != nil {
			addErr("assignedTo", "assignedTo phải là chuỗi hex 24 ký tự của MongoDB ObjectID")
		} else {
			predicates = append(predicates, ExactPredicate{Field: "assignedTo", Value: oid})
		}
	}

	dateFrom := parseISODate(params.DateFrom, "dateFrom", addErr)
	dateTo := parseISODate(params.DateTo, "dateTo", addErr)
	if dateFrom != nil || dateTo != nil {
		if dateFrom != nil && dateTo != nil && dateFrom.After(*dateTo) {
			addErr("dateFrom", "dateFrom không được sau dateTo")
		} else {
			predicates = append(predicates, DateRangePredicate{Field: "createdAt", From: dateFrom, To: dateTo})
		}
	}

	sortField := "createdAt"
	if params.SortBy != "" {
		mapped, ok := allowedSortFields[params.SortBy]
		if !ok {
			addErr("sortBy", "sortBy không hợp lệ, chỉ chấp nhận: "+strings.Join(sortFieldNames(), ", "))
		} else {
			sortField = mapped
		}
	}

	sortDir := -1
	switch params.SortOrder {
	case "", "desc":
		sortDir = -1
	case "asc":
		sortDir = 1
	default:
		addErr("sortOrder", "sortOrder phải là asc hoặc desc")
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &LeadQuery{
		Filter: FoldPredicates(predicates),
		Sort:   bson.D{{Key: sortField, Value: sortDir}},
		Page:   page,
		Limit:  limit,
	}, nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func sortFieldNames() []string {
	names := make([]string, 0, len(allowedSortFields))
	for name := range allowedSortFields {
		names = append(names, name)
	}
	// map không có thứ tự, sort để message ổn định
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if names[j] < names[i] {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	return names
}

func parseBoundedFloat(raw, field string, min, max float64, addErr func(string, string)) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < min || v > max {
		addErr(field, field+" phải là số trong khoảng "+strconv.FormatFloat(min, 'f', -1, 64)+" đến "+strconv.FormatFloat(max, 'f', -1, 64))
		return nil
	}
	return &v
}

func parseNonNegativeFloat(raw, field string, addErr func(string, string)) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		addErr(field, field+" phải là số lớn hơn hoặc bằng 0")
		return nil
	}
	return &v
}

// parseISODate chấp nhận timestamp RFC3339 đầy đủ hoặc dạng ngày YYYY-MM-DD.
// Giá trị chỉ có ngày được hiểu là 00:00:00 UTC của ngày đó, nên dateTo dạng
// ngày là mốc cắt đầu ngày (muốn trọn ngày thì truyền timestamp cuối ngày).
func parseISODate(raw, field string, addErr func(string, string)) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		addErr(field, field+" phải theo định dạng ISO-8601 (2024-01-15 hoặc 2024-01-15T00:00:00Z)")
		return nil
	}
	return &t
}
