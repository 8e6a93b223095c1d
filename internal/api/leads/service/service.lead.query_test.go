package leadsvc

import (
	"testing"
	"time"

	"lead_center/internal/api/leads/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildLeadQuery_Defaults(t *testing.T) {
	query, errs := BuildLeadQuery(dto.LeadListParams{})
	require.Empty(t, errs, "tham số rỗng không được sinh lỗi")
	require.NotNil(t, query)

	assert.Equal(t, int64(1), query.Page)
	assert.Equal(t, int64(10), query.Limit)
	assert.Empty(t, query.Filter, "không có tham số lọc thì filter phải rỗng")
	require.Len(t, query.Sort, 1)
	assert.Equal(t, "createdAt", query.Sort[0].Key)
	assert.Equal(t, -1, query.Sort[0].Value, "mặc định sort giảm dần theo createdAt")
}

func TestBuildLeadQuery_PaginationBounds(t *testing.T) {
	_, errs := BuildLeadQuery(dto.LeadListParams{Page: "0"})
	assert.Len(t, errs, 1)
	assert.Equal(t, "page", errs[0].Field)

	_, errs = BuildLeadQuery(dto.LeadListParams{Limit: "101"})
	assert.Len(t, errs, 1)
	assert.Equal(t, "limit", errs[0].Field)

	_, errs = BuildLeadQuery(dto.LeadListParams{Limit: "abc"})
	assert.Len(t, errs, 1)

	query, errs := BuildLeadQuery(dto.LeadListParams{Page: "3", Limit: "50"})
	require.Empty(t, errs)
	assert.Equal(t, int64(3), query.Page)
	assert.Equal(t, int64(50), query.Limit)
}

func TestBuildLeadQuery_SearchEscapesRegex(t *testing.T) {
	query, errs := BuildLeadQuery(dto.LeadListParams{Search: "a.b+c"})
	require.Empty(t, errs)

	or, ok := query.Filter["$or"].([]bson.M)
	require.True(t, ok, "search phải sinh điều kiện $or")
	require.Len(t, or, len(searchFields))

	pattern, ok := or[0]["firstName"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `a\.b\+c`, pattern.Pattern, "ký tự đặc biệt trong search phải được escape")
	assert.Equal(t, "i", pattern.Options, "search không phân biệt hoa thường")
}

func TestBuildLeadQuery_EnumValidation(t *testing.T) {
	query, errs := BuildLeadQuery(dto.LeadListParams{Status: "qualified", Source: "referral"})
	require.Empty(t, errs)
	assert.Equal(t, "qualified", query.Filter["status"])
	assert.Equal(t, "referral", query.Filter["source"])

	_, errs = BuildLeadQuery(dto.LeadListParams{Status: "bogus", Source: "tv_ads"})
	require.Len(t, errs, 2, "status và source sai phải được gom thành 2 lỗi")
	fields := []string{errs[0].Field, errs[1].Field}
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "source")
}

func TestBuildLeadQuery_ScoreAndValueRanges(t *testing.T) {
	query, errs := BuildLeadQuery(dto.LeadListParams{
		MinScore: "10", MaxScore: "80",
		MinValue: "100.5", MaxValue: "5000",
	})
	require.Empty(t, errs)

	score, ok := query.Filter["score"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, float64(10), score["$gte"])
	assert.Equal(t, float64(80), score["$lte"])

	value, ok := query.Filter["leadValue"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, 100.5, value["$gte"])

	// min > max không phải lỗi: khoảng rỗng là truy vấn hợp lệ trả về 0 kết quả
	query, errs = BuildLeadQuery(dto.LeadListParams{MinScore: "90", MaxScore: "10"})
	require.Empty(t, errs)
	score, ok = query.Filter["score"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, float64(90), score["$gte"])
	assert.Equal(t, float64(10), score["$lte"])

	// Ngoài khoảng 0-100
	_, errs = BuildLeadQuery(dto.LeadListParams{MinScore: "101"})
	assert.Len(t, errs, 1)

	// Giá trị âm
	_, errs = BuildLeadQuery(dto.LeadListParams{MinValue: "-1"})
	assert.Len(t, errs, 1)
}

func TestBuildLeadQuery_IsQualified(t *testing.T) {
	for _, raw := range []string{"true", "1"} {
		query, errs := BuildLeadQuery(dto.LeadListParams{IsQualified: raw})
		require.Empty(t, errs, "isQualified=%s phải hợp lệ", raw)
		assert.Equal(t, true, query.Filter["isQualified"])
	}
	for _, raw := range []string{"false", "0"} {
		query, errs := BuildLeadQuery(dto.LeadListParams{IsQualified: raw})
		require.Empty(t, errs)
		assert.Equal(t, false, query.Filter["isQualified"])
	}

	_, errs := BuildLeadQuery(dto.LeadListParams{IsQualified: "yes"})
	require.Len(t, errs, 1)
	assert.Equal(t, "isQualified", errs[0].Field)
}

func TestBuildLeadQuery_AssignedTo(t *testing.T) {
	oid := primitive.NewObjectID()
	query, errs := BuildLeadQuery(dto.LeadListParams{AssignedTo: oid.Hex()})
	require.Empty(t, errs)
	assert.Equal(t, oid, query.Filter["assignedTo"])

	_, errs = BuildLeadQuery(dto.LeadListParams{AssignedTo: "not-an-oid"})
	require.Len(t, errs, 1)
	assert.Equal(t, "assignedTo", errs[0].Field)
}

func TestBuildLeadQuery_DateRange(t *testing.T) {
	from := "2024-01-01T00:00:00Z"
	to := "2024-02-01T00:00:00Z"
	query, errs := BuildLeadQuery(dto.LeadListParams{DateFrom: from, DateTo: to})
	require.Empty(t, errs)

	created, ok := query.Filter["createdAt"].(bson.M)
	require.True(t, ok)
	fromTime, _ := time.Parse(time.RFC3339, from)
	toTime, _ := time.Parse(time.RFC3339, to)
	assert.Equal(t, fromTime.UnixMilli(), created["$gte"])
	assert.Equal(t, toTime.UnixMilli(), created["$lte"])

	// Dạng chỉ có ngày được hiểu là 00:00:00 UTC của ngày đó
	query, errs = BuildLeadQuery(dto.LeadListParams{DateFrom: "2024-01-15"})
	require.Empty(t, errs)
	created, ok = query.Filter["createdAt"].(bson.M)
	require.True(t, ok)
	dayStart, _ := time.Parse(time.RFC3339, "2024-01-15T00:00:00Z")
	assert.Equal(t, dayStart.UnixMilli(), created["$gte"])

	// dateFrom sau dateTo là lỗi
	_, errs = BuildLeadQuery(dto.LeadListParams{DateFrom: to, DateTo: from})
	require.Len(t, errs, 1)
	assert.Equal(t, "dateFrom", errs[0].Field)

	// Sai định dạng
	_, errs = BuildLeadQuery(dto.LeadListParams{DateFrom: "01/01/2024"})
	assert.Len(t, errs, 1)
}

func TestBuildLeadQuery_SortAllowList(t *testing.T) {
	query, errs := BuildLeadQuery(dto.LeadListParams{SortBy: "score", SortOrder: "asc"})
	require.Empty(t, errs)
	assert.Equal(t, "score", query.Sort[0].Key)
	assert.Equal(t, 1, query.Sort[0].Value)

	// Field ngoài allow-list bị từ chối, kể cả field nhạy cảm
	_, errs = BuildLeadQuery(dto.LeadListParams{SortBy: "password"})
	require.Len(t, errs, 1)
	assert.Equal(t, "sortBy", errs[0].Field)

	_, errs = BuildLeadQuery(dto.LeadListParams{SortOrder: "random"})
	require.Len(t, errs, 1)
	assert.Equal(t, "sortOrder", errs[0].Field)
}

func TestBuildLeadQuery_AccumulatesErrors(t *testing.T) {
	_, errs := BuildLeadQuery(dto.LeadListParams{
		Page:     "-1",
		Limit:    "0",
		Status:   "bogus",
		MinScore: "abc",
		SortBy:   "secret",
	})
	assert.Len(t, errs, 5, "mọi tham số sai phải được gom trong một lần trả về")
}

func TestFoldPredicates_CombinesConditions(t *testing.T) {
	min := 10.0
	filter := FoldPredicates([]Predicate{
		ExactPredicate{Field: "status", Value: "new"},
		RangePredicate{Field: "score", Min: &min},
		TextSearchPredicate{Fields: []string{"email"}, Term: "an"},
	})

	assert.Equal(t, "new", filter["status"])
	assert.Contains(t, filter, "score")
	assert.Contains(t, filter, "$or")
}

func TestRangePredicate_EmptyBoundsNoOp(t *testing.T) {
	filter := bson.M{}
	RangePredicate{Field: "score"}.Apply(filter)
	assert.Empty(t, filter, "range không có biên thì không được thêm điều kiện")
}
