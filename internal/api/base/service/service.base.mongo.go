package basesvc

// Package basesvc cung cấp lớp service CRUD dùng chung cho MongoDB.
// Mọi service domain (users, sessions, leads) đều compose BaseServiceMongoImpl
// để tái sử dụng logic insert/find/update/delete, phân trang và kiểm tra quan hệ.

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	basemdl "lead_center/internal/api/base/models"
	"lead_center/internal/common"
	"lead_center/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpdateData chứa dữ liệu cập nhật theo các operator của MongoDB.
// Các field được map trực tiếp sang operator tương ứng khi marshal bson.
type UpdateData struct {
	Set         map[string]interface{} `bson:"$set,omitempty"`         // Dữ liệu cập nhật
	SetOnInsert map[string]interface{} `bson:"$setOnInsert,omitempty"` // Dữ liệu chỉ set khi insert (upsert)
	Unset       map[string]interface{} `bson:"$unset,omitempty"`       // Các trường cần xóa
	Push        map[string]interface{} `bson:"$push,omitempty"`        // Thêm phần tử vào mảng
	AddToSet    map[string]interface{} `bson:"$addToSet,omitempty"`    // Thêm phần tử vào mảng (không trùng lặp)
}

// ToUpdateData chuyển đổi một model bất kỳ sang UpdateData với operator $set.
// Dùng utility.ToMap (bson marshal/unmarshal) để giữ đúng tên field theo bson tag.
//
// Parameters:
// - model: Model cần chuyển đổi
//
// Returns:
// - *UpdateData: Dữ liệu cập nhật với $set
// - error: Lỗi nếu có
func ToUpdateData(model interface{}) (*UpdateData, error) {
	dataMap, err := utility.ToMap(model)
	if err != nil {
		return nil, common.NewError(common.ErrCodeValidationFormat, "Không thể chuyển đổi dữ liệu cập nhật", common.StatusBadRequest, err)
	}
	return &UpdateData{Set: dataMap}, nil
}

// BaseServiceMongo định nghĩa interface chứa các phương thức cơ bản cho MongoDB.
// Sử dụng Generic Type T để có thể tái sử dụng cho nhiều loại model khác nhau.
type BaseServiceMongo[T any] interface {
	InsertOne(ctx context.Context, data T) (T, error)
	InsertMany(ctx context.Context, data []T) ([]T, error)
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error)
	FindOneById(ctx context.Context, id primitive.ObjectID) (T, error)
	FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]T, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error)
	FindWithPagination(ctx context.Context, filter interface{}, page int64, limit int64, opts *options.FindOptions) (*basemdl.PaginateResult[T], error)
	UpdateOne(ctx context.Context, filter interface{}, update *UpdateData, opts *options.UpdateOptions) (T, error)
	UpdateMany(ctx context.Context, filter interface{}, update *UpdateData, opts *options.UpdateOptions) (int64, error)
	UpdateById(ctx context.Context, id primitive.ObjectID, update *UpdateData) (T, error)
	DeleteOne(ctx context.Context, filter interface{}) error
	DeleteById(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update *UpdateData, opts *options.FindOneAndUpdateOptions) (T, error)
	FindOneAndDelete(ctx context.Context, filter interface{}, opts *options.FindOneAndDeleteOptions) (T, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)
	Upsert(ctx context.Context, filter interface{}, update *UpdateData) (T, error)
	DocumentExists(ctx context.Context, filter interface{}) (bool, error)
	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error)
	Collection() *mongo.Collection
}

// BaseServiceMongoImpl là implementation của BaseServiceMongo.
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
}

// NewBaseServiceMongo tạo mới một BaseServiceMongoImpl với collection được cung cấp.
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{
		collection: collection,
	}
}

// Collection trả về collection MongoDB mà service đang thao tác.
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// ==========================================================================
// DEFAULT VALUE HELPERS
// Struct tag `default:"..."` trên model được áp dụng khi insert nếu field
// đang là zero value. Hỗ trợ string, bool, int/int64, float64.
// ==========================================================================

// parseDefaultValue chuyển chuỗi default theo kind của field.
func parseDefaultValue(raw string, kind reflect.Kind) (interface{}, error) {
	switch kind {
	case reflect.String:
		return raw, nil
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(raw, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, 64)
	default:
		return nil, fmt.Errorf("không hỗ trợ default cho kind %s", kind)
	}
}

// applyInsertDefaults áp dụng default tag cho các field đang là zero value.
// Model phải là pointer đến struct để có thể set giá trị.
func applyInsertDefaults(model interface{}) {
	val := reflect.ValueOf(model)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		defaultTag := fieldType.Tag.Get("default")
		if defaultTag == "" || !field.CanSet() {
			continue
		}
		if !field.IsZero() {
			continue
		}

		parsed, err := parseDefaultValue(defaultTag, field.Kind())
		if err != nil {
			continue
		}
		pv := reflect.ValueOf(parsed)
		if pv.Type().ConvertibleTo(field.Type()) {
			field.Set(pv.Convert(field.Type()))
		}
	}
}

// stripEmptyStrings loại bỏ các field string rỗng khỏi document trước khi insert.
// Cần thiết cho các unique index sparse: field rỗng không được ghi xuống DB
// để không vi phạm ràng buộc unique giữa các document cùng thiếu giá trị.
func stripEmptyStrings(doc bson.M) bson.M {
	for k, v := range doc {
		if str, ok := v.(string); ok && str == "" {
			delete(doc, k)
		}
	}
	return doc
}

// stampTimestamps gán createdAt/updatedAt (UnixMilli) vào document.
func stampTimestamps(doc bson.M, isInsert bool) {
	now := time.Now().UnixMilli()
	if isInsert {
		if v, ok := doc["createdAt"]; !ok || isZeroNumeric(v) {
			doc["createdAt"] = now
		}
	}
	doc["updatedAt"] = now
}

func isZeroNumeric(v interface{}) bool {
	switch n := v.(type) {
	case int64:
		return n == 0
	case int32:
		return n == 0
	case int:
		return n == 0
	case float64:
		return n == 0
	}
	return false
}

// getIDFromModel lấy _id từ model (field có bson tag "_id").
func getIDFromModel(model interface{}) (primitive.ObjectID, bool) {
	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return primitive.NilObjectID, false
	}
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		bsonTag := typ.Field(i).Tag.Get("bson")
		if bsonTag == "_id" || strings.HasPrefix(bsonTag, "_id,") {
			if id, ok := val.Field(i).Interface().(primitive.ObjectID); ok {
				return id, true
			}
		}
	}
	return primitive.NilObjectID, false
}

// ==========================================================================
// INSERT
// ==========================================================================

// InsertOne thêm mới một document.
// Tự động: gán _id mới, áp dụng default tag, gán createdAt/updatedAt (UnixMilli),
// loại bỏ các field string rỗng (phục vụ sparse unique index).
//
// Parameters:
// - ctx: Context cho request
// - data: Dữ liệu cần thêm mới
//
// Returns:
// - T: Document đã được thêm mới (đọc lại từ DB)
// - error: Lỗi nếu có
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	applyInsertDefaults(&data)

	doc, err := utility.ToMap(&data)
	if err != nil {
		return zero, common.NewError(common.ErrCodeValidationFormat, "Không thể chuyển đổi dữ liệu", common.StatusBadRequest, err)
	}

	id := primitive.NewObjectID()
	doc["_id"] = id
	stampTimestamps(doc, true)
	doc = stripEmptyStrings(doc)

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return zero, common.ConvertMongoError(err)
	}

	return s.FindOneById(ctx, id)
}

// InsertMany thêm nhiều document trong một lần gọi.
// Áp dụng cùng quy tắc default/timestamp như InsertOne cho từng phần tử.
func (s *BaseServiceMongoImpl[T]) InsertMany(ctx context.Context, data []T) ([]T, error) {
	if len(data) == 0 {
		return []T{}, nil
	}

	docs := make([]interface{}, 0, len(data))
	ids := make([]primitive.ObjectID, 0, len(data))
	for i := range data {
		applyInsertDefaults(&data[i])
		doc, err := utility.ToMap(&data[i])
		if err != nil {
			return nil, common.NewError(common.ErrCodeValidationFormat, "Không thể chuyển đổi dữ liệu", common.StatusBadRequest, err)
		}
		id := primitive.NewObjectID()
		doc["_id"] = id
		stampTimestamps(doc, true)
		doc = stripEmptyStrings(doc)
		docs = append(docs, doc)
		ids = append(ids, id)
	}

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	return s.FindManyByIds(ctx, ids)
}

// ==========================================================================
// FIND
// ==========================================================================

// FindOne tìm một document theo filter.
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var result T
	err := s.collection.FindOne(ctx, normalizeNilFilter(filter), opts).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return result, common.ErrNotFound
		}
		return result, common.ConvertMongoError(err)
	}
	return result, nil
}

// FindOneById tìm một document theo ObjectID.
func (s *BaseServiceMongoImpl[T]) FindOneById(ctx context.Context, id primitive.ObjectID) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": id}, nil)
}

// FindManyByIds tìm nhiều document theo danh sách ObjectID.
func (s *BaseServiceMongoImpl[T]) FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	return s.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// Find tìm nhiều document theo filter.
// Luôn trả về slice (rỗng nếu không có kết quả), không bao giờ nil.
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	cursor, err := s.collection.Find(ctx, normalizeNilFilter(filter), opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return results, nil
}

// FindWithPagination tìm nhiều document với phân trang.
// Skip được tính theo (page-1)*limit; service tự set Skip/Limit vào options
// để đảm bảo tính nhất quán giữa các handler.
//
// Parameters:
// - ctx: Context cho request
// - filter: Điều kiện tìm kiếm
// - page: Số trang (>= 1)
// - limit: Số lượng item trên một trang
// - opts: Tùy chọn tìm kiếm bổ sung (sort, projection)
//
// Returns:
// - *PaginateResult[T]: Kết quả phân trang kèm tổng số item và tổng số trang
// - error: Lỗi nếu có
func (s *BaseServiceMongoImpl[T]) FindWithPagination(ctx context.Context, filter interface{}, page int64, limit int64, opts *options.FindOptions) (*basemdl.PaginateResult[T], error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	f := normalizeNilFilter(filter)

	if opts == nil {
		opts = options.Find()
	}
	opts.SetSkip((page - 1) * limit)
	opts.SetLimit(limit)

	// Count và find chạy song song, mỗi truy vấn độc lập trên cùng filter
	var (
		wg       sync.WaitGroup
		total    int64
		countErr error
		items    []T
		findErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		total, countErr = s.collection.CountDocuments(ctx, f)
	}()
	go func() {
		defer wg.Done()
		items, findErr = s.Find(ctx, f, opts)
	}()
	wg.Wait()

	if countErr != nil {
		return nil, common.ConvertMongoError(countErr)
	}
	if findErr != nil {
		return nil, findErr
	}

	var totalPage int64
	if total > 0 {
		totalPage = (total + limit - 1) / limit
	}

	return &basemdl.PaginateResult[T]{
		Page:      page,
		Limit:     limit,
		ItemCount: int64(len(items)),
		Items:     items,
		Total:     total,
		TotalPage: totalPage,
	}, nil
}

// ==========================================================================
// UPDATE
// ==========================================================================

// buildUpdateDocument chuyển UpdateData thành bson.M và stamp updatedAt vào $set.
func buildUpdateDocument(update *UpdateData) bson.M {
	doc := bson.M{}
	if update != nil {
		if len(update.Set) > 0 {
			doc["$set"] = update.Set
		}
		if len(update.SetOnInsert) > 0 {
			doc["$setOnInsert"] = update.SetOnInsert
		}
		if len(update.Unset) > 0 {
			doc["$unset"] = update.Unset
		}
		if len(update.Push) > 0 {
			doc["$push"] = update.Push
		}
		if len(update.AddToSet) > 0 {
			doc["$addToSet"] = update.AddToSet
		}
	}

	// updatedAt luôn được stamp khi có thao tác update
	set, ok := doc["$set"].(map[string]interface{})
	if !ok {
		set = map[string]interface{}{}
	}
	set["updatedAt"] = time.Now().UnixMilli()
	doc["$set"] = set

	return doc
}

// UpdateOne cập nhật một document theo filter và trả về document sau cập nhật.
func (s *BaseServiceMongoImpl[T]) UpdateOne(ctx context.Context, filter interface{}, update *UpdateData, opts *options.UpdateOptions) (T, error) {
	var zero T
	f := normalizeNilFilter(filter)

	result, err := s.collection.UpdateOne(ctx, f, buildUpdateDocument(update), opts)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return zero, common.ErrNotFound
	}
	return s.FindOne(ctx, f, nil)
}

// UpdateMany cập nhật nhiều document theo filter, trả về số lượng đã sửa.
func (s *BaseServiceMongoImpl[T]) UpdateMany(ctx context.Context, filter interface{}, update *UpdateData, opts *options.UpdateOptions) (int64, error) {
	result, err := s.collection.UpdateMany(ctx, normalizeNilFilter(filter), buildUpdateDocument(update), opts)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return result.ModifiedCount, nil
}

// UpdateById cập nhật một document theo ID và trả về document sau cập nhật.
func (s *BaseServiceMongoImpl[T]) UpdateById(ctx context.Context, id primitive.ObjectID, update *UpdateData) (T, error) {
	return s.UpdateOne(ctx, bson.M{"_id": id}, update, nil)
}

// FindOneAndUpdate tìm và cập nhật một document, trả về bản ghi SAU khi cập nhật.
func (s *BaseServiceMongoImpl[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update *UpdateData, opts *options.FindOneAndUpdateOptions) (T, error) {
	var result T
	if opts == nil {
		opts = options.FindOneAndUpdate()
	}
	opts.SetReturnDocument(options.After)

	err := s.collection.FindOneAndUpdate(ctx, normalizeNilFilter(filter), buildUpdateDocument(update), opts).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return result, common.ErrNotFound
		}
		return result, common.ConvertMongoError(err)
	}
	return result, nil
}

// Upsert cập nhật document theo filter, tạo mới nếu chưa tồn tại.
// Khi tạo mới: gán _id và createdAt qua $setOnInsert.
func (s *BaseServiceMongoImpl[T]) Upsert(ctx context.Context, filter interface{}, update *UpdateData) (T, error) {
	var zero T
	f := normalizeNilFilter(filter)

	if update == nil {
		update = &UpdateData{}
	}
	if update.SetOnInsert == nil {
		update.SetOnInsert = map[string]interface{}{}
	}
	// Tránh conflict giữa $set và $setOnInsert trên cùng một path
	if _, ok := update.Set["_id"]; !ok {
		update.SetOnInsert["_id"] = primitive.NewObjectID()
	}
	if _, ok := update.Set["createdAt"]; !ok {
		update.SetOnInsert["createdAt"] = time.Now().UnixMilli()
	}

	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, f, buildUpdateDocument(update), opts); err != nil {
		return zero, common.ConvertMongoError(err)
	}
	return s.FindOne(ctx, f, nil)
}

// ==========================================================================
// DELETE
// Trước khi xóa, các quan hệ khai báo qua struct tag `relationship` trên model
// được kiểm tra để chặn xóa dữ liệu đang được tham chiếu.
// ==========================================================================

// DeleteOne xóa một document theo filter.
func (s *BaseServiceMongoImpl[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	f := normalizeNilFilter(filter)

	doc, err := s.FindOne(ctx, f, nil)
	if err != nil {
		return err
	}
	if err := s.validateRelationshipsDelete(ctx, doc); err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, f)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteById xóa một document theo ID.
func (s *BaseServiceMongoImpl[T]) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	return s.DeleteOne(ctx, bson.M{"_id": id})
}

// DeleteMany xóa nhiều document theo filter, trả về số lượng đã xóa.
// Kiểm tra quan hệ cho từng document trước khi thực hiện xóa.
func (s *BaseServiceMongoImpl[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	f := normalizeNilFilter(filter)

	docs, err := s.Find(ctx, f, nil)
	if err != nil {
		return 0, err
	}
	for i := range docs {
		if err := s.validateRelationshipsDelete(ctx, docs[i]); err != nil {
			return 0, err
		}
	}

	result, err := s.collection.DeleteMany(ctx, f)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return result.DeletedCount, nil
}

// FindOneAndDelete tìm và xóa một document, trả về document đã xóa.
func (s *BaseServiceMongoImpl[T]) FindOneAndDelete(ctx context.Context, filter interface{}, opts *options.FindOneAndDeleteOptions) (T, error) {
	var result T
	f := normalizeNilFilter(filter)

	doc, err := s.FindOne(ctx, f, nil)
	if err != nil {
		return result, err
	}
	if err := s.validateRelationshipsDelete(ctx, doc); err != nil {
		return result, err
	}

	err = s.collection.FindOneAndDelete(ctx, f, opts).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return result, common.ErrNotFound
		}
		return result, common.ConvertMongoError(err)
	}
	return result, nil
}

// validateRelationshipsDelete kiểm tra các quan hệ tham chiếu trước khi xóa document.
func (s *BaseServiceMongoImpl[T]) validateRelationshipsDelete(ctx context.Context, doc T) error {
	id, ok := getIDFromModel(doc)
	if !ok || id.IsZero() {
		return nil
	}
	return ValidateRelationships(ctx, doc, id)
}

// ==========================================================================
// COUNT / DISTINCT / EXISTS / AGGREGATE
// ==========================================================================

// CountDocuments đếm số lượng document theo filter.
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, normalizeNilFilter(filter))
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}

// Distinct lấy danh sách giá trị duy nhất của một trường.
func (s *BaseServiceMongoImpl[T]) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	values, err := s.collection.Distinct(ctx, fieldName, normalizeNilFilter(filter))
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return values, nil
}

// DocumentExists kiểm tra có tồn tại document thỏa mãn filter không.
func (s *BaseServiceMongoImpl[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	err := s.collection.FindOne(ctx, normalizeNilFilter(filter)).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, common.ConvertMongoError(err)
}

// Aggregate chạy một aggregation pipeline và trả về kết quả dạng bson.M.
// Dùng cho các thống kê (stats, analytics) không map trực tiếp vào model T.
func (s *BaseServiceMongoImpl[T]) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	results := []bson.M{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return results, nil
}

// normalizeNilFilter đảm bảo filter nil được thay bằng bson.M rỗng.
func normalizeNilFilter(filter interface{}) interface{} {
	if filter == nil {
		return bson.M{}
	}
	if m, ok := filter.(map[string]interface{}); ok && m == nil {
		return bson.M{}
	}
	return filter
}
