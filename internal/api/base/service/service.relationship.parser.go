package basesvc

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"lead_center/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationshipDef mô tả một quan hệ tham chiếu được khai báo qua struct tag.
// Ví dụ trên model User:
//
//	_Relationships struct{} `relationship:"collection:leads,field:assignedTo,message:Không thể xóa người dùng vì còn %d lead đang được gán"`
//
// Khi xóa document, hệ thống đếm số document trong collection đích có field
// trỏ về _id của document sắp xóa; nếu còn tham chiếu thì chặn xóa.
type RelationshipDef struct {
	Collection string // Tên collection chứa document tham chiếu
	Field      string // Tên field (bson) trỏ về _id của document sắp xóa
	Message    string // Thông báo lỗi, hỗ trợ %d cho số lượng tham chiếu
}

// ParseRelationshipTag parse giá trị của struct tag `relationship`.
// Nhiều quan hệ được phân tách bằng dấu chấm phẩy, mỗi quan hệ gồm các cặp
// key:value phân tách bằng dấu phẩy (riêng message được phép chứa dấu phẩy
// nên luôn đặt cuối cùng).
//
// Parameters:
// - tag: Giá trị tag cần parse
//
// Returns:
// - []RelationshipDef: Danh sách quan hệ đã parse
// - error: Lỗi nếu tag sai định dạng
func ParseRelationshipTag(tag string) ([]RelationshipDef, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, nil
	}

	var defs []RelationshipDef
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		def, err := parseRelationshipTagValue(part)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// parseRelationshipTagValue parse một quan hệ đơn lẻ từ tag.
func parseRelationshipTagValue(value string) (RelationshipDef, error) {
	var def RelationshipDef

	// message phải đứng cuối vì có thể chứa dấu phẩy
	if idx := strings.Index(value, "message:"); idx >= 0 {
		def.Message = strings.TrimSpace(value[idx+len("message:"):])
		value = strings.TrimSuffix(strings.TrimSpace(value[:idx]), ",")
	}

	for _, kv := range strings.Split(value, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		pair := strings.SplitN(kv, ":", 2)
		if len(pair) != 2 {
			return def, fmt.Errorf("relationship tag không hợp lệ: %q", kv)
		}
		key := strings.TrimSpace(pair[0])
		val := strings.TrimSpace(pair[1])
		switch key {
		case "collection":
			def.Collection = val
		case "field":
			def.Field = val
		default:
			return def, fmt.Errorf("relationship tag chứa key không hỗ trợ: %q", key)
		}
	}

	if def.Collection == "" || def.Field == "" {
		return def, fmt.Errorf("relationship tag thiếu collection hoặc field: %q", value)
	}
	if def.Message == "" {
		def.Message = fmt.Sprintf("Không thể xóa vì còn %%d bản ghi trong %s đang tham chiếu", def.Collection)
	}
	return def, nil
}

// ValidateRelationships duyệt các struct tag `relationship` trên model và
// kiểm tra từng quan hệ trước khi xóa document có _id tương ứng.
//
// Parameters:
// - ctx: Context cho request
// - model: Model chứa khai báo quan hệ
// - id: ObjectID của document sắp xóa
//
// Returns:
// - error: common.Error với mã BIZ nếu còn tham chiếu, nil nếu an toàn để xóa
func ValidateRelationships(ctx context.Context, model interface{}, id primitive.ObjectID) error {
	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("relationship")
		if tag == "" {
			continue
		}
		defs, err := ParseRelationshipTag(tag)
		if err != nil {
			return common.NewError(common.ErrCodeBusiness, err.Error(), common.StatusInternalServerError, err)
		}
		for _, def := range defs {
			count, err := CheckRelationshipExists(ctx, def.Collection, def.Field, id)
			if err != nil {
				return err
			}
			if count > 0 {
				return common.NewError(
					common.ErrCodeBusinessOperation,
					fmt.Sprintf(def.Message, count),
					common.StatusConflict,
					nil,
				)
			}
		}
	}
	return nil
}
