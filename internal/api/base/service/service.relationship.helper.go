package basesvc

import (
	"context"
	"fmt"

	"lead_center/internal/common"
	"lead_center/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckRelationshipExists đếm số document trong collection đích có field trỏ
// về id cho trước. Collection được lấy từ registry toàn cục.
//
// Parameters:
// - ctx: Context cho request
// - collectionName: Tên collection đích
// - fieldName: Tên field (bson) chứa tham chiếu
// - id: ObjectID cần kiểm tra
//
// Returns:
// - int64: Số lượng document đang tham chiếu
// - error: Lỗi nếu collection chưa đăng ký hoặc truy vấn thất bại
func CheckRelationshipExists(ctx context.Context, collectionName string, fieldName string, id primitive.ObjectID) (int64, error) {
	collection, exists := global.RegistryCollections.Get(collectionName)
	if !exists {
		return 0, common.NewError(
			common.ErrCodeDatabase,
			fmt.Sprintf("Collection '%s' chưa được đăng ký trong registry", collectionName),
			common.StatusInternalServerError,
			nil,
		)
	}

	count, err := collection.CountDocuments(ctx, bson.M{fieldName: id})
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}
