package utility

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// String2ObjectID chuyển đổi chuỗi hex thành primitive.ObjectID.
// Chuỗi không hợp lệ trả về ObjectID rỗng.
//
// Parameters:
//   - id: chuỗi hex 24 ký tự
//
// Returns:
//   - primitive.ObjectID: ObjectID tương ứng, hoặc ObjectID rỗng nếu chuỗi không hợp lệ
func String2ObjectID(id string) primitive.ObjectID {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return objectID
}
