package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển đổi một struct thành map[string]interface{} thông qua bson marshal/unmarshal,
// giữ nguyên các tag bson của struct.
//
// Parameters:
//   - s: struct cần chuyển đổi
//
// Returns:
//   - map[string]interface{}: bản đồ kết quả
//   - error: lỗi nếu quá trình marshal/unmarshal thất bại
func ToMap(s interface{}) (map[string]interface{}, error) {
	var stringInterfaceMap map[string]interface{}
	itr, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("không thể marshal dữ liệu: %w", err)
	}
	if err := bson.Unmarshal(itr, &stringInterfaceMap); err != nil {
		return nil, fmt.Errorf("không thể unmarshal dữ liệu: %w", err)
	}
	return stringInterfaceMap, nil
}
