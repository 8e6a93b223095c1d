package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead_center/internal/api/auth/models"
	basesvc "lead_center/internal/api/base/service"
	"lead_center/internal/common"
	"lead_center/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoSessionStore lưu phiên trong collection sessions.
// Phiên sống qua restart; TTL index trên expiresAt là lớp dọn dẹp thứ hai
// bên cạnh sweep worker.
type MongoSessionStore struct {
	crud basesvc.BaseServiceMongo[models.Session]
}

// NewMongoSessionStore tạo store với collection sessions từ registry.
func NewMongoSessionStore() (*MongoSessionStore, error) {
	collection, exists := global.RegistryCollections.Get(global.MongoDB_ColNames.Sessions)
	if !exists {
		return nil, fmt.Errorf("collection %s chưa được đăng ký", global.MongoDB_ColNames.Sessions)
	}
	return &MongoSessionStore{
		crud: basesvc.NewBaseServiceMongo[models.Session](collection),
	}, nil
}

// Put lưu hoặc ghi đè phiên theo SessionID (upsert).
func (s *MongoSessionStore) Put(ctx context.Context, session models.Session) error {
	if session.SessionID == "" {
		return common.ErrRequiredField
	}
	update, err := basesvc.ToUpdateData(&session)
	if err != nil {
		return err
	}
	delete(update.Set, "_id")
	_, err = s.crud.Upsert(ctx, bson.M{"sessionId": session.SessionID}, update)
	return err
}

// Get trả về phiên theo SessionID.
func (s *MongoSessionStore) Get(ctx context.Context, sessionID string) (models.Session, error) {
	return s.crud.FindOne(ctx, bson.M{"sessionId": sessionID}, nil)
}

// Delete xóa phiên theo SessionID. Phiên không tồn tại không coi là lỗi.
func (s *MongoSessionStore) Delete(ctx context.Context, sessionID string) error {
	err := s.crud.DeleteOne(ctx, bson.M{"sessionId": sessionID})
	if err != nil && errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}

// DeleteByUser xóa toàn bộ phiên của một user.
func (s *MongoSessionStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.crud.DeleteMany(ctx, bson.M{"userId": userID})
}

// Sweep xóa các phiên đã hết hạn theo expiresAt.
func (s *MongoSessionStore) Sweep(ctx context.Context) (int64, error) {
	cutoff := primitive.NewDateTimeFromTime(time.Now())
	return s.crud.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": cutoff}})
}
