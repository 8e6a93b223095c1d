// Package database - Index bổ sung cho leads (compound theo pattern truy vấn) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"lead_center/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateLeadAdditionalIndexes tạo các index bổ sung cho leads.
// Gọi sau CreateIndexes cho collection leads.
func CreateLeadAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	leads := db.Collection(global.MongoDB_ColNames.Leads)

	// leads: (status, createdAt desc) — list theo status, sort mặc định mới nhất trước
	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("lead_status_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// leads: (source, createdAt desc) — list theo source
	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "source", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("lead_source_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// leads: (isQualified, score desc) — lọc qualified kết hợp sort theo score
	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "isQualified", Value: 1},
			{Key: "score", Value: -1},
		},
		Options: options.Index().SetName("lead_qualified_score"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// leads: (assignedTo, status) sparse — danh sách lead theo người phụ trách
	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "assignedTo", Value: 1},
			{Key: "status", Value: 1},
		},
		Options: options.Index().SetName("lead_assigned_status").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
