package basesvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type defaultsFixture struct {
	Source      string  `default:"other"`
	Status      string  `default:"new"`
	Retries     int     `default:"3"`
	Ratio       float64 `default:"0.5"`
	Active      bool    `default:"true"`
	NoDefault   string
	AlreadyFull string `default:"fallback"`
}

func TestApplyInsertDefaults(t *testing.T) {
	m := defaultsFixture{AlreadyFull: "giữ nguyên"}
	applyInsertDefaults(&m)

	assert.Equal(t, "other", m.Source)
	assert.Equal(t, "new", m.Status)
	assert.Equal(t, 3, m.Retries)
	assert.Equal(t, 0.5, m.Ratio)
	assert.True(t, m.Active)
	assert.Empty(t, m.NoDefault)
	assert.Equal(t, "giữ nguyên", m.AlreadyFull, "field đã có giá trị không được ghi đè")
}

func TestApplyInsertDefaults_NonPointerNoOp(t *testing.T) {
	m := defaultsFixture{}
	// Truyền value thay vì pointer thì không set được, không panic
	applyInsertDefaults(m)
	assert.Empty(t, m.Source)
}

func TestStripEmptyStrings(t *testing.T) {
	doc := bson.M{
		"email":   "an@example.com",
		"phone":   "",
		"company": "",
		"score":   0,
	}
	stripEmptyStrings(doc)

	assert.Contains(t, doc, "email")
	assert.NotContains(t, doc, "phone", "string rỗng phải bị loại để không đụng unique index sparse")
	assert.NotContains(t, doc, "company")
	assert.Contains(t, doc, "score", "giá trị số 0 không phải string rỗng, phải giữ lại")
}

func TestStampTimestamps_Insert(t *testing.T) {
	doc := bson.M{}
	stampTimestamps(doc, true)

	createdAt, ok := doc["createdAt"].(int64)
	require.True(t, ok)
	assert.Greater(t, createdAt, int64(0))
	assert.Equal(t, doc["createdAt"], doc["updatedAt"])
}

func TestStampTimestamps_UpdateKeepsCreatedAt(t *testing.T) {
	doc := bson.M{"createdAt": int64(12345)}
	stampTimestamps(doc, false)

	assert.Equal(t, int64(12345), doc["createdAt"], "update không được chạm vào createdAt")
	updatedAt, ok := doc["updatedAt"].(int64)
	require.True(t, ok)
	assert.Greater(t, updatedAt, int64(12345))
}

func TestStampTimestamps_InsertPreservesExistingCreatedAt(t *testing.T) {
	doc := bson.M{"createdAt": int64(99999)}
	stampTimestamps(doc, true)
	assert.Equal(t, int64(99999), doc["createdAt"])
}
