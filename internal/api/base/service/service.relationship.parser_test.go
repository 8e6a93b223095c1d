package basesvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelationshipTag_Single(t *testing.T) {
	defs, err := ParseRelationshipTag("collection:leads,field:assignedTo,message:Không thể xóa vì còn %d lead")
	require.NoError(t, err)
	require.Len(t, defs, 1)

	assert.Equal(t, "leads", defs[0].Collection)
	assert.Equal(t, "assignedTo", defs[0].Field)
	assert.Equal(t, "Không thể xóa vì còn %d lead", defs[0].Message)
}

func TestParseRelationshipTag_MessageContainsComma(t *testing.T) {
	defs, err := ParseRelationshipTag("collection:leads,field:assignedTo,message:Không thể xóa vì có %d lead đang được gán. Vui lòng gỡ gán, rồi thử lại.")
	require.NoError(t, err)
	require.Len(t, defs, 1)

	assert.Contains(t, defs[0].Message, "Vui lòng gỡ gán, rồi thử lại.",
		"dấu phẩy trong message không được cắt message")
}

func TestParseRelationshipTag_Multiple(t *testing.T) {
	defs, err := ParseRelationshipTag("collection:leads,field:assignedTo;collection:sessions,field:userId")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "leads", defs[0].Collection)
	assert.Equal(t, "sessions", defs[1].Collection)
}

func TestParseRelationshipTag_DefaultMessage(t *testing.T) {
	defs, err := ParseRelationshipTag("collection:leads,field:assignedTo")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Contains(t, defs[0].Message, "%d", "message mặc định phải có chỗ cho số lượng tham chiếu")
	assert.Contains(t, defs[0].Message, "leads")
}

func TestParseRelationshipTag_Invalid(t *testing.T) {
	// Thiếu field
	_, err := ParseRelationshipTag("collection:leads")
	assert.Error(t, err)

	// Thiếu collection
	_, err = ParseRelationshipTag("field:assignedTo")
	assert.Error(t, err)

	// Key không hỗ trợ
	_, err = ParseRelationshipTag("collection:leads,field:x,unknown:y")
	assert.Error(t, err)
}

func TestParseRelationshipTag_Empty(t *testing.T) {
	defs, err := ParseRelationshipTag("")
	require.NoError(t, err)
	assert.Nil(t, defs)

	defs, err = ParseRelationshipTag("  ;  ")
	require.NoError(t, err)
	assert.Empty(t, defs)
}
