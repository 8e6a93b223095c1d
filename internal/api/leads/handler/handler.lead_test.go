package leadhdl

import (
	"testing"

	authmdl "lead_center/internal/api/auth/models"
	"lead_center/internal/api/leads/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDefaultDeleteAuthorizer_AdminDeletesAnything(t *testing.T) {
	admin := authmdl.User{ID: primitive.NewObjectID(), Role: authmdl.RoleAdmin}
	lead := models.Lead{AssignedTo: primitive.NewObjectID()}

	assert.True(t, DefaultDeleteAuthorizer(admin, lead))
	assert.True(t, DefaultDeleteAuthorizer(admin, models.Lead{}), "admin xóa được cả lead chưa gán")
}

func TestDefaultDeleteAuthorizer_AssigneeDeletesOwnLead(t *testing.T) {
	user := authmdl.User{ID: primitive.NewObjectID(), Role: authmdl.RoleUser}

	assert.True(t, DefaultDeleteAuthorizer(user, models.Lead{AssignedTo: user.ID}))
	assert.False(t, DefaultDeleteAuthorizer(user, models.Lead{AssignedTo: primitive.NewObjectID()}),
		"user thường không xóa được lead gán cho người khác")
	assert.False(t, DefaultDeleteAuthorizer(user, models.Lead{}),
		"user thường không xóa được lead chưa gán")
}
