package dto

import (
	"encoding/json"
	"testing"

	"lead_center/internal/global"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupValidator(t *testing.T) {
	t.Helper()
	if global.Validate == nil {
		global.InitValidator()
	}
}

func validCreateInput() LeadCreateInput {
	return LeadCreateInput{
		FirstName: "An",
		LastName:  "Nguyễn",
		Email:     "an.nguyen@example.com",
		Phone:     "+84901234567",
		Company:   "Công ty TNHH ABC",
		City:      "Hà Nội",
		State:     "HN",
		Source:    "website",
	}
}

// failedFields gom tên các field không qua validate.
func failedFields(t *testing.T, err error) map[string]bool {
	t.Helper()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs, "lỗi trả về phải là ValidationErrors")
	fields := make(map[string]bool)
	for _, fe := range verrs {
		fields[fe.Field()] = true
	}
	return fields
}

func TestLeadCreateInput_Valid(t *testing.T) {
	setupValidator(t)
	input := validCreateInput()
	assert.NoError(t, global.Validate.Struct(&input))
}

func TestLeadCreateInput_RequiresContactFields(t *testing.T) {
	setupValidator(t)

	// Chỉ có tên và email: các trường liên hệ và source bắt buộc phải báo lỗi
	input := LeadCreateInput{
		FirstName: "An",
		LastName:  "Nguyễn",
		Email:     "an.nguyen@example.com",
	}
	err := global.Validate.Struct(&input)
	require.Error(t, err, "thiếu phone/company/city/state/source phải bị từ chối")

	fields := failedFields(t, err)
	for _, name := range []string{"Phone", "Company", "City", "State", "Source"} {
		assert.True(t, fields[name], "field %s phải có lỗi required", name)
	}
}

func TestPagination_WireNames(t *testing.T) {
	raw, err := json.Marshal(Pagination{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasNextPage: true, HasPrevPage: true})
	require.NoError(t, err)

	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, key := range []string{"currentPage", "itemsPerPage", "totalItems", "totalPages", "hasNextPage", "hasPrevPage"} {
		assert.Contains(t, keys, key)
	}
}

func TestLeadCreateInput_RejectsBadEnumAndPhone(t *testing.T) {
	setupValidator(t)

	input := validCreateInput()
	input.Source = "tiktok"
	input.Phone = "abc"
	err := global.Validate.Struct(&input)
	require.Error(t, err)

	fields := failedFields(t, err)
	assert.True(t, fields["Source"], "source ngoài enum phải bị từ chối")
	assert.True(t, fields["Phone"], "phone sai định dạng E.164 phải bị từ chối")
}
