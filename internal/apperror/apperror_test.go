package apperror

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsClassify(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{BadRequest("bad"), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Internal("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.Status)
		assert.Equal(t, tt.err.Message, tt.err.Error())
	}
}

func TestInvalidIDNamesField(t *testing.T) {
	err := InvalidID("id", "abc")
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Invalid id: abc.", err.Message)
}

func TestValidationErrorJoinsFields(t *testing.T) {
	var v ValidationError
	assert.False(t, v.HasErrors())

	v.Add("name", "Name is required").Add("email", "Email is not valid")
	assert.True(t, v.HasErrors())
	assert.Equal(t, "Name is required, Email is not valid", v.Error())
}
