package validation

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createRequest struct {
	Title string   `json:"title" validate:"notblank,max=200"`
	Body  string   `json:"body" validate:"notblank"`
	Tags  []string `json:"tags" validate:"max=20"`
}

type strictEmailRequest struct {
	Email string `json:"email" validate:"required,emailaddr"`
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     any
		message string
	}{
		{"valid create", createRequest{Title: "t", Body: "b"}, ""},
		{"blank title", createRequest{Title: "   ", Body: "b"}, "title is required"},
		{"missing body", createRequest{Title: "t"}, "body is required"},
		{"bad email", signupRequest{Email: "nope", Password: "SecurePass12!@"}, "email must be a valid email address"},
		{"email without tld", strictEmailRequest{Email: "ada@localhost"}, "email must be a valid email address"},
		{"strict email ok", strictEmailRequest{Email: "ada@example.com"}, ""},
		{"weak password", signupRequest{Email: "a@b.co", Password: "short"}, "password must be at least 12 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeValidation))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}
