package users_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *users.User
		want string
	}{
		{name: "nil user", user: nil, want: ""},
		{name: "full name", user: &users.User{Name: "Jane Doe", Email: "jane@example.com"}, want: "Jane Doe"},
		{name: "first and last", user: &users.User{FirstName: "Jane", LastName: "Doe"}, want: "Jane Doe"},
		{name: "email fallback", user: &users.User{Email: "jane@example.com"}, want: "jane@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestIsVerified(t *testing.T) {
	assert.False(t, (*users.User)(nil).IsVerified())
	assert.False(t, (&users.User{}).IsVerified())
	assert.True(t, (&users.User{EmailVerifiedAt: utils.Ptr(time.Now())}).IsVerified())
}

func TestClone(t *testing.T) {
	verified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	original := &users.User{ID: 7, Name: "Jane", EmailVerifiedAt: &verified}

	clone := original.Clone()
	require.NotSame(t, original, clone)
	require.NotSame(t, original.EmailVerifiedAt, clone.EmailVerifiedAt)
	assert.Equal(t, original, clone)

	clone.Name = "Changed"
	assert.Equal(t, "Jane", original.Name)
	assert.Nil(t, (*users.User)(nil).Clone())
}
