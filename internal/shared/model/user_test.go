package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRole_AtLeast 验证角色全序：viewer < editor < admin
func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required Role
		expected bool
	}{
		{"admin covers admin", RoleAdmin, RoleAdmin, true},
		{"admin covers editor", RoleAdmin, RoleEditor, true},
		{"admin covers viewer", RoleAdmin, RoleViewer, true},
		{"editor covers editor", RoleEditor, RoleEditor, true},
		{"editor covers viewer", RoleEditor, RoleViewer, true},
		{"editor lacks admin", RoleEditor, RoleAdmin, false},
		{"viewer covers viewer", RoleViewer, RoleViewer, true},
		{"viewer lacks editor", RoleViewer, RoleEditor, false},
		{"viewer lacks admin", RoleViewer, RoleAdmin, false},
		{"unknown role lacks viewer", Role("superuser"), RoleViewer, false},
		{"unknown required never satisfied", RoleAdmin, Role("root"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.role.AtLeast(tt.required))
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleViewer.Valid())
	assert.True(t, RoleEditor.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("superuser").Valid())
}

// TestUser_JSON password_hash 绝不出现在 JSON 输出中
func TestUser_JSON(t *testing.T) {
	u := User{
		ID:           "usr-abc123",
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$12$secret",
		Role:         RoleViewer,
	}
	data, err := json.Marshal(u)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "password_hash")
	assert.NotContains(t, string(data), "$2a$12$secret")
}
