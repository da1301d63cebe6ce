// Package model 定义核心数据模型
//
// user.go 包含用户相关的数据模型定义：
//   - User：用户（认证主体，携带角色与收藏列表）
//   - Role：角色枚举（viewer < editor < admin，全序）
package model

import "time"

// Role 用户角色
//
// 角色是封闭枚举，权限比较通过 Level() 的全序完成，
// 不在各 handler 里散落字符串相等判断。
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// roleLevels 角色能力等级，数值越大权限越高
var roleLevels = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level 返回角色能力等级，未知角色返回 0
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast 当前角色是否覆盖 required 的全部能力
func (r Role) AtLeast(required Role) bool {
	return r.Level() >= required.Level() && required.Level() > 0
}

// User 用户
type User struct {
	ID           string     `json:"id" bson:"_id"`
	Username     string     `json:"username" bson:"username"`
	Email        string     `json:"email" bson:"email"`
	PasswordHash string     `json:"-" bson:"password_hash"` // never expose in JSON
	Role         Role       `json:"role" bson:"role"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	Favorites    []string   `json:"favorites" bson:"favorites"`
}
