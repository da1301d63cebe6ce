package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"library-admin/internal/shared/model"
)

// EnsureAdminUser 确保管理员用户存在（启动时调用）
// 仅在用户集合为空时创建，避免覆盖已有账号体系。
func EnsureAdminUser(ctx context.Context, store UserStore, username, email, password string) error {
	if username == "" || password == "" {
		return nil
	}

	count, err := store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := &model.User{
		ID:           NewID("usr"),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now(),
		Favorites:    []string{},
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("[auth] Created admin user: %s (%s)", username, user.ID)
	return nil
}
