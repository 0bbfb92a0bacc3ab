package model

import (
	"context"

	"authpages/internal/entity/db"
)

// Repository 定义本地认证后端所需的数据库操作
type Repository interface {
	CreateUser(ctx context.Context, user *db.User) error
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id uint) (*db.User, error)
}
