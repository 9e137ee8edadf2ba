// Package entity 定义领域实体
package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户实体
//
// ProfileID 是画像存储使用的数值主键，注册时由数据库自增分配，
// 与向量库 user_profiles 集合中的向量一一对应。
type User struct {
	ID                   string     `json:"id" gorm:"primaryKey"`
	ProfileID            int64      `json:"profile_id" gorm:"autoIncrement;uniqueIndex"`
	Email                string     `json:"email" gorm:"uniqueIndex"`
	PasswordHash         string     `json:"-"` // 不在 JSON 中暴露
	Name                 string     `json:"name"`
	Genres               []*Genre   `json:"genres,omitempty" gorm:"many2many:users_genres"`
	RecommendationsReady bool       `json:"recommendations_ready"`
	LastLoginAt          *time.Time `json:"last_login_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewUser 创建新用户
func NewUser(email, name string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetPassword 设置并散列密码
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// GenreNames 返回用户偏好的题材名称列表
func (u *User) GenreNames() []string {
	names := make([]string, 0, len(u.Genres))
	for _, g := range u.Genres {
		names = append(names, g.Name)
	}
	return names
}
