package model

import "time"

type UserRole string

const (
	Member UserRole = "member"
	Admin  UserRole = "admin"
)

// User 平台参与者。身份体系只提供认证后的用户ID，这里仅保留登录所需的最小字段
// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('member','admin');default:'member'" json:"role"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
