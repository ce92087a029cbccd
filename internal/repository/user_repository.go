package repository

import (
	"team_collab_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByIDs(ids []uint) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateLastLogin(id uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).
		Update("last_login", gorm.Expr("CURRENT_TIMESTAMP(3)")).Error
}

// CountByIDs 校验一批用户 ID 是否全部存在
func (r *UserRepository) CountByIDs(ids []uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
