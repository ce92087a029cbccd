package repository

import (
	"errors"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FileRepository struct {
	DB *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{DB: db}
}

func (r *FileRepository) Create(file *model.File) error {
	return r.DB.Create(file).Error
}

func (r *FileRepository) FindByID(id string) (*model.File, error) {
	var file model.File
	err := r.DB.First(&file, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrFileNotFound
	}
	return &file, err
}

func (r *FileRepository) ListForConversation(convID string, limit, offset int) ([]model.File, int64, error) {
	var files []model.File
	var total int64

	db := r.DB.Model(&model.File{}).Where("conversation_id = ?", convID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&files).Error
	return files, total, err
}

// CreateVersion 在事务内对原始文件行加排他锁后计算下一个版本号，
// 保证同一文件的并发上传拿到严格递增且无空洞的序号
func (r *FileRepository) CreateVersion(version *model.FileVersion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var base model.File
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&base, "id = ?", version.OriginalFileID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrFileNotFound
		}
		if err != nil {
			return err
		}

		var maxVersion int
		if err := tx.Model(&model.FileVersion{}).
			Where("original_file_id = ?", version.OriginalFileID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&maxVersion).Error; err != nil {
			return err
		}

		version.VersionNumber = maxVersion + 1
		return tx.Create(version).Error
	})
}

// ListVersions 版本历史按版本号倒序，最新的在前
func (r *FileRepository) ListVersions(fileID string) ([]model.FileVersion, error) {
	var versions []model.FileVersion
	err := r.DB.Where("original_file_id = ?", fileID).
		Order("version_number DESC").
		Find(&versions).Error
	return versions, err
}
