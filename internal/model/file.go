package model

import (
	"time"

	"gorm.io/gorm"
)

// File 附件元数据，同时挂在消息和会话上，便于按会话直查文件列表
type File struct {
	UUIDBase
	ConversationID string `gorm:"index;type:varchar(36);not null" json:"conversationId"`
	MessageID      string `gorm:"index;type:varchar(36)" json:"messageId,omitempty"`
	UploaderID     uint   `gorm:"index" json:"uploaderId"`
	Name           string `gorm:"size:255;not null" json:"name"`
	Size           int64  `json:"size"`
	MimeType       string `gorm:"size:100" json:"mimeType"`
	StorageKey     string `gorm:"size:255;not null" json:"-"`
	URL            string `gorm:"size:255" json:"url"`

	Versions []FileVersion `gorm:"foreignKey:OriginalFileID" json:"versions,omitempty"`
}

func (File) TableName() string {
	return "files"
}

// FileVersion 线性版本链。版本号由服务端在事务内计算，
// 对同一 originalFileId 严格递增且无空洞，从 1 开始
type FileVersion struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OriginalFileID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_file_version" json:"originalFileId"`
	VersionNumber  int       `gorm:"not null;uniqueIndex:idx_file_version" json:"versionNumber"`
	UploaderID     uint      `json:"uploaderId"`
	Size           int64     `json:"size"`
	StorageKey     string    `gorm:"size:255;not null" json:"-"`
	URL            string    `gorm:"size:255" json:"url"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (v *FileVersion) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = GenerateUUID()
	}
	return
}

func (FileVersion) TableName() string {
	return "file_versions"
}
