package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
)

type FileService struct {
	FileRepo *repository.FileRepository
	ConvRepo *repository.ConversationRepository
	MsgRepo  *repository.MessageRepository
	Storage  *StorageService
}

func NewFileService(fileRepo *repository.FileRepository, convRepo *repository.ConversationRepository, msgRepo *repository.MessageRepository, storage *StorageService) *FileService {
	return &FileService{
		FileRepo: fileRepo,
		ConvRepo: convRepo,
		MsgRepo:  msgRepo,
		Storage:  storage,
	}
}

func storageKey(convID, fileID, name string) string {
	return fmt.Sprintf("conversations/%s/%s%s", convID, fileID, filepath.Ext(name))
}

// Upload 上传附件到会话：先写对象存储，成功后落元数据
// messageID 可选，用于把附件直接挂到某条消息上
func (s *FileService) Upload(ctx context.Context, convID, messageID string, uploaderID uint, header *multipart.FileHeader) (*model.File, error) {
	if _, err := s.ConvRepo.GetParticipant(convID, uploaderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, cerr := s.ConvRepo.FindByID(convID); errors.Is(cerr, gorm.ErrRecordNotFound) {
				return nil, util.ErrConversationNotFound
			}
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}

	conv, err := s.ConvRepo.FindByID(convID)
	if err != nil {
		return nil, err
	}
	if conv.Archived {
		return nil, util.ErrConversationArchived
	}

	if messageID != "" {
		msg, err := s.MsgRepo.FindByID(messageID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrMessageNotFound
		}
		if err != nil {
			return nil, err
		}
		if msg.ConversationID != convID {
			return nil, util.ErrMessageNotFound
		}
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.DetectMimeType(src)
	if err != nil {
		mimeType = util.MimeOctetStream
	}
	if _, err := src.Seek(0, 0); err != nil {
		return nil, err
	}

	fileID := model.GenerateUUID()
	key := storageKey(convID, fileID, header.Filename)
	url, err := s.Storage.Upload(ctx, key, src, header.Size, mimeType)
	if err != nil {
		return nil, err
	}

	file := &model.File{
		UUIDBase:       model.UUIDBase{ID: fileID},
		ConversationID: convID,
		MessageID:      messageID,
		UploaderID:     uploaderID,
		Name:           header.Filename,
		Size:           header.Size,
		MimeType:       mimeType,
		StorageKey:     key,
		URL:            url,
	}
	if err := s.FileRepo.Create(file); err != nil {
		// 元数据落库失败时尽力回收已上传的对象
		s.Storage.Delete(ctx, key)
		return nil, err
	}
	return file, nil
}

func (s *FileService) Get(fileID string, userID uint) (*model.File, error) {
	file, err := s.FileRepo.FindByID(fileID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ConvRepo.GetParticipant(file.ConversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}
	return file, nil
}

func (s *FileService) ListForConversation(convID string, userID uint, limit, offset int) ([]model.File, int64, error) {
	if _, err := s.ConvRepo.GetParticipant(convID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, cerr := s.ConvRepo.FindByID(convID); errors.Is(cerr, gorm.ErrRecordNotFound) {
				return nil, 0, util.ErrConversationNotFound
			}
			return nil, 0, util.ErrNotParticipant
		}
		return nil, 0, err
	}
	return s.FileRepo.ListForConversation(convID, limit, offset)
}

// UploadVersion 上传新版本：版本号由仓储层在事务内计算，
// 调用方永远不提供版本号
func (s *FileService) UploadVersion(ctx context.Context, fileID string, uploaderID uint, header *multipart.FileHeader) (*model.FileVersion, error) {
	base, err := s.FileRepo.FindByID(fileID)
	if errors.Is(err, util.ErrFileNotFound) {
		return nil, util.ErrVersionLineage
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.ConvRepo.GetParticipant(base.ConversationID, uploaderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.DetectMimeType(src)
	if err != nil {
		mimeType = util.MimeOctetStream
	}
	if _, err := src.Seek(0, 0); err != nil {
		return nil, err
	}

	versionID := model.GenerateUUID()
	key := fmt.Sprintf("conversations/%s/%s/v-%s%s", base.ConversationID, base.ID, versionID, filepath.Ext(header.Filename))
	url, err := s.Storage.Upload(ctx, key, src, header.Size, mimeType)
	if err != nil {
		return nil, err
	}

	version := &model.FileVersion{
		ID:             versionID,
		OriginalFileID: base.ID,
		UploaderID:     uploaderID,
		Size:           header.Size,
		StorageKey:     key,
		URL:            url,
		CreatedAt:      time.Now(),
	}
	if err := s.FileRepo.CreateVersion(version); err != nil {
		s.Storage.Delete(ctx, key)
		return nil, err
	}
	return version, nil
}

func (s *FileService) ListVersions(fileID string, userID uint) ([]model.FileVersion, error) {
	base, err := s.FileRepo.FindByID(fileID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ConvRepo.GetParticipant(base.ConversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}
	return s.FileRepo.ListVersions(fileID)
}
