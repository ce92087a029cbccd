package repository

import (
	"errors"
	"sync"
	"testing"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
)

func seedFile(t *testing.T, db *gorm.DB, conv *model.Conversation, uploader *model.User) *model.File {
	repo := NewFileRepository(db)
	file := &model.File{
		ConversationID: conv.ID,
		UploaderID:     uploader.ID,
		Name:           "设计稿.pdf",
		Size:           1024,
		MimeType:       "application/pdf",
		StorageKey:     "conversations/" + conv.ID + "/base.pdf",
		URL:            "/uploads/base.pdf",
	}
	if err := repo.Create(file); err != nil {
		t.Fatalf("seed file failed: %v", err)
	}
	return file
}

func TestFileRepository_VersionNumbersAreGapless(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)
	file := seedFile(t, db, conv, alice)

	repo := NewFileRepository(db)
	for i := 1; i <= 3; i++ {
		v := &model.FileVersion{
			OriginalFileID: file.ID,
			UploaderID:     alice.ID,
			Size:           int64(i * 100),
			StorageKey:     "k",
			URL:            "/u",
		}
		if err := repo.CreateVersion(v); err != nil {
			t.Fatalf("CreateVersion failed: %v", err)
		}
		if v.VersionNumber != i {
			t.Errorf("expected version %d, got %d", i, v.VersionNumber)
		}
	}

	// 列表按版本号倒序返回
	versions, err := repo.ListVersions(file.ID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	for i, v := range versions {
		if v.VersionNumber != len(versions)-i {
			t.Errorf("version sequence has a gap at position %d: %d", i, v.VersionNumber)
		}
	}
}

func TestFileRepository_ConcurrentVersionsStayGapless(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)
	file := seedFile(t, db, conv, alice)

	repo := NewFileRepository(db)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := &model.FileVersion{
				OriginalFileID: file.ID,
				UploaderID:     alice.ID,
				StorageKey:     "k",
				URL:            "/u",
			}
			if err := repo.CreateVersion(v); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent CreateVersion failed: %v", err)
	}

	versions, err := repo.ListVersions(file.ID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(versions) != workers {
		t.Fatalf("expected %d versions, got %d", workers, len(versions))
	}
	for i, v := range versions {
		if v.VersionNumber != workers-i {
			t.Errorf("concurrent writes produced a gap at position %d: %d", i, v.VersionNumber)
		}
	}
}

func TestFileRepository_VersionRequiresBaseFile(t *testing.T) {
	db := getTestDB(t)

	repo := NewFileRepository(db)
	v := &model.FileVersion{
		OriginalFileID: "missing-file-id",
		StorageKey:     "k",
		URL:            "/u",
	}
	if err := repo.CreateVersion(v); !errors.Is(err, util.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound for missing base file, got %v", err)
	}
}
