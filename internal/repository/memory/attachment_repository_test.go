package memory

import (
	"testing"
	"time"

	"ai-docchat-be/internal/entity"

	"github.com/google/uuid"
)

func newFile(userID uuid.UUID, name string, createdAt time.Time) *entity.AttachedFile {
	return &entity.AttachedFile{
		Id:        uuid.New(),
		UserId:    userID,
		Name:      name,
		CreatedAt: createdAt,
	}
}

func TestAttachmentRepositoryLifecycle(t *testing.T) {
	repo := NewAttachmentRepository()
	userID := uuid.New()
	file := newFile(userID, "notes.txt", time.Now())
	repo.Save(file)

	got, found := repo.Get(file.Id.String())
	if !found || got.Name != "notes.txt" {
		t.Fatalf("Get = %+v, %v", got, found)
	}

	if !repo.MarkProcessed(file.Id.String(), "extracted", "pdfplumber") {
		t.Fatalf("MarkProcessed returned false")
	}
	got, _ = repo.Get(file.Id.String())
	if !got.IsProcessed || got.ProcessedText != "extracted" || got.ProcessingMethod != "pdfplumber" {
		t.Errorf("processed state = %+v", got)
	}

	if !repo.MarkFailed(file.Id.String(), "boom") {
		t.Fatalf("MarkFailed returned false")
	}
	got, _ = repo.Get(file.Id.String())
	if got.IsProcessed || got.ProcessingError != "boom" {
		t.Errorf("failed state = %+v", got)
	}

	repo.Delete(file.Id.String())
	if _, found := repo.Get(file.Id.String()); found {
		t.Errorf("file still present after Delete")
	}
}

func TestAttachmentRepositoryMarkMissing(t *testing.T) {
	repo := NewAttachmentRepository()
	if repo.MarkProcessed(uuid.NewString(), "x", "y") {
		t.Errorf("MarkProcessed on missing file returned true")
	}
	if repo.MarkFailed(uuid.NewString(), "x") {
		t.Errorf("MarkFailed on missing file returned true")
	}
}

func TestAttachmentRepositoryListByUser(t *testing.T) {
	repo := NewAttachmentRepository()
	userID := uuid.New()
	otherID := uuid.New()
	base := time.Now()

	second := newFile(userID, "b.txt", base.Add(time.Minute))
	first := newFile(userID, "a.txt", base)
	repo.Save(second)
	repo.Save(first)
	repo.Save(newFile(otherID, "theirs.txt", base))

	got := repo.ListByUser(userID)
	if len(got) != 2 {
		t.Fatalf("ListByUser = %d files, want 2", len(got))
	}
	if got[0].Name != "a.txt" || got[1].Name != "b.txt" {
		t.Errorf("not in upload order: %q, %q", got[0].Name, got[1].Name)
	}
}

func TestAttachmentRepositoryClearByUser(t *testing.T) {
	repo := NewAttachmentRepository()
	userID := uuid.New()
	otherID := uuid.New()
	repo.Save(newFile(userID, "a.txt", time.Now()))
	repo.Save(newFile(userID, "b.txt", time.Now()))
	kept := newFile(otherID, "theirs.txt", time.Now())
	repo.Save(kept)

	if removed := repo.ClearByUser(userID); removed != 2 {
		t.Errorf("ClearByUser removed %d, want 2", removed)
	}
	if _, found := repo.Get(kept.Id.String()); !found {
		t.Errorf("other user's file was removed")
	}
}
