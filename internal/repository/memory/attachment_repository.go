package memory

import (
	"sort"
	"sync"
	"time"

	"ai-docchat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// AttachmentRepository keeps uploaded files in memory, keyed by file id.
type AttachmentRepository struct {
	cache *cache.Cache

	// Guards read-modify-write sequences on a single file.
	mu sync.Mutex
}

func NewAttachmentRepository() *AttachmentRepository {
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &AttachmentRepository{
		cache: c,
	}
}

func (r *AttachmentRepository) Save(file *entity.AttachedFile) {
	r.cache.Set(file.Id.String(), file, cache.NoExpiration)
}

func (r *AttachmentRepository) Get(fileID string) (*entity.AttachedFile, bool) {
	if x, found := r.cache.Get(fileID); found {
		return x.(*entity.AttachedFile), true
	}
	return nil, false
}

// ListByUser returns the user's attachments in upload order.
func (r *AttachmentRepository) ListByUser(userID uuid.UUID) []*entity.AttachedFile {
	var out []*entity.AttachedFile
	for _, item := range r.cache.Items() {
		file, ok := item.Object.(*entity.AttachedFile)
		if !ok {
			continue
		}
		if file.UserId == userID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// MarkProcessed records a successful extraction.
func (r *AttachmentRepository) MarkProcessed(fileID, processedText, method string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, found := r.Get(fileID)
	if !found {
		return false
	}
	file.ProcessedText = processedText
	file.ProcessingMethod = method
	file.IsProcessed = true
	file.ProcessingError = ""
	r.cache.Set(fileID, file, cache.NoExpiration)
	return true
}

// MarkFailed records an extraction failure.
func (r *AttachmentRepository) MarkFailed(fileID, errMsg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, found := r.Get(fileID)
	if !found {
		return false
	}
	file.IsProcessed = false
	file.ProcessingError = errMsg
	r.cache.Set(fileID, file, cache.NoExpiration)
	return true
}

func (r *AttachmentRepository) Delete(fileID string) {
	r.cache.Delete(fileID)
}

// ClearByUser removes every attachment owned by the user.
func (r *AttachmentRepository) ClearByUser(userID uuid.UUID) int {
	removed := 0
	for key, item := range r.cache.Items() {
		file, ok := item.Object.(*entity.AttachedFile)
		if !ok {
			continue
		}
		if file.UserId == userID {
			r.cache.Delete(key)
			removed++
		}
	}
	return removed
}
