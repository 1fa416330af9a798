package chat

import "sync"

// MemoryFlags is the in-memory FeatureFlags implementation used per session.
type MemoryFlags struct {
	mu              sync.RWMutex
	imageGeneration bool
	documentChat    bool
	quotaExhausted  bool
	apiKeyMissing   bool
}

var _ FeatureFlags = (*MemoryFlags)(nil)

func NewMemoryFlags() *MemoryFlags {
	return &MemoryFlags{}
}

func (f *MemoryFlags) SetImageGeneration(v bool) {
	f.mu.Lock()
	f.imageGeneration = v
	f.mu.Unlock()
}

func (f *MemoryFlags) ImageGeneration() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.imageGeneration
}

func (f *MemoryFlags) SetDocumentChat(v bool) {
	f.mu.Lock()
	f.documentChat = v
	f.mu.Unlock()
}

func (f *MemoryFlags) DocumentChat() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.documentChat
}

func (f *MemoryFlags) SetQuotaExhausted(v bool) {
	f.mu.Lock()
	f.quotaExhausted = v
	f.mu.Unlock()
}

func (f *MemoryFlags) QuotaExhausted() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.quotaExhausted
}

func (f *MemoryFlags) SetAPIKeyMissing(v bool) {
	f.mu.Lock()
	f.apiKeyMissing = v
	f.mu.Unlock()
}

func (f *MemoryFlags) APIKeyMissing() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.apiKeyMissing
}
