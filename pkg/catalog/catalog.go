package catalog

import (
	"sync"

	"ai-docchat-be/pkg/chat"
)

// Entry describes one selectable chat model.
type Entry struct {
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Label    string `json:"label"`
}

// Catalog is the in-memory model registry. Turns are refused until Load has
// been called with a usable default.
type Catalog struct {
	mu sync.RWMutex

	loaded       bool
	chatModel    string
	chatProvider string
	docModel     string
	imageModel   string
	maxTokens    int
	entries      []Entry
}

var _ chat.ModelCatalog = (*Catalog)(nil)

func New() *Catalog {
	return &Catalog{}
}

// Load installs the model set. The catalog reports Loaded only when a default
// chat model is present.
func (c *Catalog) Load(chatModel, chatProvider, docModel, imageModel string, maxTokens int, entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chatModel = chatModel
	c.chatProvider = chatProvider
	c.docModel = docModel
	c.imageModel = imageModel
	c.maxTokens = maxTokens
	c.entries = entries
	c.loaded = chatModel != ""
}

func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Catalog) DefaultChatModel() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chatModel, c.chatProvider
}

func (c *Catalog) DocumentChatModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docModel
}

func (c *Catalog) DefaultImageModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.imageModel
}

func (c *Catalog) MaxTokens() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxTokens
}

// Entries returns the full selectable model list for the UI.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
