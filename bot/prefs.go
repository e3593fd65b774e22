package bot

import "sync"

// Mode is the user-selected output shape.
type Mode string

const (
	// ModeText replies with the translated text only.
	ModeText Mode = "text"
	// ModeImage replies with the translation painted onto the image.
	ModeImage Mode = "image"
)

// PrefStore keeps the per-user render mode. Entries are created on first
// access with the default and never deleted; bounded by user count.
type PrefStore interface {
	Get(userID int64) Mode
	Set(userID int64, mode Mode)
}

type memoryPrefs struct {
	mu    sync.RWMutex
	modes map[int64]Mode
}

// NewMemoryPrefs returns an in-memory PrefStore defaulting to ModeImage.
func NewMemoryPrefs() PrefStore {
	return &memoryPrefs{modes: make(map[int64]Mode)}
}

func (p *memoryPrefs) Get(userID int64) Mode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if mode, ok := p.modes[userID]; ok {
		return mode
	}
	return ModeImage
}

func (p *memoryPrefs) Set(userID int64, mode Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modes[userID] = mode
}
