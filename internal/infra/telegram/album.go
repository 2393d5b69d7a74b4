package telegram

import (
	"sync"
	"time"
)

// AlbumCollector gathers the photos of one Telegram album. Telegram delivers
// an album as separate messages sharing an album id; the collector waits
// until no new photo arrived for the configured pause and hands over all of
// them at once.
type AlbumCollector struct {
	wait time.Duration

	mu      sync.Mutex
	pending map[string]*pendingAlbum
}

type pendingAlbum struct {
	ids   []string
	gen   int
	timer *time.Timer
	flush func(ids []string)
}

func NewAlbumCollector(wait time.Duration) *AlbumCollector {
	return &AlbumCollector{wait: wait, pending: make(map[string]*pendingAlbum)}
}

// Add registers one photo. A photo outside an album is flushed immediately on
// the calling goroutine. Album photos are flushed together by the last
// flush func given for that album.
func (a *AlbumCollector) Add(albumID, fileID string, flush func(ids []string)) {
	if albumID == "" {
		flush([]string{fileID})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pending[albumID]
	if !ok {
		p = &pendingAlbum{}
		a.pending[albumID] = p
	} else {
		p.timer.Stop()
	}
	p.ids = append(p.ids, fileID)
	p.flush = flush
	p.gen++
	gen := p.gen
	p.timer = time.AfterFunc(a.wait, func() { a.fire(albumID, gen) })
}

func (a *AlbumCollector) fire(albumID string, gen int) {
	a.mu.Lock()
	p, ok := a.pending[albumID]
	if !ok || p.gen != gen {
		a.mu.Unlock()
		return
	}
	delete(a.pending, albumID)
	a.mu.Unlock()

	p.flush(p.ids)
}

// Pending returns the number of albums still being collected.
func (a *AlbumCollector) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}
