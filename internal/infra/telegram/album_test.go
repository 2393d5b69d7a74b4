package telegram

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainTelegram "shift_report_bot/internal/domain/telegram"
)

type flushRecorder struct {
	mu      sync.Mutex
	flushes [][]string
}

func (r *flushRecorder) flush(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes = append(r.flushes, ids)
}

func (r *flushRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flushes)
}

func TestAlbumCollectorSinglePhotoFlushesImmediately(t *testing.T) {
	a := NewAlbumCollector(time.Hour)
	rec := &flushRecorder{}

	a.Add("", "photo-1", rec.flush)

	require.Equal(t, 1, rec.count())
	assert.Equal(t, []string{"photo-1"}, rec.flushes[0])
	assert.Zero(t, a.Pending())
}

func TestAlbumCollectorGroupsAlbum(t *testing.T) {
	a := NewAlbumCollector(50 * time.Millisecond)
	rec := &flushRecorder{}

	a.Add("album-1", "p1", rec.flush)
	a.Add("album-1", "p2", rec.flush)
	a.Add("album-1", "p3", rec.flush)
	assert.Equal(t, 1, a.Pending())

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"p1", "p2", "p3"}, rec.flushes[0])
	assert.Zero(t, a.Pending())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count(), "an album is flushed once")
}

func TestAlbumCollectorKeepsAlbumsApart(t *testing.T) {
	a := NewAlbumCollector(30 * time.Millisecond)
	rec := &flushRecorder{}

	a.Add("a", "a1", rec.flush)
	a.Add("b", "b1", rec.flush)
	a.Add("a", "a2", rec.flush)

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, [][]string{{"a1", "a2"}, {"b1"}}, rec.flushes)
}

func TestAlbumChunks(t *testing.T) {
	items := make([]domainTelegram.Attachment, 23)
	for i := range items {
		items[i] = domainTelegram.Attachment{FileID: fmt.Sprintf("f%d", i)}
	}
	items[0].Caption = "Чеки"

	chunks := albumChunks(items)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 10)
	assert.Len(t, chunks[1], 10)
	assert.Len(t, chunks[2], 3)
	assert.Equal(t, "f22", chunks[2][2].MediaFile().FileID)

	assert.Empty(t, albumChunks(nil))
}
