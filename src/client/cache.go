package client

import (
	"sync"

	"note-app/src/domain"
)

// UnfilteredKey 無条件リストのパーティションキー
const UnfilteredKey = "all"

// listEntry 1つのフィルタパーティションの状態。
// loadedがfalseなら未取得、staleがtrueなら次の読み取りで再取得が必要。
// genは無効化のたびに進む世代番号で、取得中に無効化された結果の格納を防ぐ。
type listEntry struct {
	notes  []domain.Note
	loaded bool
	stale  bool
	gen    uint64
}

type detailEntry struct {
	note   domain.Note
	loaded bool
	stale  bool
	gen    uint64
}

// Cache はフィルタ別リストとID別詳細を保持するクライアント側キャッシュ。
// アプリケーションのセッション中、Coordinatorに渡して使う。
type Cache struct {
	mu      sync.Mutex
	lists   map[string]*listEntry
	details map[int]*detailEntry
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		lists:   make(map[string]*listEntry),
		details: make(map[int]*detailEntry),
	}
}

func (c *Cache) listEntryLocked(key string) *listEntry {
	e, ok := c.lists[key]
	if !ok {
		e = &listEntry{}
		c.lists[key] = e
	}
	return e
}

func (c *Cache) detailEntryLocked(id int) *detailEntry {
	e, ok := c.details[id]
	if !ok {
		e = &detailEntry{}
		c.details[id] = e
	}
	return e
}

// List returns a copy of the cached partition if it is fresh
func (c *Cache) List(key string) ([]domain.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lists[key]
	if !ok || !e.loaded || e.stale {
		return nil, false
	}
	return append([]domain.Note(nil), e.notes...), true
}

// ListGeneration returns the current generation of a partition.
// 読み取り側はフェッチ前に世代を控え、StoreListで突き合わせる。
func (c *Cache) ListGeneration(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listEntryLocked(key).gen
}

// StoreList stores fetched data unless the partition was invalidated
// since gen was observed. Returns whether the data was stored.
func (c *Cache) StoreList(key string, notes []domain.Note, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.listEntryLocked(key)
	if e.gen != gen {
		// フェッチ中に無効化された。後から発行された読み取りが勝つ。
		return false
	}
	e.notes = append([]domain.Note(nil), notes...)
	e.loaded = true
	e.stale = false
	return true
}

// Detail returns a copy of the cached note if it is fresh
func (c *Cache) Detail(id int) (*domain.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.details[id]
	if !ok || !e.loaded || e.stale {
		return nil, false
	}
	note := e.note
	return &note, true
}

// DetailGeneration returns the current generation of a detail entry
func (c *Cache) DetailGeneration(id int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detailEntryLocked(id).gen
}

// StoreDetail stores a fetched note unless the entry was invalidated since gen
func (c *Cache) StoreDetail(id int, note domain.Note, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.detailEntryLocked(id)
	if e.gen != gen {
		return false
	}
	e.note = note
	e.loaded = true
	e.stale = false
	return true
}

// InvalidateLists marks every list partition stale.
// 次の読み取りでサーバーから再取得される。
func (c *Cache) InvalidateLists() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.lists {
		e.stale = true
		e.gen++
	}
}

// InvalidateDetail marks a detail entry stale
func (c *Cache) InvalidateDetail(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.detailEntryLocked(id)
	e.stale = true
	e.gen++
}

// InvalidateList marks a single list partition stale
func (c *Cache) InvalidateList(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.listEntryLocked(key)
	e.stale = true
	e.gen++
}

// PrependToList inserts a note at the head of a partition.
// パーティションが未取得でも1件だけのリストとして作る。
// 戻り値は挿入前にパーティションが取得済みだったかどうか。
// 巻き戻し時に未取得の状態へ戻すために使う。
func (c *Cache) PrependToList(key string, note domain.Note) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.listEntryLocked(key)
	wasLoaded := e.loaded
	e.notes = append([]domain.Note{note}, e.notes...)
	e.loaded = true
	return wasLoaded
}

// RemoveNote removes a note from every list partition without recording
// positions. 仮ノートの巻き戻しに使う。
func (c *Cache) RemoveNote(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.lists {
		if !e.loaded {
			continue
		}
		for i, n := range e.notes {
			if n.ID == id {
				e.notes = append(e.notes[:i:i], e.notes[i+1:]...)
				break
			}
		}
	}
}

// removedNote records where a note was removed from, for rollback
type removedNote struct {
	key   string
	index int
	note  domain.Note
}

// RemoveFromLists removes a note from every list partition and records
// each removal so it can be undone.
func (c *Cache) RemoveFromLists(id int) []removedNote {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []removedNote
	for key, e := range c.lists {
		if !e.loaded {
			continue
		}
		for i, n := range e.notes {
			if n.ID == id {
				removed = append(removed, removedNote{key: key, index: i, note: n})
				e.notes = append(e.notes[:i:i], e.notes[i+1:]...)
				break
			}
		}
	}
	return removed
}

// ReinsertNotes puts removed notes back at their recorded positions.
// 差分の復元なので、他の変更で伸び縮みしたリストを上書きしない。
func (c *Cache) ReinsertNotes(removed []removedNote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range removed {
		e, ok := c.lists[r.key]
		if !ok || !e.loaded {
			continue
		}
		i := r.index
		if i > len(e.notes) {
			i = len(e.notes)
		}
		notes := append([]domain.Note(nil), e.notes[:i]...)
		notes = append(notes, r.note)
		notes = append(notes, e.notes[i:]...)
		e.notes = notes
	}
}

// noteSnapshot 楽観的更新の直前のノートの状態
type noteSnapshot struct {
	listCopies map[string]domain.Note
	detail     *domain.Note
}

// ApplyNoteUpdate applies mutate to every cached copy of the note and
// returns the prior copies for rollback.
func (c *Cache) ApplyNoteUpdate(id int, mutate func(*domain.Note)) noteSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := noteSnapshot{listCopies: make(map[string]domain.Note)}

	for key, e := range c.lists {
		if !e.loaded {
			continue
		}
		for i := range e.notes {
			if e.notes[i].ID == id {
				snap.listCopies[key] = e.notes[i]
				mutate(&e.notes[i])
				break
			}
		}
	}

	if e, ok := c.details[id]; ok && e.loaded {
		prior := e.note
		snap.detail = &prior
		mutate(&e.note)
	}

	return snap
}

// RestoreNoteSnapshot restores the prior copies captured by ApplyNoteUpdate.
// ノートがまだキャッシュに残っている場所だけを書き戻す。
func (c *Cache) RestoreNoteSnapshot(id int, snap noteSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, prior := range snap.listCopies {
		e, ok := c.lists[key]
		if !ok || !e.loaded {
			continue
		}
		for i := range e.notes {
			if e.notes[i].ID == id {
				e.notes[i] = prior
				break
			}
		}
	}

	if snap.detail != nil {
		if e, ok := c.details[id]; ok && e.loaded {
			e.note = *snap.detail
		}
	}
}
