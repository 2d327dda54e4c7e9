package client

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"note-app/src/config"
	"note-app/src/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrMissingFields ローカルバリデーションエラー。ネットワーク呼び出し前に返す。
var ErrMissingFields = errors.New("title, content, topic and difficulty are required")

// DefaultUndoWindow 削除の取り消しを受け付ける時間
const DefaultUndoWindow = 3 * time.Second

// Notifier receives user-visible notifications about mutation outcomes
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) Success(message string) {
	n.Logger.WithField("notification", "success").Info(message)
}

func (n *LogNotifier) Error(message string) {
	n.Logger.WithField("notification", "error").Warn(message)
}

// undoRecord 直近の削除1件の取り消しに必要な情報。
// 期限はタイマーではなく、取り消し実行時に現在時刻と比較して判定する。
type undoRecord struct {
	noteID   int
	deadline time.Time
}

// Coordinator はキャッシュと変更操作を調停する。
// 変更は確認前にキャッシュへ投機的に適用し、失敗時は発行時点の
// スナップショットに基づく差分で巻き戻す。
type Coordinator struct {
	api      NotesAPI
	cache    *Cache
	notifier Notifier
	logger   *logrus.Logger

	// UndoWindow 削除後に復元を受け付ける期間
	UndoWindow time.Duration

	group singleflight.Group

	mu         sync.Mutex
	undo       *undoRecord
	nextTempID int
}

// NewCoordinator creates a coordinator over the given API and cache
func NewCoordinator(api NotesAPI, cache *Cache, notifier Notifier, logger *logrus.Logger) *Coordinator {
	if notifier == nil {
		notifier = &LogNotifier{Logger: logger}
	}
	return &Coordinator{
		api:        api,
		cache:      cache,
		notifier:   notifier,
		logger:     logger,
		UndoWindow: DefaultUndoWindow,
		nextTempID: -1,
	}
}

// NewCoordinatorWithConfig creates a coordinator whose undo window comes
// from the application configuration (CLIENT_UNDO_WINDOW).
func NewCoordinatorWithConfig(api NotesAPI, cache *Cache, notifier Notifier, logger *logrus.Logger, cfg *config.Config) *Coordinator {
	c := NewCoordinator(api, cache, notifier, logger)
	if cfg.Client.UndoWindow > 0 {
		c.UndoWindow = cfg.Client.UndoWindow
	}
	return c
}

// provisionalID 仮ノート用のIDを払い出す。
// 負の値なので、ストアが採番する正のIDと衝突しない。
func (c *Coordinator) provisionalID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextTempID
	c.nextTempID--
	return id
}

// List returns notes for the filter, reading through the cache.
// 同じキーに対する同時フェッチは1本にまとめられ、全員が同じ結果を受け取る。
func (c *Coordinator) List(ctx context.Context, filter Filter) ([]domain.Note, error) {
	key := filter.Key()
	if notes, ok := c.cache.List(key); ok {
		return notes, nil
	}

	v, err, _ := c.group.Do("list:"+key, func() (any, error) {
		gen := c.cache.ListGeneration(key)
		notes, err := c.api.ListNotes(ctx, filter)
		if err != nil {
			return nil, err
		}
		// フェッチ中に無効化されていれば格納されない（後勝ち）
		c.cache.StoreList(key, notes, gen)
		return notes, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Note(nil), v.([]domain.Note)...), nil
}

// Get returns a single note, reading through the cache
func (c *Coordinator) Get(ctx context.Context, id int) (*domain.Note, error) {
	if note, ok := c.cache.Detail(id); ok {
		return note, nil
	}

	v, err, _ := c.group.Do("detail:"+strconv.Itoa(id), func() (any, error) {
		gen := c.cache.DetailGeneration(id)
		note, err := c.api.GetNote(ctx, id)
		if err != nil {
			return nil, err
		}
		c.cache.StoreDetail(id, *note, gen)
		return note, nil
	})
	if err != nil {
		return nil, err
	}
	note := *v.(*domain.Note)
	return &note, nil
}

// Create creates a note with an optimistic placeholder in the
// unfiltered partition.
func (c *Coordinator) Create(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	// ネットワークに出る前にローカルで検証する
	if input.Title == "" || input.Content == "" || input.Topic == "" || input.Difficulty == "" {
		return nil, ErrMissingFields
	}

	now := time.Now()
	provisional := domain.Note{
		ID:         c.provisionalID(),
		Title:      input.Title,
		Content:    input.Content,
		Topic:      input.Topic,
		Difficulty: domain.Difficulty(input.Difficulty),
		Deleted:    false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	wasLoaded := c.cache.PrependToList(UnfilteredKey, provisional)

	note, err := c.api.CreateNote(ctx, input)
	if err != nil {
		// 仮ノートだけを取り除く。他の変更が積んだ状態は保つ。
		c.cache.RemoveNote(provisional.ID)
		if !wasLoaded {
			// 未取得だったパーティションは未取得の状態に戻す。
			// 空のリストを新鮮な状態として残すと、次の読み取りが
			// サーバーに問い合わせなくなってしまう。
			c.cache.InvalidateList(UnfilteredKey)
		}
		c.logger.WithError(err).Warn("ノートの作成に失敗、キャッシュを巻き戻しました")
		c.notifier.Error("Failed to create note")
		return nil, err
	}

	// 新しいノートが任意のフィルタに一致するかは分からないため、
	// 全パーティションを無効化して再取得に任せる。
	c.cache.InvalidateLists()
	c.notifier.Success("Note created")
	return note, nil
}

// Update applies a partial update optimistically to every cached copy
func (c *Coordinator) Update(ctx context.Context, id int, input UpdateNoteInput) (*domain.Note, error) {
	now := time.Now()
	snap := c.cache.ApplyNoteUpdate(id, func(n *domain.Note) {
		if input.Title != nil {
			n.Title = *input.Title
		}
		if input.Content != nil {
			n.Content = *input.Content
		}
		if input.Topic != nil {
			n.Topic = *input.Topic
		}
		if input.Difficulty != nil {
			n.Difficulty = domain.Difficulty(*input.Difficulty)
		}
		n.UpdatedAt = now
	})

	note, err := c.api.UpdateNote(ctx, id, input)
	if err != nil {
		c.cache.RestoreNoteSnapshot(id, snap)
		c.logger.WithError(err).WithField("note_id", id).Warn("ノートの更新に失敗、キャッシュを巻き戻しました")
		c.notifier.Error("Failed to update note")
		return nil, err
	}

	// サーバー側で計算されたフィールドを拾うため無効化する
	c.cache.InvalidateLists()
	c.cache.InvalidateDetail(id)
	c.notifier.Success("Note updated")
	return note, nil
}

// Delete removes a note optimistically and arms a time-limited undo
func (c *Coordinator) Delete(ctx context.Context, id int) error {
	removed := c.cache.RemoveFromLists(id)

	_, err := c.api.DeleteNote(ctx, id)
	if err != nil {
		c.cache.ReinsertNotes(removed)
		c.logger.WithError(err).WithField("note_id", id).Warn("ノートの削除に失敗、キャッシュを巻き戻しました")
		c.notifier.Error("Failed to delete note")
		return err
	}

	// 新しい削除が前の取り消し記録を上書きする
	c.mu.Lock()
	c.undo = &undoRecord{
		noteID:   id,
		deadline: time.Now().Add(c.UndoWindow),
	}
	c.mu.Unlock()

	c.cache.InvalidateLists()
	c.cache.InvalidateDetail(id)
	c.notifier.Success("Note deleted - undo available")
	return nil
}

// CanUndo reports whether an undo is currently available
func (c *Coordinator) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.undo != nil && time.Now().Before(c.undo.deadline)
}

// Undo restores the most recently deleted note if the undo window is
// still open. 記録がない、または期限切れの場合は何もしない。
func (c *Coordinator) Undo(ctx context.Context) error {
	c.mu.Lock()
	rec := c.undo
	// 1回の削除につき取り消しは1回だけ
	c.undo = nil
	c.mu.Unlock()

	if rec == nil || time.Now().After(rec.deadline) {
		return nil
	}

	_, err := c.api.RestoreNote(ctx, rec.noteID)
	if err != nil {
		// ノートは削除されたまま。キャッシュはすでに削除を反映している。
		c.logger.WithError(err).WithField("note_id", rec.noteID).Warn("ノートの復元に失敗")
		c.notifier.Error("Failed to restore note")
		return err
	}

	c.cache.InvalidateLists()
	c.cache.InvalidateDetail(rec.noteID)
	c.notifier.Success("Note restored")
	return nil
}
