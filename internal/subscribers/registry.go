package subscribers

import (
	"sort"
	"sync"

	"highbuy-monitor/internal/infra/fs"
	logging "highbuy-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// Registry is the set of chat ids that receive alerts. Mutations are
// write-through: the file on disk is updated before the call returns, so a
// restart never loses a subscription. Safe for concurrent use from the
// command loop and the alert fan-out.
type Registry struct {
	mu       sync.Mutex
	chatIDs  map[int64]struct{}
	filePath string
}

// Load builds a registry from the persisted file merged with statically
// configured seed chats. Seeds that were not yet on disk are persisted.
func Load(filePath string, seedChatIDs []int64) (*Registry, error) {
	persisted, err := fs.LoadSubscribers(filePath)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		chatIDs:  make(map[int64]struct{}, len(persisted)+len(seedChatIDs)),
		filePath: filePath,
	}
	for _, id := range persisted {
		r.chatIDs[id] = struct{}{}
	}

	added := false
	for _, id := range seedChatIDs {
		if _, ok := r.chatIDs[id]; !ok {
			r.chatIDs[id] = struct{}{}
			added = true
		}
	}
	if added {
		if err := r.persistLocked(); err != nil {
			return nil, err
		}
	}

	logging.LogInfo("Subscriber registry loaded",
		zap.Int("count", len(r.chatIDs)),
		zap.String("file", filePath))

	return r, nil
}

// ListAll returns a snapshot of the current subscriber set. Mutations after
// the snapshot is taken are not reflected in it.
func (r *Registry) ListAll() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(r.chatIDs))
	for id := range r.chatIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Add subscribes a chat. Returns true when the chat was newly added.
func (r *Registry) Add(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chatIDs[chatID]; ok {
		return false
	}
	r.chatIDs[chatID] = struct{}{}
	if err := r.persistLocked(); err != nil {
		logging.LogError("Failed to persist subscribers after add",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	return true
}

// Remove unsubscribes a chat. Returns true when the chat was present.
func (r *Registry) Remove(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chatIDs[chatID]; !ok {
		return false
	}
	delete(r.chatIDs, chatID)
	if err := r.persistLocked(); err != nil {
		logging.LogError("Failed to persist subscribers after remove",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	return true
}

// Contains reports whether a chat is currently subscribed.
func (r *Registry) Contains(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.chatIDs[chatID]
	return ok
}

// Len returns the current subscriber count.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chatIDs)
}

func (r *Registry) persistLocked() error {
	ids := make([]int64, 0, len(r.chatIDs))
	for id := range r.chatIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return fs.SaveSubscribers(r.filePath, ids)
}
