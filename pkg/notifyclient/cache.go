package notifyclient

import (
	"sync"

	"github.com/dustin/go-humanize"
)

// Cache is the per-session reconciled notification list: recency-ordered,
// deduplicated per sender for follow requests, rebuilt on every full fetch
// and mutated incrementally by push events in between. Every write replaces
// the internal slice rather than mutating it in place, and Snapshot hands out
// copies, so readers never alias cache-internal state.
type Cache struct {
	mu     sync.Mutex
	items  []Notification
	unread int64
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// ApplyPush merges one pushed notification. Follow requests replace the
// existing entry from the same sender instead of stacking; every other type
// is prepended as-is.
func (c *Cache) ApplyPush(n Notification) {
	n.Timestamp = humanize.Time(n.CreatedAt)

	c.mu.Lock()
	defer c.mu.Unlock()

	if n.Type == TypeFollowRequest {
		for i, existing := range c.items {
			if existing.Type == TypeFollowRequest && existing.Sender.ID == n.Sender.ID {
				next := make([]Notification, len(c.items))
				copy(next, c.items)
				next[i] = n
				c.items = next
				return
			}
		}
	}

	next := make([]Notification, 0, len(c.items)+1)
	next = append(next, n)
	next = append(next, c.items...)
	c.items = next
}

// ApplyRemoval drops every entry matching (type, sender). Removing all
// matches, not just the first, keeps the cache clean even when residual
// duplicates slipped through.
func (c *Cache) ApplyRemoval(notificationType string, senderID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		if n.Type == notificationType && n.Sender.ID == senderID {
			continue
		}
		next = append(next, n)
	}
	c.items = next
}

// MergeFetch rebuilds the cache from a full fetch (server order, newest
// first), reapplying the follow-request supersession rule: while walking the
// fetched list, an already-seen newer entry for the same sender discards the
// older one. Cached follow requests that raced the fetch survive the rebuild
// — newer than the fetched counterpart, or from a sender the snapshot missed
// entirely — so a push and a fetch converge to the same state regardless of
// arrival order.
func (c *Cache) MergeFetch(fetched []Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seenRequestSenders := make(map[uint]int)
	next := make([]Notification, 0, len(fetched))
	for _, n := range fetched {
		n.Timestamp = humanize.Time(n.CreatedAt)
		if n.Type == TypeFollowRequest {
			if _, ok := seenRequestSenders[n.Sender.ID]; ok {
				// Older duplicate from the same sender; the store's own
				// cleanup lagged. Discard.
				continue
			}
			seenRequestSenders[n.Sender.ID] = len(next)
		}
		next = append(next, n)
	}

	// A follow request pushed after the fetch snapshot was taken is newer
	// than the fetched one; keep it.
	for _, cached := range c.items {
		if cached.Type != TypeFollowRequest {
			continue
		}
		i, ok := seenRequestSenders[cached.Sender.ID]
		if ok && cached.CreatedAt.After(next[i].CreatedAt) {
			next[i] = cached
		}
	}

	// A request whose sender the snapshot missed entirely also raced the
	// fetch; keep it, slotted by recency.
	for _, cached := range c.items {
		if cached.Type != TypeFollowRequest {
			continue
		}
		if _, ok := seenRequestSenders[cached.Sender.ID]; ok {
			continue
		}
		insertAt := len(next)
		for i := range next {
			if cached.CreatedAt.After(next[i].CreatedAt) {
				insertAt = i
				break
			}
		}
		next = append(next[:insertAt], append([]Notification{cached}, next[insertAt:]...)...)
		seenRequestSenders[cached.Sender.ID] = insertAt
	}

	c.items = next
}

// SetUnreadCount stores the server-computed unread count. The client never
// decrements locally; it always adopts the recomputed value.
func (c *Cache) SetUnreadCount(count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unread = count
}

// UnreadCount returns the last server-computed unread count.
func (c *Cache) UnreadCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Snapshot returns a copy of the current list, newest first.
func (c *Cache) Snapshot() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]Notification, len(c.items))
	copy(snapshot, c.items)
	return snapshot
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// MarkAccepted sets the transient accepted flag on the follow_request entry
// from the sender, for interim UI state before the next refetch.
func (c *Cache) MarkAccepted(senderID uint) {
	c.setTransient(senderID, func(n *Notification) { n.IsAccepted = true })
}

// MarkRejected sets the transient rejected flag.
func (c *Cache) MarkRejected(senderID uint) {
	c.setTransient(senderID, func(n *Notification) { n.IsRejected = true })
}

// MarkFollowedBack sets the transient followed-back flag on follow entries.
func (c *Cache) MarkFollowedBack(senderID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]Notification, len(c.items))
	copy(next, c.items)
	for i := range next {
		if next[i].Type == TypeFollow && next[i].Sender.ID == senderID {
			next[i].IsFollowedBack = true
		}
	}
	c.items = next
}

func (c *Cache) setTransient(senderID uint, apply func(*Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]Notification, len(c.items))
	copy(next, c.items)
	for i := range next {
		if next[i].Type == TypeFollowRequest && next[i].Sender.ID == senderID {
			apply(&next[i])
		}
	}
	c.items = next
}
