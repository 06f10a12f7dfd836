// Package notice keeps short-lived user-visible notices such as action
// failures. Notices expire on their own; the panel never has to clear them.
package notice

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/device"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 10 * time.Second

// Notice is one message shown above the content area.
type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Created time.Time `json:"created"`

	seq uint64
}

// Board holds the active notices.
type Board struct {
	items *cache.Cache
	ttl   time.Duration
	seq   atomic.Uint64
}

// NewBoard creates a board whose notices live for ttl.
func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Board{
		items: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Post adds a notice.
func (b *Board) Post(level Level, msg string) Notice {
	n := Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: msg,
		Created: time.Now(),
		seq:     b.seq.Add(1),
	}
	b.items.Set(n.ID, n, cache.DefaultExpiration)
	return n
}

// Failure posts an error notice for a failed operation.
func (b *Board) Failure(op string, err error) Notice {
	log.Warn().Err(err).Str("op", op).Msg("Action failed")
	return b.Post(LevelError, op+" failed: "+device.UserMessage(err))
}

// Info posts an informational notice.
func (b *Board) Info(msg string) Notice {
	return b.Post(LevelInfo, msg)
}

// Dismiss removes a notice before it expires.
func (b *Board) Dismiss(id string) {
	b.items.Delete(id)
}

// Active returns unexpired notices, oldest first.
func (b *Board) Active() []Notice {
	items := b.items.Items()
	out := make([]Notice, 0, len(items))
	for _, it := range items {
		if n, ok := it.Object.(Notice); ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Messages returns the text of the active notices, oldest first.
func (b *Board) Messages() []string {
	active := b.Active()
	out := make([]string, 0, len(active))
	for _, n := range active {
		out = append(out, n.Message)
	}
	return out
}
