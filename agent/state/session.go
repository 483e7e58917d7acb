package state

import (
	"strings"
	"time"
)

// maxHistoryMessages bounds conversation history; the oldest messages are
// evicted first.
const maxHistoryMessages = 100

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
}

// ShownService is a snapshot of one service as it was last presented to
// the user. The lastShown list resolves vague follow-ups ("add that").
type ShownService struct {
	ServiceID    int64     `json:"service_id"`
	ServiceName  string    `json:"service_name"`
	VendorID     int64     `json:"vendor_id"`
	VendorName   string    `json:"vendor_name"`
	Price        float64   `json:"price"`
	Discount     float64   `json:"discount,omitempty"`
	DiscountType string    `json:"discount_type,omitempty"`
	Veg          *bool     `json:"veg,omitempty"`
	CategoryID   int64     `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	ShownAt      time.Time `json:"shown_at"`
}

// Conversation is the per-session state record: bounded history, saved
// location, entity memory, cart, pagination cursor, and the last-shown
// service snapshot. Turns within one session are serialized by the
// caller (see SessionLocks); the record itself is not goroutine safe.
type Conversation struct {
	SessionID  string         `json:"session_id"`
	Messages   []Message      `json:"messages,omitempty"`
	Location   *Location      `json:"location,omitempty"`
	Entities   EntityRegistry `json:"entities"`
	Cart       CartStore      `json:"cart"`
	PageCursor int            `json:"page_cursor"`
	LastShown  []ShownService `json:"last_shown,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func NewConversation(sessionID string, now time.Time) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (c *Conversation) Touch(now time.Time) {
	c.UpdatedAt = now.UTC()
}

// AppendMessage records one turn message, evicting the oldest beyond the
// history bound.
func (c *Conversation) AppendMessage(role Role, content string, now time.Time) {
	c.Messages = append(c.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
	})
	if len(c.Messages) > maxHistoryMessages {
		c.Messages = c.Messages[len(c.Messages)-maxHistoryMessages:]
	}
}

// History returns the last limit messages, most recent last. limit <= 0
// returns everything retained.
func (c *Conversation) History(limit int) []Message {
	msgs := c.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// HistoryText renders recent history for the classifier/narrator context.
func (c *Conversation) HistoryText(limit int) string {
	msgs := c.History(limit)
	if len(msgs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<conversation_history>\n")
	for _, msg := range msgs {
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("</conversation_history>")
	return b.String()
}

func (c *Conversation) SetLocation(loc Location) {
	c.Location = &loc
}

func (c *Conversation) HasLocation() bool {
	return c.Location != nil
}

func (c *Conversation) SetPageCursor(page int) {
	if page < 0 {
		page = 0
	}
	c.PageCursor = page
}

// SetLastShown fully replaces the snapshot; it is never merged.
func (c *Conversation) SetLastShown(services []ShownService) {
	c.LastShown = services
}

// ResolveName resolves an entity name to its id: exact case-insensitive
// match in the registry first, then a containment fallback over entries
// of the same type. The registry's own identity rule stays exact.
func (c *Conversation) ResolveName(t EntityType, name string) (int64, bool) {
	if strings.TrimSpace(name) == "" {
		return 0, false
	}
	if id, ok := c.Entities.FindIDByName(t, name); ok {
		return id, true
	}
	for _, item := range c.Entities.ItemsByType(t) {
		if NamesMatch(item.Name, name) {
			return item.ID, true
		}
	}
	return 0, false
}

// NormalizeName lowercases and collapses whitespace for fuzzy comparison.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NamesMatch reports containment in either direction on normalized names.
// Ties between candidates are broken by the caller's iteration order; for
// lastShown that means the most recently presented list, first entry wins.
func NamesMatch(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
