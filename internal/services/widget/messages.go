package widget

import (
	"regexp"
	"strings"
	"time"

	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Messages are never edited once appended.
type Message struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Text       string    `json:"text"`
	ProductIDs []string  `json:"productIds,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

var emphasis = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// Highlights returns the **term** references in text, in order.
func Highlights(text string) []string {
	var terms []string
	for _, m := range emphasis.FindAllStringSubmatch(text, -1) {
		if term := strings.TrimSpace(m[1]); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// resolveProducts maps highlighted terms onto distinct catalog ids.
func resolveProducts(text string, cat *catalog.Catalog) []string {
	if cat == nil {
		return nil
	}
	var ids []string
	seen := make(map[string]bool)
	for _, term := range Highlights(text) {
		if p, ok := cat.FindByName(term); ok && !seen[p.ID] {
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func newMessage(role Role, text string, cat *catalog.Catalog) Message {
	m := Message{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if role == RoleAssistant {
		m.ProductIDs = resolveProducts(text, cat)
	}
	return m
}
