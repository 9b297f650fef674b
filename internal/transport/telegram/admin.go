package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tele "gopkg.in/telebot.v3"
)

// registerAdmin wires the in-bot admin console. Every command is a no-op for
// non-admin senders.
func (h *Handler) registerAdmin(b *tele.Bot) {
	b.Handle("/stats", h.adminOnly(h.handleStats))
	b.Handle("/find", h.adminOnly(h.handleFind))
	b.Handle("/broadcast", h.adminOnly(h.handleBroadcast))
}

func (h *Handler) adminOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if _, ok := h.admins[c.Sender().ID]; !ok {
			return nil
		}
		return next(c)
	}
}

func (h *Handler) handleStats(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	var b strings.Builder
	b.WriteString("🔐 *Bot statistics*\n\n")

	if h.deps.Users != nil {
		if count, err := h.deps.Users.Count(ctx); err == nil {
			fmt.Fprintf(&b, "• Registered users: %d\n", count)
		} else {
			log.Printf("user count failed: %v", err)
		}
	}
	if h.deps.Comments != nil && h.deps.GroupID != 0 {
		if stats, err := h.deps.Comments.Stats(ctx, h.deps.GroupID); err == nil {
			fmt.Fprintf(&b, "• Group comments: %d from %d users\n", stats.TotalComments, stats.UniqueUsers)
		} else {
			log.Printf("comment stats failed: %v", err)
		}
	}
	fmt.Fprintf(&b, "• Questions in the bank: %d\n", h.deps.Engine.Total())

	return c.Send(b.String(), tele.ModeMarkdown)
}

func (h *Handler) handleFind(c tele.Context) error {
	if h.deps.Users == nil {
		return c.Send("User search is unavailable without a database.")
	}
	query := strings.TrimSpace(strings.TrimPrefix(c.Text(), "/find"))
	if query == "" {
		return c.Send("Usage: /find <username or name>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	users, err := h.deps.Users.Search(ctx, query, 10)
	if err != nil {
		log.Printf("user search %q failed: %v", query, err)
		return c.Send("❌ Search failed.")
	}
	if len(users) == 0 {
		return c.Send("No users matched.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d:\n", len(users))
	for _, user := range users {
		fmt.Fprintf(&b, "• %s %s (@%s, id %d)\n", user.FirstName, user.LastName, user.Username, user.TelegramID)
	}
	return c.Send(b.String())
}

func (h *Handler) handleBroadcast(c tele.Context) error {
	if h.deps.Users == nil {
		return c.Send("Broadcast is unavailable without a database.")
	}
	text := strings.TrimSpace(strings.TrimPrefix(c.Text(), "/broadcast"))
	if text == "" {
		return c.Send("Usage: /broadcast <message>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	users, err := h.deps.Users.List(ctx, 10000)
	if err != nil {
		log.Printf("broadcast user list failed: %v", err)
		return c.Send("❌ Could not load recipients.")
	}

	sent := 0
	for _, user := range users {
		if _, err := c.Bot().Send(&tele.User{ID: user.TelegramID}, text, tele.ModeMarkdown); err != nil {
			log.Printf("broadcast to %d failed: %v", user.TelegramID, err)
			continue
		}
		sent++
	}
	return c.Send(fmt.Sprintf("📣 Delivered to %d of %d users.", sent, len(users)))
}
