package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"archetype-bot/internal/app"
	"archetype-bot/internal/config"
	"archetype-bot/internal/domain"
	"archetype-bot/internal/infra/assets"
	"archetype-bot/internal/infra/postgres"
	tele "gopkg.in/telebot.v3"
)

const collaboratorTimeout = 5 * time.Second

const (
	menuStart   = "🎯 Start the test"
	menuResults = "📊 My results"
	menuAbout   = "ℹ️ About the test"
)

// UserRegistry records who talked to the bot.
type UserRegistry interface {
	Upsert(ctx context.Context, user domain.User) error
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, query string, limit int) ([]domain.User, error)
	List(ctx context.Context, limit int) ([]domain.User, error)
}

// CommentAccess tracks group comments and answers retake-access checks.
type CommentAccess interface {
	SaveComment(ctx context.Context, comment domain.Comment) error
	CanTakeTest(ctx context.Context, userID, chatID int64) (postgres.AccessCheck, error)
	Stats(ctx context.Context, chatID int64) (postgres.CommentStats, error)
}

// ReportCache serves the latest persisted report and drops stale entries.
type ReportCache interface {
	LatestReport(ctx context.Context, userID int64) (domain.Report, error)
	Invalidate(userID int64)
}

// Deps carries the collaborators the bot handler needs. Users, Comments and
// Reports may be nil when the process runs without a database.
type Deps struct {
	Engine       *app.Engine
	Satisfaction app.SatisfactionStore
	Users        UserRegistry
	Comments     CommentAccess
	Reports      ReportCache
	Assets       *assets.Resolver
	Questions    config.QuestionSet
	AdminIDs     []int64
	GroupID      int64
	GroupLink    string
}

// Handler wires Telegram updates into the quiz engine.
type Handler struct {
	deps   Deps
	admins map[int64]struct{}

	menu        *tele.ReplyMarkup
	answerBtn   tele.Btn
	confirmBtn  tele.Btn
	restartBtn  tele.Btn
	continueBtn tele.Btn
}

func NewHandler(deps Deps) *Handler {
	admins := make(map[int64]struct{}, len(deps.AdminIDs))
	for _, id := range deps.AdminIDs {
		admins[id] = struct{}{}
	}

	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(menuStart)),
		menu.Row(menu.Text(menuResults), menu.Text(menuAbout)),
	)

	markup := &tele.ReplyMarkup{}
	return &Handler{
		deps:        deps,
		admins:      admins,
		menu:        menu,
		answerBtn:   markup.Data("", "answer"),
		confirmBtn:  markup.Data("", "gate_confirm"),
		restartBtn:  markup.Data("", "restart_test"),
		continueBtn: markup.Data("", "continue_test"),
	}
}

// Register attaches all handlers to the bot.
func (h *Handler) Register(b *tele.Bot) {
	b.Handle("/start", h.handleStart)
	b.Handle(tele.OnText, h.handleText)
	b.Handle(&h.answerBtn, h.handleAnswer)
	b.Handle(&h.confirmBtn, h.handleGateConfirm)
	b.Handle(&h.restartBtn, h.handleRestart)
	b.Handle(&h.continueBtn, h.handleContinue)
	h.registerAdmin(b)
}

func (h *Handler) handleStart(c tele.Context) error {
	sender := c.Sender()

	if h.deps.Users != nil {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		err := h.deps.Users.Upsert(ctx, domain.User{
			TelegramID: sender.ID,
			Username:   sender.Username,
			FirstName:  sender.FirstName,
			LastName:   sender.LastName,
		})
		if err != nil {
			log.Printf("user upsert for %d failed: %v", sender.ID, err)
		}
	}

	h.deps.Engine.Abort(sender.ID)
	return c.Send(welcomeText(h.deps.Engine.Total()), h.menu, tele.ModeMarkdown)
}

func (h *Handler) handleText(c tele.Context) error {
	if h.deps.GroupID != 0 && c.Chat() != nil && c.Chat().ID == h.deps.GroupID {
		return h.handleGroupComment(c)
	}

	switch c.Text() {
	case menuStart:
		return h.startTest(c)
	case menuResults:
		return h.sendMyResults(c)
	case menuAbout:
		return c.Send("This is a 12-archetype personality test. Answer every statement honestly and you will get your four dominant archetypes with detailed descriptions.", tele.ModeMarkdown)
	default:
		return nil
	}
}

func (h *Handler) startTest(c tele.Context) error {
	userID := c.Sender().ID

	if h.deps.Engine.InProgress(userID) {
		markup := &tele.ReplyMarkup{}
		restart := markup.Data("✅ Start over", h.restartBtn.Unique)
		cont := markup.Data("▶️ Keep going", h.continueBtn.Unique)
		markup.Inline(markup.Row(restart, cont))
		return c.Send("❓ You are already taking the test. Start over?", markup)
	}

	if h.deps.Comments != nil && h.deps.GroupID != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		check, err := h.deps.Comments.CanTakeTest(ctx, userID, h.deps.GroupID)
		if err != nil {
			// A broken access backend must not lock users out.
			log.Printf("access check for %d failed: %v", userID, err)
		} else if !check.CanTake {
			return c.Send(accessDeniedText(check, h.deps.GroupLink), tele.ModeMarkdown)
		}
	}

	step, err := h.deps.Engine.Begin(context.Background(), userID)
	if err != nil {
		return err
	}
	return h.sendStep(c, step, false)
}

func (h *Handler) handleAnswer(c tele.Context) error {
	userID := c.Sender().ID
	raw, err := strconv.Atoi(strings.TrimSpace(c.Data()))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown answer"})
	}

	step, err := h.deps.Engine.Advance(context.Background(), userID, raw)
	if errors.Is(err, domain.ErrSessionExpired) {
		_ = c.Respond(&tele.CallbackResponse{})
		return c.Send("❌ Your session has expired. Start the test again: /start", h.menu)
	}
	if err != nil {
		log.Printf("advance for %d failed: %v", userID, err)
		return c.Respond(&tele.CallbackResponse{Text: "Please try again"})
	}

	_ = c.Respond(&tele.CallbackResponse{})
	return h.sendStep(c, step, true)
}

func (h *Handler) handleGateConfirm(c tele.Context) error {
	userID := c.Sender().ID

	step, err := h.deps.Engine.Resume(context.Background(), userID)
	if errors.Is(err, domain.ErrSessionExpired) {
		_ = c.Respond(&tele.CallbackResponse{})
		return c.Send("❌ Your session has expired. Start the test again: /start", h.menu)
	}
	if err != nil {
		return err
	}
	if step.Kind == app.StepGate {
		return c.Respond(&tele.CallbackResponse{Text: "Not confirmed yet — leave a comment first", ShowAlert: true})
	}
	_ = c.Respond(&tele.CallbackResponse{})
	return h.sendStep(c, step, true)
}

func (h *Handler) handleRestart(c tele.Context) error {
	_ = c.Respond(&tele.CallbackResponse{})
	step, err := h.deps.Engine.Begin(context.Background(), c.Sender().ID)
	if err != nil {
		return err
	}
	return h.sendStep(c, step, false)
}

func (h *Handler) handleContinue(c tele.Context) error {
	_ = c.Respond(&tele.CallbackResponse{})
	step, err := h.deps.Engine.Resume(context.Background(), c.Sender().ID)
	if errors.Is(err, domain.ErrSessionExpired) {
		return c.Send("❌ Your session has expired. Start the test again: /start", h.menu)
	}
	if err != nil {
		return err
	}
	return h.sendStep(c, step, true)
}

// handleGroupComment records activity in the comment group and marks the gate
// prerequisite satisfied for the author.
func (h *Handler) handleGroupComment(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Text == "" || strings.HasPrefix(msg.Text, "/") {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	if h.deps.Comments != nil {
		err := h.deps.Comments.SaveComment(ctx, domain.Comment{
			UserID:    msg.Sender.ID,
			MessageID: int64(msg.ID),
			ChatID:    msg.Chat.ID,
			Text:      msg.Text,
			CreatedAt: msg.Time(),
		})
		if err != nil {
			log.Printf("save comment from %d failed: %v", msg.Sender.ID, err)
		}
	}
	if h.deps.Satisfaction != nil {
		if err := h.deps.Satisfaction.Satisfy(ctx, msg.Sender.ID); err != nil {
			log.Printf("gate satisfy for %d failed: %v", msg.Sender.ID, err)
		}
	}
	return nil
}

func (h *Handler) sendMyResults(c tele.Context) error {
	if h.deps.Reports == nil {
		return c.Send("📊 Results are not available right now.")
	}
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	report, err := h.deps.Reports.LatestReport(ctx, c.Sender().ID)
	if errors.Is(err, domain.ErrReportNotFound) {
		return c.Send("📊 You have no results yet. Take the test first!", h.menu)
	}
	if err != nil {
		log.Printf("latest report for %d failed: %v", c.Sender().ID, err)
		return c.Send("❌ Could not load your results. Please try again later.")
	}
	if err := c.Send(resultText(report), tele.ModeMarkdown); err != nil {
		return err
	}
	h.sendDocuments(c, report)
	return nil
}

func (h *Handler) sendStep(c tele.Context, step app.NextStep, edit bool) error {
	switch step.Kind {
	case app.StepQuestion:
		return h.sendQuestion(c, step, edit)
	case app.StepGate:
		markup := &tele.ReplyMarkup{}
		rows := []tele.Row{}
		if h.deps.GroupLink != "" {
			rows = append(rows, markup.Row(markup.URL("💬 Open the group", h.deps.GroupLink)))
		}
		rows = append(rows, markup.Row(markup.Data("✅ Done, continue", h.confirmBtn.Unique)))
		markup.Inline(rows...)
		return h.sendOrEdit(c, gateText(step.GateReason, h.deps.GroupLink), markup, edit)
	case app.StepCompleted:
		if err := h.sendOrEdit(c, resultText(step.Report), nil, edit); err != nil {
			return err
		}
		if h.deps.Reports != nil {
			h.deps.Reports.Invalidate(step.Report.UserID)
		}
		h.sendDocuments(c, step.Report)
		return c.Send("🏠 Back to the main menu", h.menu)
	}
	return nil
}

func (h *Handler) sendQuestion(c tele.Context, step app.NextStep, edit bool) error {
	markup := &tele.ReplyMarkup{}
	buttons := make([]tele.Btn, 0, len(answerLabels))
	for i, label := range answerLabels {
		buttons = append(buttons, markup.Data(label, h.answerBtn.Unique, strconv.Itoa(i)))
	}
	markup.Inline(markup.Row(buttons[0], buttons[1]), markup.Row(buttons[2], buttons[3]))

	text := questionText(step.Position, step.Total, h.deps.Questions.Prompt(step.Question.ID))

	if h.deps.Assets != nil {
		if path, ok := h.deps.Assets.QuestionImage(step.Question.ID); ok {
			photo := &tele.Photo{File: tele.FromDisk(path), Caption: text}
			return c.Send(photo, markup, tele.ModeMarkdown)
		}
	}
	return h.sendOrEdit(c, text, markup, edit)
}

// sendOrEdit edits the originating message in place and falls back to a fresh
// message when editing is impossible (photo captions, deleted messages).
func (h *Handler) sendOrEdit(c tele.Context, text string, markup *tele.ReplyMarkup, edit bool) error {
	opts := []interface{}{tele.ModeMarkdown}
	if markup != nil {
		opts = append(opts, markup)
	}
	if edit {
		if err := c.Edit(text, opts...); err == nil {
			return nil
		}
	}
	return c.Send(text, opts...)
}

func (h *Handler) sendDocuments(c tele.Context, report domain.Report) {
	if h.deps.Assets == nil {
		return
	}
	for _, entry := range report.Entries {
		path, ok := h.deps.Assets.CategoryDocument(entry.Category)
		if !ok {
			continue
		}
		doc := &tele.Document{File: tele.FromDisk(path), Caption: "📖 " + entry.Category}
		if err := c.Send(doc); err != nil {
			log.Printf("send document %s failed: %v", path, err)
		}
	}
}
