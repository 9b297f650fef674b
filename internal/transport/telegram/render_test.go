package telegram

import (
	"strings"
	"testing"

	"archetype-bot/internal/domain"
	"archetype-bot/internal/infra/postgres"
)

func TestProgressBar(t *testing.T) {
	bar := progressBar(1, 84)
	if !strings.HasSuffix(bar, " 0%") {
		t.Fatalf("expected 0%% at question 1, got %q", bar)
	}
	if strings.Count(bar, "🟩") != 0 || strings.Count(bar, "⬜") != 10 {
		t.Fatalf("expected empty bar, got %q", bar)
	}

	bar = progressBar(43, 84)
	if !strings.HasSuffix(bar, " 50%") {
		t.Fatalf("expected 50%% at question 43, got %q", bar)
	}
	if strings.Count(bar, "🟩") != 5 {
		t.Fatalf("expected half-filled bar, got %q", bar)
	}

	bar = progressBar(84, 84)
	if !strings.HasSuffix(bar, " 98%") {
		t.Fatalf("expected 98%% at the last question, got %q", bar)
	}
}

func TestQuestionText(t *testing.T) {
	text := questionText(6, 84, "I finish what I start.")
	if !strings.Contains(text, "Question 6 of 84") || !strings.Contains(text, "I finish what I start.") {
		t.Fatalf("unexpected question text %q", text)
	}

	fallback := questionText(1, 84, "")
	if !strings.Contains(fallback, "How much does this statement describe you?") {
		t.Fatalf("expected fallback prompt, got %q", fallback)
	}
}

func TestResultText(t *testing.T) {
	report := domain.Report{Entries: []domain.ReportEntry{
		{Category: "Warrior", Score: 40, Percentage: 40},
		{Category: "Sage", Score: 30, Percentage: 30},
		{Category: "Jester", Score: 20, Percentage: 20},
		{Category: "Lover", Score: 10, Percentage: 10},
	}}
	text := resultText(report)
	for _, want := range []string{"🥇 *Warrior*: 40 points (40%)", "🥈 *Sage*", "🥉 *Jester*", "🏅 *Lover*: 10 points (10%)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in result text:\n%s", want, text)
		}
	}
}

func TestAccessDeniedText(t *testing.T) {
	text := accessDeniedText(postgres.AccessCheck{CommentCount: 1, TestCount: 2, RequiredComments: 2}, "https://t.me/group")
	for _, want := range []string{"Tests completed: 2", "Comments left: 1", "Comments required: 2", "https://t.me/group"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in access text:\n%s", want, text)
		}
	}
}
