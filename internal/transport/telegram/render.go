package telegram

import (
	"fmt"
	"strings"

	"archetype-bot/internal/domain"
	"archetype-bot/internal/infra/postgres"
)

// answerLabels are the four response options, strongest agreement first. Their
// order matches the raw answer codes 0..3 and the fixed scoring weights.
var answerLabels = [4]string{
	"Definitely me",
	"Mostly me",
	"Rarely me",
	"Not me at all",
}

var rankEmoji = [4]string{"🥇", "🥈", "🥉", "🏅"}

func progressBar(position, total int) string {
	if total <= 0 {
		return ""
	}
	percent := (position - 1) * 100 / total
	filled := percent / 10
	return strings.Repeat("🟩", filled) + strings.Repeat("⬜", 10-filled) + fmt.Sprintf(" %d%%", percent)
}

func questionText(position, total int, prompt string) string {
	if prompt == "" {
		prompt = "How much does this statement describe you?"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Question %d of %d*\n\n", position, total)
	b.WriteString(progressBar(position, total))
	b.WriteString("\n\n")
	b.WriteString(prompt)
	b.WriteString("\n\nPick the option that fits best:")
	return b.String()
}

func resultText(report domain.Report) string {
	var b strings.Builder
	b.WriteString("✅ *TEST RESULTS*\n\n🏆 *Your dominant archetypes:*\n\n")
	for i, entry := range report.Entries {
		emoji := "🏅"
		if i < len(rankEmoji) {
			emoji = rankEmoji[i]
		}
		fmt.Fprintf(&b, "%s *%s*: %d points (%d%%)\n", emoji, entry.Category, entry.Score, entry.Percentage)
	}
	b.WriteString("\nEveryone carries all the archetypes as potential; your top ones form the behavioral core that drives your strategies in daily life.\n\n")
	b.WriteString("📋 Detailed descriptions follow as separate files.")
	return b.String()
}

func gateText(reason, groupLink string) string {
	var b strings.Builder
	b.WriteString("⚠️ *Quick pause!*\n\n")
	if reason != "" {
		b.WriteString(reason)
	} else {
		b.WriteString("An extra step is needed before the next question.")
	}
	if groupLink != "" {
		b.WriteString("\n\n🔗 ")
		b.WriteString(groupLink)
	}
	b.WriteString("\n\nConfirm below once you are done.")
	return b.String()
}

func accessDeniedText(check postgres.AccessCheck, groupLink string) string {
	var b strings.Builder
	b.WriteString("❌ *Access to the test is limited*\n\n📊 Your stats:\n")
	fmt.Fprintf(&b, "• Tests completed: %d\n", check.TestCount)
	fmt.Fprintf(&b, "• Comments left: %d\n", check.CommentCount)
	fmt.Fprintf(&b, "• Comments required: %d\n\n", check.RequiredComments)
	b.WriteString("💬 Leave a comment in the group to unlock another attempt.")
	if groupLink != "" {
		b.WriteString("\n🔗 ")
		b.WriteString(groupLink)
	}
	return b.String()
}

func welcomeText(total int) string {
	var b strings.Builder
	b.WriteString("🌟 *Welcome!*\n\n")
	b.WriteString("Each slide shows a statement and four response options.\n")
	fmt.Fprintf(&b, "Pick how strongly every statement matches you. There are %d questions; ", total)
	b.WriteString("for the most accurate result, take the test alone and answer honestly.\n\n")
	b.WriteString("Start whenever you are ready!")
	return b.String()
}
