package domain

import "time"

// Question is one entry of the immutable question bank.
type Question struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
}

// Answer is one append-only entry of a session's answer log. Position is the
// cursor value at answer time; Value is the raw response code (0..3).
type Answer struct {
	Position int    `json:"position"`
	Value    int    `json:"value"`
	Category string `json:"category"`
}

// ReportEntry is one ranked category of a finalized report.
type ReportEntry struct {
	Category   string `json:"category"`
	Score      int    `json:"score"`
	Percentage int    `json:"percentage"`
}

// Report is the top-N category ranking delivered at quiz completion.
// Percentages are relative to the sum of the selected entries' scores, not a
// theoretical maximum, so they always total roughly 100.
type Report struct {
	UserID    int64         `json:"userId"`
	Entries   []ReportEntry `json:"entries"`
	CreatedAt time.Time     `json:"createdAt"`
}

// User is a registered bot user.
type User struct {
	TelegramID int64     `json:"telegramId"`
	Username   string    `json:"username"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Comment is a tracked group message used for gate checks.
type Comment struct {
	UserID    int64     `json:"userId"`
	MessageID int64     `json:"messageId"`
	ChatID    int64     `json:"chatId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
