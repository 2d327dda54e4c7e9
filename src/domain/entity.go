package domain

import (
	"time"
)

// Note represents a study note domain entity
type Note struct {
	ID         int        `json:"id"`
	UserID     int        `json:"user_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"` // markdownソース
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Deleted    bool       `json:"deleted"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Difficulty represents note difficulty levels
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// SuggestedTopics よく使われるトピックの候補（入力自体は自由）
var SuggestedTopics = []string{
	"Array",
	"String",
	"Linked List",
	"Tree",
	"Graph",
	"Dynamic Programming",
	"Greedy",
	"Backtracking",
	"Sorting",
	"Searching",
}

// NoteFilter represents filter criteria for note queries
type NoteFilter struct {
	Topic      string
	Difficulty Difficulty
	Search     string
}

// IsValid validates if the difficulty is valid
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// String returns string representation of Difficulty
func (d Difficulty) String() string {
	return string(d)
}

// IsZero reports whether no filter criteria are set
func (f NoteFilter) IsZero() bool {
	return f.Topic == "" && f.Difficulty == "" && f.Search == ""
}
