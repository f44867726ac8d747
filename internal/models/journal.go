package models

import "time"

// JournalEntry records one applied registry mutation for the durable
// persistence collaborator. The in-memory registry remains the source of
// truth; the journal exists so state changes survive the process.
type JournalEntry struct {
	ID         string    `db:"id" json:"id"`
	Action     string    `db:"action" json:"action"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseCode string    `db:"course_code" json:"course_code"`
	Period     string    `db:"period" json:"period"`
	Actor      string    `db:"actor" json:"actor"`
	Payload    []byte    `db:"payload" json:"payload,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
