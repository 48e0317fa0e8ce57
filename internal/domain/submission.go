package domain

import "time"

type Submission struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	ChallengeID   string    `json:"challenge_id"`
	UID           string    `json:"uid"`
	SubmittedAt   time.Time `json:"submitted_at"`
	IsCorrect     bool      `json:"is_correct"`
	AttemptNumber int       `json:"attempt_number"`
}

// AttemptHistory is what the governor needs to know about prior submissions.
type AttemptHistory struct {
	// PriorAttempts on this challenge by this user within the event.
	PriorAttempts int
	// Last is the most recent prior attempt on this challenge, nil if none.
	Last *Submission
	// InWindow counts the user's submissions across the whole event inside the rate window.
	InWindow int
}
