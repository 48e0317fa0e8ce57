package response

import "github.com/jeopardy-ctf/scoring-api/internal/domain"

type SubmitFlagResponse struct {
	Correct           bool `json:"correct"`
	AlreadySolved     bool `json:"alreadySolved"`
	AttemptsLeft      int  `json:"attemptsLeft"`
	CooldownRemaining int  `json:"cooldownRemaining"`
	ScoreAwarded      *int `json:"scoreAwarded,omitempty"`
}

type ProgressResponse struct {
	Progress domain.Progress        `json:"progress"`
	Quests   []domain.QuestProgress `json:"quests"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
