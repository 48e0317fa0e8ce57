package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

const maxFlagLength = 1024

type SubmitFlagRequest struct {
	EventID     string `json:"eventId"`
	ChallengeID string `json:"challengeId"`
	FlagText    string `json:"flagText"`
}

func (req *SubmitFlagRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.ChallengeID, validation.Required),
		validation.Field(&req.FlagText, validation.Required, validation.Length(1, maxFlagLength)),
	)
}
