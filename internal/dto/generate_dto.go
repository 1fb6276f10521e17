package dto

import (
	"encoding/json"

	"policygen/pkg/wizard"
)

// GenerateRequest is the body of the stateless generation endpoint.
type GenerateRequest struct {
	Answers *wizard.Answers `json:"answers" validate:"required"`
}

// UnmarshalJSON decodes answers over the wizard defaults, so omitted
// fields keep the values a fresh session would have.
func (r *GenerateRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Answers json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Answers = nil
	if len(raw.Answers) == 0 || string(raw.Answers) == "null" {
		return nil
	}

	answers := wizard.DefaultAnswers()
	if err := json.Unmarshal(raw.Answers, &answers); err != nil {
		return err
	}
	r.Answers = &answers
	return nil
}

type GenerateResponse struct {
	Documents wizard.DocumentSet `json:"documents"`
}

type GenerateErrorResponse struct {
	Error string `json:"error"`
}
