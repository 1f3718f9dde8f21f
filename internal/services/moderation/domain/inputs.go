package domain

import "time"

// EvaluateInput is the JSON body for a single message evaluation
type EvaluateInput struct {
	MessageID string    `json:"message_id" validate:"required"`
	GroupID   int64     `json:"group_id" validate:"required"`
	UserID    int64     `json:"user_id" validate:"required"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"` // optional; zero means now
}

// Message converts the input into the pipeline message
func (in EvaluateInput) Message() Message {
	return Message{
		MessageID: in.MessageID,
		GroupID:   in.GroupID,
		UserID:    in.UserID,
		Text:      in.Text,
		Timestamp: in.Timestamp,
	}
}

// NightModeInput switches a group's night phase by hand
type NightModeInput struct {
	// Action is "on" to pin night, "off" to pin day, "auto" to hand the
	// group back to the schedule
	Action string `json:"action" validate:"required,oneof=on off auto"`
}

// NightModeStatus is the response for night mode reads and writes
type NightModeStatus struct {
	GroupID    int64  `json:"group_id"`
	Phase      string `json:"phase"`
	Restricted bool   `json:"restricted"`
}

// DefaultConfig returns the rules document used before the dashboard
// pushes one
func DefaultConfig() Config {
	return Config{
		AutoApproveShortMessages: true,
		ShortMessageMaxLength:    5,
		SpamDetector: SpamConfig{
			TimeWindowHours:     1,
			SimilarityThreshold: 0.85,
			MinGroups:           2,
		},
		NightMode: NightModeConfig{
			Enabled:            false,
			GracePeriodSeconds: 60,
		},
	}
}
