// Package domain defines the moderation pipeline's types and ports
package domain

import (
	"time"

	"modguard/internal/core/spam"

	clsdomain "modguard/internal/services/classifier/domain"
)

// Message is one inbound chat message. Text is the raw body; the pipeline
// normalizes it internally and keeps the raw form for audit
type Message struct {
	MessageID string
	GroupID   int64
	UserID    int64
	Text      string
	Timestamp time.Time
}

// VerdictKind enumerates the closed set of pipeline outcomes
type VerdictKind string

const (
	// VerdictApproved means the message passed every check
	VerdictApproved VerdictKind = "approved"

	// VerdictRejectedNightMode means the group is night-restricted
	VerdictRejectedNightMode VerdictKind = "rejected_night_mode"

	// VerdictRejectedKeyword means a banned word or template matched
	VerdictRejectedKeyword VerdictKind = "rejected_keyword"

	// VerdictRejectedLanguage means the detected language is disallowed
	VerdictRejectedLanguage VerdictKind = "rejected_language"

	// VerdictRejectedSpam means a cross-group burst matched
	VerdictRejectedSpam VerdictKind = "rejected_spam"

	// VerdictRejectedClassifier means the external classifier flagged it
	VerdictRejectedClassifier VerdictKind = "rejected_classifier"
)

// Verdict is the single final decision for one message. Exactly one kind is
// produced per evaluation; the payload fields belong to their kind and stay
// zero otherwise
type Verdict struct {
	Kind VerdictKind `json:"verdict"`

	// Check names the pipeline step that decided ("exempt", "night_mode",
	// "keyword", "short_message", "language", "spam", "classifier",
	// "default")
	Check string `json:"check"`

	// Word is the banned term or template id for keyword rejections
	Word string `json:"word,omitempty"`

	// Language is the disallowed language code for language rejections
	Language string `json:"language,omitempty"`

	// Spam carries the detector verdict for spam rejections
	Spam *spam.Verdict `json:"spam,omitempty"`

	// Reason is the classifier's explanation for classifier rejections
	Reason string `json:"reason,omitempty"`

	// Degraded marks an approval that fell back to the keyword-level
	// decision because the classifier was unavailable
	Degraded bool `json:"degraded,omitempty"`
}

// SpamConfig is the dashboard's spam_detector block
type SpamConfig struct {
	TimeWindowHours     float64 `json:"time_window_hours" validate:"gt=0,lte=168"`
	SimilarityThreshold float64 `json:"similarity_threshold" validate:"gte=0.1,lte=1"`
	MinGroups           int     `json:"min_groups" validate:"gte=2,lte=10"`
}

// NightModeConfig is the dashboard's night_mode block
type NightModeConfig struct {
	Enabled            bool    `json:"enabled"`
	StartHour          string  `json:"start_hour" validate:"omitempty,clock"`
	EndHour            string  `json:"end_hour" validate:"omitempty,clock"`
	GracePeriodSeconds int     `json:"grace_period_seconds" validate:"gte=0,lte=3600"`
	NightModeGroups    []int64 `json:"night_mode_groups"`
	BanGroups          []int64 `json:"ban_groups"`
}

// Config is the moderation config document supplied by the dashboard.
// It is validated once per load; invalid values are rejected at the
// boundary, never coerced downstream
type Config struct {
	BannedWords              []string        `json:"banned_words"`
	WhitelistWords           []string        `json:"whitelist_words"`
	ExemptUsers              []int64         `json:"exempt_users"`
	AutoApproveShortMessages bool            `json:"auto_approve_short_messages"`
	ShortMessageMaxLength    int             `json:"short_message_max_length" validate:"gte=0,lte=1000"`
	AllowedLanguages         []string        `json:"allowed_languages"`
	SpamDetector             SpamConfig      `json:"spam_detector"`
	NightMode                NightModeConfig `json:"night_mode"`
}

// Stats is the pipeline counter snapshot backing the status endpoint
type Stats struct {
	Evaluated  uint64                 `json:"evaluated"`
	ByKind     map[VerdictKind]uint64 `json:"by_kind"`
	Degraded   uint64                 `json:"degraded"`
	Classifier *clsdomain.Stats       `json:"classifier,omitempty"`
	Tracked    int                    `json:"tracked_occurrences"`
}
