package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/segmentio/ksuid"
)

// Tier is the certification rank of a champion. It is a closed set;
// arbitrary strings are rejected at construction time.
type Tier string

const (
	TierGreen Tier = "GREEN"
	TierBlue  Tier = "BLUE"
	TierBlack Tier = "BLACK"
)

func (t Tier) Valid() bool {
	switch t {
	case TierGreen, TierBlue, TierBlack:
		return true
	}
	return false
}

func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ValidationError{Field: "tier", Reason: fmt.Sprintf("unknown tier %q", s)}
	}
	return t, nil
}

// Status is the moderation state of a champion. PENDING entries still list;
// clients render them with an "in review" badge. Registration starts at
// APPROVED, there is no moderation flow server-side.
type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusPending  Status = "PENDING"
)

func (s Status) Valid() bool {
	switch s {
	case StatusApproved, StatusPending:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	if strings.TrimSpace(s) == "" {
		return StatusApproved, nil
	}
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", s)}
	}
	return status, nil
}

// Champion is a single profile entry in the hall of fame.
type Champion struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	Role         string    `json:"role"`
	Tier         Tier      `json:"tier"`
	Status       Status    `json:"status"`
	Vision       string    `json:"vision"`
	Achievement  string    `json:"achievement,omitempty"`
	ImageURL     string    `json:"imageUrl"`
	ProjectURL   string    `json:"projectUrl,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
	ViewCount    int64     `json:"viewCount"`

	// Convenience credentials for self-service edit/delete. Compared in
	// plaintext; this deters casual tampering only and is not an
	// authentication system.
	Email  string `json:"-"`
	Secret string `json:"-"`
}

// NewChampionID returns a fresh champion identifier.
func NewChampionID() string {
	return "champ_" + ksuid.New().String()
}

// ChampionDraft carries the user-supplied fields of a registration.
type ChampionDraft struct {
	Name        string
	Department  string
	Role        string
	Tier        string
	Status      string
	Vision      string
	Achievement string
	ImageURL    string
	ProjectURL  string
	Email       string
	Secret      string
}

// NewChampion validates a draft and mints a Champion. Malformed drafts are
// rejected here so the store never sees an invalid row.
func NewChampion(draft ChampionDraft, now time.Time) (Champion, error) {
	tier, err := ParseTier(draft.Tier)
	if err != nil {
		return Champion{}, err
	}
	status, err := ParseStatus(draft.Status)
	if err != nil {
		return Champion{}, err
	}

	c := Champion{
		ID:           NewChampionID(),
		Name:         strings.TrimSpace(draft.Name),
		Department:   strings.TrimSpace(draft.Department),
		Role:         strings.TrimSpace(draft.Role),
		Tier:         tier,
		Status:       status,
		Vision:       strings.TrimSpace(draft.Vision),
		Achievement:  strings.TrimSpace(draft.Achievement),
		ImageURL:     strings.TrimSpace(draft.ImageURL),
		ProjectURL:   strings.TrimSpace(draft.ProjectURL),
		RegisteredAt: now.UTC(),
		ViewCount:    0,
		Email:        strings.TrimSpace(draft.Email),
		Secret:       strings.TrimSpace(draft.Secret),
	}

	if c.Name == "" {
		return Champion{}, ValidationError{Field: "name", Reason: "required"}
	}
	if c.Department == "" {
		return Champion{}, ValidationError{Field: "department", Reason: "required"}
	}
	if c.Role == "" {
		return Champion{}, ValidationError{Field: "role", Reason: "required"}
	}
	if c.Vision == "" {
		return Champion{}, ValidationError{Field: "vision", Reason: "required"}
	}
	if c.ImageURL == "" {
		return Champion{}, ValidationError{Field: "imageUrl", Reason: "required"}
	}

	return c, nil
}

// ApplyEdit overwrites the owner-editable fields. ID, RegisteredAt and
// ViewCount are immutable through edits.
func (c Champion) ApplyEdit(draft ChampionDraft) (Champion, error) {
	tier, err := ParseTier(draft.Tier)
	if err != nil {
		return Champion{}, err
	}

	edited := c
	edited.Name = strings.TrimSpace(draft.Name)
	edited.Department = strings.TrimSpace(draft.Department)
	edited.Role = strings.TrimSpace(draft.Role)
	edited.Tier = tier
	edited.Vision = strings.TrimSpace(draft.Vision)
	edited.Achievement = strings.TrimSpace(draft.Achievement)
	edited.ProjectURL = strings.TrimSpace(draft.ProjectURL)
	if strings.TrimSpace(draft.Status) != "" {
		status, err := ParseStatus(draft.Status)
		if err != nil {
			return Champion{}, err
		}
		edited.Status = status
	}
	if url := strings.TrimSpace(draft.ImageURL); url != "" {
		edited.ImageURL = url
	}
	if email := strings.TrimSpace(draft.Email); email != "" {
		edited.Email = email
	}
	if secret := strings.TrimSpace(draft.Secret); secret != "" {
		edited.Secret = secret
	}

	if edited.Name == "" || edited.Department == "" || edited.Role == "" || edited.Vision == "" {
		return Champion{}, ValidationError{Field: "profile", Reason: "required fields missing"}
	}

	return edited, nil
}

// MatchCredentials compares the supplied credentials against the champion's
// stored ones. Both fields compare case-insensitively on trimmed input.
func (c Champion) MatchCredentials(email, secret string) bool {
	if c.Email == "" || c.Secret == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), c.Email) &&
		strings.EqualFold(strings.TrimSpace(secret), c.Secret)
}

// Default thresholds below which a profile text counts as unrefined.
const (
	DefaultMinVisionLen      = 20
	DefaultMinAchievementLen = 10
)

// RefinementNeed reports which text fields of a champion are deficient.
// It is a pure function of the two fields and is recomputed on every read.
type RefinementNeed struct {
	Vision      bool
	Achievement bool
}

func (n RefinementNeed) Any() bool {
	return n.Vision || n.Achievement
}

// EvaluateRefinement inspects the champion's texts against the thresholds.
func EvaluateRefinement(c Champion, minVision, minAchievement int) RefinementNeed {
	return RefinementNeed{
		Vision:      utf8.RuneCountInString(strings.TrimSpace(c.Vision)) < minVision,
		Achievement: utf8.RuneCountInString(strings.TrimSpace(c.Achievement)) < minAchievement,
	}
}
