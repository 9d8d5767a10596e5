package models

import (
	"time"

	"github.com/aichampion/hall/internal/domain"
)

type Champion struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	Name         string    `json:"name" gorm:"type:text;not null"`
	Department   string    `json:"department" gorm:"type:text;not null"`
	Role         string    `json:"role" gorm:"type:text;not null"`
	Tier         string    `json:"tier" gorm:"type:text;not null"`
	Status       string    `json:"status" gorm:"type:text;not null;default:'APPROVED'"`
	Vision       string    `json:"vision" gorm:"type:text;not null"`
	Achievement  string    `json:"achievement" gorm:"type:text"`
	ImageURL     string    `json:"imageUrl" gorm:"type:text;not null"`
	ProjectURL   string    `json:"projectUrl" gorm:"type:text"`
	RegisteredAt time.Time `json:"registeredAt" gorm:"->;<-:create;type:timestamp with time zone;not null;index"`
	ViewCount    int64     `json:"viewCount" gorm:"type:bigint;not null;default:0"`
	Email        string    `json:"-" gorm:"type:text"`
	Secret       string    `json:"-" gorm:"type:text"`
}

func FromDomain(c domain.Champion) Champion {
	return Champion{
		ID:           c.ID,
		Name:         c.Name,
		Department:   c.Department,
		Role:         c.Role,
		Tier:         string(c.Tier),
		Status:       string(c.Status),
		Vision:       c.Vision,
		Achievement:  c.Achievement,
		ImageURL:     c.ImageURL,
		ProjectURL:   c.ProjectURL,
		RegisteredAt: c.RegisteredAt,
		ViewCount:    c.ViewCount,
		Email:        c.Email,
		Secret:       c.Secret,
	}
}

func (m Champion) ToDomain() domain.Champion {
	return domain.Champion{
		ID:           m.ID,
		Name:         m.Name,
		Department:   m.Department,
		Role:         m.Role,
		Tier:         domain.Tier(m.Tier),
		Status:       domain.Status(m.Status),
		Vision:       m.Vision,
		Achievement:  m.Achievement,
		ImageURL:     m.ImageURL,
		ProjectURL:   m.ProjectURL,
		RegisteredAt: m.RegisteredAt,
		ViewCount:    m.ViewCount,
		Email:        m.Email,
		Secret:       m.Secret,
	}
}
