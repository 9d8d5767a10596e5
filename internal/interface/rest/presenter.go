package rest

import (
	"github.com/aichampion/hall/internal/domain"
)

// ChampionResponse is the wire shape of a champion. Credentials never leave
// the server; the registration timestamp is presented as localized date text.
type ChampionResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Role         string `json:"role"`
	Tier         string `json:"tier"`
	Status       string `json:"status"`
	Vision       string `json:"vision"`
	Achievement  string `json:"achievement,omitempty"`
	ImageURL     string `json:"imageUrl"`
	ProjectURL   string `json:"projectUrl,omitempty"`
	RegisteredAt string `json:"registeredAt"`
	ViewCount    int64  `json:"viewCount"`
}

func presentChampion(c domain.Champion) ChampionResponse {
	return ChampionResponse{
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
		RegisteredAt: c.RegisteredAt.Format("2006.01.02"),
		ViewCount:    c.ViewCount,
	}
}

func presentChampions(cs []domain.Champion) []ChampionResponse {
	out := make([]ChampionResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, presentChampion(c))
	}
	return out
}
