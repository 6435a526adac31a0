package handlers

import (
	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/rank"
)

// UserView decorates a user record with display rank info for API responses
type UserView struct {
	models.User
	RankName  string `json:"rank_name"`
	RankEmoji string `json:"rank_emoji"`
}

func newUserView(u models.User) UserView {
	return UserView{
		User:      u,
		RankName:  rank.DisplayName(u.Rank),
		RankEmoji: rank.Emoji(u.Rank),
	}
}

func newUserViews(users []models.User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	return views
}
