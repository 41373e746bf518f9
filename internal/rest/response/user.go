package response // 建议包名就叫 response

import "github.com/Guyuepp/travel-feed/domain"

const DateTimeFormat = "2006-01-02 15:04:05"

type User struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

func NewUserFromDomain(u *domain.User) *User {
	if u == nil || u.ID == "" {
		return nil
	}
	return &User{
		ID:       u.ID,
		Nickname: u.Nickname,
	}
}
