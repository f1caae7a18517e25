package models

import (
	"encoding/json"
	"time"
)

// Review is a scored opinion of a title. A user may review a title once;
// the composite unique index enforces it at the storage level.
type Review struct {
	ID       string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	AuthorID string    `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_author_title"`
	Author   *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Score    int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
	TitleID  string    `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_author_title"`
	Title    *Title    `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE"`
}

// OwnerID returns the author, used by ownership policies.
func (r *Review) OwnerID() string { return r.AuthorID }

// MarshalJSON renders the author as a username.
func (r Review) MarshalJSON() ([]byte, error) {
	type alias Review
	return json.Marshal(struct {
		alias
		Author string `json:"author"`
	}{alias(r), authorName(r.Author)})
}

// Comment is a reply to a review.
type Comment struct {
	ID       string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	AuthorID string    `json:"-" gorm:"type:varchar(36);not null;index"`
	Author   *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
	ReviewID string    `json:"-" gorm:"type:varchar(36);not null;index"`
	Review   *Review   `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
}

// OwnerID returns the author, used by ownership policies.
func (c *Comment) OwnerID() string { return c.AuthorID }

// MarshalJSON renders the author as a username.
func (c Comment) MarshalJSON() ([]byte, error) {
	type alias Comment
	return json.Marshal(struct {
		alias
		Author string `json:"author"`
	}{alias(c), authorName(c.Author)})
}

func authorName(u *User) string {
	if u == nil {
		return ""
	}
	return u.Username
}
