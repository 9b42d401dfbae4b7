package models

import "time"

// Post is a message in the shared feed. ReplyTo links to another post's ID
// to form a thread; it is stored as given and not verified against an
// existing post. CreatedAt is set once at creation and never touched by
// edits.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Owner     User      `gorm:"foreignKey:OwnerID" json:"-"`
	Edited    bool      `gorm:"not null;default:false" json:"edited"`
	ReplyTo   *uint     `json:"reply_to"`
	CreatedAt time.Time `json:"timestamp"`
}

// ShapedPost is the fixed JSON projection of a Post returned by every
// post-producing operation.
type ShapedPost struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	OwnerID   uint      `json:"owner_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	ReplyTo   *uint     `json:"reply_to"`
	Edited    bool      `json:"edited"`
}

// Shape projects a post into its wire form using the given owner username.
func (p *Post) Shape(username string) *ShapedPost {
	return &ShapedPost{
		ID:        p.ID,
		Content:   p.Content,
		OwnerID:   p.OwnerID,
		Username:  username,
		Timestamp: p.CreatedAt,
		ReplyTo:   p.ReplyTo,
		Edited:    p.Edited,
	}
}
