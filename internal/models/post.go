package models

import "time"

// Post is a piece of generated media shared by its creator.
type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	CreatorID   string    `gorm:"size:128;not null;index:idx_posts_creator_created,priority:1" json:"creator_id" bson:"creator_id"`
	Prompt      string    `gorm:"type:text;not null" json:"prompt" bson:"prompt"`
	Category    string    `gorm:"size:128;not null" json:"category" bson:"category"`
	Description string    `gorm:"type:text" json:"description" bson:"description"`
	OutputURL   string    `gorm:"size:2048;not null" json:"output_url" bson:"output_url"`
	Public      bool      `json:"public" bson:"public"`
	AIModelTags []string  `gorm:"serializer:json;type:text" json:"ai_model_tags" bson:"ai_model_tags"`
	CreatedAt   time.Time `gorm:"index;index:idx_posts_creator_created,priority:2" json:"created_at" bson:"created_at"`
}

// Comment is a remark left on someone else's post.
type Comment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	PostID      string    `gorm:"size:36;not null;index" json:"post_id" bson:"post_id"`
	CommenterID string    `gorm:"size:128;not null" json:"commenter_id" bson:"commenter_id"`
	Text        string    `gorm:"column:comment;type:text;not null" json:"comment" bson:"comment"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Like is keyed by (post, liker); the composite primary key enforces one
// like per user per post.
type Like struct {
	PostID    string    `gorm:"primaryKey;size:36" json:"post_id" bson:"post_id"`
	LikerID   string    `gorm:"primaryKey;size:128" json:"liker_id" bson:"liker_id"`
	UserID    string    `gorm:"size:64" json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
