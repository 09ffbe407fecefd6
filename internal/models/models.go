package models

import (
	"strings"
	"time"
)

// User represents a user in the system
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
	PushToken       *string   `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserSummary is the public projection of a user used in follower lists
type UserSummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Bio             string  `json:"bio"`
	ProfilePhotoURL *string `json:"profile_photo_url,omitempty"`
}

// Summary returns the public projection of the user
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Bio:             u.Bio,
		ProfilePhotoURL: u.ProfilePhotoURL,
	}
}

// MediaKind is the type of an attached media file
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaKindFor classifies an upload by its content type
func MediaKindFor(contentType string) MediaKind {
	if strings.HasPrefix(contentType, "image") {
		return MediaImage
	}
	return MediaVideo
}

// Media is a file attached to a post
type Media struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	URL       string    `json:"url"`
	Kind      MediaKind `json:"kind"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a user comment under a post
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Post is the post aggregate: the post row plus its likes, media and comments.
// Children reference the post by ID only.
type Post struct {
	ID         string
	UserID     string
	AuthorName string
	Content    string
	Likes      int
	CreatedAt  time.Time
	LikedBy    []string
	Media      []*Media
	Comments   []*Comment
}

// SharedPost is a repost of an existing post
type SharedPost struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	SharerName     string    `json:"sharer_name"`
	OriginalPostID string    `json:"original_post_id"`
	ShareComment   *string   `json:"share_comment,omitempty"`
	SharedAt       time.Time `json:"shared_at"`
}

// MediaFile is an uploaded file waiting to be stored
type MediaFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether the upload carries no bytes
func (f MediaFile) Empty() bool {
	return len(f.Data) == 0
}

// MediaResult is the outcome of storing one uploaded file
type MediaResult struct {
	Filename string    `json:"filename"`
	URL      string    `json:"url,omitempty"`
	Kind     MediaKind `json:"kind,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// CommentView is a comment as rendered inside a post
type CommentView struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"author_name"`
}

// PostView is a post as seen by a particular viewer
type PostView struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	Likes      int           `json:"likes"`
	CreatedAt  time.Time     `json:"created_at"`
	IsLiked    bool          `json:"is_liked"`
	AuthorID   string        `json:"author_id"`
	AuthorName string        `json:"author_name"`
	Comments   []CommentView `json:"comments"`
	MediaURLs  []string      `json:"media_urls"`
}

// SharedPostView is a share with its original post resolved live
type SharedPostView struct {
	ID           string    `json:"id"`
	SharedAt     time.Time `json:"shared_at"`
	ShareComment *string   `json:"share_comment,omitempty"`
	SharerName   string    `json:"sharer_name"`
	OriginalPost PostView  `json:"original_post"`
}

// LikeResult is the like state after a toggle
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// CreatePostResult is a created post with the outcome of every attached file
type CreatePostResult struct {
	Post  PostView      `json:"post"`
	Media []MediaResult `json:"media"`
}

// LearningPlan is a user's plan for learning a topic, broken into tasks
type LearningPlan struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	AuthorName string      `json:"author_name"`
	Topic      string      `json:"topic"`
	Resources  string      `json:"resources"`
	Timeline   string      `json:"timeline"`
	StartDate  *time.Time  `json:"start_date,omitempty"`
	EndDate    *time.Time  `json:"end_date,omitempty"`
	Extended   bool        `json:"extended"`
	CreatedAt  time.Time   `json:"created_at"`
	Tasks      []*PlanTask `json:"tasks"`
}

// PlanTask is one step of a learning plan
type PlanTask struct {
	ID          string     `json:"id"`
	PlanID      string     `json:"plan_id"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Position    int        `json:"position"`
}

// PlanInput carries the editable fields of a learning plan
type PlanInput struct {
	Topic     string      `json:"topic"`
	Resources string      `json:"resources"`
	Timeline  string      `json:"timeline"`
	StartDate *time.Time  `json:"start_date"`
	EndDate   *time.Time  `json:"end_date"`
	Tasks     []TaskInput `json:"tasks"`
}

// TaskInput is a task as submitted with a plan. ID is set when the task
// already exists on the plan.
type TaskInput struct {
	ID          string     `json:"id,omitempty"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
}

// ProgressUpdate is a short post about what a user finished and learned
type ProgressUpdate struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Completed  string    `json:"completed"`
	NewSkills  string    `json:"new_skills"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProgressInput carries the editable fields of a progress update
type ProgressInput struct {
	Content   string `json:"content"`
	Completed string `json:"completed"`
	NewSkills string `json:"new_skills"`
}
