// Package feed turns stored posts into viewer-specific views.
//
// Projection is pure: it performs no I/O and no authorization. Callers decide
// who may read; the projector only derives fields relative to a viewer. An
// empty viewer ID is an anonymous read and never sees a post as liked.
package feed

import "skillshare-backend/internal/models"

// Project builds the view of a post for viewerID.
func Project(post *models.Post, viewerID string) models.PostView {
	view := models.PostView{
		ID:         post.ID,
		Content:    post.Content,
		Likes:      post.Likes,
		CreatedAt:  post.CreatedAt,
		IsLiked:    IsLiked(post, viewerID),
		AuthorID:   post.UserID,
		AuthorName: post.AuthorName,
		Comments:   make([]models.CommentView, 0, len(post.Comments)),
		MediaURLs:  make([]string, 0, len(post.Media)),
	}
	for _, m := range post.Media {
		view.MediaURLs = append(view.MediaURLs, m.URL)
	}
	for _, c := range post.Comments {
		view.Comments = append(view.Comments, ProjectComment(c))
	}
	return view
}

// ProjectAll projects posts in the order given.
func ProjectAll(posts []*models.Post, viewerID string) []models.PostView {
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, Project(p, viewerID))
	}
	return views
}

// ProjectShare builds the view of a share. The embedded post's IsLiked
// reflects the sharer's like state, not the reader's.
func ProjectShare(share *models.SharedPost, original *models.Post) models.SharedPostView {
	return models.SharedPostView{
		ID:           share.ID,
		SharedAt:     share.SharedAt,
		ShareComment: share.ShareComment,
		SharerName:   share.SharerName,
		OriginalPost: Project(original, share.UserID),
	}
}

// ProjectComment drops everything but the author's display name.
func ProjectComment(c *models.Comment) models.CommentView {
	return models.CommentView{
		ID:         c.ID,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		AuthorName: c.AuthorName,
	}
}

// ProjectComments projects comments in the order given.
func ProjectComments(comments []*models.Comment) []models.CommentView {
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, ProjectComment(c))
	}
	return views
}

// IsLiked reports whether viewerID is in the post's liking set.
func IsLiked(post *models.Post, viewerID string) bool {
	if viewerID == "" {
		return false
	}
	for _, id := range post.LikedBy {
		if id == viewerID {
			return true
		}
	}
	return false
}
