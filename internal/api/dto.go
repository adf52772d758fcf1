package api

import "Zenframe/internal/domain"

type SignupRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type SignupResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type CommentRequest struct {
	Content string `json:"comment_content" binding:"required,min=1"`
}

type CommentResponse struct {
	CommentID string `json:"comment_id"`
}

// NewsDetailResponse is a stored article with its comments, newest first.
type NewsDetailResponse struct {
	domain.EnrichedArticle
	Comments []domain.Comment `json:"comments"`
}
