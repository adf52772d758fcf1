package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"Zenframe/internal/domain"
	"Zenframe/internal/ports"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type newsStore interface {
	ports.NewsReader
	ports.CommentRepository
}

// NewsHandler serves the news listing, detail view and comments.
type NewsHandler struct {
	store  newsStore
	logger *slog.Logger
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(store newsStore, logger *slog.Logger) *NewsHandler {
	return &NewsHandler{store: store, logger: logger.With("component", "news_handler")}
}

// List returns stored articles, newest first.
func (h *NewsHandler) List(c *gin.Context) {
	filter := listFilter(c)

	articles, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if articles == nil {
		articles = []domain.EnrichedArticle{}
	}
	c.JSON(http.StatusOK, articles)
}

// Get returns one article with its comments.
func (h *NewsHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if err := domain.ValidateID(id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	article, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	comments, err := h.store.ListComments(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if comments == nil {
		comments = []domain.Comment{}
	}

	c.JSON(http.StatusOK, NewsDetailResponse{EnrichedArticle: article, Comments: comments})
}

// AddComment stores a comment from the authenticated user.
func (h *NewsHandler) AddComment(c *gin.Context) {
	id := c.Param("id")
	if err := domain.ValidateID(id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if _, err := h.store.Get(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment_content is required"})
		return
	}

	commentID, err := h.store.AddComment(c.Request.Context(), domain.Comment{
		UserID:  currentUser(c),
		NewsID:  id,
		Content: strings.TrimSpace(req.Content),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, CommentResponse{CommentID: commentID})
}

// listFilter reads query parameters; values that are not integers fall back to defaults.
func listFilter(c *gin.Context) domain.ListFilter {
	filter := domain.ListFilter{
		Category: strings.ToLower(strings.TrimSpace(c.Query("category"))),
		Limit:    clamp(queryInt(c, "limit", defaultLimit), 1, maxLimit),
		Offset:   max(queryInt(c, "offset", 0), 0),
	}
	if raw := c.Query("positivity"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MinPositivity = &v
		}
	}
	return filter
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
