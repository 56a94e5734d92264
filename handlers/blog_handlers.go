package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sthar2820/portfolio-website/models"
	"github.com/sthar2820/portfolio-website/store"
)

type BlogHandlers struct {
	Posts *store.BlogStore
}

func NewBlogHandlers(posts *store.BlogStore) *BlogHandlers {
	return &BlogHandlers{Posts: posts}
}

func (h *BlogHandlers) List(c *gin.Context) {
	posts, err := h.Posts.List(c.Request.Context())
	if err != nil {
		log.Printf("ERROR: Failed to list blog posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load blog posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *BlogHandlers) Save(c *gin.Context) {
	var post models.BlogPost
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if post.MediaType != "" && post.MediaType != models.MediaImage && post.MediaType != models.MediaVideo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mediaType must be image or video"})
		return
	}

	saved, err := h.Posts.Save(c.Request.Context(), post)
	if err != nil {
		log.Printf("ERROR: Failed to save blog post %q: %v", post.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save blog post"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *BlogHandlers) Reorder(c *gin.Context) {
	var posts []models.BlogPost
	if err := c.ShouldBindJSON(&posts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.Posts.Reorder(c.Request.Context(), posts); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("ERROR: Failed to reorder blog posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder blog posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *BlogHandlers) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Posts.Delete(c.Request.Context(), id); err != nil {
		log.Printf("ERROR: Failed to delete blog post %q: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete blog post"})
		return
	}
	c.Status(http.StatusNoContent)
}
