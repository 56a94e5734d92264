package models

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type BlogPost struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title" binding:"required"`
	Date      string    `json:"date" yaml:"date"`
	Content   string    `json:"content" yaml:"content" binding:"required"`
	MediaType MediaType `json:"mediaType,omitempty" yaml:"mediaType,omitempty"`
	MediaURL  string    `json:"mediaUrl,omitempty" yaml:"mediaUrl,omitempty"`
}
