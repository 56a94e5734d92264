package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sthar2820/portfolio-website/models"
)

// BlogKey is the single key holding the JSON array of posts.
const BlogKey = "portfolio_blog_posts"

var ErrDuplicateID = errors.New("duplicate post id")

// BlogStore keeps the ordered list of blog posts under BlogKey. Mutations are
// read-modify-write of the whole list and are serialized within the process.
type BlogStore struct {
	kv       KVStore
	defaults []models.BlogPost
	mu       sync.Mutex
	now      func() time.Time
}

func NewBlogStore(kv KVStore, defaults []models.BlogPost) *BlogStore {
	return &BlogStore{kv: kv, defaults: defaults, now: time.Now}
}

// List returns the stored posts. The first call against an empty store writes
// the defaults so later calls read them back from the backend.
func (s *BlogStore) List(ctx context.Context) ([]models.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save replaces the post with the same id in place, or prepends it when the id
// is new. An empty id gets a generated one.
func (s *BlogStore) Save(ctx context.Context, post models.BlogPost) (models.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load(ctx)
	if err != nil {
		return models.BlogPost{}, err
	}
	if post.ID == "" {
		post.ID = s.freeID(posts)
	}

	replaced := false
	for i := range posts {
		if posts[i].ID == post.ID {
			posts[i] = post
			replaced = true
			break
		}
	}
	if !replaced {
		posts = append([]models.BlogPost{post}, posts...)
	}

	if err := s.write(ctx, posts); err != nil {
		return models.BlogPost{}, err
	}
	return post, nil
}

// Delete removes the post with the given id. A missing id is not an error.
func (s *BlogStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := posts[:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(posts) {
		return nil
	}
	return s.write(ctx, kept)
}

// Reorder replaces the whole list, typically with the same posts in a new
// order.
func (s *BlogStore) Reorder(ctx context.Context, posts []models.BlogPost) error {
	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		if p.ID == "" || seen[p.ID] {
			return fmt.Errorf("post %q: %w", p.ID, ErrDuplicateID)
		}
		seen[p.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, posts)
}

// freeID returns "b" followed by the current Unix time in milliseconds, moved
// forward one millisecond at a time until no post in posts uses it.
func (s *BlogStore) freeID(posts []models.BlogPost) string {
	taken := make(map[string]bool, len(posts))
	for _, p := range posts {
		taken[p.ID] = true
	}
	ms := s.now().UnixMilli()
	for taken[fmt.Sprintf("b%d", ms)] {
		ms++
	}
	return fmt.Sprintf("b%d", ms)
}

func (s *BlogStore) load(ctx context.Context) ([]models.BlogPost, error) {
	raw, err := s.kv.Get(ctx, BlogKey)
	if errors.Is(err, ErrNotFound) {
		posts := append([]models.BlogPost(nil), s.defaults...)
		if err := s.write(ctx, posts); err != nil {
			return nil, err
		}
		log.Printf("Seeded blog store with %d default posts", len(posts))
		return posts, nil
	}
	if err != nil {
		return nil, err
	}

	var posts []models.BlogPost
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", BlogKey, err)
	}
	if posts == nil {
		posts = []models.BlogPost{}
	}
	return posts, nil
}

func (s *BlogStore) write(ctx context.Context, posts []models.BlogPost) error {
	if posts == nil {
		posts = []models.BlogPost{}
	}
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", BlogKey, err)
	}
	return s.kv.Set(ctx, BlogKey, string(data))
}
