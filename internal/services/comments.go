package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ticketlive/internal/models"
)

// CommentStore keeps testimonials in a JSON file (comments.json). It is
// the only durable state this process owns besides the subscriber list.
type CommentStore struct {
	path string
	mu   sync.Mutex
}

// NewCommentStore creates a store backed by comments.json under dir.
func NewCommentStore(dir string) *CommentStore {
	return &CommentStore{path: filepath.Join(dir, "comments.json")}
}

// List returns all testimonials, newest first.
func (s *CommentStore) List() ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments, err := s.load()
	if err != nil {
		return nil, err
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// Add validates and appends a testimonial.
func (s *CommentStore) Add(comment models.Comment) (*models.Comment, error) {
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	comments, err := s.load()
	if err != nil {
		return nil, err
	}

	comments = append(comments, comment)
	if err := s.save(comments); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *CommentStore) load() ([]models.Comment, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read comments file: %w", err)
	}

	var comments []models.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, fmt.Errorf("failed to parse comments file: %w", err)
	}
	return comments, nil
}

func (s *CommentStore) save(comments []models.Comment) error {
	data, err := json.MarshalIndent(comments, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode comments: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Write-then-rename keeps readers from seeing a half-written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write comments file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
