// Package comments is a local comment store for pet listings. The backend
// has no comment API; comments (and the chat-with-poster feature built on
// them) live entirely on the client, keyed by listing id and persisted to a
// single JSON file in the config directory.
package comments

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Comment is one local comment on a listing. Chat is comments in
// alternation: a reply is just a comment by another author.
type Comment struct {
	ID        string    `json:"id"`
	ListingID int64     `json:"listing_id"`
	AuthorID  int64     `json:"author_id,omitempty"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrEmptyText rejects comments with nothing in them.
var ErrEmptyText = errors.New("comment text is required")

// Store holds comments per listing, newest first, backed by a JSON file.
type Store struct {
	mu        sync.Mutex
	path      string
	byListing map[int64][]Comment
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, byListing: make(map[int64][]Comment)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read comments file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.byListing); err != nil {
		return nil, fmt.Errorf("parse comments file: %w", err)
	}
	return s, nil
}

// ListByListing returns the comments for one listing, newest first. The
// returned slice is a copy.
func (s *Store) ListByListing(listingID int64) []Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Comment, len(s.byListing[listingID]))
	copy(out, s.byListing[listingID])
	return out
}

// Add prepends a new comment and persists the store.
func (s *Store) Add(listingID int64, author string, authorID int64, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if author == "" {
		author = "anonymous"
	}
	c := Comment{
		ID:        uuid.NewString(),
		ListingID: listingID,
		AuthorID:  authorID,
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byListing[listingID] = append([]Comment{c}, s.byListing[listingID]...)
	if err := s.save(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a comment. Deleting an unknown id is a no-op.
func (s *Store) Delete(listingID int64, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.byListing[listingID]
	kept := existing[:0]
	for _, c := range existing {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(existing) {
		return nil
	}
	s.byListing[listingID] = kept
	return s.save()
}

// save writes the whole store atomically: temp file, then rename.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.byListing, "", "  ")
	if err != nil {
		return fmt.Errorf("encode comments: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".comments-*.json")
	if err != nil {
		return fmt.Errorf("write comments: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write comments: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write comments: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write comments: %w", err)
	}
	return nil
}
