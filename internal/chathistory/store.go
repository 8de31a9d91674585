// Package chathistory persists per-session conversation transcripts in an
// S3-compatible bucket so analysis sessions survive process restarts.
package chathistory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/objectstore"
)

const historyPrefix = "chat_history/"

// Message is a single turn in a session transcript.
type Message struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// SessionInfo describes a stored session for listing.
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	LastModified time.Time `json:"last_modified"`
}

// Store reads and writes session transcripts under the chat_history/ prefix.
type Store struct {
	store  *objectstore.Store
	logger *zap.Logger
}

func NewStore(store *objectstore.Store, logger *zap.Logger) *Store {
	return &Store{store: store, logger: logger}
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

func sessionKey(sessionID string) string {
	return historyPrefix + sessionID + ".json"
}

func sessionIDFromKey(key string) string {
	id := strings.TrimPrefix(key, historyPrefix)
	return strings.TrimSuffix(id, ".json")
}

// Save replaces the stored transcript for sessionID.
func (s *Store) Save(ctx context.Context, sessionID string, messages []Message) error {
	if err := s.store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	if messages == nil {
		messages = []Message{}
	}
	payload, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	key := sessionKey(sessionID)
	_, err = s.store.Client.PutObject(ctx, s.store.Bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.logger.Debug("Saved chat history",
		zap.String("session_id", sessionID),
		zap.Int("messages", len(messages)))
	return nil
}

// Load returns the transcript for sessionID. A session that was never saved
// yields an empty transcript, not an error.
func (s *Store) Load(ctx context.Context, sessionID string) ([]Message, error) {
	if err := s.store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	key := sessionKey(sessionID)
	obj, err := s.store.Client.GetObject(ctx, s.store.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

// ListSessions returns stored sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	if err := s.store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	var sessions []SessionInfo
	for obj := range s.store.Client.ListObjects(ctx, s.store.Bucket, minio.ListObjectsOptions{
		Prefix:    historyPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list sessions: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		sessions = append(sessions, SessionInfo{
			SessionID:    sessionIDFromKey(obj.Key),
			LastModified: obj.LastModified,
		})
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastModified.After(sessions[j].LastModified)
	})
	return sessions, nil
}
