package storage

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/communityhub/importer/internal/models"
	bolt "go.etcd.io/bbolt"
)

var bucketSessions = []byte("sessions")

// BoltStore keeps sessions as JSON values in a single bbolt bucket so they
// survive restarts of the server.
type BoltStore struct {
	db *bolt.DB
}

// NewBolt opens (or creates) a bbolt database at path.
func NewBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(sessionID string) (*models.ImportSession, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSessions).Get([]byte(sessionID)); v != nil {
			// bbolt slices are only valid inside the transaction
			data = slices.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}

	var session models.ImportSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (s *BoltStore) Set(session *models.ImportSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(session.ID), data)
	})
}

// GetAll returns sessions oldest first.
func (s *BoltStore) GetAll() ([]*models.ImportSession, error) {
	var result []*models.ImportSession
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, v []byte) error {
			var session models.ImportSession
			if err := json.Unmarshal(v, &session); err != nil {
				return fmt.Errorf("failed to decode session %s: %w", k, err)
			}
			result = append(result, &session)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortSessions(result)
	return result, nil
}

func (s *BoltStore) Delete(sessionID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b.Get([]byte(sessionID)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(sessionID))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func sortSessions(sessions []*models.ImportSession) {
	slices.SortFunc(sessions, func(a, b *models.ImportSession) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}
