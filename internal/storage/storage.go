// Package storage keeps per-guild history records on top of the JSON
// datastore: which commands were invoked and which tracks were played.
package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"loopbox/datastore"
)

const (
	commandHistoryLimit = 20
	tracksHistoryLimit  = 12
)

type CommandHistoryRecord struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	GuildName   string `json:"guild_name"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Command     string `json:"command"`
	Datetime    int64  `json:"datetime"`
}

type TrackHistoryRecord struct {
	TrackName string `json:"track_name"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	PlayedAt  int64  `json:"played_at"`
}

type Record struct {
	GuildID             string                 `json:"guild_id"`
	CommandsHistoryList []CommandHistoryRecord `json:"commands_history_list"`
	TracksHistoryList   []TrackHistoryRecord   `json:"tracks_history_list"`
}

type Storage struct {
	mu sync.Mutex
	ds *datastore.DataStore
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// getOrCreateGuildRecord returns the record for guildID, creating an
// empty one if none exists. Records loaded from disk come back as
// map[string]any and are remarshalled into the typed struct.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	raw, exists := s.ds.Get(guildID)
	if !exists {
		record := &Record{GuildID: guildID}
		s.ds.Add(guildID, record)
		return record, nil
	}

	switch v := raw.(type) {
	case *Record:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("remarshalling guild record %s: %w", guildID, err)
		}
		record := &Record{}
		if err := json.Unmarshal(data, record); err != nil {
			return nil, fmt.Errorf("decoding guild record %s: %w", guildID, err)
		}
		record.GuildID = guildID
		s.ds.Add(guildID, record)
		return record, nil
	}
}

// AppendCommandToHistory records a command invocation, keeping only the
// most recent entries.
func (s *Storage) AppendCommandToHistory(guildID string, entry CommandHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, entry)
	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	out := make([]CommandHistoryRecord, len(record.CommandsHistoryList))
	copy(out, record.CommandsHistoryList)
	return out, nil
}

// AppendTrackToHistory records a played track, keeping only the most
// recent entries.
func (s *Storage) AppendTrackToHistory(guildID string, entry TrackHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.TracksHistoryList = append(record.TracksHistoryList, entry)
	if len(record.TracksHistoryList) > tracksHistoryLimit {
		record.TracksHistoryList = record.TracksHistoryList[len(record.TracksHistoryList)-tracksHistoryLimit:]
	}

	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) FetchTrackHistory(guildID string) ([]TrackHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	out := make([]TrackHistoryRecord, len(record.TracksHistoryList))
	copy(out, record.TracksHistoryList)
	return out, nil
}
