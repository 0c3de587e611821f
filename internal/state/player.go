package state

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/llehouerou/bilimusic/internal/db"
	"github.com/llehouerou/bilimusic/internal/playlist"
)

// Storage keys. The names match the browser storage layout the playlist
// JSON was first written with, so exported playlists stay interchangeable.
const (
	keyPlaylist = "playlist"
	keyLoopMode = "loopMode"
)

// PlayerState is the persisted part of the player: the playlist and loop mode.
type PlayerState struct {
	Playlist []playlist.Entry
	LoopMode playlist.LoopMode
}

// DefaultPlayerState is what a fresh install starts with.
func DefaultPlayerState() PlayerState {
	return PlayerState{Playlist: []playlist.Entry{}, LoopMode: playlist.LoopList}
}

// loadResult carries the decoded state plus any corruption found on the way.
type loadResult struct {
	state    PlayerState
	problems []error
}

func loadPlayer(conn *sql.DB) (loadResult, error) {
	res := loadResult{state: DefaultPlayerState()}

	raw, ok, err := getValue(conn, keyPlaylist)
	if err != nil {
		return res, err
	}
	if ok {
		var entries []playlist.Entry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			res.problems = append(res.problems, errors.New("playlist: "+err.Error()))
		} else {
			res.state.Playlist = validEntries(entries)
		}
	}

	raw, ok, err = getValue(conn, keyLoopMode)
	if err != nil {
		return res, err
	}
	if ok {
		mode, valid := playlist.ParseLoopMode(raw)
		if !valid {
			res.problems = append(res.problems, errors.New("loopMode: unknown value "+raw))
		}
		res.state.LoopMode = mode
	}

	return res, nil
}

// validEntries drops entries without an id and collapses duplicates.
func validEntries(entries []playlist.Entry) []playlist.Entry {
	kept := make([]playlist.Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != "" {
			kept = append(kept, e)
		}
	}
	return playlist.From(kept).Entries()
}

func savePlayer(conn *sql.DB, state PlayerState) error {
	entries := state.Playlist
	if entries == nil {
		entries = []playlist.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	return db.WithTx(conn, func(tx *sql.Tx) error {
		if err := putValue(tx, keyPlaylist, string(data)); err != nil {
			return err
		}
		return putValue(tx, keyLoopMode, state.LoopMode.String())
	})
}

func getValue(conn *sql.DB, key string) (string, bool, error) {
	var value string
	err := conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func putValue(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
