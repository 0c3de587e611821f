package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/bilimusic/internal/errmsg"
	"github.com/llehouerou/bilimusic/internal/metrics"
)

const (
	appName    = "bilimusic"
	dbFileName = "bilimusic.db"
)

// Options configures Open.
type Options struct {
	// Path of the database file. Empty means the XDG data directory.
	Path string
	// SaveDebounce coalesces SavePlayer calls. Zero writes immediately.
	SaveDebounce time.Duration
	Logger       *log.Logger
}

// Manager persists player state in SQLite. Writes never fail from the
// caller's point of view: errors are logged and counted.
type Manager struct {
	db       *sql.DB
	logger   *log.Logger
	debounce time.Duration

	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *PlayerState
}

func Open(opts Options) (*Manager, error) {
	dbPath := opts.Path
	if dbPath == "" {
		var err error
		if dbPath, err = getDBPath(); err != nil {
			return nil, err
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return newManager(conn, opts), nil
}

func newManager(conn *sql.DB, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		db:       conn,
		logger:   logger.With("component", "state"),
		debounce: opts.SaveDebounce,
	}
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	// Flush pending state
	if pending != nil {
		m.write(*pending)
	}

	return m.db.Close()
}

// LoadPlayer returns the stored state, or defaults for anything missing or
// unreadable.
func (m *Manager) LoadPlayer() PlayerState {
	res, err := loadPlayer(m.db)
	if err != nil {
		m.logger.Warn(errmsg.Format(errmsg.OpLoadPlaylist, err))
		return DefaultPlayerState()
	}
	for _, p := range res.problems {
		m.logger.Warn("ignoring corrupt player state", "err", p)
	}
	return res.state
}

// SavePlayer stores state, immediately or after the debounce delay.
func (m *Manager) SavePlayer(state PlayerState) {
	state.Playlist = slices.Clone(state.Playlist)

	if m.debounce <= 0 {
		m.write(state)
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(m.debounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			m.write(*pending)
		}
	})
}

func (m *Manager) write(state PlayerState) {
	if err := savePlayer(m.db, state); err != nil {
		metrics.PersistErrors.Inc()
		m.logger.Error(errmsg.Format(errmsg.OpSavePlaylist, err))
	}
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
