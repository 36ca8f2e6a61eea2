package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store serves templates from either a JSON file or Postgres. The file
// backend is the default; Postgres is used when a DSN is configured. Reads
// go through an LRU cache on the Postgres path since templates are static
// and sessions read them on every start.
type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]Template

	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[string, Template]
}

func New(path string) *Store {
	return &Store{
		path: path,
		byID: make(map[string]Template),
	}
}

func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("catalog: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: ping postgres: %w", err)
	}
	cache, err := lru.New[string, Template](256)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// NewFromEnv picks the Postgres backend when CATALOG_PG_DSN is set and
// reachable, otherwise falls back to the file backend at path.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("CATALOG_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

// EnsureLoaded makes the backing storage ready and seeds the builtin
// templates when it is empty.
func (s *Store) EnsureLoaded() {
	if s == nil {
		return
	}
	if s.db != nil {
		_ = s.ensureSchema()
		s.seedIfEmpty()
		return
	}
	s.ensureLoadedFile()
	s.seedIfEmpty()
}

func (s *Store) seedIfEmpty() {
	if len(s.List()) > 0 {
		return
	}
	for _, tpl := range BuiltinTemplates() {
		_ = s.Put(tpl)
	}
}

// Get returns the template by id, or false when unknown.
func (s *Store) Get(id string) (Template, bool) {
	if s == nil {
		return Template{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Template{}, false
	}
	if s.db != nil {
		return s.getDB(id)
	}
	return s.getFile(id)
}

// List returns all templates sorted by id.
func (s *Store) List() []Template {
	if s == nil {
		return nil
	}
	var out []Template
	if s.db != nil {
		out = s.listDB()
	} else {
		out = s.listFile()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Put stores a template. Used for seeding; the catalog editor itself lives
// outside this service.
func (s *Store) Put(tpl Template) error {
	if s == nil {
		return fmt.Errorf("catalog: store is nil")
	}
	if err := tpl.Validate(); err != nil {
		return err
	}
	if s.db != nil {
		return s.putDB(tpl)
	}
	return s.putFile(tpl)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// --- file backend ---

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []Template
		if err := json.Unmarshal(data, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			if row.Validate() != nil {
				continue
			}
			s.byID[row.ID] = row
		}
	})
}

func (s *Store) getFile(id string) (Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.byID[id]
	if !ok {
		return Template{}, false
	}
	return tpl.Clone(), true
}

func (s *Store) listFile() []Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Template, 0, len(s.byID))
	for _, tpl := range s.byID {
		out = append(out, tpl.Clone())
	}
	return out
}

func (s *Store) putFile(tpl Template) error {
	s.mu.Lock()
	s.byID[tpl.ID] = tpl.Clone()
	rows := make([]Template, 0, len(s.byID))
	for _, row := range s.byID {
		rows = append(rows, row)
	}
	s.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode templates: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("catalog: create dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("catalog: write templates: %w", err)
	}
	return nil
}

// --- postgres backend ---

func (s *Store) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
			CREATE TABLE IF NOT EXISTS reflection_templates (
				id  TEXT PRIMARY KEY,
				doc JSONB NOT NULL
			)`)
	})
	return s.schemaErr
}

func (s *Store) getDB(id string) (Template, bool) {
	if tpl, ok := s.cache.Get(id); ok {
		return tpl.Clone(), true
	}
	if err := s.ensureSchema(); err != nil {
		return Template{}, false
	}
	var raw []byte
	err := s.db.QueryRow(`SELECT doc FROM reflection_templates WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		return Template{}, false
	}
	var tpl Template
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return Template{}, false
	}
	s.cache.Add(id, tpl.Clone())
	return tpl, true
}

func (s *Store) listDB() []Template {
	if err := s.ensureSchema(); err != nil {
		return nil
	}
	rows, err := s.db.Query(`SELECT doc FROM reflection_templates ORDER BY id`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			continue
		}
		var tpl Template
		if err := json.Unmarshal(raw, &tpl); err != nil {
			continue
		}
		out = append(out, tpl)
	}
	return out
}

func (s *Store) putDB(tpl Template) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	raw, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("catalog: encode template %s: %w", tpl.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO reflection_templates (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`, tpl.ID, raw)
	if err != nil {
		return fmt.Errorf("catalog: upsert template %s: %w", tpl.ID, err)
	}
	s.cache.Add(tpl.ID, tpl.Clone())
	return nil
}
