package storage

import (
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is the production Store implementation, backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database.
func Open(dataDir string) (*SQLiteStore, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "counselgate.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for diagnostics.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

// --- Requests ---

func (s *SQLiteStore) CreateRequest(r LegalRequest) error {
	_, err := s.db.Exec(`
		INSERT INTO legal_requests (id, reference_number, category, title, description, status, urgency,
			urgency_reason, assigned_attorney_id, ai_summary, submitter_name, submitter_email,
			submitter_team, expected_timeline, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ReferenceNumber, r.Category, r.Title, r.Description, r.Status, r.Urgency,
		r.UrgencyReason, r.AssignedAttorneyID, r.AISummary, r.SubmitterName, r.SubmitterEmail,
		r.SubmitterTeam, r.ExpectedTimeline, mapToJSON(r.Metadata),
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	return err
}

const requestColumns = `id, reference_number, category, title, description, status, urgency,
	urgency_reason, assigned_attorney_id, ai_summary, submitter_name, submitter_email,
	submitter_team, expected_timeline, metadata, created_at, updated_at`

func (s *SQLiteStore) GetRequest(id string) (LegalRequest, error) {
	row := s.db.QueryRow(`SELECT `+requestColumns+` FROM legal_requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return LegalRequest{}, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) ListRequests() ([]LegalRequest, error) {
	rows, err := s.db.Query(`SELECT ` + requestColumns + ` FROM legal_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer rows.Close()

	var results []LegalRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) UpdateRequest(r LegalRequest) error {
	res, err := s.db.Exec(`
		UPDATE legal_requests SET category = ?, title = ?, description = ?, status = ?, urgency = ?,
			urgency_reason = ?, assigned_attorney_id = ?, ai_summary = ?, submitter_name = ?,
			submitter_email = ?, submitter_team = ?, expected_timeline = ?, metadata = ?, updated_at = ?
		WHERE id = ?`,
		r.Category, r.Title, r.Description, r.Status, r.Urgency,
		r.UrgencyReason, r.AssignedAttorneyID, r.AISummary, r.SubmitterName,
		r.SubmitterEmail, r.SubmitterTeam, r.ExpectedTimeline, mapToJSON(r.Metadata),
		formatTime(time.Now().UTC()), r.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) CountRequests() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM legal_requests").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (LegalRequest, error) {
	var r LegalRequest
	var metadata, createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.ReferenceNumber, &r.Category, &r.Title, &r.Description, &r.Status,
		&r.Urgency, &r.UrgencyReason, &r.AssignedAttorneyID, &r.AISummary, &r.SubmitterName,
		&r.SubmitterEmail, &r.SubmitterTeam, &r.ExpectedTimeline, &metadata, &createdAt, &updatedAt,
	); err != nil {
		return LegalRequest{}, err
	}
	var err error
	if r.Metadata, err = jsonToMap(metadata); err != nil {
		return LegalRequest{}, fmt.Errorf("parsing metadata for request %s: %w", r.ID, err)
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return LegalRequest{}, fmt.Errorf("parsing created_at for request %s: %w", r.ID, err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return LegalRequest{}, fmt.Errorf("parsing updated_at for request %s: %w", r.ID, err)
	}
	return r, nil
}

// --- Conversation messages ---

func (s *SQLiteStore) CreateMessage(m ConversationMessage) error {
	_, err := s.db.Exec(`
		INSERT INTO conversation_messages (id, request_id, role, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.RequestID, m.Role, m.Content, mapToJSON(m.Metadata), formatTime(m.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) GetMessages(requestID string) ([]ConversationMessage, error) {
	rows, err := s.db.Query(`
		SELECT id, request_id, role, content, metadata, created_at
		FROM conversation_messages WHERE request_id = ? ORDER BY created_at ASC`, requestID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var results []ConversationMessage
	for rows.Next() {
		var m ConversationMessage
		var metadata, createdAt string
		if err := rows.Scan(&m.ID, &m.RequestID, &m.Role, &m.Content, &metadata, &createdAt); err != nil {
			return nil, err
		}
		if m.Metadata, err = jsonToMap(metadata); err != nil {
			return nil, fmt.Errorf("parsing metadata for message %s: %w", m.ID, err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at for message %s: %w", m.ID, err)
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// --- Knowledge articles ---

const articleColumns = `id, title, slug, content, excerpt, category, tags,
	view_count, helpful_count, not_helpful_count, read_time, embedding, created_at, updated_at`

func (s *SQLiteStore) CreateArticle(a KnowledgeArticle) error {
	_, err := s.db.Exec(`
		INSERT INTO knowledge_articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Slug, a.Content, a.Excerpt, a.Category, sliceToJSON(a.Tags),
		a.ViewCount, a.HelpfulCount, a.NotHelpfulCount, a.ReadTime, encodeVector(a.Embedding),
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	return err
}

func (s *SQLiteStore) GetArticle(id string) (KnowledgeArticle, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM knowledge_articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return KnowledgeArticle{}, ErrNotFound
	}
	return a, err
}

func (s *SQLiteStore) GetArticleBySlug(slug string) (KnowledgeArticle, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM knowledge_articles WHERE slug = ?`, slug)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return KnowledgeArticle{}, ErrNotFound
	}
	return a, err
}

func (s *SQLiteStore) ListArticles() ([]KnowledgeArticle, error) {
	rows, err := s.db.Query(`SELECT ` + articleColumns + ` FROM knowledge_articles ORDER BY view_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var results []KnowledgeArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) UpdateArticle(a KnowledgeArticle) error {
	res, err := s.db.Exec(`
		UPDATE knowledge_articles SET title = ?, slug = ?, content = ?, excerpt = ?, category = ?,
			tags = ?, read_time = ?, updated_at = ?
		WHERE id = ?`,
		a.Title, a.Slug, a.Content, a.Excerpt, a.Category,
		sliceToJSON(a.Tags), a.ReadTime, formatTime(time.Now().UTC()), a.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteArticle(id string) error {
	res, err := s.db.Exec("DELETE FROM knowledge_articles WHERE id = ?", id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) UpdateArticleEmbedding(id string, embedding []float32) error {
	res, err := s.db.Exec(`UPDATE knowledge_articles SET embedding = ?, updated_at = ? WHERE id = ?`,
		encodeVector(embedding), formatTime(time.Now().UTC()), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) UpdateArticleStats(id string, helpful bool) error {
	column := "not_helpful_count"
	if helpful {
		column = "helpful_count"
	}
	res, err := s.db.Exec(`UPDATE knowledge_articles SET `+column+` = `+column+` + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func scanArticle(row rowScanner) (KnowledgeArticle, error) {
	var a KnowledgeArticle
	var tags, createdAt, updatedAt string
	var blob []byte
	if err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Content, &a.Excerpt, &a.Category, &tags,
		&a.ViewCount, &a.HelpfulCount, &a.NotHelpfulCount, &a.ReadTime, &blob, &createdAt, &updatedAt,
	); err != nil {
		return KnowledgeArticle{}, err
	}
	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
		return KnowledgeArticle{}, fmt.Errorf("parsing tags for article %s: %w", a.ID, err)
	}
	var err error
	if a.Embedding, err = decodeVector(blob); err != nil {
		return KnowledgeArticle{}, fmt.Errorf("decoding embedding for article %s: %w", a.ID, err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return KnowledgeArticle{}, fmt.Errorf("parsing created_at for article %s: %w", a.ID, err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return KnowledgeArticle{}, fmt.Errorf("parsing updated_at for article %s: %w", a.ID, err)
	}
	return a, nil
}

// --- Attorneys ---

func (s *SQLiteStore) CreateAttorney(a Attorney) error {
	_, err := s.db.Exec(`
		INSERT INTO attorneys (id, name, email, title, expertise, availability, active_request_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.Title, sliceToJSON(a.Expertise), a.Availability, a.ActiveRequestCount,
	)
	return err
}

func (s *SQLiteStore) GetAttorney(id string) (Attorney, error) {
	row := s.db.QueryRow(`
		SELECT id, name, email, title, expertise, availability, active_request_count
		FROM attorneys WHERE id = ?`, id)
	a, err := scanAttorney(row)
	if err == sql.ErrNoRows {
		return Attorney{}, ErrNotFound
	}
	return a, err
}

func (s *SQLiteStore) ListAttorneys() ([]Attorney, error) {
	return s.queryAttorneys(`
		SELECT id, name, email, title, expertise, availability, active_request_count
		FROM attorneys ORDER BY name ASC`)
}

func (s *SQLiteStore) ListAvailableAttorneys() ([]Attorney, error) {
	return s.queryAttorneys(`
		SELECT id, name, email, title, expertise, availability, active_request_count
		FROM attorneys WHERE availability = 'available'
		ORDER BY active_request_count ASC, name ASC`)
}

func (s *SQLiteStore) queryAttorneys(query string) ([]Attorney, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying attorneys: %w", err)
	}
	defer rows.Close()

	var results []Attorney
	for rows.Next() {
		a, err := scanAttorney(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) UpdateAttorney(a Attorney) error {
	res, err := s.db.Exec(`
		UPDATE attorneys SET name = ?, email = ?, title = ?, expertise = ?, availability = ?,
			active_request_count = ?
		WHERE id = ?`,
		a.Name, a.Email, a.Title, sliceToJSON(a.Expertise), a.Availability, a.ActiveRequestCount, a.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func scanAttorney(row rowScanner) (Attorney, error) {
	var a Attorney
	var expertise string
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Title, &expertise, &a.Availability, &a.ActiveRequestCount); err != nil {
		return Attorney{}, err
	}
	if err := json.Unmarshal([]byte(expertise), &a.Expertise); err != nil {
		return Attorney{}, fmt.Errorf("parsing expertise for attorney %s: %w", a.ID, err)
	}
	return a, nil
}

// --- Jobs ---

func (s *SQLiteStore) EnqueueJob(job Job) error {
	now := formatTime(time.Now().UTC())
	runAfter := now
	if !job.RunAfter.IsZero() {
		runAfter = formatTime(job.RunAfter.UTC())
	}
	maxAttempts := job.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	_, err := s.db.Exec(`
		INSERT INTO jobs (id, type, payload_json, status, attempts, max_attempts, run_after, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', 0, ?, ?, ?, ?)`,
		job.ID, job.Type, job.PayloadJSON, maxAttempts, runAfter, now, now,
	)
	return err
}

func (s *SQLiteStore) ClaimNextJob(types []string) (*Job, error) {
	if len(types) == 0 {
		return nil, nil
	}

	now := formatTime(time.Now().UTC())
	placeholders := strings.Repeat(",?", len(types)-1)
	query := `SELECT id, type, payload_json, status, attempts, max_attempts, run_after, created_at, updated_at, last_error
		FROM jobs
		WHERE status = 'pending' AND run_after <= ? AND type IN (?` + placeholders + `)
		ORDER BY run_after ASC, created_at ASC
		LIMIT 1`

	args := make([]any, 0, len(types)+1)
	args = append(args, now)
	for _, t := range types {
		args = append(args, t)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning claim transaction: %w", err)
	}

	var j Job
	var runAfter, createdAt, updatedAt string
	var lastError sql.NullString
	err = tx.QueryRow(query, args...).Scan(
		&j.ID, &j.Type, &j.PayloadJSON, &j.Status, &j.Attempts, &j.MaxAttempts,
		&runAfter, &createdAt, &updatedAt, &lastError,
	)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return nil, nil
	}
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("selecting next job: %w", err)
	}

	res, err := tx.Exec(`UPDATE jobs SET status = 'running', updated_at = ? WHERE id = ? AND status = 'pending'`, now, j.ID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("updating job status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("checking updated job rows: %w", err)
	}
	if n != 1 {
		tx.Rollback()
		return nil, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	j.Status = "running"
	j.LastError = lastError.String
	if j.RunAfter, err = parseTime(runAfter); err != nil {
		return nil, fmt.Errorf("parsing run_after for job %s: %w", j.ID, err)
	}
	if j.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at for job %s: %w", j.ID, err)
	}
	if j.UpdatedAt, err = parseTime(now); err != nil {
		return nil, fmt.Errorf("parsing updated_at for job %s: %w", j.ID, err)
	}
	return &j, nil
}

func (s *SQLiteStore) CompleteJob(id string) error {
	res, err := s.db.Exec(`UPDATE jobs SET status = 'completed', updated_at = ? WHERE id = ?`,
		formatTime(time.Now().UTC()), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLiteStore) FailJob(id string, errMsg string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning fail transaction: %w", err)
	}
	defer tx.Rollback()

	var attempts, maxAttempts int
	err = tx.QueryRow(`SELECT attempts, max_attempts FROM jobs WHERE id = ?`, id).Scan(&attempts, &maxAttempts)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	attempts++

	if attempts >= maxAttempts {
		_, err = tx.Exec(`UPDATE jobs SET status = 'failed', attempts = ?, last_error = ?, updated_at = ? WHERE id = ?`,
			attempts, errMsg, formatTime(now), id)
	} else {
		backoff := time.Duration(math.Pow(2, float64(attempts))) * time.Second
		_, err = tx.Exec(`UPDATE jobs SET status = 'pending', attempts = ?, last_error = ?, run_after = ?, updated_at = ? WHERE id = ?`,
			attempts, errMsg, formatTime(now.Add(backoff)), formatTime(now), id)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// --- helpers ---

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Timestamps are stored as RFC3339 text. Second precision keeps the
// strings fixed-width so lexicographic ordering matches time ordering.
func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func mapToJSON(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func jsonToMap(s string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func sliceToJSON(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// encodeVector serializes a float32 slice to little-endian bytes.
// A nil vector encodes as nil (stored as SQL NULL).
func encodeVector(v []float32) []byte {
	if v == nil {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector deserializes little-endian bytes into a float32 slice.
// Returns an error if the byte length is not a multiple of 4.
func decodeVector(b []byte) ([]float32, error) {
	if b == nil {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("byte slice length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
