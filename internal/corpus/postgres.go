package corpus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/job-matcher/internal/types"
)

// Store is the PostgreSQL-backed Provider.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Jobs returns active postings, optionally narrowed to one category,
// ordered by creation time so indices are stable across calls.
func (s *Store) Jobs(ctx context.Context, category string) ([]types.JobPosting, error) {
	query := `SELECT id, title, requirement_text, skills_text, location, category
	          FROM job_postings WHERE active`
	args := []any{}
	if category != "" {
		query += ` AND lower(category) = lower($1)`
		args = append(args, category)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var jobs []types.JobPosting
	for rows.Next() {
		var j types.JobPosting
		if err := rows.Scan(&j.ID, &j.Title, &j.RequirementText, &j.SkillsText, &j.Location, &j.Category); err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job postings: %w", err)
	}
	return jobs, nil
}

// UpsertJob creates or updates a posting. Raw HTML in the requirement text
// is stripped before storage; a missing ID gets a fresh one.
func (s *Store) UpsertJob(ctx context.Context, job types.JobPosting) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	text, err := StripHTML(job.RequirementText)
	if err != nil {
		return "", fmt.Errorf("failed to sanitize job text: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO job_postings (id, title, requirement_text, skills_text, location, category, active)
		 VALUES ($1, $2, $3, $4, $5, $6, true)
		 ON CONFLICT (id) DO UPDATE SET
		   title = $2, requirement_text = $3, skills_text = $4,
		   location = $5, category = $6, updated_at = NOW()`,
		job.ID, job.Title, text, job.SkillsText, job.Location, job.Category,
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert job posting: %w", err)
	}
	return job.ID, nil
}

// SavedJobIDs returns the set of job IDs the user has saved.
func (s *Store) SavedJobIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT job_id FROM saved_jobs WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved jobs: %w", err)
	}
	defer rows.Close()

	saved := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan saved job: %w", err)
		}
		saved[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read saved jobs: %w", err)
	}
	return saved, nil
}

// SaveJob records a job in the user's saved list.
func (s *Store) SaveJob(ctx context.Context, userID, jobID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO saved_jobs (user_id, job_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, job_id) DO NOTHING`,
		userID, jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

// UnsaveJob removes a job from the user's saved list.
func (s *Store) UnsaveJob(ctx context.Context, userID, jobID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to unsave job: %w", err)
	}
	return nil
}
