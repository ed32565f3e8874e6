package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Profile represents a stored analysis tuning profile: the blink and
// tracking thresholds applied to new sessions. At most one profile is
// active at a time.
type Profile struct {
	ID                string
	Name              string
	EARCloseThreshold float64
	EAROpenThreshold  float64
	MinClosedFrames   int
	MatchDistanceFrac float64
	EvictAfterMissed  int
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Create inserts a new profile into the database.
func (r *ProfileRepository) Create(p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO profiles (id, name, ear_close_threshold, ear_open_threshold,
			min_closed_frames, match_distance_frac, evict_after_missed, active,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.EARCloseThreshold, p.EAROpenThreshold,
		p.MinClosedFrames, p.MatchDistanceFrac, p.EvictAfterMissed, p.Active,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	p := &Profile{}

	err := r.db.QueryRow(
		`SELECT id, name, ear_close_threshold, ear_open_threshold,
			min_closed_frames, match_distance_frac, evict_after_missed, active,
			created_at, updated_at
		 FROM profiles WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Name, &p.EARCloseThreshold, &p.EAROpenThreshold,
		&p.MinClosedFrames, &p.MatchDistanceFrac, &p.EvictAfterMissed, &p.Active,
		&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// List retrieves all profiles from the database.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(
		`SELECT id, name, ear_close_threshold, ear_open_threshold,
			min_closed_frames, match_distance_frac, evict_after_missed, active,
			created_at, updated_at
		 FROM profiles ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}

		err := rows.Scan(&p.ID, &p.Name, &p.EARCloseThreshold, &p.EAROpenThreshold,
			&p.MinClosedFrames, &p.MatchDistanceFrac, &p.EvictAfterMissed, &p.Active,
			&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}

		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Update updates an existing profile in the database.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, ear_close_threshold = ?, ear_open_threshold = ?,
			min_closed_frames = ?, match_distance_frac = ?, evict_after_missed = ?,
			active = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.EARCloseThreshold, p.EAROpenThreshold,
		p.MinClosedFrames, p.MatchDistanceFrac, p.EvictAfterMissed,
		p.Active, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a profile from the database by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Active retrieves the currently active profile, or ErrNotFound when no
// profile is marked active.
func (r *ProfileRepository) Active() (*Profile, error) {
	p := &Profile{}

	err := r.db.QueryRow(
		`SELECT id, name, ear_close_threshold, ear_open_threshold,
			min_closed_frames, match_distance_frac, evict_after_missed, active,
			created_at, updated_at
		 FROM profiles WHERE active = 1 ORDER BY updated_at DESC LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.EARCloseThreshold, &p.EAROpenThreshold,
		&p.MinClosedFrames, &p.MatchDistanceFrac, &p.EvictAfterMissed, &p.Active,
		&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// SetActive marks one profile active and clears the flag on all others.
func (r *ProfileRepository) SetActive(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE profiles SET active = 1, updated_at = ? WHERE id = ?`,
		time.Now(), id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`UPDATE profiles SET active = 0 WHERE id != ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}
