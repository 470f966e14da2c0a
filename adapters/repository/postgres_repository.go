package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"

	// PostgreSQL driver
	_ "github.com/lib/pq"
)

// PostgresRepository stores catalog records in PostgreSQL. It expects the
// tables below to exist; their lifecycle is owned elsewhere.
//
//	courses  (id text pk, owner text, owner_scheme text, title text, description text, created_at timestamptz, updated_at timestamptz)
//	lessons  (id text pk, course_id text references courses, title text, content text, position int, created_at timestamptz, updated_at timestamptz)
//	profiles (address text pk, scheme text, display_name text, bio text, updated_at timestamptz)
//
// Owner-conditional mutations carry the owner predicate (scheme and
// address) in the statement itself, so no other writer can slip between
// check and write.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a repository over an open connection
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres connects using the lib/pq driver
func OpenPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

var _ ports.CatalogRepository = (*PostgresRepository)(nil)

func (r *PostgresRepository) CreateCourse(ctx context.Context, course core.Course) error {
	query := `
		INSERT INTO courses (id, owner, owner_scheme, title, description, created_at, updated_at)
		VALUES (:id, :owner, :owner_scheme, :title, :description, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetCourse(ctx context.Context, id string) (core.Course, error) {
	query := `
		SELECT id, owner, owner_scheme, title, description, created_at, updated_at
		FROM courses
		WHERE id = $1
	`
	var course core.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return core.Course{}, notFound(err, "course")
	}
	return course, nil
}

func (r *PostgresRepository) ListCourses(ctx context.Context, owner string) ([]core.Course, error) {
	query := `
		SELECT id, owner, owner_scheme, title, description, created_at, updated_at
		FROM courses
		WHERE $1 = '' OR owner = $1
		ORDER BY created_at DESC
	`
	courses := []core.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, owner); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (r *PostgresRepository) CourseOwner(ctx context.Context, id string) (core.Owner, error) {
	var owner core.Owner
	if err := r.db.GetContext(ctx, &owner, `SELECT owner_scheme, owner FROM courses WHERE id = $1`, id); err != nil {
		return core.Owner{}, notFound(err, "course owner")
	}
	return owner, nil
}

func (r *PostgresRepository) UpdateCourse(ctx context.Context, course core.Course, owner core.Owner) error {
	query := `
		UPDATE courses
		SET title = $4, description = $5, updated_at = $6
		WHERE id = $1 AND owner_scheme = $2 AND owner = $3
	`
	res, err := r.db.ExecContext(ctx, query,
		course.ID, owner.Scheme, owner.Address, course.Title, course.Description, course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return r.checkCourseWrite(ctx, res, course.ID)
}

func (r *PostgresRepository) DeleteCourse(ctx context.Context, id string, owner core.Owner) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the course row so the owner cannot change under us
	var current core.Owner
	err = tx.GetContext(ctx, &current, `SELECT owner_scheme, owner FROM courses WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return notFound(err, "course owner")
	}
	if current != owner {
		return core.ErrUnauthorized
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE course_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete lessons: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateLesson(ctx context.Context, lesson core.Lesson, owner core.Owner) error {
	query := `
		INSERT INTO lessons (id, course_id, title, content, position, created_at, updated_at)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::integer, $6::timestamptz, $7::timestamptz
		WHERE EXISTS (
			SELECT 1 FROM courses WHERE id = $2::text AND owner_scheme = $8::text AND owner = $9::text
		)
	`
	res, err := r.db.ExecContext(ctx, query,
		lesson.ID, lesson.CourseID, lesson.Title, lesson.Content, lesson.Position,
		lesson.CreatedAt, lesson.UpdatedAt, owner.Scheme, owner.Address,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lesson: %w", err)
	}
	return r.checkCourseWrite(ctx, res, lesson.CourseID)
}

func (r *PostgresRepository) GetLesson(ctx context.Context, id string) (core.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, position, created_at, updated_at
		FROM lessons
		WHERE id = $1
	`
	var lesson core.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return core.Lesson{}, notFound(err, "lesson")
	}
	return lesson, nil
}

func (r *PostgresRepository) ListLessons(ctx context.Context, courseID string) ([]core.Lesson, error) {
	if _, err := r.CourseOwner(ctx, courseID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, course_id, title, content, position, created_at, updated_at
		FROM lessons
		WHERE course_id = $1
		ORDER BY position, created_at
	`
	lessons := []core.Lesson{}
	if err := r.db.SelectContext(ctx, &lessons, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (r *PostgresRepository) LessonOwner(ctx context.Context, id string) (core.Owner, error) {
	query := `
		SELECT c.owner_scheme, c.owner
		FROM lessons l
		JOIN courses c ON c.id = l.course_id
		WHERE l.id = $1
	`
	var owner core.Owner
	if err := r.db.GetContext(ctx, &owner, query, id); err != nil {
		return core.Owner{}, notFound(err, "lesson owner")
	}
	return owner, nil
}

func (r *PostgresRepository) UpdateLesson(ctx context.Context, lesson core.Lesson, owner core.Owner) error {
	query := `
		UPDATE lessons AS l
		SET title = $4, content = $5, position = $6, updated_at = $7
		FROM courses AS c
		WHERE l.id = $1 AND c.id = l.course_id AND c.owner_scheme = $2 AND c.owner = $3
	`
	res, err := r.db.ExecContext(ctx, query,
		lesson.ID, owner.Scheme, owner.Address, lesson.Title, lesson.Content, lesson.Position, lesson.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	return r.checkLessonWrite(ctx, res, lesson.ID)
}

func (r *PostgresRepository) DeleteLesson(ctx context.Context, id string, owner core.Owner) error {
	query := `
		DELETE FROM lessons AS l
		USING courses AS c
		WHERE l.id = $1 AND c.id = l.course_id AND c.owner_scheme = $2 AND c.owner = $3
	`
	res, err := r.db.ExecContext(ctx, query, id, owner.Scheme, owner.Address)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return r.checkLessonWrite(ctx, res, id)
}

func (r *PostgresRepository) GetProfile(ctx context.Context, address string) (core.Profile, error) {
	query := `
		SELECT address, scheme, display_name, bio, updated_at
		FROM profiles
		WHERE address = $1
	`
	var profile core.Profile
	if err := r.db.GetContext(ctx, &profile, query, address); err != nil {
		return core.Profile{}, notFound(err, "profile")
	}
	return profile, nil
}

func (r *PostgresRepository) SaveProfile(ctx context.Context, profile core.Profile) error {
	query := `
		INSERT INTO profiles (address, scheme, display_name, bio, updated_at)
		VALUES (:address, :scheme, :display_name, :bio, :updated_at)
		ON CONFLICT (address) DO UPDATE
		SET display_name = EXCLUDED.display_name, bio = EXCLUDED.bio, updated_at = EXCLUDED.updated_at
		WHERE profiles.scheme = EXCLUDED.scheme
	`
	res, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	if n == 0 {
		// the address is held under another scheme
		return core.ErrUnauthorized
	}
	return nil
}

func (r *PostgresRepository) DeleteProfile(ctx context.Context, owner core.Owner) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM profiles WHERE address = $1 AND scheme = $2`, owner.Address, owner.Scheme)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetProfile(ctx, owner.Address); err != nil {
		return err
	}
	return core.ErrUnauthorized
}

// checkCourseWrite explains a conditional write that touched no rows: the
// course is either gone or owned by someone else
func (r *PostgresRepository) checkCourseWrite(ctx context.Context, res sql.Result, courseID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.CourseOwner(ctx, courseID); err != nil {
		return err
	}
	return core.ErrUnauthorized
}

func (r *PostgresRepository) checkLessonWrite(ctx context.Context, res sql.Result, lessonID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.LessonOwner(ctx, lessonID); err != nil {
		return err
	}
	return core.ErrUnauthorized
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
