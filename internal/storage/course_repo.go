package storage

import (
	"context"
	"fmt"

	"eduplatform/internal/models"
)

type CourseRepo struct {
	db *DB
}

func NewCourseRepo(db *DB) *CourseRepo {
	return &CourseRepo{db: db}
}

func (r *CourseRepo) CreateCourse(ctx context.Context, c models.Course) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO courses (course_id, title, description, content, difficulty, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`,
		c.CourseID, c.Title, c.Description, c.Content, string(c.Difficulty), c.Status,
	)
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

const courseColumns = `
	course_id, title, COALESCE(description, ''), content, difficulty, status,
	indexed, COALESCE(material_file, ''), COALESCE(material_sha256, ''),
	created_at, updated_at, published_at, indexed_at`

func (r *CourseRepo) GetCourse(ctx context.Context, courseID string) (models.Course, error) {
	var c models.Course
	var difficulty string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT`+courseColumns+` FROM courses WHERE course_id = $1`, courseID,
	).Scan(
		&c.CourseID, &c.Title, &c.Description, &c.Content, &difficulty, &c.Status,
		&c.Indexed, &c.MaterialFile, &c.MaterialSHA256,
		&c.CreatedAt, &c.UpdatedAt, &c.PublishedAt, &c.IndexedAt,
	)
	if err != nil {
		return models.Course{}, fmt.Errorf("get course %s: %w", courseID, err)
	}
	c.Difficulty = models.ParseDifficulty(difficulty)
	return c, nil
}

func (r *CourseRepo) ListCourses(ctx context.Context) ([]models.Course, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT`+courseColumns+` FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var c models.Course
		var difficulty string
		if err := rows.Scan(
			&c.CourseID, &c.Title, &c.Description, &c.Content, &difficulty, &c.Status,
			&c.Indexed, &c.MaterialFile, &c.MaterialSHA256,
			&c.CreatedAt, &c.UpdatedAt, &c.PublishedAt, &c.IndexedAt,
		); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		c.Difficulty = models.ParseDifficulty(difficulty)
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return courses, nil
}

// UpdateCourse persists the editable fields. Callers decide whether the
// indexed flag survives the update; a content change must clear it.
func (r *CourseRepo) UpdateCourse(ctx context.Context, c models.Course) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE courses
		SET title = $2, description = NULLIF($3, ''), content = $4,
		    difficulty = $5, indexed = $6,
		    indexed_at = CASE WHEN $6 THEN indexed_at ELSE NULL END,
		    updated_at = now()
		WHERE course_id = $1`,
		c.CourseID, c.Title, c.Description, c.Content, string(c.Difficulty), c.Indexed,
	)
	if err != nil {
		return fmt.Errorf("update course %s: %w", c.CourseID, err)
	}
	return nil
}

// SetMaterial records an uploaded material file and its extracted text as the
// new course content. The course must be re-indexed afterwards.
func (r *CourseRepo) SetMaterial(ctx context.Context, courseID, fileName, sha256Hex, content string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE courses
		SET content = $2, material_file = NULLIF($3, ''), material_sha256 = NULLIF($4, ''),
		    indexed = false, indexed_at = NULL, updated_at = now()
		WHERE course_id = $1`,
		courseID, content, fileName, sha256Hex,
	)
	if err != nil {
		return fmt.Errorf("set course material %s: %w", courseID, err)
	}
	return nil
}

func (r *CourseRepo) MarkPublished(ctx context.Context, courseID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE courses
		SET status = $2, published_at = now(), updated_at = now()
		WHERE course_id = $1`,
		courseID, models.CourseStatusPublished,
	)
	if err != nil {
		return fmt.Errorf("mark course published %s: %w", courseID, err)
	}
	return nil
}

func (r *CourseRepo) MarkIndexed(ctx context.Context, courseID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE courses
		SET indexed = true, indexed_at = now(), updated_at = now()
		WHERE course_id = $1`,
		courseID,
	)
	if err != nil {
		return fmt.Errorf("mark course indexed %s: %w", courseID, err)
	}
	return nil
}

// DeleteCourse removes the course and, through cascades, its segments,
// quizzes and attempts. Reports whether a row was actually deleted.
func (r *CourseRepo) DeleteCourse(ctx context.Context, courseID string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM courses WHERE course_id = $1`, courseID)
	if err != nil {
		return false, fmt.Errorf("delete course %s: %w", courseID, err)
	}
	return tag.RowsAffected() > 0, nil
}
