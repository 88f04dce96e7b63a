package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
)

type CourseRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.CourseRead, error)
	List(ctx context.Context) ([]domain.CourseRead, error)
	Create(ctx context.Context, input *domain.CourseInput) (*domain.Course, error)
	Update(ctx context.Context, id int64, input *domain.CourseInput) (*domain.Course, error)
	Delete(ctx context.Context, id int64) error
}

type courseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

const courseCols = `id, name_en, name_ar, description_en, description_ar, price, category, level, duration, instructor_id`

const courseReadQuery = `
	SELECT c.id, c.name_en, c.name_ar, c.description_en, c.description_ar,
		c.price, c.category, c.level, c.duration, c.instructor_id,
		i.id, i.name, i.bio, i.skills, i.photo_url
	FROM courses c
	JOIN instructors i ON i.id = c.instructor_id`

func scanCourseRead(row pgx.Row) (*domain.CourseRead, error) {
	var c domain.CourseRead
	err := row.Scan(
		&c.ID, &c.NameEn, &c.NameAr, &c.DescriptionEn, &c.DescriptionAr,
		&c.Price, &c.Category, &c.Level, &c.Duration, &c.InstructorID,
		&c.Instructor.ID, &c.Instructor.Name, &c.Instructor.Bio, &c.Instructor.Skills, &c.Instructor.PhotoURL,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (*domain.CourseRead, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanCourseRead(r.pool.QueryRow(ctx, courseReadQuery+` WHERE c.id = $1`, id))
}

func (r *courseRepository) List(ctx context.Context) ([]domain.CourseRead, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, courseReadQuery+` ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []domain.CourseRead{}
	for rows.Next() {
		c, err := scanCourseRead(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var c domain.Course
	err := row.Scan(
		&c.ID, &c.NameEn, &c.NameAr, &c.DescriptionEn, &c.DescriptionAr,
		&c.Price, &c.Category, &c.Level, &c.Duration, &c.InstructorID,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepository) Create(ctx context.Context, input *domain.CourseInput) (*domain.Course, error) {
	const q = `
		INSERT INTO courses (name_en, name_ar, description_en, description_ar, price, category, level, duration, instructor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + courseCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCourse(r.pool.QueryRow(ctx, q,
		input.NameEn, input.NameAr, input.DescriptionEn, input.DescriptionAr,
		input.Price, input.Category, input.Level, input.Duration, input.InstructorID,
	))
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("%w: instructor not found", errdefs.ErrNotFound)
	}
	return c, err
}

func (r *courseRepository) Update(ctx context.Context, id int64, input *domain.CourseInput) (*domain.Course, error) {
	const q = `
		UPDATE courses
		SET name_en = $2, name_ar = $3, description_en = $4, description_ar = $5,
			price = $6, category = $7, level = $8, duration = $9, instructor_id = $10
		WHERE id = $1
		RETURNING ` + courseCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCourse(r.pool.QueryRow(ctx, q, id,
		input.NameEn, input.NameAr, input.DescriptionEn, input.DescriptionAr,
		input.Price, input.Category, input.Level, input.Duration, input.InstructorID,
	))
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("%w: instructor not found", errdefs.ErrNotFound)
	}
	if err == nil && c == nil {
		return nil, fmt.Errorf("%w: course not found", errdefs.ErrNotFound)
	}
	return c, err
}

func (r *courseRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: course not found", errdefs.ErrNotFound)
	}
	return nil
}
