package service

import (
	"context"
	"fmt"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
	"github.com/academyhq/academy-bookings/internal/repo/postgres"
)

type CatalogService interface {
	ListCourses(ctx context.Context) ([]domain.CourseRead, error)
	GetCourse(ctx context.Context, id int64) (*domain.CourseRead, error)
	CreateCourse(ctx context.Context, input *domain.CourseInput) (*domain.Course, error)
	UpdateCourse(ctx context.Context, id int64, input *domain.CourseInput) (*domain.Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	ListInstructors(ctx context.Context) ([]domain.Instructor, error)
	CreateInstructor(ctx context.Context, input *domain.InstructorInput) (*domain.Instructor, error)
	UpdateInstructor(ctx context.Context, id int64, input *domain.InstructorInput) (*domain.Instructor, error)
	DeleteInstructor(ctx context.Context, id int64) error
}

type catalogService struct {
	courseRepo     postgres.CourseRepository
	instructorRepo postgres.InstructorRepository
}

func NewCatalogService(courseRepo postgres.CourseRepository, instructorRepo postgres.InstructorRepository) CatalogService {
	return &catalogService{courseRepo: courseRepo, instructorRepo: instructorRepo}
}

func (s *catalogService) ListCourses(ctx context.Context) ([]domain.CourseRead, error) {
	return s.courseRepo.List(ctx)
}

func (s *catalogService) GetCourse(ctx context.Context, id int64) (*domain.CourseRead, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("%w: course not found", errdefs.ErrNotFound)
	}
	return course, nil
}

func (s *catalogService) CreateCourse(ctx context.Context, input *domain.CourseInput) (*domain.Course, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.courseRepo.Create(ctx, input)
}

func (s *catalogService) UpdateCourse(ctx context.Context, id int64, input *domain.CourseInput) (*domain.Course, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.courseRepo.Update(ctx, id, input)
}

func (s *catalogService) DeleteCourse(ctx context.Context, id int64) error {
	return s.courseRepo.Delete(ctx, id)
}

func (s *catalogService) ListInstructors(ctx context.Context) ([]domain.Instructor, error) {
	return s.instructorRepo.List(ctx)
}

func (s *catalogService) CreateInstructor(ctx context.Context, input *domain.InstructorInput) (*domain.Instructor, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.instructorRepo.Create(ctx, input)
}

func (s *catalogService) UpdateInstructor(ctx context.Context, id int64, input *domain.InstructorInput) (*domain.Instructor, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.instructorRepo.Update(ctx, id, input)
}

func (s *catalogService) DeleteInstructor(ctx context.Context, id int64) error {
	return s.instructorRepo.Delete(ctx, id)
}
