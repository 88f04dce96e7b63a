package domain

import (
	"fmt"
	"strings"

	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
)

type Instructor struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Bio      string  `json:"bio"`
	Skills   string  `json:"skills"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

type Course struct {
	ID            int64   `json:"id"`
	NameEn        string  `json:"name_en"`
	NameAr        string  `json:"name_ar"`
	DescriptionEn string  `json:"description_en"`
	DescriptionAr string  `json:"description_ar"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	Level         string  `json:"level"`
	Duration      string  `json:"duration"`
	InstructorID  int64   `json:"instructor_id"`
}

// CourseRead is the catalog read model with the instructor inlined.
type CourseRead struct {
	Course
	Instructor Instructor `json:"instructor"`
}

type CourseInput struct {
	NameEn        string  `json:"name_en"`
	NameAr        string  `json:"name_ar"`
	DescriptionEn string  `json:"description_en"`
	DescriptionAr string  `json:"description_ar"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	Level         string  `json:"level"`
	Duration      string  `json:"duration"`
	InstructorID  int64   `json:"instructor_id"`
}

func (c *CourseInput) Validate() error {
	if strings.TrimSpace(c.NameEn) == "" {
		return fmt.Errorf("%w: course name is required", errdefs.ErrValidation)
	}
	if c.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", errdefs.ErrValidation)
	}
	if c.InstructorID <= 0 {
		return fmt.Errorf("%w: instructor is required", errdefs.ErrValidation)
	}
	return nil
}

type InstructorInput struct {
	Name     string  `json:"name"`
	Bio      string  `json:"bio"`
	Skills   string  `json:"skills"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

func (i *InstructorInput) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: instructor name is required", errdefs.ErrValidation)
	}
	return nil
}
