package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
)

// Role discriminates the two principal kinds. Emails are unique within a
// kind, not across kinds.
type Role string

const (
	RoleLearner Role = "learner"
	RoleStaff   Role = "staff"
)

type Learner struct {
	ID           int64      `json:"id"`
	FullName     string     `json:"full_name"`
	Age          int        `json:"age"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	AcademicYear string     `json:"academic_year"`
	CreatedAt    time.Time  `json:"created_at"`

	RefreshToken       *string    `json:"-"`
	RefreshTokenExpiry *time.Time `json:"-"`
}

// Staff are provisioned out-of-band; there is no registration endpoint for
// them.
type Staff struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	RefreshToken       *string    `json:"-"`
	RefreshTokenExpiry *time.Time `json:"-"`
}

type LearnerInfo struct {
	ID           int64  `json:"id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	AcademicYear string `json:"academic_year"`
}

func (l *Learner) ToInfo() *LearnerInfo {
	return &LearnerInfo{
		ID:           l.ID,
		FullName:     l.FullName,
		Email:        l.Email,
		AcademicYear: l.AcademicYear,
	}
}

type RegisterRequest struct {
	FullName     string `json:"full_name"`
	Age          int    `json:"age"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	AcademicYear string `json:"academic_year"`
}

func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = normalizePhone(r.Phone)
	r.Email = NormalizeEmail(r.Email)
	r.AcademicYear = strings.TrimSpace(r.AcademicYear)
}

func (r *RegisterRequest) Validate() error {
	if r.FullName == "" {
		return fmt.Errorf("%w: full name is required", errdefs.ErrValidation)
	}
	if r.Age <= 0 {
		return fmt.Errorf("%w: age must be positive", errdefs.ErrValidation)
	}
	if !isValidEmail(r.Email) {
		return fmt.Errorf("%w: invalid email", errdefs.ErrValidation)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", errdefs.ErrValidation)
	}
	if r.AcademicYear == "" {
		return fmt.Errorf("%w: academic year is required", errdefs.ErrValidation)
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return fmt.Errorf("%w: email and password are required", errdefs.ErrValidation)
	}
	return nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Role         Role   `json:"role"`
	ExpiresIn    int64  `json:"expires_in"`
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	local, dom := parts[0], parts[1]
	return len(local) > 0 && len(dom) > 2 && strings.Contains(dom, ".")
}

func normalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			b.WriteRune(r)
		} else if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
