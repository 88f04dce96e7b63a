package service

// Hand-rolled in-memory fakes for the repository and collaborator interfaces.
// The booking and payment fakes share one store so a resolution cascade is
// observable from both sides, the way the real transactions behave.

import (
	"context"
	"fmt"
	"time"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
	"github.com/academyhq/academy-bookings/internal/repo/postgres"
)

// --- principals ---

type fakeLearnerRepo struct {
	learners map[string]*domain.Learner // keyed by email
	nextID   int64

	lastPersistedHash *string
	lastRefreshToken  string
}

func newFakeLearnerRepo() *fakeLearnerRepo {
	return &fakeLearnerRepo{learners: make(map[string]*domain.Learner), nextID: 1}
}

func (f *fakeLearnerRepo) add(email, passwordHash string) *domain.Learner {
	l := &domain.Learner{
		ID:           f.nextID,
		FullName:     "Test Learner",
		Age:          20,
		Email:        email,
		PasswordHash: passwordHash,
		AcademicYear: "first",
		CreatedAt:    time.Now(),
	}
	f.nextID++
	f.learners[email] = l
	return l
}

func (f *fakeLearnerRepo) Create(_ context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.Learner, error) {
	if _, exists := f.learners[req.Email]; exists {
		return nil, fmt.Errorf("%w: email already exists", errdefs.ErrConflict)
	}
	l := f.add(req.Email, passwordHash)
	l.FullName = req.FullName
	l.Age = req.Age
	l.Phone = req.Phone
	l.AcademicYear = req.AcademicYear
	return l, nil
}

func (f *fakeLearnerRepo) FindByEmail(_ context.Context, email string) (*domain.Learner, error) {
	return f.learners[email], nil
}

func (f *fakeLearnerRepo) FindByID(_ context.Context, id int64) (*domain.Learner, error) {
	for _, l := range f.learners {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeLearnerRepo) PersistLogin(_ context.Context, id int64, newHash *string, refreshToken string, expiry time.Time) error {
	for _, l := range f.learners {
		if l.ID == id {
			if newHash != nil {
				l.PasswordHash = *newHash
			}
			l.RefreshToken = &refreshToken
			l.RefreshTokenExpiry = &expiry
			f.lastPersistedHash = newHash
			f.lastRefreshToken = refreshToken
			return nil
		}
	}
	return fmt.Errorf("%w: learner not found", errdefs.ErrNotFound)
}

type fakeStaffRepo struct {
	staff  map[string]*domain.Staff
	nextID int64

	lastPersistedHash *string
	ensureCalls       int
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{staff: make(map[string]*domain.Staff), nextID: 100}
}

func (f *fakeStaffRepo) add(email, passwordHash string) *domain.Staff {
	s := &domain.Staff{
		ID:           f.nextID,
		FullName:     "Test Staff",
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.nextID++
	f.staff[email] = s
	return s
}

func (f *fakeStaffRepo) FindByEmail(_ context.Context, email string) (*domain.Staff, error) {
	return f.staff[email], nil
}

func (f *fakeStaffRepo) PersistLogin(_ context.Context, id int64, newHash *string, refreshToken string, expiry time.Time) error {
	for _, s := range f.staff {
		if s.ID == id {
			if newHash != nil {
				s.PasswordHash = *newHash
			}
			s.RefreshToken = &refreshToken
			s.RefreshTokenExpiry = &expiry
			f.lastPersistedHash = newHash
			return nil
		}
	}
	return fmt.Errorf("%w: staff not found", errdefs.ErrNotFound)
}

func (f *fakeStaffRepo) Ensure(_ context.Context, fullName, email, passwordHash string) error {
	f.ensureCalls++
	if _, exists := f.staff[email]; !exists {
		s := f.add(email, passwordHash)
		s.FullName = fullName
	}
	return nil
}

// fakePrincipalRepo rotates against the learner and staff fakes, mimicking
// the union lookup plus compare-and-swap of the real repository.
type fakePrincipalRepo struct {
	learners *fakeLearnerRepo
	staff    *fakeStaffRepo
}

func (f *fakePrincipalRepo) RotateRefreshToken(_ context.Context, oldToken, newToken string, expiry time.Time) (*postgres.RotatedPrincipal, error) {
	unauthorized := fmt.Errorf("%w: invalid or expired refresh token", errdefs.ErrUnauthorized)

	for _, l := range f.learners.learners {
		if l.RefreshToken != nil && *l.RefreshToken == oldToken {
			if l.RefreshTokenExpiry == nil || time.Now().After(*l.RefreshTokenExpiry) {
				return nil, unauthorized
			}
			l.RefreshToken = &newToken
			l.RefreshTokenExpiry = &expiry
			return &postgres.RotatedPrincipal{Role: domain.RoleLearner, ID: l.ID, Email: l.Email}, nil
		}
	}
	for _, s := range f.staff.staff {
		if s.RefreshToken != nil && *s.RefreshToken == oldToken {
			if s.RefreshTokenExpiry == nil || time.Now().After(*s.RefreshTokenExpiry) {
				return nil, unauthorized
			}
			s.RefreshToken = &newToken
			s.RefreshTokenExpiry = &expiry
			return &postgres.RotatedPrincipal{Role: domain.RoleStaff, ID: s.ID, Email: s.Email}, nil
		}
	}
	return nil, unauthorized
}

// --- bookings and payments ---

type memStore struct {
	bookings         map[int64]*domain.Booking
	payments         map[int64]*domain.Payment
	paymentByBooking map[int64]int64
	nextBookingID    int64
	nextPaymentID    int64

	learnerName  string
	learnerEmail string
	courseNameEn string
}

func newMemStore() *memStore {
	return &memStore{
		bookings:         make(map[int64]*domain.Booking),
		payments:         make(map[int64]*domain.Payment),
		paymentByBooking: make(map[int64]int64),
		nextBookingID:    1,
		nextPaymentID:    1,
		learnerName:      "Test Learner",
		learnerEmail:     "learner@example.com",
		courseNameEn:     "Intro to Go",
	}
}

func (s *memStore) addBooking(learnerID, courseID int64, status domain.BookingStatus, allowedUntil time.Time) *domain.Booking {
	b := &domain.Booking{
		ID:                       s.nextBookingID,
		LearnerID:                learnerID,
		CourseID:                 courseID,
		Status:                   status,
		CreatedAt:                time.Now(),
		CancellationAllowedUntil: allowedUntil,
	}
	s.nextBookingID++
	s.bookings[b.ID] = b
	return b
}

func (s *memStore) addPayment(bookingID int64, status domain.PaymentStatus) *domain.Payment {
	p := &domain.Payment{
		ID:        s.nextPaymentID,
		BookingID: bookingID,
		Method:    domain.MethodBankTransfer,
		Status:    status,
		CreatedAt: time.Now(),
	}
	s.nextPaymentID++
	s.payments[p.ID] = p
	s.paymentByBooking[bookingID] = p.ID
	return p
}

func (s *memStore) resolved(b *domain.Booking) *domain.ResolvedBooking {
	return &domain.ResolvedBooking{
		Booking:      *b,
		LearnerName:  s.learnerName,
		LearnerEmail: s.learnerEmail,
		CourseNameEn: s.courseNameEn,
	}
}

type fakeBookingRepo struct {
	store *memStore
}

func (f *fakeBookingRepo) Create(_ context.Context, learnerID, courseID int64, allowedUntil time.Time) (*domain.Booking, error) {
	return f.store.addBooking(learnerID, courseID, domain.BookingPendingApproval, allowedUntil), nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	return f.store.bookings[id], nil
}

func (f *fakeBookingRepo) ListByLearner(_ context.Context, learnerID int64) ([]domain.BookingDetail, error) {
	details := []domain.BookingDetail{}
	for _, b := range f.store.bookings {
		if b.LearnerID == learnerID {
			details = append(details, domain.BookingDetail{Booking: *b})
		}
	}
	return details, nil
}

func (f *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]domain.BookingDetail, error) {
	details := []domain.BookingDetail{}
	for _, b := range f.store.bookings {
		details = append(details, domain.BookingDetail{Booking: *b})
	}
	return details, nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id, learnerID int64, now time.Time) (*domain.Booking, error) {
	b, ok := f.store.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking not found", errdefs.ErrNotFound)
	}
	if err := b.ApplyCancel(learnerID, now); err != nil {
		return nil, err
	}
	return b, nil
}

func (f *fakeBookingRepo) Resolve(_ context.Context, id int64, outcome domain.Outcome, strict bool) (*domain.ResolvedBooking, error) {
	b, ok := f.store.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking not found", errdefs.ErrNotFound)
	}
	if err := domain.CheckResolve(b.Status, outcome, strict); err != nil {
		return nil, err
	}

	b.Status = outcome.BookingStatus()
	if pid, ok := f.store.paymentByBooking[id]; ok {
		f.store.payments[pid].Status = outcome.PaymentStatus()
	}
	return f.store.resolved(b), nil
}

type fakePaymentRepo struct {
	store *memStore
}

func (f *fakePaymentRepo) Create(_ context.Context, bookingID int64, method domain.PaymentMethod, referenceNumber, evidenceURL *string) (*domain.Payment, error) {
	if _, exists := f.store.paymentByBooking[bookingID]; exists {
		return nil, fmt.Errorf("%w: payment already submitted", errdefs.ErrConflict)
	}
	p := f.store.addPayment(bookingID, domain.PaymentPending)
	p.Method = method
	p.ReferenceNumber = referenceNumber
	p.EvidenceURL = evidenceURL
	return p, nil
}

func (f *fakePaymentRepo) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	return f.store.payments[id], nil
}

func (f *fakePaymentRepo) Resolve(_ context.Context, id int64, outcome domain.Outcome, strict bool) (*domain.Payment, *domain.ResolvedBooking, error) {
	p, ok := f.store.payments[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: payment not found", errdefs.ErrNotFound)
	}
	b := f.store.bookings[p.BookingID]
	if err := domain.CheckResolve(b.Status, outcome, strict); err != nil {
		return nil, nil, err
	}

	p.Status = outcome.PaymentStatus()
	b.Status = outcome.BookingStatus()
	return p, f.store.resolved(b), nil
}

// --- catalog ---

type fakeCourseRepo struct {
	courses map[int64]*domain.CourseRead
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[int64]*domain.CourseRead)}
}

func (f *fakeCourseRepo) add(id int64, nameEn string) *domain.CourseRead {
	c := &domain.CourseRead{Course: domain.Course{ID: id, NameEn: nameEn, InstructorID: 1}}
	f.courses[id] = c
	return c
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id int64) (*domain.CourseRead, error) {
	return f.courses[id], nil
}

func (f *fakeCourseRepo) List(_ context.Context) ([]domain.CourseRead, error) {
	out := []domain.CourseRead{}
	for _, c := range f.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCourseRepo) Create(_ context.Context, input *domain.CourseInput) (*domain.Course, error) {
	id := int64(len(f.courses) + 1)
	c := f.add(id, input.NameEn)
	return &c.Course, nil
}

func (f *fakeCourseRepo) Update(_ context.Context, id int64, input *domain.CourseInput) (*domain.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, fmt.Errorf("%w: course not found", errdefs.ErrNotFound)
	}
	c.NameEn = input.NameEn
	return &c.Course, nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return fmt.Errorf("%w: course not found", errdefs.ErrNotFound)
	}
	delete(f.courses, id)
	return nil
}

// --- collaborators ---

type publishedEvent struct {
	subject string
	data    any
}

type fakeBus struct {
	published []publishedEvent
	err       error
}

func (f *fakeBus) Publish(_ context.Context, subject string, data interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedEvent{subject: subject, data: data})
	return nil
}

func (f *fakeBus) Close() error { return nil }

func (f *fakeBus) subjects() []string {
	out := make([]string, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.subject)
	}
	return out
}

type fakeBlobStore struct {
	url  string
	err  error
	data []byte
	name string
}

func (f *fakeBlobStore) Store(_ context.Context, data []byte, suggestedName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.data = data
	f.name = suggestedName
	return f.url, nil
}
