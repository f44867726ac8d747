package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/crid-api/internal/models"
	appErrors "github.com/noah-isme/crid-api/pkg/errors"
)

// FactKind names the observable facts emitted on successful mutation.
type FactKind string

const (
	FactEnrolled      FactKind = "enrolled"
	FactStatusChanged FactKind = "status_changed"
	FactRemoved       FactKind = "removed"
	FactPeriodChanged FactKind = "period_changed"
)

// Fact is the payload delivered to the event collaborator. Only the fields
// relevant to the kind are populated.
type Fact struct {
	Kind           FactKind  `json:"kind"`
	Student        string    `json:"student,omitempty"`
	CourseCode     string    `json:"course_code,omitempty"`
	CourseName     string    `json:"course_name,omitempty"`
	InstructorName string    `json:"instructor_name,omitempty"`
	OldStatus      string    `json:"old_status,omitempty"`
	NewStatus      string    `json:"new_status,omitempty"`
	Period         string    `json:"period,omitempty"`
	OldPeriod      string    `json:"old_period,omitempty"`
	NewPeriod      string    `json:"new_period,omitempty"`
	Caller         string    `json:"caller,omitempty"`
	At             time.Time `json:"at"`
}

// Recorder receives facts for successful mutations. Implementations must not
// fail the mutation; delivery problems are theirs to handle.
type Recorder interface {
	Record(ctx context.Context, fact Fact)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Fact) {}

// EnrollInput carries the fields of a new registration.
type EnrollInput struct {
	Student        string
	CourseName     string
	CourseCode     string
	InstructorName string
	InitialStatus  string
}

type key struct {
	student string
	period  string
}

// Registry is the access-controlled enrollment store. A single administrator
// identity may mutate it; anyone may read. Mutations target the current
// period only: once the period moves on, the entries recorded under the old
// token become permanently read-only.
//
// All operations are serialized behind an RWMutex, so every call observes a
// state that is the result of some complete prefix of mutations.
type Registry struct {
	mu            sync.RWMutex
	administrator string
	currentPeriod string
	enrollments   map[key][]models.Enrollment
	// positions indexes course code -> slice offset per (student, period) so
	// uniqueness checks and lookups stay O(1) as entry counts grow.
	positions map[key]map[string]int
	recorder  Recorder
	now       func() time.Time
}

// New constructs a registry owned by the given administrator. The initial
// period must be a non-empty token.
func New(administrator, initialPeriod string, recorder Recorder) (*Registry, error) {
	if strings.TrimSpace(initialPeriod) == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidPeriod, "initial period must not be empty")
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Registry{
		administrator: administrator,
		currentPeriod: initialPeriod,
		enrollments:   make(map[key][]models.Enrollment),
		positions:     make(map[key]map[string]int),
		recorder:      recorder,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// Administrator returns the identity permitted to mutate the registry.
func (r *Registry) Administrator() string {
	return r.administrator
}

// CurrentPeriod returns the period mutating operations currently target.
func (r *Registry) CurrentPeriod() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentPeriod
}

// SetCurrentPeriod replaces the period mutations target. Existing enrollment
// data is untouched; entries recorded under the old token become read-only.
func (r *Registry) SetCurrentPeriod(ctx context.Context, caller, newPeriod string) error {
	if err := r.authorize(caller); err != nil {
		return err
	}
	if strings.TrimSpace(newPeriod) == "" {
		return appErrors.Clone(appErrors.ErrInvalidPeriod, "")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.currentPeriod
	r.currentPeriod = newPeriod
	r.recorder.Record(ctx, Fact{
		Kind:      FactPeriodChanged,
		OldPeriod: old,
		NewPeriod: newPeriod,
		Caller:    caller,
		At:        r.now(),
	})
	return nil
}

// Enroll appends a new registration for (student, current period). The course
// code must be unique within that scope.
func (r *Registry) Enroll(ctx context.Context, caller string, input EnrollInput) (models.Enrollment, error) {
	if err := r.authorize(caller); err != nil {
		return models.Enrollment{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{student: input.Student, period: r.currentPeriod}
	if _, exists := r.positions[k][input.CourseCode]; exists {
		return models.Enrollment{}, appErrors.Clone(appErrors.ErrAlreadyEnrolled,
			fmt.Sprintf("student %s already enrolled in %s for period %s", input.Student, input.CourseCode, r.currentPeriod))
	}

	enrollment := models.Enrollment{
		CourseName:     input.CourseName,
		CourseCode:     input.CourseCode,
		InstructorName: input.InstructorName,
		Status:         input.InitialStatus,
		EnrolledAt:     r.now(),
	}
	r.enrollments[k] = append(r.enrollments[k], enrollment)
	if r.positions[k] == nil {
		r.positions[k] = make(map[string]int)
	}
	r.positions[k][input.CourseCode] = len(r.enrollments[k]) - 1

	r.recorder.Record(ctx, Fact{
		Kind:           FactEnrolled,
		Student:        input.Student,
		CourseCode:     input.CourseCode,
		CourseName:     input.CourseName,
		InstructorName: input.InstructorName,
		At:             enrollment.EnrolledAt,
	})
	return enrollment, nil
}

// ChangeStatus overwrites the status of the matching entry for (student,
// current period); every other field is left untouched.
func (r *Registry) ChangeStatus(ctx context.Context, caller, student, courseCode, newStatus string) (models.Enrollment, error) {
	if err := r.authorize(caller); err != nil {
		return models.Enrollment{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{student: student, period: r.currentPeriod}
	idx, exists := r.positions[k][courseCode]
	if !exists {
		return models.Enrollment{}, r.notFound(student, courseCode)
	}

	old := r.enrollments[k][idx].Status
	r.enrollments[k][idx].Status = newStatus

	r.recorder.Record(ctx, Fact{
		Kind:       FactStatusChanged,
		Student:    student,
		CourseCode: courseCode,
		OldStatus:  old,
		NewStatus:  newStatus,
		At:         r.now(),
	})
	return r.enrollments[k][idx], nil
}

// Remove deletes the matching entry for (student, current period) by moving
// the last entry into its slot and shrinking the sequence. Remaining entry
// order is NOT preserved across removals; callers must not rely on it.
func (r *Registry) Remove(ctx context.Context, caller, student, courseCode string) error {
	if err := r.authorize(caller); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{student: student, period: r.currentPeriod}
	idx, exists := r.positions[k][courseCode]
	if !exists {
		return r.notFound(student, courseCode)
	}

	seq := r.enrollments[k]
	last := len(seq) - 1
	if idx != last {
		seq[idx] = seq[last]
		r.positions[k][seq[idx].CourseCode] = idx
	}
	r.enrollments[k] = seq[:last]
	delete(r.positions[k], courseCode)

	r.recorder.Record(ctx, Fact{
		Kind:       FactRemoved,
		Student:    student,
		CourseCode: courseCode,
		Period:     r.currentPeriod,
		Caller:     caller,
		At:         r.now(),
	})
	return nil
}

// GetByPeriod returns a copy of the stored sequence for (student, period).
// Any period is readable regardless of the current one. Order carries no
// meaning beyond "whatever is currently stored".
func (r *Registry) GetByPeriod(student, period string) []models.Enrollment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seq := r.enrollments[key{student: student, period: period}]
	out := make([]models.Enrollment, len(seq))
	copy(out, seq)
	return out
}

func (r *Registry) authorize(caller string) error {
	if caller != r.administrator {
		return appErrors.Clone(appErrors.ErrNotAuthorized,
			fmt.Sprintf("caller %s is not the registry administrator", caller))
	}
	return nil
}

func (r *Registry) notFound(student, courseCode string) error {
	return appErrors.Clone(appErrors.ErrEnrollmentNotFound,
		fmt.Sprintf("no enrollment of student %s in %s for period %s", student, courseCode, r.currentPeriod))
}
