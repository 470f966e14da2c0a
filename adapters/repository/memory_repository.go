package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
)

// MemoryRepository keeps catalog records in process memory. Every
// owner-conditional mutation checks and writes under one lock.
type MemoryRepository struct {
	mu       sync.RWMutex
	courses  map[string]core.Course
	lessons  map[string]core.Lesson
	profiles map[string]core.Profile
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		courses:  make(map[string]core.Course),
		lessons:  make(map[string]core.Lesson),
		profiles: make(map[string]core.Profile),
	}
}

var _ ports.CatalogRepository = (*MemoryRepository)(nil)

func (r *MemoryRepository) CreateCourse(ctx context.Context, course core.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.courses[course.ID] = course
	return nil
}

func (r *MemoryRepository) GetCourse(ctx context.Context, id string) (core.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	course, ok := r.courses[id]
	if !ok {
		return core.Course{}, core.ErrNotFound
	}
	return course, nil
}

func (r *MemoryRepository) ListCourses(ctx context.Context, owner string) ([]core.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	courses := make([]core.Course, 0, len(r.courses))
	for _, c := range r.courses {
		if owner == "" || c.Owner == owner {
			courses = append(courses, c)
		}
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})

	return courses, nil
}

func (r *MemoryRepository) CourseOwner(ctx context.Context, id string) (core.Owner, error) {
	course, err := r.GetCourse(ctx, id)
	if err != nil {
		return core.Owner{}, err
	}
	return course.Ownership(), nil
}

func (r *MemoryRepository) UpdateCourse(ctx context.Context, course core.Course, owner core.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.ownedCourse(course.ID, owner)
	if err != nil {
		return err
	}

	current.Title = course.Title
	current.Description = course.Description
	current.UpdatedAt = course.UpdatedAt
	r.courses[course.ID] = current

	return nil
}

func (r *MemoryRepository) DeleteCourse(ctx context.Context, id string, owner core.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.ownedCourse(id, owner); err != nil {
		return err
	}

	delete(r.courses, id)
	for lessonID, l := range r.lessons {
		if l.CourseID == id {
			delete(r.lessons, lessonID)
		}
	}

	return nil
}

func (r *MemoryRepository) CreateLesson(ctx context.Context, lesson core.Lesson, owner core.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.ownedCourse(lesson.CourseID, owner); err != nil {
		return err
	}

	r.lessons[lesson.ID] = lesson
	return nil
}

func (r *MemoryRepository) GetLesson(ctx context.Context, id string) (core.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lesson, ok := r.lessons[id]
	if !ok {
		return core.Lesson{}, core.ErrNotFound
	}
	return lesson, nil
}

func (r *MemoryRepository) ListLessons(ctx context.Context, courseID string) ([]core.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.courses[courseID]; !ok {
		return nil, core.ErrNotFound
	}

	lessons := make([]core.Lesson, 0)
	for _, l := range r.lessons {
		if l.CourseID == courseID {
			lessons = append(lessons, l)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].Position != lessons[j].Position {
			return lessons[i].Position < lessons[j].Position
		}
		return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
	})

	return lessons, nil
}

func (r *MemoryRepository) LessonOwner(ctx context.Context, id string) (core.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lesson, ok := r.lessons[id]
	if !ok {
		return core.Owner{}, core.ErrNotFound
	}
	course, ok := r.courses[lesson.CourseID]
	if !ok {
		return core.Owner{}, core.ErrNotFound
	}
	return course.Ownership(), nil
}

func (r *MemoryRepository) UpdateLesson(ctx context.Context, lesson core.Lesson, owner core.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.ownedLesson(lesson.ID, owner)
	if err != nil {
		return err
	}

	current.Title = lesson.Title
	current.Content = lesson.Content
	current.Position = lesson.Position
	current.UpdatedAt = lesson.UpdatedAt
	r.lessons[lesson.ID] = current

	return nil
}

func (r *MemoryRepository) DeleteLesson(ctx context.Context, id string, owner core.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.ownedLesson(id, owner); err != nil {
		return err
	}

	delete(r.lessons, id)
	return nil
}

func (r *MemoryRepository) GetProfile(ctx context.Context, address string) (core.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[address]
	if !ok {
		return core.Profile{}, core.ErrNotFound
	}
	return profile, nil
}

func (r *MemoryRepository) SaveProfile(ctx context.Context, profile core.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.profiles[profile.Address]; ok && current.Scheme != profile.Scheme {
		return core.ErrUnauthorized
	}
	r.profiles[profile.Address] = profile
	return nil
}

func (r *MemoryRepository) DeleteProfile(ctx context.Context, owner core.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[owner.Address]
	if !ok {
		return core.ErrNotFound
	}
	if profile.Ownership() != owner {
		return core.ErrUnauthorized
	}
	delete(r.profiles, owner.Address)
	return nil
}

// callers hold r.mu
func (r *MemoryRepository) ownedCourse(id string, owner core.Owner) (core.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return core.Course{}, core.ErrNotFound
	}
	if course.Ownership() != owner {
		return core.Course{}, core.ErrUnauthorized
	}
	return course, nil
}

// callers hold r.mu
func (r *MemoryRepository) ownedLesson(id string, owner core.Owner) (core.Lesson, error) {
	lesson, ok := r.lessons[id]
	if !ok {
		return core.Lesson{}, core.ErrNotFound
	}
	if _, err := r.ownedCourse(lesson.CourseID, owner); err != nil {
		return core.Lesson{}, err
	}
	return lesson, nil
}
