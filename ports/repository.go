package ports

import (
	"context"

	"github.com/layer-3/tutorauth/core"
)

// CatalogRepository stores ownership-bearing catalog records.
//
// Mutations of existing records take the owning wallet (scheme and address)
// and apply only while it still owns the record, in the same statement as
// the write. They return core.ErrNotFound if the record is gone and
// core.ErrUnauthorized if it belongs to someone else. A profile saved over
// one owned under another scheme is refused with core.ErrUnauthorized.
type CatalogRepository interface {
	CreateCourse(ctx context.Context, course core.Course) error
	GetCourse(ctx context.Context, id string) (core.Course, error)
	ListCourses(ctx context.Context, owner string) ([]core.Course, error)
	CourseOwner(ctx context.Context, id string) (core.Owner, error)
	UpdateCourse(ctx context.Context, course core.Course, owner core.Owner) error
	DeleteCourse(ctx context.Context, id string, owner core.Owner) error

	CreateLesson(ctx context.Context, lesson core.Lesson, owner core.Owner) error
	GetLesson(ctx context.Context, id string) (core.Lesson, error)
	ListLessons(ctx context.Context, courseID string) ([]core.Lesson, error)
	LessonOwner(ctx context.Context, id string) (core.Owner, error)
	UpdateLesson(ctx context.Context, lesson core.Lesson, owner core.Owner) error
	DeleteLesson(ctx context.Context, id string, owner core.Owner) error

	GetProfile(ctx context.Context, address string) (core.Profile, error)
	SaveProfile(ctx context.Context, profile core.Profile) error
	DeleteProfile(ctx context.Context, owner core.Owner) error
}
