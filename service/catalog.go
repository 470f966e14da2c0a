package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
	"github.com/rs/zerolog"
)

const (
	resourceCourse  = "course"
	resourceLesson  = "lesson"
	resourceProfile = "profile"

	actionCreated = "created"
	actionUpdated = "updated"
	actionDeleted = "deleted"
)

// CatalogService owns the privileged catalog operations. Each one authorizes
// the presented credentials, checks ownership of the existing record, and
// then performs a mutation that only applies while the owner still matches.
type CatalogService struct {
	guard  *Guard
	repo   ports.CatalogRepository
	logger zerolog.Logger
	opts   options
}

// NewCatalogService creates a catalog service
func NewCatalogService(guard *Guard, repo ports.CatalogRepository, logger zerolog.Logger, opts ...Option) *CatalogService {
	return &CatalogService{
		guard:  guard,
		repo:   repo,
		logger: logger.With().Str("component", "catalog").Logger(),
		opts:   newOptions(opts),
	}
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (core.Course, error) {
	return s.repo.GetCourse(ctx, id)
}

// ListCourses lists every course, or only owner's when owner is set
func (s *CatalogService) ListCourses(ctx context.Context, owner string) ([]core.Course, error) {
	return s.repo.ListCourses(ctx, owner)
}

func (s *CatalogService) ListLessons(ctx context.Context, courseID string) ([]core.Lesson, error) {
	return s.repo.ListLessons(ctx, courseID)
}

func (s *CatalogService) GetProfile(ctx context.Context, address string) (core.Profile, error) {
	return s.repo.GetProfile(ctx, address)
}

// CreateCourse creates a course owned by the authenticated wallet
func (s *CatalogService) CreateCourse(ctx context.Context, creds *core.Credentials, in core.CourseInput) (course core.Course, err error) {
	defer s.record(resourceCourse, actionCreated, &err)

	id, err := s.guard.Authorize(ctx, creds)
	if err != nil {
		return core.Course{}, err
	}
	if err := in.Validate(); err != nil {
		return core.Course{}, err
	}

	now := s.opts.now().UTC()
	course = core.Course{
		ID:          uuid.NewString(),
		Owner:       id.Address,
		OwnerScheme: id.Scheme.Name,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return core.Course{}, err
	}

	s.publish(ctx, resourceCourse, actionCreated, course.ID, course.Ownership())
	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, creds *core.Credentials, courseID string, in core.CourseInput) (course core.Course, err error) {
	defer s.record(resourceCourse, actionUpdated, &err)

	id, err := s.guard.Authorize(ctx, creds)
	if err != nil {
		return core.Course{}, err
	}
	if err := in.Validate(); err != nil {
		return core.Course{}, err
	}

	owner, err := s.authorizeCourse(ctx, id, courseID)
	if err != nil {
		return core.Course{}, err
	}

	update := core.Course{
		ID:          courseID,
		Title:       in.Title,
		Description: in.Description,
		UpdatedAt:   s.opts.now().UTC(),
	}
	if err := s.repo.UpdateCourse(ctx, update, owner); err != nil {
		return core.Course{}, err
	}

	s.publish(ctx, resourceCourse, actionUpdated, courseID, owner)
	return s.repo.GetCourse(ctx, courseID)
}

// DeleteCourse deletes a course and its lessons
func (s *CatalogService) DeleteCourse(ctx context.Context, creds *core.Credentials, courseID string) (err error) {
	defer s.record(resourceCourse, actionDeleted, &err)

	id, err := s.guard.Authorize(ctx, creds)
	if err != nil {
		return err
	}

	owner, err := s.authorizeCourse(ctx, id, courseID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCourse(ctx, courseID, owner); err != nil {
		return err
	}

	s.publish(ctx, resourceCourse, actionDeleted, courseID, owner)
	return nil
}

// CreateLesson adds a lesson to a course the caller owns
func (s *CatalogService) CreateLesson(ctx context.Context, creds *core.Credentials, courseID string, in core.LessonInput) (lesson core.Lesson, err error) {
	defer s.record(resourceLesson, actionCreated, &err)

	id, err := s.guard.Authorize(ctx, creds)
	if err != nil {
		return core.Lesson{}, err
	}
	if err := in.Validate(); err != nil {
		return core.Lesson{}, err
	}

	owner, err := s.authorizeCourse(ctx, id, courseID)
	if err != nil {
		return core.Lesson{}, err
	}

	now := s.opts.now().UTC()
	lesson = core.Lesson{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Title:     in.Title,
		Content:   in.Content,
		Position:  in.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateLesson(ctx, lesson, owner); err != nil {
		return core.Lesson{}, err
	}

	s.publish(ctx, resourceLesson, actionCreated, lesson.ID, owner)
	return lesson, nil
}

func (s *CatalogService) UpdateLesson(ctx context.Context, creds *core.Credentials, lessonID string, in core.LessonInput) (lesson core.Lesson, err error) {
	defer s.record(resourceLesson, actionUpdated, &err)

	id, err := s.guard.Authorize(ctx, creds)
	if err != nil {
		return core.Lesson{}, err
	}
	if err := in.Validate(); err != nil {
		return core.Lesson{}, err
	}

	owner, err := s.authorizeLesson(ctx, id, lessonID)
	if err != nil {
		return core.Lesson{}, err
	}

	update := core.Lesson{
		ID:        lessonID,
		Title:     in.Title,
		Content:   in.Content,
		Position:  in.Position,
		UpdatedAt: s.opts.now().UTC(),
	}
	if err := s.repo.UpdateLesson(ctx, update, owner); err != nil {
		return core.Lesson{}, err
	}

	s.publish(ctx, resourceLesson, actionUpdated, lessonID, owner)
	return s.repo.GetLesson(ctx, lessonID)
}

func (s *CatalogService) DeleteLesson(ctx context.Context, creds *core.Credentials, lessonID string) (err error) {
	defer s.record(resourceLesson, actionDeleted, &err)

	id, err := s.guard.Authorize(ctx, creds)
	if err != nil {
		return err
	}

	owner, err := s.authorizeLesson(ctx, id, lessonID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLesson(ctx, lessonID, owner); err != nil {
		return err
	}

	s.publish(ctx, resourceLesson, actionDeleted, lessonID, owner)
	return nil
}

// SaveProfile creates or replaces the profile of address. An empty address
// targets the caller's own profile.
func (s *CatalogService) SaveProfile(ctx context.Context, creds *core.Credentials, address string, in core.ProfileInput) (profile core.Profile, err error) {
	defer s.record(resourceProfile, actionUpdated, &err)

	id, err := s.guard.Authorize(ctx, creds)
	if err != nil {
		return core.Profile{}, err
	}
	if err := s.authorizeProfile(id, address); err != nil {
		return core.Profile{}, err
	}
	if err := in.Validate(); err != nil {
		return core.Profile{}, err
	}

	profile = core.Profile{
		Address:     id.Address,
		Scheme:      id.Scheme.Name,
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		UpdatedAt:   s.opts.now().UTC(),
	}
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return core.Profile{}, err
	}

	s.publish(ctx, resourceProfile, actionUpdated, profile.Address, profile.Ownership())
	return profile, nil
}

// DeleteProfile removes the profile of address. An empty address targets
// the caller's own profile.
func (s *CatalogService) DeleteProfile(ctx context.Context, creds *core.Credentials, address string) (err error) {
	defer s.record(resourceProfile, actionDeleted, &err)

	id, err := s.guard.Authorize(ctx, creds)
	if err != nil {
		return err
	}
	if err := s.authorizeProfile(id, address); err != nil {
		return err
	}
	if err := s.repo.DeleteProfile(ctx, id.Owner()); err != nil {
		return err
	}

	s.publish(ctx, resourceProfile, actionDeleted, id.Address, id.Owner())
	return nil
}

// authorizeCourse loads the course owner and checks it against id. The
// stored owner is returned for the conditional mutation that follows.
func (s *CatalogService) authorizeCourse(ctx context.Context, id core.Identity, courseID string) (core.Owner, error) {
	owner, err := s.repo.CourseOwner(ctx, courseID)
	if err != nil {
		return core.Owner{}, err
	}
	if err := s.guard.RequireOwner(owner, id); err != nil {
		return core.Owner{}, err
	}
	return owner, nil
}

func (s *CatalogService) authorizeLesson(ctx context.Context, id core.Identity, lessonID string) (core.Owner, error) {
	owner, err := s.repo.LessonOwner(ctx, lessonID)
	if err != nil {
		return core.Owner{}, err
	}
	if err := s.guard.RequireOwner(owner, id); err != nil {
		return core.Owner{}, err
	}
	return owner, nil
}

// Profiles are owned by the address they describe. The repository refuses
// to overwrite a profile held under another scheme.
func (s *CatalogService) authorizeProfile(id core.Identity, address string) error {
	if address == "" {
		return nil
	}
	return s.guard.RequireOwner(core.Owner{Scheme: id.Scheme.Name, Address: address}, id)
}

func (s *CatalogService) record(resource, action string, err *error) {
	s.opts.metrics.RecordCatalogMutation(resource, action, *err)
}

// publish announces a committed mutation. Delivery failures are logged and
// do not undo the mutation.
func (s *CatalogService) publish(ctx context.Context, resource, action, id string, owner core.Owner) {
	s.logger.Info().
		Str("resource", resource).
		Str("action", action).
		Str("id", id).
		Str("owner_scheme", owner.Scheme).
		Str("owner", owner.Address).
		Msg("catalog mutation")

	if s.opts.publisher == nil {
		return
	}
	change := ports.CatalogChange{
		Resource: resource,
		Action:   action,
		ID:       id,
		Owner:    owner.Address,
		Scheme:   owner.Scheme,
	}
	if err := s.opts.publisher.PublishCatalogChange(ctx, change); err != nil {
		s.logger.Warn().Err(err).Str("resource", resource).Msg("failed to publish catalog change")
	}
}
