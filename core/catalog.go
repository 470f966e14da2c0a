package core

import (
	"fmt"
	"strings"
	"time"
)

// Owner identifies the wallet a record belongs to. An address only owns
// records under the scheme it authenticated with.
type Owner struct {
	Scheme  string `json:"scheme" db:"owner_scheme"`
	Address string `json:"address" db:"owner"`
}

// Course is the ownership-bearing part of a course record
type Course struct {
	ID          string    `json:"id" db:"id"`
	Owner       string    `json:"owner" db:"owner"`
	OwnerScheme string    `json:"ownerScheme" db:"owner_scheme"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Ownership returns the owning wallet
func (c Course) Ownership() Owner {
	return Owner{Scheme: c.OwnerScheme, Address: c.Owner}
}

// Lesson belongs to a course and inherits the course owner
type Lesson struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile is keyed by the owning wallet address
type Profile struct {
	Address     string    `json:"address" db:"address"`
	Scheme      string    `json:"scheme" db:"scheme"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Bio         string    `json:"bio" db:"bio"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

func (p Profile) Ownership() Owner {
	return Owner{Scheme: p.Scheme, Address: p.Address}
}

// CourseInput carries the client-editable course fields
type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (in CourseInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return nil
}

// LessonInput carries the client-editable lesson fields
type LessonInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

func (in LessonInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Position < 0 {
		return fmt.Errorf("%w: position must not be negative", ErrInvalidInput)
	}
	return nil
}

// ProfileInput carries the client-editable profile fields
type ProfileInput struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

func (in ProfileInput) Validate() error {
	if len(in.DisplayName) > 64 {
		return fmt.Errorf("%w: display name is too long", ErrInvalidInput)
	}
	return nil
}
