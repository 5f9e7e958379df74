package core

import (
	"net/mail"
	"strings"
	"time"
)

// Role is the kind of account a user signed up as
type Role string

const (
	RoleCreator         Role = "creator"
	RolePropertyManager Role = "property_manager"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleCreator || r == RolePropertyManager
}

// Specialty is a content service a creator offers
type Specialty string

const (
	SpecialtyPhotography Specialty = "photography"
	SpecialtyVideography Specialty = "videography"
	SpecialtyDrone       Specialty = "drone"
	SpecialtyVirtualTour Specialty = "virtual_tour"
	SpecialtyFloorPlan   Specialty = "floor_plan"
)

func (s Specialty) Valid() bool {
	switch s {
	case SpecialtyPhotography, SpecialtyVideography, SpecialtyDrone, SpecialtyVirtualTour, SpecialtyFloorPlan:
		return true
	}
	return false
}

// ProjectStatus tracks a project through its lifecycle
type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectDraft, ProjectOpen, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// ApplicationStatus tracks a creator's application to a project
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn:
		return true
	}
	return false
}

// BookingStatus tracks a scheduled shoot
type BookingStatus string

const (
	BookingRequested BookingStatus = "requested"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingRequested, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// User is the signed-in account
type User struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name" yaml:"name"`
	Role  Role   `json:"role" yaml:"role"`
}

// Validate checks the user carries an email and a known role.
func (u User) Validate() error {
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return invalidField("email", "a valid email address is required")
	}
	if !u.Role.Valid() {
		return invalidField("role", "role must be creator or property_manager")
	}
	return nil
}

// Creator is a photographer or videographer offering services.
// Rates are in cents.
type Creator struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Email       string      `json:"email" yaml:"email"`
	Specialties []Specialty `json:"specialties" yaml:"specialties"`
	Location    string      `json:"location" yaml:"location"`
	Rating      float64     `json:"rating" yaml:"rating"`
	HourlyRate  int         `json:"hourlyRate" yaml:"hourly_rate"`
	Verified    bool        `json:"verified" yaml:"verified"`
	Bio         string      `json:"bio,omitempty" yaml:"bio"`
	JoinedAt    time.Time   `json:"joinedAt" yaml:"joined_at"`
}

func (c Creator) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalidField("name", "name is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return invalidField("email", "a valid email address is required")
	}
	for _, s := range c.Specialties {
		if !s.Valid() {
			return invalidField("specialties", "unknown specialty "+string(s))
		}
	}
	if c.Rating < 0 || c.Rating > 5 {
		return invalidField("rating", "rating must be between 0 and 5")
	}
	if c.HourlyRate < 0 {
		return invalidField("hourlyRate", "hourly rate cannot be negative")
	}
	return nil
}

// Project is a property manager's request for content. Budget is in cents.
type Project struct {
	ID              string        `json:"id" yaml:"id"`
	Title           string        `json:"title" yaml:"title"`
	Description     string        `json:"description" yaml:"description"`
	PropertyAddress string        `json:"propertyAddress" yaml:"property_address"`
	PropertyType    string        `json:"propertyType" yaml:"property_type"`
	Budget          int           `json:"budget" yaml:"budget"`
	Status          ProjectStatus `json:"status" yaml:"status"`
	Deadline        time.Time     `json:"deadline" yaml:"deadline"`
	ManagerID       string        `json:"managerId" yaml:"manager_id"`
	CreatedAt       time.Time     `json:"createdAt" yaml:"created_at"`
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return invalidField("title", "title is required")
	}
	if !p.Status.Valid() {
		return invalidField("status", "unknown project status "+string(p.Status))
	}
	if p.Budget < 0 {
		return invalidField("budget", "budget cannot be negative")
	}
	return nil
}

// Application is a creator's pitch for a project.
type Application struct {
	ID           string            `json:"id" yaml:"id"`
	ProjectID    string            `json:"projectId" yaml:"project_id"`
	CreatorID    string            `json:"creatorId" yaml:"creator_id"`
	CreatorName  string            `json:"creatorName" yaml:"creator_name"`
	Message      string            `json:"message" yaml:"message"`
	ProposedRate int               `json:"proposedRate" yaml:"proposed_rate"`
	Status       ApplicationStatus `json:"status" yaml:"status"`
	SubmittedAt  time.Time         `json:"submittedAt" yaml:"submitted_at"`
}

func (a Application) Validate() error {
	if strings.TrimSpace(a.ProjectID) == "" {
		return invalidField("projectId", "project is required")
	}
	if strings.TrimSpace(a.CreatorID) == "" {
		return invalidField("creatorId", "creator is required")
	}
	if len(strings.TrimSpace(a.Message)) < 10 {
		return invalidField("message", "message must be at least 10 characters")
	}
	if a.ProposedRate < 0 {
		return invalidField("proposedRate", "proposed rate cannot be negative")
	}
	if !a.Status.Valid() {
		return invalidField("status", "unknown application status "+string(a.Status))
	}
	return nil
}

// WholeMinutesMessage rejects booking durations the wire format cannot carry.
const WholeMinutesMessage = "duration must be a whole number of minutes"

// Booking is a scheduled shoot between a manager and a creator.
type Booking struct {
	ID           string        `json:"id"`
	ProjectID    string        `json:"projectId"`
	CreatorID    string        `json:"creatorId"`
	ManagerID    string        `json:"managerId"`
	ScheduledFor time.Time     `json:"scheduledFor"`
	Duration     time.Duration `json:"duration"`
	Notes        string        `json:"notes,omitempty"`
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func (b Booking) Validate() error {
	if strings.TrimSpace(b.ProjectID) == "" {
		return invalidField("projectId", "project is required")
	}
	if strings.TrimSpace(b.CreatorID) == "" {
		return invalidField("creatorId", "creator is required")
	}
	if b.ScheduledFor.IsZero() {
		return invalidField("scheduledFor", "a date is required")
	}
	if b.Duration <= 0 {
		return invalidField("duration", "duration must be positive")
	}
	if b.Duration%time.Minute != 0 {
		return invalidField("duration", WholeMinutesMessage)
	}
	if !b.Status.Valid() {
		return invalidField("status", "unknown booking status "+string(b.Status))
	}
	return nil
}

func invalidField(field, message string) *Error {
	return Validation(message, map[string]any{"field": field})
}
