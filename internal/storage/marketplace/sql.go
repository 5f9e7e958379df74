package marketplace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/fixtures"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace/migrations"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLConfig holds SQL store connection settings.
type SQLConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// SQLStore implements Store on SQLite or PostgreSQL.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQL connects, applies migrations and seeds an empty database with seed
// when it is non-nil.
func OpenSQL(ctx context.Context, cfg SQLConfig, seed *fixtures.Set) (*SQLStore, error) {
	driverName, dialect, err := resolveDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("storage dsn is required for %s", cfg.Driver))
	}

	db, err := sqlx.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", cfg.Driver, err)
	}

	switch {
	case driverName == DriverSQLite:
		// single writer; avoids SQLITE_BUSY under concurrent requests
		db.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	default:
		db.SetMaxOpenConns(10)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", cfg.Driver, err)
	}

	if err := migrate(ctx, db.DB, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLStore{db: db}
	if seed != nil {
		if err := s.seedIfEmpty(ctx, *seed); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed fixtures: %w", err)
		}
	}
	return s, nil
}

func resolveDriver(name string) (driverName, dialect string, err error) {
	switch name {
	case DriverSQLite:
		return "sqlite", "sqlite3", nil
	case DriverPostgres:
		return "pgx", "postgres", nil
	default:
		return "", "", core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unsupported storage driver %q", name))
	}
}

func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type creatorRow struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Email       string  `db:"email"`
	Specialties string  `db:"specialties"`
	Location    string  `db:"location"`
	Rating      float64 `db:"rating"`
	HourlyRate  int64   `db:"hourly_rate"`
	Verified    bool    `db:"verified"`
	Bio         string  `db:"bio"`
	JoinedAt    int64   `db:"joined_at"`
}

func (r creatorRow) toCore() core.Creator {
	c := core.Creator{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Specialties: []core.Specialty{},
		Location:    r.Location,
		Rating:      r.Rating,
		HourlyRate:  int(r.HourlyRate),
		Verified:    r.Verified,
		Bio:         r.Bio,
		JoinedAt:    fromMillis(r.JoinedAt),
	}
	for _, s := range strings.Split(r.Specialties, ",") {
		if s != "" {
			c.Specialties = append(c.Specialties, core.Specialty(s))
		}
	}
	return c
}

func creatorToRow(c core.Creator) creatorRow {
	specialties := make([]string, len(c.Specialties))
	for i, s := range c.Specialties {
		specialties[i] = string(s)
	}
	return creatorRow{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Specialties: strings.Join(specialties, ","),
		Location:    c.Location,
		Rating:      c.Rating,
		HourlyRate:  int64(c.HourlyRate),
		Verified:    c.Verified,
		Bio:         c.Bio,
		JoinedAt:    toMillis(c.JoinedAt),
	}
}

type projectRow struct {
	ID              string `db:"id"`
	Title           string `db:"title"`
	Description     string `db:"description"`
	PropertyAddress string `db:"property_address"`
	PropertyType    string `db:"property_type"`
	Budget          int64  `db:"budget"`
	Status          string `db:"status"`
	Deadline        int64  `db:"deadline"`
	ManagerID       string `db:"manager_id"`
	CreatedAt       int64  `db:"created_at"`
}

func (r projectRow) toCore() core.Project {
	return core.Project{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		PropertyAddress: r.PropertyAddress,
		PropertyType:    r.PropertyType,
		Budget:          int(r.Budget),
		Status:          core.ProjectStatus(r.Status),
		Deadline:        fromMillis(r.Deadline),
		ManagerID:       r.ManagerID,
		CreatedAt:       fromMillis(r.CreatedAt),
	}
}

func projectToRow(p core.Project) projectRow {
	return projectRow{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		PropertyAddress: p.PropertyAddress,
		PropertyType:    p.PropertyType,
		Budget:          int64(p.Budget),
		Status:          string(p.Status),
		Deadline:        toMillis(p.Deadline),
		ManagerID:       p.ManagerID,
		CreatedAt:       toMillis(p.CreatedAt),
	}
}

type applicationRow struct {
	ID           string `db:"id"`
	ProjectID    string `db:"project_id"`
	CreatorID    string `db:"creator_id"`
	CreatorName  string `db:"creator_name"`
	Message      string `db:"message"`
	ProposedRate int64  `db:"proposed_rate"`
	Status       string `db:"status"`
	SubmittedAt  int64  `db:"submitted_at"`
}

func (r applicationRow) toCore() core.Application {
	return core.Application{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		CreatorID:    r.CreatorID,
		CreatorName:  r.CreatorName,
		Message:      r.Message,
		ProposedRate: int(r.ProposedRate),
		Status:       core.ApplicationStatus(r.Status),
		SubmittedAt:  fromMillis(r.SubmittedAt),
	}
}

func applicationToRow(a core.Application) applicationRow {
	return applicationRow{
		ID:           a.ID,
		ProjectID:    a.ProjectID,
		CreatorID:    a.CreatorID,
		CreatorName:  a.CreatorName,
		Message:      a.Message,
		ProposedRate: int64(a.ProposedRate),
		Status:       string(a.Status),
		SubmittedAt:  toMillis(a.SubmittedAt),
	}
}

type bookingRow struct {
	ID           string `db:"id"`
	ProjectID    string `db:"project_id"`
	CreatorID    string `db:"creator_id"`
	ManagerID    string `db:"manager_id"`
	ScheduledFor int64  `db:"scheduled_for"`
	DurationMS   int64  `db:"duration_ms"`
	Notes        string `db:"notes"`
	Status       string `db:"status"`
	CreatedAt    int64  `db:"created_at"`
}

func (r bookingRow) toCore() core.Booking {
	return core.Booking{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		CreatorID:    r.CreatorID,
		ManagerID:    r.ManagerID,
		ScheduledFor: fromMillis(r.ScheduledFor),
		Duration:     time.Duration(r.DurationMS) * time.Millisecond,
		Notes:        r.Notes,
		Status:       core.BookingStatus(r.Status),
		CreatedAt:    fromMillis(r.CreatedAt),
	}
}

const (
	insertCreatorSQL = `INSERT INTO creators (id, name, email, specialties, location, rating, hourly_rate, verified, bio, joined_at)
		VALUES (:id, :name, :email, :specialties, :location, :rating, :hourly_rate, :verified, :bio, :joined_at)`
	insertProjectSQL = `INSERT INTO projects (id, title, description, property_address, property_type, budget, status, deadline, manager_id, created_at)
		VALUES (:id, :title, :description, :property_address, :property_type, :budget, :status, :deadline, :manager_id, :created_at)`
	insertApplicationSQL = `INSERT INTO applications (id, project_id, creator_id, creator_name, message, proposed_rate, status, submitted_at)
		VALUES (:id, :project_id, :creator_id, :creator_name, :message, :proposed_rate, :status, :submitted_at)`
	insertBookingSQL = `INSERT INTO bookings (id, project_id, creator_id, manager_id, scheduled_for, duration_ms, notes, status, created_at)
		VALUES (:id, :project_id, :creator_id, :manager_id, :scheduled_for, :duration_ms, :notes, :status, :created_at)`
)

// seedIfEmpty loads seed only when no seeded table has rows yet.
func (s *SQLStore) seedIfEmpty(ctx context.Context, seed fixtures.Set) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT
		(SELECT COUNT(*) FROM creators) +
		(SELECT COUNT(*) FROM projects) +
		(SELECT COUNT(*) FROM applications)`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range seed.Creators {
		if _, err := tx.NamedExecContext(ctx, insertCreatorSQL, creatorToRow(c)); err != nil {
			return fmt.Errorf("insert creator %s: %w", c.ID, err)
		}
	}
	for _, p := range seed.Projects {
		if _, err := tx.NamedExecContext(ctx, insertProjectSQL, projectToRow(p)); err != nil {
			return fmt.Errorf("insert project %s: %w", p.ID, err)
		}
	}
	for _, a := range seed.Applications {
		if _, err := tx.NamedExecContext(ctx, insertApplicationSQL, applicationToRow(a)); err != nil {
			return fmt.Errorf("insert application %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// ListCreators returns all creators ordered by name.
func (s *SQLStore) ListCreators(ctx context.Context) ([]core.Creator, error) {
	var rows []creatorRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM creators ORDER BY name`); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	result := make([]core.Creator, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toCore())
	}
	return result, nil
}

// GetCreator retrieves a creator by ID.
func (s *SQLStore) GetCreator(ctx context.Context, id string) (*core.Creator, error) {
	var row creatorRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT * FROM creators WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NotFound("creator", id)
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	c := row.toCore()
	return &c, nil
}

// ListProjects returns projects matching the filter, oldest first.
func (s *SQLStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]core.Project, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ManagerID != "" {
		where = append(where, "manager_id = ?")
		args = append(args, filter.ManagerID)
	}

	query := `SELECT * FROM projects`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	result := make([]core.Project, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toCore())
	}
	return paginate(result, filter.Offset, filter.Limit), nil
}

// GetProject retrieves a project by ID.
func (s *SQLStore) GetProject(ctx context.Context, id string) (*core.Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT * FROM projects WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NotFound("project", id)
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	p := row.toCore()
	return &p, nil
}

// ListApplications returns applications matching the filter.
func (s *SQLStore) ListApplications(ctx context.Context, filter ApplicationFilter) ([]core.Application, error) {
	var where []string
	var args []any
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.CreatorID != "" {
		where = append(where, "creator_id = ?")
		args = append(args, filter.CreatorID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT * FROM applications`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY submitted_at, id"

	var rows []applicationRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	result := make([]core.Application, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toCore())
	}
	return result, nil
}

// GetApplication retrieves an application by ID.
func (s *SQLStore) GetApplication(ctx context.Context, id string) (*core.Application, error) {
	var row applicationRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT * FROM applications WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NotFound("application", id)
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	a := row.toCore()
	return &a, nil
}

// SaveApplication inserts an application for an existing project.
func (s *SQLStore) SaveApplication(ctx context.Context, app *core.Application) error {
	if app.Status == "" {
		app.Status = core.ApplicationPending
	}
	if err := app.Validate(); err != nil {
		return err
	}
	if _, err := s.GetProject(ctx, app.ProjectID); err != nil {
		return err
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now().UTC()
	}

	if _, err := s.db.NamedExecContext(ctx, insertApplicationSQL, applicationToRow(*app)); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// ListBookings returns bookings matching the filter, soonest first.
func (s *SQLStore) ListBookings(ctx context.Context, filter BookingFilter) ([]core.Booking, error) {
	var where []string
	var args []any
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.CreatorID != "" {
		where = append(where, "creator_id = ?")
		args = append(args, filter.CreatorID)
	}
	if filter.ManagerID != "" {
		where = append(where, "manager_id = ?")
		args = append(args, filter.ManagerID)
	}

	query := `SELECT * FROM bookings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY scheduled_for, id"

	var rows []bookingRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	result := make([]core.Booking, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toCore())
	}
	return result, nil
}

// SaveBooking inserts a booking for an existing project.
func (s *SQLStore) SaveBooking(ctx context.Context, booking *core.Booking) error {
	if booking.Status == "" {
		booking.Status = core.BookingRequested
	}
	if err := booking.Validate(); err != nil {
		return err
	}
	if _, err := s.GetProject(ctx, booking.ProjectID); err != nil {
		return err
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	row := bookingRow{
		ID:           booking.ID,
		ProjectID:    booking.ProjectID,
		CreatorID:    booking.CreatorID,
		ManagerID:    booking.ManagerID,
		ScheduledFor: toMillis(booking.ScheduledFor),
		DurationMS:   booking.Duration.Milliseconds(),
		Notes:        booking.Notes,
		Status:       string(booking.Status),
		CreatedAt:    toMillis(booking.CreatedAt),
	}
	if _, err := s.db.NamedExecContext(ctx, insertBookingSQL, row); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}
