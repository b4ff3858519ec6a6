package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/repository"
)

// BuildingStore persists buildings.
type BuildingStore interface {
	Create(ctx context.Context, b *model.Building) error
	GetByID(ctx context.Context, id string) (*model.Building, error)
	List(ctx context.Context) ([]model.Building, error)
	Update(ctx context.Context, b *model.Building) error
	Delete(ctx context.Context, id string) error
}

// ClassroomStore persists classrooms.  Zero-valued fields of the query
// methods mean "no constraint".
type ClassroomStore interface {
	Create(ctx context.Context, c *model.Classroom) error
	GetByID(ctx context.Context, id string) (*model.Classroom, error)
	List(ctx context.Context, q model.ClassroomQuery) ([]model.Classroom, error)
	Update(ctx context.Context, c *model.Classroom) error
	Delete(ctx context.Context, id string) error
}

// ReservationFinder is the read side of ReservationStore.
type ReservationFinder interface {
	OverlapFinder
	FindAll(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
}

// CatalogService manages buildings and classrooms and answers
// classroom availability questions that do not mutate reservations.
type CatalogService struct {
	buildings    BuildingStore
	classrooms   ClassroomStore
	reservations ReservationFinder
	oracle       Oracle
	logger       *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewCatalogService wires the catalog.  logger may be nil.
func NewCatalogService(buildings BuildingStore, classrooms ClassroomStore, reservations ReservationFinder, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		buildings:    buildings,
		classrooms:   classrooms,
		reservations: reservations,
		oracle:       NewOracle(reservations),
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// storeErr maps repository sentinels onto service kinds.
func storeErr(err error, what, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return conflict("%s already exists with id: %s", what, id)
	case errors.Is(err, repository.ErrConflict):
		return conflict("%s %s is still referenced and cannot be deleted", what, id)
	}
	return lookupErr(err, what, id)
}

func validateBuilding(b *model.Building) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Location = strings.TrimSpace(b.Location)
	if b.Name == "" {
		return invalidInput("building name is required")
	}
	return nil
}

// CreateBuilding stores a new building with a generated id.
func (s *CatalogService) CreateBuilding(ctx context.Context, b model.Building) (*model.Building, error) {
	if err := validateBuilding(&b); err != nil {
		return nil, err
	}
	b.ID = s.newID()
	if err := s.buildings.Create(ctx, &b); err != nil {
		return nil, storeErr(err, "building", b.ID)
	}
	s.logger.Info("building created", zap.String("building_id", b.ID))
	return &b, nil
}

func (s *CatalogService) GetBuilding(ctx context.Context, id string) (*model.Building, error) {
	b, err := s.buildings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "building", id)
	}
	return b, nil
}

func (s *CatalogService) ListBuildings(ctx context.Context) ([]model.Building, error) {
	return s.buildings.List(ctx)
}

// UpdateBuilding replaces name and location of an existing building.
func (s *CatalogService) UpdateBuilding(ctx context.Context, id string, b model.Building) (*model.Building, error) {
	if err := validateBuilding(&b); err != nil {
		return nil, err
	}
	b.ID = id
	if err := s.buildings.Update(ctx, &b); err != nil {
		return nil, storeErr(err, "building", id)
	}
	return &b, nil
}

// DeleteBuilding fails with ErrConflict while classrooms still reference it.
func (s *CatalogService) DeleteBuilding(ctx context.Context, id string) error {
	if err := s.buildings.Delete(ctx, id); err != nil {
		return storeErr(err, "building", id)
	}
	s.logger.Info("building deleted", zap.String("building_id", id))
	return nil
}

func (s *CatalogService) validateClassroom(ctx context.Context, c *model.Classroom) error {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.BuildingID = strings.TrimSpace(c.BuildingID)
	if c.ID == "" {
		return invalidInput("classroom id is required")
	}
	if c.Name == "" {
		return invalidInput("classroom name is required")
	}
	if c.Capacity <= 0 {
		return invalidInput("capacity must be greater than zero")
	}
	t, ok := model.ParseClassroomType(string(c.Type))
	if !ok {
		return invalidInput("unknown classroom type %q", c.Type)
	}
	c.Type = t
	if c.BuildingID == "" {
		return invalidInput("buildingId is required")
	}
	if _, err := s.buildings.GetByID(ctx, c.BuildingID); err != nil {
		return storeErr(err, "building", c.BuildingID)
	}
	return nil
}

// CreateClassroom stores a classroom under an existing building.
func (s *CatalogService) CreateClassroom(ctx context.Context, c model.Classroom) (*model.Classroom, error) {
	if err := s.validateClassroom(ctx, &c); err != nil {
		return nil, err
	}
	if err := s.classrooms.Create(ctx, &c); err != nil {
		return nil, storeErr(err, "classroom", c.ID)
	}
	s.logger.Info("classroom created", zap.String("classroom_id", c.ID), zap.String("building_id", c.BuildingID))
	return &c, nil
}

func (s *CatalogService) GetClassroom(ctx context.Context, id string) (*model.Classroom, error) {
	c, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "classroom", id)
	}
	return c, nil
}

// UpdateClassroom replaces every mutable field of classroom id.
func (s *CatalogService) UpdateClassroom(ctx context.Context, id string, c model.Classroom) (*model.Classroom, error) {
	c.ID = id
	if err := s.validateClassroom(ctx, &c); err != nil {
		return nil, err
	}
	if err := s.classrooms.Update(ctx, &c); err != nil {
		return nil, storeErr(err, "classroom", id)
	}
	return &c, nil
}

// DeleteClassroom fails with ErrConflict while reservations reference it.
func (s *CatalogService) DeleteClassroom(ctx context.Context, id string) error {
	if err := s.classrooms.Delete(ctx, id); err != nil {
		return storeErr(err, "classroom", id)
	}
	s.logger.Info("classroom deleted", zap.String("classroom_id", id))
	return nil
}

// ListClassrooms returns classrooms matching q.
func (s *CatalogService) ListClassrooms(ctx context.Context, q model.ClassroomQuery) ([]model.Classroom, error) {
	if q.Type != "" {
		t, ok := model.ParseClassroomType(string(q.Type))
		if !ok {
			return nil, invalidInput("unknown classroom type %q", q.Type)
		}
		q.Type = t
	}
	if q.MinCapacity < 0 {
		return nil, invalidInput("minimum capacity must not be negative")
	}
	if q.BuildingID != "" {
		if _, err := s.buildings.GetByID(ctx, q.BuildingID); err != nil {
			return nil, storeErr(err, "building", q.BuildingID)
		}
	}
	return s.classrooms.List(ctx, q)
}

// busyNow returns the ids of classrooms holding a CONFIRMED reservation
// whose window contains the current instant.
func (s *CatalogService) busyNow(ctx context.Context) (map[string]bool, error) {
	now := normTime(s.now())
	rows, err := s.reservations.FindAll(ctx, model.ReservationFilter{Status: model.StatusConfirmed, ActiveAt: now})
	if err != nil {
		return nil, err
	}
	busy := make(map[string]bool)
	for _, r := range rows {
		if inProgress(r, now) {
			busy[r.ClassroomID] = true
		}
	}
	return busy, nil
}

func (s *CatalogService) partitionNow(ctx context.Context) (free, taken []model.Classroom, err error) {
	busy, err := s.busyNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	all, err := s.classrooms.List(ctx, model.ClassroomQuery{})
	if err != nil {
		return nil, nil, err
	}
	free, taken = []model.Classroom{}, []model.Classroom{}
	for _, c := range all {
		if busy[c.ID] {
			taken = append(taken, c)
		} else {
			free = append(free, c)
		}
	}
	return free, taken, nil
}

// AvailableNow lists classrooms with no confirmed reservation in progress.
func (s *CatalogService) AvailableNow(ctx context.Context) ([]model.Classroom, error) {
	free, _, err := s.partitionNow(ctx)
	return free, err
}

// UnavailableNow lists classrooms occupied by a confirmed reservation right now.
func (s *CatalogService) UnavailableNow(ctx context.Context) ([]model.Classroom, error) {
	_, taken, err := s.partitionNow(ctx)
	return taken, err
}

// Summary counts classrooms by whether they are occupied right now.
func (s *CatalogService) Summary(ctx context.Context) (model.AvailabilitySummary, error) {
	free, taken, err := s.partitionNow(ctx)
	if err != nil {
		return model.AvailabilitySummary{}, err
	}
	return model.AvailabilitySummary{
		Total:       len(free) + len(taken),
		Available:   len(free),
		Unavailable: len(taken),
	}, nil
}

// AvailabilityQuery asks whether a classroom is free on Date between
// StartTime and EndTime.  Date is yyyy-MM-dd and the times are HH:mm,
// all interpreted in UTC.
type AvailabilityQuery struct {
	ClassroomID string
	Date        string
	StartTime   string
	EndTime     string
}

// AvailabilityResult is the answer to an AvailabilityQuery.
type AvailabilityResult struct {
	ClassroomID string              `json:"classroomId"`
	StartTime   time.Time           `json:"startTime"`
	EndTime     time.Time           `json:"endTime"`
	Available   bool                `json:"available"`
	Conflicts   []model.Reservation `json:"conflicts"`
}

func parseSlot(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.UTC)
	if err != nil {
		return time.Time{}, invalidInput("invalid date or time %q %q: expected yyyy-MM-dd and HH:mm", date, clock)
	}
	return t, nil
}

// CheckAvailability runs the oracle for an explicit window outside any
// transaction.  The answer is advisory; booking re-checks under lock.
func (s *CatalogService) CheckAvailability(ctx context.Context, q AvailabilityQuery) (*AvailabilityResult, error) {
	id := strings.TrimSpace(q.ClassroomID)
	if id == "" {
		return nil, invalidInput("classroomId is required")
	}
	start, err := parseSlot(q.Date, q.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseSlot(q.Date, q.EndTime)
	if err != nil {
		return nil, err
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	if _, err := s.classrooms.GetByID(ctx, id); err != nil {
		return nil, storeErr(err, "classroom", id)
	}
	clashes, err := s.oracle.Conflicts(ctx, id, start, end, "")
	if err != nil {
		return nil, err
	}
	if clashes == nil {
		clashes = []model.Reservation{}
	}
	return &AvailabilityResult{
		ClassroomID: id,
		StartTime:   start,
		EndTime:     end,
		Available:   len(clashes) == 0,
		Conflicts:   clashes,
	}, nil
}
