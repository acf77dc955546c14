package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pilot-logbook-backend/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned when a record refers to a missing pilot or aircraft.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrConflict is returned when a unique attribute is already taken.
	ErrConflict = errors.New("conflict")
)

// Snapshot is a consistent read of the collections the aggregators work on.
type Snapshot struct {
	Aircraft           []model.Aircraft
	FlightLogs         []model.FlightLogEntry
	MaintenanceRecords []model.MaintenanceRecord
}

// Store defines the interface for all database operations.
type Store interface {
	Ping(ctx context.Context) error
	Snapshot(ctx context.Context) (*Snapshot, error)

	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error

	ListAircraft(ctx context.Context) ([]model.Aircraft, error)
	GetAircraft(ctx context.Context, id string) (*model.Aircraft, error)
	CreateAircraft(ctx context.Context, ac *model.Aircraft) error
	UpdateAircraft(ctx context.Context, ac *model.Aircraft) error
	DeleteAircraft(ctx context.Context, id string) error

	ListFlightLogs(ctx context.Context) ([]model.FlightLogEntry, error)
	GetFlightLog(ctx context.Context, id string) (*model.FlightLogEntry, error)
	CreateFlightLog(ctx context.Context, entry *model.FlightLogEntry) error
	UpdateFlightLog(ctx context.Context, entry *model.FlightLogEntry) error
	DeleteFlightLog(ctx context.Context, id string) error

	ListMaintenanceRecords(ctx context.Context) ([]model.MaintenanceRecord, error)
	GetMaintenanceRecord(ctx context.Context, id string) (*model.MaintenanceRecord, error)
	CreateMaintenanceRecord(ctx context.Context, r *model.MaintenanceRecord) error
	UpdateMaintenanceRecord(ctx context.Context, r *model.MaintenanceRecord) error
	DeleteMaintenanceRecord(ctx context.Context, id string) error

	PutSubscription(ctx context.Context, sub *model.PushSubscription, aircraftIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForAircraft(ctx context.Context, aircraftID string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Snapshot reads aircraft, flight logs and maintenance records in one transaction.
func (s *gormStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("tail_number").Find(&snap.Aircraft).Error; err != nil {
			return fmt.Errorf("failed to read aircraft: %w", err)
		}
		if err := tx.Order("date DESC").Find(&snap.FlightLogs).Error; err != nil {
			return fmt.Errorf("failed to read flight logs: %w", err)
		}
		if err := tx.Order("scheduled_date DESC").Find(&snap.MaintenanceRecords).Error; err != nil {
			return fmt.Errorf("failed to read maintenance records: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// --- Users ---

func (s *gormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := first(s.db.WithContext(ctx), &u, id); err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return &u, nil
}

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("email %s already registered: %w", u.Email, ErrConflict)
		}
		assignID(&u.ID)
		return tx.Create(u).Error
	})
}

// --- Aircraft ---

func (s *gormStore) ListAircraft(ctx context.Context) ([]model.Aircraft, error) {
	var list []model.Aircraft
	if err := s.db.WithContext(ctx).Order("tail_number").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *gormStore) GetAircraft(ctx context.Context, id string) (*model.Aircraft, error) {
	var ac model.Aircraft
	if err := first(s.db.WithContext(ctx), &ac, id); err != nil {
		return nil, fmt.Errorf("aircraft %s: %w", id, err)
	}
	return &ac, nil
}

func (s *gormStore) CreateAircraft(ctx context.Context, ac *model.Aircraft) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTailNumber(tx, ac.TailNumber, ""); err != nil {
			return err
		}
		assignID(&ac.ID)
		return tx.Create(ac).Error
	})
}

func (s *gormStore) UpdateAircraft(ctx context.Context, ac *model.Aircraft) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Aircraft
		if err := first(tx, &existing, ac.ID); err != nil {
			return fmt.Errorf("aircraft %s: %w", ac.ID, err)
		}
		if err := checkTailNumber(tx, ac.TailNumber, ac.ID); err != nil {
			return err
		}
		ac.CreatedAt = existing.CreatedAt
		return tx.Save(ac).Error
	})
}

// DeleteAircraft removes the aircraft and its subscription mappings. Flight
// logs and maintenance records that refer to it are left in place.
func (s *gormStore) DeleteAircraft(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM subscription_aircraft_mapping WHERE aircraft_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink subscriptions of aircraft %s: %w", id, err)
		}
		return deleteByID(tx, &model.Aircraft{}, id)
	})
}

func checkTailNumber(tx *gorm.DB, tail, exceptID string) error {
	q := tx.Model(&model.Aircraft{}).Where("tail_number = ?", tail)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("tail number %s already registered: %w", tail, ErrConflict)
	}
	return nil
}

// --- Flight logs ---

func (s *gormStore) ListFlightLogs(ctx context.Context) ([]model.FlightLogEntry, error) {
	var list []model.FlightLogEntry
	if err := s.db.WithContext(ctx).Order("date DESC").Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *gormStore) GetFlightLog(ctx context.Context, id string) (*model.FlightLogEntry, error) {
	var entry model.FlightLogEntry
	if err := first(s.db.WithContext(ctx), &entry, id); err != nil {
		return nil, fmt.Errorf("flight log %s: %w", id, err)
	}
	return &entry, nil
}

// CreateFlightLog validates the pilot and aircraft references and copies the
// aircraft's tail number and model onto the entry.
func (s *gormStore) CreateFlightLog(ctx context.Context, entry *model.FlightLogEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pilot model.User
		if err := first(tx, &pilot, entry.PilotID); err != nil {
			return referenceError("pilot", entry.PilotID, err)
		}
		if err := denormaliseAircraft(tx, entry); err != nil {
			return err
		}
		assignID(&entry.ID)
		return tx.Create(entry).Error
	})
}

// UpdateFlightLog rewrites an entry. The owning pilot never changes.
func (s *gormStore) UpdateFlightLog(ctx context.Context, entry *model.FlightLogEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.FlightLogEntry
		if err := first(tx, &existing, entry.ID); err != nil {
			return fmt.Errorf("flight log %s: %w", entry.ID, err)
		}
		if err := denormaliseAircraft(tx, entry); err != nil {
			return err
		}
		entry.PilotID = existing.PilotID
		entry.CreatedAt = existing.CreatedAt
		return tx.Save(entry).Error
	})
}

func (s *gormStore) DeleteFlightLog(ctx context.Context, id string) error {
	return deleteByID(s.db.WithContext(ctx), &model.FlightLogEntry{}, id)
}

func denormaliseAircraft(tx *gorm.DB, entry *model.FlightLogEntry) error {
	var ac model.Aircraft
	if err := first(tx, &ac, entry.AircraftID); err != nil {
		return referenceError("aircraft", entry.AircraftID, err)
	}
	entry.AircraftTailNumber = ac.TailNumber
	entry.AircraftModel = ac.Model
	return nil
}

// --- Maintenance records ---

func (s *gormStore) ListMaintenanceRecords(ctx context.Context) ([]model.MaintenanceRecord, error) {
	var list []model.MaintenanceRecord
	if err := s.db.WithContext(ctx).Order("scheduled_date DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *gormStore) GetMaintenanceRecord(ctx context.Context, id string) (*model.MaintenanceRecord, error) {
	var r model.MaintenanceRecord
	if err := first(s.db.WithContext(ctx), &r, id); err != nil {
		return nil, fmt.Errorf("maintenance record %s: %w", id, err)
	}
	return &r, nil
}

func (s *gormStore) CreateMaintenanceRecord(ctx context.Context, r *model.MaintenanceRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ac model.Aircraft
		if err := first(tx, &ac, r.AircraftID); err != nil {
			return referenceError("aircraft", r.AircraftID, err)
		}
		r.AircraftTailNumber = ac.TailNumber
		assignID(&r.ID)
		return tx.Create(r).Error
	})
}

func (s *gormStore) UpdateMaintenanceRecord(ctx context.Context, r *model.MaintenanceRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.MaintenanceRecord
		if err := first(tx, &existing, r.ID); err != nil {
			return fmt.Errorf("maintenance record %s: %w", r.ID, err)
		}
		var ac model.Aircraft
		if err := first(tx, &ac, r.AircraftID); err != nil {
			return referenceError("aircraft", r.AircraftID, err)
		}
		r.AircraftTailNumber = ac.TailNumber
		r.CreatedAt = existing.CreatedAt
		return tx.Save(r).Error
	})
}

func (s *gormStore) DeleteMaintenanceRecord(ctx context.Context, id string) error {
	return deleteByID(s.db.WithContext(ctx), &model.MaintenanceRecord{}, id)
}

// --- Push subscriptions ---

// PutSubscription creates or replaces a subscription and the set of aircraft
// it follows. Unknown aircraft ids are ignored.
func (s *gormStore) PutSubscription(ctx context.Context, sub *model.PushSubscription, aircraftIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Omit("Aircraft").Create(sub).Error; err != nil {
			return err
		}

		aircraft := []*model.Aircraft{}
		if len(aircraftIDs) > 0 {
			if err := tx.Where("id IN ?", aircraftIDs).Find(&aircraft).Error; err != nil {
				return err
			}
		}
		if len(aircraft) < len(aircraftIDs) {
			slog.Warn("subscription refers to unknown aircraft", "endpoint", sub.Endpoint,
				"requested", len(aircraftIDs), "found", len(aircraft))
		}

		if err := tx.Model(sub).Association("Aircraft").Replace(aircraft); err != nil {
			return err
		}
		sub.Aircraft = aircraft
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Aircraft").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("subscription: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := model.PushSubscription{Endpoint: endpoint}
		if err := tx.Model(&sub).Association("Aircraft").Clear(); err != nil {
			return err
		}
		return tx.Delete(&sub).Error
	})
}

func (s *gormStore) SubscriptionsForAircraft(ctx context.Context, aircraftID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_aircraft_mapping sam ON sam.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sam.aircraft_id = ?", aircraftID).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// --- Helpers ---

func first(tx *gorm.DB, dest any, id string) error {
	err := tx.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func deleteByID(tx *gorm.DB, m any, id string) error {
	res := tx.Where("id = ?", id).Delete(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func referenceError(kind, id string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s %s does not exist: %w", kind, id, ErrInvalidReference)
	}
	return err
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
