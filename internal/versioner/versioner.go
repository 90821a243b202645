package versioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MigrationRecord is one row of the schema version table.
type MigrationRecord struct {
	Version   string    `gorm:"primaryKey;column:version"`
	Name      string    `gorm:"column:name"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

// Versioner records which schema migrations have been applied.
type Versioner struct {
	db    *gorm.DB
	table string
}

func NewVersioner(db *gorm.DB, tableName string) *Versioner {
	return &Versioner{
		db:    db,
		table: tableName,
	}
}

// Table is the name of the version table.
func (v *Versioner) Table() string { return v.table }

// WithDB returns a versioner bound to db, typically a transaction.
func (v *Versioner) WithDB(db *gorm.DB) *Versioner {
	return &Versioner{db: db, table: v.table}
}

// Initialize creates the version table when it does not exist yet.
func (v *Versioner) Initialize(ctx context.Context) error {
	if err := v.db.WithContext(ctx).Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255),
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, v.table)).Error; err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}

// GetAppliedRecords returns applied migrations, oldest version first.
func (v *Versioner) GetAppliedRecords(ctx context.Context) ([]MigrationRecord, error) {
	var records []MigrationRecord
	if err := v.db.WithContext(ctx).Table(v.table).Order("version ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	return records, nil
}

func (v *Versioner) GetAppliedVersions(ctx context.Context) ([]string, error) {
	records, err := v.GetAppliedRecords(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]string, len(records))
	for i, r := range records {
		versions[i] = r.Version
	}
	return versions, nil
}

func (v *Versioner) RecordApplied(ctx context.Context, version, name string) error {
	record := MigrationRecord{
		Version:   version,
		Name:      name,
		AppliedAt: time.Now().UTC(),
	}
	if err := v.db.WithContext(ctx).Table(v.table).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

func (v *Versioner) RemoveApplied(ctx context.Context, version string) error {
	if err := v.db.WithContext(ctx).Table(v.table).Where("version = ?", version).Delete(&MigrationRecord{}).Error; err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	return nil
}

// GetLatestVersion returns "" when nothing has been applied.
func (v *Versioner) GetLatestVersion(ctx context.Context) (string, error) {
	var record MigrationRecord
	if err := v.db.WithContext(ctx).Table(v.table).Order("version DESC").First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get latest version: %w", err)
	}
	return record.Version, nil
}

func (v *Versioner) GetAppliedCount(ctx context.Context) (int64, error) {
	var count int64
	if err := v.db.WithContext(ctx).Table(v.table).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count applied migrations: %w", err)
	}
	return count, nil
}
