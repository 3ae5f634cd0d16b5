package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record is a named JSON document in the key/value table.
type Record struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:100"`
	Value     string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "records"
}

// SQLitePersister stores the map as one row of the records table.
type SQLitePersister struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string) (*SQLitePersister, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

// Close releases the underlying connection pool.
func (p *SQLitePersister) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *SQLitePersister) Load(ctx context.Context) (Map, error) {
	var rec Record
	err := p.db.WithContext(ctx).Where("name = ?", RecordName).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Map{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}

	var m Map
	if err := json.Unmarshal([]byte(rec.Value), &m); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return m, nil
}

func (p *SQLitePersister) Save(ctx context.Context, m Map) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	db := p.db.WithContext(ctx)
	var rec Record
	result := db.Where("name = ?", RecordName).First(&rec)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return db.Create(&Record{Name: RecordName, Value: string(data)}).Error
	} else if result.Error != nil {
		return result.Error
	}

	rec.Value = string(data)
	return db.Save(&rec).Error
}
