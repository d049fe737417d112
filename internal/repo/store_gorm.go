package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vitrina/internal/domain"
)

type documentModel struct {
	Collection    string `gorm:"primaryKey;size:32"`
	ID            string `gorm:"primaryKey;size:64"`
	Status        string `gorm:"size:16;index:idx_documents_status"`
	Lookup        string `gorm:"size:191;index:idx_documents_lookup"`
	SchemaVersion int    `gorm:"not null;default:1"`
	Body          []byte `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (documentModel) TableName() string { return "documents" }

// GormBackend 所有集合共用一张 documents 表
type GormBackend struct{ db *gorm.DB }

func NewGormBackend(db *gorm.DB) *GormBackend { return &GormBackend{db: db} }

func (b *GormBackend) Migrate() error { return b.db.AutoMigrate(&documentModel{}) }

func (b *GormBackend) Get(ctx context.Context, collection, id string) (*Record, error) {
	var m documentModel
	err := b.db.WithContext(ctx).First(&m, "collection = ? AND id = ?", collection, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("%s %s not found", collection, id)
	}
	if err != nil {
		return nil, err
	}
	rec := toRecord(&m)
	return &rec, nil
}

func (b *GormBackend) List(ctx context.Context, collection string, f Filter) ([]Record, error) {
	q := b.db.WithContext(ctx).Model(&documentModel{}).Where("collection = ?", collection)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Lookup != "" {
		q = q.Where("lookup = ?", f.Lookup)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var ms []documentModel
	if err := q.Order("created_at DESC").Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(ms))
	for i := range ms {
		out = append(out, toRecord(&ms[i]))
	}
	return out, nil
}

// Put upsert；created_at 只在首次写入时生成
func (b *GormBackend) Put(ctx context.Context, rec *Record) error {
	m := documentModel{
		Collection:    rec.Collection,
		ID:            rec.ID,
		Status:        rec.Status,
		Lookup:        rec.Lookup,
		SchemaVersion: rec.SchemaVersion,
		Body:          rec.Body,
	}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "lookup", "schema_version", "body", "updated_at"}),
	}).Create(&m).Error
}

func (b *GormBackend) Delete(ctx context.Context, collection, id string) error {
	res := b.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&documentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("%s %s not found", collection, id)
	}
	return nil
}

func (b *GormBackend) Tx(ctx context.Context, fn func(tx Backend) error) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBackend{db: tx})
	})
}

func toRecord(m *documentModel) Record {
	return Record{
		Collection:    m.Collection,
		ID:            m.ID,
		Status:        m.Status,
		Lookup:        m.Lookup,
		SchemaVersion: m.SchemaVersion,
		Body:          m.Body,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
