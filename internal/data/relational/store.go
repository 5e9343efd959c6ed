package relational

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store implements commonModels.DocumentStore and commonModels.BrandStore on gorm.
type Store struct {
	db     *gorm.DB
	logger *logger_i.Logger
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, logger: logger_i.NewLogger("relational_store")}
}

func (s *Store) CreateBrand(ctx context.Context, brand commonModels.Brand) (commonModels.Brand, error) {
	if strings.TrimSpace(brand.OwnerId) == "" {
		return commonModels.Brand{}, fmt.Errorf("%w: brand owner is required", commonModels.ErrInvalidArgument)
	}
	if brand.Id == "" {
		brand.Id = uuid.NewString()
	}
	row := brandRow{Id: brand.Id, OwnerId: brand.OwnerId, Name: strings.TrimSpace(brand.Name)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return commonModels.Brand{}, fmt.Errorf("create brand: %w", err)
	}
	return toBrand(row), nil
}

func (s *Store) GetBrand(ctx context.Context, id string) (commonModels.Brand, error) {
	row, err := s.brandRow(ctx, id)
	if err != nil {
		return commonModels.Brand{}, err
	}
	return toBrand(row), nil
}

func (s *Store) GetProfile(ctx context.Context, brandId string) (commonModels.StyleProfile, bool, error) {
	row, err := s.brandRow(ctx, brandId)
	if err != nil {
		return commonModels.StyleProfile{}, false, err
	}
	if len(row.Profile) == 0 || string(row.Profile) == "null" {
		return commonModels.StyleProfile{}, false, nil
	}
	var p commonModels.StyleProfile
	if err := json.Unmarshal(row.Profile, &p); err != nil {
		return commonModels.StyleProfile{}, false, fmt.Errorf("decode profile of brand %s: %w", brandId, err)
	}
	return p, true, nil
}

func (s *Store) SaveProfile(ctx context.Context, brandId string, profile commonModels.StyleProfile) error {
	data, err := json.Marshal(profile.Normalize())
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&brandRow{}).Where("id = ?", brandId).Update("profile", datatypes.JSON(data))
	if res.Error != nil {
		return fmt.Errorf("save profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", commonModels.ErrBrandNotFound, brandId)
	}
	return nil
}

func (s *Store) GetMemoryFacts(ctx context.Context, brandId string) ([]commonModels.MemoryFact, error) {
	var rows []memoryFactRow
	err := s.db.WithContext(ctx).Where("brand_id = ?", brandId).Order("position").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load memory facts: %w", err)
	}
	facts := make([]commonModels.MemoryFact, len(rows))
	for i, r := range rows {
		facts[i] = commonModels.MemoryFact{Id: r.Id, BrandId: r.BrandId, Fact: r.Fact, CreatedAt: r.CreatedAt}
	}
	return facts, nil
}

// ReplaceMemoryFacts swaps the brand's fact set atomically.
func (s *Store) ReplaceMemoryFacts(ctx context.Context, brandId string, facts []string) error {
	if _, err := s.brandRow(ctx, brandId); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("brand_id = ?", brandId).Delete(&memoryFactRow{}).Error; err != nil {
			return err
		}
		if len(facts) == 0 {
			return nil
		}
		rows := make([]memoryFactRow, len(facts))
		for i, f := range facts {
			rows[i] = memoryFactRow{Id: uuid.NewString(), BrandId: brandId, Position: i, Fact: f}
		}
		return tx.Create(&rows).Error
	})
}

func (s *Store) CreateDocument(ctx context.Context, doc commonModels.Document) (commonModels.Document, error) {
	if _, err := s.brandRow(ctx, doc.BrandId); err != nil {
		return commonModels.Document{}, err
	}
	if doc.Id == "" {
		doc.Id = uuid.NewString()
	}
	row := documentRow{
		Id:      doc.Id,
		BrandId: doc.BrandId,
		Name:    doc.Name,
		Content: doc.Content,
		Status:  string(commonModels.StatusPending),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return commonModels.Document{}, fmt.Errorf("create document: %w", err)
	}
	return toDocument(row), nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (commonModels.Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return commonModels.Document{}, fmt.Errorf("%w: %s", commonModels.ErrDocumentNotFound, id)
	}
	if err != nil {
		return commonModels.Document{}, fmt.Errorf("load document: %w", err)
	}
	return toDocument(row), nil
}

// UpdateStatus moves the document only if the transition is allowed and nobody
// changed the status since it was read.
func (s *Store) UpdateStatus(ctx context.Context, id string, status commonModels.DocumentStatus, detail commonModels.StatusDetail) error {
	current, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: document %s cannot move from %s to %s",
			commonModels.ErrInvalidArgument, id, current.Status, status)
	}

	updates := map[string]any{"status": string(status), "updated_at": time.Now()}
	switch status {
	case commonModels.StatusProcessed:
		updates["chunk_count"] = detail.ChunkCount
		updates["last_error"] = ""
	case commonModels.StatusError:
		updates["last_error"] = detail.Error
	case commonModels.StatusProcessing:
		updates["last_error"] = ""
	}

	res := s.db.WithContext(ctx).Model(&documentRow{}).
		Where("id = ? AND status = ?", id, string(current.Status)).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update document status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		s.logger.Warn("document status changed concurrently", "documentId", id, "expected", current.Status)
		return fmt.Errorf("%w: document %s status changed concurrently", commonModels.ErrIngestionInProgress, id)
	}
	return nil
}

func (s *Store) GetByBrand(ctx context.Context, brandId string) ([]commonModels.Document, error) {
	var rows []documentRow
	err := s.db.WithContext(ctx).Where("brand_id = ?", brandId).Order("created_at, id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs := make([]commonModels.Document, len(rows))
	for i, r := range rows {
		docs[i] = toDocument(r)
	}
	return docs, nil
}

func (s *Store) brandRow(ctx context.Context, id string) (brandRow, error) {
	var row brandRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return brandRow{}, fmt.Errorf("%w: %s", commonModels.ErrBrandNotFound, id)
	}
	if err != nil {
		return brandRow{}, fmt.Errorf("load brand: %w", err)
	}
	return row, nil
}

func toBrand(r brandRow) commonModels.Brand {
	return commonModels.Brand{Id: r.Id, OwnerId: r.OwnerId, Name: r.Name, CreatedAt: r.CreatedAt}
}

func toDocument(r documentRow) commonModels.Document {
	return commonModels.Document{
		Id:         r.Id,
		BrandId:    r.BrandId,
		Name:       r.Name,
		Content:    r.Content,
		Status:     commonModels.DocumentStatus(r.Status),
		ChunkCount: r.ChunkCount,
		LastError:  r.LastError,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
