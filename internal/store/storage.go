package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Storage struct {
	Fact interface {
		InsertFact(ctx context.Context, fact *FactPurchase) error
		TruncateFacts(ctx context.Context) error
	}

	Dimensions interface {
		UpsertInstitution(ctx context.Context, record *InstitutionRecord) error
		UpsertProduct(ctx context.Context, record *ProductRecord) error
		UpsertSupplier(ctx context.Context, record *SupplierRecord) error
		UpsertManufacturer(ctx context.Context, record *ManufacturerRecord) error
		UpsertTime(ctx context.Context, record *TimeRecord) error
	}

	Radar interface {
		InsertRadar(ctx context.Context, record *RadarRecord) error
		TruncateRadar(ctx context.Context) error
	}

	RunHistory interface {
		InsertRunHistory(ctx context.Context, history *PipelineRunHistory) error
		GetLatest(ctx context.Context, limit int) ([]PipelineRunHistory, error)
		UpdateRunStatus(ctx context.Context, id int64, status string) error
	}

	Analytics interface {
		GetTopOpportunities(ctx context.Context, f AnalyticsFilter, limit int) ([]Opportunity, error)
		GetPriorityProducts(ctx context.Context, limit int) ([]PriorityProduct, error)
		GetConcentrationRanking(ctx context.Context, threshold float64, limit int) ([]ConcentratedProduct, error)
		GetSpendByYear(ctx context.Context) ([]YearlySpend, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Fact:       &FactStore{db: db},
		Dimensions: &DimensionStore{db: db},
		Radar:      &RadarStore{db: db},
		RunHistory: &RunHistoryStore{db: db},
		Analytics:  &AnalyticsStore{db: db},
	}
}
