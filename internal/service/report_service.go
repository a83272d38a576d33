package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/repository"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

// ReportService builds dashboard aggregates.
type ReportService struct {
	landlords  repository.LandlordRepository
	properties repository.PropertyRepository
	presence   repository.PresenceRepository
}

// ReportDependencies encapsulates repositories required for reports.
type ReportDependencies struct {
	LandlordRepo repository.LandlordRepository
	PropertyRepo repository.PropertyRepository
	PresenceRepo repository.PresenceRepository
}

// Summary is the admin dashboard overview.
type Summary struct {
	Landlords        repository.LandlordSummary
	PropertiesTotal  int
	PropertiesStatus map[domain.PropertyStatus]int
	UsersOnline      int
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		landlords:  deps.LandlordRepo,
		properties: deps.PropertyRepo,
		presence:   deps.PresenceRepo,
	}
}

// Summary runs the three aggregate queries concurrently.
func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	var (
		landlords repository.LandlordSummary
		byStatus  map[domain.PropertyStatus]int
		online    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		landlords, err = s.landlords.Summary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = s.properties.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		online, err = s.presence.CountOnline(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.MapError(err)
	}

	summary := &Summary{
		Landlords:        landlords,
		PropertiesStatus: make(map[domain.PropertyStatus]int, len(domain.PropertyStatuses)),
		UsersOnline:      online,
	}
	for _, status := range domain.PropertyStatuses {
		summary.PropertiesStatus[status] = byStatus[status]
		summary.PropertiesTotal += byStatus[status]
	}
	return summary, nil
}
