package campaigns

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tarven-note/tarven-core/pkg/apperror"
	"github.com/tarven-note/tarven-core/pkg/logger"
	"github.com/tarven-note/tarven-core/pkg/sqljson"
)

// Service owns campaign lifecycle. Entity resolution calls EnsureExists so a
// note ingested against a fresh campaign id does not fail on a missing scope.
type Service struct {
	repo *Repository
	log  *slog.Logger
}

// NewService creates a new campaign service.
func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(logger.Scope("campaigns.service")),
	}
}

// CreateParams holds the fields accepted when creating a campaign.
type CreateParams struct {
	CampaignID  string
	Name        string
	System      string
	Description string
	Metadata    sqljson.Map
}

// Create creates a campaign. A caller-supplied id is honored; collisions on
// it surface as a conflict.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Campaign, error) {
	if params.Name == "" {
		return nil, apperror.ErrValidation.WithMessage("campaign name is required")
	}

	if params.CampaignID != "" {
		existing, err := s.repo.GetByID(ctx, params.CampaignID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.ErrConflict.WithMessage("campaign already exists")
		}
	}

	c := &Campaign{
		CampaignID:  params.CampaignID,
		Name:        params.Name,
		System:      params.System,
		Description: params.Description,
		Metadata:    params.Metadata,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("campaign created",
		slog.String("campaign_id", c.CampaignID),
		slog.String("name", c.Name))
	return c, nil
}

// Get returns a campaign or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.ErrNotFound.WithMessage("campaign not found")
	}
	return c, nil
}

// List returns all campaigns.
func (s *Service) List(ctx context.Context) ([]Campaign, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update, returning ErrNotFound for a missing id.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Campaign, error) {
	c, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.ErrNotFound.WithMessage("campaign not found")
	}
	return c, nil
}

// EnsureExists creates a placeholder campaign for an unseen id so writes
// scoped to it have a valid owner. Existing campaigns are left untouched.
func (s *Service) EnsureExists(ctx context.Context, id string) error {
	if id == "" {
		return apperror.ErrValidation.WithMessage("campaign id is required")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	name := id
	if len(name) > 8 {
		name = name[:8]
	}
	c := &Campaign{
		CampaignID: id,
		Name:       fmt.Sprintf("Campaign %s", name),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		// A concurrent EnsureExists may have won the insert.
		recheck, rerr := s.repo.GetByID(ctx, id)
		if rerr == nil && recheck != nil {
			return nil
		}
		return err
	}

	s.log.Info("implicitly created campaign", slog.String("campaign_id", id))
	return nil
}

// Delete removes a campaign and all graph data scoped to it. Returns
// ErrNotFound when no such campaign exists.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.ErrNotFound.WithMessage("campaign not found")
	}
	s.log.Info("campaign deleted", slog.String("campaign_id", id))
	return nil
}
