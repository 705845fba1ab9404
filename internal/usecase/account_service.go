package usecase

import (
	"context"
	"fmt"

	"adsboard/internal/domain"
	"adsboard/pkg/logger"
)

// AccountService manages registered business managers and proxies the
// ad account, campaign and ad listings that hang off them.
type AccountService struct {
	bms    domain.BusinessManagerRepository
	api    domain.AdsAPIClient
	logger *logger.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(bms domain.BusinessManagerRepository, api domain.AdsAPIClient, logger *logger.Logger) *AccountService {
	return &AccountService{bms: bms, api: api, logger: logger}
}

// RegisterBusinessManager validates the access token against the upstream
// API and stores the pair. Registering an existing BM replaces its token.
func (s *AccountService) RegisterBusinessManager(ctx context.Context, bmID, accessToken string) error {
	if err := s.api.ValidateToken(ctx, accessToken); err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}
	bm := &domain.BusinessManager{BMID: bmID, AccessToken: accessToken}
	if err := s.bms.Upsert(ctx, bm); err != nil {
		return fmt.Errorf("failed to store business manager: %w", err)
	}
	s.logger.WithContext(ctx).WithField("bm_id", bmID).Info("Registered business manager")
	return nil
}

// ListBusinessManagers returns all registered business manager IDs.
func (s *AccountService) ListBusinessManagers(ctx context.Context) ([]string, error) {
	bms, err := s.bms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list business managers: %w", err)
	}
	ids := make([]string, 0, len(bms))
	for _, bm := range bms {
		ids = append(ids, bm.BMID)
	}
	return ids, nil
}

// DeleteBusinessManager removes a registered business manager.
func (s *AccountService) DeleteBusinessManager(ctx context.Context, bmID string) error {
	if err := s.bms.Delete(ctx, bmID); err != nil {
		return fmt.Errorf("failed to delete business manager %s: %w", bmID, err)
	}
	s.logger.WithContext(ctx).WithField("bm_id", bmID).Info("Deleted business manager")
	return nil
}

// AdAccounts lists the ad accounts owned by a business manager.
func (s *AccountService) AdAccounts(ctx context.Context, bmID string) ([]domain.AdAccount, error) {
	bm, err := s.bms.Get(ctx, bmID)
	if err != nil {
		return nil, fmt.Errorf("business manager %s: %w", bmID, err)
	}
	accounts, err := s.api.ListAdAccounts(ctx, bm.AccessToken, bmID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ad accounts: %w", err)
	}
	return accounts, nil
}

// Campaigns lists the campaigns of an ad account.
func (s *AccountService) Campaigns(ctx context.Context, bmID, adAccountID string) ([]domain.Campaign, error) {
	bm, err := s.bms.Get(ctx, bmID)
	if err != nil {
		return nil, fmt.Errorf("business manager %s: %w", bmID, err)
	}
	campaigns, err := s.api.ListCampaigns(ctx, bm.AccessToken, adAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// Ads lists ads under either an ad account or a campaign, whichever of the
// two IDs is set. limit <= 0 means the upstream default page size.
func (s *AccountService) Ads(ctx context.Context, bmID, adAccountID, campaignID string, limit int) ([]domain.Ad, error) {
	bm, err := s.bms.Get(ctx, bmID)
	if err != nil {
		return nil, fmt.Errorf("business manager %s: %w", bmID, err)
	}
	objectID := adAccountID
	if campaignID != "" {
		objectID = campaignID
	}
	ads, err := s.api.ListAds(ctx, bm.AccessToken, objectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	return ads, nil
}
