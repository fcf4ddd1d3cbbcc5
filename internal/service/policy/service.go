package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/salonbook/booking-service/internal/domain"
	policyRepo "github.com/salonbook/booking-service/internal/infra/storage/policy"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
	"github.com/salonbook/booking-service/internal/service/policy/models"
)

// Service сервис для чтения и обновления политик бронирования салонов
type Service struct {
	policyRepo  PolicyRepository
	salonClient SalonServiceClient
	logger      Logger
}

// NewService создает новый экземпляр сервиса политик
func NewService(policyRepo PolicyRepository, salonClient SalonServiceClient, logger Logger) *Service {
	return &Service{
		policyRepo:  policyRepo,
		salonClient: salonClient,
		logger:      logger,
	}
}

// GetBySalonID получает политику бронирования салона.
// Если салон не сохранял собственную политику, возвращаются значения
// по умолчанию.
func (s *Service) GetBySalonID(ctx context.Context, salonID int64) (*models.PolicyResponse, error) {
	s.logger.Info("GetBySalonID: fetching policy for salon=%d", salonID)

	if _, err := s.salonClient.GetSalon(ctx, salonID); err != nil {
		if errors.Is(err, salonservice.ErrSalonNotFound) {
			s.logger.Warn("GetBySalonID: salon id=%d not found", salonID)
			return nil, ErrSalonNotFound
		}
		s.logger.Error("GetBySalonID: failed to get salon id=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	p, err := s.policyRepo.GetBySalonID(ctx, salonID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			s.logger.Info("GetBySalonID: using default policy for salon=%d", salonID)
			return models.FromDomainPolicy(domain.DefaultBookingPolicy(salonID), true), nil
		}
		s.logger.Error("GetBySalonID: repository error for salon=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: GetBySalonID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainPolicy(p, false), nil
}

// Update создает или обновляет политику бронирования салона.
// Доступно только оператору салона.
func (s *Service) Update(ctx context.Context, salonID int64, req *models.UpdatePolicyRequest, principal domain.Principal) (*models.PolicyResponse, error) {
	s.logger.Info("Update: updating policy for salon=%d by principal id=%d", salonID, principal.ID)

	if !principal.Operates(salonID) {
		s.logger.Warn("Update: access denied for principal id=%d role=%s to salon=%d",
			principal.ID, principal.Role, salonID)
		return nil, ErrAccessDenied
	}

	if err := validatePolicy(req); err != nil {
		s.logger.Warn("Update: validation failed for salon=%d: %v", salonID, err)
		return nil, err
	}

	saved, err := s.policyRepo.Upsert(ctx, req.ToDomain(salonID))
	if err != nil {
		s.logger.Error("Update: repository error for salon=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: policy for salon=%d saved, granularity=%d advance=%d notice=%d",
		salonID, saved.SlotGranularityMinutes, saved.AdvanceBookingDays, saved.MinNoticeMinutes)

	return models.FromDomainPolicy(saved, false), nil
}

// validatePolicy проверяет границы значений политики
func validatePolicy(req *models.UpdatePolicyRequest) error {
	if req.SlotGranularityMinutes < domain.MinSlotGranularityMinutes ||
		req.SlotGranularityMinutes > domain.MaxSlotGranularityMinutes {
		return fmt.Errorf("%w: slotGranularityMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotGranularityMinutes, domain.MaxSlotGranularityMinutes)
	}

	if req.AdvanceBookingDays < domain.MinAdvanceBookingDays ||
		req.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	if req.MinNoticeMinutes < domain.MinNoticeMinutesLow ||
		req.MinNoticeMinutes > domain.MinNoticeMinutesHigh {
		return fmt.Errorf("%w: minNoticeMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinNoticeMinutesLow, domain.MinNoticeMinutesHigh)
	}

	return nil
}
