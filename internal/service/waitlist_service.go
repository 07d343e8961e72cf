package service

import (
	"context"
	"errors"

	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/logging"
	"ironhouse/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetMyWaitlist lists the caller's active entries (waiting or offered), newest first.
func (s *bookingService) GetMyWaitlist(ctx context.Context, userID primitive.ObjectID) ([]domain.WaitlistEntry, error) {
	member, err := s.memberFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.waitlistRepo.ListByMember(ctx, member.ID, domain.WaitlistWaiting, domain.WaitlistOffered)
}

// LeaveWaitlist marks the caller's entry expired. Entries are never deleted.
func (s *bookingService) LeaveWaitlist(ctx context.Context, userID, entryID primitive.ObjectID) error {
	entry, err := s.waitlistRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWaitlistEntryNotFound
		}
		return err
	}

	if err := s.ensureOwner(ctx, userID, entry.Member); err != nil {
		return err
	}
	if !entry.Active() {
		return ErrWaitlistEntryInactive
	}

	if err := s.waitlistRepo.UpdateStatus(ctx, entry.ID, domain.WaitlistExpired); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWaitlistEntryNotFound
		}
		return err
	}

	logging.FromContext(ctx).InfoContext(ctx, "Member left waitlist", "waitlistId", entry.ID.Hex())
	return nil
}

// ExpireStaleWaitlist expires waiting entries whose session has already ended.
func (s *bookingService) ExpireStaleWaitlist(ctx context.Context) (int64, error) {
	n, err := s.waitlistRepo.ExpireWaitingBefore(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		waitlistExpiredTotal.Add(float64(n))
	}
	return n, nil
}
