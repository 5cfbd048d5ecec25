package service

import (
	"errors"
	"strings"
	"time"

	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/validation"
)

var ErrInvalidTimezone = errors.New("unknown timezone")

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
	}
}

func (s *ProfileService) ByUserID(userID string) (*model.Profile, error) {
	return s.profileRepo.ByUserID(userID)
}

// Update sets name and timezone. An empty timezone keeps the stored one.
func (s *ProfileService) Update(userID, name, timezone string) (*model.Profile, error) {
	name = strings.TrimSpace(name)
	err := validation.ValidateName(name)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.ByUserID(userID)
	if err != nil {
		return nil, err
	}

	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		timezone = profile.Timezone
	}
	_, err = time.LoadLocation(timezone)
	if err != nil {
		return nil, ErrInvalidTimezone
	}

	err = s.profileRepo.Update(userID, name, timezone)
	if err != nil {
		return nil, err
	}

	return s.profileRepo.ByUserID(userID)
}
