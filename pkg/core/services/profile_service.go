package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/core/validate"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

var _ ports.ProfileService = (*ProfileService)(nil)

const maxSequentialSuffix = 20

type ProfileService struct {
	profiles ports.ProfileRepository
	cache    ports.PublicPageCache
	log      *logger.Logger
	now      func() time.Time
}

func NewProfileService(profiles ports.ProfileRepository, cache ports.PublicPageCache, log *logger.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		cache:    cache,
		log:      log.With(map[string]any{"component": "profile_service"}),
		now:      time.Now,
	}
}

// EnsureProfile returns the profile for email, creating it on first login.
// The username comes from the email's local part; collisions get a numeric
// suffix.
func (s *ProfileService) EnsureProfile(ctx context.Context, email, fullName, avatarURL string) (*domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("email", "must be an email address")
	}

	existing, err := s.profiles.GetProfileByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	username, err := s.freeUsername(ctx, usernameFromEmail(email))
	if err != nil {
		return nil, err
	}
	if avatarURL != "" && !validate.IsHTTPURL(avatarURL) {
		avatarURL = ""
	}

	now := s.now().UTC()
	profile := &domain.Profile{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		FullName:  strings.TrimSpace(fullName),
		AvatarURL: avatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		// A concurrent first login may have won the race.
		if errors.Is(err, domain.ErrAlreadyExists) {
			if p, lookupErr := s.profiles.GetProfileByEmail(ctx, email); lookupErr == nil {
				return p, nil
			}
		}
		return nil, err
	}

	s.log.With(map[string]any{"profile_id": profile.ID, "username": username}).Info("profile created")
	return profile, nil
}

func (s *ProfileService) freeUsername(ctx context.Context, base string) (string, error) {
	taken := func(candidate string) (bool, error) {
		_, err := s.profiles.GetProfileByUsername(ctx, candidate)
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	for i := 1; i <= maxSequentialSuffix; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		if validate.Username(candidate) != nil {
			continue
		}
		busy, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !busy {
			return candidate, nil
		}
	}

	suffix, err := randomDigits(6)
	if err != nil {
		return "", err
	}
	return base + "-" + suffix, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return s.profiles.GetProfile(ctx, id)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
	if err := validate.ProfilePatch(patch); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.FullName != nil {
		profile.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.AvatarURL != nil {
		profile.AvatarURL = *patch.AvatarURL
	}
	profile.UpdatedAt = s.now().UTC()

	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidateOwner(id)
	}
	return profile, nil
}
