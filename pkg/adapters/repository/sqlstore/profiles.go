package sqlstore

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

const profilesTable = "profiles"

var profileColumns = []string{"id", "email", "username", "full_name", "avatar_url", "created_at", "updated_at"}

func scanProfile(row scanner) (domain.Profile, error) {
	var (
		p                domain.Profile
		created, updated timestamp
	)
	if err := row.Scan(&p.ID, &p.Email, &p.Username, &p.FullName, &p.AvatarURL, &created, &updated); err != nil {
		return p, err
	}
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	return p, nil
}

func (s *Store) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	q := s.sb.Insert(profilesTable).
		Columns(profileColumns...).
		Values(profile.ID, profile.Email, profile.Username, profile.FullName, profile.AvatarURL,
			dbTime(profile.CreatedAt), dbTime(profile.UpdatedAt))

	_, err := exec(ctx, s.db, q)
	return mapError(err, "profile", profile.Username)
}

func (s *Store) getProfile(ctx context.Context, col, value string) (*domain.Profile, error) {
	q := s.sb.Select(profileColumns...).From(profilesTable).Where(squirrel.Eq{col: value})

	p, err := scanProfile(queryRow(ctx, s.db, q))
	if err != nil {
		return nil, mapError(err, "profile", value)
	}
	return &p, nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return s.getProfile(ctx, "id", id)
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return s.getProfile(ctx, "email", email)
}

func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return s.getProfile(ctx, "username", username)
}

// UpdateProfile writes the display fields. Email and username never change.
func (s *Store) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	q := s.sb.Update(profilesTable).
		Set("full_name", profile.FullName).
		Set("avatar_url", profile.AvatarURL).
		Set("updated_at", dbTime(profile.UpdatedAt)).
		Where(squirrel.Eq{"id": profile.ID})

	res, err := exec(ctx, s.db, q)
	if err == nil {
		err = expectOne(res)
	}
	return mapError(err, "profile", profile.ID)
}
