package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

const pagesTable = "landing_pages"

var pageColumns = []string{
	"id", "owner_id", "slug", "title", "bio", "theme", "avatar_url", "is_default",
	"customization", "pixel", "created_at", "updated_at",
}

func scanPage(row scanner) (domain.LandingPage, error) {
	var (
		p                domain.LandingPage
		customization    string
		pixel            sql.NullString
		created, updated timestamp
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Slug, &p.Title, &p.Bio, &p.Theme, &p.AvatarURL, &p.IsDefault,
		&customization, &pixel, &created, &updated)
	if err != nil {
		return p, err
	}

	if customization != "" {
		if err := json.Unmarshal([]byte(customization), &p.Customization); err != nil {
			return p, fmt.Errorf("decode customization: %w", err)
		}
	}
	if pixel.Valid && pixel.String != "" {
		p.Pixel = &domain.PixelConfig{}
		if err := json.Unmarshal([]byte(pixel.String), p.Pixel); err != nil {
			return p, fmt.Errorf("decode pixel: %w", err)
		}
	}
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	return p, nil
}

func encodePage(p *domain.LandingPage) (customization string, pixel sql.NullString, err error) {
	raw, err := json.Marshal(p.Customization)
	if err != nil {
		return "", pixel, err
	}
	if p.Pixel != nil {
		rawPixel, err := json.Marshal(p.Pixel)
		if err != nil {
			return "", pixel, err
		}
		pixel = sql.NullString{String: string(rawPixel), Valid: true}
	}
	return string(raw), pixel, nil
}

func (s *Store) CreatePage(ctx context.Context, page *domain.LandingPage) error {
	customization, pixel, err := encodePage(page)
	if err != nil {
		return mapError(err, "page", page.ID)
	}

	q := s.sb.Insert(pagesTable).
		Columns(pageColumns...).
		Values(page.ID, page.OwnerID, page.Slug, page.Title, page.Bio, page.Theme, page.AvatarURL, page.IsDefault,
			customization, pixel, dbTime(page.CreatedAt), dbTime(page.UpdatedAt))

	_, err = exec(ctx, s.db, q)
	return mapError(err, "page", page.ID)
}

func (s *Store) getPage(ctx context.Context, where squirrel.Sqlizer, label string) (*domain.LandingPage, error) {
	q := s.sb.Select(pageColumns...).From(pagesTable).Where(where).Limit(1)

	p, err := scanPage(queryRow(ctx, s.db, q))
	if err != nil {
		return nil, mapError(err, "page", label)
	}
	return &p, nil
}

func (s *Store) GetPage(ctx context.Context, id string) (*domain.LandingPage, error) {
	return s.getPage(ctx, squirrel.Eq{"id": id}, id)
}

func (s *Store) GetPageBySlug(ctx context.Context, ownerID, slug string) (*domain.LandingPage, error) {
	return s.getPage(ctx, squirrel.Eq{"owner_id": ownerID, "slug": slug}, ownerID+"/"+slug)
}

func (s *Store) GetDefaultPage(ctx context.Context, ownerID string) (*domain.LandingPage, error) {
	return s.getPage(ctx, squirrel.Eq{"owner_id": ownerID, "is_default": true}, ownerID+"/default")
}

func (s *Store) ListPages(ctx context.Context, ownerID string) ([]domain.LandingPage, error) {
	q := s.sb.Select(pageColumns...).
		From(pagesTable).
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at ASC")

	rows, err := query(ctx, s.db, q)
	if err != nil {
		return nil, mapError(err, "owner", ownerID)
	}
	defer rows.Close()

	pages := []domain.LandingPage{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, mapError(err, "owner", ownerID)
		}
		pages = append(pages, p)
	}
	return pages, mapError(rows.Err(), "owner", ownerID)
}

func (s *Store) CountPages(ctx context.Context, ownerID string) (int, error) {
	q := s.sb.Select("COUNT(*)").From(pagesTable).Where(squirrel.Eq{"owner_id": ownerID})

	var n int
	if err := queryRow(ctx, s.db, q).Scan(&n); err != nil {
		return 0, mapError(err, "owner", ownerID)
	}
	return n, nil
}

// UpdatePage writes every mutable column. is_default is managed by
// SetDefaultPage.
func (s *Store) UpdatePage(ctx context.Context, page *domain.LandingPage) error {
	customization, pixel, err := encodePage(page)
	if err != nil {
		return mapError(err, "page", page.ID)
	}

	q := s.sb.Update(pagesTable).
		Set("slug", page.Slug).
		Set("title", page.Title).
		Set("bio", page.Bio).
		Set("theme", page.Theme).
		Set("avatar_url", page.AvatarURL).
		Set("customization", customization).
		Set("pixel", pixel).
		Set("updated_at", dbTime(page.UpdatedAt)).
		Where(squirrel.Eq{"id": page.ID, "owner_id": page.OwnerID})

	res, err := exec(ctx, s.db, q)
	if err == nil {
		err = expectOne(res)
	}
	return mapError(err, "page", page.ID)
}

// SetDefaultPage makes pageID the owner's only default page.
func (s *Store) SetDefaultPage(ctx context.Context, ownerID, pageID string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		unset := s.sb.Update(pagesTable).
			Set("is_default", false).
			Where(squirrel.Eq{"owner_id": ownerID, "is_default": true})
		if _, err := exec(ctx, tx, unset); err != nil {
			return err
		}

		set := s.sb.Update(pagesTable).
			Set("is_default", true).
			Where(squirrel.Eq{"id": pageID, "owner_id": ownerID})
		res, err := exec(ctx, tx, set)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
	return mapError(err, "page", pageID)
}

// DeletePage removes the page with its links and analytics events.
func (s *Store) DeletePage(ctx context.Context, id, ownerID string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := exec(ctx, tx, s.sb.Delete(pagesTable).Where(squirrel.Eq{"id": id, "owner_id": ownerID}))
		if err != nil {
			return err
		}
		if err := expectOne(res); err != nil {
			return err
		}

		for _, table := range []string{linksTable, pageViewsTable, linkClicksTable} {
			if _, err := exec(ctx, tx, s.sb.Delete(table).Where(squirrel.Eq{"page_id": id})); err != nil {
				return err
			}
		}
		return nil
	})
	return mapError(err, "page", id)
}
