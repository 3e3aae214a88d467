package sqlstore

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

const linksTable = "links"

var linkColumns = []string{
	"id", "page_id", "owner_id", "kind", "title", "url", "is_active", "position", "created_at", "updated_at",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (domain.LinkEntry, error) {
	var (
		e                domain.LinkEntry
		kind             string
		created, updated timestamp
	)
	err := row.Scan(&e.ID, &e.PageID, &e.OwnerID, &kind, &e.Title, &e.URL, &e.IsActive, &e.Position, &created, &updated)
	if err != nil {
		return e, err
	}
	e.Kind = domain.LinkKind(kind)
	e.CreatedAt = created.Time
	e.UpdatedAt = updated.Time
	return e, nil
}

func (s *Store) ListLinks(ctx context.Context, pageID string) ([]domain.LinkEntry, error) {
	q := s.sb.Select(linkColumns...).
		From(linksTable).
		Where(squirrel.Eq{"page_id": pageID}).
		OrderBy("position ASC", "created_at ASC")

	rows, err := query(ctx, s.db, q)
	if err != nil {
		return nil, mapError(err, "page", pageID)
	}
	defer rows.Close()

	links := []domain.LinkEntry{}
	for rows.Next() {
		e, err := scanLink(rows)
		if err != nil {
			return nil, mapError(err, "page", pageID)
		}
		links = append(links, e)
	}
	return links, mapError(rows.Err(), "page", pageID)
}

func (s *Store) GetLink(ctx context.Context, id string) (*domain.LinkEntry, error) {
	q := s.sb.Select(linkColumns...).From(linksTable).Where(squirrel.Eq{"id": id})

	e, err := scanLink(queryRow(ctx, s.db, q))
	if err != nil {
		return nil, mapError(err, "link", id)
	}
	return &e, nil
}

func (s *Store) CreateLink(ctx context.Context, link *domain.LinkEntry) error {
	q := s.sb.Insert(linksTable).
		Columns(linkColumns...).
		Values(link.ID, link.PageID, link.OwnerID, string(link.Kind), link.Title, link.URL,
			link.IsActive, link.Position, dbTime(link.CreatedAt), dbTime(link.UpdatedAt))

	_, err := exec(ctx, s.db, q)
	return mapError(err, "link", link.ID)
}

// UpdateLink writes title, url and is_active. Position only changes through
// ReorderLinks.
func (s *Store) UpdateLink(ctx context.Context, link *domain.LinkEntry) error {
	q := s.sb.Update(linksTable).
		Set("title", link.Title).
		Set("url", link.URL).
		Set("is_active", link.IsActive).
		Set("updated_at", dbTime(link.UpdatedAt)).
		Where(squirrel.Eq{"id": link.ID, "owner_id": link.OwnerID})

	res, err := exec(ctx, s.db, q)
	if err == nil {
		err = expectOne(res)
	}
	return mapError(err, "link", link.ID)
}

func (s *Store) DeleteLink(ctx context.Context, id, ownerID string) error {
	q := s.sb.Delete(linksTable).Where(squirrel.Eq{"id": id, "owner_id": ownerID})

	res, err := exec(ctx, s.db, q)
	if err == nil {
		err = expectOne(res)
	}
	return mapError(err, "link", id)
}

// ReorderLinks writes every position in one transaction. If any id is
// missing or owned by someone else nothing is written.
func (s *Store) ReorderLinks(ctx context.Context, positions []domain.LinkPosition, ownerID string) error {
	now := dbTime(timeNow())
	var failedID string

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, p := range positions {
			q := s.sb.Update(linksTable).
				Set("position", p.Position).
				Set("updated_at", now).
				Where(squirrel.Eq{"id": p.ID, "owner_id": ownerID})

			res, err := exec(ctx, tx, q)
			if err == nil {
				err = expectOne(res)
			}
			if err != nil {
				failedID = p.ID
				return err
			}
		}
		return nil
	})
	return mapError(err, "link", failedID)
}
