package sqlstore

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

const (
	pageViewsTable  = "page_views"
	linkClicksTable = "link_clicks"
)

// RecordPageView stores view unless the same visitor already viewed the page
// at or after since. It reports whether the row was written.
func (s *Store) RecordPageView(ctx context.Context, view *domain.PageView, since time.Time) (bool, error) {
	ok, err := s.insertOnce(ctx, pageViewsTable,
		[]string{"id", "page_id", "owner_id", "ip_hash", "user_agent", "referrer"},
		[]any{view.ID, view.PageID, view.OwnerID, view.IPHash, view.UserAgent, view.Referrer},
		view.CreatedAt,
		squirrel.And{
			squirrel.Eq{"page_id": view.PageID, "ip_hash": view.IPHash},
			squirrel.GtOrEq{"occurred_at": millis(since)},
		})
	return ok, mapError(err, "page_view", view.ID)
}

// RecordClick stores click unless the same visitor already clicked the link
// at or after since.
func (s *Store) RecordClick(ctx context.Context, click *domain.LinkClick, since time.Time) (bool, error) {
	ok, err := s.insertOnce(ctx, linkClicksTable,
		[]string{"id", "page_id", "link_id", "owner_id", "ip_hash"},
		[]any{click.ID, click.PageID, click.LinkID, click.OwnerID, click.IPHash},
		click.CreatedAt,
		squirrel.And{
			squirrel.Eq{"link_id": click.LinkID, "ip_hash": click.IPHash},
			squirrel.GtOrEq{"occurred_at": millis(since)},
		})
	return ok, mapError(err, "link_click", click.ID)
}

// insertOnce writes one event row with INSERT ... SELECT ... WHERE NOT EXISTS,
// so the duplicate check and the write are a single statement.
func (s *Store) insertOnce(ctx context.Context, table string, cols []string, vals []any, at time.Time, recent squirrel.Sqlizer) (bool, error) {
	row := squirrel.Select()
	for _, v := range vals {
		row = row.Column("?", v)
	}
	// Untyped parameters in a select list default to text on PostgreSQL.
	row = row.Column("CAST(? AS BIGINT)", millis(at)).
		Where(squirrel.Expr("NOT EXISTS (?)", squirrel.Select("1").From(table).Where(recent)))

	q := s.sb.Insert(table).
		Columns(append(cols, "occurred_at")...).
		Select(row)

	res, err := exec(ctx, s.db, q)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func inRange(r domain.DateRange) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.GtOrEq{"occurred_at": millis(r.Start)},
		squirrel.Lt{"occurred_at": millis(r.End)},
	}
}

func (s *Store) ListPageViews(ctx context.Context, pageID string, r domain.DateRange) ([]domain.PageView, error) {
	q := s.sb.Select("id", "page_id", "owner_id", "ip_hash", "user_agent", "referrer", "occurred_at").
		From(pageViewsTable).
		Where(squirrel.Eq{"page_id": pageID}).
		Where(inRange(r)).
		OrderBy("occurred_at ASC")

	rows, err := query(ctx, s.db, q)
	if err != nil {
		return nil, mapError(err, "page", pageID)
	}
	defer rows.Close()

	var views []domain.PageView
	for rows.Next() {
		var (
			v  domain.PageView
			at int64
		)
		if err := rows.Scan(&v.ID, &v.PageID, &v.OwnerID, &v.IPHash, &v.UserAgent, &v.Referrer, &at); err != nil {
			return nil, mapError(err, "page", pageID)
		}
		v.CreatedAt = fromMillis(at)
		views = append(views, v)
	}
	return views, mapError(rows.Err(), "page", pageID)
}

func (s *Store) ListClicks(ctx context.Context, pageID string, r domain.DateRange) ([]domain.LinkClick, error) {
	q := s.sb.Select("id", "page_id", "link_id", "owner_id", "ip_hash", "occurred_at").
		From(linkClicksTable).
		Where(squirrel.Eq{"page_id": pageID}).
		Where(inRange(r)).
		OrderBy("occurred_at ASC")

	rows, err := query(ctx, s.db, q)
	if err != nil {
		return nil, mapError(err, "page", pageID)
	}
	defer rows.Close()

	var clicks []domain.LinkClick
	for rows.Next() {
		var (
			c  domain.LinkClick
			at int64
		)
		if err := rows.Scan(&c.ID, &c.PageID, &c.LinkID, &c.OwnerID, &c.IPHash, &at); err != nil {
			return nil, mapError(err, "page", pageID)
		}
		c.CreatedAt = fromMillis(at)
		clicks = append(clicks, c)
	}
	return clicks, mapError(rows.Err(), "page", pageID)
}
