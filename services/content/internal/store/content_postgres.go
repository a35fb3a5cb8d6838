package store

import (
	"context"
	"strconv"
	"strings"
)

// ── Videos ─────────────────────────────────────────────────────────────────

const videoColumns = `id, owner_id, title, description, video_file, thumbnail, views, published, created_at`

func (s *PostgresStore) CreateVideo(ctx context.Context, v Video) (Video, error) {
	const q = `INSERT INTO videos (owner_id, title, description, video_file, thumbnail, published)
	           VALUES ($1, $2, $3, $4, $5, $6)
	           RETURNING ` + videoColumns
	row := s.pool.QueryRow(ctx, q, v.OwnerID, v.Title, v.Description, v.VideoFile, v.Thumbnail, v.Published)
	var out Video
	err := row.Scan(&out.ID, &out.OwnerID, &out.Title, &out.Description,
		&out.VideoFile, &out.Thumbnail, &out.Views, &out.Published, &out.CreatedAt)
	return out, err
}

func (s *PostgresStore) GetVideo(ctx context.Context, id string) (Video, error) {
	const q = `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	var v Video
	err := s.pool.QueryRow(ctx, q, id).Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description,
		&v.VideoFile, &v.Thumbnail, &v.Views, &v.Published, &v.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return Video{}, ErrNotFound
		}
		return Video{}, err
	}
	return v, nil
}

func (s *PostgresStore) ListVideos(ctx context.Context, f VideoFilter) ([]Video, error) {
	conds := []string{"TRUE"}
	args := []any{}
	if f.PublishedOnly {
		conds = append(conds, "published")
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		conds = append(conds, "owner_id = $"+strconv.Itoa(len(args)))
	}
	if f.OwnerIn != nil {
		if len(f.OwnerIn) == 0 {
			return []Video{}, nil
		}
		args = append(args, f.OwnerIn)
		conds = append(conds, "owner_id = ANY($"+strconv.Itoa(len(args))+")")
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []Video{}, nil
		}
		args = append(args, f.IDs)
		conds = append(conds, "id = ANY($"+strconv.Itoa(len(args))+")")
	}

	q := `SELECT ` + videoColumns + ` FROM videos WHERE ` + strings.Join(conds, " AND ")
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Video{}
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description,
			&v.VideoFile, &v.Thumbnail, &v.Views, &v.Published, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PostgresStore) IncrementViews(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountVideosByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE owner_id = $1`, ownerID).Scan(&n)
	return n, err
}

func (s *PostgresStore) SumViewsByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(views), 0) FROM videos WHERE owner_id = $1`, ownerID).Scan(&n)
	return n, err
}

// DeleteVideo cascades in one transaction: engagement rows for the video
// and its comments, then the comments, then the video. A cancelled
// context rolls the whole operation back.
func (s *PostgresStore) DeleteVideo(ctx context.Context, id, ownerID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	err = tx.QueryRow(ctx, `SELECT owner_id FROM videos WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	if owner != ownerID {
		return ErrForbidden
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM engagements
WHERE (target_kind = 'video' AND target_id = $1)
   OR (target_kind = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = $1))`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE video_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ── Tweets ─────────────────────────────────────────────────────────────────

func (s *PostgresStore) CreateTweet(ctx context.Context, t Tweet) (Tweet, error) {
	const q = `INSERT INTO tweets (owner_id, body) VALUES ($1, $2)
	           RETURNING id, owner_id, body, created_at`
	var out Tweet
	err := s.pool.QueryRow(ctx, q, t.OwnerID, t.Body).
		Scan(&out.ID, &out.OwnerID, &out.Body, &out.CreatedAt)
	return out, err
}

func (s *PostgresStore) GetTweet(ctx context.Context, id string) (Tweet, error) {
	var t Tweet
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, body, created_at FROM tweets WHERE id = $1`, id).
		Scan(&t.ID, &t.OwnerID, &t.Body, &t.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return Tweet{}, ErrNotFound
		}
		return Tweet{}, err
	}
	return t, nil
}

func (s *PostgresStore) ListTweets(ctx context.Context, ownerID string) ([]Tweet, error) {
	q := `SELECT id, owner_id, body, created_at FROM tweets`
	args := []any{}
	if ownerID != "" {
		q += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Tweet{}
	for rows.Next() {
		var t Tweet
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Body, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteTweet(ctx context.Context, id, ownerID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	err = tx.QueryRow(ctx, `SELECT owner_id FROM tweets WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	if owner != ownerID {
		return ErrForbidden
	}

	if err := deleteEngagementTx(ctx, tx, []Target{{Kind: KindTweet, ID: id}}); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ── Comments ───────────────────────────────────────────────────────────────

func (s *PostgresStore) CreateComment(ctx context.Context, c Comment) (Comment, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)`, c.VideoID).Scan(&exists); err != nil {
		return Comment{}, err
	}
	if !exists {
		return Comment{}, ErrNotFound
	}

	const q = `INSERT INTO comments (owner_id, video_id, body) VALUES ($1, $2, $3)
	           RETURNING id, owner_id, video_id, body, created_at`
	var out Comment
	err := s.pool.QueryRow(ctx, q, c.OwnerID, c.VideoID, c.Body).
		Scan(&out.ID, &out.OwnerID, &out.VideoID, &out.Body, &out.CreatedAt)
	return out, err
}

func (s *PostgresStore) GetComment(ctx context.Context, id string) (Comment, error) {
	var c Comment
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, video_id, body, created_at FROM comments WHERE id = $1`, id).
		Scan(&c.ID, &c.OwnerID, &c.VideoID, &c.Body, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return c, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, videoID string) ([]Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, video_id, body, created_at FROM comments WHERE video_id = $1`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.VideoID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountComments(ctx context.Context, videoIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(videoIDs))
	if len(videoIDs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT video_id, COUNT(*) FROM comments WHERE video_id = ANY($1) GROUP BY video_id`, videoIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteComment(ctx context.Context, id, ownerID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	err = tx.QueryRow(ctx, `SELECT owner_id FROM comments WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	if owner != ownerID {
		return ErrForbidden
	}

	if err := deleteEngagementTx(ctx, tx, []Target{{Kind: KindComment, ID: id}}); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
