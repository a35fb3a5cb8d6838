package store

import (
	"context"
)

// Toggle serializes concurrent reactions on the same (viewer, target)
// through a row lock; the unique index on (viewer_id, target_kind,
// target_id) backstops creation races so two racing calls can never
// leave two rows.
func (s *PostgresStore) Toggle(ctx context.Context, viewerID string, t Target, desired State) (State, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return StateNeutral, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current State
	err = tx.QueryRow(ctx, `
SELECT state FROM engagements
WHERE viewer_id = $1 AND target_kind = $2 AND target_id = $3
FOR UPDATE`, viewerID, t.Kind, t.ID).Scan(&current)

	var result State
	switch {
	case isNoRows(err):
		_, err = tx.Exec(ctx, `
INSERT INTO engagements (viewer_id, target_kind, target_id, state)
VALUES ($1, $2, $3, $4)
ON CONFLICT (viewer_id, target_kind, target_id) DO UPDATE SET
  state = EXCLUDED.state,
  updated_at = now()`, viewerID, t.Kind, t.ID, desired)
		result = desired
	case err != nil:
		return StateNeutral, err
	case current == desired:
		_, err = tx.Exec(ctx, `
DELETE FROM engagements
WHERE viewer_id = $1 AND target_kind = $2 AND target_id = $3`, viewerID, t.Kind, t.ID)
		result = StateNeutral
	default:
		_, err = tx.Exec(ctx, `
UPDATE engagements SET state = $4, updated_at = now()
WHERE viewer_id = $1 AND target_kind = $2 AND target_id = $3`, viewerID, t.Kind, t.ID, desired)
		result = desired
	}
	if err != nil {
		return StateNeutral, err
	}
	return result, tx.Commit(ctx)
}

func (s *PostgresStore) Counts(ctx context.Context, t Target) (Counts, error) {
	var c Counts
	err := s.pool.QueryRow(ctx, `
SELECT COUNT(*) FILTER (WHERE state = 'liked'),
       COUNT(*) FILTER (WHERE state = 'disliked')
FROM engagements WHERE target_kind = $1 AND target_id = $2`, t.Kind, t.ID).
		Scan(&c.Likes, &c.Dislikes)
	return c, err
}

func (s *PostgresStore) CountsFor(ctx context.Context, ts []Target) (map[Target]Counts, error) {
	out := make(map[Target]Counts, len(ts))
	if len(ts) == 0 {
		return out, nil
	}
	kinds := make([]string, len(ts))
	ids := make([]string, len(ts))
	for i, t := range ts {
		kinds[i] = string(t.Kind)
		ids[i] = t.ID
	}
	rows, err := s.pool.Query(ctx, `
SELECT target_kind, target_id,
       COUNT(*) FILTER (WHERE state = 'liked'),
       COUNT(*) FILTER (WHERE state = 'disliked')
FROM engagements
WHERE (target_kind, target_id) IN (SELECT unnest($1::text[]), unnest($2::text[]))
GROUP BY target_kind, target_id`, kinds, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t Target
		var c Counts
		if err := rows.Scan(&t.Kind, &t.ID, &c.Likes, &c.Dislikes); err != nil {
			return nil, err
		}
		out[t] = c
	}
	return out, rows.Err()
}

func (s *PostgresStore) ViewerStates(ctx context.Context, viewerID string, ts []Target) (map[Target]State, error) {
	out := make(map[Target]State, len(ts))
	for _, t := range ts {
		out[t] = StateNeutral
	}
	if len(ts) == 0 || viewerID == "" {
		return out, nil
	}
	kinds := make([]string, len(ts))
	ids := make([]string, len(ts))
	for i, t := range ts {
		kinds[i] = string(t.Kind)
		ids[i] = t.ID
	}
	rows, err := s.pool.Query(ctx, `
SELECT target_kind, target_id, state
FROM engagements
WHERE viewer_id = $3
  AND (target_kind, target_id) IN (SELECT unnest($1::text[]), unnest($2::text[]))`,
		kinds, ids, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t Target
		var st State
		if err := rows.Scan(&t.Kind, &t.ID, &st); err != nil {
			return nil, err
		}
		out[t] = st
	}
	return out, rows.Err()
}

func (s *PostgresStore) LikedVideoIDs(ctx context.Context, viewerID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
SELECT target_id FROM engagements
WHERE viewer_id = $1 AND target_kind = 'video' AND state = 'liked'
ORDER BY updated_at DESC`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) DeleteForTargets(ctx context.Context, ts []Target) error {
	if len(ts) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := deleteEngagementTx(ctx, tx, ts); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ── Subscriptions ──────────────────────────────────────────────────────────

func (s *PostgresStore) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`, subscriberID, channelID)
	if err != nil {
		return false, err
	}

	subscribed := false
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `
INSERT INTO subscriptions (subscriber_id, channel_id)
VALUES ($1, $2)
ON CONFLICT (subscriber_id, channel_id) DO NOTHING`, subscriberID, channelID); err != nil {
			return false, err
		}
		subscribed = true
	}
	return subscribed, tx.Commit(ctx)
}

func (s *PostgresStore) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`,
		subscriberID, channelID).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) Channels(ctx context.Context, subscriberID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT channel_id FROM subscriptions WHERE subscriber_id = $1 ORDER BY channel_id`, subscriberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var ch string
		if err := rows.Scan(&ch); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountSubscribers(ctx context.Context, channelID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID).Scan(&n)
	return n, err
}

// ── Profiles ───────────────────────────────────────────────────────────────

func (s *PostgresStore) UpsertProfile(ctx context.Context, p Profile) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO profiles (id, display_name, avatar)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
  display_name = EXCLUDED.display_name,
  avatar = EXCLUDED.avatar`, p.ID, p.DisplayName, p.Avatar)
	return err
}

func (s *PostgresStore) Profiles(ctx context.Context, ids []string) (map[string]Profile, error) {
	out := make(map[string]Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, display_name, avatar FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Avatar); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
