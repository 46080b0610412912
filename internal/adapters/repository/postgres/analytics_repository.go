// Package postgres implements the read-only analytics store over the
// transactional poll database. Every method is a single aggregation
// query; nothing here writes.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/poll/analytics/internal/core/domain"
	"github.com/poll/analytics/internal/core/ports"
)

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) ports.AnalyticsStore {
	return &analyticsRepository{
		db: db,
	}
}

func (r *analyticsRepository) ListPolls(ctx context.Context, ownerID int64) ([]domain.Poll, error) {
	query := `
		SELECT id, question, owner_id, COALESCE(view_count, 0), created_at
		FROM polls
		WHERE owner_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var polls []domain.Poll
	for rows.Next() {
		var poll domain.Poll
		if err := rows.Scan(&poll.ID, &poll.Question, &poll.OwnerID, &poll.ViewCount, &poll.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

func (r *analyticsRepository) GetPoll(ctx context.Context, pollID int64) (*domain.Poll, error) {
	query := `
		SELECT id, question, owner_id, COALESCE(view_count, 0), created_at
		FROM polls
		WHERE id = $1
	`
	var poll domain.Poll
	err := r.db.QueryRowContext(ctx, query, pollID).Scan(
		&poll.ID, &poll.Question, &poll.OwnerID, &poll.ViewCount, &poll.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return &poll, nil
}

func (r *analyticsRepository) CountVotes(ctx context.Context, f ports.VoteFilter) (int, error) {
	query := `
		SELECT COUNT(v.id)
		FROM votes v
		JOIN options o ON v.option_id = o.id
		JOIN polls p ON o.poll_id = p.id
	`
	query, args := applyVoteFilter(query, f)

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

func (r *analyticsRepository) CountDistinctVoters(ctx context.Context, f ports.VoteFilter) (int, error) {
	query := `
		SELECT COUNT(DISTINCT v.user_id)
		FROM votes v
		JOIN options o ON v.option_id = o.id
		JOIN polls p ON o.poll_id = p.id
	`
	query, args := applyVoteFilter(query, f)

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct voters: %w", err)
	}
	return count, nil
}

func (r *analyticsRepository) VoteDistribution(ctx context.Context, pollID int64) (map[string]int, error) {
	// LEFT JOIN keeps options with zero votes in the distribution.
	query := `
		SELECT o.text, COUNT(v.id)
		FROM options o
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.text
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vote distribution: %w", err)
	}
	defer rows.Close()

	distribution := make(map[string]int)
	for rows.Next() {
		var text string
		var count int
		if err := rows.Scan(&text, &count); err != nil {
			return nil, fmt.Errorf("failed to scan distribution row: %w", err)
		}
		distribution[text] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distribution: %w", err)
	}
	return distribution, nil
}

func (r *analyticsRepository) DailyVoteCounts(ctx context.Context, ownerID int64, start, end time.Time) ([]domain.DailyVoteCount, error) {
	query := `
		SELECT to_char(date_trunc('day', v.created_at), 'YYYY-MM-DD') AS vote_date,
		       COUNT(v.id),
		       COUNT(DISTINCT v.user_id)
		FROM votes v
		JOIN options o ON v.option_id = o.id
		JOIN polls p ON o.poll_id = p.id
		WHERE p.owner_id = $1 AND v.created_at >= $2 AND v.created_at <= $3
		GROUP BY vote_date
		ORDER BY vote_date
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily vote counts: %w", err)
	}
	defer rows.Close()

	var daily []domain.DailyVoteCount
	for rows.Next() {
		var day domain.DailyVoteCount
		if err := rows.Scan(&day.Date, &day.VoteCount, &day.UniqueVoters); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		daily = append(daily, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily counts: %w", err)
	}
	return daily, nil
}

func (r *analyticsRepository) HourlyVoteCounts(ctx context.Context, ownerID int64, start, end time.Time) ([]domain.HourVoteCount, error) {
	query := `
		SELECT EXTRACT(HOUR FROM v.created_at)::int AS vote_hour,
		       COUNT(v.id) AS vote_count
		FROM votes v
		JOIN options o ON v.option_id = o.id
		JOIN polls p ON o.poll_id = p.id
		WHERE p.owner_id = $1 AND v.created_at >= $2 AND v.created_at <= $3
		GROUP BY vote_hour
		ORDER BY vote_count DESC, vote_hour
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hourly vote counts: %w", err)
	}
	defer rows.Close()

	var hours []domain.HourVoteCount
	for rows.Next() {
		var hour domain.HourVoteCount
		if err := rows.Scan(&hour.Hour, &hour.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan hourly count: %w", err)
		}
		hours = append(hours, hour)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hourly counts: %w", err)
	}
	return hours, nil
}

func (r *analyticsRepository) PopularPolls(ctx context.Context, limit int, cutoff time.Time) ([]domain.PopularPollRow, error) {
	// INNER JOIN on votes: polls without votes never rank.
	query := `
		SELECT p.id, p.question, p.owner_id, COALESCE(p.view_count, 0), p.created_at,
		       u.username,
		       COUNT(v.id) AS vote_count,
		       (SELECT COUNT(*) FROM options oc WHERE oc.poll_id = p.id) AS option_count
		FROM polls p
		JOIN options o ON o.poll_id = p.id
		JOIN votes v ON v.option_id = o.id
		JOIN users u ON u.id = p.owner_id
		WHERE p.created_at >= $1
		GROUP BY p.id, u.username
		ORDER BY vote_count DESC, p.id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch popular polls: %w", err)
	}
	defer rows.Close()

	var popular []domain.PopularPollRow
	for rows.Next() {
		var row domain.PopularPollRow
		if err := rows.Scan(
			&row.Poll.ID, &row.Poll.Question, &row.Poll.OwnerID, &row.Poll.ViewCount, &row.Poll.CreatedAt,
			&row.OwnerUsername, &row.VoteCount, &row.OptionCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan popular poll: %w", err)
		}
		popular = append(popular, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating popular polls: %w", err)
	}
	return popular, nil
}

func (r *analyticsRepository) RecentVotes(ctx context.Context, ownerID int64, limit int) ([]domain.RecentVote, error) {
	query := `
		SELECT v.created_at, p.id, p.question
		FROM votes v
		JOIN options o ON v.option_id = o.id
		JOIN polls p ON o.poll_id = p.id
		WHERE p.owner_id = $1
		ORDER BY v.created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.RecentVote
	for rows.Next() {
		var vote domain.RecentVote
		if err := rows.Scan(&vote.CreatedAt, &vote.PollID, &vote.PollQuestion); err != nil {
			return nil, fmt.Errorf("failed to scan recent vote: %w", err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent votes: %w", err)
	}
	return votes, nil
}

func (r *analyticsRepository) VoteTimes(ctx context.Context, pollID int64) ([]time.Time, error) {
	query := `
		SELECT v.created_at
		FROM votes v
		JOIN options o ON v.option_id = o.id
		WHERE o.poll_id = $1
		ORDER BY v.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vote times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan vote time: %w", err)
		}
		times = append(times, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote times: %w", err)
	}
	return times, nil
}

// periodFormats maps an aggregation period to the to_char format of its
// label. The period string itself is never interpolated unchecked.
var periodFormats = map[string]string{
	"hour":  `YYYY-MM-DD HH24:00`,
	"day":   `YYYY-MM-DD`,
	"week":  `IYYY-"W"IW`,
	"month": `YYYY-MM`,
}

func (r *analyticsRepository) PeriodCounts(ctx context.Context, q ports.PeriodQuery) ([]domain.PeriodCount, error) {
	format, ok := periodFormats[q.Period]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPeriod, q.Period)
	}

	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.PollID != 0 {
		conditions = append(conditions, "o.poll_id = "+arg(q.PollID))
	}
	if q.OwnerID != 0 {
		conditions = append(conditions, "p.owner_id = "+arg(q.OwnerID))
	}
	if !q.Start.IsZero() {
		conditions = append(conditions, "v.created_at >= "+arg(q.Start))
	}
	if !q.End.IsZero() {
		conditions = append(conditions, "v.created_at <= "+arg(q.End))
	}

	query := fmt.Sprintf(`
		SELECT to_char(date_trunc('%s', v.created_at), '%s') AS period,
		       COUNT(v.id)
		FROM votes v
		JOIN options o ON v.option_id = o.id
		JOIN polls p ON o.poll_id = p.id
	`, q.Period, format)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " GROUP BY period ORDER BY period"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by period: %w", err)
	}
	defer rows.Close()

	var periods []domain.PeriodCount
	for rows.Next() {
		var period domain.PeriodCount
		if err := rows.Scan(&period.Period, &period.Count); err != nil {
			return nil, fmt.Errorf("failed to scan period count: %w", err)
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period counts: %w", err)
	}
	return periods, nil
}

func applyVoteFilter(query string, f ports.VoteFilter) (string, []any) {
	switch {
	case f.PollID != 0:
		return query + " WHERE o.poll_id = $1", []any{f.PollID}
	case f.OwnerID != 0:
		return query + " WHERE p.owner_id = $1", []any{f.OwnerID}
	default:
		return query, nil
	}
}
