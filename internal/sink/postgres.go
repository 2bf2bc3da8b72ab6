package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jimmeey2323/freeze-history/internal/logging"
)

// PostgresSink upserts the run into the freeze_records and
// session_cancellations tables. Records are keyed by purchased membership so
// re-runs converge instead of duplicating; cancellations are keyed by the
// (booking, type, cancelled_at) triple for the same reason.
type PostgresSink struct {
	pool *pgxpool.Pool
	log  *logging.Logger
}

// NewPostgresSink constructs the sink.
func NewPostgresSink(pool *pgxpool.Pool, log *logging.Logger) *PostgresSink {
	return &PostgresSink{pool: pool, log: log}
}

// Name identifies the sink in logs and metrics.
func (s *PostgresSink) Name() string { return "postgres" }

const schemaDDL = `
CREATE TABLE IF NOT EXISTS freeze_records (
  member_id bigint NOT NULL,
  bought_membership_id bigint NOT NULL,
  host_id text NOT NULL,
  member_name text,
  membership_id bigint,
  membership_name text,
  membership_type text,
  start_date timestamptz,
  end_date timestamptz,
  sessions_attended int NOT NULL DEFAULT 0,
  location_id bigint,
  location_name text,
  freeze_attempts int NOT NULL DEFAULT 0,
  frozen_days int NOT NULL DEFAULT 0,
  freeze_start_date timestamptz,
  freeze_end_date timestamptz,
  permitted_attempts int NOT NULL DEFAULT 0,
  permitted_days int NOT NULL DEFAULT 0,
  status text NOT NULL,
  run_id text NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (member_id, bought_membership_id)
);

CREATE INDEX IF NOT EXISTS freeze_records_status_idx
  ON freeze_records (status, updated_at DESC);

CREATE TABLE IF NOT EXISTS session_cancellations (
  booking_id bigint NOT NULL,
  cancellation_type text NOT NULL,
  cancelled_at timestamptz NOT NULL,
  member_id bigint,
  member_name text,
  host_id text,
  session_id bigint,
  session_name text,
  session_starts_at timestamptz,
  cancelled_by_user_id bigint,
  cancelled_by_user_name text,
  location_id bigint,
  location_name text,
  teacher_id bigint,
  teacher_name text,
  is_late_cancelled boolean,
  is_cancelled_after_cutoff boolean,
  membership_id bigint,
  membership_name text,
  bought_membership_id bigint,
  refund_money_credits double precision NOT NULL DEFAULT 0,
  refund_event_credits double precision NOT NULL DEFAULT 0,
  is_member_refunded boolean NOT NULL DEFAULT false,
  run_id text NOT NULL,
  PRIMARY KEY (booking_id, cancellation_type, cancelled_at)
);
`

// EnsureSchema creates the sink tables when they do not exist yet.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const upsertRecord = `INSERT INTO freeze_records (
        member_id, bought_membership_id, host_id, member_name, membership_id,
        membership_name, membership_type, start_date, end_date, sessions_attended,
        location_id, location_name, freeze_attempts, frozen_days,
        freeze_start_date, freeze_end_date, permitted_attempts, permitted_days,
        status, run_id, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
    ON CONFLICT (member_id, bought_membership_id) DO UPDATE SET
        host_id=EXCLUDED.host_id, member_name=EXCLUDED.member_name,
        membership_id=EXCLUDED.membership_id, membership_name=EXCLUDED.membership_name,
        membership_type=EXCLUDED.membership_type, start_date=EXCLUDED.start_date,
        end_date=EXCLUDED.end_date, sessions_attended=EXCLUDED.sessions_attended,
        location_id=EXCLUDED.location_id, location_name=EXCLUDED.location_name,
        freeze_attempts=EXCLUDED.freeze_attempts, frozen_days=EXCLUDED.frozen_days,
        freeze_start_date=EXCLUDED.freeze_start_date, freeze_end_date=EXCLUDED.freeze_end_date,
        permitted_attempts=EXCLUDED.permitted_attempts, permitted_days=EXCLUDED.permitted_days,
        status=EXCLUDED.status, run_id=EXCLUDED.run_id, updated_at=EXCLUDED.updated_at`

const upsertCancellation = `INSERT INTO session_cancellations (
        booking_id, cancellation_type, cancelled_at, member_id, member_name,
        host_id, session_id, session_name, session_starts_at,
        cancelled_by_user_id, cancelled_by_user_name, location_id, location_name,
        teacher_id, teacher_name, is_late_cancelled, is_cancelled_after_cutoff,
        membership_id, membership_name, bought_membership_id,
        refund_money_credits, refund_event_credits, is_member_refunded, run_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
    ON CONFLICT (booking_id, cancellation_type, cancelled_at) DO UPDATE SET
        member_name=EXCLUDED.member_name,
        cancelled_by_user_name=EXCLUDED.cancelled_by_user_name,
        is_member_refunded=EXCLUDED.is_member_refunded, run_id=EXCLUDED.run_id`

// Write upserts all records and cancellations in one transaction.
func (s *PostgresSink) Write(ctx context.Context, out Output) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range out.Records {
		batch.Queue(upsertRecord,
			rec.MemberID, rec.BoughtMembershipID, rec.HostID, rec.MemberName, rec.MembershipID,
			rec.MembershipName, rec.MembershipType, nullTime(rec.StartDate), nullTime(rec.EndDate), rec.SessionsAttended,
			rec.LocationID, rec.LocationName, rec.FreezeAttempts, rec.FrozenDays,
			nullTime(rec.FreezeStartDate), nullTime(rec.FreezeEndDate), rec.PermittedAttempts, rec.PermittedDays,
			string(rec.Status), out.RunID, out.GeneratedAt,
		)
	}
	for _, c := range out.Cancellations {
		batch.Queue(upsertCancellation,
			c.BookingID, c.CancellationType, c.CancelledAt, c.MemberID, c.MemberName,
			c.HostID, c.SessionID, c.SessionName, nullTime(c.SessionStartsAt),
			c.CancelledByUserID, c.CancelledByUserName, c.LocationID, c.LocationName,
			c.TeacherID, c.TeacherName, c.IsLateCancelled, c.IsCancelledAfterCutOff,
			c.MembershipID, c.MembershipName, c.BoughtMembershipID,
			c.RefundMoneyCredits, c.RefundEventCredits, c.IsMemberRefunded, out.RunID,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("upsert %d of %d: %w", i+1, batch.Len(), err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return tx.Commit(ctx)
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
