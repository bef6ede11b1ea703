package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements is applied in order and is idempotent. The bookings
// exclusion constraint is the single source of the overlap invariant: two
// rows for the same (tenant, staff) with intersecting [starts_at, ends_at)
// ranges cannot coexist while both are in an active status. btree_gist is
// needed so the gist index can carry the uuid equality columns.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,

	`CREATE TABLE IF NOT EXISTS tenants (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		slug       TEXT NOT NULL UNIQUE,
		timezone   TEXT NOT NULL DEFAULT 'UTC',
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS staff (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id    UUID NOT NULL REFERENCES tenants(id),
		display_name TEXT NOT NULL,
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_staff_tenant ON staff(tenant_id)`,

	`CREATE TABLE IF NOT EXISTS services (
		id                    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id             UUID NOT NULL REFERENCES tenants(id),
		name                  TEXT NOT NULL,
		duration_minutes      INT NOT NULL,
		buffer_before_minutes INT NOT NULL DEFAULT 0,
		buffer_after_minutes  INT NOT NULL DEFAULT 0,
		price_cents           BIGINT NOT NULL DEFAULT 0,
		is_active             BOOLEAN NOT NULL DEFAULT TRUE,
		staff_only_ids        TEXT[] NOT NULL DEFAULT '{}',
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_services_tenant ON services(tenant_id)`,

	`CREATE TABLE IF NOT EXISTS schedules (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id    UUID NOT NULL REFERENCES tenants(id),
		staff_id     UUID NOT NULL REFERENCES staff(id),
		weekday      SMALLINT NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		start_minute INT NOT NULL CHECK (start_minute BETWEEN 0 AND 1440),
		end_minute   INT NOT NULL CHECK (end_minute BETWEEN 0 AND 1440),
		is_active    BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_tenant_staff ON schedules(tenant_id, staff_id)`,

	`CREATE TABLE IF NOT EXISTS blockings (
		id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id UUID NOT NULL REFERENCES tenants(id),
		staff_id  UUID NOT NULL REFERENCES staff(id),
		type      TEXT NOT NULL CHECK (type IN ('block', 'absence', 'vacation')),
		reason    TEXT NOT NULL DEFAULT '',
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_blockings_tenant_staff ON blockings(tenant_id, staff_id, starts_at)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id         UUID NOT NULL REFERENCES tenants(id),
		staff_id          UUID NOT NULL REFERENCES staff(id),
		service_id        UUID NOT NULL REFERENCES services(id),
		customer_id       TEXT NOT NULL DEFAULT '',
		customer_name     TEXT NOT NULL DEFAULT '',
		starts_at         TIMESTAMPTZ NOT NULL,
		ends_at           TIMESTAMPTZ NOT NULL,
		status            TEXT NOT NULL CHECK (status IN ('hold', 'pending', 'paid', 'confirmed', 'completed', 'cancelled', 'no_show')),
		payment_intent_id UUID,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (starts_at < ends_at),
		CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
			tenant_id WITH =,
			staff_id WITH =,
			tstzrange(starts_at, ends_at) WITH &&
		) WHERE (status IN ('hold', 'pending', 'paid', 'confirmed'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_tenant_staff_time ON bookings(tenant_id, staff_id, starts_at)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_payment_intent
		ON bookings(payment_intent_id) WHERE payment_intent_id IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS payment_intents (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id      UUID NOT NULL REFERENCES tenants(id),
		service_id     UUID NOT NULL REFERENCES services(id),
		customer_id    TEXT NOT NULL DEFAULT '',
		customer_name  TEXT NOT NULL DEFAULT '',
		amount_cents   BIGINT NOT NULL,
		status         TEXT NOT NULL CHECK (status IN ('requires_payment', 'paid', 'failed', 'cancelled')),
		proposed_start TIMESTAMPTZ NOT NULL,
		staff_id       UUID,
		booking_id     UUID,
		expires_at     TIMESTAMPTZ NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_intents_status ON payment_intents(status, expires_at)`,

	`CREATE TABLE IF NOT EXISTS webhook_events (
		event_id    TEXT PRIMARY KEY,
		received_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the schema. Every statement is idempotent so running it on
// boot is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
