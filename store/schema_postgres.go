package store

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS cases (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    image_url     TEXT NOT NULL DEFAULT '',
    is_available  BOOLEAN NOT NULL DEFAULT TRUE,
    last_location TEXT NOT NULL DEFAULT '',
    reserved_for  TEXT NOT NULL DEFAULT '',
    version       BIGINT NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS case_queues (
    case_id     TEXT PRIMARY KEY,
    entries     TEXT NOT NULL DEFAULT '{}',
    queue_count INTEGER NOT NULL DEFAULT 0,
    version     BIGINT NOT NULL DEFAULT 0,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS karts (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL DEFAULT '',
    current_location TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS kart_queue (
    kart_id         TEXT NOT NULL,
    order_id        TEXT NOT NULL,
    user_id         TEXT NOT NULL DEFAULT '',
    case_id         TEXT NOT NULL DEFAULT '',
    pickup_location TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (kart_id, order_id)
);

CREATE TABLE IF NOT EXISTS orders (
    order_id          TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL,
    case_id           TEXT NOT NULL,
    state             TEXT NOT NULL DEFAULT 'queued',
    pickup_location   TEXT NOT NULL DEFAULT '',
    queue_position    INTEGER NOT NULL DEFAULT 0,
    kart_id           TEXT NOT NULL DEFAULT '',
    kart_received     BOOLEAN NOT NULL DEFAULT FALSE,
    completed_by_kart BOOLEAN NOT NULL DEFAULT FALSE,
    scanned_by_user   BOOLEAN NOT NULL DEFAULT FALSE,
    enqueued_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    fulfilled_at      TIMESTAMPTZ,
    dispatched_at     TIMESTAMPTZ,
    completed_at      TIMESTAMPTZ,
    scanned_at        TIMESTAMPTZ,
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_case ON orders(case_id);
CREATE INDEX IF NOT EXISTS idx_orders_state ON orders(state);

CREATE TABLE IF NOT EXISTS users (
    id              TEXT PRIMARY KEY,
    display_name    TEXT NOT NULL DEFAULT '',
    device_token    TEXT NOT NULL DEFAULT '',
    pickup_location TEXT NOT NULL DEFAULT '',
    token_hash      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_carts (
    user_id  TEXT NOT NULL,
    case_id  TEXT NOT NULL,
    added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, case_id)
);

CREATE TABLE IF NOT EXISTS user_history (
    id             BIGSERIAL PRIMARY KEY,
    user_id        TEXT NOT NULL,
    order_id       TEXT NOT NULL DEFAULT '',
    case_id        TEXT NOT NULL DEFAULT '',
    event_type     TEXT NOT NULL DEFAULT '',
    info           TEXT NOT NULL DEFAULT '',
    queue_position INTEGER,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_history_user ON user_history(user_id);

CREATE TABLE IF NOT EXISTS outbox (
    id          BIGSERIAL PRIMARY KEY,
    topic       TEXT NOT NULL,
    payload     BYTEA NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    client_id   TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;

CREATE TABLE IF NOT EXISTS admin_users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
