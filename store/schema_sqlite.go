package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS cases (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    image_url     TEXT NOT NULL DEFAULT '',
    is_available  INTEGER NOT NULL DEFAULT 1,
    last_location TEXT NOT NULL DEFAULT '',
    reserved_for  TEXT NOT NULL DEFAULT '',
    version       INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS case_queues (
    case_id     TEXT PRIMARY KEY,
    entries     TEXT NOT NULL DEFAULT '{}',
    queue_count INTEGER NOT NULL DEFAULT 0,
    version     INTEGER NOT NULL DEFAULT 0,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS karts (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL DEFAULT '',
    current_location TEXT NOT NULL DEFAULT '',
    created_at       TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at       TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS kart_queue (
    kart_id         TEXT NOT NULL,
    order_id        TEXT NOT NULL,
    user_id         TEXT NOT NULL DEFAULT '',
    case_id         TEXT NOT NULL DEFAULT '',
    pickup_location TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL DEFAULT (datetime('now','localtime')),
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
    kart_received     INTEGER NOT NULL DEFAULT 0,
    completed_by_kart INTEGER NOT NULL DEFAULT 0,
    scanned_by_user   INTEGER NOT NULL DEFAULT 0,
    enqueued_at       TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    fulfilled_at      TEXT,
    dispatched_at     TEXT,
    completed_at      TEXT,
    scanned_at        TEXT,
    updated_at        TEXT NOT NULL DEFAULT (datetime('now','localtime'))
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
    created_at      TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS user_carts (
    user_id  TEXT NOT NULL,
    case_id  TEXT NOT NULL,
    added_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    PRIMARY KEY (user_id, case_id)
);

CREATE TABLE IF NOT EXISTS user_history (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id        TEXT NOT NULL,
    order_id       TEXT NOT NULL DEFAULT '',
    case_id        TEXT NOT NULL DEFAULT '',
    event_type     TEXT NOT NULL DEFAULT '',
    info           TEXT NOT NULL DEFAULT '',
    queue_position INTEGER,
    created_at     TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_history_user ON user_history(user_id);

CREATE TABLE IF NOT EXISTS outbox (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    topic       TEXT NOT NULL,
    payload     BLOB NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    client_id   TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at);

CREATE TABLE IF NOT EXISTS admin_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
`
