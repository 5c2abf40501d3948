package store

// MySQL cannot index unbounded TEXT or give it a literal default, so keys and
// short strings are VARCHAR and indexes are declared inline.
const schemaMySQL = `
CREATE TABLE IF NOT EXISTS cases (
    id            VARCHAR(64) PRIMARY KEY,
    name          VARCHAR(255) NOT NULL DEFAULT '',
    description   VARCHAR(1024) NOT NULL DEFAULT '',
    image_url     VARCHAR(1024) NOT NULL DEFAULT '',
    is_available  TINYINT(1) NOT NULL DEFAULT 1,
    last_location VARCHAR(64) NOT NULL DEFAULT '',
    reserved_for  VARCHAR(64) NOT NULL DEFAULT '',
    version       BIGINT NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS case_queues (
    case_id     VARCHAR(64) PRIMARY KEY,
    entries     LONGTEXT NOT NULL,
    queue_count INT NOT NULL DEFAULT 0,
    version     BIGINT NOT NULL DEFAULT 0,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS karts (
    id               VARCHAR(64) PRIMARY KEY,
    name             VARCHAR(255) NOT NULL DEFAULT '',
    current_location VARCHAR(64) NOT NULL DEFAULT '',
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS kart_queue (
    kart_id         VARCHAR(64) NOT NULL,
    order_id        VARCHAR(64) NOT NULL,
    user_id         VARCHAR(64) NOT NULL DEFAULT '',
    case_id         VARCHAR(64) NOT NULL DEFAULT '',
    pickup_location VARCHAR(64) NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (kart_id, order_id)
);

CREATE TABLE IF NOT EXISTS orders (
    order_id          VARCHAR(64) PRIMARY KEY,
    user_id           VARCHAR(64) NOT NULL,
    case_id           VARCHAR(64) NOT NULL,
    state             VARCHAR(16) NOT NULL DEFAULT 'queued',
    pickup_location   VARCHAR(64) NOT NULL DEFAULT '',
    queue_position    INT NOT NULL DEFAULT 0,
    kart_id           VARCHAR(64) NOT NULL DEFAULT '',
    kart_received     TINYINT(1) NOT NULL DEFAULT 0,
    completed_by_kart TINYINT(1) NOT NULL DEFAULT 0,
    scanned_by_user   TINYINT(1) NOT NULL DEFAULT 0,
    enqueued_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    fulfilled_at      DATETIME NULL,
    dispatched_at     DATETIME NULL,
    completed_at      DATETIME NULL,
    scanned_at        DATETIME NULL,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_orders_user (user_id),
    INDEX idx_orders_case (case_id),
    INDEX idx_orders_state (state)
);

CREATE TABLE IF NOT EXISTS users (
    id              VARCHAR(64) PRIMARY KEY,
    display_name    VARCHAR(255) NOT NULL DEFAULT '',
    device_token    VARCHAR(512) NOT NULL DEFAULT '',
    pickup_location VARCHAR(64) NOT NULL DEFAULT '',
    token_hash      VARCHAR(255) NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_carts (
    user_id  VARCHAR(64) NOT NULL,
    case_id  VARCHAR(64) NOT NULL,
    added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, case_id)
);

CREATE TABLE IF NOT EXISTS user_history (
    id             BIGINT AUTO_INCREMENT PRIMARY KEY,
    user_id        VARCHAR(64) NOT NULL,
    order_id       VARCHAR(64) NOT NULL DEFAULT '',
    case_id        VARCHAR(64) NOT NULL DEFAULT '',
    event_type     VARCHAR(32) NOT NULL DEFAULT '',
    info           VARCHAR(1024) NOT NULL DEFAULT '',
    queue_position INT NULL,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_history_user (user_id)
);

CREATE TABLE IF NOT EXISTS outbox (
    id          BIGINT AUTO_INCREMENT PRIMARY KEY,
    topic       VARCHAR(255) NOT NULL,
    payload     LONGBLOB NOT NULL,
    msg_type    VARCHAR(64) NOT NULL DEFAULT '',
    client_id   VARCHAR(64) NOT NULL DEFAULT '',
    retries     INT NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    sent_at     DATETIME NULL,
    INDEX idx_outbox_pending (sent_at)
);

CREATE TABLE IF NOT EXISTS admin_users (
    id            BIGINT AUTO_INCREMENT PRIMARY KEY,
    username      VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
