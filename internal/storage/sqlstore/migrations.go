package sqlstore

import "database/sql"

// Money columns hold integer minor units. Times are Unix milliseconds so the
// same queries work on both drivers. Rates are decimal strings.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS merchants (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uid TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    balance_to_disburse INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    deleted_at INTEGER
);

CREATE TABLE IF NOT EXISTS financial_terms (
    merchant_id INTEGER PRIMARY KEY,
    commission_rate TEXT NOT NULL,
    commission_gst TEXT NOT NULL,
    commission_withholding TEXT NOT NULL,
    disbursement_rate TEXT NOT NULL,
    disbursement_gst TEXT NOT NULL,
    disbursement_withholding TEXT NOT NULL,
    settlement_days INTEGER NOT NULL,
    FOREIGN KEY (merchant_id) REFERENCES merchants(id)
);

CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_id TEXT NOT NULL UNIQUE,
    merchant_id INTEGER NOT NULL,
    original_amount INTEGER NOT NULL,
    settled_amount INTEGER NOT NULL,
    balance INTEGER NOT NULL CHECK (balance >= 0),
    status TEXT NOT NULL,
    type TEXT NOT NULL,
    settlement BOOLEAN NOT NULL DEFAULT 0,
    disbursed BOOLEAN NOT NULL DEFAULT 0,
    txn_date INTEGER NOT NULL,
    provider TEXT NOT NULL DEFAULT '',
    provider_ref TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (merchant_id) REFERENCES merchants(id)
);

CREATE TABLE IF NOT EXISTS scheduled_tasks (
    id TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL,
    scheduled_at INTEGER NOT NULL,
    executed_at INTEGER,
    FOREIGN KEY (transaction_id) REFERENCES transactions(transaction_id)
);

CREATE TABLE IF NOT EXISTS settlement_reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    merchant_id INTEGER NOT NULL,
    settlement_date TEXT NOT NULL,
    transaction_count INTEGER NOT NULL,
    transaction_amount INTEGER NOT NULL,
    commission INTEGER NOT NULL,
    gst INTEGER NOT NULL,
    withholding_tax INTEGER NOT NULL,
    merchant_amount INTEGER NOT NULL,
    UNIQUE (merchant_id, settlement_date),
    FOREIGN KEY (merchant_id) REFERENCES merchants(id)
);

CREATE TABLE IF NOT EXISTS disbursements (
    id TEXT PRIMARY KEY,
    merchant_id INTEGER NOT NULL,
    amount INTEGER NOT NULL,
    commission INTEGER NOT NULL,
    gst INTEGER NOT NULL,
    withholding_tax INTEGER NOT NULL,
    merchant_amount INTEGER NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (merchant_id) REFERENCES merchants(id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_eligible ON transactions(merchant_id, settlement, txn_date);
CREATE INDEX IF NOT EXISTS idx_scheduled_tasks_due ON scheduled_tasks(status, scheduled_at);
CREATE INDEX IF NOT EXISTS idx_disbursements_merchant ON disbursements(merchant_id, created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS merchants (
    id BIGSERIAL PRIMARY KEY,
    uid TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    balance_to_disburse BIGINT NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    deleted_at BIGINT
);

CREATE TABLE IF NOT EXISTS financial_terms (
    merchant_id BIGINT PRIMARY KEY REFERENCES merchants(id),
    commission_rate TEXT NOT NULL,
    commission_gst TEXT NOT NULL,
    commission_withholding TEXT NOT NULL,
    disbursement_rate TEXT NOT NULL,
    disbursement_gst TEXT NOT NULL,
    disbursement_withholding TEXT NOT NULL,
    settlement_days INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    transaction_id TEXT NOT NULL UNIQUE,
    merchant_id BIGINT NOT NULL REFERENCES merchants(id),
    original_amount BIGINT NOT NULL,
    settled_amount BIGINT NOT NULL,
    balance BIGINT NOT NULL CHECK (balance >= 0),
    status TEXT NOT NULL,
    type TEXT NOT NULL,
    settlement BOOLEAN NOT NULL DEFAULT FALSE,
    disbursed BOOLEAN NOT NULL DEFAULT FALSE,
    txn_date BIGINT NOT NULL,
    provider TEXT NOT NULL DEFAULT '',
    provider_ref TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS scheduled_tasks (
    id TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL UNIQUE REFERENCES transactions(transaction_id),
    status TEXT NOT NULL,
    scheduled_at BIGINT NOT NULL,
    executed_at BIGINT
);

CREATE TABLE IF NOT EXISTS settlement_reports (
    id BIGSERIAL PRIMARY KEY,
    merchant_id BIGINT NOT NULL REFERENCES merchants(id),
    settlement_date TEXT NOT NULL,
    transaction_count BIGINT NOT NULL,
    transaction_amount BIGINT NOT NULL,
    commission BIGINT NOT NULL,
    gst BIGINT NOT NULL,
    withholding_tax BIGINT NOT NULL,
    merchant_amount BIGINT NOT NULL,
    UNIQUE (merchant_id, settlement_date)
);

CREATE TABLE IF NOT EXISTS disbursements (
    id TEXT PRIMARY KEY,
    merchant_id BIGINT NOT NULL REFERENCES merchants(id),
    amount BIGINT NOT NULL,
    commission BIGINT NOT NULL,
    gst BIGINT NOT NULL,
    withholding_tax BIGINT NOT NULL,
    merchant_amount BIGINT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_eligible ON transactions(merchant_id, settlement, txn_date);
CREATE INDEX IF NOT EXISTS idx_scheduled_tasks_due ON scheduled_tasks(status, scheduled_at);
CREATE INDEX IF NOT EXISTS idx_disbursements_merchant ON disbursements(merchant_id, created_at);
`

// runMigrations executes the schema setup for driver.
func runMigrations(db *sql.DB, driver string) error {
	schema := sqliteSchema
	if driver == DriverPostgres {
		schema = postgresSchema
	}
	_, err := db.Exec(schema)
	return err
}
