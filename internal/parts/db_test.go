package parts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqlite stand-in for gen_random_uuid() so service-created rows get real ids.
const uuidDefault = `(lower(hex(randomblob(4)) || '-' || hex(randomblob(2)) || '-4' ||
  substr(hex(randomblob(2)), 2) || '-' || substr('89ab', abs(random()) % 4 + 1, 1) ||
  substr(hex(randomblob(2)), 2) || '-' || hex(randomblob(6))))`

func setupPartsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:parts_" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS tickets (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  ticket_number TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  device_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'intake',
  priority TEXT NOT NULL DEFAULT 'normal',
  fault_description TEXT NOT NULL,
  technician_id TEXT,
  invoice_id TEXT,
  intake_at DATETIME NOT NULL,
  completed_at DATETIME,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS ticket_status_events (
  id TEXT PRIMARY KEY,
  ticket_id TEXT NOT NULL,
  previous_status TEXT,
  new_status TEXT NOT NULL,
  note TEXT,
  actor_user_id TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS document_sequences (
  company_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  period TEXT NOT NULL,
  last_value INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (company_id, kind, period)
);`, `
CREATE TABLE IF NOT EXISTS stock_items (
  id TEXT PRIMARY KEY DEFAULT ` + uuidDefault + `,
  company_id TEXT NOT NULL,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  unit TEXT NOT NULL DEFAULT 'pcs',
  critical_level INTEGER NOT NULL DEFAULT 5,
  purchase_price NUMERIC,
  sale_price NUMERIC,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  UNIQUE (company_id, code)
);`, `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  stock_item_id TEXT NOT NULL,
  direction TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC,
  total_amount NUMERIC,
  ticket_id TEXT,
  reference TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS stock_levels (
  company_id TEXT NOT NULL,
  stock_item_id TEXT NOT NULL,
  on_hand INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (company_id, stock_item_id)
);`, `
CREATE TABLE IF NOT EXISTS part_consumptions (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  ticket_id TEXT NOT NULL,
  stock_item_id TEXT,
  movement_id TEXT,
  invoice_id TEXT,
  part_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC,
  total_price NUMERIC,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`}

	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}
