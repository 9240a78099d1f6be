package inventory

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

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	stockItems := `
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
);`
	stockMovements := `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY DEFAULT ` + uuidDefault + `,
  company_id TEXT NOT NULL,
  stock_item_id TEXT NOT NULL,
  direction TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC,
  total_amount NUMERIC,
  ticket_id TEXT,
  reference TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`
	stockLevels := `
CREATE TABLE IF NOT EXISTS stock_levels (
  company_id TEXT NOT NULL,
  stock_item_id TEXT NOT NULL,
  on_hand INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (company_id, stock_item_id)
);`

	for _, stmt := range []string{stockItems, stockMovements, stockLevels} {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}
