package tickets

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTicketsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:tickets_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	tickets := `
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
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  UNIQUE (company_id, ticket_number)
);`
	events := `
CREATE TABLE IF NOT EXISTS ticket_status_events (
  id TEXT PRIMARY KEY,
  ticket_id TEXT NOT NULL,
  previous_status TEXT,
  new_status TEXT NOT NULL,
  note TEXT,
  actor_user_id TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`
	seqs := `
CREATE TABLE IF NOT EXISTS document_sequences (
  company_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  period TEXT NOT NULL,
  last_value INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (company_id, kind, period)
);`

	for _, stmt := range []string{tickets, events, seqs} {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}
