package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createProfileTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		full_name TEXT,
		user_type TEXT NOT NULL DEFAULT 'user',
		balance NUMERIC NOT NULL DEFAULT 0,
		total_profits NUMERIC NOT NULL DEFAULT 0,
		performance NUMERIC NOT NULL DEFAULT 0,
		active_trades INTEGER NOT NULL DEFAULT 0,
		kyc_status TEXT NOT NULL DEFAULT 'unverified',
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		coin TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		address TEXT,
		status TEXT NOT NULL,
		tx_hash TEXT,
		created_at DATETIME
	);`)
}

func createSupportTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE support_tickets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE ticket_messages (
		id TEXT PRIMARY KEY,
		ticket_id TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at DATETIME
	);`)
}

func createKYCTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE kyc_details (
		user_id TEXT PRIMARY KEY,
		full_legal_name TEXT NOT NULL,
		dob TEXT NOT NULL,
		id_number TEXT NOT NULL,
		country TEXT NOT NULL,
		address TEXT NOT NULL,
		city TEXT NOT NULL,
		postal_code TEXT NOT NULL,
		document_front_url TEXT,
		document_back_url TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE storage_objects (
		bucket TEXT NOT NULL,
		path TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at DATETIME,
		PRIMARY KEY (bucket, path)
	);`)
}
