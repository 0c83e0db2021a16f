package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so the server can run them on every boot.
//
// The events.remaining_capacity column is kept inside
// [0, total_capacity] by the guarded UPDATEs in the application
// repository, not by a database constraint.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(191) NOT NULL,
			email VARCHAR(191) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role ENUM('organizer','vendor') NOT NULL,
			phone VARCHAR(32) NULL,
			bio TEXT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			organizer_id BIGINT UNSIGNED NOT NULL,
			title VARCHAR(191) NOT NULL,
			description TEXT NOT NULL,
			event_date DATE NOT NULL,
			city VARCHAR(191) NOT NULL,
			address VARCHAR(255) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			total_capacity INT UNSIGNED NOT NULL,
			remaining_capacity INT UNSIGNED NOT NULL,
			stand_size VARCHAR(64) NULL,
			requirements TEXT NULL,
			image VARCHAR(255) NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_events_organizer FOREIGN KEY (organizer_id) REFERENCES users(id),
			INDEX idx_events_city (city),
			INDEX idx_events_date (event_date)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS applications (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			event_id BIGINT UNSIGNED NOT NULL,
			vendor_id BIGINT UNSIGNED NOT NULL,
			message TEXT NULL,
			state ENUM('pending','approved','rejected') NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_applications_event FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
			CONSTRAINT fk_applications_vendor FOREIGN KEY (vendor_id) REFERENCES users(id),
			UNIQUE KEY uq_applications_event_vendor (event_id, vendor_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
