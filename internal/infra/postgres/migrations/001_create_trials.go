package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createTrialTables creates the catalog tables, the personalization
// join tables and all constraints and indexes.
func createTrialTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_trials",
		Migrate: func(tx *gorm.DB) error {
			statements := []string{
				`CREATE TABLE IF NOT EXISTS trials (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					nct_id VARCHAR(20),
					title VARCHAR(500) NOT NULL,
					summary TEXT,
					description TEXT,
					disease_area VARCHAR(100),
					conditions TEXT[],
					phase VARCHAR(20),
					status VARCHAR(30),
					sponsor VARCHAR(200),
					eligibility TEXT,

					enrollment_target INTEGER DEFAULT 0,
					enrollment_current INTEGER,

					start_date DATE,
					completion_date DATE,

					metadata JSONB NOT NULL DEFAULT '{}',

					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

					-- Registry id is unique when present; used as upsert key
					CONSTRAINT uq_trials_nct_id UNIQUE (nct_id)
				);`,

				`CREATE TABLE IF NOT EXISTS trial_sites (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					trial_id UUID NOT NULL REFERENCES trials(id) ON DELETE CASCADE,
					site_name VARCHAR(300) NOT NULL,
					country VARCHAR(100) NOT NULL,
					city VARCHAR(100) NOT NULL,
					address TEXT,
					contact_email VARCHAR(255),
					contact_phone VARCHAR(50),
					is_recruiting BOOLEAN DEFAULT FALSE
				);`,

				`CREATE TABLE IF NOT EXISTS trial_saves (
					user_id UUID NOT NULL,
					trial_id UUID NOT NULL REFERENCES trials(id),
					notes TEXT,
					saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

					-- Uniqueness constraint is the save-idempotence mechanism
					PRIMARY KEY (user_id, trial_id)
				);`,

				`CREATE TABLE IF NOT EXISTS trial_alerts (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id UUID NOT NULL,
					trial_id UUID REFERENCES trials(id),
					disease_area VARCHAR(100),
					location VARCHAR(200),
					phase VARCHAR(20),
					filter_criteria JSONB NOT NULL DEFAULT '{}',
					frequency VARCHAR(10) NOT NULL DEFAULT 'weekly',
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);`,

				`CREATE TABLE IF NOT EXISTS trial_interests (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id UUID NOT NULL,
					trial_id UUID NOT NULL REFERENCES trials(id),
					message TEXT,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);`,
			}

			for _, stmt := range statements {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_trials_disease_area ON trials(disease_area);",
				"CREATE INDEX IF NOT EXISTS idx_trials_phase ON trials(phase);",
				"CREATE INDEX IF NOT EXISTS idx_trials_status ON trials(status);",
				"CREATE INDEX IF NOT EXISTS idx_trials_created_at ON trials(created_at DESC);",
				"CREATE INDEX IF NOT EXISTS idx_trials_enrollment_current ON trials(enrollment_current DESC NULLS LAST);",
				"CREATE INDEX IF NOT EXISTS idx_trial_sites_trial_id ON trial_sites(trial_id);",
				"CREATE INDEX IF NOT EXISTS idx_trial_saves_saved_at ON trial_saves(saved_at DESC);",
				"CREATE INDEX IF NOT EXISTS idx_trial_alerts_user_id ON trial_alerts(user_id);",
				"CREATE INDEX IF NOT EXISTS idx_trial_alerts_created_at ON trial_alerts(created_at DESC);",
				"CREATE INDEX IF NOT EXISTS idx_trial_interests_trial_id ON trial_interests(trial_id);",
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			tables := []string{
				"trial_interests", "trial_alerts", "trial_saves", "trial_sites", "trials",
			}
			for _, table := range tables {
				if err := tx.Exec("DROP TABLE IF EXISTS " + table + ";").Error; err != nil {
					return err
				}
			}

			return nil
		},
	}
}
