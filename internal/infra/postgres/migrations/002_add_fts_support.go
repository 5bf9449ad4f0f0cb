package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// addFTSSupport adds PostgreSQL full-text search over trials.
//
// The search_vector column is a weighted concatenation of title (A)
// and summary (B), maintained by a trigger on INSERT/UPDATE. The same
// vector feeds both the keyword predicate and the ts_rank relevance
// score, so rank and filter inclusion stay consistent: a row matching
// the predicate always has a computable score.
func addFTSSupport() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_add_fts_support",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				ALTER TABLE trials
				ADD COLUMN IF NOT EXISTS search_vector tsvector
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_trials_search_vector
				ON trials USING GIN (search_vector)
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE OR REPLACE FUNCTION trials_search_vector_update()
				RETURNS trigger AS $$
				BEGIN
					NEW.search_vector :=
						setweight(to_tsvector('english', coalesce(NEW.title, '')), 'A') ||
						setweight(to_tsvector('english', coalesce(NEW.summary, '')), 'B');
					RETURN NEW;
				END
				$$ LANGUAGE plpgsql
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				DROP TRIGGER IF EXISTS trg_trials_search_vector ON trials
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TRIGGER trg_trials_search_vector
				BEFORE INSERT OR UPDATE OF title, summary
				ON trials
				FOR EACH ROW
				EXECUTE FUNCTION trials_search_vector_update()
			`).Error; err != nil {
				return err
			}

			// Populate rows created before this migration
			if err := tx.Exec(`
				UPDATE trials SET search_vector =
					setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
					setweight(to_tsvector('english', coalesce(summary, '')), 'B')
				WHERE search_vector IS NULL
			`).Error; err != nil {
				return err
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			_ = tx.Exec(`DROP TRIGGER IF EXISTS trg_trials_search_vector ON trials`).Error
			_ = tx.Exec(`DROP FUNCTION IF EXISTS trials_search_vector_update()`).Error
			_ = tx.Exec(`DROP INDEX IF EXISTS idx_trials_search_vector`).Error
			_ = tx.Exec(`ALTER TABLE trials DROP COLUMN IF EXISTS search_vector`).Error
			return nil
		},
	}
}
