package migrations

import "gorm.io/gorm"

// Migration001AddLedgerIndexes adds the indexes the ledger's hot paths rely
// on beyond what AutoMigrate creates from struct tags. The uniqueness
// constraints themselves come from the model tags; these are read-side
// covering indexes.
func Migration001AddLedgerIndexes() Migration {
	return Migration{
		ID:   "001_add_ledger_indexes",
		Name: "Add ledger query indexes",
		Up: func(db *gorm.DB) error {
			statements := []string{
				// Verification queue listing
				"CREATE INDEX IF NOT EXISTS idx_activities_verification_queue ON activities (verification_required, verification_status, created_at)",
				// Window leaderboards sum earned points by period
				"CREATE INDEX IF NOT EXISTS idx_activities_earned_window ON activities (earned_at, points_awarded)",
				// Expiry sweep scans in-flight activities per reward
				"CREATE INDEX IF NOT EXISTS idx_activities_status_reward ON activities (status, reward_id)",
				// Lifetime leaderboard ordering
				"CREATE INDEX IF NOT EXISTS idx_users_points_rank ON users (total_points DESC, id ASC)",
			}
			for _, stmt := range statements {
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(db *gorm.DB) error {
			statements := []string{
				"DROP INDEX IF EXISTS idx_activities_verification_queue",
				"DROP INDEX IF EXISTS idx_activities_earned_window",
				"DROP INDEX IF EXISTS idx_activities_status_reward",
				"DROP INDEX IF EXISTS idx_users_points_rank",
			}
			for _, stmt := range statements {
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},
	}
}
