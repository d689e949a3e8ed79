package database

import "fmt"

// tableCheck is a CHECK constraint added once AutoMigrate has created the table.
type tableCheck struct {
	table string
	name  string
	expr  string
}

var tableChecks = []tableCheck{
	{"courses", "chk_courses_price_non_negative", "price >= 0"},
	{"courses", "chk_courses_sale_price_non_negative", "sale_price IS NULL OR sale_price >= 0"},
	{"coupons", "chk_coupons_type", "type IN ('percentage', 'fixed')"},
	{"coupons", "chk_coupons_value_positive", "value > 0"},
	{"coupons", "chk_coupons_used_within_cap", "max_uses IS NULL OR used_count <= max_uses"},
	{"enrollments", "chk_enrollments_total_non_negative", "total_amount >= 0"},
	{"enrollments", "chk_enrollments_discount_bounds", "discount_amount >= 0 AND discount_amount <= original_price"},
	{"payments", "chk_payments_status", "status IN ('pending', 'completed', 'failed', 'refunded')"},
	{"user_progress", "chk_user_progress_percentage", "percentage BETWEEN 0 AND 100"},
	{"reviews", "chk_reviews_rating", "rating BETWEEN 1 AND 5"},
}

// Initialize adds the CHECK constraints backing the model invariants. Idempotent.
func (s *PostgreSQLStore) Initialize() error {
	for _, c := range tableChecks {
		query := fmt.Sprintf(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
				ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
			END IF;
		END $$;`, c.name, c.table, c.name, c.expr)

		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
		s.log.Debug("constraint ensured", "name", c.name)
	}
	return nil
}
