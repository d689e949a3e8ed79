package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// CourseRevenue aggregates the ledger for one course.
type CourseRevenue struct {
	CourseID          uint   `json:"course_id"`
	Title             string `json:"title"`
	Enrollments       int64  `json:"enrollments"`
	GrossAmount       int64  `json:"gross_amount"`
	DiscountAmount    int64  `json:"discount_amount"`
	NetAmount         int64  `json:"net_amount"`
	CompletedPayments int64  `json:"completed_payments"`
	CollectedAmount   int64  `json:"collected_amount"`
}

// DailyEnrollments is one bucket of the enrollment trend.
type DailyEnrollments struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// RevenueByCourse sums enrollments created in [from, to). An empty courseIDs means all courses.
func (s *PostgreSQLStore) RevenueByCourse(ctx context.Context, from, to time.Time, courseIDs []int64) ([]CourseRevenue, error) {
	query := `
		SELECT c.id, c.title,
			COUNT(e.id),
			COALESCE(SUM(e.original_price), 0),
			COALESCE(SUM(e.discount_amount), 0),
			COALESCE(SUM(e.total_amount), 0),
			COUNT(p.id) FILTER (WHERE p.status = 'completed'),
			COALESCE(SUM(p.amount) FILTER (WHERE p.status = 'completed'), 0)
		FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		LEFT JOIN payments p ON p.enrollment_id = e.id
		WHERE e.created_at >= $1 AND e.created_at < $2
			AND (cardinality($3::bigint[]) = 0 OR c.id = ANY($3))
		GROUP BY c.id, c.title
		ORDER BY COALESCE(SUM(e.total_amount), 0) DESC;
	`
	if courseIDs == nil {
		courseIDs = []int64{}
	}

	rows, err := s.db.QueryContext(ctx, query, from, to, pq.Array(courseIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CourseRevenue{}
	for rows.Next() {
		r, err := scanIntoCourseRevenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// EnrollmentTrend returns per-day enrollment counts for the last n days.
func (s *PostgreSQLStore) EnrollmentTrend(ctx context.Context, days int) ([]DailyEnrollments, error) {
	if days <= 0 {
		days = 30
	}
	query := `
		SELECT date_trunc('day', created_at) AS day, COUNT(*)
		FROM enrollments
		WHERE created_at >= NOW() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day;
	`
	rows, err := s.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DailyEnrollments{}
	for rows.Next() {
		var d DailyEnrollments
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanIntoCourseRevenue(rows *sql.Rows) (*CourseRevenue, error) {
	r := new(CourseRevenue)
	err := rows.Scan(
		&r.CourseID,
		&r.Title,
		&r.Enrollments,
		&r.GrossAmount,
		&r.DiscountAmount,
		&r.NetAmount,
		&r.CompletedPayments,
		&r.CollectedAmount,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}
