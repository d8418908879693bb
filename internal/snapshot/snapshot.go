// Package snapshot rolls the daily KPI tables into monthly snapshot rows,
// one per tenant (and per project), on a cron schedule. Reruns for the same
// month overwrite the previous roll-up, so the job is safe to repeat.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Job aggregates daily KPIs into monthly snapshots.
type Job struct {
	db       *sql.DB
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron
}

// New creates the snapshot job. Call Start to schedule it.
func New(db *sql.DB, schedule string, logger *slog.Logger) *Job {
	return &Job{db: db, schedule: schedule, logger: logger}
}

// Start schedules the job. Each tick rolls up the month the tick falls in,
// so a month's snapshot converges as its days accumulate.
func (j *Job) Start() error {
	j.cron = cron.New()
	_, err := j.cron.AddFunc(j.schedule, func() {
		month := time.Now().UTC().Format("2006-01")
		if err := j.Run(context.Background(), month); err != nil {
			j.logger.Error("snapshot roll-up failed",
				slog.String("month", month),
				slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule snapshot job %q: %w", j.schedule, err)
	}
	j.cron.Start()
	j.logger.Info("snapshot job scheduled", slog.String("schedule", j.schedule))
	return nil
}

// Stop halts the schedule and waits for a running tick to finish.
func (j *Job) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// Run rolls up one month ("2006-01") for every tenant.
func (j *Job) Run(ctx context.Context, month string) error {
	if err := j.rollUpOrg(ctx, month); err != nil {
		return fmt.Errorf("org snapshots for %s: %w", month, err)
	}
	if err := j.rollUpProjects(ctx, month); err != nil {
		return fmt.Errorf("project snapshots for %s: %w", month, err)
	}
	j.logger.Info("snapshot roll-up complete", slog.String("month", month))
	return nil
}

func (j *Job) rollUpOrg(ctx context.Context, month string) error {
	rows, err := j.db.QueryContext(ctx, `
		SELECT tenant_id,
		       SUM(revenue_booked), SUM(revenue_collected),
		       SUM(outstanding), SUM(units_sold)
		FROM org_kpi_daily
		WHERE kpi_date LIKE ?
		GROUP BY tenant_id`, month+"-%")
	if err != nil {
		return err
	}
	defer rows.Close()

	type orgRollup struct {
		tenantID                                          string
		revBooked, revCollected, outstanding              float64
		unitsSold                                         int64
	}
	var rollups []orgRollup
	for rows.Next() {
		var r orgRollup
		if err := rows.Scan(&r.tenantID, &r.revBooked, &r.revCollected, &r.outstanding, &r.unitsSold); err != nil {
			return err
		}
		rollups = append(rollups, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range rollups {
		_, err := j.db.ExecContext(ctx, `
			INSERT INTO org_monthly_snapshots
				(id, tenant_id, month, revenue_booked, revenue_collected, outstanding, units_sold)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (tenant_id, month) DO UPDATE SET
				revenue_booked    = excluded.revenue_booked,
				revenue_collected = excluded.revenue_collected,
				outstanding       = excluded.outstanding,
				units_sold        = excluded.units_sold`,
			uuid.NewString(), r.tenantID, month,
			r.revBooked, r.revCollected, r.outstanding, r.unitsSold)
		if err != nil {
			return err
		}
	}
	return nil
}

func (j *Job) rollUpProjects(ctx context.Context, month string) error {
	rows, err := j.db.QueryContext(ctx, `
		SELECT tenant_id, project_id,
		       SUM(revenue_booked), SUM(units_sold), MAX(construction_percent)
		FROM project_kpi_daily
		WHERE kpi_date LIKE ? AND project_id IS NOT NULL
		GROUP BY tenant_id, project_id`, month+"-%")
	if err != nil {
		return err
	}
	defer rows.Close()

	type projectRollup struct {
		tenantID, projectID            string
		revBooked, constructionPercent float64
		unitsSold                      int64
	}
	var rollups []projectRollup
	for rows.Next() {
		var r projectRollup
		if err := rows.Scan(&r.tenantID, &r.projectID, &r.revBooked, &r.unitsSold, &r.constructionPercent); err != nil {
			return err
		}
		rollups = append(rollups, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range rollups {
		_, err := j.db.ExecContext(ctx, `
			INSERT INTO project_monthly_snapshots
				(id, tenant_id, project_id, month, revenue_booked, units_sold, construction_percent)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (tenant_id, project_id, month) DO UPDATE SET
				revenue_booked       = excluded.revenue_booked,
				units_sold           = excluded.units_sold,
				construction_percent = excluded.construction_percent`,
			uuid.NewString(), r.tenantID, r.projectID, month,
			r.revBooked, r.unitsSold, r.constructionPercent)
		if err != nil {
			return err
		}
	}
	return nil
}
