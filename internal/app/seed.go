package app

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"propel-insights/internal/db/repository"
	"propel-insights/internal/domain"
)

// Demo API keys, printed at startup so the demo is usable immediately.
// SEED_DEMO is rejected in production, so these never guard real data.
const (
	demoKeyAlpha = "pi_demo_alpha_7f3a9c1e"
	demoKeyBeta  = "pi_demo_beta_2d8b4f6a"
)

// SeedDemo creates two demo tenants with disjoint datasets and one API key
// each. Idempotent: a non-empty tenants table means seeding already ran.
func SeedDemo(ctx context.Context, d *sql.DB, tenants *repository.TenantRepo, logger *slog.Logger) error {
	existing, err := tenants.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	alpha, err := seedTenant(ctx, tenants, "Alpha Estates", demoKeyAlpha)
	if err != nil {
		return fmt.Errorf("seed Alpha Estates: %w", err)
	}
	beta, err := seedTenant(ctx, tenants, "Beta Homes", demoKeyBeta)
	if err != nil {
		return fmt.Errorf("seed Beta Homes: %w", err)
	}

	if err := seedAlphaData(ctx, d, alpha.ID); err != nil {
		return fmt.Errorf("seed Alpha Estates data: %w", err)
	}
	if err := seedBetaData(ctx, d, beta.ID); err != nil {
		return fmt.Errorf("seed Beta Homes data: %w", err)
	}

	logger.Info("seeded demo tenants",
		slog.String("alpha_api_key", demoKeyAlpha),
		slog.String("beta_api_key", demoKeyBeta))
	return nil
}

func seedTenant(ctx context.Context, tenants *repository.TenantRepo, name, apiKey string) (*domain.Tenant, error) {
	t, err := tenants.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256([]byte(apiKey))
	if err := tenants.CreateAPIKey(ctx, t.ID, hex.EncodeToString(hash[:])); err != nil {
		return nil, err
	}
	return t, nil
}

func seedAlphaData(ctx context.Context, d *sql.DB, tenantID string) error {
	projSkyline := uuid.NewString()
	projHarbor := uuid.NewString()

	stmts := []struct {
		query string
		args  []interface{}
	}{
		{`INSERT INTO projects (id, tenant_id, name, location, status, budget) VALUES
			(?, ?, 'Skyline Towers', 'Pune', 'Active', 45000000),
			(?, ?, 'Harbor View', 'Mumbai', 'Launched', 82000000)`,
			[]interface{}{projSkyline, tenantID, projHarbor, tenantID}},

		{`INSERT INTO units (id, tenant_id, project_id, number, status, price, floor, bedrooms) VALUES
			(?, ?, ?, 'A-101', 'Sold', 5500000, 1, 2),
			(?, ?, ?, 'A-102', 'Available', 5600000, 1, 2),
			(?, ?, ?, 'B-301', 'Blocked', 7200000, 3, 3),
			(?, ?, ?, 'H-001', 'Available', 12500000, 1, 4)`,
			[]interface{}{
				uuid.NewString(), tenantID, projSkyline,
				uuid.NewString(), tenantID, projSkyline,
				uuid.NewString(), tenantID, projSkyline,
				uuid.NewString(), tenantID, projHarbor,
			}},

		{`INSERT INTO customers (id, tenant_id, project_id, name, status, channel) VALUES
			(?, ?, ?, 'Ravi Sharma', 'Booked', 'Website'),
			(?, ?, ?, 'Meera Iyer', 'Lead', 'Referral'),
			(?, ?, ?, 'John Almeida', 'Site Visit', 'Website')`,
			[]interface{}{
				uuid.NewString(), tenantID, projSkyline,
				uuid.NewString(), tenantID, projSkyline,
				uuid.NewString(), tenantID, projHarbor,
			}},

		{`INSERT INTO bookings (id, tenant_id, project_id, booking_value, booking_date, status) VALUES
			(?, ?, ?, 5500000, '2026-07-14', 'Confirmed'),
			(?, ?, ?, 7200000, '2026-08-02', 'Confirmed')`,
			[]interface{}{
				uuid.NewString(), tenantID, projSkyline,
				uuid.NewString(), tenantID, projSkyline,
			}},

		{`INSERT INTO employees (id, tenant_id, name, employee_code, role, department, joined_on) VALUES
			(?, ?, 'Anita Desai', 'AE-001', 'Sales Manager', 'Sales', '2024-03-01'),
			(?, ?, 'Vikram Patel', 'AE-002', 'Agent', 'Sales', '2024-06-15'),
			(?, ?, 'Sunil Rao', 'AE-003', 'Agent', 'Sales', '2025-01-10'),
			(?, ?, 'Priya Nair', 'AE-004', 'Site Engineer', 'Projects', '2024-09-01')`,
			[]interface{}{
				uuid.NewString(), tenantID, uuid.NewString(), tenantID,
				uuid.NewString(), tenantID, uuid.NewString(), tenantID,
			}},

		{`INSERT INTO marketing_campaigns (id, tenant_id, name, channel, status, spend, leads, bookings, roi, started_on) VALUES
			(?, ?, 'Monsoon Offer', 'Google Ads', 'Active', 250000, 180, 6, 3.2, '2026-06-01'),
			(?, ?, 'Harbor Launch', 'Facebook', 'Active', 400000, 320, 4, 2.1, '2026-07-15')`,
			[]interface{}{uuid.NewString(), tenantID, uuid.NewString(), tenantID}},

		{`INSERT INTO location_demand (id, tenant_id, location, month, enquiries, bookings, demand_score) VALUES
			(?, ?, 'Pune', '2026-08', 140, 5, 7.8),
			(?, ?, 'Mumbai', '2026-08', 95, 2, 6.1)`,
			[]interface{}{uuid.NewString(), tenantID, uuid.NewString(), tenantID}},

		{`INSERT INTO org_kpi_daily (id, tenant_id, kpi_date, revenue_booked, revenue_collected, outstanding, units_sold, leads, site_visits) VALUES
			(?, ?, '2026-08-20', 5500000, 2100000, 3400000, 1, 22, 8),
			(?, ?, '2026-08-21', 7200000, 1500000, 5700000, 1, 18, 5)`,
			[]interface{}{uuid.NewString(), tenantID, uuid.NewString(), tenantID}},

		{`INSERT INTO project_kpi_daily (id, tenant_id, project_id, kpi_date, units_total, units_sold, revenue_booked, construction_percent) VALUES
			(?, ?, ?, '2026-08-21', 120, 2, 12700000, 38.5),
			(?, ?, ?, '2026-08-21', 60, 0, 0, 12.0)`,
			[]interface{}{
				uuid.NewString(), tenantID, projSkyline,
				uuid.NewString(), tenantID, projHarbor,
			}},
	}

	return execAll(ctx, d, stmts)
}

func seedBetaData(ctx context.Context, d *sql.DB, tenantID string) error {
	projMeadow := uuid.NewString()

	stmts := []struct {
		query string
		args  []interface{}
	}{
		{`INSERT INTO projects (id, tenant_id, name, location, status, budget) VALUES
			(?, ?, 'Meadow Greens', 'Bengaluru', 'Active', 30000000)`,
			[]interface{}{projMeadow, tenantID}},

		{`INSERT INTO customers (id, tenant_id, project_id, name, status, channel) VALUES
			(?, ?, ?, 'Farah Khan', 'Lead', 'Walk-in')`,
			[]interface{}{uuid.NewString(), tenantID, projMeadow}},

		{`INSERT INTO employees (id, tenant_id, name, employee_code, role, department, joined_on) VALUES
			(?, ?, 'Rohan Gupta', 'BH-001', 'Agent', 'Sales', '2025-04-01'),
			(?, ?, 'Lakshmi Menon', 'BH-002', 'Accountant', 'Finance', '2025-05-20')`,
			[]interface{}{uuid.NewString(), tenantID, uuid.NewString(), tenantID}},

		{`INSERT INTO org_kpi_daily (id, tenant_id, kpi_date, revenue_booked, revenue_collected, outstanding, units_sold, leads, site_visits) VALUES
			(?, ?, '2026-08-21', 900000, 400000, 500000, 0, 7, 3)`,
			[]interface{}{uuid.NewString(), tenantID}},
	}

	return execAll(ctx, d, stmts)
}

func execAll(ctx context.Context, d *sql.DB, stmts []struct {
	query string
	args  []interface{}
}) error {
	for _, s := range stmts {
		if _, err := d.ExecContext(ctx, s.query, s.args...); err != nil {
			return err
		}
	}
	return nil
}
