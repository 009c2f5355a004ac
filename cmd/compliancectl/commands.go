package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	complianceengine "sitecompliance/contexts/site-compliance/compliance-engine"
	postgresadapter "sitecompliance/contexts/site-compliance/compliance-engine/adapters/postgres"
	"sitecompliance/contexts/site-compliance/compliance-engine/adapters/seed"
	compliancehttp "sitecompliance/contexts/site-compliance/compliance-engine/transport/http"
	"sitecompliance/internal/platform/db"

	"gopkg.in/yaml.v3"
)

type reportOptions struct {
	SeedPath string
	AsOf     string
	Format   string
	Label    string
}

func runRequirement(out io.Writer, raw string) error {
	population, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("population must be an integer: %w", err)
	}
	module := complianceengine.NewInMemoryModule(nil)
	resp, err := module.Handler.ComputeRequirementHandler(context.Background(), population)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "population=%d required_sites=%d tier=%s\n",
		resp.Data.Population, resp.Data.BaseRequirement, resp.Data.Tier)
	return err
}

func runReport(ctx context.Context, out io.Writer, opts reportOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	jurisdiction, err := seed.LoadFile(opts.SeedPath)
	if err != nil {
		return err
	}
	module := complianceengine.NewInMemoryModule(nil)
	if err := seed.Apply(ctx, module.Store, jurisdiction); err != nil {
		return err
	}

	report, err := module.Handler.EvaluateAllHandler(ctx, opts.AsOf)
	if err != nil {
		return err
	}
	if strings.TrimSpace(opts.Label) != "" {
		if _, err := module.Handler.CaptureSnapshotHandler(ctx, compliancehttp.CaptureSnapshotRequest{
			Label: opts.Label,
			AsOf:  opts.AsOf,
		}); err != nil {
			return err
		}
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "table":
		return writeReportTable(out, report)
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		return writeReportYAML(out, report)
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}

func writeReportTable(out io.Writer, report compliancehttp.ComplianceReportResponse) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MUNICIPALITY\tPOPULATION\tBASE\tOFFSET\tEVENTS\tREALLOC\tADJUSTED\tACTIVE\tSTATUS\tDELTA")
	for _, row := range report.Data {
		delta := "0"
		switch row.Status {
		case "shortfall":
			delta = "-" + strconv.Itoa(row.Shortfall)
		case "excess":
			delta = "+" + strconv.Itoa(row.Excess)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%+d\t%d\t%d\t%s\t%s\n",
			row.MunicipalityName,
			row.Requirement.Population,
			row.Requirement.BaseRequirement,
			row.OffsetSitesReduced,
			row.EventCreditApplied,
			row.ReallocatedOut-row.ReallocatedIn,
			row.AdjustedRequirement,
			row.ActiveSiteCount,
			row.Status,
			delta,
		)
		for _, issue := range row.Issues {
			fmt.Fprintf(tw, "  ! %s\t%s\n", issue.Code, issue.Detail)
		}
	}
	return tw.Flush()
}

// writeReportYAML goes through JSON so the YAML keys match the API field names.
func writeReportYAML(out io.Writer, report compliancehttp.ComplianceReportResponse) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(generic); err != nil {
		return err
	}
	return encoder.Close()
}

func runMigrate(ctx context.Context, out io.Writer, dsn string, sqlitePath string, seedPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		database *db.Database
		err      error
	)
	switch {
	case strings.TrimSpace(dsn) != "":
		database, err = db.ConnectPostgres(dsn)
	case strings.TrimSpace(sqlitePath) != "":
		database, err = db.OpenSQLite(sqlitePath)
	default:
		return fmt.Errorf("one of --dsn or --sqlite is required")
	}
	if err != nil {
		return err
	}
	defer database.Close()

	if err := postgresadapter.Migrate(database.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintf(out, "migrated %s schema\n", database.Dialect)

	if strings.TrimSpace(seedPath) == "" {
		return nil
	}
	jurisdiction, err := seed.LoadFile(seedPath)
	if err != nil {
		return err
	}
	repo := postgresadapter.NewRepository(database.DB, nil)
	if err := seed.Apply(ctx, repo, jurisdiction); err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded %d municipalities, %d sites\n", len(jurisdiction.Municipalities), len(jurisdiction.Sites))
	return nil
}
