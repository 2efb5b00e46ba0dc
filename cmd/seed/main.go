package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/fleetworks/fleetworks/internal/adapter/cache"
	"github.com/fleetworks/fleetworks/internal/adapter/persistence"
	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
	"github.com/fleetworks/fleetworks/internal/service/password"
	"github.com/fleetworks/fleetworks/internal/service/taxonomy"
	"github.com/fleetworks/fleetworks/internal/usecase"
)

// Seeds a working demo data set: the standard regulatory sources, a
// qualified inspector, and an activated starter rule version covering
// the common out-of-service checks.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	badge := getenvDefault("SEED_INSPECTOR_BADGE", "INSP-0001")
	accessCode := getenvDefault("SEED_INSPECTOR_CODE", "FleetDemo2026!")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	ctx := context.Background()

	sourceRepo := persistence.NewPostgresSourceRepository(db)
	versionRepo := persistence.NewPostgresVersionRepository(db)
	changeLogRepo := persistence.NewPostgresChangeLogRepository(db)
	inspectorRepo := persistence.NewPostgresInspectorRepository(db)

	sourceUC := usecase.NewSourceUseCase(sourceRepo)
	versionUC := usecase.NewVersionUseCase(
		versionRepo,
		sourceRepo,
		changeLogRepo,
		taxonomy.NewStaticCodeResolver(taxonomy.DefaultComponentCodes()),
		cache.NoopRuleCache{},
	)

	inspector, err := seedInspector(ctx, inspectorRepo, badge, accessCode)
	if err != nil {
		log.Fatalf("failed to seed inspector: %v", err)
	}
	fmt.Printf("Seeded inspector: badge=%s code=%s id=%s\n", badge, accessCode, inspector.ID)

	sourceIDs, err := seedSources(ctx, sourceUC)
	if err != nil {
		log.Fatalf("failed to seed sources: %v", err)
	}
	fmt.Printf("Seeded %d regulatory sources\n", len(sourceIDs))

	versions, err := versionUC.ListVersions(ctx)
	if err != nil {
		log.Fatalf("failed to list versions: %v", err)
	}
	for _, v := range versions {
		if v.Name == starterVersionName {
			fmt.Printf("Starter version already present: id=%s status=%s\n", v.ID, v.Status)
			return
		}
	}

	version, err := seedStarterVersion(ctx, versionUC, sourceIDs, inspector.ID)
	if err != nil {
		log.Fatalf("failed to seed starter version: %v", err)
	}
	fmt.Printf("Seeded and activated starter version: id=%s\n", version.ID)
}

const starterVersionName = "CVSA OOS Criteria 2026 (starter)"

func seedInspector(ctx context.Context, repo ports.InspectorRepository, badge, accessCode string) (*domain.Inspector, error) {
	existing, err := repo.FindByBadge(ctx, badge)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrInspectorNotFound) {
		return nil, err
	}

	hash, err := password.NewBcryptService(0).Hash(accessCode)
	if err != nil {
		return nil, err
	}
	inspector := domain.NewInspector("Demo Inspector", badge, hash, true)
	if err := repo.Create(ctx, inspector); err != nil {
		return nil, err
	}
	return inspector, nil
}

func seedSources(ctx context.Context, uc *usecase.SourceUseCase) ([]string, error) {
	published := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	requests := []usecase.CreateSourceRequest{
		{
			Title:       "CVSA North American Standard Out-of-Service Criteria",
			Type:        domain.SourceTypeCVSA,
			URL:         "https://www.cvsa.org/inspections/out-of-service-criteria/",
			Content:     "Annual out-of-service criteria handbook covering driver, vehicle and hazardous materials conditions.",
			PublishedAt: &published,
		},
		{
			Title:   "49 CFR Part 393 - Parts and Accessories Necessary for Safe Operation",
			Type:    domain.SourceTypeFederal,
			URL:     "https://www.ecfr.gov/current/title-49/part-393",
			Content: "Federal requirements for brakes, lighting, coupling devices and cargo securement.",
		},
		{
			Title:   "49 CFR Part 391 - Qualifications of Drivers",
			Type:    domain.SourceTypeFederal,
			URL:     "https://www.ecfr.gov/current/title-49/part-391",
			Content: "Federal driver qualification requirements including licensing and medical certification.",
		},
	}

	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		source, _, err := uc.SeedSource(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", req.Title, err)
		}
		ids = append(ids, source.ID)
	}
	return ids, nil
}

func seedStarterVersion(ctx context.Context, uc *usecase.VersionUseCase, sourceIDs []string, actorID string) (*domain.RuleVersion, error) {
	version, err := uc.CreateVersion(ctx, starterVersionName, sourceIDs, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), actorID)
	if err != nil {
		return nil, err
	}

	rules := []usecase.AddRuleRequest{
		{
			Category:      domain.RuleCategoryVehicle,
			ComponentCode: "BRAKE_LINING",
			Title:         "Brake lining thickness below minimum",
			Condition: &domain.Condition{
				Kind:      domain.ConditionNumericCompare,
				Field:     "lining_mm",
				Op:        domain.CompareLT,
				Threshold: 3.0,
			},
			Outcome:     domain.OutcomeOOSVehicle,
			Citation:    "CVSA OOSC Part II, 393.47",
			CitationURL: "https://www.ecfr.gov/current/title-49/section-393.47",
			Explanation: "Brake lining measured {lining_mm}mm, below the 3.0mm minimum",
		},
		{
			Category:      domain.RuleCategoryVehicle,
			ComponentCode: "TIRE_STEER",
			Title:         "Steer tire tread depth below minimum or cord exposed",
			Condition: &domain.Condition{
				Kind: domain.ConditionOr,
				Children: []*domain.Condition{
					{Kind: domain.ConditionNumericCompare, Field: "tread_depth_mm", Op: domain.CompareLT, Threshold: 3.2},
					{Kind: domain.ConditionEquals, Field: "cord_exposed", Value: true},
				},
			},
			Outcome:     domain.OutcomeOOSVehicle,
			Citation:    "CVSA OOSC Part II, 393.75",
			CitationURL: "https://www.ecfr.gov/current/title-49/section-393.75",
			Explanation: "Steer tire tread at {tread_depth_mm}mm or cord exposed",
		},
		{
			Category:      domain.RuleCategoryDriver,
			ComponentCode: "DRIVER_MEDICAL_CERT",
			Title:         "Medical certificate missing",
			Condition: &domain.Condition{
				Kind:  domain.ConditionAbsent,
				Field: "medical_cert_id",
			},
			Outcome:     domain.OutcomeOOSDriver,
			Citation:    "49 CFR 391.41",
			CitationURL: "https://www.ecfr.gov/current/title-49/section-391.41",
			Explanation: "Driver could not produce a valid medical certificate",
		},
		{
			Category:      domain.RuleCategoryCargoSecurement,
			ComponentCode: "CARGO_TIEDOWN",
			Title:         "Insufficient tiedowns for cargo length",
			Condition: &domain.Condition{
				Kind:      domain.ConditionNumericCompare,
				Field:     "tiedown_count",
				Op:        domain.CompareLT,
				Threshold: 2,
			},
			Outcome:     domain.OutcomeOOSCargo,
			Citation:    "49 CFR 393.110",
			CitationURL: "https://www.ecfr.gov/current/title-49/section-393.110",
			Explanation: "Only {tiedown_count} tiedowns present, minimum is 2",
		},
		{
			Category:      domain.RuleCategoryVehicle,
			ComponentCode: "FRAME_RAIL",
			Title:         "Frame crack near suspension hanger needs senior review",
			Condition: &domain.Condition{
				Kind: domain.ConditionAnd,
				Children: []*domain.Condition{
					{Kind: domain.ConditionEquals, Field: "frame_cracked", Value: true},
					{Kind: domain.ConditionEquals, Field: "near_suspension_hanger", Value: true},
				},
			},
			Outcome:      domain.OutcomeTriage,
			IsTriageOnly: true,
			Citation:     "CVSA OOSC Part II, 393.201",
		},
	}

	for _, req := range rules {
		req.VersionID = version.ID
		if _, err := uc.AddRule(ctx, req); err != nil {
			return nil, fmt.Errorf("rule %q: %w", req.Title, err)
		}
	}

	return uc.ActivateVersion(ctx, version.ID, actorID)
}

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
