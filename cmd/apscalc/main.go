// Command apscalc calculates an Admission Point Score from the terminal and lists the
// programmes it qualifies for.
//
//	apscalc "English Home Language=72" "Mathematics=81" "Physical Sciences=68" "Life Sciences=75"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/rebooked/campus-service/internal/catalog"
	apperrors "github.com/rebooked/campus-service/internal/errors"
	"github.com/rebooked/campus-service/internal/events"
	"github.com/rebooked/campus-service/internal/models"
	"github.com/rebooked/campus-service/internal/services"
	"github.com/rebooked/campus-service/internal/validator"
)

func main() {
	catalogPath := flag.String("catalog", "", "catalog file (.json or .xlsx); embedded dataset when empty")
	rulesPath := flag.String("rules", "", "programme rule table (.json); built-in rules when empty")
	eligibleOnly := flag.Bool("eligible", false, "only list programmes the score qualifies for")
	limit := flag.Int("limit", 25, "maximum programmes to list")
	exportPath := flag.String("export-catalog", "", "write the built catalog to this .xlsx workbook and exit")
	verbose := flag.Bool("v", false, "log catalog diagnostics")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	built, err := buildCatalog(*catalogPath, *rulesPath, logger)
	if err != nil {
		color.Red("Failed to load catalog: %v", err)
		os.Exit(1)
	}

	if *exportPath != "" {
		if err := exportCatalog(built, *exportPath); err != nil {
			color.Red("Failed to export catalog: %v", err)
			os.Exit(1)
		}
		color.Green("Catalog written to %s (%d universities, %d programmes)", *exportPath, len(built.Universities), built.DegreeCount())
		return
	}

	subjects, err := parseSubjects(flag.Args())
	if err != nil {
		color.Red("%v", err)
		fmt.Fprintln(os.Stderr, "usage: apscalc [flags] \"Subject=mark\" ...")
		os.Exit(2)
	}

	v := validator.New()
	if errs := v.Business().ValidateSubjects(toSubjects(subjects)); len(errs) > 0 {
		printValidation(errs)
		os.Exit(2)
	}

	catalogService := services.NewCatalogService(built, v, logger)
	aps := services.NewAPSService(catalogService, events.NewMockEventPublisher(logger), v, services.DefaultNearMissGap, logger)

	filter := services.DegreeFilter{
		EligibleOnly: *eligibleOnly,
		SortBy:       services.SortByAPS,
		SortOrder:    "desc",
		Limit:        *limit,
	}
	result, err := aps.Calculate(context.Background(), &services.CalculateRequest{Subjects: subjects, Filter: filter})
	if err != nil {
		var verrs apperrors.ValidationErrors
		if errors.As(err, &verrs) {
			printValidation(verrs)
			os.Exit(2)
		}
		color.Red("Calculation failed: %v", err)
		os.Exit(1)
	}

	printSubjects(os.Stdout, result.Calculation)
	printDegrees(os.Stdout, result.Calculation.EligibleDegrees)
	printNearMisses(os.Stdout, result.NearMisses)

	stats := result.Statistics
	color.Cyan("\nQualifies for %d of %d programmes (%d%%) at %d universities",
		stats.EligiblePrograms, stats.TotalPrograms, stats.EligibilityRate, stats.EligibleUniversityCount)
}

func buildCatalog(catalogPath, rulesPath string, logger *slog.Logger) (services.Catalog, error) {
	provider, err := catalog.NewProvider(catalogPath, logger)
	if err != nil {
		return services.Catalog{}, err
	}
	base, err := provider.Universities(context.Background())
	if err != nil {
		return services.Catalog{}, err
	}
	rules, err := catalog.LoadRuleSet(rulesPath)
	if err != nil {
		return services.Catalog{}, err
	}
	built := services.BuildCatalog(base, rules.Rules, rules.Exclusions)
	for _, d := range built.Diagnostics {
		logger.Warn("Catalog diagnostic", "scope", d.Scope, "record_id", d.RecordID, "message", d.Message)
	}
	return built, nil
}

func exportCatalog(built services.Catalog, path string) error {
	buf, err := catalog.WriteWorkbook(built.Universities)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// parseSubjects reads "name=mark" arguments. The last '=' separates the mark so subject
// names may contain one.
func parseSubjects(args []string) ([]services.SubjectInput, error) {
	if len(args) == 0 {
		return nil, errors.New("no subjects given")
	}
	subjects := make([]services.SubjectInput, 0, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid subject %q: expected name=mark", arg)
		}
		name := strings.TrimSpace(arg[:i])
		marks, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(arg[i+1:], "%")), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid mark for %s: %w", name, err)
		}
		subjects = append(subjects, services.SubjectInput{Name: name, Marks: marks})
	}
	return subjects, nil
}

func toSubjects(inputs []services.SubjectInput) []models.Subject {
	req := services.CalculateRequest{Subjects: inputs}
	return req.SubjectList()
}

func printValidation(errs apperrors.ValidationErrors) {
	color.Red("Subjects are not valid:")
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "  - %s: %s\n", e.Field, e.Message)
	}
}

func printSubjects(w io.Writer, calc models.APSCalculation) {
	color.Yellow("\nSubjects")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Subject", "Mark", "Level", "Points"})
	for _, s := range calc.Subjects {
		points := strconv.Itoa(s.Points)
		if models.LifeOrientationExclusion.Excludes(s.Name) {
			points = "excluded"
		}
		table.Append([]string{
			s.Name,
			strconv.FormatFloat(s.Marks, 'f', -1, 64),
			strconv.Itoa(s.Level),
			points,
		})
	}
	table.SetFooter([]string{"", "", "APS", strconv.Itoa(calc.TotalScore)})
	table.Render()
}

func printDegrees(w io.Writer, degrees []models.EligibleDegree) {
	color.Yellow("\nProgrammes")
	if len(degrees) == 0 {
		fmt.Fprintln(w, "No programmes match.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"University", "Programme", "Faculty", "APS", "Eligible"})
	for _, d := range degrees {
		eligible := "yes"
		if !d.MeetsRequirement {
			eligible = "no"
			if d.APSGap != nil {
				eligible = fmt.Sprintf("no (-%d)", *d.APSGap)
			}
		}
		table.Append([]string{
			d.University.Abbreviation,
			d.Degree.Name,
			d.Degree.Faculty,
			strconv.Itoa(d.Degree.APSRequirement),
			eligible,
		})
	}
	table.Render()
}

func printNearMisses(w io.Writer, degrees []models.EligibleDegree) {
	if len(degrees) == 0 {
		return
	}
	color.Yellow("\nAlmost there")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"University", "Programme", "APS", "Points short"})
	for _, d := range degrees {
		table.Append([]string{
			d.University.Abbreviation,
			d.Degree.Name,
			strconv.Itoa(d.Degree.APSRequirement),
			strconv.Itoa(*d.APSGap),
		})
	}
	table.Render()
}
