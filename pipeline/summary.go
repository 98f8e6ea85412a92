package pipeline

import (
	"fmt"
	"strings"
	"time"

	"garmin-etl/models"
)

// PrintSummary renders the run outcome to stdout.
func PrintSummary(r *models.PipelineResult) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  GARMIN ETL PIPELINE SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Datasets processed : \033[1m%d\033[0m\n", len(r.Successes)+len(r.Failures))
	fmt.Printf("  Succeeded          : \033[1;32m%d\033[0m\n", len(r.Successes))
	fmt.Printf("  Failed             : \033[1;31m%d\033[0m\n", len(r.Failures))
	fmt.Printf("  Duration           : \033[1m%s\033[0m\n", r.Duration.Round(time.Millisecond))
	fmt.Println()

	if len(r.Successes) > 0 {
		fmt.Printf("\033[1;33m  Loaded Datasets\033[0m\n")
		fmt.Printf("  %s\n", thin)
		for _, s := range r.Successes {
			fmt.Printf("  \033[1;32m✔\033[0m %-22s %6d extracted → %6d loaded into %s\n",
				s.Dataset, s.RowsExtracted, s.RowsLoaded, s.Table)
		}
		fmt.Println()
	}

	if len(r.Failures) > 0 {
		fmt.Printf("\033[1;33m  Failures\033[0m\n")
		fmt.Printf("  %s\n", thin)
		for _, f := range r.Failures {
			fmt.Printf("  \033[1;31m✘\033[0m %-22s %v\n", f.Dataset, f.Err)
		}
		fmt.Println()
	}

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}
