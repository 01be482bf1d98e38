// cmd/validate-targets/main.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pfs-target-uploader/internal/targets"
)

func main() {
	var (
		file        = flag.String("file", "", "target list to validate (CSV or ECSV)")
		showSummary = flag.Bool("summary", false, "print the priority/resolution summary table")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: validate-targets -file <targets.csv> [-summary]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var list *targets.List
	if strings.EqualFold(filepath.Ext(*file), ".ecsv") {
		list, err = targets.ParseECSV(bytes.NewReader(data))
	} else {
		list, err = targets.ParseCSV(bytes.NewReader(data))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load error: %v\n", err)
		os.Exit(1)
	}

	result := targets.Validate(list)
	printReport(result)

	if *showSummary && result.Status {
		printSummary(targets.Summarize(list))
	}

	if !result.Status {
		os.Exit(1)
	}
}

func stageLine(name string, ok *bool) string {
	switch {
	case ok == nil:
		return fmt.Sprintf("  %-14s skipped", name)
	case *ok:
		return fmt.Sprintf("  %-14s ok", name)
	default:
		return fmt.Sprintf("  %-14s FAILED", name)
	}
}

func printReport(r *targets.Result) {
	fmt.Println("Validation stages:")

	var req, str, val, flux, uniq *bool
	if r.Required != nil {
		req = &r.Required.Status
	}
	if r.Strings != nil {
		str = &r.Strings.Status
	}
	if r.Values != nil {
		val = &r.Values.Status
	}
	if r.Flux != nil {
		flux = &r.Flux.Status
	}
	if r.Unique != nil {
		uniq = &r.Unique.Status
	}

	fmt.Println(stageLine("columns", req))
	fmt.Println(stageLine("strings", str))
	fmt.Println(stageLine("values", val))
	fmt.Println(stageLine("flux", flux))
	fmt.Println(stageLine("unique", uniq))

	for _, e := range r.Errors() {
		fmt.Printf("  error [%s] %s: %s\n", e.Code, e.Field, e.Message)
	}
	if r.Optional != nil {
		for _, w := range r.Optional.DescWarning {
			fmt.Printf("  warning: %s\n", w)
		}
	}

	if r.Status {
		fmt.Println("Result: valid")
	} else {
		fmt.Println("Result: INVALID")
	}
}

func printSummary(rows []targets.SummaryRow) {
	fmt.Println("\npriority  N_L  Texp_L(FH)  N_M  Texp_M(FH)")
	for _, row := range rows {
		fmt.Printf("%-8s  %3d  %10.2f  %3d  %10.2f\n",
			row.Priority, row.NL, row.TexpL, row.NM, row.TexpM)
	}
}
