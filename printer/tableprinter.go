package printer

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/securycore/snowdrift/stats"
)

// FileSummary prints the per-file counter block.
func FileSummary(name string, c stats.Counters) {
	fmt.Fprintf(color.Output, "%s\n",
		color.New(color.FgYellow, color.Bold).Sprintf("--- %s summary ---", name))
	summaryTable(c)
	fmt.Println()
}

// RunSummary prints the cumulative counter block at the end of the run.
func RunSummary(c stats.Counters) {
	fmt.Fprintf(color.Output, "%s\n",
		color.New(color.FgYellow, color.Bold).Sprint("=== run summary ==="))
	summaryTable(c)
}

func summaryTable(c stats.Counters) {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Check", "Pass", "Fail")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	tbl.WithWriter(color.Output)

	tbl.AddRow("host ssh", passCell(c.HostPass), failCell(c.HostFail))
	tbl.AddRow("path test", passCell(c.PathPass), failCell(c.PathFail))
	tbl.Print()
}

// failCell paints nonzero failure counts red so an all-failed file does
// not read like an all-passed one. Presentation only.
func failCell(n int) string {
	if n > 0 {
		return color.New(color.FgRed, color.Bold).Sprint(n)
	}
	return strconv.Itoa(n)
}

func passCell(n int) string {
	if n > 0 {
		return color.New(color.FgGreen).Sprint(n)
	}
	return strconv.Itoa(n)
}
