// xtrend-eval scores raw metric documents read from stdin, one JSON object
// per line, and prints the load score, alerts and trends for each.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ftahirops/xtrend/engine"
	"github.com/ftahirops/xtrend/model"
	"github.com/ftahirops/xtrend/report"
)

func main() {
	asJSON := flag.Bool("json", false, "Print each report as JSON")
	history := flag.Int("history", engine.DefaultHistorySize, "Snapshots kept for trends")
	flag.Parse()

	if err := evaluate(os.Stdin, os.Stdout, *history, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// evaluate ingests every document from r. Invalid documents are reported
// and skipped; the error counts them.
func evaluate(r io.Reader, w io.Writer, history int, asJSON bool) error {
	eng, err := engine.NewEngine(nil, engine.Options{HistorySize: history})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line, bad := 0, 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var raw model.RawMetrics
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			bad++
			fmt.Fprintf(w, "line %d: decode: %v\n", line, err)
			continue
		}
		rep, err := eng.Ingest(raw)
		if err != nil {
			bad++
			var ve *model.ValidationError
			if errors.As(err, &ve) {
				fmt.Fprintf(w, "line %d: invalid %s: %v\n", line, ve.Field, ve.Err)
			} else {
				fmt.Fprintf(w, "line %d: %v\n", line, err)
			}
			continue
		}
		if asJSON {
			if err := enc.Encode(rep); err != nil {
				return err
			}
			continue
		}
		printReport(w, line, rep, eng.AveragePeriods())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d documents rejected", bad, line)
	}
	return nil
}

func printReport(w io.Writer, line int, rep *model.Report, periods int) {
	fmt.Fprintf(w, "line %d: score %s [%s]\n", line, report.Fixed2(rep.Snapshot.LoadScore), report.StatusLabel(rep.Level()))
	for _, a := range rep.Alerts {
		fmt.Fprintf(w, "  %s [%s] %s\n", a.Icon, strings.ToUpper(a.Level.String()), a.Message)
	}
	for _, f := range model.Fields {
		if tr, ok := rep.Trend(f); ok {
			fmt.Fprintf(w, "  %s %s trend: %s%%\n", tr.Direction.Arrow(), report.FieldLabel(f), tr.Change)
		}
	}
	if avg, ok := rep.Average(model.FieldCPU); ok {
		fmt.Fprintf(w, "  CPU %d-period average: %s\n", periods, report.Fixed2(avg))
	}
}
