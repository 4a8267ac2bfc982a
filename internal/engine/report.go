package engine

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/cybergodev/tidy/internal/diag"
)

// parseReport reads the message lines of a report written by the C
// library back into diagnostics. Summary lines are skipped.
func parseReport(text string) []diag.Diagnostic {
	var ds []diag.Diagnostic
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		var d diag.Diagnostic
		rest := line
		if strings.HasPrefix(line, "line ") {
			if _, err := fmt.Sscanf(line, "line %d column %d - ", &d.Line, &d.Column); err != nil {
				continue
			}
			i := strings.Index(line, " - ")
			if i < 0 {
				continue
			}
			rest = line[i+3:]
		}
		sev, msg, ok := strings.Cut(rest, ": ")
		if !ok {
			continue
		}
		switch sev {
		case "Info":
			d.Severity = diag.Info
		case "Warning", "Access":
			d.Severity = diag.Warning
		case "Error":
			d.Severity = diag.Error
		default:
			continue
		}
		d.Message = msg
		ds = append(ds, d)
	}
	return ds
}
