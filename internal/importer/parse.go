// Package importer loads user stories from tracker CSV exports into an
// existing project, creating sprints and epics on demand.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
)

// Row is one CSV record. Only Summary is required.
type Row struct {
	IssueType   string
	Summary     string
	Description string
	Priority    string
	Labels      string
}

// Columns recognised in the header row. Matching ignores case and
// surrounding whitespace.
const (
	ColIssueType   = "issue type"
	ColSummary     = "summary"
	ColDescription = "description"
	ColPriority    = "priority"
	ColLabels      = "labels"
)

// MaxPoints caps estimated story points.
const MaxPoints = 13

// GeneralEpic is used when a row names no epic.
const GeneralEpic = "General"

// FallbackCode is the epic code for names with no known code.
const FallbackCode = "GEN"

var (
	epicPrefixRe = regexp.MustCompile(`^\[([^\]]+)\]`)
	epicDescRe   = regexp.MustCompile(`EPIC:\s*([^.]+)`)
	sprintRe     = regexp.MustCompile(`sprint(\d+)`)
	stripRe      = regexp.MustCompile(`^\[[^\]]+\]\s*`)
)

var priorityPoints = map[string]int{
	"High":   5,
	"Medium": 3,
	"Low":    2,
}

// complexityBonus is checked in order; only the first match counts.
var complexityBonus = []struct {
	keyword string
	points  int
}{
	{"setup", 2},
	{"configuration", 2},
	{"framework", 3},
	{"integration", 3},
	{"authentication", 3},
	{"security", 3},
	{"testing", 2},
	{"deployment", 3},
	{"monitoring", 2},
	{"documentation", 1},
	{"api", 2},
	{"database", 3},
}

// epicCodes maps epic name fragments to codes, first match wins.
var epicCodes = []struct {
	fragment string
	code     string
}{
	{"Foundation", "FND"},
	{"MCP Core", "MCP"},
	{"MCP Tools", "MCT"},
	{"Claude", "CIB"},
	{"Frontend", "FED"},
	{"Testing", "TQA"},
	{"Deployment", "DD"},
}

// ReadFile parses a CSV file from disk.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("importer: open %s: %w", path, err)
	}
	defer f.Close()
	rows, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Parse reads a CSV export. Input may be UTF-8, with or without a byte
// order mark, or Windows-1252.
func Parse(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("importer: read: %w", err)
	}
	data, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("importer: decode: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("importer: %w: empty file", domain.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("importer: %w: header: %v", domain.ErrValidation, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx[ColSummary]; !ok {
		return nil, fmt.Errorf("importer: %w: missing %q column", domain.ErrValidation, "Summary")
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("importer: %w: line %d: %v", domain.ErrValidation, line, err)
		}
		field := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		row := Row{
			IssueType:   field(ColIssueType),
			Summary:     field(ColSummary),
			Description: field(ColDescription),
			Priority:    field(ColPriority),
			Labels:      field(ColLabels),
		}
		if row.Summary == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decode(raw []byte) ([]byte, error) {
	if utf8.Valid(raw) {
		return unicode.UTF8BOM.NewDecoder().Bytes(raw)
	}
	return charmap.Windows1252.NewDecoder().Bytes(raw)
}

// EpicName extracts the epic from a "[Name] ..." summary prefix, else from
// "EPIC: Name." in the description, else GeneralEpic.
func EpicName(summary, description string) string {
	if m := epicPrefixRe.FindStringSubmatch(summary); m != nil {
		return m[1]
	}
	if m := epicDescRe.FindStringSubmatch(description); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	return GeneralEpic
}

// EpicCode returns the code for an epic name.
func EpicCode(name string) string {
	for _, ec := range epicCodes {
		if strings.Contains(name, ec.fragment) {
			return ec.code
		}
	}
	return FallbackCode
}

// SprintNumber reads "sprintN" from the labels, defaulting to 1.
func SprintNumber(labels string) int {
	m := sprintRe.FindStringSubmatch(labels)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Title strips any "[Epic]" prefix from a summary.
func Title(summary string) string {
	return strings.TrimSpace(stripRe.ReplaceAllString(summary, ""))
}

// EstimatePoints derives story points from the priority and the first
// complexity keyword found in the summary or description.
func EstimatePoints(summary, description, priority string) int {
	points, ok := priorityPoints[priority]
	if !ok {
		points = 3
	}
	text := strings.ToLower(summary + " " + description)
	for _, kb := range complexityBonus {
		if strings.Contains(text, kb.keyword) {
			points += kb.points
			break
		}
	}
	return min(points, MaxPoints)
}

// Priority maps a tracker priority to a story priority.
func Priority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "high", "highest", "critical", "blocker":
		return "high"
	case "low", "lowest", "minor", "trivial":
		return "low"
	}
	return "medium"
}
