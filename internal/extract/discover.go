package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

// StatementFile is a candidate statement in the faturas directory. The bank is
// inferred from the file-name convention; the header check at parse time
// remains the authoritative discriminator.
type StatementFile struct {
	Name   string
	Path   string
	Bank   model.Bank
	Period string // MM/YYYY from the file name
}

var (
	// fatura-inter-2025-10.csv
	interNamePattern = regexp.MustCompile(`^fatura-inter-(\d{4})-(\d{2})\.csv$`)
	// Fatura_2025-10-10.csv
	c6NamePattern = regexp.MustCompile(`^Fatura_(\d{4})-(\d{2})-\d{2}\.csv$`)
)

// Discover scans dir for statement CSVs matching a known naming convention.
// It returns the recognized files sorted by name, and the names of CSV files
// that matched no convention (skipped, but worth reporting).
func Discover(dir string) ([]StatementFile, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading statements dir %s: %w", dir, err)
	}

	var (
		files   []StatementFile
		skipped []string
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		sf, ok := classify(e.Name())
		if !ok {
			skipped = append(skipped, e.Name())
			continue
		}
		sf.Path = filepath.Join(dir, e.Name())
		files = append(files, sf)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	sort.Strings(skipped)
	return files, skipped, nil
}

func classify(name string) (StatementFile, bool) {
	if m := interNamePattern.FindStringSubmatch(name); m != nil {
		return StatementFile{Name: name, Bank: model.BankInter, Period: m[2] + "/" + m[1]}, true
	}
	if m := c6NamePattern.FindStringSubmatch(name); m != nil {
		return StatementFile{Name: name, Bank: model.BankC6, Period: m[2] + "/" + m[1]}, true
	}
	return StatementFile{}, false
}

// ParseFile opens and parses one discovered statement file.
func ParseFile(sf StatementFile) ([]model.Transaction, []RowError, error) {
	parser, err := ParserFor(sf.Bank)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(sf.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening statement %s: %w", sf.Name, err)
	}
	defer f.Close()

	return parser.Parse(f, sf.Name, sf.Period)
}
