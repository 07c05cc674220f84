package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// Column names recognized in the catalog CSV header. Any other column is
// preserved in model.Cable.Extra.
const (
	colID            = "id"
	colName          = "name"
	colBrand         = "brand"
	colCableType     = "cable_type"
	colDescription   = "cable_description"
	colCores         = "cores"
	colConductorSize = "conductor_size_mm2"
	colConductorType = "conductor_type"
	colInsulation    = "insulation"
	colSheath        = "sheath"
	colVoltage       = "voltage_rating"
	colDiameter      = "overall_diameter_mm"
	colWeight        = "weight_per_meter_kg"
)

// Fallback values used when a numeric column is absent, empty or malformed.
const (
	defaultCores         = 3
	defaultConductorSize = 4.0
	defaultDiameter      = 9.0
	defaultWeight        = 10.0
)

// DefaultCable is the record served when the catalog file does not exist.
func DefaultCable() model.Cable {
	return model.Cable{
		ID:                "1",
		Name:              "1C 16mm²",
		Brand:             "Olex",
		CableType:         "Power",
		Description:       "PVC Insulated",
		Cores:             1,
		ConductorSizeMM2:  16,
		ConductorType:     "Copper",
		Insulation:        "X-90",
		Sheath:            "PVC",
		VoltageRating:     "0.6/1 kV",
		OverallDiameterMM: 9.3,
		WeightPerMeterKG:  1.0,
	}
}

// RowIssue describes a cell that could not be coerced and was replaced with
// its default value.
type RowIssue struct {
	// Row is the 1-based data row number (the header is row 0).
	Row int `json:"row"`

	// Column is the CSV header of the offending cell.
	Column string `json:"column"`

	// Value is the raw cell content.
	Value string `json:"value"`

	// Message describes the substitution.
	Message string `json:"message"`
}

// String returns a one-line description of the issue.
func (i RowIssue) String() string {
	return fmt.Sprintf("row %d, column %s: %s", i.Row, i.Column, i.Message)
}

// Load reads the cable catalog from the CSV file at path.
//
// If the file does not exist, a warning is logged and a catalog holding only
// DefaultCable is returned; Fallback reports true on it. Any other read or
// CSV syntax error is returned.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("cable catalog not found, using default cable data", zap.String("path", path))
			return newCatalog(path, []model.Cable{DefaultCable()}, nil, true), nil
		}
		return nil, fmt.Errorf("failed to open cable catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	cables, issues, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cable catalog %s: %w", path, err)
	}

	for _, issue := range issues {
		logger.Warn("cable catalog value replaced with default",
			zap.String("path", path),
			zap.Int("row", issue.Row),
			zap.String("column", issue.Column),
			zap.String("value", issue.Value))
	}
	logger.Info("cable catalog loaded",
		zap.String("path", path),
		zap.Int("cables", len(cables)),
		zap.Int("issues", len(issues)))

	return newCatalog(path, cables, issues, false), nil
}

// Parse decodes catalog CSV from r. The first record is the header.
//
// Numeric columns that are missing or empty take their default silently;
// malformed values take their default and produce a RowIssue. Rows are never
// rejected.
func Parse(r io.Reader) ([]model.Cable, []RowIssue, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Rows may be shorter or longer than the header; missing cells read as
	// empty.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	// A UTF-8 BOM from spreadsheet exports would otherwise end up in the
	// first column name.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var (
		cables []model.Cable
		issues []RowIssue
	)
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", rowNum+1, err)
		}
		if isBlank(record) {
			continue
		}
		rowNum++

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}

		cable, rowIssues := decodeRow(rowNum, row)
		cables = append(cables, cable)
		issues = append(issues, rowIssues...)
	}

	assignIDs(cables)
	return cables, issues, nil
}

// decodeRow converts one CSV row into a Cable.
func decodeRow(rowNum int, row map[string]string) (model.Cable, []RowIssue) {
	var issues []RowIssue

	intField := func(col string, def int) int {
		raw := row[col]
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			// Values like "4.0" are common in spreadsheet exports.
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr == nil && model.IsFinite(f) && math.Abs(f) <= math.MaxInt32 && f == math.Trunc(f) {
				return int(f)
			}
			issues = append(issues, RowIssue{
				Row: rowNum, Column: col, Value: raw,
				Message: fmt.Sprintf("not an integer, using %d", def),
			})
			return def
		}
		return v
	}
	floatField := func(col string, def float64) float64 {
		raw := row[col]
		if raw == "" {
			return def
		}
		v, err := strconv.ParseFloat(raw, 64)
		// ParseFloat accepts "NaN" and "Inf", which spreadsheet exports
		// write for empty or broken cells. They cannot be sized or encoded.
		if err != nil || !model.IsFinite(v) {
			issues = append(issues, RowIssue{
				Row: rowNum, Column: col, Value: raw,
				Message: fmt.Sprintf("not a number, using %g", def),
			})
			return def
		}
		return v
	}

	cable := model.Cable{
		ID:                row[colID],
		Brand:             row[colBrand],
		CableType:         row[colCableType],
		Description:       row[colDescription],
		Cores:             intField(colCores, defaultCores),
		ConductorSizeMM2:  floatField(colConductorSize, defaultConductorSize),
		ConductorType:     row[colConductorType],
		Insulation:        row[colInsulation],
		Sheath:            row[colSheath],
		VoltageRating:     row[colVoltage],
		OverallDiameterMM: floatField(colDiameter, defaultDiameter),
		WeightPerMeterKG:  floatField(colWeight, defaultWeight),
	}
	// The name column is always synthesized; a name cell in the file is
	// overwritten.
	cable.Name = DisplayName(cable.Brand, cable.Cores, cable.ConductorSizeMM2)

	for col, v := range row {
		if col == "" || isKnownColumn(col) {
			continue
		}
		if cable.Extra == nil {
			cable.Extra = make(map[string]string)
		}
		cable.Extra[col] = v
	}

	return cable, issues
}

// DisplayName builds the catalog display name, e.g. "Olex 4C 25mm²".
// The conductor size is truncated to an integer.
func DisplayName(brand string, cores int, conductorSizeMM2 float64) string {
	return strings.TrimSpace(fmt.Sprintf("%s %dC %dmm²", brand, cores, int(conductorSizeMM2)))
}

// assignIDs keeps ids from the file when they are present and unique, and
// otherwise numbers every cable by its 1-based row position.
func assignIDs(cables []model.Cable) {
	seen := make(map[string]bool, len(cables))
	useFileIDs := true
	for _, c := range cables {
		if c.ID == "" || seen[c.ID] {
			useFileIDs = false
			break
		}
		seen[c.ID] = true
	}
	if useFileIDs {
		return
	}
	for i := range cables {
		cables[i].ID = strconv.Itoa(i + 1)
	}
}

func isKnownColumn(col string) bool {
	switch col {
	case colID, colName, colBrand, colCableType, colDescription, colCores,
		colConductorSize, colConductorType, colInsulation, colSheath,
		colVoltage, colDiameter, colWeight:
		return true
	default:
		return false
	}
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
