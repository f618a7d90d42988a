package spreadsheet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
)

const (
	PlanetsSheet  = "Planets"
	FleetsSheet   = "Fleets"
	SuppliesSheet = "Supplies"
)

// Planet sheet layout: fixed columns, one column per production resource,
// then the description.
var planetHeader = func() []interface{} {
	h := []interface{}{"Planet", "Faction", "Status", "Sector", "Efficiency", "Production Output"}
	for _, r := range models.ProductionResources {
		h = append(h, r)
	}
	return append(h, "Description")
}()

const planetFixedColumns = 6

var fleetHeader = []interface{}{"ID", "Name", "Faction", "Group", "Commander", "Location", "Traveling To", "Arrival", "Capital Ships", "Description"}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildWorkbook lays out planets, fleets and the global supply on one
// sheet each. The caller closes the file.
func BuildWorkbook(planets map[string]*models.Planet, fleets map[string]*models.Fleet, supply *models.Supply) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", PlanetsSheet); err != nil {
		f.Close()
		return nil, err
	}
	for _, sheet := range []string{FleetsSheet, SuppliesSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, err
		}
	}

	planetRows := [][]interface{}{planetHeader}
	for _, name := range sortedKeys(planets) {
		p := planets[name]
		var efficiency interface{} = ""
		if p.Efficiency != nil {
			efficiency = *p.Efficiency
		}
		row := []interface{}{name, p.Faction, p.Status, p.Sector, efficiency, p.ProductionOutput}
		for _, r := range models.ProductionResources {
			row = append(row, p.WeeklyProduction[r])
		}
		planetRows = append(planetRows, append(row, p.Description))
	}

	fleetRows := [][]interface{}{fleetHeader}
	for _, id := range sortedKeys(fleets) {
		fl := fleets[id]
		arrival := ""
		if fl.ArrivalDate != nil {
			arrival = fl.ArrivalDate.UTC().Format(time.RFC3339)
		}
		fleetRows = append(fleetRows, []interface{}{
			id, fl.Name, string(fl.Faction), fl.Group, fl.Commander,
			fl.CurrentPlanet, fl.TravelingTo, arrival, fl.CapitalShips(), fl.Description,
		})
	}

	supplyRows := [][]interface{}{{"Item", "Amount"}}
	if supply != nil {
		for _, item := range sortedKeys(supply.Items) {
			supplyRows = append(supplyRows, []interface{}{item, supply.Items[item]})
		}
		supplyRows = append(supplyRows, []interface{}{"Total", supply.TotalSupply})
	}

	for sheet, rows := range map[string][][]interface{}{
		PlanetsSheet:  planetRows,
		FleetsSheet:   fleetRows,
		SuppliesSheet: supplyRows,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// RowError points at a planet row that could not be read.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// ReadPlanets reads the Planets sheet back into planets keyed by name.
// Bad rows are skipped and reported; the rest are returned.
func ReadPlanets(f *excelize.File) (map[string]*models.Planet, []RowError) {
	rows, err := f.GetRows(PlanetsSheet)
	if err != nil {
		return nil, []RowError{{Row: 0, Err: err}}
	}

	planets := make(map[string]*models.Planet)
	var bad []RowError
	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := cell(row, 0)
		if name == "" {
			continue
		}
		p := &models.Planet{
			Faction:          cell(row, 1),
			Status:           cell(row, 2),
			Sector:           cell(row, 3),
			WeeklyProduction: models.NewProductionVector(),
			Description:      cell(row, planetFixedColumns+len(models.ProductionResources)),
		}
		if s := cell(row, 4); s != "" {
			v, err := parseNumber(s)
			if err != nil {
				bad = append(bad, RowError{Row: i + 1, Err: fmt.Errorf("efficiency: %w", err)})
				continue
			}
			p.Efficiency = &v
		}
		output, err := parseNumber(cell(row, 5))
		if err != nil {
			bad = append(bad, RowError{Row: i + 1, Err: fmt.Errorf("production output: %w", err)})
			continue
		}
		p.ProductionOutput = output

		ok := true
		for j, r := range models.ProductionResources {
			v, err := parseNumber(cell(row, planetFixedColumns+j))
			if err != nil {
				bad = append(bad, RowError{Row: i + 1, Err: fmt.Errorf("%s: %w", r, err)})
				ok = false
				break
			}
			p.WeeklyProduction[r] = v
		}
		if ok {
			planets[name] = p
		}
	}
	return planets, bad
}
