// Command generate_demo writes sample CSV exports for every registry, with a
// few deliberately broken rows so the import report has something to show.
// Usage: go run ./cmd/generate_demo [-out dir] [-rows n] [-seed n] [-clean]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/registry"
)

const defaultDemoDir = "./demo"

var (
	counties   = []string{"Nairobi", "Mombasa", "Kisumu", "Nakuru", "Kiambu", "Machakos", "Kakamega", "Nyeri", "Meru", "Uasin Gishu"}
	stations   = []string{"Nairobi", "Mombasa", "Kisumu", "Nakuru", "Eldoret", "Nyeri", "Kakamega"}
	natures    = []string{"Self Help Group", "Welfare", "Cultural", "Religious", "Youth Group", "Sports Club", "Professional"}
	statuses   = []string{"active", "ACTIVE", "Deregistered", "suspended", "exempt"}
	claims     = []string{"Land dispute", "Employment", "Judicial review", "Compensation", "Contract", "Constitutional petition"}
	caseStates = []string{"Pending hearing", "Judgment delivered", "Concluded", "Appeal filed", "Mention"}
	religions  = []string{"Christian", "Muslim", "Hindu", ""}
	marital    = []string{"Married", "Single", "Widowed", "Divorced"}
	dateLayout = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006"}
)

// rowFunc returns one generated row keyed by target column.
type rowFunc func(i int) map[string]string

func main() {
	outDir := flag.String("out", defaultDemoDir, "directory to write the CSV files to")
	rows := flag.Int("rows", 200, "rows per registry")
	seed := flag.Int64("seed", 0, "random seed (0 picks one)")
	clean := flag.Bool("clean", false, "skip the broken rows")
	flag.Parse()

	gofakeit.Seed(*seed)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	generators := map[string]rowFunc{
		registry.Societies:       societyRow,
		registry.PublicTrustees:  trusteeRow,
		registry.GovernmentCases: caseRow,
	}

	for _, domain := range registry.All() {
		gen, ok := generators[domain.Name]
		if !ok {
			log.Printf("No generator for %s, skipping", domain.Name)
			continue
		}
		path := filepath.Join(*outDir, domain.Name+".csv")
		written, err := writeDomain(path, domain.Config, gen, *rows, !*clean)
		if err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		log.Printf("Wrote %d rows to %s", written, path)
	}

	log.Println("Demo files generated successfully!")
}

func writeDomain(path string, cfg importers.Config, gen rowFunc, rows int, defects bool) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := make([]string, len(cfg.Fields))
	for i, field := range cfg.Fields {
		header[i] = field.Aliases[0]
	}
	if err := w.Write(header); err != nil {
		return 0, err
	}

	written := 0
	var previous []string
	for i := 1; i <= rows; i++ {
		values := gen(i)
		record := make([]string, len(cfg.Fields))
		for j, field := range cfg.Fields {
			record[j] = values[field.Target]
		}

		if defects {
			record = breakRow(cfg, record, previous, i)
		}
		if err := w.Write(record); err != nil {
			return written, err
		}
		previous = record
		written++
	}

	w.Flush()
	return written, w.Error()
}

// breakRow damages a small share of rows: repeats of the previous row,
// rows missing their name, impossible dates and short rows.
func breakRow(cfg importers.Config, record, previous []string, i int) []string {
	switch {
	case i%25 == 0 && previous != nil:
		return append([]string(nil), previous...)
	case i%31 == 0:
		blankField(cfg, record, cfg.LabelField)
	case i%37 == 0:
		for j, field := range cfg.Fields {
			if field.Transform == importers.Date && record[j] != "" {
				record[j] = "31/13/" + strconv.Itoa(gofakeit.Number(2000, 2023))
				break
			}
		}
	case i%43 == 0:
		return record[:len(record)/2]
	}
	return record
}

func blankField(cfg importers.Config, record []string, target string) {
	for j, field := range cfg.Fields {
		if field.Target == target {
			record[j] = ""
			return
		}
	}
}

func date(from, to int) string {
	start := time.Date(from, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to, 12, 31, 0, 0, 0, 0, time.UTC)
	return gofakeit.DateRange(start, end).Format(gofakeit.RandomString(dateLayout))
}

func maybe(value string) string {
	if gofakeit.Number(1, 10) == 1 {
		return ""
	}
	return value
}

func societyRow(i int) map[string]string {
	year := gofakeit.Number(1990, 2023)
	row := map[string]string{
		"registration_number": fmt.Sprintf("SOC/%d/%04d", year, i),
		"society_name":        fmt.Sprintf("%s %s", gofakeit.City(), gofakeit.RandomString(natures)),
		"registration_date":   date(year, year),
		"nature_of_society":   gofakeit.RandomString(natures),
		"member_count":        maybe(strconv.Itoa(gofakeit.Number(10, 500))),
		"chairman_name":       gofakeit.Name(),
		"secretary_name":      maybe(gofakeit.Name()),
		"treasurer_name":      maybe(gofakeit.Name()),
		"registration_status": gofakeit.RandomString(statuses),
		"county":              gofakeit.RandomString(counties),
		"postal_address":      maybe(fmt.Sprintf("P.O. Box %s-%s", gofakeit.Numerify("####"), gofakeit.Numerify("#####"))),
	}
	if row["registration_status"] == "exempt" {
		row["exemption_date"] = date(year, 2023)
	}
	return row
}

func trusteeRow(i int) map[string]string {
	year := gofakeit.Number(2005, 2023)
	station := gofakeit.RandomString(stations)
	return map[string]string{
		"pt_cause_no":           fmt.Sprintf("PT %d/%d (%s)", i, year, station),
		"folio_no":              maybe(strconv.Itoa(gofakeit.Number(1, 300))),
		"deceased_name":         gofakeit.Name(),
		"gender":                gofakeit.RandomString([]string{"M", "F", "Male", "female"}),
		"marital_status":        maybe(gofakeit.RandomString(marital)),
		"date_of_death":         date(year-1, year),
		"religion":              gofakeit.RandomString(religions),
		"county":                gofakeit.RandomString(counties),
		"station":               station,
		"assets":                maybe(fmt.Sprintf("Land parcel %s/%s", gofakeit.City(), gofakeit.Numerify("####"))),
		"beneficiaries":         maybe(fmt.Sprintf("%s (%s)", gofakeit.Name(), gofakeit.RandomString([]string{"wife", "husband", "son", "daughter"}))),
		"telephone_no":          maybe(gofakeit.Numerify("07########")),
		"date_of_advertisement": maybe(date(year, year)),
		"file_year":             strconv.Itoa(year),
		"serial_number":         strconv.Itoa(i),
	}
}

func caseRow(i int) map[string]string {
	year := gofakeit.Number(2010, 2023)
	return map[string]string{
		"ag_file_reference": fmt.Sprintf("AG/CIV/%d/%d", i, year),
		"court_station":     gofakeit.RandomString(stations),
		"case_year":         strconv.Itoa(year),
		"case_number":       maybe(fmt.Sprintf("HCCC %d of %d", gofakeit.Number(1, 999), year)),
		"case_parties":      fmt.Sprintf("%s vs Attorney General", gofakeit.Company()),
		"nature_of_claim":   gofakeit.RandomString(claims),
		"case_status":       gofakeit.RandomString(caseStates),
		"counsel":           maybe(gofakeit.Name()),
		"date_filed":        date(year, year),
		"remarks":           maybe(gofakeit.Sentence(6)),
	}
}
