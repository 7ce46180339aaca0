package registry

import "github.com/mrima/records-portal/internal/importers"

const GovernmentCases = "government_cases"

func governmentCases() Domain {
	return Domain{
		Config: importers.Config{
			Name:  GovernmentCases,
			Label: "Government Legal Affairs Cases",
			Table: "government_cases",
			Fields: []importers.FieldSpec{
				{Target: "ag_file_reference", Aliases: []string{"AG File Reference", "ag file ref", "ag file no", "ag ref", "file reference", "file no"}},
				{Target: "court_station", Aliases: []string{"Court Station", "court", "station"}},
				{Target: "case_year", Aliases: []string{"Case Year", "year"}, Transform: importers.Int},
				{Target: "case_number", Aliases: []string{"Case Number", "case no", "suit no", "petition no"}},
				{Target: "case_parties", Aliases: []string{"Parties", "case parties", "parties to the case", "plaintiff vs defendant"}},
				{Target: "nature_of_claim", Aliases: []string{"Nature of Claim", "claim", "nature of case", "subject matter"}},
				{Target: "case_status", Aliases: []string{"Case Status", "status", "current status"}},
				{Target: "counsel", Aliases: []string{"Counsel", "state counsel", "advocate", "officer"}},
				{Target: "date_filed", Aliases: []string{"Date Filed", "filing date", "date of filing"}, Transform: importers.Date},
				{Target: "remarks", Aliases: []string{"Remarks", "comments", "notes"}},
			},
			Rules: []importers.QualityRule{
				{Field: "ag_file_reference", Weight: 25, Level: importers.HardRequired},
				{Field: "case_parties", Weight: 20, Level: importers.Required},
				{Field: "court_station", Weight: 15, Level: importers.Required},
				{Field: "case_year", Weight: 10, Level: importers.Required},
				{Field: "nature_of_claim", Weight: 10, Level: importers.Required},
				{Field: "case_status", Weight: 10, Level: importers.Required},
				{Field: "date_filed", Weight: 10, Level: importers.Required},
			},
			Key:              importers.FieldsKeyWithOptional([]string{"ag_file_reference"}, "case_year"),
			CoreFields:       []string{"case_parties", "court_station"},
			LabelField:       "ag_file_reference",
			BatchSize:        100,
			FailureTolerance: 0,
			TemplateRows: [][]string{
				{"AG/CIV/112/2020", "Milimani", "2020", "HCCC 45 of 2020", "Republic vs Kamau Holdings Ltd", "Land dispute", "Pending hearing", "S. Wanjiku", "2020-03-17", ""},
				{"AG/ELC/9/2018", "Nakuru", "2018", "ELC 9 of 2018", "County Government of Nakuru vs Attorney General", "Land compensation", "Judgment delivered", "P. Otieno", "05/02/2018", "Appeal filed"},
			},
		},
		SearchColumns: []string{"ag_file_reference", "case_parties", "court_station", "case_number"},
		StatsColumns:  []string{"nature_of_claim", "court_station", "case_status", "case_year"},
	}
}
