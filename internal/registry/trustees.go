package registry

import "github.com/mrima/records-portal/internal/importers"

const PublicTrustees = "public_trustees"

func publicTrustees() Domain {
	return Domain{
		Config: importers.Config{
			Name:  PublicTrustees,
			Label: "Public Trustee Estates",
			Table: "public_trustees",
			Fields: []importers.FieldSpec{
				{Target: "pt_cause_no", Aliases: []string{"PT Cause No", "cause no", "pt no", "pt cause no (station)", "pt cause no station"}},
				{Target: "folio_no", Aliases: []string{"Folio No", "folio", "folio number"}},
				{Target: "deceased_name", Aliases: []string{"Name of the Deceased", "name of deceased", "deceased name", "deceased", "name"}},
				{Target: "gender", Aliases: []string{"Gender", "sex"}, Transform: importers.UpperEnum,
					Enum: []string{"MALE", "FEMALE", "OTHER"}, EnumAliases: map[string]string{"M": "MALE", "F": "FEMALE"}},
				{Target: "marital_status", Aliases: []string{"Marital Status", "status"}},
				{Target: "date_of_death", Aliases: []string{"Date of Death", "death date", "died"}, Transform: importers.Date},
				{Target: "religion", Aliases: []string{"Religion", "faith"}},
				{Target: "county", Aliases: []string{"County", "district", "location"}},
				{Target: "station", Aliases: []string{"Station", "court station", "office"}},
				{Target: "assets", Aliases: []string{"Assets", "estate", "property", "shares", "estate value", "value"}},
				{Target: "beneficiaries", Aliases: []string{"Beneficiaries", "beneficiary", "heirs", "next of kin", "beneficiaries/ date of birth/ id no."}},
				{Target: "telephone_no", Aliases: []string{"Telephone No", "telephone", "phone", "tel", "contact", "telephone no of the beneficiary"}},
				{Target: "date_of_advertisement", Aliases: []string{"Date of Advertisement", "advertisement date", "advert date", "date of advertisement for claims"}, Transform: importers.Date},
				{Target: "date_of_confirmation", Aliases: []string{"Date of Confirmation", "confirmation date", "confirmed", "date of confirmation of grants"}, Transform: importers.Date},
				{Target: "date_account_drawn", Aliases: []string{"Date Account Drawn", "account drawn"}, Transform: importers.Date},
				{Target: "date_payment_made", Aliases: []string{"Date Payment Made", "payment date", "paid"}, Transform: importers.Date},
				{Target: "file_year", Aliases: []string{"File Year", "year"}, Transform: importers.Int},
				{Target: "serial_number", Aliases: []string{"Serial Number", "s/no", "sno", "no"}, Transform: importers.Int},
				{Target: "remarks", Aliases: []string{"Remarks", "comments", "notes"}},
			},
			Rules: []importers.QualityRule{
				{Field: "deceased_name", Weight: 25, Level: importers.HardRequired},
				{Field: "pt_cause_no", Weight: 20, Level: importers.Required},
				{Field: "date_of_death", Weight: 15, Level: importers.Required},
				{Field: "county", Weight: 10, Level: importers.Required},
				{Field: "station", Weight: 10, Level: importers.Required},
				{Field: "beneficiaries", Weight: 10, Level: importers.Required},
				{Field: "gender", Weight: 5, Level: importers.Required},
				{Field: "assets", Weight: 5, Level: importers.Required},
			},
			Key:              importers.FieldsKeyWithOptional([]string{"pt_cause_no"}, "folio_no"),
			CoreFields:       []string{"deceased_name", "date_of_death"},
			LabelField:       "deceased_name",
			BatchSize:        50,
			FailureTolerance: 0,
			TemplateRows: [][]string{
				{"PT 112/2019 (Nairobi)", "45", "John Kamau Mwangi", "M", "Married", "12/04/2019", "Christian", "Kiambu", "Nairobi", "Land parcel Kiambu/Ruiru/1234", "Mary Wambui (wife)", "0712345678", "2019-06-01", "2019-11-20", "", "", "2019", "1", ""},
				{"PT 8/2021 (Kisumu)", "", "Akinyi Otieno", "F", "Widowed", "2021-01-15", "", "Kisumu", "Kisumu", "Bank savings", "Otieno Junior (son)", "", "", "", "", "", "2021", "2", "File awaiting grant"},
			},
		},
		SearchColumns: []string{"deceased_name", "pt_cause_no", "county", "station"},
		StatsColumns:  []string{"county", "station", "gender", "file_year"},
	}
}
