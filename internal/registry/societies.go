package registry

import "github.com/mrima/records-portal/internal/importers"

const Societies = "societies"

var SocietyStatuses = []string{"ACTIVE", "DEREGISTERED", "SUSPENDED", "PENDING", "EXEMPTED"}

func societies() Domain {
	return Domain{
		Config: importers.Config{
			Name:  Societies,
			Label: "Registered Societies",
			Table: "societies",
			Fields: []importers.FieldSpec{
				{Target: "registration_number", Aliases: []string{"Registration Number", "registration no", "reg no", "reg number", "certificate number", "cert no"}},
				{Target: "society_name", Aliases: []string{"Society Name", "registered name", "name of society", "name"}},
				{Target: "registration_date", Aliases: []string{"Registration Date", "date of registration", "reg date", "date registered"}, Transform: importers.Date},
				{Target: "nature_of_society", Aliases: []string{"Nature of Society", "nature", "society type", "category", "type"}},
				{Target: "member_count", Aliases: []string{"Members", "number of members", "no of members", "membership"}, Transform: importers.Int},
				{Target: "chairman_name", Aliases: []string{"Chairman", "chairperson", "chair"}},
				{Target: "secretary_name", Aliases: []string{"Secretary", "secretary name"}},
				{Target: "treasurer_name", Aliases: []string{"Treasurer", "treasurer name"}},
				{Target: "registration_status", Aliases: []string{"Status", "registration status", "society status"}, Transform: importers.UpperEnum,
					Enum: SocietyStatuses, EnumAliases: map[string]string{"DE-REGISTERED": "DEREGISTERED", "EXEMPT": "EXEMPTED"}},
				{Target: "county", Aliases: []string{"County", "district", "location"}},
				{Target: "postal_address", Aliases: []string{"Postal Address", "address", "p o box", "box"}},
				{Target: "exemption_date", Aliases: []string{"Exemption Date", "date of exemption", "date exempted"}, Transform: importers.Date},
			},
			Rules: []importers.QualityRule{
				{Field: "society_name", Weight: 30, Level: importers.HardRequired},
				{Field: "registration_number", Weight: 25, Level: importers.Required},
				{Field: "registration_date", Weight: 15, Level: importers.Required},
				{Field: "nature_of_society", Weight: 10, Level: importers.Required},
				{Field: "registration_status", Weight: 10, Level: importers.Required},
				{Field: "county", Weight: 10, Level: importers.Required},
				{Field: "member_count", Level: importers.Optional},
			},
			Key:              importers.FieldsKey("registration_number"),
			CoreFields:       []string{"society_name", "registration_date"},
			LabelField:       "society_name",
			BatchSize:        50,
			FailureTolerance: 0,
			TemplateRows: [][]string{
				{"SOC/2022/001", "Upendo Women Self Help Group", "2022-09-01", "Self Help Group", "35", "Jane Wanjiru", "Mary Achieng", "Ann Njeri", "ACTIVE", "Nairobi", "P.O. Box 1234-00100", ""},
				{"SOC/2019/114", "Kisumu Boda Boda Welfare Society", "14/03/2019", "Welfare", "120", "Otieno Omondi", "Peter Mboya", "Grace Akinyi", "ACTIVE", "Kisumu", "P.O. Box 55-40100", ""},
				{"SOC/2008/073", "Mombasa Old Town Heritage Association", "2008-06-30", "Cultural", "", "Ali Hassan", "", "", "EXEMPTED", "Mombasa", "", "2015-01-01"},
			},
		},
		SearchColumns: []string{"society_name", "registration_number", "county", "nature_of_society"},
		StatsColumns:  []string{"registration_status", "county", "nature_of_society"},
	}
}
