package entities

import "time"

// ImportMetadata is carried by every imported registry record.
type ImportMetadata struct {
	DataQualityScore int    `gorm:"index" json:"data_quality_score"`
	MissingFields    string `gorm:"type:text" json:"missing_fields"`  // JSON array
	ImportWarnings   string `gorm:"type:text" json:"import_warnings"` // JSON array
	ImportBatchID    string `gorm:"size:36;index" json:"import_batch_id"`
	FileSource       string `gorm:"size:255" json:"file_source"`
}

type Society struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	RegistrationNumber *string    `gorm:"size:100;uniqueIndex" json:"registration_number"`
	SocietyName        string     `gorm:"size:255;not null;index" json:"society_name"`
	RegistrationDate   *time.Time `gorm:"type:date" json:"registration_date"`
	NatureOfSociety    *string    `gorm:"size:255" json:"nature_of_society"`
	MemberCount        *int64     `json:"member_count"`
	ChairmanName       *string    `gorm:"size:255" json:"chairman_name"`
	SecretaryName      *string    `gorm:"size:255" json:"secretary_name"`
	TreasurerName      *string    `gorm:"size:255" json:"treasurer_name"`
	RegistrationStatus *string    `gorm:"size:20;index" json:"registration_status"`
	County             *string    `gorm:"size:100;index" json:"county"`
	PostalAddress      *string    `gorm:"size:255" json:"postal_address"`
	ExemptionDate      *time.Time `gorm:"type:date" json:"exemption_date"`
	ImportMetadata     `gorm:"embedded"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Society) TableName() string {
	return "societies"
}

type PublicTrustee struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	PtCauseNo           *string    `gorm:"size:100;uniqueIndex:idx_public_trustees_key" json:"pt_cause_no"`
	FolioNo             *string    `gorm:"size:50;uniqueIndex:idx_public_trustees_key" json:"folio_no"`
	DeceasedName        string     `gorm:"size:255;not null;index" json:"deceased_name"`
	Gender              *string    `gorm:"size:10;index" json:"gender"`
	MaritalStatus       *string    `gorm:"size:50" json:"marital_status"`
	DateOfDeath         *time.Time `gorm:"type:date" json:"date_of_death"`
	Religion            *string    `gorm:"size:100" json:"religion"`
	County              *string    `gorm:"size:100;index" json:"county"`
	Station             *string    `gorm:"size:100" json:"station"`
	Assets              *string    `gorm:"type:text" json:"assets"`
	Beneficiaries       *string    `gorm:"type:text" json:"beneficiaries"`
	TelephoneNo         *string    `gorm:"size:50" json:"telephone_no"`
	DateOfAdvertisement *time.Time `gorm:"type:date" json:"date_of_advertisement"`
	DateOfConfirmation  *time.Time `gorm:"type:date" json:"date_of_confirmation"`
	DateAccountDrawn    *time.Time `gorm:"type:date" json:"date_account_drawn"`
	DatePaymentMade     *time.Time `gorm:"type:date" json:"date_payment_made"`
	FileYear            *int64     `gorm:"index" json:"file_year"`
	SerialNumber        *int64     `json:"serial_number"`
	Remarks             *string    `gorm:"type:text" json:"remarks"`
	ImportMetadata      `gorm:"embedded"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (PublicTrustee) TableName() string {
	return "public_trustees"
}

type GovernmentCase struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AgFileReference string     `gorm:"size:100;not null;uniqueIndex:idx_government_cases_key" json:"ag_file_reference"`
	CaseYear        *int64     `gorm:"uniqueIndex:idx_government_cases_key" json:"case_year"`
	CourtStation    *string    `gorm:"size:100;index" json:"court_station"`
	CaseNumber      *string    `gorm:"size:100" json:"case_number"`
	CaseParties     *string    `gorm:"type:text" json:"case_parties"`
	NatureOfClaim   *string    `gorm:"size:255;index" json:"nature_of_claim"`
	CaseStatus      *string    `gorm:"size:100" json:"case_status"`
	Counsel         *string    `gorm:"size:255" json:"counsel"`
	DateFiled       *time.Time `gorm:"type:date" json:"date_filed"`
	Remarks         *string    `gorm:"type:text" json:"remarks"`
	ImportMetadata  `gorm:"embedded"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (GovernmentCase) TableName() string {
	return "government_cases"
}

// RecordModels returns one zero value per registry table, keyed by table
// name.
func RecordModels() map[string]any {
	return map[string]any{
		Society{}.TableName():        &Society{},
		PublicTrustee{}.TableName():  &PublicTrustee{},
		GovernmentCase{}.TableName(): &GovernmentCase{},
	}
}
