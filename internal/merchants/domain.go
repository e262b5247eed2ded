package merchants

import (
	"fmt"
	"time"
)

// TechContact is the merchant's technical contact person.
type TechContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// KAMContact is the key account manager assigned to the merchant.
type KAMContact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Merchant is a merchant record as served by the portal API. Records are never
// modified after they are fetched.
type Merchant struct {
	UUID           string      `json:"uuid"`
	MerchantName   string      `json:"merchantName"`
	BusinessType   string      `json:"businessType"`
	ProductType    string      `json:"productType"`
	MerchantWallet string      `json:"merchantWallet"`
	TechPerson     TechContact `json:"merchantTechPerson"`
	KAM            KAMContact  `json:"KAM"`
	InitiateDate   time.Time   `json:"initiateDate"`
}

// NewMerchant is the payload submitted by the creation form.
type NewMerchant struct {
	MerchantName            string `json:"merchantName" validate:"required,max=120"`
	BusinessType            string `json:"businessType" validate:"required,max=80"`
	ProductType             string `json:"productType" validate:"required,max=80"`
	MerchantWallet          string `json:"merchantWallet" validate:"required,max=120"`
	MerchantTechPersonEmail string `json:"merchantTechPersonEmail" validate:"required,email"`
	MerchantTechPersonPhone string `json:"merchantTechPersonPhone" validate:"required,max=32"`
	KAMEmail                string `json:"KAMEmail" validate:"required,email"`
	KAMPhone                string `json:"KAMPhone" validate:"required,max=32"`
}

// DateRange bounds a report export. Both ends are calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

const dateLayout = "2006-01-02"

// StartDate formats the start as YYYY-MM-DD.
func (d DateRange) StartDate() string { return d.Start.Format(dateLayout) }

// EndDate formats the end as YYYY-MM-DD.
func (d DateRange) EndDate() string { return d.End.Format(dateLayout) }

// ReportFilename is the download name for the range's spreadsheet.
func (d DateRange) ReportFilename() string {
	return fmt.Sprintf("merchants_report_%s_to_%s.xlsx", d.StartDate(), d.EndDate())
}

// Report is an exported spreadsheet ready to be offered as a download.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Dedupe drops records whose UUID was already seen, keeping the first occurrence.
func Dedupe(records []Merchant) []Merchant {
	seen := make(map[string]struct{}, len(records))
	out := make([]Merchant, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.UUID]; ok {
			continue
		}
		seen[record.UUID] = struct{}{}
		out = append(out, record)
	}
	return out
}
