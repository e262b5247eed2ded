package merchanthttp

import (
	"github.com/maxp/merchant-portal/internal/merchants"
	"github.com/maxp/merchant-portal/internal/shared"
)

type listView struct {
	Merchants   []merchants.Merchant
	Query       string
	ActiveQuery string
	Matches     int
	Pagination  shared.Pagination
	Window      []shared.PageItem
	ReportOpen  bool
	ReportError string
	Start       string
	End         string
	Error       string
}

func newListView(listing *merchants.Listing, opts listOptions) listView {
	pagination := listing.Pagination()
	return listView{
		Merchants:   listing.CurrentPage(),
		Query:       listing.PendingQuery(),
		ActiveQuery: listing.ActiveQuery(),
		Matches:     pagination.Total,
		Pagination:  pagination,
		Window:      listing.PageWindow(),
		ReportOpen:  opts.reportOpen,
		ReportError: opts.reportError,
		Start:       opts.start,
		End:         opts.end,
	}
}

// formField describes one input of the creation form.
type formField struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Value       string
	Error       string
}

type createView struct {
	Values merchants.NewMerchant
	Errors map[string]string
	Fields []formField
	Error  string
}

func createFields(values merchants.NewMerchant, errs map[string]string) []formField {
	fields := []formField{
		{Name: "merchantName", Label: "Merchant Name", Type: "text", Placeholder: "Enter merchant name", Value: values.MerchantName},
		{Name: "businessType", Label: "Business Type", Type: "text", Placeholder: "Enter business type", Value: values.BusinessType},
		{Name: "productType", Label: "Product Type", Type: "text", Placeholder: "Enter product type", Value: values.ProductType},
		{Name: "merchantWallet", Label: "Merchant Wallet", Type: "text", Placeholder: "Enter merchant wallet", Value: values.MerchantWallet},
		{Name: "merchantTechPersonEmail", Label: "Tech Person Email", Type: "email", Placeholder: "Enter tech person email", Value: values.MerchantTechPersonEmail},
		{Name: "merchantTechPersonPhone", Label: "Tech Person Phone", Type: "tel", Placeholder: "Enter tech person phone", Value: values.MerchantTechPersonPhone},
		{Name: "KAMEmail", Label: "KAM Email", Type: "email", Placeholder: "Enter KAM email", Value: values.KAMEmail},
		{Name: "KAMPhone", Label: "KAM Phone", Type: "tel", Placeholder: "Enter KAM phone", Value: values.KAMPhone},
	}
	for i := range fields {
		fields[i].Error = errs[fields[i].Name]
	}
	return fields
}

// pageResponse is the JSON shape of /api/merchants.
type pageResponse struct {
	Query      string               `json:"query"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
	Total      int                  `json:"total"`
	Merchants  []merchants.Merchant `json:"merchants"`
}

func newPageResponse(listing *merchants.Listing) pageResponse {
	pagination := listing.Pagination()
	return pageResponse{
		Query:      listing.ActiveQuery(),
		Page:       pagination.Page,
		PageSize:   pagination.PerPage,
		TotalPages: pagination.TotalPages,
		Total:      pagination.Total,
		Merchants:  listing.CurrentPage(),
	}
}
