package dto

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/timeclock/internal/entity"
)

// AuditResponse exposes provenance columns.
type AuditResponse struct {
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy string     `json:"created_by"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
}

// AddressPayload is the address shape shared by requests and responses.
type AddressPayload struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
	Street  string `json:"street,omitempty"`
	Zip     string `json:"zip,omitempty"`
	POBox   string `json:"po_box,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// CustomerResponse represents a customer as exposed via transport layers.
type CustomerResponse struct {
	CustomerID int64          `json:"customer_id"`
	Name       string         `json:"name"`
	Contact    string         `json:"contact,omitempty"`
	Address    AddressPayload `json:"address"`
	Version    int            `json:"version"`
	Audit      AuditResponse  `json:"audit"`
}

// DeveloperResponse represents a developer.
type DeveloperResponse struct {
	DeveloperID int64          `json:"developer_id"`
	Forename    string         `json:"forename"`
	LastName    string         `json:"last_name,omitempty"`
	Address     AddressPayload `json:"address"`
	Version     int            `json:"version"`
	Audit       AuditResponse  `json:"audit"`
}

// JobResponse represents a job with the keys of its parties.
type JobResponse struct {
	OrderNumber int64         `json:"order_number"`
	ProjectName string        `json:"project_name"`
	BranchName  string        `json:"branch_name,omitempty"`
	PackageName string        `json:"package_name,omitempty"`
	ClassName   string        `json:"class_name,omitempty"`
	Status      string        `json:"status"`
	Comment     string        `json:"comment,omitempty"`
	CustomerID  int64         `json:"customer_id"`
	DeveloperID int64         `json:"developer_id"`
	Version     int           `json:"version"`
	Audit       AuditResponse `json:"audit"`
}

// PayResponse represents a pay record.
type PayResponse struct {
	PayID       string          `json:"pay_id"`
	OrderNumber int64           `json:"order_number"`
	Payment     decimal.Decimal `json:"payment"`
	Currency    string          `json:"currency,omitempty"`
	PaymentTime *time.Time      `json:"payment_time,omitempty"`
	Payable     bool            `json:"payable"`
	Paid        bool            `json:"paid"`
	Version     int             `json:"version"`
	Audit       AuditResponse   `json:"audit"`
}

// WorkingHoursResponse represents one clocked shift.
type WorkingHoursResponse struct {
	ID          int64         `json:"id"`
	DeveloperID int64         `json:"developer_id"`
	Day         string        `json:"day"`
	WorkStart   time.Time     `json:"work_start"`
	WorkEnd     *time.Time    `json:"work_end,omitempty"`
	Minutes     int64         `json:"minutes"`
	Version     int           `json:"version"`
	Audit       AuditResponse `json:"audit"`
}

// FromAudit converts provenance columns.
func FromAudit(a *entity.Audit) AuditResponse {
	return AuditResponse{
		CreatedAt: a.CreatedAt,
		CreatedBy: a.CreatedBy,
		UpdatedAt: optionalTime(a.UpdatedAt),
		UpdatedBy: a.UpdatedBy,
	}
}

// FromAddress converts an embedded address.
func FromAddress(a entity.Address) AddressPayload {
	return AddressPayload(a)
}

// Address builds the entity value of a payload.
func (p AddressPayload) Address() entity.Address {
	return entity.Address(p)
}

// FromCustomer converts a customer.
func FromCustomer(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID: c.CustomerID,
		Name:       c.Name,
		Contact:    c.Contact,
		Address:    FromAddress(c.Address),
		Version:    c.Version,
		Audit:      FromAudit(&c.Audit),
	}
}

// FromDeveloper converts a developer.
func FromDeveloper(d *entity.Developer) DeveloperResponse {
	return DeveloperResponse{
		DeveloperID: d.DeveloperID,
		Forename:    d.Forename,
		LastName:    d.LastName,
		Address:     FromAddress(d.Address),
		Version:     d.Version,
		Audit:       FromAudit(&d.Audit),
	}
}

// FromDevelopers converts a developer list ordered by developer id.
func FromDevelopers(ds []*entity.Developer) []DeveloperResponse {
	out := make([]DeveloperResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, FromDeveloper(d))
	}
	slices.SortFunc(out, func(a, b DeveloperResponse) int { return cmp.Compare(a.DeveloperID, b.DeveloperID) })
	return out
}

// FromJob converts a job.
func FromJob(j *entity.Job) JobResponse {
	return JobResponse{
		OrderNumber: j.OrderNumber,
		ProjectName: j.ProjectName,
		BranchName:  j.BranchName,
		PackageName: j.PackageName,
		ClassName:   j.ClassName,
		Status:      j.Status,
		Comment:     j.Comment,
		CustomerID:  j.CustomerID,
		DeveloperID: j.DeveloperID,
		Version:     j.Version,
		Audit:       FromAudit(&j.Audit),
	}
}

// FromJobs converts a job list ordered by order number.
func FromJobs(js []*entity.Job) []JobResponse {
	out := make([]JobResponse, 0, len(js))
	for _, j := range js {
		out = append(out, FromJob(j))
	}
	slices.SortFunc(out, func(a, b JobResponse) int { return cmp.Compare(a.OrderNumber, b.OrderNumber) })
	return out
}

// FromPay converts a pay record.
func FromPay(p *entity.Pay) PayResponse {
	return PayResponse{
		PayID:       p.PayID,
		OrderNumber: p.OrderNumber,
		Payment:     p.Payment,
		Currency:    p.Currency,
		PaymentTime: optionalTime(p.PaymentTime),
		Payable:     p.Payable,
		Paid:        p.Paid,
		Version:     p.Version,
		Audit:       FromAudit(&p.Audit),
	}
}

// FromPays converts a pay list ordered by pay id.
func FromPays(ps []*entity.Pay) []PayResponse {
	out := make([]PayResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromPay(p))
	}
	slices.SortFunc(out, func(a, b PayResponse) int { return strings.Compare(a.PayID, b.PayID) })
	return out
}

// FromWorkingHours converts a shift. Minutes stay zero while it is open.
func FromWorkingHours(w *entity.WorkingHours) WorkingHoursResponse {
	return WorkingHoursResponse{
		ID:          w.ID,
		DeveloperID: w.DeveloperID,
		Day:         w.Day.Format(time.DateOnly),
		WorkStart:   w.WorkStart,
		WorkEnd:     optionalTime(w.WorkEnd),
		Minutes:     int64(w.Duration() / time.Minute),
		Version:     w.Version,
		Audit:       FromAudit(&w.Audit),
	}
}

// FromWorkingHoursList converts a shift list, earliest start first.
func FromWorkingHoursList(ws []*entity.WorkingHours) []WorkingHoursResponse {
	out := make([]WorkingHoursResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, FromWorkingHours(w))
	}
	slices.SortFunc(out, func(a, b WorkingHoursResponse) int { return a.WorkStart.Compare(b.WorkStart) })
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
