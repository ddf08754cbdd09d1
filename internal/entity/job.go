package entity

import "github.com/uptrace/bun"

// Job statuses used by the seeder and transports; the column is free text.
const (
	JobStatusOpen       = "open"
	JobStatusInProgress = "in_progress"
	JobStatusDone       = "done"
)

// Job is an order placed by a customer and worked on by a developer.
type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	OrderNumber int64  `bun:"order_number,notnull,unique" json:"order_number"`
	ProjectName string `bun:"project_name,notnull" json:"project_name"`
	BranchName  string `bun:"branch_name,nullzero" json:"branch_name,omitempty"`
	PackageName string `bun:"package_name,nullzero" json:"package_name,omitempty"`
	ClassName   string `bun:"class_name,nullzero" json:"class_name,omitempty"`
	Status      string `bun:"status,notnull" json:"status"`
	Comment     string `bun:"comment,nullzero" json:"comment,omitempty"`

	CustomerID  int64      `bun:"customer_id,notnull" json:"customer_id"`
	Customer    *Customer  `bun:"rel:belongs-to,join:customer_id=customer_id" json:"customer,omitempty"`
	DeveloperID int64      `bun:"developer_id,notnull" json:"developer_id"`
	Developer   *Developer `bun:"rel:belongs-to,join:developer_id=developer_id" json:"developer,omitempty"`
	Pay         *Pay       `bun:"rel:has-one,join:order_number=order_number" json:"pay,omitempty"`

	Audit
	Version int `bun:"version,notnull" json:"version"`
}

// VersionRef exposes the optimistic-lock counter.
func (j *Job) VersionRef() *int { return &j.Version }

// JobBuilder accumulates job fields.
type JobBuilder struct {
	job Job
}

// NewJobBuilder starts a brand-new job.
func NewJobBuilder() *JobBuilder {
	return &JobBuilder{}
}

// JobBuilderFrom seeds a builder with a copy of an existing job.
func JobBuilderFrom(j *Job) *JobBuilder {
	b := &JobBuilder{}
	if j != nil {
		b.job = *j
	}
	return b
}

func (b *JobBuilder) OrderNumber(v int64) *JobBuilder { b.job.OrderNumber = v; return b }
func (b *JobBuilder) ProjectName(v string) *JobBuilder { b.job.ProjectName = v; return b }
func (b *JobBuilder) BranchName(v string) *JobBuilder { b.job.BranchName = v; return b }
func (b *JobBuilder) PackageName(v string) *JobBuilder { b.job.PackageName = v; return b }
func (b *JobBuilder) ClassName(v string) *JobBuilder { b.job.ClassName = v; return b }
func (b *JobBuilder) Status(v string) *JobBuilder { b.job.Status = v; return b }
func (b *JobBuilder) Comment(v string) *JobBuilder { b.job.Comment = v; return b }
func (b *JobBuilder) CustomerID(v int64) *JobBuilder { b.job.CustomerID = v; return b }
func (b *JobBuilder) DeveloperID(v int64) *JobBuilder { b.job.DeveloperID = v; return b }
func (b *JobBuilder) Pay(p *Pay) *JobBuilder { b.job.Pay = p; return b }

// Customer links the job to its customer through the natural key.
func (b *JobBuilder) Customer(c *Customer) *JobBuilder {
	b.job.Customer = c
	if c != nil {
		b.job.CustomerID = c.CustomerID
	}
	return b
}

// Developer links the job to its developer through the natural key.
func (b *JobBuilder) Developer(d *Developer) *JobBuilder {
	b.job.Developer = d
	if d != nil {
		b.job.DeveloperID = d.DeveloperID
	}
	return b
}

// Build returns a snapshot; later builder calls do not affect it.
func (b *JobBuilder) Build() *Job {
	j := b.job
	return &j
}
