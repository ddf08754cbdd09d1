package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Pay is the payment generated by a job.
type Pay struct {
	bun.BaseModel `bun:"table:pays,alias:p"`

	ID          int64           `bun:"id,pk,autoincrement" json:"id"`
	PayID       string          `bun:"pay_id,notnull,unique" json:"pay_id"`
	Payment     decimal.Decimal `bun:"payment,type:decimal(14,2),notnull" json:"payment"`
	Currency    string          `bun:"currency,nullzero" json:"currency,omitempty"`
	PaymentTime time.Time       `bun:"payment_time,nullzero" json:"payment_time,omitempty"`
	Payable     bool            `bun:"payable,notnull" json:"payable"`
	Paid        bool            `bun:"paid,notnull" json:"paid"`

	OrderNumber int64 `bun:"order_number,notnull,unique" json:"order_number"`
	Job         *Job  `bun:"rel:belongs-to,join:order_number=order_number" json:"job,omitempty"`

	Audit
	Version int `bun:"version,notnull" json:"version"`
}

// VersionRef exposes the optimistic-lock counter.
func (p *Pay) VersionRef() *int { return &p.Version }

// FormatPayID encodes customer, order and sequence numbers as CCCC-OOOO-SSSS.
func FormatPayID(customerID, orderNumber int64, seq int) string {
	return fmt.Sprintf("%04d-%04d-%04d", customerID, orderNumber, seq)
}

// PayBuilder accumulates pay fields.
type PayBuilder struct {
	pay Pay
}

// NewPayBuilder starts a brand-new pay record.
func NewPayBuilder() *PayBuilder {
	return &PayBuilder{}
}

// PayBuilderFrom seeds a builder with a copy of an existing pay record.
func PayBuilderFrom(p *Pay) *PayBuilder {
	b := &PayBuilder{}
	if p != nil {
		b.pay = *p
	}
	return b
}

func (b *PayBuilder) PayID(v string) *PayBuilder { b.pay.PayID = v; return b }
func (b *PayBuilder) Payment(v decimal.Decimal) *PayBuilder { b.pay.Payment = v; return b }
func (b *PayBuilder) Currency(v string) *PayBuilder { b.pay.Currency = v; return b }
func (b *PayBuilder) PaymentTime(v time.Time) *PayBuilder { b.pay.PaymentTime = v; return b }
func (b *PayBuilder) Payable(v bool) *PayBuilder { b.pay.Payable = v; return b }
func (b *PayBuilder) Paid(v bool) *PayBuilder { b.pay.Paid = v; return b }
func (b *PayBuilder) OrderNumber(v int64) *PayBuilder { b.pay.OrderNumber = v; return b }

// Job links the pay record to its job through the order number.
func (b *PayBuilder) Job(j *Job) *PayBuilder {
	b.pay.Job = j
	if j != nil {
		b.pay.OrderNumber = j.OrderNumber
	}
	return b
}

// Build returns a snapshot; later builder calls do not affect it.
func (b *PayBuilder) Build() *Pay {
	p := b.pay
	return &p
}
