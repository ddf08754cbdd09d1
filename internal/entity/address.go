package entity

// Address is stored inline with its owner under the address_ column prefix.
type Address struct {
	Country string `bun:"country,nullzero" json:"country,omitempty"`
	Region  string `bun:"region,nullzero" json:"region,omitempty"`
	City    string `bun:"city,nullzero" json:"city,omitempty"`
	Street  string `bun:"street,nullzero" json:"street,omitempty"`
	Zip     string `bun:"zip,nullzero" json:"zip,omitempty"`
	POBox   string `bun:"po_box,nullzero" json:"po_box,omitempty"`
	Phone   string `bun:"phone,nullzero" json:"phone,omitempty"`
	Email   string `bun:"email,nullzero" json:"email,omitempty"`
}

// AddressBuilder accumulates address fields.
type AddressBuilder struct {
	address Address
}

// NewAddressBuilder starts an empty address.
func NewAddressBuilder() *AddressBuilder {
	return &AddressBuilder{}
}

// AddressBuilderFrom seeds a builder with a copy of an existing address.
func AddressBuilderFrom(a Address) *AddressBuilder {
	return &AddressBuilder{address: a}
}

func (b *AddressBuilder) Country(v string) *AddressBuilder { b.address.Country = v; return b }
func (b *AddressBuilder) Region(v string) *AddressBuilder { b.address.Region = v; return b }
func (b *AddressBuilder) City(v string) *AddressBuilder { b.address.City = v; return b }
func (b *AddressBuilder) Street(v string) *AddressBuilder { b.address.Street = v; return b }
func (b *AddressBuilder) Zip(v string) *AddressBuilder { b.address.Zip = v; return b }
func (b *AddressBuilder) POBox(v string) *AddressBuilder { b.address.POBox = v; return b }
func (b *AddressBuilder) Phone(v string) *AddressBuilder { b.address.Phone = v; return b }
func (b *AddressBuilder) Email(v string) *AddressBuilder { b.address.Email = v; return b }

// Build returns the accumulated address.
func (b *AddressBuilder) Build() Address {
	return b.address
}
