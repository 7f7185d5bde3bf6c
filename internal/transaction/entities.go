package transaction

import (
	"encoding/json"
	"strings"
)

// CounterpartyKind tags which variant a Counterparty holds.
type CounterpartyKind string

const (
	KindCustomer CounterpartyKind = "customer"
	KindVendor   CounterpartyKind = "vendor"
)

// Counterparty is either a customer ("party") or a vendor. The variant is
// decided once when decoding: vendors arrive with vendorName, parties with name.
type Counterparty struct {
	Kind    CounterpartyKind `json:"kind"`
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Email   string           `json:"email,omitempty"`
	Phone   string           `json:"phone,omitempty"`
	TaxID   string           `json:"taxId,omitempty"`
	Address *Address         `json:"address,omitempty"`
}

type counterpartyWire struct {
	Kind       CounterpartyKind `json:"kind"`
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	VendorName string           `json:"vendorName"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Mobile     string           `json:"mobile"`
	TaxID      string           `json:"taxId"`
	GSTIN      string           `json:"gstin"`
	Address    *Address         `json:"address"`
}

func (c *Counterparty) UnmarshalJSON(data []byte) error {
	var w counterpartyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*c = Counterparty{
		Kind:    w.Kind,
		ID:      w.ID,
		Name:    w.Name,
		Email:   strings.TrimSpace(w.Email),
		Phone:   firstNonEmpty(w.Phone, w.Mobile),
		TaxID:   firstNonEmpty(w.TaxID, w.GSTIN),
		Address: w.Address,
	}

	if w.VendorName != "" {
		c.Kind = KindVendor
		c.Name = w.VendorName
	}

	if c.Kind == "" && w.Name != "" {
		c.Kind = KindCustomer
	}

	return nil
}

// Company is the issuing business.
type Company struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	RegistrationNumber string      `json:"registrationNumber,omitempty"`
	TaxID              string      `json:"taxId,omitempty"`
	Email              string      `json:"email,omitempty"`
	Phone              string      `json:"phone,omitempty"`
	Website            string      `json:"website,omitempty"`
	Address            *Address    `json:"address,omitempty"`
	Logo               string      `json:"logo,omitempty"`
	Client             Ref[Client] `json:"client"`
}

// Client is the reseller account that onboarded a company.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

// BankAccount holds payment details printed on documents.
type BankAccount struct {
	ID            string `json:"id"`
	BankName      string `json:"bankName,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	SWIFT         string `json:"swift,omitempty"`
	Branch        string `json:"branch,omitempty"`
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Lines returns the non-empty address lines in print order.
func (a *Address) Lines() []string {
	if a == nil {
		return nil
	}

	var out []string

	for _, s := range []string{a.Line1, a.Line2} {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	city := strings.TrimSpace(strings.Join(nonEmpty(a.City, a.State, a.PostalCode), ", "))
	if city != "" {
		out = append(out, city)
	}

	if c := strings.TrimSpace(a.Country); c != "" {
		out = append(out, c)
	}

	return out
}

func (a *Address) String() string {
	return strings.Join(a.Lines(), ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

// Item is a catalog product or service referenced by line items.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}
