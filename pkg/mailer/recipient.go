package mailer

import (
	"fmt"
	"maps"
)

// Recipients is the input of Mailer.AddRecipient. It is implemented by
// Address, AddressList, TemplateData and TemplateDataList only.
type Recipients interface {
	collect(*recipientBatch) error
}

// Address is a single plain recipient address.
type Address string

// AddressList is a sequence of plain recipient addresses.
type AddressList []string

// TemplateData is a per-recipient substitution record.
// It must carry the recipient address under the "email" key.
type TemplateData map[string]string

// TemplateDataList is a sequence of per-recipient substitution records.
type TemplateDataList []TemplateData

// EmailKey is the TemplateData key holding the recipient address.
const EmailKey = "email"

// Email returns the recipient address of the record.
func (d TemplateData) Email() string {
	return d[EmailKey]
}

func (d TemplateData) clone() TemplateData {
	return maps.Clone(d)
}

// recipientBatch collects validated input of one AddRecipient call
// so nothing reaches the mailer unless every element is valid.
type recipientBatch struct {
	addresses []string
	records   []TemplateData
}

func (a Address) collect(b *recipientBatch) error {
	if err := ValidateAddress(string(a)); err != nil {
		return err
	}
	b.addresses = append(b.addresses, string(a))
	return nil
}

func (l AddressList) collect(b *recipientBatch) error {
	for i, addr := range l {
		if err := ValidateAddress(addr); err != nil {
			return fmt.Errorf("recipient %d: %w", i, err)
		}
		b.addresses = append(b.addresses, addr)
	}
	return nil
}

func (d TemplateData) collect(b *recipientBatch) error {
	if err := ValidateAddress(d.Email()); err != nil {
		return err
	}
	b.records = append(b.records, d.clone())
	return nil
}

func (l TemplateDataList) collect(b *recipientBatch) error {
	for i, d := range l {
		if err := d.collect(b); err != nil {
			return fmt.Errorf("template data %d: %w", i, err)
		}
	}
	return nil
}
