package consumer

import "github.com/darmiel/vertrag/internal/core"

const (
	DefaultConsumerID  = "consumer-tierone-supplier"
	DefaultCompanyName = "TierOne Electronics GmbH"
)

type Identity struct {
	ID          string            `json:"id" yaml:"id"`
	CompanyName string            `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	Attributes  core.AttributeSet `json:"attributes" yaml:"attributes"`
}

// DefaultIdentity is a certified tier 1 supplier in the EU doing quality analysis.
func DefaultIdentity() Identity {
	return Identity{
		ID:          DefaultConsumerID,
		CompanyName: DefaultCompanyName,
		Attributes: core.AttributeSet{
			"partner_type":  core.StringValue("tier1_supplier"),
			"region":        core.StringValue("EU"),
			"certification": core.ListValue("TISAX", "ISO27001", "IATF16949"),
			"purpose":       core.StringValue("quality_analysis"),
		},
	}
}

func (i Identity) clone() Identity {
	i.Attributes = i.Attributes.Clone()
	return i
}
