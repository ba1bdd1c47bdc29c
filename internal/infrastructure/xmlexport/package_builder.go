// Package xmlexport renders the XML interchange package of an approved
// Product Information Request, for customers that archive compliance data in
// their own document systems.
package xmlexport

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	apppir "github.com/scottring/compliant-connect-sub001/internal/application/pir"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
)

var _ apppir.PackageBuilder = (*PackageBuilder)(nil)

// PackageBuilder implements pir.PackageBuilder using etree.
type PackageBuilder struct{}

// NewPackageBuilder builds the XML adapter.
func NewPackageBuilder() *PackageBuilder { return &PackageBuilder{} }

// BuildPackage renders the export document and returns its bytes.
func (b *PackageBuilder) BuildPackage(
	req *entity.PIRRequest,
	customer, supplier *entity.Company,
	rows []apppir.ReportRow,
) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("ComplianceReport")
	root.CreateAttr("requestId", req.ID)
	root.CreateAttr("generatedAt", time.Now().UTC().Format(time.RFC3339))

	product := root.CreateElement("Product")
	product.CreateElement("Name").SetText(req.ProductName)
	if req.Description != "" {
		product.CreateElement("Description").SetText(req.Description)
	}
	product.CreateElement("Status").SetText(string(req.Status))
	product.CreateElement("ApprovedAt").SetText(req.UpdatedAt.UTC().Format(time.RFC3339))

	parties := root.CreateElement("Parties")
	addParty(parties, "Customer", customer)
	addParty(parties, "Supplier", supplier)

	answers := root.CreateElement("Answers")
	for _, r := range rows {
		answer := answers.CreateElement("Answer")
		answer.CreateAttr("type", r.Type)
		answer.CreateAttr("approved", fmt.Sprintf("%t", r.Approved))
		answer.CreateElement("Question").SetText(r.Question)
		answer.CreateElement("Value").SetText(r.Answer)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xml: serialize package: %w", err)
	}
	return out, nil
}

func addParty(parent *etree.Element, role string, c *entity.Company) {
	party := parent.CreateElement(role)
	party.CreateAttr("id", c.ID)
	party.CreateElement("Name").SetText(c.Name)
	if c.ContactName != "" {
		party.CreateElement("ContactName").SetText(c.ContactName)
	}
	if c.ContactEmail != "" {
		party.CreateElement("ContactEmail").SetText(c.ContactEmail)
	}
	if c.Country != "" {
		party.CreateElement("Country").SetText(c.Country)
	}
}
