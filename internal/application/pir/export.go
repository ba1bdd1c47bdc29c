package pir

import (
	"context"
	"strings"

	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	domainpir "github.com/scottring/compliant-connect-sub001/internal/domain/pir"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
)

// ReportRow is one question/answer pair flattened for export.
type ReportRow struct {
	Question string
	Type     string
	Answer   string
	Approved bool
}

// ReportGenerator renders the compliance report PDF. Implemented with Maroto
// in infrastructure.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, req *entity.PIRRequest, customer, supplier *entity.Company, rows []ReportRow) ([]byte, error)
}

// PackageBuilder renders the XML interchange package. Implemented with etree
// in infrastructure.
type PackageBuilder interface {
	BuildPackage(req *entity.PIRRequest, customer, supplier *entity.Company, rows []ReportRow) ([]byte, error)
}

// ExportUseCase produces archival exports of approved requests.
type ExportUseCase struct {
	requestRepo  repository.PIRRequestRepository
	responseRepo repository.PIRResponseRepository
	questionRepo repository.QuestionRepository
	companyRepo  repository.CompanyRepository
	report       ReportGenerator
	xml          PackageBuilder
}

// NewExportUseCase builds the export use case.
func NewExportUseCase(
	requestRepo repository.PIRRequestRepository,
	responseRepo repository.PIRResponseRepository,
	questionRepo repository.QuestionRepository,
	companyRepo repository.CompanyRepository,
	report ReportGenerator,
	xml PackageBuilder,
) *ExportUseCase {
	return &ExportUseCase{
		requestRepo:  requestRepo,
		responseRepo: responseRepo,
		questionRepo: questionRepo,
		companyRepo:  companyRepo,
		report:       report,
		xml:          xml,
	}
}

// ExportPDF renders the compliance report of an approved request.
func (uc *ExportUseCase) ExportPDF(ctx context.Context, pirID, companyID string) ([]byte, error) {
	req, customer, supplier, rows, err := uc.load(pirID, companyID)
	if err != nil {
		return nil, err
	}
	return uc.report.GenerateReport(ctx, req, customer, supplier, rows)
}

// ExportXML renders the XML package of an approved request.
func (uc *ExportUseCase) ExportXML(pirID, companyID string) ([]byte, error) {
	req, customer, supplier, rows, err := uc.load(pirID, companyID)
	if err != nil {
		return nil, err
	}
	return uc.xml.BuildPackage(req, customer, supplier, rows)
}

// load gathers everything an export needs. Only approved requests export;
// anything else is a conflict with the current state.
func (uc *ExportUseCase) load(pirID, companyID string) (*entity.PIRRequest, *entity.Company, *entity.Company, []ReportRow, error) {
	req, err := uc.requestRepo.GetByID(pirID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if req == nil {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	if req.CustomerID != companyID && req.SupplierCompanyID != companyID {
		return nil, nil, nil, nil, domain.ErrForbidden
	}
	if req.Status != domainpir.StatusApproved {
		return nil, nil, nil, nil, domain.ErrConflict
	}
	customer, err := uc.companyRepo.GetByID(req.CustomerID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	supplier, err := uc.companyRepo.GetByID(req.SupplierCompanyID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	questions, err := uc.questionRepo.ListByTags(req.TagIDs)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	responses, err := uc.responseRepo.ListByPIR(pirID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	byQuestion := make(map[string]*entity.PIRResponse, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}
	rows := make([]ReportRow, 0, len(questions))
	for _, q := range questions {
		row := ReportRow{Question: q.Text, Type: q.Type}
		if r, ok := byQuestion[q.ID]; ok {
			row.Answer = renderAnswer(r.Answer)
			row.Approved = r.ApprovedAt != nil
		}
		rows = append(rows, row)
	}
	return req, customer, supplier, rows, nil
}

// renderAnswer flattens a typed answer to display text.
func renderAnswer(a entity.AnswerValue) string {
	switch {
	case a.Text != nil:
		return *a.Text
	case a.Number != nil:
		return a.Number.String()
	case a.Bool != nil:
		if *a.Bool {
			return "Yes"
		}
		return "No"
	case len(a.Choices) > 0:
		return strings.Join(a.Choices, ", ")
	case a.FileURL != nil:
		return *a.FileURL
	case len(a.Table) > 0:
		var b strings.Builder
		for i, row := range a.Table {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(strings.Join(row, " | "))
		}
		return b.String()
	default:
		return ""
	}
}
