package question

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
)

// Column aliases recognized in import headers, keyed by the canonical column.
// Headers are matched after case and accent folding, so "Pregunta", "TIPO" or
// "Descripción" resolve the same as their plain forms.
var headerAliases = map[string][]string{
	"text":        {"text", "question", "question text", "pregunta"},
	"description": {"description", "descripcion", "notes"},
	"type":        {"type", "question type", "tipo"},
	"required":    {"required", "mandatory", "obligatorio"},
	"options":     {"options", "choices", "opciones"},
	"tags":        {"tags", "tag", "etiquetas"},
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldHeader lowercases a header cell and strips diacritics so the alias
// lookup is tolerant of the spreadsheets customers actually upload.
func foldHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	return s
}

// mapHeader resolves each CSV column to a canonical field, or "" when the
// column is unrecognized (ignored, not an error).
func mapHeader(header []string) (map[string]int, error) {
	canonical := map[string]string{}
	for field, aliases := range headerAliases {
		for _, a := range aliases {
			canonical[a] = field
		}
	}
	cols := map[string]int{}
	for i, cell := range header {
		if field, ok := canonical[foldHeader(cell)]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["text"]; !ok {
		return nil, fmt.Errorf("no question text column found in header %v", header)
	}
	return cols, nil
}

// ImportCSV bulk-loads questions from a CSV stream into the given subsection.
// Each row is independent: a bad row is reported and skipped, the rest still
// import. Tags named in the tags column are created on first use.
func (uc *UseCase) ImportCSV(ctx context.Context, r io.Reader, subsectionID string) (*dto.ImportReportResponse, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	report := &dto.ImportReportResponse{}
	tagCache := map[string]string{} // folded name -> tag ID
	rowNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			report.Errors++
			report.Rows = append(report.Rows, dto.ImportRowResult{Row: rowNum, Status: "error", Message: err.Error()})
			continue
		}

		cell := func(field string) string {
			i, ok := cols[field]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		text := cell("text")
		if text == "" {
			report.Skipped++
			report.Rows = append(report.Rows, dto.ImportRowResult{Row: rowNum, Status: "skipped", Message: "empty question text"})
			continue
		}

		qType := normalizeType(cell("type"))
		tagIDs, err := uc.resolveTags(splitList(cell("tags")), tagCache)
		if err != nil {
			report.Errors++
			report.Rows = append(report.Rows, dto.ImportRowResult{Row: rowNum, Status: "error", Message: err.Error()})
			continue
		}

		created, err := uc.CreateWithTags(ctx, dto.CreateQuestionRequest{
			SubsectionID: subsectionID,
			Text:         text,
			Description:  cell("description"),
			Type:         qType,
			Required:     parseBool(cell("required")),
			Options:      splitList(cell("options")),
			TagIDs:       tagIDs,
		})
		if err != nil {
			report.Errors++
			report.Rows = append(report.Rows, dto.ImportRowResult{Row: rowNum, Status: "error", Message: err.Error()})
			continue
		}

		report.Imported++
		report.Rows = append(report.Rows, dto.ImportRowResult{Row: rowNum, Status: "imported", ID: created.ID})
	}

	uc.log.Info().
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Int("errors", report.Errors).
		Msg("question import finished")
	return report, nil
}

// resolveTags maps tag names to IDs, creating missing tags on the fly.
func (uc *UseCase) resolveTags(names []string, cache map[string]string) ([]string, error) {
	var ids []string
	for _, name := range names {
		key := foldHeader(name)
		if id, ok := cache[key]; ok {
			ids = append(ids, id)
			continue
		}
		existing, err := uc.tagRepo.GetByName(name)
		if err != nil {
			return nil, fmt.Errorf("look up tag %q: %w", name, err)
		}
		if existing != nil {
			cache[key] = existing.ID
			ids = append(ids, existing.ID)
			continue
		}
		created, err := uc.CreateTag(dto.CreateTagRequest{Name: name})
		if err != nil {
			return nil, fmt.Errorf("create tag %q: %w", name, err)
		}
		cache[key] = created.ID
		ids = append(ids, created.ID)
	}
	return ids, nil
}

// normalizeType maps common spreadsheet spellings to the canonical question
// types. Unknown values pass through and fail validation downstream.
func normalizeType(s string) string {
	switch foldHeader(strings.ReplaceAll(s, "-", "_")) {
	case "", "text", "string", "free text", "texto":
		return "text"
	case "number", "numeric", "decimal", "numero":
		return "number"
	case "boolean", "bool", "yes/no", "yesno":
		return "boolean"
	case "single_select", "single select", "select", "choice", "dropdown":
		return "single_select"
	case "multi_select", "multi select", "multiselect", "checkboxes":
		return "multi_select"
	case "file", "upload", "attachment":
		return "file"
	case "table", "grid":
		return "table"
	default:
		return s
	}
}

func parseBool(s string) bool {
	switch foldHeader(s) {
	case "true", "yes", "y", "1", "si", "required":
		return true
	}
	return false
}

// splitList splits a multi-value cell on "|" or ";".
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	sep := "|"
	if !strings.Contains(s, "|") {
		sep = ";"
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
