package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"constructboq/services"
)

const (
	docBOQ         = "boq"
	docCertificate = "certificate"
	docSummary     = "summary"
	docTakeoff     = "takeoff"
)

// exportDocument snapshots a session for export. A takeoff that has not
// been unlocked reports false after writing a 402.
func (d *Deps) exportDocument(e *core.RequestEvent) (services.Document, bool) {
	entry, ok := d.session(e)
	if !ok {
		return services.Document{}, false
	}
	var doc services.Document
	var paid bool
	entry.Do(func(s *services.Session) error {
		paid = s.Takeoff.IsPaid
		doc = services.DocumentFor(s, d.now().Format("2006-01-02"))
		return nil
	})
	if !paid {
		ErrorJSON(e, http.StatusPaymentRequired, "Unlock this takeoff to export")
		return services.Document{}, false
	}
	return doc, true
}

// HandleExportExcel downloads the full workbook of a session.
func HandleExportExcel(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		doc, ok := d.exportDocument(e)
		if !ok {
			return nil
		}

		xlsxBytes, err := services.GenerateExcel(services.BuildWorkbook(doc))
		if err != nil {
			d.logError("HandleExportExcel", "generate workbook", doc.Takeoff.ID, err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}
		return sendFile(e, contentTypeXLSX, services.ExportFilename("BOQ", doc.Meta.ProjectName, "xlsx"), xlsxBytes)
	}
}

// documentSheet picks the sheet named by ?doc=. The certificate exists only
// in payment mode and the grand summary only in estimation mode.
func documentSheet(doc services.Document, kind string, filter services.TakeoffFilter) (services.Sheet, string, bool) {
	switch kind {
	case docBOQ, "":
		return services.BuildBOQSheet(doc), "BOQ", true
	case docTakeoff:
		return services.BuildTakeoffSheet(doc, filter), "Takeoff", true
	case docCertificate:
		if doc.Snapshot.Mode != services.ModePayment {
			return services.Sheet{}, "", false
		}
		return services.BuildCertificateSheet(doc), "Certificate", true
	case docSummary:
		if doc.Snapshot.Mode != services.ModeEstimation {
			return services.Sheet{}, "", false
		}
		return services.BuildSummarySheet(doc), "Summary", true
	}
	return services.Sheet{}, "", false
}

// HandleExportPDF downloads one document of a session as PDF, selected by
// ?doc=boq|takeoff|certificate|summary.
func HandleExportPDF(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		doc, ok := d.exportDocument(e)
		if !ok {
			return nil
		}
		q := e.Request.URL.Query()
		kind := strings.ToLower(q.Get("doc"))
		sheet, prefix, ok := documentSheet(doc, kind, services.TakeoffFilter{Search: q.Get("search"), Source: q.Get("source")})
		if !ok {
			return ErrorJSON(e, http.StatusBadRequest, "Document not available for this takeoff: "+kind)
		}

		pdfBytes, err := services.GeneratePDF(sheet, doc.Date)
		if err != nil {
			d.logError("HandleExportPDF", "generate pdf", kind, err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}
		return sendFile(e, contentTypePDF, services.ExportFilename(prefix, doc.Meta.ProjectName, "pdf"), pdfBytes)
	}
}
