package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"constructboq/services"
	"constructboq/views"
)

// HandlePrint renders one document of a session as a printable HTML page,
// selected by ?doc= like the PDF export.
func HandlePrint(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		doc, ok := d.exportDocument(e)
		if !ok {
			return nil
		}
		q := e.Request.URL.Query()
		kind := strings.ToLower(q.Get("doc"))
		sheet, _, ok := documentSheet(doc, kind, services.TakeoffFilter{Search: q.Get("search"), Source: q.Get("source")})
		if !ok {
			return ErrorJSON(e, http.StatusBadRequest, "Document not available for this takeoff: "+kind)
		}

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return views.SheetPage(sheet, doc.Date).Render(e.Request.Context(), e.Response)
	}
}
