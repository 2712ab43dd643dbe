package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"constructboq/services"
)

const maxImportSize = 10 << 20

// HandleItemTemplate serves the Excel template for line item import.
func HandleItemTemplate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateItemTemplate()
		if err != nil {
			d.logError("HandleItemTemplate", "generate template", nil, err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to generate template")
		}
		return sendFile(e, contentTypeXLSX, "Takeoff_Items_Template.xlsx", xlsxBytes)
	}
}

// HandleItemImport parses an uploaded .csv or .xlsx sheet and appends its
// valid rows to the session. With ?dry_run=true nothing is appended.
func HandleItemImport(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		if err := e.Request.ParseMultipartForm(maxImportSize); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "File too large or invalid form data")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ImportItems(file, header.Filename)
		if err != nil {
			return ErrorJSON(e, http.StatusBadRequest, err.Error())
		}
		if result.Errors == nil {
			result.Errors = []services.ImportError{}
		}

		added := []services.LineItem{}
		if e.Request.URL.Query().Get("dry_run") != "true" && len(result.Items) > 0 {
			entry.Do(func(s *services.Session) error {
				added = s.AppendItems(result.Items)
				return nil
			})
		}
		return e.JSON(http.StatusOK, map[string]any{
			"result": result,
			"added":  added,
		})
	}
}

// HandleImportErrorReport turns posted import errors into an Excel report.
func HandleImportErrorReport(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var errs []services.ImportError
		if !bindJSON(e, &errs) {
			return nil
		}
		if len(errs) == 0 {
			return ErrorJSON(e, http.StatusBadRequest, "No errors to report")
		}

		xlsxBytes, err := services.GenerateErrorReport(errs)
		if err != nil {
			d.logError("HandleImportErrorReport", "generate report", len(errs), err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to generate error report")
		}
		return sendFile(e, contentTypeXLSX, "Import_Errors.xlsx", xlsxBytes)
	}
}
