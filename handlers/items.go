package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"constructboq/services"
)

type itemPatch struct {
	Field services.ItemField `json:"field"`
	Value any                `json:"value"`
}

// HandleItemPatch edits one field of one line item and returns the
// recomputed session. Editing the dimension or timesing recomputes the
// item quantity.
func HandleItemPatch(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		itemID := e.Request.PathValue("itemId")
		if itemID == "" {
			return ErrorJSON(e, http.StatusBadRequest, "Missing item ID")
		}
		var req itemPatch
		if !bindJSON(e, &req) {
			return nil
		}

		err := entry.Do(func(s *services.Session) error {
			return s.UpdateItem(itemID, req.Field, req.Value)
		})
		if err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				// the value could not be converted to the field's type
				status = http.StatusBadRequest
			}
			return ErrorJSON(e, status, err.Error())
		}
		return respondSession(e, http.StatusOK, entry)
	}
}
