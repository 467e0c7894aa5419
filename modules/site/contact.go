package site

import (
	"fmt"
	"mime"
	"net/http"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/applytrack/handler"
	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/pkg/validator"
	"github.com/dmitrymomot/applytrack/svc/contact"
)

// createContactMessage answers JSON clients with the stored message and
// browser form posts with a redirect back to the contact page.
func (m *Module) createContactMessage(ctx handler.Context, in contact.Input) handler.Response {
	msg, err := m.contacts.Create(ctx, in)
	if !wantsJSON(ctx.Request()) {
		return m.contactRedirect(err)
	}
	if err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(msg,
		handler.WithJSONStatus(http.StatusCreated),
		handler.WithJSONMeta(map[string]any{"notice": contact.SuccessMessage}),
	)
}

func (m *Module) contactRedirect(err error) handler.Response {
	flash := handler.Flash{Level: "notice", Message: contact.SuccessMessage}
	if err != nil {
		flash = handler.Flash{Level: "alert", Message: "Unable to send your message. Please try again."}
		if ve := validator.Extract(err); len(ve) > 0 {
			flash.Message = fmt.Sprintf("%s %s", cases.Title(language.English).String(ve[0].Field), ve[0].Message)
		} else {
			m.logger.Error("contact message not saved", logger.Component("site"), logger.Error(err))
		}
	}
	return handler.RedirectWithFlash(m.contactPath, m.flash, handler.FlashKey, flash)
}

func wantsJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
