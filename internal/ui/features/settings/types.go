package settings

import (
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/ui/features/settings/pages"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// Decode reads settings from submitted values. A blank password keeps the
// current one, since the form never renders it back.
func Decode(v url.Values, current core.Settings) (core.Settings, form.Errors) {
	errs := form.Errors{}
	s := core.Settings{
		OrganizationName:   strings.TrimSpace(v.Get(pages.FieldOrganization)),
		EmailNotifications: v.Has(pages.FieldNotify),
		AdminEmail:         strings.TrimSpace(v.Get(pages.FieldAdminEmail)),
		RedshiftHost:       strings.TrimSpace(v.Get(pages.FieldHost)),
		RedshiftUser:       strings.TrimSpace(v.Get(pages.FieldUser)),
		RedshiftPassword:   v.Get(pages.FieldPassword),
		RedshiftDatabase:   strings.TrimSpace(v.Get(pages.FieldDatabase)),
		UseSSL:             v.Has(pages.FieldSSL),
	}
	if s.RedshiftPassword == "" {
		s.RedshiftPassword = current.RedshiftPassword
	}

	port, err := strconv.Atoi(strings.TrimSpace(v.Get(pages.FieldPort)))
	if err != nil || port < 1 || port > 65535 {
		errs.Add(pages.FieldPort, "Port must be a number between 1 and 65535")
	}
	s.RedshiftPort = port

	if s.AdminEmail != "" {
		if _, err := mail.ParseAddress(s.AdminEmail); err != nil {
			errs.Add(pages.FieldAdminEmail, "Enter a valid email address")
		}
	} else if s.EmailNotifications {
		errs.Add(pages.FieldAdminEmail, "An admin email is required for notifications")
	}

	return s, errs
}
