// Package pages renders the settings page.
package pages

// Settings form field names.
const (
	FieldOrganization = "organization_name"
	FieldNotify       = "email_notifications"
	FieldAdminEmail   = "admin_email"
	FieldHost         = "redshift_host"
	FieldPort         = "redshift_port"
	FieldUser         = "redshift_user"
	FieldPassword     = "redshift_password"
	FieldDatabase     = "redshift_database"
	FieldSSL          = "use_ssl"
)

// ConnectionStatus is the outcome of a connection test. The zero value
// renders an empty placeholder.
type ConnectionStatus struct {
	OK      bool
	Message string
}

func (st ConnectionStatus) class() string {
	switch {
	case st.Message == "":
		return "connection-result"
	case st.OK:
		return "connection-result ok"
	default:
		return "connection-result failed"
	}
}

func passwordPlaceholder(current string) string {
	if current != "" {
		return "Leave blank to keep the current password"
	}
	return "Enter password"
}
