package form

// Errors maps form field names to validation messages.
type Errors map[string]string

// Add records msg for field unless one is already recorded.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Get returns the message recorded for field.
func (e Errors) Get(field string) string {
	return e[field]
}

// Any reports whether any field has an error.
func (e Errors) Any() bool {
	return len(e) > 0
}
