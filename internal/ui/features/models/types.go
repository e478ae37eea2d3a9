package models

import "github.com/leapstack-labs/metastore/internal/catalog"

// ListSignals are the Datastar signals of the model list filter.
type ListSignals struct {
	SearchTerm string `json:"searchTerm"`
	Status     string `json:"status"`
}

// Filter converts the signals into a catalog filter.
func (s ListSignals) Filter() catalog.Filter {
	return catalog.Filter{Search: s.SearchTerm, Status: catalog.ParseStatus(s.Status)}
}
