// Package core defines the shared types of MetaStore: pipeline models, their
// steps, settings and the Store interface every backend implements.
package core

import (
	"sort"
	"strings"
	"time"
)

// Model types offered by the editor.
const (
	ModelTypeRedshift  = "REDSHIFT"
	ModelTypeSnowflake = "SNOWFLAKE"
	ModelTypeBigQuery  = "BIGQUERY"
	ModelTypeSpark     = "SPARK"
)

// Write mechanisms declare how a step updates its destination.
const (
	WriteUpsert    = "UPSERT"
	WriteAppend    = "APPEND"
	WriteOverwrite = "OVERWRITE"
)

// Schema field types offered by the editor.
const (
	FieldString    = "string"
	FieldInteger   = "integer"
	FieldFloat     = "float"
	FieldBoolean   = "boolean"
	FieldTimestamp = "timestamp"
	FieldArray     = "array"
	FieldMap       = "map"
)

// ModelTypes lists the model types in display order.
var ModelTypes = []string{ModelTypeRedshift, ModelTypeSnowflake, ModelTypeBigQuery, ModelTypeSpark}

// WriteMechanisms lists the write mechanisms in display order.
var WriteMechanisms = []string{WriteUpsert, WriteAppend, WriteOverwrite}

// FieldTypes lists the schema field types in display order.
var FieldTypes = []string{FieldString, FieldInteger, FieldFloat, FieldBoolean, FieldTimestamp, FieldArray, FieldMap}

// Step is one stage in a model's pipeline.
type Step struct {
	ModelID         string   `json:"model_id" yaml:"model_id"`
	Name            string   `json:"name" yaml:"name"`
	StepOrder       int      `json:"step_order" yaml:"step_order"`
	Query           string   `json:"query" yaml:"query"`
	DestinationName string   `json:"destination_name" yaml:"destination_name"`
	Schema          Mapping  `json:"schema" yaml:"schema"`
	WriteMechanism  string   `json:"write_mechanism" yaml:"write_mechanism"`
	PrimaryKeys     []string `json:"primary_keys" yaml:"primary_keys"`
	PartitionKeys   []string `json:"partition_keys" yaml:"partition_keys"`
	SortKeys        []string `json:"sort_keys" yaml:"sort_keys"`
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	s.Schema = s.Schema.Clone()
	s.PrimaryKeys = cloneStrings(s.PrimaryKeys)
	s.PartitionKeys = cloneStrings(s.PartitionKeys)
	s.SortKeys = cloneStrings(s.SortKeys)
	return s
}

// Model is a named, schedulable grouping of ordered steps.
type Model struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	ModelType        string    `json:"model_type" yaml:"model_type"`
	Enabled          bool      `json:"enabled" yaml:"enabled"`
	ScheduleInterval string    `json:"schedule_interval" yaml:"schedule_interval"`
	Tags             Mapping   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Steps            []Step    `json:"steps" yaml:"steps"`
	CreatedAt        time.Time `json:"created_at" yaml:"-"`
	UpdatedAt        time.Time `json:"updated_at" yaml:"-"`
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	out := *m
	out.Tags = m.Tags.Clone()
	out.Steps = make([]Step, len(m.Steps))
	for i, s := range m.Steps {
		out.Steps[i] = s.Clone()
	}
	return &out
}

// StepByOrder returns the first step whose StepOrder equals order.
func (m *Model) StepByOrder(order int) (*Step, bool) {
	for i := range m.Steps {
		if m.Steps[i].StepOrder == order {
			return &m.Steps[i], true
		}
	}
	return nil, false
}

// SortedSteps returns the steps ordered by StepOrder. Steps sharing an order
// keep their relative position.
func (m *Model) SortedSteps() []Step {
	steps := make([]Step, len(m.Steps))
	copy(steps, m.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].StepOrder < steps[j].StepOrder
	})
	return steps
}

// Input returns the editable part of the model.
func (m *Model) Input() ModelInput {
	c := m.Clone()
	tags := c.Tags
	if tags == nil {
		tags = Mapping{}
	}
	return ModelInput{
		Name:             c.Name,
		ModelType:        c.ModelType,
		Enabled:          c.Enabled,
		ScheduleInterval: c.ScheduleInterval,
		Tags:             tags,
		Steps:            c.Steps,
	}
}

// ModelInput is the editable shape of a model, as held by a form draft or an
// API request body.
type ModelInput struct {
	Name             string  `json:"name" yaml:"name"`
	ModelType        string  `json:"model_type" yaml:"model_type"`
	Enabled          bool    `json:"enabled" yaml:"enabled"`
	ScheduleInterval string  `json:"schedule_interval" yaml:"schedule_interval"`
	Tags             Mapping `json:"tags,omitempty" yaml:"tags,omitempty"`
	Steps            []Step  `json:"steps" yaml:"steps"`
}

// Apply copies the input onto a model with the given id. Steps are stamped
// with the model id.
func (in ModelInput) Apply(id string, m *Model) {
	m.ID = id
	m.Name = in.Name
	m.ModelType = in.ModelType
	m.Enabled = in.Enabled
	m.ScheduleInterval = in.ScheduleInterval
	m.Tags = in.Tags.Clone()
	m.Steps = make([]Step, len(in.Steps))
	for i, s := range in.Steps {
		s = s.Clone()
		s.ModelID = id
		m.Steps[i] = s
	}
}

// Settings holds the environment settings edited on the settings page.
type Settings struct {
	OrganizationName   string `json:"organization_name" yaml:"organization_name"`
	EmailNotifications bool   `json:"email_notifications" yaml:"email_notifications"`
	AdminEmail         string `json:"admin_email" yaml:"admin_email"`
	RedshiftHost       string `json:"redshift_host" yaml:"redshift_host"`
	RedshiftPort       int    `json:"redshift_port" yaml:"redshift_port"`
	RedshiftUser       string `json:"redshift_user" yaml:"redshift_user"`
	RedshiftPassword   string `json:"redshift_password,omitempty" yaml:"redshift_password,omitempty"`
	RedshiftDatabase   string `json:"redshift_database" yaml:"redshift_database"`
	UseSSL             bool   `json:"use_ssl" yaml:"use_ssl"`
}

// DefaultSettings returns the settings restored by "Reset to Defaults".
func DefaultSettings() Settings {
	return Settings{
		OrganizationName:   "Your Company",
		EmailNotifications: true,
		AdminEmail:         "admin@example.com",
		RedshiftHost:       "redshift.example.com",
		RedshiftPort:       5439,
		RedshiftUser:       "admin",
		RedshiftDatabase:   "analytics",
		UseSSL:             true,
	}
}

// IsKnown reports whether value is one of options, ignoring case.
func IsKnown(options []string, value string) bool {
	for _, o := range options {
		if strings.EqualFold(o, value) {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
