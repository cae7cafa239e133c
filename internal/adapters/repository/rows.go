package repository

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/okian/staffwise/internal/domain/model"
)

const nullTag = "!!null"

// FlexString decodes a JSON or YAML string, number or boolean into its text.
// Null decodes to the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		*f = FlexString(data)
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FlexString) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode || value.Tag == nullTag {
		*f = ""
		return nil
	}
	*f = FlexString(value.Value)
	return nil
}

// FlexInt decodes an integer that may arrive as a number or a numeric string.
// Valid is false when the value was absent, null or unparseable.
type FlexInt struct {
	Value int
	Valid bool
}

// Int returns a valid FlexInt.
func Int(v int) FlexInt { return FlexInt{Value: v, Valid: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	*f = parseFlexInt(string(data))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FlexInt) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode || value.Tag == nullTag {
		*f = FlexInt{}
		return nil
	}
	*f = parseFlexInt(value.Value)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

func parseFlexInt(s string) FlexInt {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Int(n)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return Int(int(v))
	}
	return FlexInt{}
}

// SkillField is a skill list stored either as a native array or as a
// JSON-encoded string. Anything that cannot be read as a list of strings
// decodes to an empty list.
type SkillField []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SkillField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = SkillField{}
		return nil
	}
	switch data[0] {
	case '[':
		*s = parseSkillList(data)
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			*s = SkillField{}
			return nil
		}
		*s = ParseSkills(raw)
	default:
		*s = SkillField{}
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SkillField) UnmarshalYAML(value *yaml.Node) error {
	switch {
	case value.Kind == yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			*s = SkillField{}
			return nil
		}
		*s = list
	case value.Kind == yaml.ScalarNode && value.Tag != nullTag:
		*s = ParseSkills(value.Value)
	default:
		*s = SkillField{}
	}
	return nil
}

// ParseSkills reads a JSON-encoded skill list. Unparseable text yields an
// empty list.
func ParseSkills(raw string) SkillField {
	return parseSkillList([]byte(strings.TrimSpace(raw)))
}

func parseSkillList(data []byte) SkillField {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		return SkillField{}
	}
	return list
}

// EmployeeRow is a user_details row as stored. Every field is optional.
type EmployeeRow struct {
	ID                  FlexString `json:"id" yaml:"id"`
	EmployeeID          FlexString `json:"employee_id" yaml:"employee_id"`
	JobTitle            FlexString `json:"job_title" yaml:"job_title"`
	Status              FlexString `json:"status" yaml:"status"`
	ExperienceLevel     FlexString `json:"experience_level" yaml:"experience_level"`
	Skills              SkillField `json:"skills" yaml:"skills"`
	TotalAvailableHours FlexInt    `json:"total_available_hours" yaml:"total_available_hours"`
}

// Employee converts the row, filling absent fields with their defaults.
// Role is left empty; it is derived from the job title by the caller.
func (r EmployeeRow) Employee() model.Employee {
	hours := model.DefaultAvailableHours
	if r.TotalAvailableHours.Valid {
		hours = r.TotalAvailableHours.Value
	}
	skills := make([]string, len(r.Skills))
	copy(skills, r.Skills)
	return model.Employee{
		ID:                  string(r.EmployeeID),
		UserID:              string(r.ID),
		JobTitle:            string(r.JobTitle),
		Status:              string(r.Status),
		ExperienceLevel:     model.ExperienceTier(r.ExperienceLevel),
		Skills:              skills,
		TotalAvailableHours: hours,
	}
}

// RequirementRow is a project_requirements row as stored.
type RequirementRow struct {
	ID                      FlexString `json:"id" yaml:"id"`
	ProjectID               FlexInt    `json:"project_id" yaml:"project_id"`
	RequiredSkills          SkillField `json:"required_skills" yaml:"required_skills"`
	ExperienceLevel         FlexString `json:"experience_level" yaml:"experience_level"`
	QuantityNeeded          FlexInt    `json:"quantity_needed" yaml:"quantity_needed"`
	PreferredAssignmentType FlexString `json:"preferred_assignment_type" yaml:"preferred_assignment_type"`
}

// Requirement converts the row. A missing preferred type becomes Full-Time
// and a negative or missing quantity becomes zero.
func (r RequirementRow) Requirement() model.Requirement {
	preferred := strings.TrimSpace(string(r.PreferredAssignmentType))
	if preferred == "" {
		preferred = model.FullTime
	}
	qty := 0
	if r.QuantityNeeded.Valid && r.QuantityNeeded.Value > 0 {
		qty = r.QuantityNeeded.Value
	}
	skills := make([]string, len(r.RequiredSkills))
	copy(skills, r.RequiredSkills)
	return model.Requirement{
		ProjectID:               int64(r.ProjectID.Value),
		RequiredSkills:          skills,
		ExperienceLevel:         model.ExperienceTier(r.ExperienceLevel),
		QuantityNeeded:          qty,
		PreferredAssignmentType: preferred,
	}
}

// Fixture is a file-backed snapshot of both tables.
type Fixture struct {
	ProjectRequirements []RequirementRow `json:"project_requirements" yaml:"project_requirements"`
	UserDetails         []EmployeeRow    `json:"user_details" yaml:"user_details"`
}

func decodeEmployeeJSON(raw []byte) (model.Employee, error) {
	var row EmployeeRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return model.Employee{}, err
	}
	return row.Employee(), nil
}

func decodeRequirementJSON(raw []byte) (model.Requirement, error) {
	var row RequirementRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return model.Requirement{}, err
	}
	return row.Requirement(), nil
}
