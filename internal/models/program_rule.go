package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type AllocationKind int

const (
	AllocationAll AllocationKind = iota
	AllocationExclude
	AllocationInclude
)

func (k AllocationKind) String() string {
	switch k {
	case AllocationExclude:
		return "exclude"
	case AllocationInclude:
		return "include"
	default:
		return "all"
	}
}

// Allocation decides which universities offer a programme template.
// The zero value allocates the programme to every university.
type Allocation struct {
	kind AllocationKind
	ids  map[string]struct{}
}

func AllocateAll() Allocation {
	return Allocation{kind: AllocationAll}
}

// AllocateExcept offers the programme everywhere except the listed universities.
func AllocateExcept(universityIDs ...string) Allocation {
	return Allocation{kind: AllocationExclude, ids: idSet(universityIDs)}
}

// AllocateOnly offers the programme at the listed universities only.
func AllocateOnly(universityIDs ...string) Allocation {
	return Allocation{kind: AllocationInclude, ids: idSet(universityIDs)}
}

func (a Allocation) Kind() AllocationKind {
	return a.kind
}

// IDs returns the university ids carried by an exclude or include allocation, sorted.
func (a Allocation) IDs() []string {
	ids := make([]string, 0, len(a.ids))
	for id := range a.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a Allocation) Includes(universityID string) bool {
	_, listed := a.ids[normalizeID(universityID)]
	switch a.kind {
	case AllocationExclude:
		return !listed
	case AllocationInclude:
		return listed
	default:
		return true
	}
}

type allocationJSON struct {
	Exclude []string `json:"exclude"`
	Include []string `json:"include"`
}

// MarshalJSON writes the catalog shapes: "all", {"exclude": [...]} or {"include": [...]}.
func (a Allocation) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AllocationExclude:
		return json.Marshal(map[string][]string{"exclude": a.IDs()})
	case AllocationInclude:
		return json.Marshal(map[string][]string{"include": a.IDs()})
	default:
		return json.Marshal("all")
	}
}

func (a *Allocation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != "all" {
			return fmt.Errorf("unknown allocation %q", s)
		}
		*a = AllocateAll()
		return nil
	}

	var raw allocationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid allocation: %w", err)
	}
	switch {
	case raw.Exclude != nil && raw.Include != nil:
		return fmt.Errorf("allocation cannot both include and exclude")
	case raw.Exclude != nil:
		*a = AllocateExcept(raw.Exclude...)
	case raw.Include != nil:
		*a = AllocateOnly(raw.Include...)
	default:
		return fmt.Errorf("allocation object needs an include or exclude list")
	}
	return nil
}

// ProgramRule is a programme template offered across universities.
// The generated APS requirement is BaseAPS adjusted for the university type.
type ProgramRule struct {
	Name            string               `json:"name"`
	Faculty         string               `json:"faculty"`
	BaseAPS         int                  `json:"base_aps"`
	Competitive     bool                 `json:"competitive"`
	Allocation      Allocation           `json:"allocation"`
	Duration        string               `json:"duration"`
	Description     string               `json:"description"`
	Subjects        []SubjectRequirement `json:"subjects,omitempty"`
	CareerProspects []string             `json:"career_prospects,omitempty"`
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[normalizeID(id)] = struct{}{}
	}
	return set
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
