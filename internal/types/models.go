package types

import (
	"strconv"
	"strings"
	"time"
)

// Severity is the closed injury/near-miss impact scale, A most severe.
type Severity string

const (
	SeverityA       Severity = "A"
	SeverityB       Severity = "B"
	SeverityC       Severity = "C"
	SeverityD       Severity = "D"
	SeverityUnknown Severity = "Unknown"
)

// Likelihood is the ordered probability rating used by near-miss assessments.
type Likelihood string

const (
	LikelihoodRare          Likelihood = "Rare"
	LikelihoodUnlikely      Likelihood = "Unlikely"
	LikelihoodPossible      Likelihood = "Possible"
	LikelihoodLikely        Likelihood = "Likely"
	LikelihoodAlmostCertain Likelihood = "Almost Certain"
)

// RecordKind names one of the uploadable collections.
type RecordKind string

const (
	KindInjury     RecordKind = "injuries"
	KindNearMiss   RecordKind = "near-misses"
	KindInspection RecordKind = "inspections"
)

// Row is one loosely-typed source row keyed by its header cell.
type Row map[string]string

// Facets is the flat view of a record the filter engine and the
// heuristics work against. The Has flags mark facets the collection
// carries at all; filters on a missing facet are ignored.
type Facets struct {
	Site           string
	Severity       Severity
	HasSeverity    bool
	BodyPart       string
	HasBodyPart    bool
	ProcessPath    string
	HasProcessPath bool
	Location    string
	RawDate     string
	ParsedDate  time.Time
	Text        []string
}

type InjuryRecord struct {
	CaseNumber         string    `json:"case_number"`
	Site               string    `json:"site"`
	IncidentDate       string    `json:"incident_date"`
	IncidentTime       string    `json:"incident_time,omitempty"`
	ParsedDate         time.Time `json:"-"`
	Severity           Severity  `json:"severity"`
	Recordable         bool      `json:"recordable"`
	OnTheRoad          bool      `json:"otr"`
	DaysAway           int       `json:"total_dafw_days"`
	DaysRestricted     int       `json:"total_rwa_days"`
	BodyPart           string    `json:"body_part"`
	IncidentType       string    `json:"type"`
	Location           string    `json:"location"`
	RootCause          string    `json:"root_cause"`
	ContributingFactor string    `json:"contributing_factor"`
	ProcessPath        string    `json:"process_path"`
	Description        string    `json:"description"`
	CorrectiveAction   string    `json:"corrective_action,omitempty"`
	DateReported       string    `json:"date_reported,omitempty"`
	Status             string    `json:"status"`
}

func (r InjuryRecord) Facets() Facets {
	return Facets{
		Site:           r.Site,
		Severity:       r.Severity,
		HasSeverity:    true,
		BodyPart:       r.BodyPart,
		HasBodyPart:    true,
		ProcessPath:    r.ProcessPath,
		HasProcessPath: true,
		Location:       r.Location,
		RawDate:        r.IncidentDate,
		ParsedDate:     r.ParsedDate,
		Text:           []string{r.CaseNumber, r.Site, r.Description, r.RootCause, r.BodyPart, r.IncidentType, r.Location},
	}
}

// Field returns a canonical field by its camelCase name, "" if unknown.
func (r InjuryRecord) Field(name string) string {
	switch name {
	case "caseNumber":
		return r.CaseNumber
	case "site":
		return r.Site
	case "date":
		return r.IncidentDate
	case "severity":
		return string(r.Severity)
	case "bodyPart":
		return r.BodyPart
	case "incidentType":
		return r.IncidentType
	case "location":
		return r.Location
	case "rootCause":
		return r.RootCause
	case "processPath":
		return r.ProcessPath
	case "description":
		return r.Description
	case "correctiveAction":
		return r.CorrectiveAction
	case "dateReported":
		return r.DateReported
	case "status":
		return r.Status
	case "daysAway":
		return strconv.Itoa(r.DaysAway)
	}
	return ""
}

type NearMissRecord struct {
	IncidentID         string     `json:"incident_id"`
	Site               string     `json:"site"`
	NearMissDate       string     `json:"nearmiss_date"`
	ParsedDate         time.Time  `json:"-"`
	Location           string     `json:"location"`
	ProcessPath        string     `json:"process_path"`
	PrimaryImpact      string     `json:"primary_impact"`
	Severity           Severity   `json:"severity"`
	Likelihood         Likelihood `json:"standardized_likelihood"`
	Risk               float64    `json:"risk"`
	ContributingFactor string     `json:"contributing_factor"`
	Description        string     `json:"description"`
	RootCause          string     `json:"rca_primary_cause"`
	CorrectiveAction   string     `json:"corrective_action,omitempty"`
	DateReported       string     `json:"date_reported,omitempty"`
	Status             string     `json:"status"`
}

func (r NearMissRecord) Facets() Facets {
	return Facets{
		Site:           r.Site,
		Severity:       r.Severity,
		HasSeverity:    true,
		ProcessPath:    r.ProcessPath,
		HasProcessPath: true,
		Location:       r.Location,
		RawDate:        r.NearMissDate,
		ParsedDate:     r.ParsedDate,
		Text:           []string{r.IncidentID, r.Site, r.Description, r.RootCause, r.Location, r.ContributingFactor},
	}
}

func (r NearMissRecord) Field(name string) string {
	switch name {
	case "incidentId":
		return r.IncidentID
	case "site":
		return r.Site
	case "date":
		return r.NearMissDate
	case "severity":
		return string(r.Severity)
	case "likelihood":
		return string(r.Likelihood)
	case "location":
		return r.Location
	case "processPath":
		return r.ProcessPath
	case "primaryImpact":
		return r.PrimaryImpact
	case "contributingFactor":
		return r.ContributingFactor
	case "description":
		return r.Description
	case "rootCause":
		return r.RootCause
	case "correctiveAction":
		return r.CorrectiveAction
	case "dateReported":
		return r.DateReported
	case "status":
		return r.Status
	}
	return ""
}

// InspectionStatus values as exported by the inspection tracker.
type InspectionStatus string

const (
	InspectionCompleted  InspectionStatus = "Completed"
	InspectionOverdue    InspectionStatus = "Overdue"
	InspectionUpcoming   InspectionStatus = "Upcoming"
	InspectionInProgress InspectionStatus = "In Progress"
)

type InspectionRecord struct {
	InspectionID     string           `json:"inspection_id"`
	Site             string           `json:"site"`
	InspectionType   string           `json:"inspection_type"`
	ScheduledDate    string           `json:"scheduled_date"`
	CompletedDate    string           `json:"completed_date,omitempty"`
	ParsedDate       time.Time        `json:"-"`
	Status           InspectionStatus `json:"status"`
	Inspector        string           `json:"inspector"`
	Score            float64          `json:"score"`
	Findings         int              `json:"findings"`
	CriticalFindings int              `json:"critical_findings"`
}

func (r InspectionRecord) Facets() Facets {
	return Facets{
		Site:       r.Site,
		RawDate:    r.ScheduledDate,
		ParsedDate: r.ParsedDate,
		Text:       []string{r.InspectionID, r.Site, r.InspectionType, r.Inspector},
	}
}

// FilterState is a sparse set of predicates; "" and "all" mean unset.
type FilterState struct {
	Site        string `json:"site,omitempty"`
	Severity    string `json:"severity,omitempty"`
	DateFrom    string `json:"date_from,omitempty"`
	DateTo      string `json:"date_to,omitempty"`
	BodyPart    string `json:"body_part,omitempty"`
	ProcessPath string `json:"process_path,omitempty"`
	Search      string `json:"search,omitempty"`
}

// Active reports whether v constrains anything.
func Active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "all")
}

// Merge overlays the set fields of other onto f. An explicit "all" clears
// the field.
func (f FilterState) Merge(other FilterState) FilterState {
	pick := func(cur, next string) string {
		if strings.EqualFold(strings.TrimSpace(next), "all") {
			return ""
		}
		if next != "" {
			return next
		}
		return cur
	}
	return FilterState{
		Site:        pick(f.Site, other.Site),
		Severity:    pick(f.Severity, other.Severity),
		DateFrom:    pick(f.DateFrom, other.DateFrom),
		DateTo:      pick(f.DateTo, other.DateTo),
		BodyPart:    pick(f.BodyPart, other.BodyPart),
		ProcessPath: pick(f.ProcessPath, other.ProcessPath),
		Search:      pick(f.Search, other.Search),
	}
}
