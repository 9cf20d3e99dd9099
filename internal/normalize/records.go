package normalize

import (
	"fmt"
	"strings"

	"safety-analytics-go/internal/risk"
	"safety-analytics-go/internal/types"
)

// Accepted header aliases per canonical field, highest priority first.
var (
	injuryCaseAliases        = []string{"case_number", "Case Number", "caseNumber", "case_id", "incident_number", "Incident Number", "id"}
	injuryDateAliases        = []string{"incident_date", "Incident Date", "date", "Date", "event_date"}
	injuryTimeAliases        = []string{"incident_time", "Incident Time", "time"}
	siteAliases              = []string{"site", "Site", "facility", "Facility", "site_code"}
	severityAliases          = []string{"severity", "Severity", "severity_level", "Severity Level"}
	recordableAliases        = []string{"recordable", "Recordable", "is_recordable", "OSHA Recordable"}
	otrAliases               = []string{"otr", "OTR", "on_the_road", "On The Road"}
	dafwAliases              = []string{"total_dafw_days", "DAFW Days", "days_away", "daysAway", "Days Away"}
	rwaAliases               = []string{"total_rwa_days", "RWA Days", "days_restricted", "Days Restricted"}
	bodyPartAliases          = []string{"initial_info_principal_body_part", "bodyPart", "body_part", "Body Part", "BodyPart"}
	injuryTypeAliases        = []string{"type", "Type", "incident_type", "incidentType", "Incident Type"}
	locationAliases          = []string{"initial_info_location_event", "location", "Location"}
	rootCauseAliases         = []string{"rca_primary_cause", "rootCause", "root_cause", "Root Cause"}
	contributingAliases      = []string{"contributingFactor", "contributing_factor", "Contributing Factor"}
	processPathAliases       = []string{"processPath", "process_path", "Process Path"}
	descriptionAliases       = []string{"initial_info_incident_description", "description", "Description", "incident_description"}
	correctiveActionAliases  = []string{"correctiveAction", "corrective_action", "Corrective Action"}
	dateReportedAliases      = []string{"date_reported", "dateReported", "Date Reported", "reported_date"}
	statusAliases            = []string{"status", "Status"}
	nearMissIDAliases        = []string{"incident_id", "Incident ID", "incidentId", "nearmiss_id", "id"}
	nearMissDateAliases      = []string{"nearmiss_date", "Near Miss Date", "near_miss_date", "date", "Date"}
	potentialSeverityAliases = []string{"potential_severity", "Potential Severity", "severity", "Severity"}
	likelihoodAliases        = []string{"initial_risk_assessment_likeliness", "likelihood", "Likelihood", "standardized_likelihood"}
	riskAliases              = []string{"risk", "Risk", "risk_score", "riskScore", "Risk Score"}
	primaryImpactAliases     = []string{"primaryImpact", "primary_impact", "Primary Impact"}
	inspectionIDAliases      = []string{"inspection_id", "Inspection ID", "id"}
	inspectionTypeAliases    = []string{"inspectionType", "inspection_type", "Inspection Type", "type", "Type"}
	scheduledAliases         = []string{"scheduledDate", "scheduled_date", "Scheduled Date", "due_date", "dueDate"}
	completedAliases         = []string{"completedDate", "completed_date", "Completed Date"}
	inspectorAliases         = []string{"inspector", "Inspector", "owner"}
	scoreAliases             = []string{"score", "Score"}
	findingsAliases          = []string{"findings", "Findings"}
	criticalFindingsAliases  = []string{"criticalFindings", "critical_findings", "Critical Findings"}
)

// Injuries normalizes raw injury rows. Missing case numbers are derived
// from the row position so re-parsing the same file yields the same IDs.
func Injuries(rows []types.Row) []types.InjuryRecord {
	out := make([]types.InjuryRecord, 0, len(rows))
	for i, row := range rows {
		out = append(out, Injury(row, i))
	}
	return out
}

// Injury normalizes one row; index is its 0-based position in the upload.
func Injury(row types.Row, index int) types.InjuryRecord {
	rec := types.InjuryRecord{
		CaseNumber:         Resolve(row, injuryCaseAliases...),
		Site:               Resolve(row, siteAliases...),
		IncidentDate:       Resolve(row, injuryDateAliases...),
		IncidentTime:       Resolve(row, injuryTimeAliases...),
		Severity:           Severity(Resolve(row, severityAliases...)),
		Recordable:         Bool(Resolve(row, recordableAliases...)),
		OnTheRoad:          Bool(Resolve(row, otrAliases...)),
		DaysAway:           Int(Resolve(row, dafwAliases...)),
		DaysRestricted:     Int(Resolve(row, rwaAliases...)),
		BodyPart:           Resolve(row, bodyPartAliases...),
		IncidentType:       Resolve(row, injuryTypeAliases...),
		Location:           Resolve(row, locationAliases...),
		RootCause:          Resolve(row, rootCauseAliases...),
		ContributingFactor: Resolve(row, contributingAliases...),
		ProcessPath:        Resolve(row, processPathAliases...),
		Description:        Resolve(row, descriptionAliases...),
		CorrectiveAction:   Resolve(row, correctiveActionAliases...),
		DateReported:       Resolve(row, dateReportedAliases...),
		Status:             Resolve(row, statusAliases...),
	}
	if rec.CaseNumber == "" {
		rec.CaseNumber = fmt.Sprintf("CASE-%d", index+1)
	}
	if rec.Status == "" {
		rec.Status = "Open"
	}
	if t, ok := ParseDate(rec.IncidentDate); ok {
		rec.ParsedDate = t
	}
	return rec
}

// NearMisses normalizes raw near-miss rows and back-fills risk scores.
func NearMisses(rows []types.Row) []types.NearMissRecord {
	out := make([]types.NearMissRecord, 0, len(rows))
	for i, row := range rows {
		out = append(out, NearMiss(row, i))
	}
	return out
}

func NearMiss(row types.Row, index int) types.NearMissRecord {
	sev := Severity(Resolve(row, potentialSeverityAliases...))
	lik := Likelihood(Resolve(row, likelihoodAliases...))
	rec := types.NearMissRecord{
		IncidentID:         Resolve(row, nearMissIDAliases...),
		Site:               Resolve(row, siteAliases...),
		NearMissDate:       Resolve(row, nearMissDateAliases...),
		Location:           Resolve(row, locationAliases...),
		ProcessPath:        Resolve(row, processPathAliases...),
		PrimaryImpact:      Resolve(row, primaryImpactAliases...),
		Severity:           sev,
		Likelihood:         lik,
		Risk:               Float(Resolve(row, riskAliases...)),
		ContributingFactor: Resolve(row, contributingAliases...),
		Description:        Resolve(row, descriptionAliases...),
		RootCause:          Resolve(row, rootCauseAliases...),
		CorrectiveAction:   Resolve(row, correctiveActionAliases...),
		DateReported:       Resolve(row, dateReportedAliases...),
		Status:             Resolve(row, statusAliases...),
	}
	// explicit non-zero risk from the source always wins
	if rec.Risk == 0 {
		rec.Risk = risk.Score(sev, lik)
	}
	if rec.IncidentID == "" {
		rec.IncidentID = fmt.Sprintf("NM-%d", index+1)
	}
	if rec.Status == "" {
		rec.Status = "Open"
	}
	if t, ok := ParseDate(rec.NearMissDate); ok {
		rec.ParsedDate = t
	}
	return rec
}

func Inspections(rows []types.Row) []types.InspectionRecord {
	out := make([]types.InspectionRecord, 0, len(rows))
	for i, row := range rows {
		out = append(out, Inspection(row, i))
	}
	return out
}

func Inspection(row types.Row, index int) types.InspectionRecord {
	rec := types.InspectionRecord{
		InspectionID:     Resolve(row, inspectionIDAliases...),
		Site:             Resolve(row, siteAliases...),
		InspectionType:   Resolve(row, inspectionTypeAliases...),
		ScheduledDate:    Resolve(row, scheduledAliases...),
		CompletedDate:    Resolve(row, completedAliases...),
		Status:           inspectionStatus(Resolve(row, statusAliases...)),
		Inspector:        Resolve(row, inspectorAliases...),
		Score:            Float(Resolve(row, scoreAliases...)),
		Findings:         Int(Resolve(row, findingsAliases...)),
		CriticalFindings: Int(Resolve(row, criticalFindingsAliases...)),
	}
	if rec.InspectionID == "" {
		rec.InspectionID = fmt.Sprintf("INSP-%d", index+1)
	}
	if t, ok := ParseDate(rec.ScheduledDate); ok {
		rec.ParsedDate = t
	}
	return rec
}

func inspectionStatus(raw string) types.InspectionStatus {
	l := strings.ToLower(raw)
	switch {
	case strings.Contains(l, "complete") || l == "done" || l == "closed":
		return types.InspectionCompleted
	case strings.Contains(l, "overdue") || strings.Contains(l, "late"):
		return types.InspectionOverdue
	case strings.Contains(l, "progress"):
		return types.InspectionInProgress
	}
	return types.InspectionUpcoming
}
