package report

import (
	"strconv"

	"safety-analytics-go/internal/types"
)

type column[T any] struct {
	header string
	value  func(T) string
}

var injuryColumns = []column[types.InjuryRecord]{
	{"Case Number", func(r types.InjuryRecord) string { return r.CaseNumber }},
	{"Site", func(r types.InjuryRecord) string { return r.Site }},
	{"Incident Date", func(r types.InjuryRecord) string { return r.IncidentDate }},
	{"Incident Time", func(r types.InjuryRecord) string { return r.IncidentTime }},
	{"Severity", func(r types.InjuryRecord) string { return string(r.Severity) }},
	{"Recordable", func(r types.InjuryRecord) string { return yesNo(r.Recordable) }},
	{"On The Road", func(r types.InjuryRecord) string { return yesNo(r.OnTheRoad) }},
	{"Days Away", func(r types.InjuryRecord) string { return strconv.Itoa(r.DaysAway) }},
	{"Days Restricted", func(r types.InjuryRecord) string { return strconv.Itoa(r.DaysRestricted) }},
	{"Body Part", func(r types.InjuryRecord) string { return r.BodyPart }},
	{"Incident Type", func(r types.InjuryRecord) string { return r.IncidentType }},
	{"Location", func(r types.InjuryRecord) string { return r.Location }},
	{"Process Path", func(r types.InjuryRecord) string { return r.ProcessPath }},
	{"Root Cause", func(r types.InjuryRecord) string { return r.RootCause }},
	{"Contributing Factor", func(r types.InjuryRecord) string { return r.ContributingFactor }},
	{"Description", func(r types.InjuryRecord) string { return r.Description }},
	{"Corrective Action", func(r types.InjuryRecord) string { return r.CorrectiveAction }},
	{"Date Reported", func(r types.InjuryRecord) string { return r.DateReported }},
	{"Status", func(r types.InjuryRecord) string { return r.Status }},
}

var nearMissColumns = []column[types.NearMissRecord]{
	{"Incident ID", func(r types.NearMissRecord) string { return r.IncidentID }},
	{"Site", func(r types.NearMissRecord) string { return r.Site }},
	{"Near Miss Date", func(r types.NearMissRecord) string { return r.NearMissDate }},
	{"Location", func(r types.NearMissRecord) string { return r.Location }},
	{"Process Path", func(r types.NearMissRecord) string { return r.ProcessPath }},
	{"Primary Impact", func(r types.NearMissRecord) string { return r.PrimaryImpact }},
	{"Potential Severity", func(r types.NearMissRecord) string { return string(r.Severity) }},
	{"Likelihood", func(r types.NearMissRecord) string { return string(r.Likelihood) }},
	{"Risk", func(r types.NearMissRecord) string { return strconv.FormatFloat(r.Risk, 'f', 1, 64) }},
	{"Contributing Factor", func(r types.NearMissRecord) string { return r.ContributingFactor }},
	{"Description", func(r types.NearMissRecord) string { return r.Description }},
	{"Root Cause", func(r types.NearMissRecord) string { return r.RootCause }},
	{"Corrective Action", func(r types.NearMissRecord) string { return r.CorrectiveAction }},
	{"Date Reported", func(r types.NearMissRecord) string { return r.DateReported }},
	{"Status", func(r types.NearMissRecord) string { return r.Status }},
}

var inspectionColumns = []column[types.InspectionRecord]{
	{"Inspection ID", func(r types.InspectionRecord) string { return r.InspectionID }},
	{"Site", func(r types.InspectionRecord) string { return r.Site }},
	{"Inspection Type", func(r types.InspectionRecord) string { return r.InspectionType }},
	{"Scheduled Date", func(r types.InspectionRecord) string { return r.ScheduledDate }},
	{"Completed Date", func(r types.InspectionRecord) string { return r.CompletedDate }},
	{"Status", func(r types.InspectionRecord) string { return string(r.Status) }},
	{"Inspector", func(r types.InspectionRecord) string { return r.Inspector }},
	{"Score", func(r types.InspectionRecord) string { return strconv.FormatFloat(r.Score, 'f', -1, 64) }},
	{"Findings", func(r types.InspectionRecord) string { return strconv.Itoa(r.Findings) }},
	{"Critical Findings", func(r types.InspectionRecord) string { return strconv.Itoa(r.CriticalFindings) }},
}

func headers[T any](cols []column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header
	}
	return out
}

func values[T any](cols []column[T], r T) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.value(r)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
