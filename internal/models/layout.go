package models

// Reserved table names in the workspace.
const (
	LogTableName      = "Log"
	TemplateTableName = "Template"
	ConfigTableName   = "Config"
)

// Central Log layout. Columns are 1-based; headers occupy row 1 and data
// starts at row 2.
const (
	LogHeaderRow    = 1
	LogDataStartRow = 2

	LogColRequestID     = 1
	LogColTimestamp     = 2
	LogColEmployeeName  = 3
	LogColEmployeeEmail = 4
	LogColVisitDate     = 5
	LogColStartTime     = 6
	LogColEndTime       = 7
	LogColPurpose       = 8
	LogColReimbursement = 9
	LogColDescription   = 10
	LogColCompanies     = 11
	LogColStatus        = 12
	LogColActionDate    = 13
	LogColComments      = 14

	LogColumnCount = 14
)

// LogHeaders is the canonical header row of the central log.
var LogHeaders = []string{
	"Request_ID", "Timestamp", "Employee_Name", "Employee_Email",
	"Visit_Date", "Start_Time", "End_Time", "Purpose", "Reimbursement",
	"Description", "Companies", "Status", "Action_Date", "Comments",
}

// Per-employee ledger layout. Rows 1-9 hold the template header block;
// data rows start at row 10.
const (
	LedgerDataStartRow = 10

	LedgerYearLabelRow = 3
	LedgerYearLabelCol = 1
	LedgerNameRow      = 5
	LedgerNameCol      = 2
	LedgerPositionRow  = 6
	LedgerPositionCol  = 2

	LedgerColRequestID     = 1
	LedgerColRequestDate   = 2
	LedgerColVisitDate     = 3
	LedgerColStatus        = 4
	LedgerColTimeStart     = 5
	LedgerColTimeEnd       = 6
	LedgerColTotalHours    = 7
	LedgerColPurpose       = 8
	LedgerColLocation      = 9
	LedgerColCompanies     = 10
	LedgerColDescription   = 11
	LedgerColReimbursement = 12
	LedgerColRemarks       = 13

	LedgerColumnCount = 13
)

// LedgerHeaders mirrors the template's column captions, used for exports.
var LedgerHeaders = []string{
	"Request_ID", "Request_Date", "Visit_Date", "Status", "Time_Start",
	"Time_End", "Total_Hours", "Purpose", "Location", "Companies",
	"Description", "Reimbursement", "Remarks",
}

// Roster region inside the Config table.
const (
	RosterFirstRow    = 1
	RosterLastRow     = 18
	RosterNameCol     = 6
	RosterEmailCol    = 7
	RosterPositionCol = 9
)

// Year routing bounds for ledger placement. Dates outside the range fall
// back to the current year.
const (
	LedgerYearMin = 2020
	LedgerYearMax = 2030
)

// NotifiedMarker prefixes the idempotency note appended to Comments after a
// confirmation email has been delivered.
const NotifiedMarker = "NOTIFIED"
