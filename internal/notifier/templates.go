package notifier

import "html/template"

var submissionTmpl = template.Must(template.New("submission").Parse(`
<html><body>
<p>Hello {{.ManagerName}},</p>
<p>A new client visit request needs your review.</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><td><b>Request ID</b></td><td>{{.Entry.RequestID}}</td></tr>
<tr><td><b>Employee</b></td><td>{{.Entry.EmployeeName}} ({{.Entry.EmployeeEmail}})</td></tr>
<tr><td><b>Visit Date</b></td><td>{{.VisitDate}}</td></tr>
<tr><td><b>Time</b></td><td>{{.Entry.StartTime}} - {{.Entry.EndTime}}</td></tr>
<tr><td><b>Purpose</b></td><td>{{.Entry.Purpose}}</td></tr>
<tr><td><b>Companies</b></td><td>{{.Entry.Companies}}</td></tr>
<tr><td><b>Reimbursement</b></td><td>{{.Entry.Reimbursement}}</td></tr>
<tr><td><b>Description</b></td><td>{{.Entry.Description}}</td></tr>
</table>
<p><a href="{{.ApprovalURL}}">Approve this request</a></p>
<p>{{.CompanyName}} Visit Log</p>
</body></html>`))

var approvalTmpl = template.Must(template.New("approval").Parse(`
<html><body>
<p>Hello {{.HRName}},</p>
<p>The following client visit request has been approved by {{.ManagerName}}.</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><td><b>Request ID</b></td><td>{{.Entry.RequestID}}</td></tr>
<tr><td><b>Employee</b></td><td>{{.Entry.EmployeeName}}</td></tr>
<tr><td><b>Visit Date</b></td><td>{{.VisitDate}}</td></tr>
<tr><td><b>Time</b></td><td>{{.Entry.StartTime}} - {{.Entry.EndTime}}</td></tr>
<tr><td><b>Purpose</b></td><td>{{.Entry.Purpose}}</td></tr>
<tr><td><b>Companies</b></td><td>{{.Entry.Companies}}</td></tr>
</table>
<p>{{.CompanyName}} Visit Log</p>
</body></html>`))

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<html><body>
<p>Hello {{.EmployeeName}},</p>
<p>The following visit requests have been finalised:</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Request ID</th><th>Visit Date</th><th>Status</th><th>Purpose</th></tr>
{{range .Rows}}<tr><td>{{.RequestID}}</td><td>{{.VisitDate}}</td><td>{{.Status}}</td><td>{{.Purpose}}</td></tr>
{{end}}</table>
<p>{{.CompanyName}} Visit Log</p>
</body></html>`))

var pendingDigestTmpl = template.Must(template.New("pending").Parse(`
<html><body>
<p>Hello {{.ManagerName}},</p>
<p>{{.Count}} visit request(s) are still awaiting your review:</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Request ID</th><th>Employee</th><th>Visit Date</th><th>Purpose</th></tr>
{{range .Rows}}<tr><td>{{.RequestID}}</td><td>{{.EmployeeName}}</td><td>{{.VisitDate}}</td><td>{{.Purpose}}</td></tr>
{{end}}</table>
<p>{{.CompanyName}} Visit Log</p>
</body></html>`))
