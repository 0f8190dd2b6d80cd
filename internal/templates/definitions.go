package templates

import "csv-import-service/internal/domain"

// projectLookup resolves a human-readable project name to a project_id.
func projectLookup() *domain.LookupSpec {
	return &domain.LookupSpec{Table: "projects", NameColumn: "name", ForeignKey: "project_id"}
}

// all importable record kinds, in display order.
var definitions = []domain.CSVTemplate{
	{
		DataType:    "projects",
		DisplayName: "Projects",
		TableName:   "projects",
		Description: "Construction projects with client and schedule details",
		Fields: []domain.CSVField{
			{Name: "Project Name", DBField: "name", Type: domain.FieldString, Required: true, Description: "Name of the project", Example: "Smith Kitchen Remodel"},
			{Name: "Client Name", DBField: "client_name", Type: domain.FieldString, Example: "John Smith"},
			{Name: "Client Email", DBField: "client_email", Type: domain.FieldEmail, Example: "john@example.com"},
			{Name: "Client Phone", DBField: "client_phone", Type: domain.FieldPhone, Example: "555-123-4567"},
			{Name: "Address", DBField: "address", Type: domain.FieldString, Example: "123 Main St, Springfield"},
			{Name: "Start Date", DBField: "start_date", Type: domain.FieldDate, Example: "2024-03-01"},
			{Name: "End Date", DBField: "end_date", Type: domain.FieldDate, Example: "2024-06-30"},
			{Name: "Budget", DBField: "budget", Type: domain.FieldNumber, Example: "45000"},
			{Name: "Status", DBField: "status", Type: domain.FieldString, Example: "active"},
		},
		DuplicateMatchFields: []string{"name", "client_name"},
	},
	{
		DataType:    "contacts",
		DisplayName: "Contacts",
		TableName:   "contacts",
		Description: "Clients, leads, and other people you work with",
		Fields: []domain.CSVField{
			{Name: "First Name", DBField: "first_name", Type: domain.FieldString, Required: true, Example: "Jane"},
			{Name: "Last Name", DBField: "last_name", Type: domain.FieldString, Required: true, Example: "Doe"},
			{Name: "Email", DBField: "email", Type: domain.FieldEmail, Required: true, Example: "jane.doe@example.com"},
			{Name: "Phone", DBField: "phone", Type: domain.FieldPhone, Example: "555-987-6543"},
			{Name: "Company", DBField: "company", Type: domain.FieldString, Example: "Doe Builders LLC"},
			{Name: "Role", DBField: "role", Type: domain.FieldString, Example: "client"},
		},
		DuplicateMatchFields: []string{"email", "last_name"},
	},
	{
		DataType:    "estimates",
		DisplayName: "Estimates",
		TableName:   "estimates",
		Description: "Project estimates and proposals",
		Fields: []domain.CSVField{
			{Name: "Estimate Title", DBField: "title", Type: domain.FieldString, Required: true, Example: "Kitchen remodel estimate"},
			{Name: "Project Name", DBField: "project_name", Type: domain.FieldString, Lookup: projectLookup(), Description: "Name of an existing project", Example: "Smith Kitchen Remodel"},
			{Name: "Amount", DBField: "amount", Type: domain.FieldNumber, Required: true, Example: "12500.00"},
			{Name: "Status", DBField: "status", Type: domain.FieldString, Example: "draft"},
			{Name: "Valid Until", DBField: "valid_until", Type: domain.FieldDate, Example: "2024-04-15"},
		},
		DuplicateMatchFields: []string{"title"},
	},
	{
		DataType:    "time_entries",
		DisplayName: "Time Entries",
		TableName:   "time_entries",
		Description: "Logged hours per worker and project",
		Fields: []domain.CSVField{
			{Name: "Worker Name", DBField: "worker_name", Type: domain.FieldString, Required: true, Example: "Mike Jones"},
			{Name: "Project Name", DBField: "project_name", Type: domain.FieldString, Lookup: projectLookup(), Example: "Smith Kitchen Remodel"},
			{Name: "Date", DBField: "entry_date", Type: domain.FieldDate, Required: true, Example: "2024-03-12"},
			{Name: "Hours", DBField: "hours", Type: domain.FieldNumber, Required: true, Example: "7.5"},
			{Name: "Description", DBField: "description", Type: domain.FieldString, Example: "Framing second floor"},
			{Name: "Billable", DBField: "billable", Type: domain.FieldBoolean, Example: "yes"},
		},
		DuplicateMatchFields: []string{"worker_name", "description"},
	},
	{
		DataType:    "expenses",
		DisplayName: "Expenses",
		TableName:   "expenses",
		Description: "Job costs and receipts",
		Fields: []domain.CSVField{
			{Name: "Description", DBField: "description", Type: domain.FieldString, Required: true, Example: "Lumber delivery"},
			{Name: "Amount", DBField: "amount", Type: domain.FieldNumber, Required: true, Example: "$1,250.50"},
			{Name: "Date", DBField: "expense_date", Type: domain.FieldDate, Example: "2024-03-10"},
			{Name: "Category", DBField: "category", Type: domain.FieldString, Example: "materials"},
			{Name: "Vendor", DBField: "vendor", Type: domain.FieldString, Example: "Springfield Lumber Co"},
			{Name: "Project Name", DBField: "project_name", Type: domain.FieldString, Lookup: projectLookup(), Example: "Smith Kitchen Remodel"},
			{Name: "Billable", DBField: "billable", Type: domain.FieldBoolean, Example: "true"},
		},
		DuplicateMatchFields: []string{"description", "vendor"},
	},
	{
		DataType:    "equipment",
		DisplayName: "Equipment",
		TableName:   "equipment",
		Description: "Owned and rented equipment",
		Fields: []domain.CSVField{
			{Name: "Equipment Name", DBField: "name", Type: domain.FieldString, Required: true, Example: "Bobcat S650"},
			{Name: "Serial Number", DBField: "serial_number", Type: domain.FieldString, Example: "SN-884213"},
			{Name: "Category", DBField: "category", Type: domain.FieldString, Example: "heavy"},
			{Name: "Purchase Date", DBField: "purchase_date", Type: domain.FieldDate, Example: "2021-07-19"},
			{Name: "Purchase Price", DBField: "purchase_price", Type: domain.FieldNumber, Example: "38900"},
			{Name: "Status", DBField: "status", Type: domain.FieldString, Example: "in_service"},
		},
		DuplicateMatchFields: []string{"name", "serial_number"},
	},
	{
		DataType:    "invoices",
		DisplayName: "Invoices",
		TableName:   "invoices",
		Description: "Client invoices",
		Fields: []domain.CSVField{
			{Name: "Invoice Number", DBField: "invoice_number", Type: domain.FieldString, Required: true, Example: "INV-2024-018"},
			{Name: "Client Name", DBField: "client_name", Type: domain.FieldString, Example: "John Smith"},
			{Name: "Project Name", DBField: "project_name", Type: domain.FieldString, Lookup: projectLookup(), Example: "Smith Kitchen Remodel"},
			{Name: "Amount", DBField: "amount", Type: domain.FieldNumber, Required: true, Example: "8200.00"},
			{Name: "Issue Date", DBField: "issue_date", Type: domain.FieldDate, Example: "2024-03-01"},
			{Name: "Due Date", DBField: "due_date", Type: domain.FieldDate, Example: "2024-03-31"},
			{Name: "Paid", DBField: "paid", Type: domain.FieldBoolean, Example: "no"},
		},
		DuplicateMatchFields: []string{"invoice_number"},
	},
	{
		DataType:    "materials",
		DisplayName: "Materials",
		TableName:   "materials",
		Description: "Material catalog with unit costs",
		Fields: []domain.CSVField{
			{Name: "Material Name", DBField: "name", Type: domain.FieldString, Required: true, Example: "2x4 Stud 8ft"},
			{Name: "SKU", DBField: "sku", Type: domain.FieldString, Example: "LBR-2X4-8"},
			{Name: "Unit", DBField: "unit", Type: domain.FieldString, Example: "each"},
			{Name: "Unit Cost", DBField: "unit_cost", Type: domain.FieldNumber, Example: "3.85"},
			{Name: "Quantity", DBField: "quantity", Type: domain.FieldNumber, Example: "240"},
			{Name: "Supplier", DBField: "supplier", Type: domain.FieldString, Example: "Springfield Lumber Co"},
		},
		DuplicateMatchFields: []string{"name", "sku"},
	},
	{
		DataType:    "subcontractors",
		DisplayName: "Subcontractors",
		TableName:   "subcontractors",
		Description: "Subcontractor companies and their trades",
		Fields: []domain.CSVField{
			{Name: "Company Name", DBField: "company_name", Type: domain.FieldString, Required: true, Example: "Ace Electric"},
			{Name: "Contact Name", DBField: "contact_name", Type: domain.FieldString, Example: "Sam Carter"},
			{Name: "Email", DBField: "email", Type: domain.FieldEmail, Example: "office@aceelectric.example.com"},
			{Name: "Phone", DBField: "phone", Type: domain.FieldPhone, Example: "+1 555 444 2211"},
			{Name: "Trade", DBField: "trade", Type: domain.FieldString, Example: "electrical"},
			{Name: "License Number", DBField: "license_number", Type: domain.FieldString, Example: "EL-10492"},
		},
		DuplicateMatchFields: []string{"company_name", "email"},
	},
	{
		DataType:    "change_orders",
		DisplayName: "Change Orders",
		TableName:   "change_orders",
		Description: "Approved and pending scope changes",
		Fields: []domain.CSVField{
			{Name: "Title", DBField: "title", Type: domain.FieldString, Required: true, Example: "Add island electrical"},
			{Name: "Project Name", DBField: "project_name", Type: domain.FieldString, Lookup: projectLookup(), Example: "Smith Kitchen Remodel"},
			{Name: "Amount", DBField: "amount", Type: domain.FieldNumber, Example: "1400"},
			{Name: "Status", DBField: "status", Type: domain.FieldString, Example: "pending"},
			{Name: "Approved Date", DBField: "approved_date", Type: domain.FieldDate, Example: "2024-03-20"},
			{Name: "Reason", DBField: "reason", Type: domain.FieldString, Example: "Client requested additional outlets"},
		},
		DuplicateMatchFields: []string{"title"},
	},
}
