package services

import (
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

// businessDomain is one entry of the closed domain vocabulary used by the
// classifier. Order matters: on equal match counts the first domain in this
// slice wins.
type businessDomain struct {
	name         string
	keywords     []string
	commonFields []types.FieldTemplate
}

// knownDomains is the enumeration the classifier scores against. "general"
// is not listed here; it is the seed-template fallback when nothing scores.
var knownDomains = []businessDomain{
	{
		name: "finance",
		keywords: []string{
			"invoice", "payment", "accounting", "budget", "ledger", "journal",
			"tax", "expense", "revenue", "debit", "credit", "balance",
		},
		commonFields: []types.FieldTemplate{
			{Name: "amount", Type: types.FieldTypeNumber, Label: "Amount", Required: true},
			{Name: "currency", Type: types.FieldTypeText, Label: "Currency", Required: true},
			{Name: "transaction_date", Type: types.FieldTypeDate, Label: "Transaction Date", Required: true},
			{Name: "reference", Type: types.FieldTypeText, Label: "Reference"},
			{Name: "account", Type: types.FieldTypeText, Label: "Account"},
			{Name: "status", Type: types.FieldTypeText, Label: "Status"},
		},
	},
	{
		name: "crm",
		keywords: []string{
			"customer", "lead", "contact", "opportunity", "pipeline", "deal",
			"campaign", "client", "prospect", "followup",
		},
		commonFields: []types.FieldTemplate{
			{Name: "name", Type: types.FieldTypeText, Label: "Name", Required: true},
			{Name: "email", Type: types.FieldTypeText, Label: "Email", Required: true},
			{Name: "phone", Type: types.FieldTypeText, Label: "Phone"},
			{Name: "company", Type: types.FieldTypeText, Label: "Company"},
			{Name: "source", Type: types.FieldTypeText, Label: "Lead Source"},
			{Name: "status", Type: types.FieldTypeText, Label: "Status"},
		},
	},
	{
		name: "inventory",
		keywords: []string{
			"stock", "warehouse", "sku", "supplier", "reorder", "shipment",
			"batch", "bin", "barcode", "unit",
		},
		commonFields: []types.FieldTemplate{
			{Name: "name", Type: types.FieldTypeText, Label: "Item Name", Required: true},
			{Name: "sku", Type: types.FieldTypeText, Label: "SKU", Required: true},
			{Name: "quantity", Type: types.FieldTypeNumber, Label: "Quantity on Hand", Required: true},
			{Name: "reorder_level", Type: types.FieldTypeNumber, Label: "Reorder Level"},
			{Name: "supplier", Type: types.FieldTypeText, Label: "Supplier"},
			{Name: "location", Type: types.FieldTypeText, Label: "Warehouse Location"},
		},
	},
	{
		name: "hr",
		keywords: []string{
			"employee", "payroll", "salary", "leave", "attendance", "recruitment",
			"staff", "benefits", "department", "onboarding",
		},
		commonFields: []types.FieldTemplate{
			{Name: "name", Type: types.FieldTypeText, Label: "Full Name", Required: true},
			{Name: "email", Type: types.FieldTypeText, Label: "Work Email", Required: true},
			{Name: "department", Type: types.FieldTypeText, Label: "Department"},
			{Name: "hire_date", Type: types.FieldTypeDate, Label: "Hire Date"},
			{Name: "salary", Type: types.FieldTypeNumber, Label: "Salary"},
			{Name: "active", Type: types.FieldTypeBoolean, Label: "Active"},
		},
	},
	{
		name: "project",
		keywords: []string{
			"task", "milestone", "deadline", "sprint", "deliverable", "timeline",
			"assignee", "backlog", "kanban", "workload",
		},
		commonFields: []types.FieldTemplate{
			{Name: "title", Type: types.FieldTypeText, Label: "Title", Required: true},
			{Name: "description", Type: types.FieldTypeText, Label: "Description"},
			{Name: "due_date", Type: types.FieldTypeDate, Label: "Due Date"},
			{Name: "assignee", Type: types.FieldTypeText, Label: "Assignee"},
			{Name: "priority", Type: types.FieldTypeText, Label: "Priority"},
			{Name: "completed", Type: types.FieldTypeBoolean, Label: "Completed"},
		},
	},
	{
		name: "restaurant",
		keywords: []string{
			"menu", "order", "table", "kitchen", "recipe", "ingredient",
			"reservation", "delivery", "chef", "dish", "course", "cuisine",
		},
		commonFields: []types.FieldTemplate{
			{Name: "name", Type: types.FieldTypeText, Label: "Name", Required: true},
			{Name: "description", Type: types.FieldTypeText, Label: "Description"},
			{Name: "price", Type: types.FieldTypeNumber, Label: "Price", Required: true},
			{Name: "category", Type: types.FieldTypeText, Label: "Category"},
			{Name: "available", Type: types.FieldTypeBoolean, Label: "Available"},
			{Name: "preparation_time", Type: types.FieldTypeNumber, Label: "Preparation Time (min)"},
		},
	},
	{
		name: "retail",
		keywords: []string{
			"pos", "checkout", "cart", "discount", "promotion", "loyalty",
			"receipt", "store", "shelf", "merchandising",
		},
		commonFields: []types.FieldTemplate{
			{Name: "name", Type: types.FieldTypeText, Label: "Product Name", Required: true},
			{Name: "price", Type: types.FieldTypeNumber, Label: "Price", Required: true},
			{Name: "barcode", Type: types.FieldTypeText, Label: "Barcode"},
			{Name: "category", Type: types.FieldTypeText, Label: "Category"},
			{Name: "discount", Type: types.FieldTypeNumber, Label: "Discount %"},
			{Name: "in_stock", Type: types.FieldTypeBoolean, Label: "In Stock"},
		},
	},
}

// generalCommonFields seeds rule-based generation when classification
// confidence is zero (unclassified input).
var generalCommonFields = []types.FieldTemplate{
	{Name: "name", Type: types.FieldTypeText, Label: "Name", Required: true},
	{Name: "description", Type: types.FieldTypeText, Label: "Description"},
	{Name: "category", Type: types.FieldTypeText, Label: "Category"},
	{Name: "status", Type: types.FieldTypeText, Label: "Status"},
	{Name: "active", Type: types.FieldTypeBoolean, Label: "Active"},
}
