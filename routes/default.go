package routes

import "erp-access/permissions"

// erpRoutes are the screens of the ERP front end.
var erpRoutes = []Route{
	{Path: "/", Page: "dashboard", Title: "Dashboard"},
	{Path: "/profile", Page: "profile", Title: "My Profile"},

	{Path: "/sales/quotations", Page: "sales-quotations", Title: "Sales Quotations", Permission: "SA_SALESQUOTE"},
	{Path: "/sales/quotations/{id}", Page: "sales-quotation", Title: "Sales Quotation", Permission: "SA_SALESQUOTE"},
	{Path: "/sales/orders", Page: "sales-orders", Title: "Sales Orders", Permission: "SA_SALESORDER"},
	{Path: "/sales/orders/{id}", Page: "sales-order", Title: "Sales Order", Permission: "SA_SALESORDER"},
	{Path: "/sales/deliveries", Page: "sales-deliveries", Title: "Deliveries", Permission: "SA_SALESDELIVERY"},
	{Path: "/sales/invoices", Page: "sales-invoices", Title: "Sales Invoices", Permission: "SA_SALESINVOICE"},
	{Path: "/sales/payments", Page: "customer-payments", Title: "Customer Payments", Permission: "SA_SALESPAYMNT"},
	{Path: "/sales/customers", Page: "customers", Title: "Customers", Permission: "SA_CUSTOMER"},
	{Path: "/sales/setup/sales-types", Page: "sales-types", Title: "Sales Types", Permission: "SA_SALESTYPES"},
	{Path: "/sales/reports", Page: "sales-reports", Title: "Sales Reports", Permission: "SA_SALESANALYTIC"},

	{Path: "/purchases/orders", Page: "purchase-orders", Title: "Purchase Orders", Permission: "SA_PURCHASEORDER"},
	{Path: "/purchases/orders/{id}", Page: "purchase-order", Title: "Purchase Order", Permission: "SA_PURCHASEORDER"},
	{Path: "/purchases/receive", Page: "goods-received", Title: "Receive Items", Permission: "SA_GRN"},
	{Path: "/purchases/supplier-invoices", Page: "supplier-invoices", Title: "Supplier Invoices", Permission: "SA_SUPPLIERINVOICE"},
	{Path: "/purchases/payments", Page: "supplier-payments", Title: "Supplier Payments", Permission: "SA_SUPPLIERPAYMNT"},
	{Path: "/purchases/suppliers", Page: "suppliers", Title: "Suppliers", Permission: "SA_SUPPLIER"},

	{Path: "/inventory/items", Page: "items", Title: "Items", Permission: "SA_ITEM"},
	{Path: "/inventory/transfers", Page: "location-transfers", Title: "Inventory Location Transfers", Permission: "SA_LOCATIONTRANSFER"},
	{Path: "/inventory/adjustments", Page: "inventory-adjustments", Title: "Inventory Adjustments", Permission: "SA_INVENTORYADJUSTMENT"},
	{Path: "/inventory/locations", Page: "inventory-locations", Title: "Inventory Locations", Permission: "SA_INVENTORYLOCATION"},

	{Path: "/manufacturing/work-orders", Page: "work-orders", Title: "Work Orders", Permission: "SA_WORKORDERENTRY"},
	{Path: "/manufacturing/bom", Page: "bills-of-material", Title: "Bills Of Material", Permission: "SA_BOM"},

	{Path: "/fixed-assets/items", Page: "fixed-assets", Title: "Fixed Assets", Permission: "SA_ASSET"},
	{Path: "/fixed-assets/locations", Page: "fixed-asset-locations", Title: "Fixed Asset Locations", Permission: "SA_ASSETLOCATION"},
	{Path: "/fixed-assets/depreciation", Page: "depreciation", Title: "Process Depreciation", Permission: "SA_DEPRECIATION"},

	{Path: "/dimensions", Page: "dimensions", Title: "Dimensions", Permission: "SA_DIMENSION"},
	{Path: "/dimensions/tags", Page: "dimension-tags", Title: "Dimension Tags", Permission: "SA_DIMTAGS"},

	{Path: "/banking/payments", Page: "bank-payments", Title: "Payments", Permission: "SA_PAYMENT"},
	{Path: "/banking/deposits", Page: "bank-deposits", Title: "Deposits", Permission: "SA_DEPOSIT"},
	{Path: "/banking/transfers", Page: "bank-transfers", Title: "Bank Account Transfers", Permission: "SA_BANKTRANSFER"},
	{Path: "/banking/reconcile", Page: "reconcile", Title: "Reconcile Bank Account", Permission: "SA_RECONCILE"},
	{Path: "/gl/journal-entries", Page: "journal-entries", Title: "Journal Entry", Permission: "SA_JOURNALENTRY"},
	{Path: "/gl/budget", Page: "budget", Title: "Budget Entry", Permission: "SA_BUDGETENTRY"},
	{Path: "/gl/inquiry", Page: "gl-inquiry", Title: "GL Inquiry", Permission: "SA_GLTRANSVIEW"},
	{Path: "/gl/setup/accounts", Page: "gl-accounts", Title: "GL Accounts", Permission: "SA_GLACCOUNT"},
	{Path: "/gl/setup/bank-accounts", Page: "bank-accounts", Title: "Bank Accounts", Permission: "SA_BANKACCOUNT"},
	{Path: "/gl/setup/currencies", Page: "currencies", Title: "Currencies", Permission: "SA_CURRENCY"},
	{Path: "/gl/setup/tax-types", Page: "tax-types", Title: "Tax Types", Permission: "SA_TAXRATES"},
	{Path: "/gl/setup/tax-groups", Page: "tax-groups", Title: "Tax Groups", Permission: "SA_TAXGROUPS"},
	{Path: "/gl/setup/item-tax-types", Page: "item-tax-types", Title: "Item Tax Types", Permission: "SA_ITEMTAXTYPE"},

	{Path: "/setup/company", Page: "company-setup", Title: "Company Setup", Permission: "SA_SETUPCOMPANY"},
	{Path: "/setup/users", Page: "users", Title: "User Accounts Setup", Permission: "SA_USERS"},
	{Path: "/setup/security-roles", Page: "security-roles", Title: "Access Setup", Permission: "SA_SECROLES"},
	{Path: "/setup/fiscal-years", Page: "fiscal-years", Title: "Fiscal Years", Permission: "SA_FISCALYEARS"},
	{Path: "/setup/payment-terms", Page: "payment-terms", Title: "Payment Terms", Permission: "SA_PAYTERMS"},
	{Path: "/setup/backup", Page: "backup", Title: "Backup and Restore", Permission: "SA_BACKUP"},
	{Path: "/admin/companies", Page: "companies", Title: "Create/Update Companies", Permission: "SA_CREATECOMPANY"},
}

// Default returns the ERP route table checked against reg.
func Default(reg *permissions.Registry) (*Table, error) {
	return NewTable(reg, erpRoutes...)
}
