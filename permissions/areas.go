package permissions

// securityAreas is the ERP security table. IDs are persisted inside
// role records, so blocks and offsets must never be renumbered.
var securityAreas = []Section{
	{Code: "SS_SADMIN", Name: "System Administration", Block: 1, Areas: []Area{
		{"SA_CREATECOMPANY", "Install/update companies", 1},
		{"SA_CREATELANGUAGE", "Install/update languages", 2},
		{"SA_CREATEMODULES", "Install/upgrade extensions", 3},
		{"SA_SOFTWAREUPGRADE", "Software upgrades", 4},
	}},
	{Code: "SS_SETUP", Name: "Company Setup", Block: 2, Areas: []Area{
		{"SA_SETUPCOMPANY", "Company parameters", 1},
		{"SA_SECROLES", "Access levels edition", 2},
		{"SA_USERS", "Users setup", 3},
		{"SA_POSSETUP", "Point of sales definitions", 4},
		{"SA_PRINTERS", "Printers configuration", 5},
		{"SA_PRINTPROFILE", "Print profiles", 6},
		{"SA_PAYTERMS", "Payment terms", 7},
		{"SA_SHIPPING", "Shipping ways", 8},
		{"SA_CRSTATUS", "Credit status definitions changes", 9},
		{"SA_INVENTORYLOCATION", "Inventory locations changes", 10},
		{"SA_INVENTORYMOVETYPE", "Inventory movement types", 11},
		{"SA_WORKCENTERS", "Manufacture work centres", 12},
		{"SA_FORMSETUP", "Forms setup", 13},
		{"SA_CRMCATEGORY", "Contact categories", 14},
	}},
	{Code: "SS_SPEC", Name: "Special Maintenance", Block: 3, Areas: []Area{
		{"SA_VOIDTRANSACTION", "Voiding transactions", 1},
		{"SA_BACKUP", "Database backup/restore", 2},
		{"SA_VIEWPRINTTRANSACTION", "Common view/print transactions interface", 3},
		{"SA_ATTACHDOCUMENT", "Attaching documents", 4},
		{"SA_SETUPDISPLAY", "Display preferences", 5},
		{"SA_CHGPASSWD", "Password changes", 6},
		{"SA_EDITOTHERSTRANS", "Edit other users transactions", 7},
	}},
	{Code: "SS_SALES_C", Name: "Sales Configuration", Block: 11, Areas: []Area{
		{"SA_SALESTYPES", "Sales types", 1},
		{"SA_SALESPRICE", "Sales prices edition", 2},
		{"SA_SALESMAN", "Sales staff maintenance", 3},
		{"SA_SALESAREA", "Sales areas maintenance", 4},
		{"SA_SALESGROUP", "Sales groups changes", 5},
		{"SA_STEMPLATE", "Sales templates", 6},
		{"SA_SRECURRENT", "Recurrent invoices definitions", 7},
	}},
	{Code: "SS_SALES", Name: "Sales Transactions", Block: 12, Areas: []Area{
		{"SA_SALESTRANSVIEW", "Sales transactions view", 1},
		{"SA_CUSTOMER", "Sales customer and branches changes", 2},
		{"SA_SALESQUOTE", "Sales quotations", 10},
		{"SA_SALESORDER", "Sales orders edition", 3},
		{"SA_SALESDELIVERY", "Sales deliveries edition", 4},
		{"SA_SALESINVOICE", "Sales invoices edition", 5},
		{"SA_SALESCREDITINV", "Sales credit notes against invoice", 6},
		{"SA_SALESCREDIT", "Sales freehand credit notes", 7},
		{"SA_SALESPAYMNT", "Customer payments entry", 8},
		{"SA_SALESALLOC", "Customer payments allocation", 9},
	}},
	{Code: "SS_SALES_A", Name: "Sales Related Reports", Block: 13, Areas: []Area{
		{"SA_SALESANALYTIC", "Sales analytical reports", 1},
		{"SA_SALESBULKREP", "Sales document bulk reports", 2},
		{"SA_PRICEREP", "Sales prices listing", 3},
		{"SA_SALESMANREP", "Sales staff listing", 4},
		{"SA_CUSTBULKREP", "Customer bulk listing", 5},
		{"SA_CUSTSTATREP", "Customer status report", 6},
		{"SA_CUSTPAYMREP", "Customer payments report", 7},
	}},
	{Code: "SS_PURCH_C", Name: "Purchase Configuration", Block: 21, Areas: []Area{
		{"SA_PURCHASEPRICING", "Purchase price changes", 1},
	}},
	{Code: "SS_PURCH", Name: "Purchase Transactions", Block: 22, Areas: []Area{
		{"SA_SUPPTRANSVIEW", "Supplier transactions view", 1},
		{"SA_SUPPLIER", "Suppliers changes", 2},
		{"SA_PURCHASEORDER", "Purchase order entry", 3},
		{"SA_GRN", "Purchase receive", 4},
		{"SA_SUPPLIERINVOICE", "Supplier invoices", 5},
		{"SA_GRNDELETE", "Deleting GRN items during invoice entry", 9},
		{"SA_SUPPLIERCREDIT", "Supplier credit notes", 6},
		{"SA_SUPPLIERPAYMNT", "Supplier payments", 7},
		{"SA_SUPPLIERALLOC", "Supplier payments allocations", 8},
	}},
	{Code: "SS_PURCH_A", Name: "Purchase Analytics", Block: 23, Areas: []Area{
		{"SA_SUPPLIERANALYTIC", "Supplier analytical reports", 1},
		{"SA_SUPPBULKREP", "Supplier document bulk reports", 2},
		{"SA_SUPPPAYMREP", "Supplier payments report", 3},
	}},
	{Code: "SS_ITEMS_C", Name: "Inventory Configuration", Block: 31, Areas: []Area{
		{"SA_ITEM", "Stock items add/edit", 1},
		{"SA_SALESKIT", "Sales kits", 2},
		{"SA_ITEMCATEGORY", "Item categories", 3},
		{"SA_UOM", "Units of measure", 4},
	}},
	{Code: "SS_ITEMS", Name: "Inventory Operations", Block: 32, Areas: []Area{
		{"SA_ITEMSSTATVIEW", "Stock status view", 1},
		{"SA_ITEMSTRANSVIEW", "Stock transactions view", 2},
		{"SA_FORITEMCODE", "Foreign item codes entry", 3},
		{"SA_LOCATIONTRANSFER", "Inventory location transfers", 5},
		{"SA_INVENTORYADJUSTMENT", "Inventory adjustments", 6},
	}},
	{Code: "SS_ITEMS_A", Name: "Inventory Analytics", Block: 33, Areas: []Area{
		{"SA_REORDER", "Reorder levels", 1},
		{"SA_ITEMSANALYTIC", "Items analytical reports and inquiries", 2},
		{"SA_ITEMSVALREP", "Inventory valuation report", 3},
	}},
	{Code: "SS_ASSETS_C", Name: "Fixed Assets Configuration", Block: 36, Areas: []Area{
		{"SA_ASSETCATEGORY", "Fixed Asset categories", 1},
		{"SA_ASSETCLASS", "Fixed Asset classes", 2},
		{"SA_ASSETLOCATION", "Fixed Asset locations", 3},
	}},
	{Code: "SS_ASSETS", Name: "Fixed Assets Operations", Block: 37, Areas: []Area{
		{"SA_ASSET", "Fixed Asset items add/edit", 1},
		{"SA_ASSETTRANSFER", "Fixed Asset location transfers", 2},
		{"SA_ASSETDISPOSAL", "Fixed Asset disposals", 3},
		{"SA_DEPRECIATION", "Depreciation", 4},
	}},
	{Code: "SS_ASSETS_A", Name: "Fixed Assets Analytics", Block: 38, Areas: []Area{
		{"SA_ASSETSTRANSVIEW", "Fixed Asset transactions view", 1},
		{"SA_ASSETSANALYTIC", "Fixed Asset analytical reports and inquiries", 2},
	}},
	{Code: "SS_MANUF_C", Name: "Manufacturing Configuration", Block: 41, Areas: []Area{
		{"SA_BOM", "Bill of Materials", 1},
	}},
	{Code: "SS_MANUF", Name: "Manufacturing Transactions", Block: 42, Areas: []Area{
		{"SA_MANUFTRANSVIEW", "Manufacturing operations view", 1},
		{"SA_WORKORDERENTRY", "Work order entry", 2},
		{"SA_MANUFISSUE", "Material issues entry", 3},
		{"SA_MANUFRECEIVE", "Final product receive", 4},
		{"SA_MANUFRELEASE", "Work order releases", 5},
	}},
	{Code: "SS_MANUF_A", Name: "Manufacturing Analytics", Block: 43, Areas: []Area{
		{"SA_WORKORDERANALYTIC", "Work order analytical reports and inquiries", 1},
		{"SA_WORKORDERCOST", "Manufacturing cost inquiry", 2},
		{"SA_MANUFBULKREP", "Work order bulk reports", 3},
		{"SA_BOMREP", "Bill of materials reports", 4},
	}},
	{Code: "SS_DIM_C", Name: "Dimensions Configuration", Block: 51, Areas: []Area{
		{"SA_DIMTAGS", "Dimension tags", 1},
	}},
	{Code: "SS_DIM", Name: "Dimensions", Block: 52, Areas: []Area{
		{"SA_DIMTRANSVIEW", "Dimension view", 1},
		{"SA_DIMENSION", "Dimension entry", 2},
	}},
	{Code: "SS_DIM_A", Name: "Dimensions Analytics", Block: 53, Areas: []Area{
		{"SA_DIMENSIONREP", "Dimension reports", 1},
	}},
	{Code: "SS_GL_C", Name: "Banking & GL Configuration", Block: 61, Areas: []Area{
		{"SA_ITEMTAXTYPE", "Item tax type definitions", 1},
		{"SA_GLSETUP", "GL settings", 2},
		{"SA_FISCALYEARS", "Fiscal years maintenance", 3},
		{"SA_QUICKENTRY", "Quick GL entry definitions", 4},
		{"SA_CURRENCY", "Currencies", 5},
		{"SA_BANKACCOUNT", "Bank accounts", 6},
		{"SA_TAXRATES", "Tax rates", 7},
		{"SA_TAXGROUPS", "Tax groups", 12},
		{"SA_GLACCOUNT", "GL Accounts edition", 8},
		{"SA_GLACCOUNTGROUP", "GL account groups", 9},
		{"SA_GLACCOUNTCLASS", "GL account classes", 10},
		{"SA_GLCLOSE", "Closing GL transactions", 11},
		{"SA_GLREOPEN", "Reopening GL transactions", 13},
		{"SA_MULTIFISCALYEARS", "Allow entry on non closed Fiscal years", 14},
	}},
	{Code: "SS_GL", Name: "Banking & GL Transactions", Block: 62, Areas: []Area{
		{"SA_BANKTRANSVIEW", "Bank transactions view", 1},
		{"SA_GLTRANSVIEW", "GL postings view", 2},
		{"SA_EXCHANGERATE", "Exchange rate table changes", 3},
		{"SA_PAYMENT", "Bank payments", 4},
		{"SA_DEPOSIT", "Bank deposits", 5},
		{"SA_BANKTRANSFER", "Bank account transfers", 6},
		{"SA_RECONCILE", "Bank reconciliation", 7},
		{"SA_JOURNALENTRY", "Manual journal entries", 8},
		{"SA_BANKJOURNAL", "Journal entries to bank related accounts", 11},
		{"SA_BUDGETENTRY", "Budget edition", 9},
		{"SA_STANDARDCOST", "Item standard costs", 10},
		{"SA_ACCRUALS", "Revenue / Cost Accruals", 12},
	}},
	{Code: "SS_GL_A", Name: "Banking & GL Analytics", Block: 63, Areas: []Area{
		{"SA_GLANALYTIC", "GL analytical reports and inquiries", 1},
		{"SA_TAXREP", "Tax reports and inquiries", 2},
		{"SA_BANKREP", "Bank reports and inquiries", 3},
		{"SA_GLREP", "GL reports and inquiries", 4},
	}},
}
