package domain

// Canonical sheet column keys. Uploaded sheets carry localized headers; the
// sheet parser maps them back to these keys before processing.
const (
	ColumnBoundaryCode       = "HCM_ADMIN_CONSOLE_BOUNDARY_CODE"
	ColumnFacilityName       = "HCM_ADMIN_CONSOLE_FACILITY_NAME"
	ColumnFacilityCode       = "HCM_ADMIN_CONSOLE_FACILITY_CODE"
	ColumnFacilityUsage      = "HCM_ADMIN_CONSOLE_FACILITY_USAGE"
	ColumnFacilityBoundaries = "HCM_ADMIN_CONSOLE_RESIDING_BOUNDARY_CODE"
	ColumnFacilityStatus     = "HCM_ADMIN_CONSOLE_FACILITY_STATUS"
	ColumnFacilityCapacity   = "HCM_ADMIN_CONSOLE_FACILITY_CAPACITY"
	ColumnPhoneNumber        = "HCM_ADMIN_CONSOLE_USER_PHONE_NUMBER"
	ColumnUserFullName       = "HCM_ADMIN_CONSOLE_USER_NAME"
	ColumnUserRole           = "HCM_ADMIN_CONSOLE_USER_ROLE"
	ColumnUserName           = "UserName"
	ColumnPassword           = "Password"
)

// Usage flag values for the facility usage column.
const (
	UsageActive   = "Active"
	UsageInactive = "Inactive"
)
