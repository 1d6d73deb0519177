package rbac

const (
	PermConversionList     = "conversion:list"
	PermConversionView     = "conversion:view"
	PermConversionDownload = "conversion:download"
	PermEventsRead         = "events:read"
)

// Default policy. Document generation itself is public; only the archive is guarded.
var RolePermissions = map[string][]string{
	"teacher": {
		PermConversionList,
		PermConversionView,
		PermConversionDownload,
	},
	"auditor": {
		PermConversionList,
		PermConversionView,
		"events:*",
	},
	"admin": {
		"*", // everything
	},
}
