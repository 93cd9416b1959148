package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"
	MetricsRoute     = "/metrics"

	CatalogRoute      = "/v1/catalog"
	AssetRoute        = CatalogRoute + "/{assetID}"
	AssetPreviewRoute = AssetRoute + "/preview"

	NegotiationsRoute      = "/v1/negotiations"
	NegotiationRoute       = NegotiationsRoute + "/{id}"
	NegotiationActionRoute = NegotiationRoute + "/{action}"

	TransfersRoute      = "/v1/transfers"
	TransferRoute       = TransfersRoute + "/{id}"
	TransferDataRoute   = TransferRoute + "/data"
	TransferActionRoute = TransferRoute + "/{action}"

	AgreementsRoute = "/v1/agreements"
	AgreementRoute  = AgreementsRoute + "/{id}"

	ExplainRoute = "/v1/policy/explain"
	AuditRoute   = "/v1/audit"

	AdminParent        = "/v1/admin"
	ResetRoute         = AdminParent + "/reset"
	ReloadCatalogRoute = AdminParent + "/catalog/reload"
	TasksRoute         = AdminParent + "/tasks"
	TaskTriggerRoute   = TasksRoute + "/{name}/trigger"
	TaskLogsRoute      = TasksRoute + "/{name}/logs"
)
