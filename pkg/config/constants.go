package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "stocktrace"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STOCKTRACE_DB_DSN"
	EnvDBHost = "STOCKTRACE_DB_HOST"
	EnvDBUser = "STOCKTRACE_DB_USER"
	EnvDBName = "STOCKTRACE_DB_NAME"
)
