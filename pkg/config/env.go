package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "SHOPIT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SHOPIT_DB_DSN"
	EnvDBHost = "SHOPIT_DB_HOST"
	EnvDBUser = "SHOPIT_DB_USER"
	EnvDBName = "SHOPIT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
