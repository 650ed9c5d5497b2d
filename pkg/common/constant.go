package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyOPDBMongoURI          string = "OPDB_MONGO_URI"
	EnvKeyOPDBDbHostname        string = "OPDB_DB_HOSTNAME"
	EnvKeyOPDBDbPort            string = "OPDB_DB_PORT"
	EnvKeyOPDBDbUsername        string = "OPDB_DB_USERNAME"
	EnvKeyOPDBDbPassword        string = "OPDB_DB_PASSWORD"
	EnvKeyOPDBDbName            string = "OPDB_DB_NAME"
	EnvKeyOPDBDbTLS             string = "OPDB_DB_TLS"
	EnvKeyOPDBDbTLSCAFile       string = "OPDB_DB_TLS_CA_FILE"
	EnvKeyOPDBDbReplicaSet      string = "OPDB_DB_REPLICA_SET"
	EnvKeyOPDBDbDirect          string = "OPDB_DB_DIRECT_CONNECTION"
	EnvKeyOPDBCABucket          string = "OPDB_CA_BUCKET"
	EnvKeyOPDBCAKey             string = "OPDB_CA_KEY"
	EnvKeyOPDBNativeLookup      string = "OPDB_NATIVE_LOOKUP"
	EnvKeyOPDBTxMaxAttempts     string = "OPDB_TX_MAX_ATTEMPTS"
	EnvKeyOPDBHttpHostPort      string = "OPDB_HTTP_HOST_PORT"
	EnvKeyOPDBGrpcHostPort      string = "OPDB_GRPC_HOST_PORT"
	EnvKeyOPDBDefaultRate       string = "OPDB_DEFAULT_RATE"
	EnvKeyOPDBDefaultBurst      string = "OPDB_DEFAULT_BURST"
	EnvKeyOPDBHealthProbePeriod string = "OPDB_HEALTH_PROBE_PERIOD"
	EnvKeyOPDBLimiterIdle       string = "OPDB_LIMITER_IDLE"

	LoggerNameOpsCore       string = "ops_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameGrpcServer    string = "grpc_server"
	LoggerNameTxWriter      string = "tx_writer"
	LoggerNameAggregate     string = "aggregate"
	LoggerNameDb            string = "db"

	LoggerFieldOpsCategory         string = "category"
	LoggerCategoryOpsCatalog       string = "catalog"
	LoggerCategoryOpsIntegrity     string = "integrity"
	LoggerCategoryOpsMeasurement   string = "measurement"
	LoggerCategoryOpsForecast      string = "forecast"
	LoggerCategoryOpsOptimization  string = "optimization"
	LoggerFieldRequestID           string = "request_id"
	HeaderRequestID                string = "X-Request-ID"
	ContextKeyRequestID            string = "request_id"
	DefaultDatabaseName            string = "operation"
	DefaultHttpHostPort            string = ":1080"
	DefaultTxMaxAttempts           int    = 3
	DefaultHealthProbePeriodSecond int    = 10
	DefaultLimiterIdleMinute       int    = 10
)
