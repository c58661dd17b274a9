package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// InventoryBackend selects which Seat Inventory Store implementation
// the server runs with.
const (
	InventorySQL   = "sql"   // row-locking store on MySQL
	InventoryRedis = "redis" // atomic list store on Redis
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	PaymentHost      string // payment app host
	PaymentPort      string // payment app port
	InventoryBackend string // "sql" or "redis" seat inventory
	InitScript       string // shell script restoring the seed dataset
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// Variables with contest-wide defaults fall back via getenv().
func Load() Config {
	backend := getenv("INVENTORY_BACKEND", InventoryRedis)
	if backend != InventorySQL && backend != InventoryRedis {
		log.Fatalf("invalid INVENTORY_BACKEND: %q (want %q or %q)", backend, InventorySQL, InventoryRedis)
	}
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           getenv("DB_USER", "ishocon"),
		DBPass:           getenv("DB_PASS", "ishocon"),
		DBHost:           getenv("DB_HOST", "127.0.0.1"),
		DBPort:           getenv("DB_PORT", "3306"),
		DBName:           getenv("DB_NAME", "ishocon3"),
		PaymentHost:      getenv("PAYMENT_APP_HOST", "payment_app"),
		PaymentPort:      getenv("PAYMENT_APP_PORT", "8081"),
		InventoryBackend: backend,
		InitScript:       getenv("INIT_SQL_SCRIPT", "sql/init.sh"),
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
