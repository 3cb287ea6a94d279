package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file named by GHOST_ENV (or .env by default), then
// the matching .secret sidecar if it exists. Values already present in the
// process environment win. All config is flat env vars read via os.Getenv.
func Load() error {
	envFile := os.Getenv("GHOST_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	return stringOr("MIGRATIONS_PATH", "migrations")
}

// LLMProvider returns the configured text generation provider.
// Valid values: openai, anthropic, gemini, cerebras, mock
func LLMProvider() string {
	return stringOr("LLM_PROVIDER", "openai")
}

// LLMAPIKey returns LLM_API_KEY, falling back to the provider specific
// variable so existing provider keys keep working.
func LLMAPIKey() string {
	if k := os.Getenv("LLM_API_KEY"); k != "" {
		return k
	}
	switch LLMProvider() {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "cerebras":
		return os.Getenv("CEREBRAS_API_KEY")
	case "mock":
		return ""
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// LLMModel is empty unless set, in which case each provider uses its own default.
func LLMModel() string {
	return os.Getenv("LLM_MODEL")
}

// NATSURL is empty when event publishing is disabled.
func NATSURL() string {
	return os.Getenv("NATS_URL")
}

func NATSSubjectPrefix() string {
	return stringOr("NATS_SUBJECT_PREFIX", "ghost")
}

// AdminAPIKey guards the /v1/admin routes. Empty disables them.
func AdminAPIKey() string {
	return os.Getenv("ADMIN_API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	return positiveInt("RATE_LIMIT_BURST", 20)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return stringOr("LOG_LEVEL", "info")
}

// KnowledgeCatalogPath points at a YAML catalog overriding the embedded one.
func KnowledgeCatalogPath() string {
	return os.Getenv("KNOWLEDGE_CATALOG_PATH")
}

func GravityInterval() time.Duration {
	return duration("GRAVITY_INTERVAL", 6*time.Hour)
}

func CollapseInterval() time.Duration {
	return duration("COLLAPSE_INTERVAL", time.Hour)
}

func DecayInterval() time.Duration {
	return duration("DECAY_INTERVAL", time.Hour)
}

func BeliefDecayInterval() time.Duration {
	return duration("BELIEF_DECAY_INTERVAL", 24*time.Hour)
}

func BeliefDecayRate() float64 {
	rate, err := strconv.ParseFloat(os.Getenv("BELIEF_DECAY_RATE"), 64)
	if err != nil || rate <= 0 || rate >= 1 {
		return 0.01
	}
	return rate
}

// JobWorkers bounds how many agents a sweep processes at once.
func JobWorkers() int {
	return positiveInt("JOB_WORKERS", 4)
}

// EvolutionTimeout bounds a background evolution run.
func EvolutionTimeout() time.Duration {
	return duration("EVOLUTION_TIMEOUT", 30*time.Second)
}

func TensionCacheTTL() time.Duration {
	return duration("TENSION_CACHE_TTL", 5*time.Minute)
}

func stringOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// duration accepts Go duration strings such as "90m" or "6h".
func duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
