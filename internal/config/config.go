package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"findash/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Spreadsheet source
	SheetID              string
	TransactionSheetName string

	// AMQP (optional; async imports disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Rolling analysis: where last recorded income comes from.
	SalaryCategory string
	SalaryAccount  string

	// Display formatting
	Currency core.CurrencyConfig

	// Backend selection for the row source
	DataBackend string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/findash.db"),

		SheetID:              getEnv("SHEET_ID", ""),
		TransactionSheetName: getEnv("TRANSACTION_SHEET_NAME", "Transactions"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "findash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "import_requests"),

		SalaryCategory: getEnv("SALARY_CATEGORY", "[Salary]"),
		SalaryAccount:  getEnv("SALARY_ACCOUNT", ""),

		Currency: core.CurrencyConfig{
			Symbol:       getEnv("CURRENCY_SYMBOL", "$"),
			DecimalSep:   getEnv("CURRENCY_DECIMAL_SEP", "."),
			ThousandsSep: getEnv("CURRENCY_THOUSANDS_SEP", ","),
		},

		DataBackend: getEnv("DATA_BACKEND", "memory"),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "sheets":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory sheets]", c.DataBackend))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	}

	if c.DataBackend == "sheets" {
		if c.SheetID == "" {
			errs = append(errs, "SHEET_ID is required when using the sheets backend")
		}
		if c.TransactionSheetName == "" {
			errs = append(errs, "TRANSACTION_SHEET_NAME cannot be empty when using the sheets backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.Currency.Symbol == "" {
		errs = append(errs, "currency symbol cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
