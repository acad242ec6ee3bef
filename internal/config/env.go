package config

import (
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env files into the process environment. With override set,
// values from the files replace variables that are already defined.
func LoadEnv(override bool, files ...string) {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}

		var err error
		if override {
			err = godotenv.Overload(file)
		} else {
			err = godotenv.Load(file)
		}
		if err != nil {
			log.Printf("Warning: could not load %s: %v", file, err)
		}
	}
}

// KeyStatus describes one API key after environment loading.
type KeyStatus struct {
	Name   string
	Loaded bool
	Prefix string
}

// EnvReport is the result of an environment-loading diagnostic.
type EnvReport struct {
	WorkingDir  string
	EnvFile     string
	EnvFileSeen bool
	ParseError  error
	FileKeys    []string
	Keys        []KeyStatus
}

// InspectEnv loads envFile with override semantics and reports what the
// process can see afterwards. Key values are never included beyond a short prefix.
func InspectEnv(envFile string) EnvReport {
	report := EnvReport{EnvFile: envFile}

	if wd, err := os.Getwd(); err == nil {
		report.WorkingDir = wd
	}

	if _, err := os.Stat(envFile); err == nil {
		report.EnvFileSeen = true

		values, err := godotenv.Read(envFile)
		if err != nil {
			report.ParseError = err
		}
		for k := range values {
			report.FileKeys = append(report.FileKeys, k)
		}
		sort.Strings(report.FileKeys)
	}

	LoadEnv(true, envFile)

	for _, name := range []string{EnvOpenAIKey, EnvAnthropicKey} {
		value := os.Getenv(name)
		status := KeyStatus{Name: name, Loaded: value != ""}
		if status.Loaded {
			status.Prefix = maskKey(value)
		}
		report.Keys = append(report.Keys, status)
	}

	return report
}

func maskKey(key string) string {
	if len(key) <= 7 {
		return key[:1] + "..."
	}
	return key[:7] + "..."
}
