// Package cfgloader loads and validates service configuration at startup.
package cfgloader

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"
)

const (
	CodeInvalidEnvironment = "INVALID_ENVIRONMENT"
	CodeConfigNotFound     = "CONFIG_NOT_FOUND"
	CodeInvalidConfig      = "INVALID_CONFIG"
)

var environments = []string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}

// MustLoad is Load for process startup: any failure is printed to stderr and
// the process exits with status 1.
func MustLoad[T any](opts ...Option) T {
	config, err := Load[T](opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[cfgloader]: %s\n", err.Error())
		os.Exit(1)
	}
	return config
}

// Load reads configuration of type T.
//
// The ENVIRONMENT variable (optionally set through a .env file) selects
// ${dir}/${ENVIRONMENT}.yaml, where dir defaults to ./config. ${VAR} references in
// the file are expanded from the process environment before decoding. Fields use
// `yaml` tags for mapping, `default` tags for defaults and `validate` tags for
// go-playground/validator rules. Fields tagged `mask:"true"` are starred out
// when the loaded config is printed.
//
//	type Config struct {
//	    DSN  string `yaml:"dsn" validate:"required" mask:"true"`
//	    Port int    `yaml:"port" default:"8080"`
//	}
func Load[T any](opts ...Option) (T, error) {
	var config T

	o := Options{ConfigDir: defaultConfigDir, Output: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	if reflect.TypeOf(config) != nil && reflect.TypeOf(config).Kind() == reflect.Ptr {
		return config, errx.New("config type must not be a pointer", errx.WithCode(CodeInvalidConfig))
	}

	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if !slices.Contains(environments, env) {
		return config, errx.New(
			fmt.Sprintf("ENVIRONMENT is not set or invalid, choices are: %s", strings.Join(environments, ", ")),
			errx.WithCode(CodeInvalidEnvironment),
			errx.WithDetails(errx.D{"environment": env}),
		)
	}

	path := filepath.Join(o.ConfigDir, env+".yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, errx.New(
			"config file not found, every environment needs its own yaml file",
			errx.WithCode(CodeConfigNotFound),
			errx.WithDetails(errx.D{"path": path}),
		)
	}
	if err != nil {
		return config, errx.Wrap(err)
	}

	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig), errx.WithDetails(errx.D{"path": path}))
	}

	if err = defaults.Set(&config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	if err = validate(&config); err != nil {
		return config, errx.Wrap(err, errx.WithDetails(errx.D{"environment": env}))
	}

	if !o.Silent {
		if err = Print(o.Output, config); err != nil {
			return config, err
		}
	}

	return config, nil
}

func validate(config any) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(config)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns the slice type directly
	if !ok {
		return errx.Wrap(err)
	}

	failed := make([]string, 0, len(errs))
	for _, fe := range errs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		failed = append(failed, fe.Namespace()+": "+rule)
	}
	return errx.New(
		"invalid config fields: "+strings.Join(failed, ", "),
		errx.WithCode(CodeInvalidConfig),
	)
}
