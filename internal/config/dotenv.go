package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// DefaultDotEnvFile is read from the working directory when present.
const DefaultDotEnvFile = ".env"

// LoadDotEnv exports the KEY=VALUE pairs of a dotenv file into the process environment.
// Variables that are already set win. A missing file is not an error unless required.
func LoadDotEnv(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf(messages.ConfigDotEnvFmt, path, err)
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf(messages.ConfigDotEnvFmt, path, err)
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf(messages.ConfigDotEnvFmt, path, err)
		}
	}
	return nil
}
