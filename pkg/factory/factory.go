/*
 * OCS Configuration Factory
 */

package factory

import (
	"fmt"
	"os"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/free5gc/ocs/internal/logger"
)

var OcsConfig *Config

// TODO: Support configuration update from REST api
func InitConfigFactory(f string, cfg *Config) error {
	if f == "" {
		return errors.New("config file path is empty")
	}

	content, err := os.ReadFile(f)
	if err != nil {
		return errors.Wrapf(err, "[Factory] read file %s", f)
	}
	logger.CfgLog.Infof("Read config from [%s]", f)

	if yamlErr := yaml.Unmarshal(content, cfg); yamlErr != nil {
		return errors.Wrap(yamlErr, "[Factory] unmarshal config")
	}

	return nil
}

func ReadConfig(cfgPath string) (*Config, error) {
	cfg := &Config{}
	if err := InitConfigFactory(cfgPath, cfg); err != nil {
		return nil, errors.Wrapf(err, "ReadConfig [%s]", cfgPath)
	}
	if err := CheckConfigVersion(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Validate(); err != nil {
		validErrs, ok := err.(govalidator.Errors)
		if ok {
			for _, validErr := range validErrs.Errors() {
				logger.CfgLog.Errorf("%+v", validErr)
			}
		}
		logger.CfgLog.Errorf("[-- PLEASE REFER TO SAMPLE CONFIG FILE COMMENTS --]")
		return nil, errors.Wrap(err, "config validate")
	}
	return cfg, nil
}

func CheckConfigVersion(cfg *Config) error {
	currentVersion := cfg.GetVersion()

	if currentVersion != OcsExpectedConfigVersion {
		return fmt.Errorf("config version is [%s], but expected is [%s].",
			currentVersion, OcsExpectedConfigVersion)
	}

	logger.CfgLog.Infof("config version [%s]", currentVersion)

	return nil
}
