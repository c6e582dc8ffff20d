/*
 * OCS Configuration Factory
 */

package factory

import (
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
)

const (
	OcsExpectedConfigVersion  = "1.0.0"
	OcsDefaultDiameterNetwork = "tcp"
	OcsDefaultDiameterAddr    = "127.0.0.1"
	OcsDefaultDiameterPort    = 3868
	OcsDefaultOriginHost      = "ocs.localdomain"
	OcsDefaultOriginRealm     = "localdomain"
	OcsDefaultProductName     = "free5gc-ocs"
	OcsSbiDefaultIPv4         = "127.0.0.1"
	OcsSbiDefaultPort         = 8080
	OcsDefaultLivenessTimeout = 15 * time.Second
	OcsDefaultValidityTime    = 86400
	OcsOamResUriPrefix        = "/ocs-oam/v1"
)

type Config struct {
	Info          *Info          `yaml:"info" valid:"required"`
	Configuration *Configuration `yaml:"configuration" valid:"required"`
	Logger        *Logger        `yaml:"logger" valid:"required"`
	sync.RWMutex
}

func (c *Config) Validate() (bool, error) {
	if _, err := c.Info.validate(); err != nil {
		return false, err
	}

	if _, err := c.Configuration.validate(); err != nil {
		return false, err
	}

	if c.Logger != nil {
		if _, err := c.Logger.validate(); err != nil {
			return false, err
		}
	}

	if _, err := govalidator.ValidateStruct(c); err != nil {
		return false, appendInvalid(err)
	}

	return true, nil
}

type Info struct {
	Version     string `yaml:"version,omitempty" valid:"required"`
	Description string `yaml:"description,omitempty" valid:"-"`
}

func (i *Info) validate() (bool, error) {
	if _, err := govalidator.ValidateStruct(i); err != nil {
		return false, appendInvalid(err)
	}

	return true, nil
}

type Configuration struct {
	OcsName         string    `yaml:"ocsName,omitempty" valid:"required,type(string)"`
	Diameter        *Diameter `yaml:"diameter,omitempty" valid:"required"`
	Sbi             *Sbi      `yaml:"sbi,omitempty" valid:"optional"`
	Mongodb         *Mongodb  `yaml:"mongodb,omitempty" valid:"optional"`
	UsersFile       string    `yaml:"usersFile,omitempty" valid:"optional"`
	LivenessTimeout string    `yaml:"livenessTimeout,omitempty" valid:"optional"`
	ValidityTime    uint32    `yaml:"validityTime,omitempty" valid:"optional"`
	Cdr             *Cdr      `yaml:"cdr,omitempty" valid:"optional"`
}

func (c *Configuration) validate() (bool, error) {
	if c.Diameter != nil {
		if _, err := c.Diameter.validate(); err != nil {
			return false, err
		}
	}

	if c.Sbi != nil {
		if _, err := c.Sbi.validate(); err != nil {
			return false, err
		}
	}

	if c.Mongodb != nil {
		if _, err := c.Mongodb.validate(); err != nil {
			return false, err
		}
	}

	if c.LivenessTimeout != "" {
		if d, err := time.ParseDuration(c.LivenessTimeout); err != nil || d <= 0 {
			return false, fmt.Errorf("Invalid livenessTimeout: %s", c.LivenessTimeout)
		}
	}

	if _, err := govalidator.ValidateStruct(c); err != nil {
		return false, appendInvalid(err)
	}

	return true, nil
}

type Diameter struct {
	Network     string `yaml:"network,omitempty" valid:"optional,network"`
	BindAddr    string `yaml:"bindAddr,omitempty" valid:"optional,host"`
	Port        int    `yaml:"port,omitempty" valid:"optional,port"`
	OriginHost  string `yaml:"originHost" valid:"required,dns"`
	OriginRealm string `yaml:"originRealm" valid:"required,dns"`
	VendorID    uint32 `yaml:"vendorId,omitempty" valid:"optional"`
	ProductName string `yaml:"productName,omitempty" valid:"optional"`
}

func (d *Diameter) validate() (bool, error) {
	govalidator.TagMap["network"] = govalidator.Validator(func(str string) bool {
		return str == "tcp" || str == "sctp"
	})

	if _, err := govalidator.ValidateStruct(d); err != nil {
		return false, appendInvalid(err)
	}

	return true, nil
}

type Sbi struct {
	Scheme      string `yaml:"scheme" valid:"required,scheme"`
	BindingIPv4 string `yaml:"bindingIPv4,omitempty" valid:"required,host"`
	Port        int    `yaml:"port,omitempty" valid:"required,port"`
	Tls         *Tls   `yaml:"tls,omitempty" valid:"optional"`
}

func (s *Sbi) validate() (bool, error) {
	govalidator.TagMap["scheme"] = govalidator.Validator(func(str string) bool {
		return str == "https" || str == "http"
	})

	if tls := s.Tls; tls != nil {
		if result, err := tls.validate(); err != nil {
			return result, err
		}
	}

	if _, err := govalidator.ValidateStruct(s); err != nil {
		return false, appendInvalid(err)
	}

	return true, nil
}

type Tls struct {
	Pem string `yaml:"pem,omitempty" valid:"type(string),minstringlength(1),required"`
	Key string `yaml:"key,omitempty" valid:"type(string),minstringlength(1),required"`
}

func (t *Tls) validate() (bool, error) {
	result, err := govalidator.ValidateStruct(t)
	return result, err
}

type Mongodb struct {
	Name string `yaml:"name" valid:"required,type(string)"`
	Url  string `yaml:"url" valid:"required"`
}

func (m *Mongodb) validate() (bool, error) {
	pattern := `[-a-zA-Z0-9@:%._\+~#=]{1,256}\b([-a-zA-Z0-9()@:%_\+.~#?&//=]*)`
	if result := govalidator.StringMatches(m.Url, pattern); !result {
		err := fmt.Errorf("Invalid Url: %s", m.Url)
		return false, err
	}
	if _, err := govalidator.ValidateStruct(m); err != nil {
		return false, appendInvalid(err)
	}

	return true, nil
}

type Cdr struct {
	Dir string `yaml:"dir" valid:"required"`
	Ftp *Ftp   `yaml:"ftp,omitempty" valid:"optional"`
}

type Ftp struct {
	Addr     string `yaml:"addr" valid:"required,dialstring"`
	User     string `yaml:"user" valid:"required"`
	Password string `yaml:"password" valid:"-"`
}

type Logger struct {
	Enable       bool   `yaml:"enable" valid:"type(bool)"`
	Level        string `yaml:"level" valid:"required,in(trace|debug|info|warn|error|fatal|panic)"`
	ReportCaller bool   `yaml:"reportCaller" valid:"type(bool)"`
}

func (l *Logger) validate() (bool, error) {
	if _, err := govalidator.ValidateStruct(l); err != nil {
		return false, appendInvalid(err)
	}

	return true, nil
}

func appendInvalid(err error) error {
	var errs govalidator.Errors

	es := err.(govalidator.Errors).Errors()
	for _, e := range es {
		errs = append(errs, fmt.Errorf("Invalid %w", e))
	}

	return error(errs)
}

func (c *Config) GetVersion() string {
	c.RLock()
	defer c.RUnlock()

	if c.Info != nil && c.Info.Version != "" {
		return c.Info.Version
	}
	return ""
}

func (c *Config) SetLogEnable(enable bool) {
	c.Lock()
	defer c.Unlock()

	if c.Logger == nil {
		c.Logger = &Logger{Enable: enable, Level: "info"}
	} else {
		c.Logger.Enable = enable
	}
}

func (c *Config) SetLogLevel(level string) {
	c.Lock()
	defer c.Unlock()

	if c.Logger == nil {
		c.Logger = &Logger{Level: level}
	} else {
		c.Logger.Level = level
	}
}

func (c *Config) SetLogReportCaller(reportCaller bool) {
	c.Lock()
	defer c.Unlock()

	if c.Logger == nil {
		c.Logger = &Logger{Level: "info", ReportCaller: reportCaller}
	} else {
		c.Logger.ReportCaller = reportCaller
	}
}

func (c *Config) GetLogEnable() bool {
	c.RLock()
	defer c.RUnlock()

	if c.Logger == nil {
		return false
	}
	return c.Logger.Enable
}

func (c *Config) GetLogLevel() string {
	c.RLock()
	defer c.RUnlock()

	if c.Logger == nil {
		return "info"
	}
	return c.Logger.Level
}

func (c *Config) GetLogReportCaller() bool {
	c.RLock()
	defer c.RUnlock()

	if c.Logger == nil {
		return false
	}
	return c.Logger.ReportCaller
}

func (c *Config) GetDiameterNetwork() string {
	c.RLock()
	defer c.RUnlock()

	if d := c.Configuration.Diameter; d != nil && d.Network != "" {
		return d.Network
	}
	return OcsDefaultDiameterNetwork
}

func (c *Config) GetDiameterBindAddr() string {
	c.RLock()
	defer c.RUnlock()

	addr, port := OcsDefaultDiameterAddr, OcsDefaultDiameterPort
	if d := c.Configuration.Diameter; d != nil {
		if d.BindAddr != "" {
			addr = d.BindAddr
		}
		if d.Port != 0 {
			port = d.Port
		}
	}
	return fmt.Sprintf("%s:%d", addr, port)
}

func (c *Config) GetOriginHost() string {
	c.RLock()
	defer c.RUnlock()

	if d := c.Configuration.Diameter; d != nil && d.OriginHost != "" {
		return d.OriginHost
	}
	return OcsDefaultOriginHost
}

func (c *Config) GetOriginRealm() string {
	c.RLock()
	defer c.RUnlock()

	if d := c.Configuration.Diameter; d != nil && d.OriginRealm != "" {
		return d.OriginRealm
	}
	return OcsDefaultOriginRealm
}

func (c *Config) GetProductName() string {
	c.RLock()
	defer c.RUnlock()

	if d := c.Configuration.Diameter; d != nil && d.ProductName != "" {
		return d.ProductName
	}
	return OcsDefaultProductName
}

func (c *Config) GetVendorID() uint32 {
	c.RLock()
	defer c.RUnlock()

	if d := c.Configuration.Diameter; d != nil {
		return d.VendorID
	}
	return 0
}

func (c *Config) GetSbiScheme() string {
	c.RLock()
	defer c.RUnlock()

	if s := c.Configuration.Sbi; s != nil && s.Scheme != "" {
		return s.Scheme
	}
	return "http"
}

func (c *Config) GetSbiBindingAddr() string {
	c.RLock()
	defer c.RUnlock()

	addr, port := OcsSbiDefaultIPv4, OcsSbiDefaultPort
	if s := c.Configuration.Sbi; s != nil {
		if s.BindingIPv4 != "" {
			addr = s.BindingIPv4
		}
		if s.Port != 0 {
			port = s.Port
		}
	}
	return fmt.Sprintf("%s:%d", addr, port)
}

func (c *Config) GetCertPemPath() string {
	c.RLock()
	defer c.RUnlock()

	if s := c.Configuration.Sbi; s != nil && s.Tls != nil {
		return s.Tls.Pem
	}
	return ""
}

func (c *Config) GetCertKeyPath() string {
	c.RLock()
	defer c.RUnlock()

	if s := c.Configuration.Sbi; s != nil && s.Tls != nil {
		return s.Tls.Key
	}
	return ""
}

func (c *Config) GetLivenessTimeout() time.Duration {
	c.RLock()
	defer c.RUnlock()

	if c.Configuration.LivenessTimeout != "" {
		if d, err := time.ParseDuration(c.Configuration.LivenessTimeout); err == nil && d > 0 {
			return d
		}
	}
	return OcsDefaultLivenessTimeout
}

func (c *Config) GetValidityTime() uint32 {
	c.RLock()
	defer c.RUnlock()

	if c.Configuration.ValidityTime != 0 {
		return c.Configuration.ValidityTime
	}
	return OcsDefaultValidityTime
}
