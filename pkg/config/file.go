package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gimbalcal/gimbalcal/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		Python:      ptr.To("python"),
		ServiceTool: ptr.To("comm_og_service_tool.py"),
		// One attempt: an invalid choice aborts the run, the same as the
		// original wrapper.
		SelectionAttempts: ptr.To(1),
		VerifyEndpoint:    ptr.To(false),
		BaudRate:          ptr.To(115200),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	Python            *string  `json:"python,omitempty"`
	ServiceTool       *string  `json:"serviceTool,omitempty"`
	Models            []string `json:"models,omitempty"`
	SelectionAttempts *int     `json:"selectionAttempts,omitempty"`
	VerifyEndpoint    *bool    `json:"verifyEndpoint,omitempty"`
	BaudRate          *int     `json:"baudRate,omitempty"`
}

// Validate checks values that would otherwise only fail mid-run.
func (c *RawFileConfig) Validate() error {
	if c.Python != nil && strings.TrimSpace(*c.Python) == "" {
		return pkgerrors.New("python must not be empty")
	}
	if c.ServiceTool != nil && strings.TrimSpace(*c.ServiceTool) == "" {
		return pkgerrors.New("serviceTool must not be empty")
	}
	if c.SelectionAttempts != nil && (*c.SelectionAttempts < 1 || *c.SelectionAttempts > MaxSelectionAttempts) {
		return pkgerrors.Errorf("selectionAttempts must be between 1 and %d, got %d", MaxSelectionAttempts, *c.SelectionAttempts)
	}
	if c.BaudRate != nil && *c.BaudRate <= 0 {
		return pkgerrors.Errorf("baudRate must be positive, got %d", *c.BaudRate)
	}
	return nil
}

func (f *File) Python() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.Python != nil {
		return *f.c.Python
	}
	return *defaultFileConfig.Python
}

func (f *File) ServiceTool() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.ServiceTool != nil {
		return *f.c.ServiceTool
	}
	return *defaultFileConfig.ServiceTool
}

func (f *File) Models() []string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.c.Models) == 0 {
		return nil
	}
	out := make([]string, len(f.c.Models))
	copy(out, f.c.Models)
	return out
}

func (f *File) SelectionAttempts() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.SelectionAttempts != nil {
		return *f.c.SelectionAttempts
	}
	return *defaultFileConfig.SelectionAttempts
}

func (f *File) VerifyEndpoint() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.VerifyEndpoint != nil {
		return *f.c.VerifyEndpoint
	}
	return *defaultFileConfig.VerifyEndpoint
}

func (f *File) BaudRate() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.BaudRate != nil {
		return *f.c.BaudRate
	}
	return *defaultFileConfig.BaudRate
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.filepath == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if err := conf.Validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config in file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"python":            f.Python(),
		"serviceTool":       f.ServiceTool(),
		"customModels":      len(f.Models()),
		"selectionAttempts": f.SelectionAttempts(),
		"verifyEndpoint":    f.VerifyEndpoint(),
		"baudRate":          f.BaudRate(),
	}
}
