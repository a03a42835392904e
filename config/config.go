package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/autofit/layout"
)

const envLogLevel = "AUTOFIT_LOG_LEVEL"

// Config 是 autofit.toml 的根结构。
type Config struct {
	Fit    FitConfig    `toml:"fit"`
	Render RenderConfig `toml:"render"`
	Log    LogConfig    `toml:"log"`
}

// FitConfig 控制字号搜索，单位为 pt。
type FitConfig struct {
	MinFontSize   float64 `toml:"min_font_size"`
	MaxFontSize   float64 `toml:"max_font_size"` // 0 表示不设上限
	Accuracy      float64 `toml:"accuracy"`
	ReferenceSize float64 `toml:"reference_size"`
}

// RenderConfig 控制字体等资源的查找目录。
type RenderConfig struct {
	BaseDir         string `toml:"base_dir"`
	SubstituteFonts bool   `toml:"substitute_missing_fonts"` // 字体加载失败时改用内置字体
}

// LogConfig 控制日志级别（logrus 级别名）。
type LogConfig struct {
	Level string `toml:"level"`
}

// Default 返回内置默认配置。
func Default() Config {
	return Config{
		Fit: FitConfig{
			MinFontSize:   layout.DefaultMinFontSize,
			Accuracy:      layout.DefaultAccuracyThreshold,
			ReferenceSize: layout.DefaultReferenceFontSize,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load 读取 TOML 配置；path 为空或文件不存在时使用默认值。环境变量 AUTOFIT_LOG_LEVEL 覆盖日志级别。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("读取配置文件失败: %w", err)
		default:
			if err := toml.Unmarshal(content, &cfg); err != nil {
				return cfg, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
			}
		}
	}
	if lvl := strings.TrimSpace(os.Getenv(envLogLevel)); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save 把配置写成 TOML。
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("编码配置失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入配置文件 %s 失败: %w", path, err)
	}
	return nil
}

// Validate 检查数值范围与日志级别。
func (c Config) Validate() error {
	f := c.Fit
	if f.MinFontSize <= 0 {
		return fmt.Errorf("fit.min_font_size 必须大于 0（当前 %g）", f.MinFontSize)
	}
	if f.Accuracy <= 0 {
		return fmt.Errorf("fit.accuracy 必须大于 0（当前 %g）", f.Accuracy)
	}
	if f.ReferenceSize <= 0 {
		return fmt.Errorf("fit.reference_size 必须大于 0（当前 %g）", f.ReferenceSize)
	}
	if f.MaxFontSize != 0 && f.MaxFontSize < f.MinFontSize {
		return fmt.Errorf("fit.max_font_size (%g) 小于 min_font_size (%g)", f.MaxFontSize, f.MinFontSize)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel 解析日志级别，空值视为 info。
func (c Config) LogLevel() (logrus.Level, error) {
	if strings.TrimSpace(c.Log.Level) == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// SearchOptions 把配置转换为字号搜索参数。
func (c Config) SearchOptions() layout.SearchOptions {
	return layout.SearchOptions{
		MinFontSize:       c.Fit.MinFontSize,
		MaxFontSize:       c.Fit.MaxFontSize,
		AccuracyThreshold: c.Fit.Accuracy,
		ReferenceFontSize: c.Fit.ReferenceSize,
	}
}
