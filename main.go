package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/autofit/config"
	"github.com/ByLCY/autofit/dsl"
	"github.com/ByLCY/autofit/layout"
	"github.com/ByLCY/autofit/renderer"
	canvasrenderer "github.com/ByLCY/autofit/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/demo.autofit", "DSL 文件路径")
	output := flag.String("out", "output/demo.pdf", "PDF 输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	configPath := flag.String("config", "autofit.toml", "TOML 配置文件路径（不存在时使用默认值）")
	verbose := flag.Bool("v", false, "输出每一步字号搜索的调试日志")
	writeConfig := flag.String("write-config", "", "把生效的配置写成 TOML 后退出")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("加载配置失败: %v", err)
	}
	if *writeConfig != "" {
		if err := config.Save(*writeConfig, cfg); err != nil {
			logger.Fatalf("保存配置失败: %v", err)
		}
		fmt.Printf("已写出配置：%s\n", *writeConfig)
		return
	}
	level, _ := cfg.LogLevel()
	if *verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			logger.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	baseDir := cfg.Render.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(*input)
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:                baseDir,
		Logger:                 logrus.NewEntry(logger).WithField("component", "render"),
		SubstituteMissingFonts: cfg.Render.SubstituteFonts,
	})

	stats := &layout.SearchStats{}
	opts := cfg.SearchOptions()
	opts.Logger = logrus.NewEntry(logger).WithField("component", "fit")
	opts.Recorder = stats

	size, err := run(*input, *output, *debug, inputData, r, opts)
	if err != nil {
		logger.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s（%s）\n", *output, humanize.Bytes(uint64(size)))
	logger.WithField("stats", stats.String()).Info("字号搜索统计")
}

// backend 既负责测量文本，也负责输出最终文件。
type backend interface {
	layout.Measurer
	renderer.Renderer
}

// run 串联解析、字号适配与渲染，返回写出的字节数。
func run(inputPath, outputPath, debugPath string, data any, r backend, search layout.SearchOptions) (int, error) {
	if r == nil {
		return 0, fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return 0, fmt.Errorf("解析 DSL 失败: %w", err)
	}

	result, err := layout.Build(doc, data, layout.BuildOptions{
		Measurer: r,
		Search:   search,
	})
	if err != nil {
		return 0, fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := layout.WriteDebugJSON(result, debugPath); err != nil {
			return 0, fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, fmt.Errorf("创建输出目录失败: %w", err)
	}

	pdfBytes, err := r.Render(result)
	if err != nil {
		return 0, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return 0, fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return len(pdfBytes), nil
}
