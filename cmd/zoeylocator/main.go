package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/auto"
	"github.com/zoeyai/zoeylocator/pkg/auto/screen"
	"github.com/zoeyai/zoeylocator/pkg/config"
	"github.com/zoeyai/zoeylocator/pkg/locator"
	"github.com/zoeyai/zoeylocator/pkg/permissions"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// 退出码
const (
	exitFound    = 0
	exitError    = 1
	exitNotFound = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("zoeylocator", flag.ContinueOnError)
	var (
		dir         = fs.String("dir", "", "模板目录")
		threshold   = fs.Float64("threshold", 0, "匹配阈值 (0-1]")
		regionFlag  = fs.String("region", "", "搜索区域 x,y,w,h，默认全屏")
		offsetFlag  = fs.String("offset", "", "点击偏移 dx,dy")
		attempts    = fs.Int("attempts", 0, "动画搜索的最大截图次数")
		backend     = fs.String("backend", "", "截图后端 robotgo|screenshot")
		configFile  = fs.String("config", "", "配置文件路径")
		logLevel    = fs.String("log-level", "", "日志级别 DEBUG|INFO|WARN|ERROR")
		saveConfig  = fs.Bool("save", false, "保存配置到本地")
		showVersion = fs.Bool("version", false, "显示版本信息")
		showHelp    = fs.Bool("help", false, "显示帮助信息")
	)
	fs.Usage = func() { printHelp(fs) }

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *showVersion {
		printVersion()
		return exitFound
	}
	if *showHelp || fs.NArg() == 0 {
		printHelp(fs)
		return exitFound
	}

	// 标准输出只留给 JSON 结果，日志默认写 stderr
	log := logger.Default()
	defer log.Close()

	manager := config.GetDefaultManager()
	if *configFile != "" {
		manager = config.NewManagerWithFile(*configFile)
	}
	cfg, err := manager.Load()
	if err != nil {
		log.Warn("加载配置失败: %v", err)
	}

	// 命令行参数优先级高于配置文件
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if *dir != "" {
		cfg.TemplatesDir = *dir
	}
	if set["threshold"] {
		cfg.Threshold = *threshold
	}
	if set["attempts"] {
		cfg.MaxAttempts = *attempts
	}
	if *backend != "" {
		cfg.CaptureBackend = *backend
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		if err := log.SetFile(true, cfg.LogFile); err != nil {
			log.Warn("%v", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		return exitError
	}

	if *saveConfig {
		if err := manager.Save(cfg); err != nil {
			log.Warn("保存配置失败: %v", err)
		} else {
			log.Info("配置已保存到 %s", manager.GetConfigFile())
		}
	}

	if runtime.GOOS == "darwin" {
		if ok, msg := permissions.Ensure(); !ok {
			log.Warn("%s", msg)
			permissions.OpenScreenRecordingSettings()
		}
	}

	region, err := resolveRegion(*regionFlag)
	if err != nil {
		log.Error("%v", err)
		return exitError
	}
	var opts []auto.Option
	if *offsetFlag != "" {
		dx, dy, err := parsePair(*offsetFlag)
		if err != nil {
			log.Error("无效的偏移: %v", err)
			return exitError
		}
		opts = append(opts, auto.WithClickOffset(dx, dy))
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	if cmd == "capture" {
		return runCapture(cfg, region, cmdArgs, log)
	}

	loc, err := locator.NewFromConfig(cfg, locator.WithLogger(log.Named("locator")))
	if err != nil {
		log.Error("%v", err)
		return exitError
	}

	result, found, err := dispatch(loc, cmd, cmdArgs, region, opts)
	if err != nil {
		log.Error("%v", err)
		if result == nil {
			return exitError
		}
	}
	if result != nil {
		if err := writeJSON(result); err != nil {
			log.Error("输出结果失败: %v", err)
			return exitError
		}
	}
	if err != nil {
		return exitError
	}
	if !found {
		return exitNotFound
	}
	return exitFound
}

// dispatch 执行子命令，返回要输出的结果以及是否找到
func dispatch(loc *locator.Locator, cmd string, args []string, region auto.Region, opts []auto.Option) (any, bool, error) {
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s 需要 %d 个参数", cmd, n)
		}
		return nil
	}

	switch cmd {
	case "locate":
		if err := need(1); err != nil {
			return nil, false, err
		}
		p, err := loc.Locate(args[0], region, opts...)
		if err != nil {
			return nil, false, err
		}
		return p, p != nil, nil

	case "all":
		if err := need(1); err != nil {
			return nil, false, err
		}
		points, err := loc.LocateAll(args[0], region, opts...)
		if err != nil {
			return nil, false, err
		}
		return points, len(points) > 0, nil

	case "many":
		if err := need(1); err != nil {
			return nil, false, err
		}
		found, err := loc.LocateMany(args, region, opts...)
		if found == nil {
			return nil, false, err
		}
		// 部分模板出错时仍然输出已找到的结果
		return found, len(found) > 0, err

	case "animated":
		if err := need(1); err != nil {
			return nil, false, err
		}
		res, err := loc.LocateAnimatedResult(args[0], region, opts...)
		if err != nil {
			return nil, false, err
		}
		return res, res.State == locator.Found, nil

	case "info":
		if err := need(1); err != nil {
			return nil, false, err
		}
		info, err := loc.TemplateInfo(args[0])
		if err != nil {
			return nil, false, err
		}
		return info, true, nil

	case "bounds":
		if err := need(5); err != nil {
			return nil, false, err
		}
		var b [4]int
		for i := range b {
			v, err := strconv.Atoi(args[i+1])
			if err != nil {
				return nil, false, fmt.Errorf("无效的边界 %q: %w", args[i+1], err)
			}
			b[i] = v
		}
		report, err := loc.ScanBounds(args[0], b[0], b[1], b[2], b[3], opts...)
		if err != nil {
			return nil, false, err
		}
		return report, report.Found > 0, nil

	default:
		return nil, false, fmt.Errorf("未知命令: %s", cmd)
	}
}

// runCapture 截取区域并保存为图像，用于制作模板
func runCapture(cfg *config.LocatorConfig, region auto.Region, args []string, log *logger.Logger) int {
	if len(args) < 1 {
		log.Error("capture 需要输出文件路径")
		return exitError
	}

	capturer, err := screen.NewCapturer(cfg.CaptureBackend)
	if err != nil {
		log.Error("%v", err)
		return exitError
	}
	frame, err := capturer.Capture(region)
	if err != nil {
		log.Error("%v", err)
		return exitError
	}
	defer frame.Close()

	if err := screen.SaveFrame(args[0], frame); err != nil {
		log.Error("%v", err)
		return exitError
	}
	log.Info("已保存 %s %s", region, args[0])
	return exitFound
}

// resolveRegion 解析 -region，未指定时使用整个主屏幕
func resolveRegion(s string) (auto.Region, error) {
	if s == "" {
		w, h := screen.GetScreenSize()
		return auto.Region{Width: w, Height: h}, nil
	}
	return parseRegion(s)
}

// parseRegion 解析 "x,y,w,h"
func parseRegion(s string) (auto.Region, error) {
	v, err := parseInts(s, 4)
	if err != nil {
		return auto.Region{}, fmt.Errorf("无效的区域 %q: %w", s, err)
	}
	r := auto.Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if !r.Valid() {
		return auto.Region{}, fmt.Errorf("无效的区域 %q: 宽高必须为正", s)
	}
	return r, nil
}

// parsePair 解析 "a,b"
func parsePair(s string) (int, int, error) {
	v, err := parseInts(s, 2)
	if err != nil {
		return 0, 0, err
	}
	return v[0], v[1], nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("需要 %d 个逗号分隔的整数", n)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q 不是整数", p)
		}
		out[i] = v
	}
	return out, nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("zoeylocator v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "zoeylocator - 屏幕模板定位工具")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "用法:")
	fmt.Fprintln(out, "  zoeylocator [选项] <命令> [参数]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "命令:")
	fmt.Fprintln(out, "  locate <name>                  最佳匹配的中心坐标")
	fmt.Fprintln(out, "  all <name>                     所有出现位置（去重）")
	fmt.Fprintln(out, "  many <name>...                 一次截图查找多个模板")
	fmt.Fprintln(out, "  animated <name>                多次截图/放宽阈值/尝试状态变体")
	fmt.Fprintln(out, "  info <name>                    模板尺寸和感知哈希")
	fmt.Fprintln(out, "  bounds <name> <l> <t> <r> <b>  在边界内查找，附带相对坐标")
	fmt.Fprintln(out, "  capture <file>                 截取区域保存为图像")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "选项:")
	fs.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "退出码: 0 找到, 1 出错, 2 未找到")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "示例:")
	fmt.Fprintln(out, "  zoeylocator -dir ./images -region 0,0,1280,800 locate ok-button.png")
	fmt.Fprintln(out, "  zoeylocator -threshold 0.85 -attempts 8 animated menu-normal.png")
	fmt.Fprintln(out, "  zoeylocator -region 100,100,300,200 capture ./images/new-button.png")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}
